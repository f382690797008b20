// Package walletclient talks to the wallet custody service.
//
// This service never holds main wallet funds itself; whenever the
// current wallet balance is needed, it is read from the wallet service.
package walletclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Client reads wallet balances from the wallet service. It implements
// models.WalletBalanceReader.
type Client struct {
	baseURL string
	client  *http.Client
}

// New returns a client for the wallet service at the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type balanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
}

// WalletBalance returns the current balance of the wallet.
func (c *Client) WalletBalance(walletID uuid.UUID) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/v1/wallets/%s/balance", c.baseURL, walletID)

	res, err := c.client.Get(url)
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet service: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("wallet service: unexpected status %d for wallet %s", res.StatusCode, walletID)
	}

	var body balanceResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("wallet service: decode response: %w", err)
	}

	return body.Balance, nil
}
