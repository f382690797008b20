package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/goodness-exchange/gx-protocol-backend-sub004/internal/controllers/v1"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/test"
)

// TestSubAccountsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestSubAccountsDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				createTestSubAccount(t, v1.SubAccountEditable{}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v1/sub-accounts", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.SubAccountListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Contains(t, *response.Error, models.ErrGeneral.Error())
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

// TestSubAccountsOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestSubAccountsOptions() {
	tests := []struct {
		name   string
		id     string // path at the sub-accounts endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No sub-account with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Sub-account exists", createTestSubAccount(suite.T(), v1.SubAccountEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/sub-accounts", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestSubAccountsCreate() {
	walletID := uuid.New()

	subAccount := createTestSubAccount(suite.T(), v1.SubAccountEditable{
		WalletID:      walletID,
		Name:          "Groceries",
		Note:          "Weekly shop",
		MonthlyBudget: decimal.NewFromInt(450),
	})

	require.NotNil(suite.T(), subAccount.Data)
	assert.Equal(suite.T(), "Groceries", subAccount.Data.Name)
	assert.True(suite.T(), subAccount.Data.CurrentBalance.IsZero())
	assert.Contains(suite.T(), subAccount.Data.Links.Self, "http://example.com/v1/sub-accounts/")

	// The name must be unique per wallet
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/sub-accounts", []v1.SubAccountEditable{{
		WalletID: walletID,
		Name:     "Groceries",
	}})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.SubAccountCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 1)
	assert.Equal(suite.T(), models.ErrSubAccountNameNotUnique.Error(), *response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestSubAccountsGetSingle() {
	subAccount := createTestSubAccount(suite.T(), v1.SubAccountEditable{})

	tests := []struct {
		name   string
		id     string
		status int
		method string
	}{
		{"GET existing sub-account", subAccount.Data.ID.String(), http.StatusOK, http.MethodGet},
		{"GET ID nil", uuid.Nil.String(), http.StatusNotFound, http.MethodGet},
		{"GET no sub-account with this ID", uuid.New().String(), http.StatusNotFound, http.MethodGet},
		{"GET invalid ID (number)", "23", http.StatusBadRequest, http.MethodGet},
		{"GET invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodGet},
		{"PATCH invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodPatch},
		{"DELETE invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodDelete},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, tt.method, fmt.Sprintf("http://example.com/v1/sub-accounts/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestSubAccountsGetFiltered() {
	walletID := uuid.New()

	_ = createTestSubAccount(suite.T(), v1.SubAccountEditable{WalletID: walletID, Name: "Groceries", Note: "The weekly shop"})
	_ = createTestSubAccount(suite.T(), v1.SubAccountEditable{WalletID: walletID, Name: "Savings", Archived: true})
	_ = createTestSubAccount(suite.T(), v1.SubAccountEditable{Name: "Groceries elsewhere"})

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"By wallet", fmt.Sprintf("wallet=%s", walletID), 2},
		{"Archived only", fmt.Sprintf("wallet=%s&archived=true", walletID), 1},
		{"Active only", fmt.Sprintf("wallet=%s&archived=false", walletID), 1},
		{"By name", "name=Groceries", 2},
		{"By name, no partial match", "name=Savings elsewhere", 0},
		{"Search in name and note", "search=groceries", 2},
		{"Search in note", "search=weekly", 1},
		{"Limit", "limit=1", 1},
		{"No match", fmt.Sprintf("wallet=%s", uuid.New()), 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/sub-accounts?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.SubAccountListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}
}

func (suite *TestSuiteStandard) TestSubAccountsUpdate() {
	subAccount := createTestSubAccount(suite.T(), v1.SubAccountEditable{Name: "Old name"})

	r := test.Request(suite.T(), http.MethodPatch, subAccount.Data.Links.Self, map[string]any{
		"name": "New name",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.SubAccountResponse
	test.DecodeResponse(suite.T(), &r, &updated)
	assert.Equal(suite.T(), "New name", updated.Data.Name)
}

func (suite *TestSuiteStandard) TestSubAccountsDelete() {
	funded := createTestSubAccount(suite.T(), v1.SubAccountEditable{Name: "Funded"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations", v1.ManualAllocationEditable{
		WalletID:     funded.Data.WalletID,
		SubAccountID: funded.Data.ID,
		Amount:       decimal.NewFromInt(10),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	// Funds still allocated, deletion is blocked
	r = test.Request(suite.T(), http.MethodDelete, funded.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
	assert.Equal(suite.T(), models.ErrSubAccountBalanceNotZero.Error(), test.DecodeError(suite.T(), r.Body.Bytes()))

	empty := createTestSubAccount(suite.T(), v1.SubAccountEditable{Name: "Empty"})
	r = test.Request(suite.T(), http.MethodDelete, empty.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
}

func (suite *TestSuiteStandard) TestSubAccountTransactions() {
	subAccount := createTestSubAccount(suite.T(), v1.SubAccountEditable{Name: "Ledgered"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations", v1.ManualAllocationEditable{
		WalletID:     subAccount.Data.WalletID,
		SubAccountID: subAccount.Data.ID,
		Amount:       decimal.NewFromInt(25),
		Note:         "First funding",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = test.Request(suite.T(), http.MethodGet, subAccount.Data.Links.Transactions, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 1)

	entry := response.Data[0]
	assert.Equal(suite.T(), models.TransactionTypeAllocation, entry.Type)
	assert.True(suite.T(), entry.Amount.Equal(decimal.NewFromInt(25)))
	assert.Equal(suite.T(), "manual: First funding", entry.Reference)

	// A date filter outside the entry's day returns nothing
	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("%s?until=2000-01-01", subAccount.Data.Links.Transactions), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Empty(suite.T(), response.Data)

	// Invalid dates are rejected
	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("%s?from=notadate", subAccount.Data.Links.Transactions), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
