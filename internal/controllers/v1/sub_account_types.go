package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	sa_uuid "github.com/goodness-exchange/gx-protocol-backend-sub004/internal/uuid"
)

type SubAccountEditable struct {
	WalletID      uuid.UUID       `json:"walletId" example:"f81566d9-af4d-4f13-9830-c62c4b5e4c7e"`                                                             // ID of the wallet this sub-account belongs to
	Name          string          `json:"name" example:"Groceries" default:""`                                                                                 // Name of the sub-account
	Note          string          `json:"note" example:"Everything for the weekly shop" default:""`                                                            // Note about the sub-account
	MonthlyBudget decimal.Decimal `json:"monthlyBudget" example:"450" minimum:"0.00000001" maximum:"999999999999.99999999" multipleOf:"0.00000001" default:"0"` // Monthly budget cap, 0 disables automatic budget periods
	Archived      bool            `json:"archived" example:"true" default:"false"`                                                                             // If this sub-account is still in use or not
}

// model returns the database resource for the API representation of the editable fields
func (editable SubAccountEditable) model() models.SubAccount {
	return models.SubAccount{
		WalletID:      editable.WalletID,
		Name:          editable.Name,
		Note:          editable.Note,
		MonthlyBudget: editable.MonthlyBudget,
		Archived:      editable.Archived,
	}
}

type SubAccountLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/sub-accounts/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`              // The sub-account itself
	Transactions string `json:"transactions" example:"https://example.com/api/v1/sub-accounts/438cc6c0-9baf-49fd-a75a-d76bd5cab19c/transactions"` // The ledger of this sub-account
}

type SubAccount struct {
	models.DefaultModel
	SubAccountEditable
	CurrentBalance decimal.Decimal `json:"currentBalance" example:"123.45"` // Current balance of the sub-account
	Links          SubAccountLinks `json:"links"`
}

// newSubAccount returns the API representation of the resource
func newSubAccount(c *gin.Context, model models.SubAccount) SubAccount {
	url := c.GetString(string(models.DBContextURL))

	return SubAccount{
		DefaultModel: model.DefaultModel,
		SubAccountEditable: SubAccountEditable{
			WalletID:      model.WalletID,
			Name:          model.Name,
			Note:          model.Note,
			MonthlyBudget: model.MonthlyBudget,
			Archived:      model.Archived,
		},
		CurrentBalance: model.CurrentBalance,
		Links: SubAccountLinks{
			Self:         fmt.Sprintf("%s/v1/sub-accounts/%s", url, model.ID),
			Transactions: fmt.Sprintf("%s/v1/sub-accounts/%s/transactions", url, model.ID),
		},
	}
}

type SubAccountListResponse struct {
	Data       []SubAccount `json:"data"`                                                          // List of resources
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type SubAccountCreateResponse struct {
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []SubAccountResponse `json:"data"`                                                          // List of created resources
}

func (t *SubAccountCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, SubAccountResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type SubAccountResponse struct {
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *SubAccount `json:"data"`                                                          // The resource
}

type SubAccountQueryFilter struct {
	WalletID sa_uuid.UUID `form:"wallet"`                     // By wallet ID
	Name     string       `form:"name" filterField:"false"`   // By name
	Note     string       `form:"note" filterField:"false"`   // By the note
	Search   string       `form:"search" filterField:"false"` // By string in name or note
	Archived bool         `form:"archived"`                   // Is the sub-account archived?
	Offset   uint         `form:"offset" filterField:"false"` // The offset of the first sub-account returned. Defaults to 0.
	Limit    int          `form:"limit" filterField:"false"`  // Maximum number of sub-accounts to return. Defaults to 50.
}

func (f SubAccountQueryFilter) model() models.SubAccount {
	// This does not set the string fields since they are
	// handled in the controller function
	return models.SubAccount{
		WalletID: f.WalletID.UUID,
		Archived: f.Archived,
	}
}

type TransactionLinks struct {
	SubAccount string `json:"subAccount" example:"https://example.com/api/v1/sub-accounts/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // The sub-account this entry belongs to
}

type Transaction struct {
	models.DefaultModel
	SubAccountID  uuid.UUID              `json:"subAccountId" example:"438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // ID of the sub-account
	Type          models.TransactionType `json:"type" example:"ALLOCATION"`                                   // Type of the ledger entry
	Amount        decimal.Decimal        `json:"amount" example:"14.03"`                                      // Amount of the entry
	BalanceBefore decimal.Decimal        `json:"balanceBefore" example:"100"`                                 // Balance before the entry was applied
	BalanceAfter  decimal.Decimal        `json:"balanceAfter" example:"114.03"`                               // Balance after the entry was applied
	Reference     string                 `json:"reference" example:"rule:1b745ba1-4c75-4292-a5d9-6b4d0e6da704"` // Free-form reference
	Links         TransactionLinks       `json:"links"`
}

// newTransaction returns the API representation of the resource
func newTransaction(c *gin.Context, model models.SubAccountTransaction) Transaction {
	url := c.GetString(string(models.DBContextURL))

	return Transaction{
		DefaultModel:  model.DefaultModel,
		SubAccountID:  model.SubAccountID,
		Type:          model.Type,
		Amount:        model.Amount,
		BalanceBefore: model.BalanceBefore,
		BalanceAfter:  model.BalanceAfter,
		Reference:     model.Reference,
		Links: TransactionLinks{
			SubAccount: fmt.Sprintf("%s/v1/sub-accounts/%s", url, model.SubAccountID),
		},
	}
}

type TransactionListResponse struct {
	Data  []Transaction `json:"data"`                                                          // List of resources
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}
