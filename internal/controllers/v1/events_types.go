package v1

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IncomingFundsEditable struct {
	WalletID            uuid.UUID       `json:"walletId" example:"f81566d9-af4d-4f13-9830-c62c4b5e4c7e"` // ID of the wallet that received funds
	Amount              decimal.Decimal `json:"amount" example:"100"`                                    // Received amount
	SourceTransactionID *uuid.UUID      `json:"sourceTransactionId"`                                     // ID of the inbound transaction at the wallet service
}

type IncomingFundsResponse struct {
	Error *string               `json:"error" example:"the amount must be larger than zero"` // The error, if any occurred
	Data  []AllocationExecution `json:"data"`                                                // The executions the event produced
}

type SpendingEditable struct {
	WalletID     uuid.UUID       `json:"walletId" example:"f81566d9-af4d-4f13-9830-c62c4b5e4c7e"` // ID of the wallet the spend happened on
	SubAccountID *uuid.UUID      `json:"subAccountId"`                                            // Sub-account to debit; only wallet-wide budgets are updated when unset
	Amount       decimal.Decimal `json:"amount" example:"12.5"`                                   // Spent amount
	Reference    string          `json:"reference" example:"card payment" default:""`             // Free-form reference, stored on the ledger entry
}

type SpendingResponse struct {
	Error         *string        `json:"error" example:"the sub-account balance is not sufficient for this debit"` // The error, if any occurred
	Data          *Transaction   `json:"data"`                                                                     // The ledger entry, when a sub-account was debited
	BudgetPeriods []BudgetPeriod `json:"budgetPeriods"`                                                            // The budget periods the spend was recorded against
}
