package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType describes the direction and origin of a ledger entry.
type TransactionType string

const (
	TransactionTypeAllocation   TransactionType = "ALLOCATION"
	TransactionTypeExpense      TransactionType = "EXPENSE"
	TransactionTypeTransferIn   TransactionType = "TRANSFER_IN"
	TransactionTypeTransferOut  TransactionType = "TRANSFER_OUT"
	TransactionTypeReturnToMain TransactionType = "RETURN_TO_MAIN"
	TransactionTypeAdjustment   TransactionType = "ADJUSTMENT"
)

// Valid reports whether the transaction type is known.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeAllocation, TransactionTypeExpense, TransactionTypeTransferIn,
		TransactionTypeTransferOut, TransactionTypeReturnToMain, TransactionTypeAdjustment:
		return true
	}

	return false
}

// Credit reports whether the type increases the sub-account balance.
// Adjustments carry their direction in the balance fields and are
// handled separately.
func (t TransactionType) Credit() bool {
	return t == TransactionTypeAllocation || t == TransactionTypeTransferIn
}

// SubAccountTransaction is one immutable ledger entry for a sub-account.
//
// Together the entries form the audit trail the cached sub-account
// balance is derived from.
type SubAccountTransaction struct {
	DefaultModel
	SubAccountID  uuid.UUID       `json:"subAccountId"`
	SubAccount    SubAccount      `json:"-"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)"`
	BalanceBefore decimal.Decimal `json:"balanceBefore" gorm:"type:DECIMAL(20,8)"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter" gorm:"type:DECIMAL(20,8)"`
	Reference     string          `json:"reference"` // originating rule or manual actor
}

// BeforeSave validates the ledger invariants before an entry is written.
func (t *SubAccountTransaction) BeforeSave(_ *gorm.DB) error {
	t.Reference = strings.TrimSpace(t.Reference)

	if !t.Type.Valid() {
		return ErrTransactionTypeInvalid
	}

	if !t.Amount.IsPositive() {
		return ErrAmountNotPositive
	}

	credited := t.BalanceBefore.Add(t.Amount)
	debited := t.BalanceBefore.Sub(t.Amount)

	switch {
	case t.Type == TransactionTypeAdjustment:
		// Adjustments may go either way
		if !t.BalanceAfter.Equal(credited) && !t.BalanceAfter.Equal(debited) {
			return ErrLedgerOutOfBalance
		}
	case t.Type.Credit():
		if !t.BalanceAfter.Equal(credited) {
			return ErrLedgerOutOfBalance
		}
	default:
		if !t.BalanceAfter.Equal(debited) {
			return ErrLedgerOutOfBalance
		}
	}

	return nil
}

// BeforeCreate verifies that the sub-account exists.
func (t *SubAccountTransaction) BeforeCreate(tx *gorm.DB) error {
	_ = t.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*SubAccountTransaction)
	return tx.First(&SubAccount{}, toSave.SubAccountID).Error
}

// BeforeUpdate rejects any mutation, the ledger is append-only.
func (t *SubAccountTransaction) BeforeUpdate(_ *gorm.DB) error {
	return ErrLedgerEntryImmutable
}

// BeforeDelete rejects deletion, the ledger is the audit trail.
func (t *SubAccountTransaction) BeforeDelete(_ *gorm.DB) error {
	return ErrLedgerEntryImmutable
}
