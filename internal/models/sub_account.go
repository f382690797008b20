package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubAccount is a named virtual partition of a wallet's balance.
//
// The wallet itself is held by the adjacent wallet service; a
// sub-account only tracks the part of the wallet balance that has been
// allocated to it. The cached CurrentBalance is mutated exclusively by
// the ledger-writing operations in this package so that it always
// agrees with the sum of the sub-account's ledger entries.
type SubAccount struct {
	DefaultModel
	WalletID       uuid.UUID       `json:"walletId" gorm:"uniqueIndex:sub_account_wallet_name"`
	Name           string          `json:"name" gorm:"uniqueIndex:sub_account_wallet_name"`
	Note           string          `json:"note"`
	CurrentBalance decimal.Decimal `json:"currentBalance" gorm:"type:DECIMAL(20,8)"`
	MonthlyBudget  decimal.Decimal `json:"monthlyBudget" gorm:"type:DECIMAL(20,8)"` // 0 means no monthly budget is configured
	Archived       bool            `json:"archived"`
}

// BeforeSave trims whitespace from all strings
func (s *SubAccount) BeforeSave(_ *gorm.DB) error {
	s.Name = strings.TrimSpace(s.Name)
	s.Note = strings.TrimSpace(s.Note)

	return nil
}

// AfterSave enforces the balance invariant.
func (s *SubAccount) AfterSave(_ *gorm.DB) error {
	if s.CurrentBalance.IsNegative() {
		return ErrBalanceNegative
	}

	return nil
}

// BeforeDelete blocks deletion while funds are still allocated to the
// sub-account.
func (s *SubAccount) BeforeDelete(_ *gorm.DB) error {
	if s.CurrentBalance.IsPositive() {
		return ErrSubAccountBalanceNotZero
	}

	return nil
}

// Transactions returns all ledger entries for this sub-account.
func (s SubAccount) Transactions(db *gorm.DB) []SubAccountTransaction {
	var transactions []SubAccountTransaction

	db.Where(SubAccountTransaction{SubAccountID: s.ID}).Find(&transactions)
	return transactions
}

// LedgerBalance derives the balance of the sub-account from its ledger
// entries.
//
// The ledger is the source of truth; the cached CurrentBalance is a
// read optimization. Reconciliation compares the two.
func (s SubAccount) LedgerBalance(db *gorm.DB) (decimal.Decimal, error) {
	var transactions []SubAccountTransaction

	err := db.Where(SubAccountTransaction{SubAccountID: s.ID}).Find(&transactions).Error
	if err != nil {
		return decimal.Zero, err
	}

	balance := decimal.Zero
	for _, t := range transactions {
		if t.Type.Credit() {
			balance = balance.Add(t.Amount)
		} else {
			balance = balance.Sub(t.Amount)
		}
	}

	return balance, nil
}

// AllocatedBalance returns the sum of all sub-account balances of a
// wallet, i.e. the part of the wallet balance that is not freely
// available anymore.
func AllocatedBalance(db *gorm.DB, walletID uuid.UUID) (decimal.Decimal, error) {
	var subAccounts []SubAccount

	err := db.Where(SubAccount{WalletID: walletID}).Find(&subAccounts).Error
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, s := range subAccounts {
		sum = sum.Add(s.CurrentBalance)
	}

	return sum, nil
}

// BalanceMismatch describes a sub-account whose cached balance drifted
// from the ledger sum.
type BalanceMismatch struct {
	SubAccountID  uuid.UUID
	CachedBalance decimal.Decimal
	LedgerBalance decimal.Decimal
}

// ReconcileBalances verifies the cached balance of every sub-account
// against the ledger and returns all mismatches.
func ReconcileBalances(db *gorm.DB) ([]BalanceMismatch, error) {
	var subAccounts []SubAccount

	err := db.Find(&subAccounts).Error
	if err != nil {
		return nil, err
	}

	var mismatches []BalanceMismatch
	for _, s := range subAccounts {
		ledger, err := s.LedgerBalance(db)
		if err != nil {
			return nil, err
		}

		if !ledger.Equal(s.CurrentBalance) {
			mismatches = append(mismatches, BalanceMismatch{
				SubAccountID:  s.ID,
				CachedBalance: s.CurrentBalance,
				LedgerBalance: ledger,
			})
		}
	}

	return mismatches, nil
}
