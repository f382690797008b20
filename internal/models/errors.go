package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")
)

// Sub-account errors
var (
	ErrSubAccountNameNotUnique  = errors.New("the sub-account name must be unique for the wallet")
	ErrSubAccountArchived       = errors.New("the sub-account is archived")
	ErrSubAccountBalanceNotZero = errors.New("sub-accounts with a remaining balance cannot be deleted")
	ErrBalanceNegative          = errors.New("the sub-account balance must never be negative")
)

// Ledger errors
var (
	ErrAmountNotPositive      = errors.New("the amount must be larger than zero")
	ErrLedgerEntryImmutable   = errors.New("ledger entries are immutable once written")
	ErrLedgerOutOfBalance     = errors.New("the balance after the transaction does not match the balance before plus or minus the amount")
	ErrTransactionTypeInvalid = errors.New("the specified transaction type is invalid")
)

// Allocation rule errors
var (
	ErrRuleTypeInvalid        = errors.New("the specified rule type is invalid")
	ErrTriggerTypeInvalid     = errors.New("the specified trigger type is invalid")
	ErrPercentageOutOfRange   = errors.New("the percentage must be larger than zero and at most 100")
	ErrFixedAmountNotPositive = errors.New("the fixed amount must be larger than zero")
	ErrFrequencyRequired      = errors.New("scheduled rules require a valid frequency")
	ErrDayAnchorInvalid       = errors.New("the day anchor of the rule is invalid")
	ErrInsufficientFunds      = errors.New("the wallet does not have enough unallocated funds")
	ErrInsufficientBalance    = errors.New("the sub-account balance is not sufficient for this debit")
)

// Budget period errors
var (
	ErrBudgetAmountNotPositive = errors.New("the budget amount must be larger than zero")
	ErrBudgetPeriodInvalid     = errors.New("the end date of a budget period must not be before its start date")
	ErrBudgetPeriodOverlap     = errors.New("the budget period overlaps with an existing period for the same wallet and sub-account")
	ErrBudgetPeriodTypeInvalid = errors.New("the specified period type is invalid")
	ErrBudgetPeriodCompleted   = errors.New("completed budget periods cannot be changed")
)
