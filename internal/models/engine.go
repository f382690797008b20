package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/allocation"
)

// WalletBalanceReader provides the current balance of a wallet.
//
// Wallet custody is handled by the adjacent wallet service; this is the
// contract the engine consumes for scheduled percentage rules and for
// checking unallocated funds before manual allocations.
type WalletBalanceReader interface {
	WalletBalance(walletID uuid.UUID) (decimal.Decimal, error)
}

// ExecutionInput describes one allocation the engine should perform.
type ExecutionInput struct {
	RuleID              *uuid.UUID
	SubAccountID        uuid.UUID
	Amount              decimal.Decimal
	TriggeredBy         ExecutionTrigger
	SourceTransactionID *uuid.UUID
	Reference           string
}

// ExecuteAllocation credits a sub-account as one atomic unit: the
// balance is re-read inside the transaction, a ledger entry is
// appended and the cached balance is updated.
//
// Failures are recorded as a FAILED execution and returned; they never
// affect sibling allocations of the same evaluation batch. Manual
// executions are ledgered but skip the audit table and receive a
// synthetic execution ID.
func ExecuteAllocation(db *gorm.DB, input ExecutionInput) (AllocationExecution, error) {
	execution := AllocationExecution{
		RuleID:              input.RuleID,
		SubAccountID:        input.SubAccountID,
		Amount:              input.Amount,
		TriggeredBy:         input.TriggeredBy,
		SourceTransactionID: input.SourceTransactionID,
		Status:              ExecutionStatusCompleted,
		ExecutedAt:          time.Now().In(time.UTC),
	}

	err := executeAllocationTx(db, input)
	if err != nil {
		execution.Status = ExecutionStatusFailed
		execution.Message = err.Error()
	}

	if input.TriggeredBy == ExecutionTriggerManual {
		if err != nil {
			return execution, err
		}

		execution.ID = uuid.New()
		return execution, nil
	}

	if createErr := db.Create(&execution).Error; createErr != nil {
		return execution, createErr
	}

	return execution, err
}

func executeAllocationTx(db *gorm.DB, input ExecutionInput) error {
	if !input.Amount.IsPositive() {
		return ErrAmountNotPositive
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var subAccount SubAccount

		// Re-read the balance inside the transaction so that concurrent
		// allocations to the same sub-account serialize cleanly
		if err := tx.First(&subAccount, input.SubAccountID).Error; err != nil {
			return err
		}

		if subAccount.Archived {
			return ErrSubAccountArchived
		}

		balanceBefore := subAccount.CurrentBalance
		balanceAfter := balanceBefore.Add(input.Amount)

		entry := SubAccountTransaction{
			SubAccountID:  subAccount.ID,
			Type:          TransactionTypeAllocation,
			Amount:        input.Amount,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceAfter,
			Reference:     input.Reference,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&subAccount).Update("current_balance", balanceAfter).Error
	})
}

// ProcessIncomingFunds routes an inbound funds event through the
// evaluator and executes every resulting allocation independently.
// Per-allocation failures are contained in the returned execution
// records.
func ProcessIncomingFunds(db *gorm.DB, walletID uuid.UUID, amount decimal.Decimal, sourceTransactionID *uuid.UUID) ([]AllocationExecution, error) {
	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}

	rules, err := ActiveRules(db, walletID, TriggerOnReceive)
	if err != nil {
		return nil, err
	}

	evaluatorRules := make([]allocation.Rule, 0, len(rules))
	for _, rule := range rules {
		evaluatorRules = append(evaluatorRules, rule.EvaluatorRule())
	}

	var executions []AllocationExecution
	for _, a := range allocation.Evaluate(evaluatorRules, amount) {
		ruleID := a.RuleID
		execution, _ := ExecuteAllocation(db, ExecutionInput{
			RuleID:              &ruleID,
			SubAccountID:        a.SubAccountID,
			Amount:              a.Amount,
			TriggeredBy:         ExecutionTriggerOnReceive,
			SourceTransactionID: sourceTransactionID,
			Reference:           fmt.Sprintf("rule:%s", ruleID),
		})
		executions = append(executions, execution)
	}

	return executions, nil
}

// ScheduledSweepResult summarizes one scheduled allocation sweep.
type ScheduledSweepResult struct {
	Due      int
	Executed int
	Failed   int
	Skipped  int // due rules that produced no positive allocation
}

// ProcessScheduledAllocations executes all due scheduled rules and
// re-arms them.
//
// Every due rule is evaluated on its own against the wallet's current
// balance, executed, and re-armed from now, regardless of outcome.
// A failed rule is therefore not retried until its next natural period;
// the sweep only reports the failure.
func ProcessScheduledAllocations(db *gorm.DB, balances WalletBalanceReader, now time.Time) (ScheduledSweepResult, error) {
	rules, err := DueRules(db, now)
	if err != nil {
		return ScheduledSweepResult{}, err
	}

	result := ScheduledSweepResult{Due: len(rules)}
	for _, rule := range rules {
		balance, err := balances.WalletBalance(rule.WalletID)
		if err != nil {
			result.Failed++
			recordScheduledFailure(db, rule, err)
		} else {
			allocations := allocation.Evaluate([]allocation.Rule{rule.EvaluatorRule()}, balance)
			if len(allocations) == 0 {
				result.Skipped++
			}

			for _, a := range allocations {
				ruleID := rule.ID
				_, err := ExecuteAllocation(db, ExecutionInput{
					RuleID:       &ruleID,
					SubAccountID: a.SubAccountID,
					Amount:       a.Amount,
					TriggeredBy:  ExecutionTriggerScheduled,
					Reference:    fmt.Sprintf("rule:%s", ruleID),
				})
				if err != nil {
					result.Failed++
				} else {
					result.Executed++
				}
			}
		}

		// Re-arm from now even after failures so that the rule cannot
		// cause a re-firing storm
		columns := map[string]interface{}{"last_executed_at": now}
		if next, err := allocation.NextRun(rule.Frequency, rule.DayOfMonth, rule.DayOfWeek, now); err == nil {
			columns["next_scheduled_at"] = next
		}

		if err := db.Model(&rule).UpdateColumns(columns).Error; err != nil {
			return result, err
		}
	}

	return result, nil
}

func recordScheduledFailure(db *gorm.DB, rule AllocationRule, cause error) {
	ruleID := rule.ID
	db.Create(&AllocationExecution{
		RuleID:       &ruleID,
		SubAccountID: rule.SubAccountID,
		TriggeredBy:  ExecutionTriggerScheduled,
		Status:       ExecutionStatusFailed,
		Message:      cause.Error(),
		ExecutedAt:   time.Now().In(time.UTC),
	})
}

// ExecuteManualAllocation credits a sub-account outside of any rule.
// When a wallet balance reader is available, the amount is checked
// against the wallet's unallocated balance first.
func ExecuteManualAllocation(db *gorm.DB, balances WalletBalanceReader, walletID, subAccountID uuid.UUID, amount decimal.Decimal, note string) (uuid.UUID, error) {
	if !amount.IsPositive() {
		return uuid.Nil, ErrAmountNotPositive
	}

	var subAccount SubAccount
	err := db.Where(&SubAccount{WalletID: walletID}).First(&subAccount, subAccountID).Error
	if err != nil {
		return uuid.Nil, err
	}

	if balances != nil {
		walletBalance, err := balances.WalletBalance(walletID)
		if err != nil {
			return uuid.Nil, err
		}

		allocated, err := AllocatedBalance(db, walletID)
		if err != nil {
			return uuid.Nil, err
		}

		if walletBalance.Sub(allocated).LessThan(amount) {
			return uuid.Nil, ErrInsufficientFunds
		}
	}

	reference := "manual"
	if note != "" {
		reference = fmt.Sprintf("manual: %s", note)
	}

	execution, err := ExecuteAllocation(db, ExecutionInput{
		SubAccountID: subAccountID,
		Amount:       amount,
		TriggeredBy:  ExecutionTriggerManual,
		Reference:    reference,
	})
	if err != nil {
		return uuid.Nil, err
	}

	return execution.ID, nil
}

// RecordExpense debits a sub-account for a spend, writing the EXPENSE
// ledger entry and updating the cached balance atomically.
func RecordExpense(db *gorm.DB, walletID, subAccountID uuid.UUID, amount decimal.Decimal, reference string) (SubAccountTransaction, error) {
	return debitSubAccount(db, walletID, subAccountID, TransactionTypeExpense, amount, reference)
}

// ReturnToMain releases funds from a sub-account back to the
// unallocated wallet balance.
func ReturnToMain(db *gorm.DB, walletID, subAccountID uuid.UUID, amount decimal.Decimal, reference string) (SubAccountTransaction, error) {
	return debitSubAccount(db, walletID, subAccountID, TransactionTypeReturnToMain, amount, reference)
}

func debitSubAccount(db *gorm.DB, walletID, subAccountID uuid.UUID, transactionType TransactionType, amount decimal.Decimal, reference string) (SubAccountTransaction, error) {
	if !amount.IsPositive() {
		return SubAccountTransaction{}, ErrAmountNotPositive
	}

	var entry SubAccountTransaction
	err := db.Transaction(func(tx *gorm.DB) error {
		var subAccount SubAccount
		if err := tx.Where(&SubAccount{WalletID: walletID}).First(&subAccount, subAccountID).Error; err != nil {
			return err
		}

		balanceBefore := subAccount.CurrentBalance
		balanceAfter := balanceBefore.Sub(amount)
		if balanceAfter.IsNegative() {
			return ErrInsufficientBalance
		}

		entry = SubAccountTransaction{
			SubAccountID:  subAccount.ID,
			Type:          transactionType,
			Amount:        amount,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceAfter,
			Reference:     reference,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&subAccount).Update("current_balance", balanceAfter).Error
	})
	if err != nil {
		return SubAccountTransaction{}, err
	}

	return entry, nil
}

// Transfer moves funds between two sub-accounts of the same wallet as
// one atomic unit, writing a TRANSFER_OUT and a TRANSFER_IN ledger
// entry.
func Transfer(db *gorm.DB, walletID, fromID, toID uuid.UUID, amount decimal.Decimal, reference string) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var from, to SubAccount
		if err := tx.Where(&SubAccount{WalletID: walletID}).First(&from, fromID).Error; err != nil {
			return err
		}

		if err := tx.Where(&SubAccount{WalletID: walletID}).First(&to, toID).Error; err != nil {
			return err
		}

		if to.Archived {
			return ErrSubAccountArchived
		}

		fromAfter := from.CurrentBalance.Sub(amount)
		if fromAfter.IsNegative() {
			return ErrInsufficientBalance
		}

		out := SubAccountTransaction{
			SubAccountID:  from.ID,
			Type:          TransactionTypeTransferOut,
			Amount:        amount,
			BalanceBefore: from.CurrentBalance,
			BalanceAfter:  fromAfter,
			Reference:     reference,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}

		toAfter := to.CurrentBalance.Add(amount)
		in := SubAccountTransaction{
			SubAccountID:  to.ID,
			Type:          TransactionTypeTransferIn,
			Amount:        amount,
			BalanceBefore: to.CurrentBalance,
			BalanceAfter:  toAfter,
			Reference:     reference,
		}
		if err := tx.Create(&in).Error; err != nil {
			return err
		}

		if err := tx.Model(&from).Update("current_balance", fromAfter).Error; err != nil {
			return err
		}

		return tx.Model(&to).Update("current_balance", toAfter).Error
	})
}
