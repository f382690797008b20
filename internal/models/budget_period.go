package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/types"
)

// PeriodType is the calendar shape of a budget period.
type PeriodType string

const (
	PeriodTypeWeekly    PeriodType = "WEEKLY"
	PeriodTypeMonthly   PeriodType = "MONTHLY"
	PeriodTypeQuarterly PeriodType = "QUARTERLY"
	PeriodTypeYearly    PeriodType = "YEARLY"
	PeriodTypeCustom    PeriodType = "CUSTOM"
)

// Valid reports whether the period type is known.
func (t PeriodType) Valid() bool {
	switch t {
	case PeriodTypeWeekly, PeriodTypeMonthly, PeriodTypeQuarterly, PeriodTypeYearly, PeriodTypeCustom:
		return true
	}

	return false
}

// BudgetStatus is the state of a budget period.
type BudgetStatus string

const (
	BudgetStatusOnTrack   BudgetStatus = "ON_TRACK"
	BudgetStatusWarning   BudgetStatus = "WARNING"
	BudgetStatusExceeded  BudgetStatus = "EXCEEDED"
	BudgetStatusCompleted BudgetStatus = "COMPLETED"
)

// BudgetPeriod tracks spending against a cap for a wallet or a single
// sub-account over a bounded time window.
//
// Periods for the same (wallet, sub-account) scope must never overlap.
// A period whose end date has passed becomes COMPLETED and is
// immutable from then on.
type BudgetPeriod struct {
	DefaultModel
	WalletID       uuid.UUID       `json:"walletId"`
	SubAccountID   *uuid.UUID      `json:"subAccountId"` // nil tracks the whole wallet
	SubAccount     *SubAccount     `json:"-"`
	PeriodType     PeriodType      `json:"periodType"`
	StartDate      types.Date      `json:"startDate"`
	EndDate        types.Date      `json:"endDate"` // inclusive
	BudgetAmount   decimal.Decimal `json:"budgetAmount" gorm:"type:DECIMAL(20,8)"`
	SpentAmount    decimal.Decimal `json:"spentAmount" gorm:"type:DECIMAL(20,8)"`
	Status         BudgetStatus    `json:"status"`
	AlertThreshold decimal.Decimal `json:"alertThreshold" gorm:"type:DECIMAL(20,8)"` // percent, defaults to 80
	AlertSent      bool            `json:"alertSent"`
	AlertSentAt    *time.Time      `json:"alertSentAt"`
}

// Remaining returns the budget amount that is left. It may go negative.
func (b BudgetPeriod) Remaining() decimal.Decimal {
	return b.BudgetAmount.Sub(b.SpentAmount)
}

// PercentUsed returns how much of the budget has been spent, in percent.
func (b BudgetPeriod) PercentUsed() decimal.Decimal {
	if !b.BudgetAmount.IsPositive() {
		return decimal.Zero
	}

	return b.SpentAmount.Div(b.BudgetAmount).Mul(oneHundred)
}

var oneHundred = decimal.NewFromInt(100)

// deriveStatus computes the non-terminal status from the current spend.
// A single large spend can jump straight from ON_TRACK to EXCEEDED.
func (b BudgetPeriod) deriveStatus() BudgetStatus {
	if b.Remaining().IsNegative() {
		return BudgetStatusExceeded
	}

	if b.PercentUsed().GreaterThanOrEqual(b.AlertThreshold) {
		return BudgetStatusWarning
	}

	return BudgetStatusOnTrack
}

// BeforeCreate validates the period and rejects overlaps with existing
// periods for the same scope.
func (b *BudgetPeriod) BeforeCreate(tx *gorm.DB) error {
	_ = b.DefaultModel.BeforeCreate(tx)

	if b.AlertThreshold.IsZero() {
		b.AlertThreshold = decimal.NewFromInt(80)
	}

	if b.Status == "" {
		b.Status = BudgetStatusOnTrack
	}

	if !b.PeriodType.Valid() {
		return ErrBudgetPeriodTypeInvalid
	}

	if !b.BudgetAmount.IsPositive() {
		return ErrBudgetAmountNotPositive
	}

	if b.EndDate.Before(b.StartDate) {
		return ErrBudgetPeriodInvalid
	}

	return b.checkOverlap(tx, *b)
}

// BeforeUpdate protects completed periods and re-checks the overlap
// invariant when the date range changes.
func (b *BudgetPeriod) BeforeUpdate(tx *gorm.DB) error {
	if b.Status == BudgetStatusCompleted {
		return ErrBudgetPeriodCompleted
	}

	if tx.Statement.Changed("StartDate", "EndDate") {
		toSave := tx.Statement.Dest.(BudgetPeriod)
		merged := *b
		if !toSave.StartDate.IsZero() {
			merged.StartDate = toSave.StartDate
		}
		if !toSave.EndDate.IsZero() {
			merged.EndDate = toSave.EndDate
		}

		if merged.EndDate.Before(merged.StartDate) {
			return ErrBudgetPeriodInvalid
		}

		return b.checkOverlap(tx, merged)
	}

	return nil
}

// checkOverlap rejects a period whose [StartDate, EndDate] range
// intersects an existing period for the same wallet and sub-account
// scope.
func (b *BudgetPeriod) checkOverlap(tx *gorm.DB, toSave BudgetPeriod) error {
	q := tx.Model(&BudgetPeriod{}).
		Where("wallet_id = ?", toSave.WalletID).
		Where("date(start_date) <= date(?)", toSave.EndDate).
		Where("date(end_date) >= date(?)", toSave.StartDate)

	if toSave.SubAccountID == nil {
		q = q.Where("sub_account_id IS NULL")
	} else {
		q = q.Where("sub_account_id = ?", *toSave.SubAccountID)
	}

	if toSave.ID != uuid.Nil {
		q = q.Where("id != ?", toSave.ID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		return ErrBudgetPeriodOverlap
	}

	return nil
}

// RecordSpending adds a spend to all currently active, non-completed
// budget periods in scope.
//
// A spend on a sub-account updates both the sub-account-scoped period
// and the wallet-wide period when both exist. Each period is re-read
// and updated in its own transaction so that concurrent spends on the
// same period never lose updates. The status is re-derived from the
// new spend; the alert flag itself is only flipped by
// CheckBudgetAlerts so that every period alerts at most once.
func RecordSpending(db *gorm.DB, walletID uuid.UUID, subAccountID *uuid.UUID, amount decimal.Decimal, now time.Time) ([]BudgetPeriod, error) {
	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}

	today := types.DateOf(now)

	q := db.Model(&BudgetPeriod{}).
		Where("wallet_id = ?", walletID).
		Where("status != ?", BudgetStatusCompleted).
		Where("date(start_date) <= date(?)", today).
		Where("date(end_date) >= date(?)", today)

	if subAccountID == nil {
		q = q.Where("sub_account_id IS NULL")
	} else {
		q = q.Where(db.Where("sub_account_id IS NULL").Or("sub_account_id = ?", *subAccountID))
	}

	var ids []uuid.UUID
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	var updated []BudgetPeriod
	for _, id := range ids {
		var period BudgetPeriod

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&period, id).Error; err != nil {
				return err
			}

			period.SpentAmount = period.SpentAmount.Add(amount)
			period.Status = period.deriveStatus()

			return tx.Model(&period).UpdateColumns(map[string]interface{}{
				"spent_amount": period.SpentAmount,
				"status":       period.Status,
			}).Error
		})
		if err != nil {
			return updated, err
		}

		updated = append(updated, period)
	}

	return updated, nil
}

// CheckBudgetAlerts returns all periods that crossed their alert
// threshold and have not alerted yet, marking them as alerted in the
// same transaction. Every period is returned exactly once over its
// lifetime.
func CheckBudgetAlerts(db *gorm.DB, now time.Time) ([]BudgetPeriod, error) {
	var periods []BudgetPeriod

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("alert_sent = ?", false).
			Where("status IN ?", []BudgetStatus{BudgetStatusWarning, BudgetStatusExceeded}).
			Find(&periods).Error
		if err != nil {
			return err
		}

		sentAt := now.In(time.UTC)
		for i := range periods {
			err := tx.Model(&periods[i]).UpdateColumns(map[string]interface{}{
				"alert_sent":    true,
				"alert_sent_at": sentAt,
			}).Error
			if err != nil {
				return err
			}

			periods[i].AlertSent = true
			periods[i].AlertSentAt = &sentAt
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return periods, nil
}

// CompleteExpiredBudgets marks all periods whose end date has passed as
// COMPLETED. The sweep is idempotent.
func CompleteExpiredBudgets(db *gorm.DB, now time.Time) (int64, error) {
	res := db.Model(&BudgetPeriod{}).
		Where("status != ?", BudgetStatusCompleted).
		Where("date(end_date) < date(?)", types.DateOf(now)).
		UpdateColumns(map[string]interface{}{"status": BudgetStatusCompleted})

	return res.RowsAffected, res.Error
}

// AutoCreateMonthlyBudgets creates a MONTHLY budget period covering the
// given month for every sub-account of the wallet that has a monthly
// budget configured. Sub-accounts that already have a period touching
// the month are skipped, so the operation is idempotent per calendar
// month.
func AutoCreateMonthlyBudgets(db *gorm.DB, walletID uuid.UUID, month types.Month) ([]BudgetPeriod, error) {
	var subAccounts []SubAccount

	err := db.
		Where(&SubAccount{WalletID: walletID}).
		Where("archived = ?", false).
		Where("monthly_budget > ?", 0).
		Find(&subAccounts).Error
	if err != nil {
		return nil, err
	}

	firstDay := month.FirstDay()
	lastDay := month.LastDay()

	var created []BudgetPeriod
	for _, subAccount := range subAccounts {
		var count int64
		err := db.Model(&BudgetPeriod{}).
			Where("wallet_id = ?", walletID).
			Where("sub_account_id = ?", subAccount.ID).
			Where("date(start_date) <= date(?)", lastDay).
			Where("date(end_date) >= date(?)", firstDay).
			Count(&count).Error
		if err != nil {
			return created, err
		}

		if count > 0 {
			continue
		}

		subAccountID := subAccount.ID
		period := BudgetPeriod{
			WalletID:     walletID,
			SubAccountID: &subAccountID,
			PeriodType:   PeriodTypeMonthly,
			StartDate:    firstDay,
			EndDate:      lastDay,
			BudgetAmount: subAccount.MonthlyBudget,
		}
		if err := db.Create(&period).Error; err != nil {
			return created, err
		}

		created = append(created, period)
	}

	return created, nil
}
