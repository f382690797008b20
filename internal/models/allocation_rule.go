package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/allocation"
)

// TriggerType determines what makes an allocation rule fire.
type TriggerType string

const (
	TriggerOnReceive  TriggerType = "ON_RECEIVE"
	TriggerOnSchedule TriggerType = "ON_SCHEDULE"
	TriggerManual     TriggerType = "MANUAL"
)

// Valid reports whether the trigger type is known.
func (t TriggerType) Valid() bool {
	switch t {
	case TriggerOnReceive, TriggerOnSchedule, TriggerManual:
		return true
	}

	return false
}

// AllocationRule declares how inbound or scheduled funds are routed
// into a sub-account.
type AllocationRule struct {
	DefaultModel
	WalletID         uuid.UUID             `json:"walletId"`
	SubAccountID     uuid.UUID             `json:"subAccountId"`
	SubAccount       SubAccount            `json:"-"`
	Type             allocation.RuleType   `json:"type"`
	Percentage       decimal.Decimal       `json:"percentage" gorm:"type:DECIMAL(20,8)"`  // 0 < p <= 100, required for PERCENTAGE rules
	FixedAmount      decimal.Decimal       `json:"fixedAmount" gorm:"type:DECIMAL(20,8)"` // > 0, required for FIXED_AMOUNT rules
	Trigger          TriggerType           `json:"trigger"`
	MinTriggerAmount decimal.Decimal       `json:"minTriggerAmount" gorm:"type:DECIMAL(20,8)"`
	Frequency        allocation.Frequency  `json:"frequency"`  // required for ON_SCHEDULE rules
	DayOfMonth       int                   `json:"dayOfMonth"` // anchor for MONTHLY and QUARTERLY rules
	DayOfWeek        time.Weekday          `json:"dayOfWeek"`  // anchor for WEEKLY rules, 0 = Sunday
	NextScheduledAt  *time.Time            `json:"nextScheduledAt"`
	LastExecutedAt   *time.Time            `json:"lastExecutedAt"`
	Priority         int                   `json:"priority"` // higher priority rules are evaluated first
	Archived         bool                  `json:"archived"`
}

// BeforeSave validates the rule configuration. Invalid configurations
// are rejected here and never persisted.
func (r *AllocationRule) BeforeSave(_ *gorm.DB) error {
	switch r.Type {
	case allocation.TypePercentage:
		if !r.Percentage.IsPositive() || r.Percentage.GreaterThan(decimal.NewFromInt(100)) {
			return ErrPercentageOutOfRange
		}
	case allocation.TypeFixedAmount:
		if !r.FixedAmount.IsPositive() {
			return ErrFixedAmountNotPositive
		}
	case allocation.TypeRemainder:
		// No amount configuration needed
	default:
		return ErrRuleTypeInvalid
	}

	if !r.Trigger.Valid() {
		return ErrTriggerTypeInvalid
	}

	if r.Trigger == TriggerOnSchedule {
		if !r.Frequency.Valid() {
			return ErrFrequencyRequired
		}

		if r.DayOfMonth < 0 || r.DayOfMonth > 31 {
			return ErrDayAnchorInvalid
		}

		if r.DayOfWeek < time.Sunday || r.DayOfWeek > time.Saturday {
			return ErrDayAnchorInvalid
		}
	}

	return nil
}

// BeforeCreate verifies that the sub-account exists.
func (r *AllocationRule) BeforeCreate(tx *gorm.DB) error {
	_ = r.DefaultModel.BeforeCreate(tx)

	toSave := tx.Statement.Dest.(*AllocationRule)
	return r.checkIntegrity(tx, *toSave)
}

// BeforeUpdate verifies the state of the rule before
// committing an update to the database.
func (r *AllocationRule) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("SubAccountID") {
		toSave := tx.Statement.Dest.(AllocationRule)
		return r.checkIntegrity(tx, toSave)
	}

	return nil
}

// checkIntegrity verifies references to other resources
func (r *AllocationRule) checkIntegrity(tx *gorm.DB, toSave AllocationRule) error {
	return tx.First(&SubAccount{}, toSave.SubAccountID).Error
}

// EvaluatorRule converts the rule for the evaluator.
func (r AllocationRule) EvaluatorRule() allocation.Rule {
	return allocation.Rule{
		ID:               r.ID,
		SubAccountID:     r.SubAccountID,
		Type:             r.Type,
		Percentage:       r.Percentage,
		FixedAmount:      r.FixedAmount,
		MinTriggerAmount: r.MinTriggerAmount,
		Priority:         r.Priority,
	}
}

// Due reports whether a scheduled rule is due for execution.
func (r AllocationRule) Due(now time.Time) bool {
	return r.NextScheduledAt == nil || !r.NextScheduledAt.After(now)
}

// ActiveRules returns the active rules of a wallet for a trigger,
// ordered by descending priority with creation order as tie-breaker.
// This is the order the evaluator expects.
func ActiveRules(db *gorm.DB, walletID uuid.UUID, trigger TriggerType) ([]AllocationRule, error) {
	var rules []AllocationRule

	err := db.
		Where(&AllocationRule{WalletID: walletID, Trigger: trigger}).
		Where("archived = ?", false).
		Order("priority DESC, datetime(created_at) ASC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	return rules, nil
}

// DueRules returns all active scheduled rules across wallets that are
// due at the given time.
func DueRules(db *gorm.DB, now time.Time) ([]AllocationRule, error) {
	var rules []AllocationRule

	err := db.
		Where(&AllocationRule{Trigger: TriggerOnSchedule}).
		Where("archived = ?", false).
		Where(db.Where("next_scheduled_at IS NULL").Or("datetime(next_scheduled_at) <= datetime(?)", now)).
		Order("datetime(created_at) ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}

	return rules, nil
}
