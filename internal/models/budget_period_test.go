package models_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/types"
)

func (suite *TestSuiteStandard) TestBudgetPeriodDefaults() {
	period := suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     uuid.New(),
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 8, 1),
		EndDate:      types.NewDate(2026, 8, 31),
		BudgetAmount: decimal.NewFromInt(500),
	})

	suite.Assert().True(period.AlertThreshold.Equal(decimal.NewFromInt(80)), "alert threshold is %s", period.AlertThreshold)
	suite.Assert().Equal(models.BudgetStatusOnTrack, period.Status)
	suite.Assert().False(period.AlertSent)
}

func (suite *TestSuiteStandard) TestBudgetPeriodInvalid() {
	tests := []struct {
		name   string
		period models.BudgetPeriod
		err    error
	}{
		{
			"unknown period type",
			models.BudgetPeriod{
				WalletID:     uuid.New(),
				PeriodType:   "FORTNIGHTLY",
				StartDate:    types.NewDate(2026, 8, 1),
				EndDate:      types.NewDate(2026, 8, 31),
				BudgetAmount: decimal.NewFromInt(500),
			},
			models.ErrBudgetPeriodTypeInvalid,
		},
		{
			"zero budget",
			models.BudgetPeriod{
				WalletID:   uuid.New(),
				PeriodType: models.PeriodTypeMonthly,
				StartDate:  types.NewDate(2026, 8, 1),
				EndDate:    types.NewDate(2026, 8, 31),
			},
			models.ErrBudgetAmountNotPositive,
		},
		{
			"end before start",
			models.BudgetPeriod{
				WalletID:     uuid.New(),
				PeriodType:   models.PeriodTypeCustom,
				StartDate:    types.NewDate(2026, 8, 31),
				EndDate:      types.NewDate(2026, 8, 1),
				BudgetAmount: decimal.NewFromInt(500),
			},
			models.ErrBudgetPeriodInvalid,
		},
	}

	for _, tt := range tests {
		err := models.DB.Create(&tt.period).Error
		suite.Assert().ErrorIs(err, tt.err, "test case %q", tt.name)
	}
}

func (suite *TestSuiteStandard) TestBudgetPeriodOverlap() {
	walletID := uuid.New()
	subAccount := suite.createTestSubAccount(models.SubAccount{WalletID: walletID, Name: "Budgeted"})
	subAccountID := subAccount.ID

	_ = suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     walletID,
		SubAccountID: &subAccountID,
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 8, 1),
		EndDate:      types.NewDate(2026, 8, 31),
		BudgetAmount: decimal.NewFromInt(500),
	})

	// Touching the existing range by a single day is rejected
	err := models.DB.Create(&models.BudgetPeriod{
		WalletID:     walletID,
		SubAccountID: &subAccountID,
		PeriodType:   models.PeriodTypeCustom,
		StartDate:    types.NewDate(2026, 8, 31),
		EndDate:      types.NewDate(2026, 9, 15),
		BudgetAmount: decimal.NewFromInt(100),
	}).Error
	suite.Assert().ErrorIs(err, models.ErrBudgetPeriodOverlap)

	// The wallet-wide scope is separate from the sub-account scope
	_ = suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     walletID,
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 8, 1),
		EndDate:      types.NewDate(2026, 8, 31),
		BudgetAmount: decimal.NewFromInt(2000),
	})

	// An adjacent range is fine
	_ = suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     walletID,
		SubAccountID: &subAccountID,
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 9, 1),
		EndDate:      types.NewDate(2026, 9, 30),
		BudgetAmount: decimal.NewFromInt(500),
	})
}

func (suite *TestSuiteStandard) TestBudgetPeriodUpdateOverlap() {
	walletID := uuid.New()

	_ = suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     walletID,
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 8, 1),
		EndDate:      types.NewDate(2026, 8, 31),
		BudgetAmount: decimal.NewFromInt(500),
	})

	september := suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     walletID,
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 9, 1),
		EndDate:      types.NewDate(2026, 9, 30),
		BudgetAmount: decimal.NewFromInt(500),
	})

	// Stretching September into August collides
	err := models.DB.Model(&september).Updates(models.BudgetPeriod{
		StartDate: types.NewDate(2026, 8, 15),
	}).Error
	suite.Assert().ErrorIs(err, models.ErrBudgetPeriodOverlap)

	// Shrinking is fine
	err = models.DB.Model(&september).Updates(models.BudgetPeriod{
		EndDate: types.NewDate(2026, 9, 20),
	}).Error
	suite.Assert().NoError(err)
}

func (suite *TestSuiteStandard) TestBudgetPeriodCompletedImmutable() {
	period := suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     uuid.New(),
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 7, 1),
		EndDate:      types.NewDate(2026, 7, 31),
		BudgetAmount: decimal.NewFromInt(500),
	})

	affected, err := models.CompleteExpiredBudgets(models.DB, time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	suite.Assert().EqualValues(1, affected)

	var completed models.BudgetPeriod
	suite.Require().NoError(models.DB.First(&completed, period.ID).Error)
	suite.Assert().Equal(models.BudgetStatusCompleted, completed.Status)

	err = models.DB.Model(&completed).Updates(models.BudgetPeriod{
		BudgetAmount: decimal.NewFromInt(600),
	}).Error
	suite.Assert().ErrorIs(err, models.ErrBudgetPeriodCompleted)

	// The sweep is idempotent
	affected, err = models.CompleteExpiredBudgets(models.DB, time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	suite.Assert().EqualValues(0, affected)
}

func (suite *TestSuiteStandard) TestRecordSpending() {
	walletID := uuid.New()
	subAccount := suite.createTestSubAccount(models.SubAccount{WalletID: walletID, Name: "Groceries"})
	subAccountID := subAccount.ID

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	scoped := suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     walletID,
		SubAccountID: &subAccountID,
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 8, 1),
		EndDate:      types.NewDate(2026, 8, 31),
		BudgetAmount: decimal.NewFromInt(100),
	})

	walletWide := suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     walletID,
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 8, 1),
		EndDate:      types.NewDate(2026, 8, 31),
		BudgetAmount: decimal.NewFromInt(1000),
	})

	// A sub-account spend hits the scoped and the wallet-wide period
	updated, err := models.RecordSpending(models.DB, walletID, &subAccountID, decimal.NewFromInt(50), now)
	suite.Require().NoError(err)
	suite.Assert().Len(updated, 2)

	var reloaded models.BudgetPeriod
	suite.Require().NoError(models.DB.First(&reloaded, scoped.ID).Error)
	suite.Assert().True(reloaded.SpentAmount.Equal(decimal.NewFromInt(50)))
	suite.Assert().Equal(models.BudgetStatusOnTrack, reloaded.Status)

	// A wallet-level spend only hits the wallet-wide period
	updated, err = models.RecordSpending(models.DB, walletID, nil, decimal.NewFromInt(10), now)
	suite.Require().NoError(err)
	suite.Require().Len(updated, 1)
	suite.Assert().Equal(walletWide.ID, updated[0].ID)

	// 30 more puts the scoped period at 80 % and into WARNING
	updated, err = models.RecordSpending(models.DB, walletID, &subAccountID, decimal.NewFromInt(30), now)
	suite.Require().NoError(err)

	suite.Require().NoError(models.DB.First(&reloaded, scoped.ID).Error)
	suite.Assert().Equal(models.BudgetStatusWarning, reloaded.Status)
	suite.Assert().False(reloaded.AlertSent, "recording a spend must not flip the alert flag")
}

// A single large spend can take a period from ON_TRACK straight to EXCEEDED.
func (suite *TestSuiteStandard) TestRecordSpendingStraightToExceeded() {
	walletID := uuid.New()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	period := suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     walletID,
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 8, 1),
		EndDate:      types.NewDate(2026, 8, 31),
		BudgetAmount: decimal.NewFromInt(100),
	})

	_, err := models.RecordSpending(models.DB, walletID, nil, decimal.NewFromInt(150), now)
	suite.Require().NoError(err)

	var reloaded models.BudgetPeriod
	suite.Require().NoError(models.DB.First(&reloaded, period.ID).Error)
	suite.Assert().Equal(models.BudgetStatusExceeded, reloaded.Status)
	suite.Assert().True(reloaded.Remaining().IsNegative())
}

func (suite *TestSuiteStandard) TestRecordSpendingNotPositive() {
	_, err := models.RecordSpending(models.DB, uuid.New(), nil, decimal.Zero, time.Now())
	suite.Assert().ErrorIs(err, models.ErrAmountNotPositive)
}

func (suite *TestSuiteStandard) TestRecordSpendingOutsidePeriod() {
	walletID := uuid.New()

	_ = suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     walletID,
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 8, 1),
		EndDate:      types.NewDate(2026, 8, 31),
		BudgetAmount: decimal.NewFromInt(100),
	})

	updated, err := models.RecordSpending(models.DB, walletID, nil, decimal.NewFromInt(10), time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	suite.Assert().Empty(updated)
}

// Every period crosses the alert sweep exactly once over its lifetime.
func (suite *TestSuiteStandard) TestCheckBudgetAlerts() {
	walletID := uuid.New()
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)

	period := suite.createTestBudgetPeriod(models.BudgetPeriod{
		WalletID:     walletID,
		PeriodType:   models.PeriodTypeMonthly,
		StartDate:    types.NewDate(2026, 8, 1),
		EndDate:      types.NewDate(2026, 8, 31),
		BudgetAmount: decimal.NewFromInt(100),
	})

	// Nothing to alert on yet
	alerts, err := models.CheckBudgetAlerts(models.DB, now)
	suite.Require().NoError(err)
	suite.Assert().Empty(alerts)

	_, err = models.RecordSpending(models.DB, walletID, nil, decimal.NewFromInt(90), now)
	suite.Require().NoError(err)

	alerts, err = models.CheckBudgetAlerts(models.DB, now)
	suite.Require().NoError(err)
	suite.Require().Len(alerts, 1)

	suite.Assert().Equal(period.ID, alerts[0].ID)
	suite.Assert().True(alerts[0].AlertSent)
	suite.Require().NotNil(alerts[0].AlertSentAt)

	// Repeated sweeps do not alert again, not even after more spending
	alerts, err = models.CheckBudgetAlerts(models.DB, now)
	suite.Require().NoError(err)
	suite.Assert().Empty(alerts)

	_, err = models.RecordSpending(models.DB, walletID, nil, decimal.NewFromInt(50), now)
	suite.Require().NoError(err)

	alerts, err = models.CheckBudgetAlerts(models.DB, now)
	suite.Require().NoError(err)
	suite.Assert().Empty(alerts)
}

func (suite *TestSuiteStandard) TestAutoCreateMonthlyBudgets() {
	walletID := uuid.New()

	budgeted := suite.createTestSubAccount(models.SubAccount{
		WalletID:      walletID,
		Name:          "Budgeted",
		MonthlyBudget: decimal.NewFromInt(500),
	})

	// No monthly budget configured
	_ = suite.createTestSubAccount(models.SubAccount{
		WalletID: walletID,
		Name:     "Unbudgeted",
	})

	// Archived sub-accounts are skipped
	_ = suite.createTestSubAccount(models.SubAccount{
		WalletID:      walletID,
		Name:          "Archived",
		MonthlyBudget: decimal.NewFromInt(100),
		Archived:      true,
	})

	month := types.NewMonth(2026, 8)

	created, err := models.AutoCreateMonthlyBudgets(models.DB, walletID, month)
	suite.Require().NoError(err)
	suite.Require().Len(created, 1)

	period := created[0]
	suite.Require().NotNil(period.SubAccountID)
	suite.Assert().Equal(budgeted.ID, *period.SubAccountID)
	suite.Assert().Equal(models.PeriodTypeMonthly, period.PeriodType)
	suite.Assert().True(period.StartDate.Equal(types.NewDate(2026, 8, 1)))
	suite.Assert().True(period.EndDate.Equal(types.NewDate(2026, 8, 31)))
	suite.Assert().True(period.BudgetAmount.Equal(decimal.NewFromInt(500)))

	// The operation is idempotent per month
	created, err = models.AutoCreateMonthlyBudgets(models.DB, walletID, month)
	suite.Require().NoError(err)
	suite.Assert().Empty(created)

	// The next month gets its own period
	created, err = models.AutoCreateMonthlyBudgets(models.DB, walletID, month.AddDate(0, 1))
	suite.Require().NoError(err)
	suite.Assert().Len(created, 1)
}
