package models_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/allocation"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
)

func (suite *TestSuiteStandard) TestAllocationRuleInvalid() {
	subAccount := suite.createTestSubAccount(models.SubAccount{
		WalletID: uuid.New(),
		Name:     "Ruled",
	})

	tests := []struct {
		name string
		rule models.AllocationRule
		err  error
	}{
		{
			"percentage zero",
			models.AllocationRule{
				SubAccountID: subAccount.ID,
				Type:         allocation.TypePercentage,
				Trigger:      models.TriggerOnReceive,
			},
			models.ErrPercentageOutOfRange,
		},
		{
			"percentage above 100",
			models.AllocationRule{
				SubAccountID: subAccount.ID,
				Type:         allocation.TypePercentage,
				Percentage:   decimal.NewFromInt(101),
				Trigger:      models.TriggerOnReceive,
			},
			models.ErrPercentageOutOfRange,
		},
		{
			"fixed amount zero",
			models.AllocationRule{
				SubAccountID: subAccount.ID,
				Type:         allocation.TypeFixedAmount,
				Trigger:      models.TriggerOnReceive,
			},
			models.ErrFixedAmountNotPositive,
		},
		{
			"unknown rule type",
			models.AllocationRule{
				SubAccountID: subAccount.ID,
				Type:         "SOMETHING",
				Trigger:      models.TriggerOnReceive,
			},
			models.ErrRuleTypeInvalid,
		},
		{
			"unknown trigger",
			models.AllocationRule{
				SubAccountID: subAccount.ID,
				Type:         allocation.TypeRemainder,
				Trigger:      "ON_FULL_MOON",
			},
			models.ErrTriggerTypeInvalid,
		},
		{
			"scheduled without frequency",
			models.AllocationRule{
				SubAccountID: subAccount.ID,
				Type:         allocation.TypeRemainder,
				Trigger:      models.TriggerOnSchedule,
			},
			models.ErrFrequencyRequired,
		},
		{
			"scheduled with invalid day of month",
			models.AllocationRule{
				SubAccountID: subAccount.ID,
				Type:         allocation.TypeRemainder,
				Trigger:      models.TriggerOnSchedule,
				Frequency:    allocation.FrequencyMonthly,
				DayOfMonth:   32,
			},
			models.ErrDayAnchorInvalid,
		},
	}

	for _, tt := range tests {
		err := models.DB.Create(&tt.rule).Error
		suite.Assert().ErrorIs(err, tt.err, "test case %q", tt.name)
	}
}

func (suite *TestSuiteStandard) TestAllocationRuleNoSubAccount() {
	err := models.DB.Create(&models.AllocationRule{
		WalletID:     uuid.New(),
		SubAccountID: uuid.New(),
		Type:         allocation.TypeRemainder,
		Trigger:      models.TriggerOnReceive,
	}).Error

	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestActiveRules() {
	walletID := uuid.New()
	subAccount := suite.createTestSubAccount(models.SubAccount{
		WalletID: walletID,
		Name:     "Target",
	})

	low := suite.createTestAllocationRule(models.AllocationRule{
		WalletID:     walletID,
		SubAccountID: subAccount.ID,
		Type:         allocation.TypeRemainder,
		Trigger:      models.TriggerOnReceive,
		Priority:     1,
	})

	high := suite.createTestAllocationRule(models.AllocationRule{
		WalletID:     walletID,
		SubAccountID: subAccount.ID,
		Type:         allocation.TypePercentage,
		Percentage:   decimal.NewFromInt(10),
		Trigger:      models.TriggerOnReceive,
		Priority:     5,
	})

	// Archived, scheduled and foreign rules are not returned
	_ = suite.createTestAllocationRule(models.AllocationRule{
		WalletID:     walletID,
		SubAccountID: subAccount.ID,
		Type:         allocation.TypeRemainder,
		Trigger:      models.TriggerOnReceive,
		Archived:     true,
	})

	_ = suite.createTestAllocationRule(models.AllocationRule{
		WalletID:     walletID,
		SubAccountID: subAccount.ID,
		Type:         allocation.TypeRemainder,
		Trigger:      models.TriggerOnSchedule,
		Frequency:    allocation.FrequencyDaily,
	})

	rules, err := models.ActiveRules(models.DB, walletID, models.TriggerOnReceive)
	suite.Require().NoError(err)
	suite.Require().Len(rules, 2)

	suite.Assert().Equal(high.ID, rules[0].ID)
	suite.Assert().Equal(low.ID, rules[1].ID)
}

func (suite *TestSuiteStandard) TestDueRules() {
	walletID := uuid.New()
	subAccount := suite.createTestSubAccount(models.SubAccount{
		WalletID: walletID,
		Name:     "Scheduled",
	})

	now := time.Now().In(time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	unarmed := suite.createTestAllocationRule(models.AllocationRule{
		WalletID:     walletID,
		SubAccountID: subAccount.ID,
		Type:         allocation.TypeRemainder,
		Trigger:      models.TriggerOnSchedule,
		Frequency:    allocation.FrequencyDaily,
	})

	due := suite.createTestAllocationRule(models.AllocationRule{
		WalletID:        walletID,
		SubAccountID:    subAccount.ID,
		Type:            allocation.TypeRemainder,
		Trigger:         models.TriggerOnSchedule,
		Frequency:       allocation.FrequencyDaily,
		NextScheduledAt: &past,
	})

	_ = suite.createTestAllocationRule(models.AllocationRule{
		WalletID:        walletID,
		SubAccountID:    subAccount.ID,
		Type:            allocation.TypeRemainder,
		Trigger:         models.TriggerOnSchedule,
		Frequency:       allocation.FrequencyDaily,
		NextScheduledAt: &future,
	})

	rules, err := models.DueRules(models.DB, now)
	suite.Require().NoError(err)
	suite.Require().Len(rules, 2)

	ids := []uuid.UUID{rules[0].ID, rules[1].ID}
	suite.Assert().Contains(ids, unarmed.ID)
	suite.Assert().Contains(ids, due.ID)
}

func (suite *TestSuiteStandard) TestRuleDue() {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	suite.Assert().True(models.AllocationRule{}.Due(now))
	suite.Assert().True(models.AllocationRule{NextScheduledAt: &past}.Due(now))
	suite.Assert().True(models.AllocationRule{NextScheduledAt: &now}.Due(now))
	suite.Assert().False(models.AllocationRule{NextScheduledAt: &future}.Due(now))
}
