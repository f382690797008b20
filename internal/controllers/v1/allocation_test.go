package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/allocation"
	v1 "github.com/goodness-exchange/gx-protocol-backend-sub004/internal/controllers/v1"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/test"
)

func (suite *TestSuiteStandard) TestAllocationPreview() {
	savings := createTestSubAccount(suite.T(), v1.SubAccountEditable{Name: "Savings"})
	walletID := savings.Data.WalletID
	buffer := createTestSubAccount(suite.T(), v1.SubAccountEditable{WalletID: walletID, Name: "Buffer"})

	percentageRule := createTestAllocationRule(suite.T(), v1.AllocationRuleEditable{
		WalletID:     walletID,
		SubAccountID: savings.Data.ID,
		Type:         allocation.TypePercentage,
		Percentage:   decimal.NewFromInt(30),
		Trigger:      models.TriggerOnReceive,
		Priority:     2,
	})

	remainderRule := createTestAllocationRule(suite.T(), v1.AllocationRuleEditable{
		WalletID:     walletID,
		SubAccountID: buffer.Data.ID,
		Type:         allocation.TypeRemainder,
		Trigger:      models.TriggerOnReceive,
		Priority:     1,
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations/preview", v1.AllocationPreviewEditable{
		WalletID: walletID,
		Amount:   decimal.NewFromInt(100),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.AllocationPreviewResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 2)

	assert.Equal(suite.T(), percentageRule.Data.ID, response.Data[0].RuleID)
	assert.True(suite.T(), response.Data[0].Amount.Equal(decimal.NewFromInt(30)), response.Data[0].Amount.String())

	assert.Equal(suite.T(), remainderRule.Data.ID, response.Data[1].RuleID)
	assert.True(suite.T(), response.Data[1].Amount.Equal(decimal.NewFromInt(70)), response.Data[1].Amount.String())

	assert.True(suite.T(), response.Unallocated.IsZero(), response.Unallocated.String())

	// Nothing is written: balances stay at zero and the audit log stays empty
	r = test.Request(suite.T(), http.MethodGet, savings.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var reloaded v1.SubAccountResponse
	test.DecodeResponse(suite.T(), &r, &reloaded)
	assert.True(suite.T(), reloaded.Data.CurrentBalance.IsZero())

	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocations", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var executions v1.AllocationExecutionListResponse
	test.DecodeResponse(suite.T(), &r, &executions)
	assert.Empty(suite.T(), executions.Data)
}

// Without a remainder rule, the unclaimed part of the amount is reported.
func (suite *TestSuiteStandard) TestAllocationPreviewUnallocated() {
	savings := createTestSubAccount(suite.T(), v1.SubAccountEditable{Name: "Savings"})

	_ = createTestAllocationRule(suite.T(), v1.AllocationRuleEditable{
		WalletID:     savings.Data.WalletID,
		SubAccountID: savings.Data.ID,
		Type:         allocation.TypePercentage,
		Percentage:   decimal.NewFromInt(25),
		Trigger:      models.TriggerOnReceive,
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations/preview", v1.AllocationPreviewEditable{
		WalletID: savings.Data.WalletID,
		Amount:   decimal.NewFromInt(200),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.AllocationPreviewResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 1)
	assert.True(suite.T(), response.Data[0].Amount.Equal(decimal.NewFromInt(50)), response.Data[0].Amount.String())
	assert.True(suite.T(), response.Unallocated.Equal(decimal.NewFromInt(150)), response.Unallocated.String())
}

func (suite *TestSuiteStandard) TestAllocationPreviewInvalid() {
	tests := []struct {
		name string
		body v1.AllocationPreviewEditable
		err  error
	}{
		{
			"zero amount",
			v1.AllocationPreviewEditable{WalletID: uuid.New()},
			models.ErrAmountNotPositive,
		},
		{
			"unknown trigger",
			v1.AllocationPreviewEditable{WalletID: uuid.New(), Amount: decimal.NewFromInt(10), Trigger: "ON_FULL_MOON"},
			models.ErrTriggerTypeInvalid,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/allocations/preview", tt.body)
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)

			var response v1.AllocationPreviewResponse
			test.DecodeResponse(t, &r, &response)
			require.NotNil(t, response.Error)
			assert.Equal(t, tt.err.Error(), *response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestManualAllocationCreate() {
	subAccount := createTestSubAccount(suite.T(), v1.SubAccountEditable{Name: "Vacation"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations", v1.ManualAllocationEditable{
		WalletID:     subAccount.Data.WalletID,
		SubAccountID: subAccount.Data.ID,
		Amount:       decimal.NewFromInt(40),
		Note:         "Topping up",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var response v1.ManualAllocationResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)
	assert.NotEqual(suite.T(), uuid.Nil, response.Data.ID)
	assert.Equal(suite.T(), subAccount.Data.ID, response.Data.SubAccountID)

	r = test.Request(suite.T(), http.MethodGet, subAccount.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var reloaded v1.SubAccountResponse
	test.DecodeResponse(suite.T(), &r, &reloaded)
	assert.True(suite.T(), reloaded.Data.CurrentBalance.Equal(decimal.NewFromInt(40)))

	// Manual allocations are ledgered, not audited
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocations", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var executions v1.AllocationExecutionListResponse
	test.DecodeResponse(suite.T(), &r, &executions)
	assert.Empty(suite.T(), executions.Data)
}

func (suite *TestSuiteStandard) TestManualAllocationInvalid() {
	subAccount := createTestSubAccount(suite.T(), v1.SubAccountEditable{Name: "Strict"})

	tests := []struct {
		name   string
		body   v1.ManualAllocationEditable
		status int
		err    string
	}{
		{
			"zero amount",
			v1.ManualAllocationEditable{WalletID: subAccount.Data.WalletID, SubAccountID: subAccount.Data.ID},
			http.StatusBadRequest,
			models.ErrAmountNotPositive.Error(),
		},
		{
			"unknown sub-account",
			v1.ManualAllocationEditable{WalletID: subAccount.Data.WalletID, SubAccountID: uuid.New(), Amount: decimal.NewFromInt(10)},
			http.StatusNotFound,
			"there is no sub account matching your query",
		},
		{
			"wallet mismatch",
			v1.ManualAllocationEditable{WalletID: uuid.New(), SubAccountID: subAccount.Data.ID, Amount: decimal.NewFromInt(10)},
			http.StatusNotFound,
			"there is no sub account matching your query",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/allocations", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.ManualAllocationResponse
			test.DecodeResponse(t, &r, &response)
			require.NotNil(t, response.Error)
			assert.Equal(t, tt.err, *response.Error)
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationExecutionsGetFiltered() {
	savings := createTestSubAccount(suite.T(), v1.SubAccountEditable{Name: "Savings"})
	walletID := savings.Data.WalletID
	buffer := createTestSubAccount(suite.T(), v1.SubAccountEditable{WalletID: walletID, Name: "Buffer"})

	rule := createTestAllocationRule(suite.T(), v1.AllocationRuleEditable{
		WalletID:     walletID,
		SubAccountID: savings.Data.ID,
		Type:         allocation.TypePercentage,
		Percentage:   decimal.NewFromInt(30),
		Trigger:      models.TriggerOnReceive,
		Priority:     2,
	})

	_ = createTestAllocationRule(suite.T(), v1.AllocationRuleEditable{
		WalletID:     walletID,
		SubAccountID: buffer.Data.ID,
		Type:         allocation.TypeRemainder,
		Trigger:      models.TriggerOnReceive,
		Priority:     1,
	})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/events/incoming-funds", v1.IncomingFundsEditable{
		WalletID: walletID,
		Amount:   decimal.NewFromInt(100),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	tests := []struct {
		name  string
		query string
		count int
	}{
		{"All", "", 2},
		{"By rule", fmt.Sprintf("rule=%s", rule.Data.ID), 1},
		{"By sub-account", fmt.Sprintf("subAccount=%s", buffer.Data.ID), 1},
		{"By status", "status=COMPLETED", 2},
		{"By status, no match", "status=FAILED", 0},
		{"By trigger", "triggeredBy=ON_RECEIVE", 2},
		{"Limit", "limit=1", 1},
		{"Until in the past", "until=2000-01-01", 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/allocations?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.AllocationExecutionListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.count)
		})
	}

	// Invalid dates are rejected
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocations?from=notadate", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
