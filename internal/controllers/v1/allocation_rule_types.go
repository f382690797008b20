package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/allocation"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	sa_uuid "github.com/goodness-exchange/gx-protocol-backend-sub004/internal/uuid"
)

type AllocationRuleEditable struct {
	WalletID         uuid.UUID            `json:"walletId" example:"f81566d9-af4d-4f13-9830-c62c4b5e4c7e"`     // ID of the wallet this rule belongs to
	SubAccountID     uuid.UUID            `json:"subAccountId" example:"438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // ID of the sub-account funds are routed to
	Type             allocation.RuleType  `json:"type" example:"PERCENTAGE"`                                   // PERCENTAGE, FIXED_AMOUNT or REMAINDER
	Percentage       decimal.Decimal      `json:"percentage" example:"30" default:"0"`                         // Percentage of inbound funds, required for PERCENTAGE rules
	FixedAmount      decimal.Decimal      `json:"fixedAmount" example:"20" default:"0"`                        // Fixed amount, required for FIXED_AMOUNT rules
	Trigger          models.TriggerType   `json:"trigger" example:"ON_RECEIVE"`                                // ON_RECEIVE, ON_SCHEDULE or MANUAL
	MinTriggerAmount decimal.Decimal      `json:"minTriggerAmount" example:"50" default:"0"`                   // Rule only fires when the evaluated amount is at least this
	Frequency        allocation.Frequency `json:"frequency" example:"MONTHLY"`                                 // Schedule frequency, required for ON_SCHEDULE rules
	DayOfMonth       int                  `json:"dayOfMonth" example:"31" default:"0"`                         // Day anchor for MONTHLY and QUARTERLY schedules
	DayOfWeek        time.Weekday         `json:"dayOfWeek" example:"1" default:"0"`                           // Day anchor for WEEKLY schedules, 0 is Sunday
	Priority         int                  `json:"priority" example:"10" default:"0"`                           // Rules with a higher priority are evaluated first
	Archived         bool                 `json:"archived" example:"true" default:"false"`                     // If this rule is still in use or not
}

// model returns the database resource for the API representation of the editable fields
func (editable AllocationRuleEditable) model() models.AllocationRule {
	return models.AllocationRule{
		WalletID:         editable.WalletID,
		SubAccountID:     editable.SubAccountID,
		Type:             editable.Type,
		Percentage:       editable.Percentage,
		FixedAmount:      editable.FixedAmount,
		Trigger:          editable.Trigger,
		MinTriggerAmount: editable.MinTriggerAmount,
		Frequency:        editable.Frequency,
		DayOfMonth:       editable.DayOfMonth,
		DayOfWeek:        editable.DayOfWeek,
		Priority:         editable.Priority,
		Archived:         editable.Archived,
	}
}

type AllocationRuleLinks struct {
	Self       string `json:"self" example:"https://example.com/api/v1/allocation-rules/1b745ba1-4c75-4292-a5d9-6b4d0e6da704"`  // The rule itself
	SubAccount string `json:"subAccount" example:"https://example.com/api/v1/sub-accounts/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // The sub-account this rule routes funds to
}

type AllocationRule struct {
	models.DefaultModel
	AllocationRuleEditable
	NextScheduledAt *time.Time          `json:"nextScheduledAt"` // When the rule fires next, for ON_SCHEDULE rules
	LastExecutedAt  *time.Time          `json:"lastExecutedAt"`  // When the rule last fired
	Links           AllocationRuleLinks `json:"links"`
}

// newAllocationRule returns the API representation of the resource
func newAllocationRule(c *gin.Context, model models.AllocationRule) AllocationRule {
	url := c.GetString(string(models.DBContextURL))

	return AllocationRule{
		DefaultModel: model.DefaultModel,
		AllocationRuleEditable: AllocationRuleEditable{
			WalletID:         model.WalletID,
			SubAccountID:     model.SubAccountID,
			Type:             model.Type,
			Percentage:       model.Percentage,
			FixedAmount:      model.FixedAmount,
			Trigger:          model.Trigger,
			MinTriggerAmount: model.MinTriggerAmount,
			Frequency:        model.Frequency,
			DayOfMonth:       model.DayOfMonth,
			DayOfWeek:        model.DayOfWeek,
			Priority:         model.Priority,
			Archived:         model.Archived,
		},
		NextScheduledAt: model.NextScheduledAt,
		LastExecutedAt:  model.LastExecutedAt,
		Links: AllocationRuleLinks{
			Self:       fmt.Sprintf("%s/v1/allocation-rules/%s", url, model.ID),
			SubAccount: fmt.Sprintf("%s/v1/sub-accounts/%s", url, model.SubAccountID),
		},
	}
}

type AllocationRuleListResponse struct {
	Data       []AllocationRule `json:"data"`                                                          // List of resources
	Error      *string          `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination      `json:"pagination"`                                                    // Pagination information
}

type AllocationRuleCreateResponse struct {
	Error *string                  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []AllocationRuleResponse `json:"data"`                                                          // List of created resources
}

func (t *AllocationRuleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, AllocationRuleResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type AllocationRuleResponse struct {
	Error *string         `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *AllocationRule `json:"data"`                                                          // The resource
}

type AllocationRuleQueryFilter struct {
	WalletID     sa_uuid.UUID `form:"wallet"`                     // By wallet ID
	SubAccountID sa_uuid.UUID `form:"subAccount"`                 // By sub-account ID
	Type         string       `form:"type"`                       // By rule type
	Trigger      string       `form:"trigger"`                    // By trigger type
	Archived     bool         `form:"archived"`                   // Is the rule archived?
	Offset       uint         `form:"offset" filterField:"false"` // The offset of the first rule returned. Defaults to 0.
	Limit        int          `form:"limit" filterField:"false"`  // Maximum number of rules to return. Defaults to 50.
}

func (f AllocationRuleQueryFilter) model() models.AllocationRule {
	return models.AllocationRule{
		WalletID:     f.WalletID.UUID,
		SubAccountID: f.SubAccountID.UUID,
		Type:         allocation.RuleType(f.Type),
		Trigger:      models.TriggerType(f.Trigger),
		Archived:     f.Archived,
	}
}
