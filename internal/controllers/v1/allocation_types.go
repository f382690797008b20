package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	sa_uuid "github.com/goodness-exchange/gx-protocol-backend-sub004/internal/uuid"
)

type AllocationExecutionLinks struct {
	SubAccount string `json:"subAccount" example:"https://example.com/api/v1/sub-accounts/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // The sub-account that was credited
}

type AllocationExecution struct {
	models.DefaultModel
	RuleID              *uuid.UUID               `json:"ruleId"`                                                      // The rule that produced this execution, if any
	SubAccountID        uuid.UUID                `json:"subAccountId" example:"438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // ID of the credited sub-account
	Amount              decimal.Decimal          `json:"amount" example:"30"`                                         // Allocated amount
	TriggeredBy         models.ExecutionTrigger  `json:"triggeredBy" example:"ON_RECEIVE"`                            // What caused the execution
	SourceTransactionID *uuid.UUID               `json:"sourceTransactionId"`                                         // The inbound funds event, if any
	Status              models.ExecutionStatus   `json:"status" example:"COMPLETED"`                                  // COMPLETED or FAILED
	Message             string                   `json:"message" example:"the sub-account is archived"`               // Failure reason for FAILED executions
	ExecutedAt          time.Time                `json:"executedAt"`                                                  // When the execution ran
	Links               AllocationExecutionLinks `json:"links"`
}

// newAllocationExecution returns the API representation of the resource
func newAllocationExecution(c *gin.Context, model models.AllocationExecution) AllocationExecution {
	url := c.GetString(string(models.DBContextURL))

	return AllocationExecution{
		DefaultModel:        model.DefaultModel,
		RuleID:              model.RuleID,
		SubAccountID:        model.SubAccountID,
		Amount:              model.Amount,
		TriggeredBy:         model.TriggeredBy,
		SourceTransactionID: model.SourceTransactionID,
		Status:              model.Status,
		Message:             model.Message,
		ExecutedAt:          model.ExecutedAt,
		Links: AllocationExecutionLinks{
			SubAccount: fmt.Sprintf("%s/v1/sub-accounts/%s", url, model.SubAccountID),
		},
	}
}

type AllocationExecutionListResponse struct {
	Data       []AllocationExecution `json:"data"`                                                          // List of resources
	Error      *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination           `json:"pagination"`                                                    // Pagination information
}

type AllocationExecutionQueryFilter struct {
	RuleID       sa_uuid.UUID `form:"rule"`                       // By rule ID
	SubAccountID sa_uuid.UUID `form:"subAccount"`                 // By sub-account ID
	Status       string       `form:"status"`                     // By execution status
	TriggeredBy  string       `form:"triggeredBy"`                // By trigger
	From         string       `form:"from" filterField:"false"`   // Executions from this date
	Until        string       `form:"until" filterField:"false"`  // Executions until this date
	Offset       uint         `form:"offset" filterField:"false"` // The offset of the first execution returned. Defaults to 0.
	Limit        int          `form:"limit" filterField:"false"`  // Maximum number of executions to return. Defaults to 50.
}

func (f AllocationExecutionQueryFilter) model() models.AllocationExecution {
	execution := models.AllocationExecution{
		SubAccountID: f.SubAccountID.UUID,
		Status:       models.ExecutionStatus(f.Status),
		TriggeredBy:  models.ExecutionTrigger(f.TriggeredBy),
	}

	if f.RuleID.UUID != uuid.Nil {
		ruleID := f.RuleID.UUID
		execution.RuleID = &ruleID
	}

	return execution
}

type ManualAllocationEditable struct {
	WalletID     uuid.UUID       `json:"walletId" example:"f81566d9-af4d-4f13-9830-c62c4b5e4c7e"`     // ID of the wallet the funds come from
	SubAccountID uuid.UUID       `json:"subAccountId" example:"438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // ID of the sub-account to credit
	Amount       decimal.Decimal `json:"amount" example:"25"`                                         // Amount to allocate
	Note         string          `json:"note" example:"Topping up the vacation fund" default:""`      // Free-form note, stored on the ledger entry
}

type ManualAllocation struct {
	ID           uuid.UUID       `json:"id"`           // ID of the allocation
	SubAccountID uuid.UUID       `json:"subAccountId"` // ID of the credited sub-account
	Amount       decimal.Decimal `json:"amount"`       // Allocated amount
}

type ManualAllocationResponse struct {
	Error *string           `json:"error" example:"the wallet does not have enough unallocated funds"` // The error, if any occurred
	Data  *ManualAllocation `json:"data"`                                                              // The allocation
}

type AllocationPreviewEditable struct {
	WalletID uuid.UUID          `json:"walletId" example:"f81566d9-af4d-4f13-9830-c62c4b5e4c7e"` // ID of the wallet
	Amount   decimal.Decimal    `json:"amount" example:"100"`                                    // Hypothetical inbound amount
	Trigger  models.TriggerType `json:"trigger" example:"ON_RECEIVE" default:"ON_RECEIVE"`       // The trigger whose rules are evaluated
}

type PreviewAllocation struct {
	RuleID       uuid.UUID       `json:"ruleId"`       // The rule that would fire
	SubAccountID uuid.UUID       `json:"subAccountId"` // The sub-account that would be credited
	Amount       decimal.Decimal `json:"amount"`       // The amount that would be allocated
}

type AllocationPreviewResponse struct {
	Error       *string             `json:"error" example:"the amount must be larger than zero"` // The error, if any occurred
	Data        []PreviewAllocation `json:"data"`                                                // The allocations that would be executed
	Unallocated decimal.Decimal     `json:"unallocated" example:"12.5"`                          // The part of the amount no rule would claim
}
