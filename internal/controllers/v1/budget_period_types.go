package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/types"
	sa_uuid "github.com/goodness-exchange/gx-protocol-backend-sub004/internal/uuid"
)

type BudgetPeriodEditable struct {
	WalletID       uuid.UUID         `json:"walletId" example:"f81566d9-af4d-4f13-9830-c62c4b5e4c7e"` // ID of the wallet this budget belongs to
	SubAccountID   *uuid.UUID        `json:"subAccountId"`                                            // Sub-account scope, unset tracks the whole wallet
	PeriodType     models.PeriodType `json:"periodType" example:"MONTHLY"`                            // WEEKLY, MONTHLY, QUARTERLY, YEARLY or CUSTOM
	StartDate      types.Date        `json:"startDate" example:"2026-08-01"`                          // First day of the period
	EndDate        types.Date        `json:"endDate" example:"2026-08-31"`                            // Last day of the period, inclusive
	BudgetAmount   decimal.Decimal   `json:"budgetAmount" example:"450"`                              // Spending cap for the period
	AlertThreshold decimal.Decimal   `json:"alertThreshold" example:"80" default:"80"`                // Percent of usage at which the period alerts
}

// model returns the database resource for the API representation of the editable fields
func (editable BudgetPeriodEditable) model() models.BudgetPeriod {
	return models.BudgetPeriod{
		WalletID:       editable.WalletID,
		SubAccountID:   editable.SubAccountID,
		PeriodType:     editable.PeriodType,
		StartDate:      editable.StartDate,
		EndDate:        editable.EndDate,
		BudgetAmount:   editable.BudgetAmount,
		AlertThreshold: editable.AlertThreshold,
	}
}

type BudgetPeriodLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/budget-periods/66b7c06a-cf1b-4e8b-b2b6-4ab650461f60"` // The budget period itself
}

type BudgetPeriod struct {
	models.DefaultModel
	BudgetPeriodEditable
	SpentAmount decimal.Decimal     `json:"spentAmount" example:"120"`  // Spending recorded in this period so far
	Remaining   decimal.Decimal     `json:"remaining" example:"330"`    // Budget left, negative when exceeded
	PercentUsed decimal.Decimal     `json:"percentUsed" example:"26.7"` // Usage in percent
	Status      models.BudgetStatus `json:"status" example:"ON_TRACK"`  // ON_TRACK, WARNING, EXCEEDED or COMPLETED
	AlertSent   bool                `json:"alertSent" example:"false"`  // Whether the threshold alert went out
	AlertSentAt *time.Time          `json:"alertSentAt"`                // When the threshold alert went out
	Links       BudgetPeriodLinks   `json:"links"`
}

// newBudgetPeriod returns the API representation of the resource
func newBudgetPeriod(c *gin.Context, model models.BudgetPeriod) BudgetPeriod {
	url := c.GetString(string(models.DBContextURL))

	return BudgetPeriod{
		DefaultModel: model.DefaultModel,
		BudgetPeriodEditable: BudgetPeriodEditable{
			WalletID:       model.WalletID,
			SubAccountID:   model.SubAccountID,
			PeriodType:     model.PeriodType,
			StartDate:      model.StartDate,
			EndDate:        model.EndDate,
			BudgetAmount:   model.BudgetAmount,
			AlertThreshold: model.AlertThreshold,
		},
		SpentAmount: model.SpentAmount,
		Remaining:   model.Remaining(),
		PercentUsed: model.PercentUsed(),
		Status:      model.Status,
		AlertSent:   model.AlertSent,
		AlertSentAt: model.AlertSentAt,
		Links: BudgetPeriodLinks{
			Self: fmt.Sprintf("%s/v1/budget-periods/%s", url, model.ID),
		},
	}
}

type BudgetPeriodListResponse struct {
	Data       []BudgetPeriod `json:"data"`                                                          // List of resources
	Error      *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination    `json:"pagination"`                                                    // Pagination information
}

type BudgetPeriodCreateResponse struct {
	Error *string                `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []BudgetPeriodResponse `json:"data"`                                                          // List of created resources
}

func (t *BudgetPeriodCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, BudgetPeriodResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type BudgetPeriodResponse struct {
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *BudgetPeriod `json:"data"`                                                          // The resource
}

type BudgetPeriodQueryFilter struct {
	WalletID     sa_uuid.UUID `form:"wallet"`                     // By wallet ID
	SubAccountID sa_uuid.UUID `form:"subAccount"`                 // By sub-account ID
	PeriodType   string       `form:"periodType"`                 // By period type
	Status       string       `form:"status"`                     // By status
	Offset       uint         `form:"offset" filterField:"false"` // The offset of the first period returned. Defaults to 0.
	Limit        int          `form:"limit" filterField:"false"`  // Maximum number of periods to return. Defaults to 50.
}

func (f BudgetPeriodQueryFilter) model() models.BudgetPeriod {
	period := models.BudgetPeriod{
		WalletID:   f.WalletID.UUID,
		PeriodType: models.PeriodType(f.PeriodType),
		Status:     models.BudgetStatus(f.Status),
	}

	if f.SubAccountID.UUID != uuid.Nil {
		subAccountID := f.SubAccountID.UUID
		period.SubAccountID = &subAccountID
	}

	return period
}

type BudgetPeriodAutoEditable struct {
	WalletID uuid.UUID `json:"walletId" example:"f81566d9-af4d-4f13-9830-c62c4b5e4c7e"` // ID of the wallet
	Month    string    `json:"month" example:"2026-08"`                                 // Month to create budget periods for, in YYYY-MM format
}

type BudgetSummaryEntry struct {
	SubAccountID   *uuid.UUID          `json:"subAccountId"`                   // The sub-account the period tracks, unset for wallet-wide periods
	SubAccountName string              `json:"subAccountName" example:"Groceries"` // Name of the sub-account, empty for wallet-wide periods
	PeriodID       uuid.UUID           `json:"periodId"`                       // The budget period
	StartDate      types.Date          `json:"startDate"`                      // First day of the period
	EndDate        types.Date          `json:"endDate"`                        // Last day of the period
	BudgetAmount   decimal.Decimal     `json:"budgetAmount"`                   // Spending cap
	SpentAmount    decimal.Decimal     `json:"spentAmount"`                    // Spending so far
	Remaining      decimal.Decimal     `json:"remaining"`                      // Budget left
	PercentUsed    decimal.Decimal     `json:"percentUsed"`                    // Usage in percent
	Status         models.BudgetStatus `json:"status"`                         // Current status
}

type BudgetSummaryResponse struct {
	Error *string              `json:"error" example:"the walletId parameter must be set"` // The error, if any occurred
	Data  []BudgetSummaryEntry `json:"data"`                                               // One entry per active budget period
}
