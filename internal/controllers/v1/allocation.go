package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/allocation"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/httputil"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/types"
)

// WalletBalances reads wallet balances from the wallet service. It is
// nil when no wallet service is configured; manual allocations then
// skip the unallocated funds check.
var WalletBalances models.WalletBalanceReader

func RegisterAllocationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsAllocations)
		r.GET("", GetAllocationExecutions)
		r.POST("", CreateManualAllocation)
	}
	{
		r.OPTIONS("/preview", httputil.OptionsPost)
		r.POST("/preview", PreviewAllocations)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Router			/v1/allocations [options]
func OptionsAllocations(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Get allocation executions
// @Description	Returns the audit log of rule-driven allocation executions, newest first
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationExecutionListResponse
// @Failure		400	{object}	AllocationExecutionListResponse
// @Failure		500	{object}	AllocationExecutionListResponse
// @Router			/v1/allocations [get]
// @Param			rule		query	string	false	"Filter by rule ID"
// @Param			subAccount	query	string	false	"Filter by sub-account ID"
// @Param			status		query	string	false	"Filter by execution status"
// @Param			triggeredBy	query	string	false	"Filter by trigger"
// @Param			offset		query	uint	false	"The offset of the first execution returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of executions to return. Defaults to 50."
func GetAllocationExecutions(c *gin.Context) {
	var filter AllocationExecutionQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, AllocationExecutionListResponse{
			Error: &s,
		})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("datetime(executed_at) DESC, id DESC").
		Where(&where, queryFields...)

	if filter.From != "" {
		from, e := types.ParseDate(filter.From)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, AllocationExecutionListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date(executed_at) >= date(?)", from)
	}

	if filter.Until != "" {
		until, e := types.ParseDate(filter.Until)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, AllocationExecutionListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date(executed_at) <= date(?)", until)
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 executions and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var executions []models.AllocationExecution
	err := q.Find(&executions).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationExecutionListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationExecutionListResponse{
			Error: &e,
		})
		return
	}

	// Transform resources to their API representation
	data := make([]AllocationExecution, 0, len(executions))
	for _, execution := range executions {
		data = append(data, newAllocationExecution(c, execution))
	}

	c.JSON(http.StatusOK, AllocationExecutionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Allocate funds manually
// @Description	Credits a sub-account with funds from the wallet's unallocated balance
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		201			{object}	ManualAllocationResponse
// @Failure		400			{object}	ManualAllocationResponse
// @Failure		404			{object}	ManualAllocationResponse
// @Failure		500			{object}	ManualAllocationResponse
// @Param			allocation	body		ManualAllocationEditable	true	"Allocation"
// @Router			/v1/allocations [post]
func CreateManualAllocation(c *gin.Context) {
	var editable ManualAllocationEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ManualAllocationResponse{
			Error: &e,
		})
		return
	}

	id, err := models.ExecuteManualAllocation(models.DB, WalletBalances, editable.WalletID, editable.SubAccountID, editable.Amount, editable.Note)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ManualAllocationResponse{
			Error: &e,
		})
		return
	}

	c.JSON(http.StatusCreated, ManualAllocationResponse{
		Data: &ManualAllocation{
			ID:           id,
			SubAccountID: editable.SubAccountID,
			Amount:       editable.Amount,
		},
	})
}

// @Summary		Preview allocations
// @Description	Evaluates the wallet's ON_RECEIVE rules against a hypothetical amount without writing anything
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		200		{object}	AllocationPreviewResponse
// @Failure		400		{object}	AllocationPreviewResponse
// @Failure		500		{object}	AllocationPreviewResponse
// @Param			preview	body		AllocationPreviewEditable	true	"Preview"
// @Router			/v1/allocations/preview [post]
func PreviewAllocations(c *gin.Context) {
	var editable AllocationPreviewEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationPreviewResponse{
			Error: &e,
		})
		return
	}

	if !editable.Amount.IsPositive() {
		e := models.ErrAmountNotPositive.Error()
		c.JSON(http.StatusBadRequest, AllocationPreviewResponse{
			Error: &e,
		})
		return
	}

	trigger := editable.Trigger
	if trigger == "" {
		trigger = models.TriggerOnReceive
	}
	if !trigger.Valid() {
		e := models.ErrTriggerTypeInvalid.Error()
		c.JSON(http.StatusBadRequest, AllocationPreviewResponse{
			Error: &e,
		})
		return
	}

	rules, err := models.ActiveRules(models.DB, editable.WalletID, trigger)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationPreviewResponse{
			Error: &e,
		})
		return
	}

	evaluatorRules := make([]allocation.Rule, 0, len(rules))
	for _, rule := range rules {
		evaluatorRules = append(evaluatorRules, rule.EvaluatorRule())
	}

	allocated := decimal.Zero
	data := make([]PreviewAllocation, 0)
	for _, a := range allocation.Evaluate(evaluatorRules, editable.Amount) {
		allocated = allocated.Add(a.Amount)
		data = append(data, PreviewAllocation{
			RuleID:       a.RuleID,
			SubAccountID: a.SubAccountID,
			Amount:       a.Amount,
		})
	}

	c.JSON(http.StatusOK, AllocationPreviewResponse{
		Data:        data,
		Unallocated: editable.Amount.Sub(allocated),
	})
}
