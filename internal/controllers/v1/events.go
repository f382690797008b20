package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/httputil"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
)

func RegisterEventRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/incoming-funds", httputil.OptionsPost)
		r.POST("/incoming-funds", IncomingFunds)
	}
	{
		r.OPTIONS("/spending", httputil.OptionsPost)
		r.POST("/spending", Spending)
	}
}

// @Summary		Process incoming funds
// @Description	Routes an inbound funds event through the wallet's ON_RECEIVE rules. Failed executions are reported in the response, they do not fail the event.
// @Tags			Events
// @Accept			json
// @Produce		json
// @Success		201		{object}	IncomingFundsResponse
// @Failure		400		{object}	IncomingFundsResponse
// @Failure		500		{object}	IncomingFundsResponse
// @Param			event	body		IncomingFundsEditable	true	"Incoming funds event"
// @Router			/v1/events/incoming-funds [post]
func IncomingFunds(c *gin.Context) {
	var editable IncomingFundsEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IncomingFundsResponse{
			Error: &e,
		})
		return
	}

	executions, err := models.ProcessIncomingFunds(models.DB, editable.WalletID, editable.Amount, editable.SourceTransactionID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IncomingFundsResponse{
			Error: &e,
		})
		return
	}

	data := make([]AllocationExecution, 0, len(executions))
	for _, execution := range executions {
		data = append(data, newAllocationExecution(c, execution))
	}

	c.JSON(http.StatusCreated, IncomingFundsResponse{Data: data})
}

// @Summary		Process a spend
// @Description	Debits the sub-account for the spend and records it against all active budget periods in scope
// @Tags			Events
// @Accept			json
// @Produce		json
// @Success		201		{object}	SpendingResponse
// @Failure		400		{object}	SpendingResponse
// @Failure		404		{object}	SpendingResponse
// @Failure		500		{object}	SpendingResponse
// @Param			event	body		SpendingEditable	true	"Spending event"
// @Router			/v1/events/spending [post]
func Spending(c *gin.Context) {
	var editable SpendingEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SpendingResponse{
			Error: &e,
		})
		return
	}

	var response SpendingResponse

	if editable.SubAccountID != nil {
		entry, err := models.RecordExpense(models.DB, editable.WalletID, *editable.SubAccountID, editable.Amount, editable.Reference)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), SpendingResponse{
				Error: &e,
			})
			return
		}

		transaction := newTransaction(c, entry)
		response.Data = &transaction
	}

	periods, err := models.RecordSpending(models.DB, editable.WalletID, editable.SubAccountID, editable.Amount, time.Now())
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SpendingResponse{
			Error: &e,
		})
		return
	}

	response.BudgetPeriods = make([]BudgetPeriod, 0, len(periods))
	for _, period := range periods {
		response.BudgetPeriods = append(response.BudgetPeriods, newBudgetPeriod(c, period))
	}

	c.JSON(http.StatusCreated, response)
}
