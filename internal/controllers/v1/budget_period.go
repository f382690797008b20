package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
	"golang.org/x/exp/slices"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/httputil"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/types"
	sa_uuid "github.com/goodness-exchange/gx-protocol-backend-sub004/internal/uuid"
)

func RegisterBudgetPeriodRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsBudgetPeriods)
		r.GET("", GetBudgetPeriods)
		r.POST("", CreateBudgetPeriods)
	}
	{
		r.OPTIONS("/auto", httputil.OptionsPost)
		r.POST("/auto", AutoCreateBudgetPeriods)
	}
	{
		r.OPTIONS("/summary", httputil.OptionsGet)
		r.GET("/summary", GetBudgetSummary)
	}
	{
		r.OPTIONS("/:id", OptionsBudgetPeriodDetail)
		r.GET("/:id", GetBudgetPeriod)
		r.PATCH("/:id", UpdateBudgetPeriod)
		r.DELETE("/:id", DeleteBudgetPeriod)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			BudgetPeriods
// @Success		204
// @Router			/v1/budget-periods [options]
func OptionsBudgetPeriods(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			BudgetPeriods
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/budget-periods/{id} [options]
func OptionsBudgetPeriodDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.BudgetPeriod{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create budget periods
// @Description	Creates new budget periods. Periods overlapping an existing period for the same scope are rejected.
// @Tags			BudgetPeriods
// @Produce		json
// @Success		201		{object}	BudgetPeriodCreateResponse
// @Failure		400		{object}	BudgetPeriodCreateResponse
// @Failure		404		{object}	BudgetPeriodCreateResponse
// @Failure		500		{object}	BudgetPeriodCreateResponse
// @Param			periods	body		[]BudgetPeriodEditable	true	"Budget periods"
// @Router			/v1/budget-periods [post]
func CreateBudgetPeriods(c *gin.Context) {
	var periods []BudgetPeriodEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &periods)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := BudgetPeriodCreateResponse{}

	for _, create := range periods {
		period := create.model()
		err = models.DB.Create(&period).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		// Transform for the API and append
		apiResource := newBudgetPeriod(c, period)
		r.Data = append(r.Data, BudgetPeriodResponse{Data: &apiResource})
	}

	c.JSON(status, r)
}

// @Summary		Get budget periods
// @Description	Returns a list of budget periods
// @Tags			BudgetPeriods
// @Produce		json
// @Success		200	{object}	BudgetPeriodListResponse
// @Failure		400	{object}	BudgetPeriodListResponse
// @Failure		500	{object}	BudgetPeriodListResponse
// @Router			/v1/budget-periods [get]
// @Param			wallet		query	string	false	"Filter by wallet ID"
// @Param			subAccount	query	string	false	"Filter by sub-account ID"
// @Param			periodType	query	string	false	"Filter by period type"
// @Param			status		query	string	false	"Filter by status"
// @Param			offset		query	uint	false	"The offset of the first period returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of periods to return. Defaults to 50."
func GetBudgetPeriods(c *gin.Context) {
	var filter BudgetPeriodQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, BudgetPeriodListResponse{
			Error: &s,
		})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("date(start_date) DESC, id ASC").
		Where(&where, queryFields...)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 periods and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var periods []models.BudgetPeriod
	err := q.Find(&periods).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetPeriodListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodListResponse{
			Error: &e,
		})
		return
	}

	// Transform resources to their API representation
	data := make([]BudgetPeriod, 0, len(periods))
	for _, period := range periods {
		data = append(data, newBudgetPeriod(c, period))
	}

	c.JSON(http.StatusOK, BudgetPeriodListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get budget period
// @Description	Returns a specific budget period
// @Tags			BudgetPeriods
// @Produce		json
// @Success		200	{object}	BudgetPeriodResponse
// @Failure		400	{object}	BudgetPeriodResponse
// @Failure		404	{object}	BudgetPeriodResponse
// @Failure		500	{object}	BudgetPeriodResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/budget-periods/{id} [get]
func GetBudgetPeriod(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodResponse{
			Error: &e,
		})
		return
	}

	var period models.BudgetPeriod
	err = models.DB.First(&period, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodResponse{
			Error: &e,
		})
		return
	}

	apiResource := newBudgetPeriod(c, period)
	c.JSON(http.StatusOK, BudgetPeriodResponse{Data: &apiResource})
}

// @Summary		Update budget period
// @Description	Updates an existing budget period. Completed periods are immutable.
// @Tags			BudgetPeriods
// @Accept			json
// @Produce		json
// @Success		200		{object}	BudgetPeriodResponse
// @Failure		400		{object}	BudgetPeriodResponse
// @Failure		404		{object}	BudgetPeriodResponse
// @Failure		500		{object}	BudgetPeriodResponse
// @Param			id		path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			period	body		BudgetPeriodEditable	true	"Budget period"
// @Router			/v1/budget-periods/{id} [patch]
func UpdateBudgetPeriod(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodResponse{
			Error: &e,
		})
		return
	}

	var period models.BudgetPeriod
	err = models.DB.First(&period, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodResponse{
			Error: &e,
		})
		return
	}

	// Get the fields that are set to be updated
	updateFields, err := httputil.GetBodyFields(c, BudgetPeriodEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodResponse{
			Error: &e,
		})
		return
	}

	// Bind the data for the patch
	var data BudgetPeriodEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&period).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodResponse{
			Error: &e,
		})
		return
	}

	apiResource := newBudgetPeriod(c, period)
	c.JSON(http.StatusOK, BudgetPeriodResponse{Data: &apiResource})
}

// @Summary		Delete budget period
// @Description	Deletes a budget period
// @Tags			BudgetPeriods
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/budget-periods/{id} [delete]
func DeleteBudgetPeriod(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var period models.BudgetPeriod
	err = models.DB.First(&period, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&period).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Auto-create monthly budget periods
// @Description	Creates a MONTHLY budget period for every sub-account of the wallet with a monthly budget configured. Idempotent per month.
// @Tags			BudgetPeriods
// @Accept			json
// @Produce		json
// @Success		201		{object}	BudgetPeriodCreateResponse
// @Failure		400		{object}	BudgetPeriodCreateResponse
// @Failure		500		{object}	BudgetPeriodCreateResponse
// @Param			request	body		BudgetPeriodAutoEditable	true	"Wallet and month"
// @Router			/v1/budget-periods/auto [post]
func AutoCreateBudgetPeriods(c *gin.Context) {
	var editable BudgetPeriodAutoEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodCreateResponse{
			Error: &e,
		})
		return
	}

	if editable.Month == "" {
		e := errMonthNotSetInBody.Error()
		c.JSON(http.StatusBadRequest, BudgetPeriodCreateResponse{
			Error: &e,
		})
		return
	}

	month, err := types.ParseMonth(editable.Month)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, BudgetPeriodCreateResponse{
			Error: &e,
		})
		return
	}

	periods, err := models.AutoCreateMonthlyBudgets(models.DB, editable.WalletID, month)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetPeriodCreateResponse{
			Error: &e,
		})
		return
	}

	r := BudgetPeriodCreateResponse{}
	for _, period := range periods {
		apiResource := newBudgetPeriod(c, period)
		r.Data = append(r.Data, BudgetPeriodResponse{Data: &apiResource})
	}

	c.JSON(http.StatusCreated, r)
}

// @Summary		Get budget summary
// @Description	Returns one entry per active budget period of the wallet, optionally filtered by a sub-account name pattern
// @Tags			BudgetPeriods
// @Produce		json
// @Success		200	{object}	BudgetSummaryResponse
// @Failure		400	{object}	BudgetSummaryResponse
// @Failure		500	{object}	BudgetSummaryResponse
// @Router			/v1/budget-periods/summary [get]
// @Param			wallet	query	string	true	"ID of the wallet"
// @Param			name	query	string	false	"Glob pattern matched against sub-account names, e.g. Sav*"
func GetBudgetSummary(c *gin.Context) {
	var filter struct {
		WalletID sa_uuid.UUID `form:"wallet"`
		Name     string       `form:"name"`
	}

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, BudgetSummaryResponse{
			Error: &s,
		})
		return
	}

	if filter.WalletID.UUID == uuid.Nil {
		e := errWalletIDParameter.Error()
		c.JSON(http.StatusBadRequest, BudgetSummaryResponse{
			Error: &e,
		})
		return
	}

	today := types.DateOf(time.Now())

	var periods []models.BudgetPeriod
	err := models.DB.
		Preload("SubAccount").
		Where("wallet_id = ?", filter.WalletID.UUID).
		Where("status != ?", models.BudgetStatusCompleted).
		Where("date(start_date) <= date(?)", today).
		Where("date(end_date) >= date(?)", today).
		Order("date(start_date) ASC, id ASC").
		Find(&periods).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BudgetSummaryResponse{
			Error: &e,
		})
		return
	}

	data := make([]BudgetSummaryEntry, 0, len(periods))
	for _, period := range periods {
		var name string
		if period.SubAccount != nil {
			name = period.SubAccount.Name
		}

		// Wallet-wide periods have no name to match on
		if filter.Name != "" && !glob.Glob(filter.Name, name) {
			continue
		}

		data = append(data, BudgetSummaryEntry{
			SubAccountID:   period.SubAccountID,
			SubAccountName: name,
			PeriodID:       period.ID,
			StartDate:      period.StartDate,
			EndDate:        period.EndDate,
			BudgetAmount:   period.BudgetAmount,
			SpentAmount:    period.SpentAmount,
			Remaining:      period.Remaining(),
			PercentUsed:    period.PercentUsed(),
			Status:         period.Status,
		})
	}

	c.JSON(http.StatusOK, BudgetSummaryResponse{Data: data})
}
