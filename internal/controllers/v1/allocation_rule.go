package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/allocation"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/httputil"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
)

func RegisterAllocationRuleRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsAllocationRules)
		r.GET("", GetAllocationRules)
		r.POST("", CreateAllocationRules)
	}
	{
		r.OPTIONS("/:id", OptionsAllocationRuleDetail)
		r.GET("/:id", GetAllocationRule)
		r.PATCH("/:id", UpdateAllocationRule)
		r.DELETE("/:id", DeleteAllocationRule)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			AllocationRules
// @Success		204
// @Router			/v1/allocation-rules [options]
func OptionsAllocationRules(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			AllocationRules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/allocation-rules/{id} [options]
func OptionsAllocationRuleDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.AllocationRule{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create allocation rules
// @Description	Creates new allocation rules. ON_SCHEDULE rules are armed for their next run immediately.
// @Tags			AllocationRules
// @Produce		json
// @Success		201		{object}	AllocationRuleCreateResponse
// @Failure		400		{object}	AllocationRuleCreateResponse
// @Failure		404		{object}	AllocationRuleCreateResponse
// @Failure		500		{object}	AllocationRuleCreateResponse
// @Param			rules	body		[]AllocationRuleEditable	true	"Allocation rules"
// @Router			/v1/allocation-rules [post]
func CreateAllocationRules(c *gin.Context) {
	var rules []AllocationRuleEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &rules)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationRuleCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := AllocationRuleCreateResponse{}

	for _, create := range rules {
		rule := create.model()

		if rule.Trigger == models.TriggerOnSchedule {
			next, err := allocation.NextRun(rule.Frequency, rule.DayOfMonth, rule.DayOfWeek, time.Now())
			if err == nil {
				rule.NextScheduledAt = &next
			}
		}

		err = models.DB.Create(&rule).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		// Transform for the API and append
		apiResource := newAllocationRule(c, rule)
		r.Data = append(r.Data, AllocationRuleResponse{Data: &apiResource})
	}

	c.JSON(status, r)
}

// @Summary		Get allocation rules
// @Description	Returns a list of allocation rules in evaluation order
// @Tags			AllocationRules
// @Produce		json
// @Success		200	{object}	AllocationRuleListResponse
// @Failure		400	{object}	AllocationRuleListResponse
// @Failure		500	{object}	AllocationRuleListResponse
// @Router			/v1/allocation-rules [get]
// @Param			wallet		query	string	false	"Filter by wallet ID"
// @Param			subAccount	query	string	false	"Filter by sub-account ID"
// @Param			type		query	string	false	"Filter by rule type"
// @Param			trigger		query	string	false	"Filter by trigger type"
// @Param			archived	query	bool	false	"Is the rule archived?"
// @Param			offset		query	uint	false	"The offset of the first rule returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of rules to return. Defaults to 50."
func GetAllocationRules(c *gin.Context) {
	var filter AllocationRuleQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, AllocationRuleListResponse{
			Error: &s,
		})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("priority DESC, datetime(created_at) ASC, id ASC").
		Where(&where, queryFields...)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 rules and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var rules []models.AllocationRule
	err := q.Find(&rules).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationRuleListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationRuleListResponse{
			Error: &e,
		})
		return
	}

	// Transform resources to their API representation
	data := make([]AllocationRule, 0, len(rules))
	for _, rule := range rules {
		data = append(data, newAllocationRule(c, rule))
	}

	c.JSON(http.StatusOK, AllocationRuleListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get allocation rule
// @Description	Returns a specific allocation rule
// @Tags			AllocationRules
// @Produce		json
// @Success		200	{object}	AllocationRuleResponse
// @Failure		400	{object}	AllocationRuleResponse
// @Failure		404	{object}	AllocationRuleResponse
// @Failure		500	{object}	AllocationRuleResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/allocation-rules/{id} [get]
func GetAllocationRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationRuleResponse{
			Error: &e,
		})
		return
	}

	var rule models.AllocationRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationRuleResponse{
			Error: &e,
		})
		return
	}

	apiResource := newAllocationRule(c, rule)
	c.JSON(http.StatusOK, AllocationRuleResponse{Data: &apiResource})
}

// @Summary		Update allocation rule
// @Description	Updates an existing allocation rule. Only values to be updated need to be specified.
// @Tags			AllocationRules
// @Accept			json
// @Produce		json
// @Success		200		{object}	AllocationRuleResponse
// @Failure		400		{object}	AllocationRuleResponse
// @Failure		404		{object}	AllocationRuleResponse
// @Failure		500		{object}	AllocationRuleResponse
// @Param			id		path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			rule	body		AllocationRuleEditable	true	"Allocation rule"
// @Router			/v1/allocation-rules/{id} [patch]
func UpdateAllocationRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationRuleResponse{
			Error: &e,
		})
		return
	}

	var rule models.AllocationRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationRuleResponse{
			Error: &e,
		})
		return
	}

	// Get the fields that are set to be updated
	updateFields, err := httputil.GetBodyFields(c, AllocationRuleEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationRuleResponse{
			Error: &e,
		})
		return
	}

	// Bind the data for the patch
	var data AllocationRuleEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationRuleResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&rule).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationRuleResponse{
			Error: &e,
		})
		return
	}

	// Re-arm the schedule when the timing configuration changed
	if rule.Trigger == models.TriggerOnSchedule &&
		(slices.Contains(updateFields, "Frequency") || slices.Contains(updateFields, "DayOfMonth") || slices.Contains(updateFields, "DayOfWeek") || slices.Contains(updateFields, "Trigger")) {
		if next, e := allocation.NextRun(rule.Frequency, rule.DayOfMonth, rule.DayOfWeek, time.Now()); e == nil {
			err = models.DB.Model(&rule).UpdateColumns(map[string]interface{}{"next_scheduled_at": next}).Error
			if err != nil {
				e := err.Error()
				c.JSON(status(err), AllocationRuleResponse{
					Error: &e,
				})
				return
			}
			rule.NextScheduledAt = &next
		}
	}

	apiResource := newAllocationRule(c, rule)
	c.JSON(http.StatusOK, AllocationRuleResponse{Data: &apiResource})
}

// @Summary		Delete allocation rule
// @Description	Deletes an allocation rule
// @Tags			AllocationRules
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/allocation-rules/{id} [delete]
func DeleteAllocationRule(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var rule models.AllocationRule
	err = models.DB.First(&rule, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&rule).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
