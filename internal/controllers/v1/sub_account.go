package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/httputil"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/types"
)

func RegisterSubAccountRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsSubAccounts)
		r.GET("", GetSubAccounts)
		r.POST("", CreateSubAccounts)
	}
	{
		r.OPTIONS("/:id", OptionsSubAccountDetail)
		r.GET("/:id", GetSubAccount)
		r.PATCH("/:id", UpdateSubAccount)
		r.DELETE("/:id", DeleteSubAccount)
	}
	{
		r.OPTIONS("/:id/transactions", httputil.OptionsGet)
		r.GET("/:id/transactions", GetSubAccountTransactions)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			SubAccounts
// @Success		204
// @Router			/v1/sub-accounts [options]
func OptionsSubAccounts(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			SubAccounts
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/sub-accounts/{id} [options]
func OptionsSubAccountDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.SubAccount{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create sub-accounts
// @Description	Creates new sub-accounts
// @Tags			SubAccounts
// @Produce		json
// @Success		201				{object}	SubAccountCreateResponse
// @Failure		400				{object}	SubAccountCreateResponse
// @Failure		404				{object}	SubAccountCreateResponse
// @Failure		500				{object}	SubAccountCreateResponse
// @Param			subAccounts	body		[]SubAccountEditable	true	"Sub-accounts"
// @Router			/v1/sub-accounts [post]
func CreateSubAccounts(c *gin.Context) {
	var subAccounts []SubAccountEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &subAccounts)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubAccountCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := SubAccountCreateResponse{}

	for _, create := range subAccounts {
		subAccount := create.model()
		err = models.DB.Create(&subAccount).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		// Transform for the API and append
		apiResource := newSubAccount(c, subAccount)
		r.Data = append(r.Data, SubAccountResponse{Data: &apiResource})
	}

	c.JSON(status, r)
}

// @Summary		Get sub-accounts
// @Description	Returns a list of sub-accounts
// @Tags			SubAccounts
// @Produce		json
// @Success		200	{object}	SubAccountListResponse
// @Failure		400	{object}	SubAccountListResponse
// @Failure		500	{object}	SubAccountListResponse
// @Router			/v1/sub-accounts [get]
// @Param			wallet		query	string	false	"Filter by wallet ID"
// @Param			name		query	string	false	"Filter by name"
// @Param			note		query	string	false	"Filter by note"
// @Param			search		query	string	false	"Search for this text in name and note"
// @Param			archived	query	bool	false	"Is the sub-account archived?"
// @Param			offset		query	uint	false	"The offset of the first sub-account returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of sub-accounts to return. Defaults to 50."
func GetSubAccounts(c *gin.Context) {
	var filter SubAccountQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, SubAccountListResponse{
			Error: &s,
		})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("name ASC").
		Where(&where, queryFields...)

	q = stringFilters(models.DB, q, setFields, filter.Name, filter.Note, filter.Search)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 sub-accounts and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var subAccounts []models.SubAccount
	err := q.Find(&subAccounts).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SubAccountListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubAccountListResponse{
			Error: &e,
		})
		return
	}

	// Transform resources to their API representation
	data := make([]SubAccount, 0, len(subAccounts))
	for _, subAccount := range subAccounts {
		data = append(data, newSubAccount(c, subAccount))
	}

	c.JSON(http.StatusOK, SubAccountListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get sub-account
// @Description	Returns a specific sub-account
// @Tags			SubAccounts
// @Produce		json
// @Success		200	{object}	SubAccountResponse
// @Failure		400	{object}	SubAccountResponse
// @Failure		404	{object}	SubAccountResponse
// @Failure		500	{object}	SubAccountResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/sub-accounts/{id} [get]
func GetSubAccount(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubAccountResponse{
			Error: &e,
		})
		return
	}

	var subAccount models.SubAccount
	err = models.DB.First(&subAccount, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubAccountResponse{
			Error: &e,
		})
		return
	}

	apiResource := newSubAccount(c, subAccount)
	c.JSON(http.StatusOK, SubAccountResponse{Data: &apiResource})
}

// @Summary		Update sub-account
// @Description	Updates an existing sub-account. Only values to be updated need to be specified.
// @Tags			SubAccounts
// @Accept			json
// @Produce		json
// @Success		200			{object}	SubAccountResponse
// @Failure		400			{object}	SubAccountResponse
// @Failure		404			{object}	SubAccountResponse
// @Failure		500			{object}	SubAccountResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			subAccount	body		SubAccountEditable	true	"Sub-account"
// @Router			/v1/sub-accounts/{id} [patch]
func UpdateSubAccount(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubAccountResponse{
			Error: &e,
		})
		return
	}

	var subAccount models.SubAccount
	err = models.DB.First(&subAccount, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubAccountResponse{
			Error: &e,
		})
		return
	}

	// Get the fields that are set to be updated
	updateFields, err := httputil.GetBodyFields(c, SubAccountEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubAccountResponse{
			Error: &e,
		})
		return
	}

	// Bind the data for the patch
	var data SubAccountEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubAccountResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&subAccount).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), SubAccountResponse{
			Error: &e,
		})
		return
	}

	apiResource := newSubAccount(c, subAccount)
	c.JSON(http.StatusOK, SubAccountResponse{Data: &apiResource})
}

// @Summary		Delete sub-account
// @Description	Deletes a sub-account. Only sub-accounts with a zero balance can be deleted.
// @Tags			SubAccounts
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/sub-accounts/{id} [delete]
func DeleteSubAccount(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var subAccount models.SubAccount
	err = models.DB.First(&subAccount, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Delete(&subAccount).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Get sub-account ledger
// @Description	Returns the ledger entries of a sub-account, newest first
// @Tags			SubAccounts
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	TransactionListResponse
// @Failure		404	{object}	TransactionListResponse
// @Failure		500	{object}	TransactionListResponse
// @Param			id		path	URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			from	query	string	false	"Only entries from this date, in YYYY-MM-DD format"
// @Param			until	query	string	false	"Only entries until this date, in YYYY-MM-DD format"
// @Router			/v1/sub-accounts/{id}/transactions [get]
func GetSubAccountTransactions(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &e,
		})
		return
	}

	var filter struct {
		From  string `form:"from"`
		Until string `form:"until"`
	}
	if err := c.Bind(&filter); err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, TransactionListResponse{
			Error: &e,
		})
		return
	}

	var subAccount models.SubAccount
	err = models.DB.First(&subAccount, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &e,
		})
		return
	}

	q := models.DB.
		Where(models.SubAccountTransaction{SubAccountID: subAccount.ID}).
		Order("datetime(created_at) DESC, id DESC")

	if filter.From != "" {
		from, e := types.ParseDate(filter.From)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, TransactionListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date(created_at) >= date(?)", from)
	}

	if filter.Until != "" {
		until, e := types.ParseDate(filter.Until)
		if e != nil {
			s := e.Error()
			c.JSON(http.StatusBadRequest, TransactionListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date(created_at) <= date(?)", until)
	}

	var transactions []models.SubAccountTransaction
	err = q.Find(&transactions).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Transaction, 0, len(transactions))
	for _, transaction := range transactions {
		data = append(data, newTransaction(c, transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{Data: data})
}
