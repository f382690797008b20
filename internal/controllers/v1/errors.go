package v1

import (
	"errors"
	"net/http"

	"github.com/goodness-exchange/gx-protocol-backend-sub004/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"An ID specified in the query string was not a valid UUID"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	return http.StatusBadRequest
}

var (
	errWalletIDParameter = errors.New("the walletId parameter must be set")
	errMonthNotSetInBody = errors.New("the month must be set")
)
