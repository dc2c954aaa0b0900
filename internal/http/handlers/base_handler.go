// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"travelbook/internal/modules/order"
	"travelbook/internal/modules/payment"
	"travelbook/internal/modules/user"
	"travelbook/internal/types"
)

type errorResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missingFields,omitempty"`
	SQLCode       string   `json:"sqlCode,omitempty"`
	SQLMessage    string   `json:"sqlMessage,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (types.ID, bool) {
	n, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || n <= 0 {
		writeError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return types.ID(n), true
}

// writeOrderError maps order failures to status codes. Unexpected failures only ever
// return an opaque message.
func writeOrderError(c *gin.Context, err error) {
	var oe *order.Error
	if errors.As(err, &oe) {
		resp := errorResponse{Error: oe.Message}
		status := http.StatusInternalServerError
		switch oe.Kind {
		case order.KindValidation:
			status = http.StatusBadRequest
			resp.MissingFields = oe.MissingFields
		case order.KindTemporal:
			status = http.StatusBadRequest
		case order.KindNoTrips, order.KindNoDrivers, order.KindTravelerNotFound:
			status = http.StatusNotFound
		case order.KindPersistence:
			resp.SQLCode = oe.SQLCode
			resp.SQLMessage = oe.SQLMessage
		default:
			resp.Error = order.ErrUnexpected.Message
		}
		writeJSON(c, status, resp)
		return
	}

	switch {
	case errors.Is(err, order.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrInvalidState), errors.Is(err, order.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payment.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, payment.ErrAlreadyUsed):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, payment.ErrNotCompleted), errors.Is(err, payment.ErrInsufficient):
		writeError(c, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, payment.ErrGateway):
		writeError(c, http.StatusBadGateway, payment.ErrGateway.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, user.ErrDuplicate):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, user.ErrInvalidCredentials):
		writeError(c, http.StatusUnauthorized, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
