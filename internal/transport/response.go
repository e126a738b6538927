package transport

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
)

// ErrorResponse is the body of every failed request. Code is the ledger
// result code and is omitted for transport level failures.
type ErrorResponse struct {
	Error string           `json:"error"`
	Code  entity.ErrorCode `json:"code,omitempty"`
}

var statusByCode = map[entity.ErrorCode]int{
	entity.CodeNotAuthorized:      http.StatusForbidden,
	entity.CodeNotFound:           http.StatusNotFound,
	entity.CodeSoldOut:            http.StatusConflict,
	entity.CodeInvalidPrice:       http.StatusBadRequest,
	entity.CodeEventExpired:       http.StatusUnprocessableEntity,
	entity.CodeTicketUsed:         http.StatusConflict,
	entity.CodeRefundWindowClosed: http.StatusConflict,
	entity.CodeTransferFailed:     http.StatusPaymentRequired,
}

func writeError(c *gin.Context, err error) {
	if code, ok := entity.CodeOf(err); ok {
		status, known := statusByCode[code]
		if !known {
			status = http.StatusBadRequest
		}
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	if errors.Is(err, entity.ErrInvalidOperation) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	logrus.WithField("path", c.Request.URL.Path).Errorf("Request failed: %v", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func notFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: msg, Code: entity.CodeNotFound})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
