package transport

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/entity"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/journal"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/service"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/transport/middleware"
)

type JournalReader interface {
	List(ctx context.Context, filter journal.Filter) ([]entity.OperationRecord, error)
}

type BatchHandler struct {
	batchService service.BatchService
	journal      JournalReader
}

// NewBatchHandler builds the batch endpoints. reader may be nil when the
// journal is disabled.
func NewBatchHandler(batchService service.BatchService, reader JournalReader) *BatchHandler {
	return &BatchHandler{batchService: batchService, journal: reader}
}

type BatchRequest struct {
	Operations []service.Operation `json:"operations" binding:"required,min=1,max=100,dive"`
}

// ApplyBatch runs every operation as the authenticated caller. Callers named
// in the body are ignored.
func (h *BatchHandler) ApplyBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	caller := middleware.Caller(c)
	for i := range req.Operations {
		req.Operations[i].Caller = caller
	}

	res, err := h.batchService.ApplyBatch(c.Request.Context(), req.Operations)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *BatchHandler) ListJournal(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotImplemented, ErrorResponse{Error: "journal disabled"})
		return
	}

	filter := journal.Filter{Caller: c.Query("caller")}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "invalid limit")
			return
		}
		filter.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "invalid offset")
			return
		}
		filter.Offset = n
	}

	records, err := h.journal.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records})
}
