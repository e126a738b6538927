package transport

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/service"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/transport/middleware"
)

type PlatformHandler struct {
	platformService service.PlatformService
}

func NewPlatformHandler(platformService service.PlatformService) *PlatformHandler {
	return &PlatformHandler{platformService: platformService}
}

type UpdateFeeRequest struct {
	FeePercent *uint64 `json:"fee_percent" binding:"required"`
}

type UpdateMinPriceRequest struct {
	MinTicketPrice *uint64 `json:"min_ticket_price" binding:"required"`
}

func (h *PlatformHandler) GetPlatform(c *gin.Context) {
	cfg, err := h.platformService.GetPlatform(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

func (h *PlatformHandler) UpdatePlatformFee(c *gin.Context) {
	var req UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.platformService.UpdatePlatformFee(c.Request.Context(), middleware.Caller(c), *req.FeePercent); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"platform_fee_percent": *req.FeePercent})
}

func (h *PlatformHandler) UpdateMinTicketPrice(c *gin.Context) {
	var req UpdateMinPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.platformService.UpdateMinTicketPrice(c.Request.Context(), middleware.Caller(c), *req.MinTicketPrice); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"min_ticket_price": *req.MinTicketPrice})
}

// CalculateFee answers GET /platform/fee?amount=N.
func (h *PlatformHandler) CalculateFee(c *gin.Context) {
	amount, err := strconv.ParseUint(c.Query("amount"), 10, 64)
	if err != nil {
		badRequest(c, "amount must be an unsigned integer")
		return
	}

	fee, err := h.platformService.CalculatePlatformFee(c.Request.Context(), amount)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"amount": amount, "fee": fee})
}

func (h *PlatformHandler) GetHeight(c *gin.Context) {
	height, err := h.platformService.Height(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"height": height})
}
