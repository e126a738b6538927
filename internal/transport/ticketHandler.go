package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/service"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/transport/middleware"
)

type TicketHandler struct {
	ticketService service.TicketService
}

func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

func (h *TicketHandler) PurchaseTicket(c *gin.Context) {
	eventID, ok := paramID(c, "id")
	if !ok {
		return
	}

	ticketID, err := h.ticketService.PurchaseTicket(c.Request.Context(), middleware.Caller(c), eventID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ticket_id": ticketID, "event_id": eventID})
}

func (h *TicketHandler) ValidateTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.ticketService.ValidateTicket(c.Request.Context(), middleware.Caller(c), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket_id": id, "status": "validated"})
}

func (h *TicketHandler) RefundTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.ticketService.RefundTicket(c.Request.Context(), middleware.Caller(c), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket_id": id, "status": "refunded"})
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.ticketService.GetTicket(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if ticket == nil {
		notFound(c, "ticket not found")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) GetUserTickets(c *gin.Context) {
	tickets, err := h.ticketService.GetUserTickets(c.Request.Context(), c.Param("identity"))
	if err != nil {
		writeError(c, err)
		return
	}
	if tickets == nil {
		notFound(c, "no tickets for identity")
		return
	}

	c.JSON(http.StatusOK, tickets)
}
