package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/service"
	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/transport/middleware"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	id, err := h.eventService.CreateEvent(c.Request.Context(), middleware.Caller(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"event_id": id})
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if event == nil {
		notFound(c, "event not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event":             event,
		"available_tickets": event.AvailableTickets(),
	})
}

func (h *EventHandler) GetOrganizerRevenue(c *gin.Context) {
	acc, err := h.eventService.GetOrganizerRevenue(c.Request.Context(), c.Param("identity"))
	if err != nil {
		writeError(c, err)
		return
	}
	if acc == nil {
		notFound(c, "organizer not found")
		return
	}

	c.JSON(http.StatusOK, acc)
}
