package transport

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mbonu-Cyp/Decentralised-Event-Ticketing-Platform/internal/transport/middleware"
)

type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	// Verifier authenticates bearer tokens. Nil trusts the caller header.
	Verifier middleware.IdentityVerifier
}

func InitRoutes(eventHandler *EventHandler, ticketHandler *TicketHandler, platformHandler *PlatformHandler, batchHandler *BatchHandler, opts Options) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(opts.RequestTimeout))

	auth := middleware.Auth(opts.Verifier)

	// API routes
	api := router.Group("/api/v1")
	{
		// Event routes
		events := api.Group("/events")
		{
			events.POST("", auth, eventHandler.CreateEvent)
			events.GET("/:id", eventHandler.GetEvent)
			events.POST("/:id/tickets", auth, ticketHandler.PurchaseTicket)
		}

		// Ticket routes
		tickets := api.Group("/tickets")
		{
			tickets.GET("/:id", ticketHandler.GetTicket)
			tickets.POST("/:id/validate", auth, ticketHandler.ValidateTicket)
			tickets.POST("/:id/refund", auth, ticketHandler.RefundTicket)
		}

		api.GET("/organizers/:identity/revenue", eventHandler.GetOrganizerRevenue)
		api.GET("/users/:identity/tickets", ticketHandler.GetUserTickets)

		// Platform routes
		platform := api.Group("/platform")
		{
			platform.GET("", platformHandler.GetPlatform)
			platform.GET("/fee", platformHandler.CalculateFee)
			platform.PUT("/fee", auth, platformHandler.UpdatePlatformFee)
			platform.PUT("/min-ticket-price", auth, platformHandler.UpdateMinTicketPrice)
			platform.GET("/height", platformHandler.GetHeight)
		}

		api.POST("/batch", auth, batchHandler.ApplyBatch)
		api.GET("/journal", batchHandler.ListJournal)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		})
	})

	return router
}
