package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/simaogato/hostelflow-backend/internal/infrastructure/logger"
)

// HealthCheck reports whether a dependency (the database, the lock store) is reachable
type HealthCheck func(ctx context.Context) error

// Handlers groups everything the router mounts
type Handlers struct {
	Catalog *CatalogHandler
	Booking *BookingHandler
	Finance *FinanceHandler
	Health  map[string]HealthCheck
}

// NewRouter builds the gin engine with request ids, request logging and panic recovery
func NewRouter(h Handlers, log *zap.Logger) *gin.Engine {
	SetupValidator()

	engine := gin.New()
	engine.Use(RequestID(), logger.GinMiddleware(log), logger.Recovery(log))

	engine.GET("/healthz", healthz(h.Health))

	api := engine.Group("/api/v1")

	apartments := api.Group("/apartments")
	apartments.GET("", h.Catalog.ListApartments)
	apartments.GET("/:id", h.Catalog.GetApartment)
	apartments.GET("/:id/rooms", h.Catalog.ListRooms)

	api.GET("/rooms/:roomId/availability", h.Catalog.CheckAvailability)

	bookings := api.Group("/bookings")
	bookings.GET("", h.Booking.List)
	bookings.POST("", h.Booking.Create)
	bookings.GET("/transfer-source", h.Booking.TransferSource)
	bookings.GET("/:id", h.Booking.Get)
	bookings.PUT("/:id", h.Booking.Update)
	bookings.DELETE("/:id", h.Booking.Delete)
	bookings.POST("/:id/confirm", h.Booking.Confirm)
	bookings.POST("/:id/cancel", h.Booking.Cancel)
	bookings.POST("/:id/end-early", h.Booking.EndEarly)
	bookings.POST("/:id/extend", h.Booking.Extend)

	api.GET("/roi", h.Finance.ListROI)
	api.GET("/roi/:apartmentId", h.Finance.GetROI)
	api.GET("/monthly/summary", h.Finance.MonthlySummary)

	fundGroup := api.Group("/fund")
	fundGroup.GET("/balance", h.Finance.FundBalance)
	fundGroup.GET("/transactions", h.Finance.FundTransactions)
	fundGroup.POST("/deposit", h.Finance.Deposit)
	fundGroup.POST("/withdraw", h.Finance.Withdraw)

	api.POST("/expenses", h.Finance.RecordExpense)
	api.GET("/expenses", h.Finance.ListExpenses)

	api.GET("/currency/rates", h.Finance.CurrencyRates)
	api.POST("/currency/rates/refresh", h.Finance.RefreshRates)

	engine.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})

	return engine
}

func healthz(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, Response{
				Success: false,
				Data:    gin.H{"status": "unavailable", "checks": status},
				Error:   &ErrorInfo{Code: "ERR_UNAVAILABLE", Message: "a dependency is unreachable"},
			})
			return
		}
		ok(c, gin.H{"status": "ok", "checks": status})
	}
}
