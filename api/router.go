package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airreservation/internal/logger"
	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/Domenick1991/airreservation/internal/validator"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	AllowedOrigins []string
	Logger         *logger.Logger
	Validator      *validator.Validator
}

func NewRouter(cfg RouterConfig, flightService flights.FlightUseCase, bookingService booking.BookingUseCase, admin AdminUseCase) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}

	r := gin.New()
	r.Use(requestLogger(cfg.Logger), gin.Recovery())
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{"Content-Type", "Accept", "Origin"},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	NewFlightHandler(flightService).Register(r.Group("/flights"))
	NewReservationHandler(flightService, bookingService, cfg.Validator).Register(r.Group("/reservations"))
	if admin != nil {
		NewAdminHandler(admin).Register(r.Group("/admin"))
	}
	return r
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
			"ip", c.ClientIP(),
		)
	}
}
