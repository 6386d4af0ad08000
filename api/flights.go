package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type createFlightRequest struct {
	FlightNumber  string    `json:"flight_number" binding:"required"`
	Origin        string    `json:"origin" binding:"required"`
	Destination   string    `json:"destination" binding:"required"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	TotalSeats    int       `json:"total_seats" binding:"required,gt=0"`
	PriceCents    int64     `json:"price_cents" binding:"gte=0"`
}

// updateFlightRequest changes only the fields that are present. Seat counts are not
// updatable here.
type updateFlightRequest struct {
	Origin        *string    `json:"origin"`
	Destination   *string    `json:"destination"`
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	PriceCents    *int64     `json:"price_cents"`
}

func (r updateFlightRequest) apply(f *domain.Flight) {
	if r.Origin != nil {
		f.Origin = *r.Origin
	}
	if r.Destination != nil {
		f.Destination = *r.Destination
	}
	if r.DepartureTime != nil {
		f.DepartureTime = *r.DepartureTime
	}
	if r.ArrivalTime != nil {
		f.ArrivalTime = *r.ArrivalTime
	}
	if r.PriceCents != nil {
		f.PriceCents = *r.PriceCents
	}
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:number", h.get)
	router.POST("", h.create)
	router.PUT("/:number", h.update)
	router.DELETE("/:number", h.delete)
}

// list returns every flight, or the matches for ?origin=&destination= when both are given.
func (h *FlightHandler) list(c *gin.Context) {
	origin, hasOrigin := c.GetQuery("origin")
	destination, hasDestination := c.GetQuery("destination")
	if hasOrigin || hasDestination {
		if !hasOrigin || !hasDestination {
			c.JSON(http.StatusBadRequest, gin.H{"error": "origin and destination must be given together"})
			return
		}
		c.JSON(http.StatusOK, h.service.Search(origin, destination))
		return
	}
	c.JSON(http.StatusOK, h.service.ListAll())
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.FindByNumber(c.Param("number"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight := domain.NewFlight(req.FlightNumber, req.Origin, req.Destination,
		req.DepartureTime, req.ArrivalTime, req.TotalSeats, req.PriceCents)
	if err := h.service.Add(flight); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) update(c *gin.Context) {
	var req updateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.Modify(c.Param("number"), req.apply)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) delete(c *gin.Context) {
	number := c.Param("number")
	if !h.service.Delete(number) {
		c.JSON(http.StatusNotFound, gin.H{"error": "flight not found: " + number})
		return
	}
	c.Status(http.StatusNoContent)
}
