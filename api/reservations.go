package api

import (
	"net/http"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/Domenick1991/airreservation/internal/validator"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	flights  flights.FlightUseCase
	bookings booking.BookingUseCase
	validate *validator.Validator
}

type passengerRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type createReservationRequest struct {
	FlightNumber string            `json:"flight_number" binding:"required"`
	Seats        int               `json:"seats"`
	Passenger    *passengerRequest `json:"passenger" binding:"required"`
}

// NewReservationHandler builds its own validator when validate is nil.
func NewReservationHandler(flightService flights.FlightUseCase, bookingService booking.BookingUseCase, validate *validator.Validator) *ReservationHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ReservationHandler{flights: flightService, bookings: bookingService, validate: validate}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id/confirm", h.confirm)
	router.DELETE("/:id", h.cancel)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	passenger := &domain.Passenger{
		ID:    req.Passenger.ID,
		Name:  req.Passenger.Name,
		Email: req.Passenger.Email,
		Phone: req.Passenger.Phone,
	}
	if err := h.validate.Passenger(*passenger); err != nil {
		writeError(c, err)
		return
	}

	flight, err := h.flights.FindByNumber(req.FlightNumber)
	if err != nil {
		writeError(c, err)
		return
	}
	reservation, err := h.bookings.CreateReservation(c.Request.Context(), flight, passenger, req.Seats)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

// list returns all reservations, or those of ?passenger_id=.
func (h *ReservationHandler) list(c *gin.Context) {
	if passengerID, ok := c.GetQuery("passenger_id"); ok {
		c.JSON(http.StatusOK, h.bookings.ListByPassenger(passengerID))
		return
	}
	c.JSON(http.StatusOK, h.bookings.ListAll())
}

func (h *ReservationHandler) get(c *gin.Context) {
	reservation, err := h.bookings.FindByID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) confirm(c *gin.Context) {
	reservation, err := h.bookings.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	id := c.Param("id")
	if err := h.bookings.Cancel(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation_id": id, "cancelled": true})
}
