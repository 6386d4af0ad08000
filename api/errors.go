package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/storage"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrReservationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotEnoughSeats),
		errors.Is(err, domain.ErrAlreadyCancelled),
		errors.Is(err, domain.ErrAlreadyConfirmed),
		errors.Is(err, domain.ErrReservationCancelled),
		errors.Is(err, domain.ErrDuplicateFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFlightRequired),
		errors.Is(err, domain.ErrPassengerRequired),
		errors.Is(err, domain.ErrInvalidSeatCount),
		errors.Is(err, domain.ErrInvalidFlight),
		errors.Is(err, domain.ErrInvalidPassenger):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrBackupUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
