package domain

import "errors"

var (
	ErrFlightNotFound      = errors.New("flight not found")
	ErrReservationNotFound = errors.New("reservation not found")
)

var (
	ErrFlightRequired    = errors.New("flight is required")
	ErrPassengerRequired = errors.New("passenger is required")
	ErrInvalidSeatCount  = errors.New("seat count must be positive")
	ErrInvalidFlight     = errors.New("invalid flight")
	ErrInvalidPassenger  = errors.New("invalid passenger")
	ErrDuplicateFlight   = errors.New("flight number already exists")
)

var (
	ErrNotEnoughSeats       = errors.New("not enough seats available")
	ErrAlreadyCancelled     = errors.New("reservation is already cancelled")
	ErrAlreadyConfirmed     = errors.New("reservation is already confirmed")
	ErrReservationCancelled = errors.New("reservation is cancelled")
	ErrIDExhausted          = errors.New("could not allocate a unique reservation id")
)
