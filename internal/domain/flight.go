package domain

import "time"

type Flight struct {
	FlightNumber   string    `json:"flight_number" validate:"required"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	TotalSeats     int       `json:"total_seats" validate:"gt=0"`
	AvailableSeats int       `json:"available_seats" validate:"gte=0,ltefield=TotalSeats"`
	PriceCents     int64     `json:"price_cents" validate:"gte=0"`
}

// NewFlight returns a flight with every seat available.
func NewFlight(number, origin, destination string, departure, arrival time.Time, totalSeats int, priceCents int64) Flight {
	return Flight{
		FlightNumber:   number,
		Origin:         origin,
		Destination:    destination,
		DepartureTime:  departure,
		ArrivalTime:    arrival,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		PriceCents:     priceCents,
	}
}

// Normalized returns f with its schedule in UTC at millisecond precision, which is
// the finest resolution every storage backend keeps.
func (f Flight) Normalized() Flight {
	f.DepartureTime = f.DepartureTime.UTC().Truncate(time.Millisecond)
	f.ArrivalTime = f.ArrivalTime.UTC().Truncate(time.Millisecond)
	return f
}

// BookedSeats is the number of seats currently held by reservations.
func (f Flight) BookedSeats() int {
	return f.TotalSeats - f.AvailableSeats
}
