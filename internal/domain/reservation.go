package domain

import "time"

type Passenger struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

type Reservation struct {
	ID           string    `json:"id"`
	FlightNumber string    `json:"flight_number"`
	Passenger    Passenger `json:"passenger"`
	Seats        int       `json:"seats"`
	Confirmed    bool      `json:"confirmed"`
	Cancelled    bool      `json:"cancelled"`
	CreatedAt    time.Time `json:"created_at"`
}

// Active reports whether the reservation still holds seats.
func (r Reservation) Active() bool {
	return !r.Cancelled
}
