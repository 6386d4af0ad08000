package storage

import (
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
)

// Records are the persisted shapes shared by the document stores (files, redis, mongo).

type FlightRecord struct {
	FlightNumber   string    `json:"flight_number" yaml:"flight_number" bson:"flight_number"`
	Origin         string    `json:"origin" yaml:"origin" bson:"origin"`
	Destination    string    `json:"destination" yaml:"destination" bson:"destination"`
	DepartureTime  time.Time `json:"departure_time" yaml:"departure_time" bson:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time" yaml:"arrival_time" bson:"arrival_time"`
	TotalSeats     int       `json:"total_seats" yaml:"total_seats" bson:"total_seats"`
	AvailableSeats int       `json:"available_seats" yaml:"available_seats" bson:"available_seats"`
	PriceCents     int64     `json:"price_cents" yaml:"price_cents" bson:"price_cents"`
	Position       int       `json:"-" yaml:"-" bson:"position"`
}

type PassengerRecord struct {
	ID       string `json:"id" yaml:"id" bson:"passenger_id"`
	Name     string `json:"name" yaml:"name" bson:"name"`
	Email    string `json:"email" yaml:"email" bson:"email"`
	Phone    string `json:"phone" yaml:"phone" bson:"phone"`
	Position int    `json:"-" yaml:"-" bson:"position"`
}

type ReservationRecord struct {
	ID           string          `json:"reservation_id" yaml:"reservation_id" bson:"reservation_id"`
	FlightNumber string          `json:"flight_number" yaml:"flight_number" bson:"flight_number"`
	Passenger    PassengerRecord `json:"passenger" yaml:"passenger" bson:"passenger"`
	Seats        int             `json:"seats" yaml:"seats" bson:"seats"`
	Confirmed    bool            `json:"confirmed" yaml:"confirmed" bson:"confirmed"`
	Cancelled    bool            `json:"cancelled" yaml:"cancelled" bson:"cancelled"`
	CreatedAt    time.Time       `json:"created_at" yaml:"created_at" bson:"created_at"`
	Position     int             `json:"-" yaml:"-" bson:"position"`
}

func ToFlightRecords(flights []domain.Flight) []FlightRecord {
	out := make([]FlightRecord, 0, len(flights))
	for i, f := range flights {
		out = append(out, FlightRecord{
			FlightNumber:   f.FlightNumber,
			Origin:         f.Origin,
			Destination:    f.Destination,
			DepartureTime:  f.DepartureTime,
			ArrivalTime:    f.ArrivalTime,
			TotalSeats:     f.TotalSeats,
			AvailableSeats: f.AvailableSeats,
			PriceCents:     f.PriceCents,
			Position:       i,
		})
	}
	return out
}

func FromFlightRecords(records []FlightRecord) []domain.Flight {
	out := make([]domain.Flight, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Flight{
			FlightNumber:   r.FlightNumber,
			Origin:         r.Origin,
			Destination:    r.Destination,
			DepartureTime:  r.DepartureTime,
			ArrivalTime:    r.ArrivalTime,
			TotalSeats:     r.TotalSeats,
			AvailableSeats: r.AvailableSeats,
			PriceCents:     r.PriceCents,
		})
	}
	return out
}

func toPassengerRecord(p domain.Passenger, position int) PassengerRecord {
	return PassengerRecord{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone, Position: position}
}

func (r PassengerRecord) passenger() domain.Passenger {
	return domain.Passenger{ID: r.ID, Name: r.Name, Email: r.Email, Phone: r.Phone}
}

func ToPassengerRecords(passengers []domain.Passenger) []PassengerRecord {
	out := make([]PassengerRecord, 0, len(passengers))
	for i, p := range passengers {
		out = append(out, toPassengerRecord(p, i))
	}
	return out
}

func FromPassengerRecords(records []PassengerRecord) []domain.Passenger {
	out := make([]domain.Passenger, 0, len(records))
	for _, r := range records {
		out = append(out, r.passenger())
	}
	return out
}

func ToReservationRecords(reservations []domain.Reservation) []ReservationRecord {
	out := make([]ReservationRecord, 0, len(reservations))
	for i, r := range reservations {
		out = append(out, ReservationRecord{
			ID:           r.ID,
			FlightNumber: r.FlightNumber,
			Passenger:    toPassengerRecord(r.Passenger, 0),
			Seats:        r.Seats,
			Confirmed:    r.Confirmed,
			Cancelled:    r.Cancelled,
			CreatedAt:    r.CreatedAt,
			Position:     i,
		})
	}
	return out
}

func FromReservationRecords(records []ReservationRecord) []domain.Reservation {
	out := make([]domain.Reservation, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Reservation{
			ID:           r.ID,
			FlightNumber: r.FlightNumber,
			Passenger:    r.Passenger.passenger(),
			Seats:        r.Seats,
			Confirmed:    r.Confirmed,
			Cancelled:    r.Cancelled,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out
}
