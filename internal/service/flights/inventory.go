package flights

import (
	"fmt"

	"github.com/Domenick1991/airreservation/internal/domain"
)

// Inventory is a handle on the seat counter of one catalog record. It stays bound to
// that record: updates made through the catalog are visible through it, and once the
// record is deleted Reserve fails with domain.ErrFlightNotFound.
type Inventory struct {
	rec *record
}

// Inventory resolves the first flight whose number matches.
func (c *FlightCatalog) Inventory(number string) (*Inventory, error) {
	r := c.first(number)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlightNotFound, number)
	}
	return &Inventory{rec: r}, nil
}

// Flight returns a copy of the current state of the bound record.
func (i *Inventory) Flight() domain.Flight {
	return i.rec.snapshot()
}

// FlightNumber is the number of the bound record.
func (i *Inventory) FlightNumber() string {
	return i.Flight().FlightNumber
}

// Reserve takes seats from the counter inside the record's critical section. commit
// runs in the same section after the capacity check and before the decrement; if it
// returns an error nothing is taken. Returns the seats left after the booking.
func (i *Inventory) Reserve(seats int, commit func() error) (int, error) {
	if seats <= 0 {
		return 0, domain.ErrInvalidSeatCount
	}

	r := i.rec
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.removed {
		return 0, fmt.Errorf("%w: %s", domain.ErrFlightNotFound, r.flight.FlightNumber)
	}
	if r.flight.AvailableSeats < seats {
		return r.flight.AvailableSeats, fmt.Errorf("%w: %d requested, %d left on %s",
			domain.ErrNotEnoughSeats, seats, r.flight.AvailableSeats, r.flight.FlightNumber)
	}
	if commit != nil {
		if err := commit(); err != nil {
			return r.flight.AvailableSeats, err
		}
	}
	for n := 0; n < seats; n++ {
		r.flight.AvailableSeats--
	}
	return r.flight.AvailableSeats, nil
}

// Release gives seats back, never past TotalSeats. commit runs first inside the
// critical section; if it returns an error the counter is left alone.
func (i *Inventory) Release(seats int, commit func() error) (int, error) {
	r := i.rec
	r.mu.Lock()
	defer r.mu.Unlock()

	if commit != nil {
		if err := commit(); err != nil {
			return r.flight.AvailableSeats, err
		}
	}
	for n := 0; n < seats && r.flight.AvailableSeats < r.flight.TotalSeats; n++ {
		r.flight.AvailableSeats++
	}
	return r.flight.AvailableSeats, nil
}
