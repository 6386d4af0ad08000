package flights

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/validator"
)

type FlightUseCase interface {
	Add(flight domain.Flight) error
	FindByNumber(number string) (*domain.Flight, error)
	Search(origin, destination string) []domain.Flight
	Update(flight domain.Flight) (bool, error)
	Modify(number string, change func(*domain.Flight)) (*domain.Flight, error)
	Delete(number string) bool
	ListAll() []domain.Flight
}

// record is the catalog-owned state of one flight. mu guards flight and removed.
type record struct {
	mu      sync.Mutex
	flight  domain.Flight
	removed bool
}

// FlightCatalog is the authoritative store of flights, keyed case-insensitively by flight number.
//
// Lock order is catalog.mu, then record.mu, then whatever a commit callback acquires.
type FlightCatalog struct {
	mu            sync.RWMutex
	records       []*record
	validate      *validator.Validator
	uniqueNumbers bool
}

type Option func(*FlightCatalog)

// WithUniqueNumbers makes Add reject a flight number that is already in the catalog.
func WithUniqueNumbers() Option {
	return func(c *FlightCatalog) {
		c.uniqueNumbers = true
	}
}

func WithValidator(v *validator.Validator) Option {
	return func(c *FlightCatalog) {
		c.validate = v
	}
}

func NewFlightCatalog(opts ...Option) *FlightCatalog {
	c := &FlightCatalog{}
	for _, opt := range opts {
		opt(c)
	}
	if c.validate == nil {
		c.validate = validator.New()
	}
	return c
}

func sameNumber(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Add appends flight. Duplicate numbers are accepted unless WithUniqueNumbers is set.
// Departure and arrival times are stored in UTC, truncated to milliseconds.
func (c *FlightCatalog) Add(flight domain.Flight) error {
	flight = flight.Normalized()
	if err := c.validate.Flight(flight); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.uniqueNumbers && c.firstLocked(flight.FlightNumber) != nil {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateFlight, flight.FlightNumber)
	}
	c.records = append(c.records, &record{flight: flight})
	return nil
}

// firstLocked needs c.mu held.
func (c *FlightCatalog) firstLocked(number string) *record {
	for _, r := range c.records {
		if sameNumber(r.flight.FlightNumber, number) {
			return r
		}
	}
	return nil
}

func (c *FlightCatalog) first(number string) *record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.firstLocked(number)
}

func (r *record) snapshot() domain.Flight {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flight
}

// FindByNumber returns a copy of the first flight whose number matches.
func (c *FlightCatalog) FindByNumber(number string) (*domain.Flight, error) {
	r := c.first(number)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlightNotFound, number)
	}
	f := r.snapshot()
	return &f, nil
}

// Search matches origin and destination case-insensitively and keeps insertion order.
func (c *FlightCatalog) Search(origin, destination string) []domain.Flight {
	c.mu.RLock()
	defer c.mu.RUnlock()

	found := make([]domain.Flight, 0)
	for _, r := range c.records {
		f := r.snapshot()
		if strings.EqualFold(f.Origin, origin) && strings.EqualFold(f.Destination, destination) {
			found = append(found, f)
		}
	}
	return found
}

// Update replaces the first record whose number matches with flight, field for field,
// including AvailableSeats. Callers changing only route, schedule or price must carry
// the current AvailableSeats forward (read it with FindByNumber first) or use Modify;
// the catalog does not do it for them.
func (c *FlightCatalog) Update(flight domain.Flight) (bool, error) {
	flight = flight.Normalized()
	if err := c.validate.Flight(flight); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.firstLocked(flight.FlightNumber)
	if r == nil {
		return false, nil
	}
	r.mu.Lock()
	r.flight = flight
	r.mu.Unlock()
	return true, nil
}

// Modify applies change to the current state of the first matching flight under its
// seat lock. Seat counts and the flight number cannot be altered through Modify.
func (c *FlightCatalog) Modify(number string, change func(*domain.Flight)) (*domain.Flight, error) {
	r := c.first(number)
	if r == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlightNotFound, number)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.removed {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlightNotFound, number)
	}

	updated := r.flight
	change(&updated)
	updated.FlightNumber = r.flight.FlightNumber
	updated.TotalSeats = r.flight.TotalSeats
	updated.AvailableSeats = r.flight.AvailableSeats
	updated = updated.Normalized()
	if err := c.validate.Flight(updated); err != nil {
		return nil, err
	}
	r.flight = updated
	return &updated, nil
}

// Delete removes every record whose number matches and reports whether any was removed.
func (c *FlightCatalog) Delete(number string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.records[:0]
	removed := false
	for _, r := range c.records {
		if sameNumber(r.flight.FlightNumber, number) {
			r.mu.Lock()
			r.removed = true
			r.mu.Unlock()
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(c.records); i++ {
		c.records[i] = nil
	}
	c.records = kept
	return removed
}

// ListAll returns copies of all flights in insertion order.
func (c *FlightCatalog) ListAll() []domain.Flight {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Flight, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r.snapshot())
	}
	return out
}

// Restore replaces the whole catalog with flights, validating each one.
func (c *FlightCatalog) Restore(flights []domain.Flight) error {
	records := make([]*record, 0, len(flights))
	for _, f := range flights {
		if err := c.validate.Flight(f); err != nil {
			return fmt.Errorf("restore flight %s: %w", f.FlightNumber, err)
		}
		records = append(records, &record{flight: f.Normalized()})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range c.records {
		r.mu.Lock()
		r.removed = true
		r.mu.Unlock()
	}
	c.records = records
	return nil
}

// Locked runs fn while every record is locked, so fn sees one consistent cut of all
// seat counters. fn must not call back into the catalog.
func (c *FlightCatalog) Locked(fn func(flights []domain.Flight)) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	flights := make([]domain.Flight, 0, len(c.records))
	for _, r := range c.records {
		r.mu.Lock()
		flights = append(flights, r.flight)
	}
	defer func() {
		for _, r := range c.records {
			r.mu.Unlock()
		}
	}()

	fn(flights)
}

var _ FlightUseCase = (*FlightCatalog)(nil)
