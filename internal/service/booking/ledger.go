package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/logger"
	"github.com/Domenick1991/airreservation/internal/service/flights"
)

const defaultMaxIDAttempts = 16

type BookingUseCase interface {
	CreateReservation(ctx context.Context, flight *domain.Flight, passenger *domain.Passenger, seats int) (*domain.Reservation, error)
	Confirm(ctx context.Context, reservationID string) (*domain.Reservation, error)
	Cancel(ctx context.Context, reservationID string) error
	FindByID(reservationID string) (*domain.Reservation, error)
	ListByPassenger(passengerID string) []domain.Reservation
	ListAll() []domain.Reservation
}

// Catalog is what the ledger needs from the flight catalog.
type Catalog interface {
	Inventory(number string) (*flights.Inventory, error)
	Locked(fn func(flights []domain.Flight))
}

type entry struct {
	res domain.Reservation
	// inv is nil when the flight was gone at restore time.
	inv *flights.Inventory
}

// ReservationLedger owns reservations and is the only writer of seat counters for
// bookings and cancellations. mu is always acquired after the seat lock of a flight,
// never before.
type ReservationLedger struct {
	mu      sync.RWMutex
	entries []*entry
	byID    map[string]*entry

	catalog            Catalog
	ids                IDGenerator
	maxIDAttempts      int
	producer           Producer
	publishAttempts    int
	topic              string
	notificationsTopic string
	logger             *logger.Logger
	now                func() time.Time
}

type LedgerOption func(*ReservationLedger)

func WithIDGenerator(ids IDGenerator) LedgerOption {
	return func(l *ReservationLedger) {
		l.ids = ids
	}
}

// WithProducer publishes reservation events to topic after each committed change.
func WithProducer(producer Producer, topic string) LedgerOption {
	return func(l *ReservationLedger) {
		l.producer = producer
		l.topic = topic
	}
}

// WithPublishAttempts bounds how many times each event is sent before it is dropped.
func WithPublishAttempts(n int) LedgerOption {
	return func(l *ReservationLedger) {
		l.publishAttempts = n
	}
}

func WithNotificationsTopic(topic string) LedgerOption {
	return func(l *ReservationLedger) {
		l.notificationsTopic = topic
	}
}

func WithLogger(log *logger.Logger) LedgerOption {
	return func(l *ReservationLedger) {
		l.logger = log
	}
}

func WithClock(now func() time.Time) LedgerOption {
	return func(l *ReservationLedger) {
		l.now = now
	}
}

func WithMaxIDAttempts(n int) LedgerOption {
	return func(l *ReservationLedger) {
		l.maxIDAttempts = n
	}
}

func NewReservationLedger(catalog Catalog, opts ...LedgerOption) *ReservationLedger {
	l := &ReservationLedger{
		byID:            make(map[string]*entry),
		catalog:         catalog,
		ids:             RandomIDs{},
		maxIDAttempts:   defaultMaxIDAttempts,
		publishAttempts: 1,
		logger:          logger.Discard(),
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func key(id string) string {
	return strings.ToUpper(id)
}

// CreateReservation books seats on the catalog flight with the same number as flight.
// The caller's copy is only used for its number; capacity is checked against the
// catalog's current count.
func (l *ReservationLedger) CreateReservation(ctx context.Context, flight *domain.Flight, passenger *domain.Passenger, seats int) (*domain.Reservation, error) {
	if flight == nil {
		return nil, domain.ErrFlightRequired
	}
	if passenger == nil {
		return nil, domain.ErrPassengerRequired
	}
	if seats <= 0 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidSeatCount, seats)
	}

	inv, err := l.catalog.Inventory(flight.FlightNumber)
	if err != nil {
		return nil, err
	}
	number := inv.FlightNumber()

	var created domain.Reservation
	left, err := inv.Reserve(seats, func() error {
		l.mu.Lock()
		defer l.mu.Unlock()

		id, err := l.allocateIDLocked()
		if err != nil {
			return err
		}
		e := &entry{
			res: domain.Reservation{
				ID:           id,
				FlightNumber: number,
				Passenger:    *passenger,
				Seats:        seats,
				CreatedAt:    l.now().UTC().Truncate(time.Millisecond),
			},
			inv: inv,
		}
		l.entries = append(l.entries, e)
		l.byID[key(id)] = e
		created = e.res
		return nil
	})
	if err != nil {
		l.logger.Debug("reservation rejected",
			"flight_number", flight.FlightNumber,
			"seats", seats,
			"error", err,
		)
		return nil, err
	}

	l.logger.Info("reservation created",
		"reservation_id", created.ID,
		"flight_number", number,
		"passenger_id", created.Passenger.ID,
		"seats", seats,
		"available_seats", left,
	)
	l.publish(ctx, EventReservationCreated, created, left)
	return &created, nil
}

func (l *ReservationLedger) allocateIDLocked() (string, error) {
	for attempt := 0; attempt < l.maxIDAttempts; attempt++ {
		id, err := l.ids.NewID()
		if err != nil {
			return "", err
		}
		if _, taken := l.byID[key(id)]; !taken {
			return id, nil
		}
		l.logger.Warn("reservation id collision", "reservation_id", id, "attempt", attempt+1)
	}
	return "", domain.ErrIDExhausted
}

func (l *ReservationLedger) lookup(reservationID string) *entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.byID[key(reservationID)]
}

// Cancel marks the reservation cancelled and gives its seats back to the flight,
// capped at the flight's capacity. A second cancel fails and releases nothing.
func (l *ReservationLedger) Cancel(ctx context.Context, reservationID string) error {
	e := l.lookup(reservationID)
	if e == nil {
		return fmt.Errorf("%w: %s", domain.ErrReservationNotFound, reservationID)
	}

	l.mu.RLock()
	seats := e.res.Seats
	l.mu.RUnlock()

	var cancelled domain.Reservation
	mark := func() error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if e.res.Cancelled {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyCancelled, e.res.ID)
		}
		e.res.Cancelled = true
		cancelled = e.res
		return nil
	}

	left := 0
	if e.inv == nil {
		if err := mark(); err != nil {
			return err
		}
	} else {
		var err error
		if left, err = e.inv.Release(seats, mark); err != nil {
			return err
		}
	}

	l.logger.Info("reservation cancelled",
		"reservation_id", cancelled.ID,
		"flight_number", cancelled.FlightNumber,
		"seats", seats,
		"available_seats", left,
	)
	l.publish(ctx, EventReservationCancelled, cancelled, left)
	return nil
}

// Confirm flags an active reservation as confirmed. It does not touch seat counts.
func (l *ReservationLedger) Confirm(ctx context.Context, reservationID string) (*domain.Reservation, error) {
	l.mu.Lock()
	e := l.byID[key(reservationID)]
	if e == nil {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrReservationNotFound, reservationID)
	}
	if e.res.Cancelled {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrReservationCancelled, e.res.ID)
	}
	if e.res.Confirmed {
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyConfirmed, e.res.ID)
	}
	e.res.Confirmed = true
	confirmed := e.res
	l.mu.Unlock()

	left := 0
	if e.inv != nil {
		left = e.inv.Flight().AvailableSeats
	}
	l.logger.Info("reservation confirmed", "reservation_id", confirmed.ID)
	l.publish(ctx, EventReservationConfirmed, confirmed, left)
	return &confirmed, nil
}

func (l *ReservationLedger) FindByID(reservationID string) (*domain.Reservation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e := l.byID[key(reservationID)]
	if e == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrReservationNotFound, reservationID)
	}
	r := e.res
	return &r, nil
}

func (l *ReservationLedger) ListByPassenger(passengerID string) []domain.Reservation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Reservation, 0)
	for _, e := range l.entries {
		if strings.EqualFold(e.res.Passenger.ID, passengerID) {
			out = append(out, e.res)
		}
	}
	return out
}

func (l *ReservationLedger) ListAll() []domain.Reservation {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.copyLocked()
}

func (l *ReservationLedger) copyLocked() []domain.Reservation {
	out := make([]domain.Reservation, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.res)
	}
	return out
}

// Snapshot returns flights and reservations from one consistent point: no booking is
// half applied in the result.
func (l *ReservationLedger) Snapshot() ([]domain.Flight, []domain.Reservation) {
	var (
		flightList   []domain.Flight
		reservations []domain.Reservation
	)
	l.catalog.Locked(func(all []domain.Flight) {
		flightList = all
		l.mu.RLock()
		reservations = l.copyLocked()
		l.mu.RUnlock()
	})
	return flightList, reservations
}

// Restore replaces the ledger with reservations loaded from storage and links each one
// to the catalog flight of the same number. Seat counts are taken as stored: nothing is
// booked or released. Reservations whose flight is missing are kept but unlinked.
func (l *ReservationLedger) Restore(reservations []domain.Reservation) (linked, orphaned int) {
	entries := make([]*entry, 0, len(reservations))
	byID := make(map[string]*entry, len(reservations))

	for _, r := range reservations {
		if _, dup := byID[key(r.ID)]; dup {
			l.logger.Warn("skipping duplicate reservation id", "reservation_id", r.ID)
			continue
		}
		e := &entry{res: r}
		inv, err := l.catalog.Inventory(r.FlightNumber)
		if err != nil {
			orphaned++
			l.logger.Warn("reservation references unknown flight",
				"reservation_id", r.ID,
				"flight_number", r.FlightNumber,
			)
		} else {
			e.inv = inv
			linked++
		}
		entries = append(entries, e)
		byID[key(r.ID)] = e
	}

	l.mu.Lock()
	l.entries = entries
	l.byID = byID
	l.mu.Unlock()
	return linked, orphaned
}

var _ BookingUseCase = (*ReservationLedger)(nil)
var _ Catalog = (*flights.FlightCatalog)(nil)
