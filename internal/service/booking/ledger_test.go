package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

func newTestLedger(t *testing.T, opts ...LedgerOption) (*flights.FlightCatalog, *ReservationLedger) {
	t.Helper()
	catalog := flights.NewFlightCatalog()
	dep := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	require.NoError(t, catalog.Add(domain.NewFlight("AA123", "New York", "Los Angeles", dep, dep.Add(3*time.Hour), 150, 29999)))
	require.NoError(t, catalog.Add(domain.NewFlight("DL456", "Chicago", "Miami", dep, dep.Add(3*time.Hour), 200, 24999)))

	opts = append([]LedgerOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return catalog, NewReservationLedger(catalog, opts...)
}

func passenger(id string) *domain.Passenger {
	return &domain.Passenger{ID: id, Name: "Jane Doe", Email: "jane@example.com", Phone: "555-0100"}
}

func availableSeats(t *testing.T, catalog *flights.FlightCatalog, number string) int {
	t.Helper()
	f, err := catalog.FindByNumber(number)
	require.NoError(t, err)
	return f.AvailableSeats
}

func TestReservationLedger_CreateAndCancel(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()

	flight, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)

	r, err := ledger.CreateReservation(ctx, flight, passenger("P1"), 2)
	require.NoError(t, err)
	assert.Regexp(t, `^RES-[0-9A-F]{8}$`, r.ID)
	assert.Equal(t, "AA123", r.FlightNumber)
	assert.Equal(t, 2, r.Seats)
	assert.False(t, r.Confirmed)
	assert.False(t, r.Cancelled)
	assert.Equal(t, fixedNow.Truncate(time.Millisecond), r.CreatedAt)
	assert.Equal(t, 148, availableSeats(t, catalog, "AA123"))

	require.NoError(t, ledger.Cancel(ctx, r.ID))
	assert.Equal(t, 150, availableSeats(t, catalog, "AA123"))

	stored, err := ledger.FindByID(r.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cancelled)
	assert.False(t, stored.Active())
}

func TestReservationLedger_UsesCatalogStateNotCallerCopy(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()

	stale, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)

	_, err = ledger.CreateReservation(ctx, stale, passenger("P1"), 100)
	require.NoError(t, err)

	// stale still claims 150 seats
	_, err = ledger.CreateReservation(ctx, stale, passenger("P2"), 60)
	assert.ErrorIs(t, err, domain.ErrNotEnoughSeats)
	assert.Equal(t, 50, availableSeats(t, catalog, "AA123"))

	_, err = ledger.CreateReservation(ctx, stale, passenger("P2"), 50)
	require.NoError(t, err)
	assert.Equal(t, 0, availableSeats(t, catalog, "AA123"))
}

func TestReservationLedger_CreateFailures(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()
	flight, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)
	unknown := &domain.Flight{FlightNumber: "ZZ999"}

	tests := []struct {
		name      string
		flight    *domain.Flight
		passenger *domain.Passenger
		seats     int
		want      error
	}{
		{name: "nil flight", flight: nil, passenger: passenger("P1"), seats: 1, want: domain.ErrFlightRequired},
		{name: "nil passenger", flight: flight, passenger: nil, seats: 1, want: domain.ErrPassengerRequired},
		{name: "zero seats", flight: flight, passenger: passenger("P1"), seats: 0, want: domain.ErrInvalidSeatCount},
		{name: "negative seats", flight: flight, passenger: passenger("P1"), seats: -3, want: domain.ErrInvalidSeatCount},
		{name: "unknown flight", flight: unknown, passenger: passenger("P1"), seats: 1, want: domain.ErrFlightNotFound},
		{name: "not enough seats", flight: flight, passenger: passenger("P1"), seats: 151, want: domain.ErrNotEnoughSeats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ledger.CreateReservation(ctx, tt.flight, tt.passenger, tt.seats)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, r)
			assert.Equal(t, 150, availableSeats(t, catalog, "AA123"))
			assert.Empty(t, ledger.ListAll())
		})
	}
}

func TestReservationLedger_CancelTwiceReleasesOnce(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()
	flight, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)

	first, err := ledger.CreateReservation(ctx, flight, passenger("P1"), 5)
	require.NoError(t, err)
	_, err = ledger.CreateReservation(ctx, flight, passenger("P2"), 10)
	require.NoError(t, err)
	assert.Equal(t, 135, availableSeats(t, catalog, "AA123"))

	require.NoError(t, ledger.Cancel(ctx, first.ID))
	assert.Equal(t, 140, availableSeats(t, catalog, "AA123"))

	err = ledger.Cancel(ctx, first.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Equal(t, 140, availableSeats(t, catalog, "AA123"))

	assert.ErrorIs(t, ledger.Cancel(ctx, "RES-NOPE"), domain.ErrReservationNotFound)
}

func TestReservationLedger_CancelAfterFlightDeleted(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()
	flight, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)

	r, err := ledger.CreateReservation(ctx, flight, passenger("P1"), 5)
	require.NoError(t, err)
	require.True(t, catalog.Delete("AA123"))

	require.NoError(t, ledger.Cancel(ctx, r.ID))
	stored, err := ledger.FindByID(r.ID)
	require.NoError(t, err)
	assert.True(t, stored.Cancelled)
}

func TestReservationLedger_Confirm(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()
	flight, err := catalog.FindByNumber("DL456")
	require.NoError(t, err)

	r, err := ledger.CreateReservation(ctx, flight, passenger("P1"), 3)
	require.NoError(t, err)

	confirmed, err := ledger.Confirm(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)
	assert.Equal(t, 197, availableSeats(t, catalog, "DL456"))

	_, err = ledger.Confirm(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyConfirmed)

	require.NoError(t, ledger.Cancel(ctx, r.ID))
	other, err := ledger.CreateReservation(ctx, flight, passenger("P2"), 1)
	require.NoError(t, err)
	require.NoError(t, ledger.Cancel(ctx, other.ID))
	_, err = ledger.Confirm(ctx, other.ID)
	assert.ErrorIs(t, err, domain.ErrReservationCancelled)

	_, err = ledger.Confirm(ctx, "RES-NOPE")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestReservationLedger_FindAndList(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()
	aa, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)
	dl, err := catalog.FindByNumber("DL456")
	require.NoError(t, err)

	r1, err := ledger.CreateReservation(ctx, aa, passenger("p-1"), 1)
	require.NoError(t, err)
	r2, err := ledger.CreateReservation(ctx, dl, passenger("P-2"), 2)
	require.NoError(t, err)
	r3, err := ledger.CreateReservation(ctx, dl, passenger("P-1"), 3)
	require.NoError(t, err)

	found, err := ledger.FindByID(lowerASCII(r2.ID))
	require.NoError(t, err)
	assert.Equal(t, r2.ID, found.ID)

	_, err = ledger.FindByID("RES-NOPE")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)

	mine := ledger.ListByPassenger("P-1")
	require.Len(t, mine, 2)
	assert.Equal(t, r1.ID, mine[0].ID)
	assert.Equal(t, r3.ID, mine[1].ID)

	none := ledger.ListByPassenger("P-9")
	assert.NotNil(t, none)
	assert.Empty(t, none)

	all := ledger.ListAll()
	require.Len(t, all, 3)
	all[0].Seats = 99
	assert.Equal(t, 1, ledger.ListAll()[0].Seats)
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func TestReservationLedger_ConcurrentBookingsNeverOversell(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()
	flight, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		booked   int
		rejected int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.CreateReservation(ctx, flight, passenger("P"), 2)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrNotEnoughSeats)
				rejected++
				return
			}
			booked++
		}()
	}
	wg.Wait()

	assert.Equal(t, 75, booked)
	assert.Equal(t, 25, rejected)
	assert.Equal(t, 0, availableSeats(t, catalog, "AA123"))
	assert.Len(t, ledger.ListAll(), 75)
}

func TestReservationLedger_ConcurrentCreateCancelSnapshot(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()
	flight, err := catalog.FindByNumber("DL456")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				r, err := ledger.CreateReservation(ctx, flight, passenger("P"), 1)
				if err != nil {
					continue
				}
				if j%2 == 0 {
					assert.NoError(t, ledger.Cancel(ctx, r.ID))
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			flightList, reservations := ledger.Snapshot()
			assertConsistent(t, flightList, reservations)
		}
	}()
	wg.Wait()

	flightList, reservations := ledger.Snapshot()
	assertConsistent(t, flightList, reservations)
}

// assertConsistent checks that booked seats on every flight equal the seats of its
// active reservations.
func assertConsistent(t *testing.T, flightList []domain.Flight, reservations []domain.Reservation) {
	t.Helper()
	held := make(map[string]int)
	for _, r := range reservations {
		if r.Active() {
			held[r.FlightNumber] += r.Seats
		}
	}
	for _, f := range flightList {
		assert.Equal(t, held[f.FlightNumber], f.BookedSeats(), f.FlightNumber)
		assert.GreaterOrEqual(t, f.AvailableSeats, 0)
		assert.LessOrEqual(t, f.AvailableSeats, f.TotalSeats)
	}
}

func TestReservationLedger_Restore(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()

	loaded := []domain.Reservation{
		{ID: "RES-00000001", FlightNumber: "AA123", Passenger: *passenger("P1"), Seats: 4},
		{ID: "RES-00000002", FlightNumber: "GONE1", Passenger: *passenger("P2"), Seats: 2},
		{ID: "res-00000001", FlightNumber: "AA123", Passenger: *passenger("P3"), Seats: 9},
	}
	linked, orphaned := ledger.Restore(loaded)
	assert.Equal(t, 1, linked)
	assert.Equal(t, 1, orphaned)
	assert.Len(t, ledger.ListAll(), 2)

	// seat counts are taken as stored
	assert.Equal(t, 150, availableSeats(t, catalog, "AA123"))

	require.NoError(t, ledger.Cancel(ctx, "RES-00000001"))
	assert.Equal(t, 150, availableSeats(t, catalog, "AA123"), "release is capped at capacity")

	require.NoError(t, ledger.Cancel(ctx, "RES-00000002"))
	orphan, err := ledger.FindByID("RES-00000002")
	require.NoError(t, err)
	assert.True(t, orphan.Cancelled)
}

func TestReservationLedger_RestoredReservationBooksAgainstCatalog(t *testing.T) {
	catalog := flights.NewFlightCatalog()
	f := domain.NewFlight("AA123", "New York", "Los Angeles", fixedNow, fixedNow.Add(time.Hour), 150, 29999)
	f.AvailableSeats = 146
	require.NoError(t, catalog.Restore([]domain.Flight{f}))

	ledger := NewReservationLedger(catalog)
	ledger.Restore([]domain.Reservation{{ID: "RES-00000001", FlightNumber: "AA123", Passenger: *passenger("P1"), Seats: 4}})

	require.NoError(t, ledger.Cancel(context.Background(), "RES-00000001"))
	assert.Equal(t, 150, availableSeats(t, catalog, "AA123"))
}

func TestReservationLedger_IDCollision(t *testing.T) {
	ids := []string{"RES-AAAAAAAA", "RES-AAAAAAAA", "RES-BBBBBBBB"}
	next := 0
	gen := IDGeneratorFunc(func() string {
		id := ids[next%len(ids)]
		next++
		return id
	})

	catalog, ledger := newTestLedger(t, WithIDGenerator(gen))
	ctx := context.Background()
	flight, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)

	first, err := ledger.CreateReservation(ctx, flight, passenger("P1"), 1)
	require.NoError(t, err)
	second, err := ledger.CreateReservation(ctx, flight, passenger("P2"), 1)
	require.NoError(t, err)

	assert.Equal(t, "RES-AAAAAAAA", first.ID)
	assert.Equal(t, "RES-BBBBBBBB", second.ID)
	assert.Equal(t, 148, availableSeats(t, catalog, "AA123"))
}

func TestReservationLedger_IDExhausted(t *testing.T) {
	catalog, ledger := newTestLedger(t,
		WithIDGenerator(IDGeneratorFunc(func() string { return "RES-SAME" })),
		WithMaxIDAttempts(3),
	)
	ctx := context.Background()
	flight, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)

	_, err = ledger.CreateReservation(ctx, flight, passenger("P1"), 1)
	require.NoError(t, err)

	_, err = ledger.CreateReservation(ctx, flight, passenger("P2"), 1)
	assert.True(t, errors.Is(err, domain.ErrIDExhausted))
	assert.Equal(t, 149, availableSeats(t, catalog, "AA123"), "failed allocation takes no seats")
	assert.Len(t, ledger.ListAll(), 1)
}

func TestReservationLedger_SequenceExhausted(t *testing.T) {
	catalog, ledger := newTestLedger(t, WithIDGenerator(NewSequentialIDs(LastSequence([]string{"RES-FFFFFFFF"}))))
	ctx := context.Background()
	flight, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)

	_, err = ledger.CreateReservation(ctx, flight, passenger("P1"), 1)
	assert.ErrorIs(t, err, domain.ErrIDExhausted)
	assert.Equal(t, 150, availableSeats(t, catalog, "AA123"))
	assert.Empty(t, ledger.ListAll())
}

func TestReservationLedger_SellOutAndCancelAll(t *testing.T) {
	catalog, ledger := newTestLedger(t)
	ctx := context.Background()
	flight, err := catalog.FindByNumber("AA123")
	require.NoError(t, err)

	ids := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		r, err := ledger.CreateReservation(ctx, flight, passenger("P1"), 1)
		require.NoError(t, err)
		ids = append(ids, r.ID)
	}
	assert.Equal(t, 0, availableSeats(t, catalog, "AA123"))

	_, err = ledger.CreateReservation(ctx, flight, passenger("P2"), 1)
	assert.ErrorIs(t, err, domain.ErrNotEnoughSeats)
	assert.Equal(t, 0, availableSeats(t, catalog, "AA123"))
	assert.Len(t, ledger.ListAll(), 150)

	for _, id := range ids {
		require.NoError(t, ledger.Cancel(ctx, id))
	}
	assert.Equal(t, 150, availableSeats(t, catalog, "AA123"))
	for _, r := range ledger.ListAll() {
		assert.True(t, r.Cancelled)
	}
}
