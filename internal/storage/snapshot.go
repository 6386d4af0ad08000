package storage

import (
	"context"
	"errors"

	"github.com/Domenick1991/airreservation/internal/domain"
)

// ErrCorrupt marks stored data that exists but cannot be decoded.
var ErrCorrupt = errors.New("stored data is corrupt")

// Snapshot is the full persisted state.
type Snapshot struct {
	Flights      []domain.Flight
	Reservations []domain.Reservation
	Passengers   []domain.Passenger
}

// Empty reports whether the snapshot holds nothing at all.
func (s Snapshot) Empty() bool {
	return len(s.Flights) == 0 && len(s.Reservations) == 0 && len(s.Passengers) == 0
}

// NewSnapshot builds a snapshot and derives the passenger index from reservations.
func NewSnapshot(flights []domain.Flight, reservations []domain.Reservation) Snapshot {
	return Snapshot{
		Flights:      flights,
		Reservations: reservations,
		Passengers:   ExtractPassengers(reservations),
	}
}

// ExtractPassengers returns one passenger per id in order of first appearance; a later
// reservation's passenger value replaces an earlier one with the same id.
func ExtractPassengers(reservations []domain.Reservation) []domain.Passenger {
	index := make(map[string]int)
	out := make([]domain.Passenger, 0)
	for _, r := range reservations {
		if i, ok := index[r.Passenger.ID]; ok {
			out[i] = r.Passenger
			continue
		}
		index[r.Passenger.ID] = len(out)
		out = append(out, r.Passenger)
	}
	return out
}

// Store is one persistence backend. Load on a store with no data returns an empty
// snapshot and no error.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snapshot Snapshot) error
	Exists(ctx context.Context) (bool, error)
}

// Backupper is implemented by stores that can copy their data elsewhere.
type Backupper interface {
	Backup(ctx context.Context, dest string) error
}

// ErrBackupUnsupported is returned by Gateway.Backup for stores without Backupper.
var ErrBackupUnsupported = errors.New("backup is not supported by this store")
