package storage

import (
	"context"
	"sync"

	"github.com/Domenick1991/airreservation/internal/domain"
)

// MemoryStore keeps the last saved snapshot in process memory. It is the fallback when
// no durable backend can be opened.
type MemoryStore struct {
	mu       sync.Mutex
	snapshot Snapshot
	saved    bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSnapshot(m.snapshot), nil
}

func (m *MemoryStore) Save(ctx context.Context, snapshot Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = cloneSnapshot(snapshot)
	m.saved = true
	return nil
}

func (m *MemoryStore) Exists(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved, nil
}

func cloneSnapshot(s Snapshot) Snapshot {
	return Snapshot{
		Flights:      append([]domain.Flight(nil), s.Flights...),
		Reservations: append([]domain.Reservation(nil), s.Reservations...),
		Passengers:   append([]domain.Passenger(nil), s.Passengers...),
	}
}

var _ Store = (*MemoryStore)(nil)
