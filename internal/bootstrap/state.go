package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/Domenick1991/airreservation/internal/logger"
	"github.com/Domenick1991/airreservation/internal/service/booking"
	"github.com/Domenick1991/airreservation/internal/service/flights"
	"github.com/Domenick1991/airreservation/internal/storage"
)

// Apply puts a loaded snapshot into the catalog and the ledger, then links every
// reservation to the catalog flight with the same number. Flights that fail validation
// make the whole snapshot count as no data: catalog and ledger are left empty.
func Apply(snapshot storage.Snapshot, catalog *flights.FlightCatalog, ledger *booking.ReservationLedger, log *logger.Logger) error {
	if err := catalog.Restore(snapshot.Flights); err != nil {
		log.Error("stored flights are invalid, starting empty", "error", err)
		_ = catalog.Restore(nil)
		ledger.Restore(nil)
		return fmt.Errorf("%w: %w", storage.ErrCorrupt, err)
	}

	valid := make([]domain.Reservation, 0, len(snapshot.Reservations))
	for _, r := range snapshot.Reservations {
		if r.Seats <= 0 || r.ID == "" {
			log.Warn("skipping invalid stored reservation", "reservation_id", r.ID, "seats", r.Seats)
			continue
		}
		valid = append(valid, r)
	}

	linked, orphaned := ledger.Restore(valid)
	log.Info("state restored",
		"flights", len(snapshot.Flights),
		"reservations_linked", linked,
		"reservations_orphaned", orphaned,
	)
	return nil
}

// Persister writes consistent snapshots of the ledger through the gateway. Saves are
// serialized.
type Persister struct {
	mu        sync.Mutex
	gateway   *storage.Gateway
	ledger    *booking.ReservationLedger
	backupDir string
	logger    *logger.Logger
}

func NewPersister(gateway *storage.Gateway, ledger *booking.ReservationLedger, backupDir string, log *logger.Logger) *Persister {
	return &Persister{gateway: gateway, ledger: ledger, backupDir: backupDir, logger: log}
}

func (p *Persister) Save(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	flightList, reservations := p.ledger.Snapshot()
	return p.gateway.Save(ctx, storage.NewSnapshot(flightList, reservations))
}

// Backup saves the current state, then copies it to the backup directory.
func (p *Persister) Backup(ctx context.Context) error {
	if err := p.Save(ctx); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gateway.Backup(ctx, p.backupDir)
}

// Run saves every interval until ctx is done. A non-positive interval disables it.
func (p *Persister) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Save(ctx); err != nil {
				p.logger.Warn("autosave failed", "error", err)
			}
		}
	}
}
