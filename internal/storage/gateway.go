package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/airreservation/internal/logger"
)

// Gateway wraps a Store so that persistence trouble never stops the process: a failed
// load yields an empty snapshot and a logged diagnostic.
type Gateway struct {
	store  Store
	logger *logger.Logger
}

func NewGateway(store Store, log *logger.Logger) *Gateway {
	if log == nil {
		log = logger.Discard()
	}
	return &Gateway{store: store, logger: log}
}

// Load returns the stored snapshot, or an empty one when nothing is stored or the data
// cannot be read.
func (g *Gateway) Load(ctx context.Context) Snapshot {
	snapshot, err := g.store.Load(ctx)
	if err != nil {
		g.logger.Error("failed to load stored state, starting empty", "error", err)
		return Snapshot{}
	}
	g.logger.Info("loaded stored state",
		"flights", len(snapshot.Flights),
		"reservations", len(snapshot.Reservations),
		"passengers", len(snapshot.Passengers),
	)
	return snapshot
}

// Save writes a complete snapshot. Errors are logged and returned for reporting.
func (g *Gateway) Save(ctx context.Context, snapshot Snapshot) error {
	if err := g.store.Save(ctx, snapshot); err != nil {
		g.logger.Error("failed to save state", "error", err)
		return fmt.Errorf("save snapshot: %w", err)
	}
	g.logger.Debug("saved state",
		"flights", len(snapshot.Flights),
		"reservations", len(snapshot.Reservations),
	)
	return nil
}

// SeedIfAbsent stores the sample flights when the store holds no data yet. It reports
// whether it seeded. When the store cannot say whether data exists nothing is written.
func (g *Gateway) SeedIfAbsent(ctx context.Context, now time.Time) (bool, error) {
	exists, err := g.store.Exists(ctx)
	if err != nil {
		g.logger.Warn("cannot check stored state, not seeding", "error", err)
		return false, fmt.Errorf("check stored state: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := g.Save(ctx, NewSnapshot(SampleFlights(now), nil)); err != nil {
		return false, err
	}
	g.logger.Info("seeded sample flights")
	return true, nil
}

// Backup copies the stored data to dest when the store supports it.
func (g *Gateway) Backup(ctx context.Context, dest string) error {
	b, ok := g.store.(Backupper)
	if !ok {
		return ErrBackupUnsupported
	}
	if err := b.Backup(ctx, dest); err != nil {
		g.logger.Error("backup failed", "dest", dest, "error", err)
		return fmt.Errorf("backup to %s: %w", dest, err)
	}
	g.logger.Info("backup written", "dest", dest)
	return nil
}
