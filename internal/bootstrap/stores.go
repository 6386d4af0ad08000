package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/airreservation/config"
	"github.com/Domenick1991/airreservation/internal/storage"
	"github.com/Domenick1991/airreservation/internal/storage/filestore"
	"github.com/Domenick1991/airreservation/internal/storage/mongostore"
	"github.com/Domenick1991/airreservation/internal/storage/redisstore"
	"github.com/Domenick1991/airreservation/internal/storage/sqlstore"
)

// OpenStore builds the configured backend. The returned close func is never nil.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch backend := strings.ToLower(cfg.Storage.Backend); backend {
	case "file":
		store, err := filestore.New(cfg.Storage.Dir, cfg.Storage.Format)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil

	case "memory":
		return storage.NewMemoryStore(), noop, nil

	case "postgres", "mysql":
		dialect, err := sqlstore.ParseDialect(backend)
		if err != nil {
			return nil, noop, err
		}
		dsn := cfg.Database.DSN()
		if dialect == sqlstore.MySQL {
			m := cfg.MySQL
			dsn = sqlstore.MySQLDSN(m.Host, m.Port, m.User, m.Password, m.Name)
		}
		db, err := sqlstore.Open(ctx, dialect, dsn)
		if err != nil {
			return nil, noop, err
		}
		store := sqlstore.New(db, dialect)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		return store, db.Close, nil

	case "redis":
		store := redisstore.New(redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err := store.Ping(ctx); err != nil {
			store.Close()
			return nil, noop, fmt.Errorf("ping redis: %w", err)
		}
		return store, store.Close, nil

	case "mongo":
		store, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, noop, err
		}
		return store, func() error { return store.Close(context.Background()) }, nil

	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
