package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"invitegate/internal/ledger"
	"invitegate/internal/nonce"
	"invitegate/internal/platform/config"
	"invitegate/internal/platform/database"
	redisplatform "invitegate/internal/platform/redis"
	httptransport "invitegate/internal/transport/http"
)

// storage holds the opened backends and the stores built on them.
type storage struct {
	db     *database.DB
	redis  *redisplatform.Client
	nonces nonce.Store
	ledger ledger.Store
}

func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (*storage, error) {
	st := &storage{}

	switch cfg.Storage.Driver {
	case config.DriverPostgres, config.DriverSQLite:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		st.db = db
		st.ledger = ledger.NewSQLStore(db)
	default:
		logger.Warn("using in-memory storage; grants are lost on restart")
		st.ledger = ledger.NewInMemoryStore()
	}

	switch cfg.Storage.NonceBackend {
	case config.NonceBackendSQL:
		st.nonces = nonce.NewSQLStore(st.db)
	case config.NonceBackendRedis:
		client, err := redisplatform.New(ctx, cfg.Redis)
		if err != nil {
			st.Close()
			return nil, err
		}
		st.redis = client
		st.nonces = nonce.NewRedisStore(client.Client)
	default:
		logger.Warn("using in-memory nonce store; not safe across replicas")
		st.nonces = nonce.NewInMemoryStore()
	}

	return st, nil
}

func openDatabase(ctx context.Context, cfg config.Config) (*database.DB, error) {
	dialect := database.DialectSQLite
	if cfg.Storage.Driver == config.DriverPostgres {
		dialect = database.DialectPostgres
	}
	return database.Open(ctx, dialect, cfg.Storage.DatabaseURL)
}

// checks returns the readiness probes for whichever backends are open.
func (s *storage) checks() map[string]httptransport.ReadinessCheck {
	checks := make(map[string]httptransport.ReadinessCheck)
	if s.db != nil {
		checks["database"] = s.db.PingContext
	}
	if s.redis != nil {
		checks["redis"] = s.redis.Health
	}
	return checks
}

func (s *storage) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Storage.Driver == config.DriverMemory {
		return errors.New("migrate needs a sql STORAGE_DRIVER")
	}
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(ctx, db)
}

func runSweep(ctx context.Context, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	removed, err := st.nonces.Sweep(ctx, cfg.Storage.NonceRetain)
	if err != nil {
		return fmt.Errorf("sweep nonces: %w", err)
	}
	_, err = fmt.Fprintf(out, "%d\n", removed)
	return err
}
