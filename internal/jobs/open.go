package jobs

import (
	"context"
	"fmt"

	"storyreel/internal/config"
	"storyreel/internal/database"
)

// Backend is a StatusQuery with a connection lifecycle.
type Backend interface {
	StatusQuery
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by cfg. db backs the ledger.
func Open(cfg *config.Config, db *database.DB) (Backend, error) {
	switch cfg.Jobs.Backend {
	case config.JobsBackendLedger:
		if db == nil {
			return nil, fmt.Errorf("jobs ledger requires a database")
		}
		return NewLedger(db), nil
	case config.JobsBackendAsynq:
		return NewAsynq(AsynqOptions{
			Addr:     cfg.Jobs.RedisAddr,
			Password: cfg.Jobs.RedisPassword,
			DB:       cfg.Jobs.RedisDB,
		}), nil
	default:
		return nil, fmt.Errorf("unknown jobs backend %q", cfg.Jobs.Backend)
	}
}
