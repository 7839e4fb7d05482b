package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/jobboard/internal/common"
)

// Open returns the configured backend: Postgres when a URL is set, otherwise
// a local SQLite file.
func Open(ctx context.Context, cfg common.SessionConfig, logger *slog.Logger) (Backend, error) {
	if cfg.PostgresURL != "" {
		pg, err := OpenPostgres(ctx, PostgresConfig{
			DSN:             cfg.PostgresURL,
			MaxConns:        cfg.MaxConns,
			MaxConnLifetime: cfg.MaxConnLifetime,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     cfg.DialTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := pg.HealthCheck(ctx, cfg.DialTimeout); err != nil {
			_ = pg.Close()
			return nil, err
		}
		return pg, nil
	}
	lite, err := OpenSQLite(ctx, cfg.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	return lite, nil
}
