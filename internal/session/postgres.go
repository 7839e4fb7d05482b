package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joseph-ayodele/jobboard/internal/common"
)

type PostgresConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// PostgresBackend stores sessions in a shared Postgres table so several web
// instances can serve the same browser.
type PostgresBackend struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool, ensures the sessions table exists and
// returns the backend.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to session database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse session database dsn", "error", err)
		return nil, common.StorageError("parse dsn", err)
	}

	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "jobboard"

	dialCtx, cancel := common.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to session database", "error", err)
		return nil, common.StorageError("connect", err)
	}

	b := &PostgresBackend{pool: pool, logger: logger}
	if err := b.HealthCheck(ctx, cfg.DialTimeout); err != nil {
		pool.Close()
		return nil, common.StorageError("ping", err)
	}
	if _, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	access_token TEXT NOT NULL DEFAULT '',
	refresh_token TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		pool.Close()
		return nil, common.StorageError("migrate sessions", err)
	}

	logger.Info("session store ready", "driver", "postgres")
	return b, nil
}

// HealthCheck pings the pool.
func (b *PostgresBackend) HealthCheck(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	b.logger.Debug("pinging session database")
	return b.pool.Ping(ctx)
}

func (b *PostgresBackend) Load(ctx context.Context, sessionID string) (Tokens, error) {
	var t Tokens
	err := b.pool.QueryRow(ctx,
		`SELECT access_token, refresh_token FROM sessions WHERE id = $1`, sessionID,
	).Scan(&t.Access, &t.Refresh)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Tokens{}, ErrNoSession
	case err != nil:
		b.logger.Error("session.load_failed", "driver", "postgres", "error", err)
		return Tokens{}, common.StorageError("load session", err)
	}
	return t, nil
}

func (b *PostgresBackend) Save(ctx context.Context, sessionID string, t Tokens) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO sessions (id, access_token, refresh_token, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			updated_at = now()`,
		sessionID, t.Access, t.Refresh,
	)
	if err != nil {
		b.logger.Error("session.save_failed", "driver", "postgres", "error", err)
		return common.StorageError("save session", err)
	}
	return nil
}

func (b *PostgresBackend) Delete(ctx context.Context, sessionID string) error {
	if _, err := b.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sessionID); err != nil {
		b.logger.Error("session.delete_failed", "driver", "postgres", "error", err)
		return common.StorageError("delete session", err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	b.logger.Info("closing session database")
	b.pool.Close()
	return nil
}
