package session

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/jobboard/internal/common"
)

// SQLiteBackend stores sessions in a local SQLite file.
type SQLiteBackend struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) the session database at path and migrates it.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*SQLiteBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.StorageError("open sqlite", err)
	}
	// a single writer avoids SQLITE_BUSY under concurrent requests
	db.SetMaxOpenConns(1)

	b := &SQLiteBackend{db: db, logger: logger}
	if err := b.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("session store ready", "driver", "sqlite", "path", path)
	return b, nil
}

func (b *SQLiteBackend) migrate(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	access_token TEXT NOT NULL DEFAULT '',
	refresh_token TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`)
	if err != nil {
		return common.StorageError("migrate sessions", err)
	}
	return nil
}

func (b *SQLiteBackend) Load(ctx context.Context, sessionID string) (Tokens, error) {
	var t Tokens
	row := b.db.QueryRowContext(ctx, `SELECT access_token, refresh_token FROM sessions WHERE id = ?`, sessionID)
	switch err := row.Scan(&t.Access, &t.Refresh); {
	case errors.Is(err, sql.ErrNoRows):
		return Tokens{}, ErrNoSession
	case err != nil:
		b.logger.Error("session.load_failed", "driver", "sqlite", "error", err)
		return Tokens{}, common.StorageError("load session", err)
	}
	return t, nil
}

func (b *SQLiteBackend) Save(ctx context.Context, sessionID string, t Tokens) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO sessions (id, access_token, refresh_token, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			updated_at = CURRENT_TIMESTAMP`,
		sessionID, t.Access, t.Refresh,
	)
	if err != nil {
		b.logger.Error("session.save_failed", "driver", "sqlite", "error", err)
		return common.StorageError("save session", err)
	}
	return nil
}

func (b *SQLiteBackend) Delete(ctx context.Context, sessionID string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
		b.logger.Error("session.delete_failed", "driver", "sqlite", "error", err)
		return common.StorageError("delete session", err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

// HealthCheck pings the database file.
func (b *SQLiteBackend) HealthCheck(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := common.WithTimeout(ctx, timeout)
	defer cancel()
	return b.db.PingContext(ctx)
}
