package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/logging"
)

// sqlOpen is a test seam for sql.Open.
var sqlOpen = sql.Open

// Open picks the storage backend. With a DSN it connects, pings within
// connectTimeout and migrates; if any step fails, or there is no DSN, the
// in-memory backend is returned instead. The choice is made once and is
// never revisited.
func Open(ctx context.Context, dsn string, connectTimeout time.Duration, logger logging.Logger) RepositoryManager {
	logger = logger.With("module", "storage")

	if dsn == "" {
		logger.Info(ctx, "no database configured, using ephemeral storage")
		return NewInMemoryRepositoryManager()
	}

	m, err := connectPostgres(ctx, dsn, connectTimeout)
	if err != nil {
		logger.Warn(ctx, "database unavailable, falling back to ephemeral storage",
			"error", err, "mode", ModeEphemeral)
		return NewInMemoryRepositoryManager()
	}

	logger.Info(ctx, "connected to database", "mode", ModeDurable)
	return m
}

func connectPostgres(ctx context.Context, dsn string, connectTimeout time.Duration) (*PostgresRepositoryManager, error) {
	conn, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := NewPostgresRepositoryManager(conn)

	if err := m.RunMigrations(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
