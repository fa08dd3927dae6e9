// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var (
	RetryAttempts = retry.Attempts(5)
	RetryDelay    = retry.Delay(400 * time.Millisecond)
	RetryErr      = retry.LastErrorOnly(true)
)

// Open connects to the database and pings it, retrying while the server
// comes up.
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	if dialect.Name == MySQL.Name {
		var err error
		if dsn, err = mysqlDSN(dsn); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect.Name, err)
	}

	err = retry.Do(func() error {
		return conn.PingContext(ctx)
	}, retry.Context(ctx), RetryAttempts, RetryDelay, RetryErr,
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("database ping failed, retrying", "attempt", n+1, "error", err)
		}))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect.Name, err)
	}

	// SQLite allows a single writer; serialize access through one connection.
	if dialect.Name == SQLite.Name {
		conn.SetMaxOpenConns(1)
	}

	return conn, nil
}

// mysqlDSN forces DATETIME columns to scan into time.Time, in UTC.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql DSN: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg.FormatDSN(), nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect Dialect) error {
	// MySQL rejects multi-statement Exec unless multiStatements=true is set.
	for _, stmt := range splitStatements(dialect.schema) {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// splitStatements splits on ";" at line ends. Statements whose body is
// dollar-quoted are kept whole.
func splitStatements(schema string) []string {
	var out []string
	var cur strings.Builder
	inDollar := false
	for _, line := range strings.Split(schema, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		if strings.Count(line, "$$")%2 == 1 {
			inDollar = !inDollar
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if !inDollar && strings.HasSuffix(trimmed, ";") {
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

const postgresSchema = `
-- Polls
CREATE TABLE IF NOT EXISTS polls (
    id BIGSERIAL PRIMARY KEY,
    question TEXT NOT NULL CHECK (length(question) > 0),
    created_by TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Options
CREATE TABLE IF NOT EXISTS options (
    id BIGSERIAL PRIMARY KEY,
    poll_id BIGINT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    text TEXT NOT NULL CHECK (length(text) > 0),
    votes BIGINT NOT NULL DEFAULT 0 CHECK (votes >= 0)
);

CREATE INDEX IF NOT EXISTS idx_option_poll_id ON options(poll_id);

-- Atomic vote increment, callable by other clients of the same database
CREATE OR REPLACE FUNCTION vote_on_option(input_poll_id BIGINT, input_option_id BIGINT)
RETURNS BOOLEAN AS $$
DECLARE
    updated INTEGER;
BEGIN
    UPDATE options SET votes = votes + 1
    WHERE id = input_option_id AND poll_id = input_poll_id;
    GET DIAGNOSTICS updated = ROW_COUNT;
    RETURN updated > 0;
END;
$$ LANGUAGE plpgsql;
`

const sqliteSchema = `
-- Polls
CREATE TABLE IF NOT EXISTS polls (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    question TEXT NOT NULL CHECK (length(question) > 0),
    created_by TEXT,
    created_at TIMESTAMP NOT NULL
);

-- Options
CREATE TABLE IF NOT EXISTS options (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    poll_id INTEGER NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
    text TEXT NOT NULL CHECK (length(text) > 0),
    votes INTEGER NOT NULL DEFAULT 0 CHECK (votes >= 0)
);

CREATE INDEX IF NOT EXISTS idx_option_poll_id ON options(poll_id);
`

const mysqlSchema = `
-- Polls
CREATE TABLE IF NOT EXISTS polls (
    id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
    question TEXT NOT NULL,
    created_by VARCHAR(64),
    created_at DATETIME(6) NOT NULL
);

-- Options
CREATE TABLE IF NOT EXISTS options (
    id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
    poll_id BIGINT NOT NULL,
    text TEXT NOT NULL,
    votes BIGINT UNSIGNED NOT NULL DEFAULT 0,
    INDEX idx_option_poll_id (poll_id),
    FOREIGN KEY (poll_id) REFERENCES polls(id) ON DELETE CASCADE
);
`
