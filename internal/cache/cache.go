// Package cache persists finished enrichment results so repeat queries skip
// the whole pipeline.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/timi233/enterprise-brain/internal/model"
)

// DefaultTTL is how long a cached result stays valid.
const DefaultTTL = 90 * 24 * time.Hour

// Store is a SQLite-backed result cache keyed by normalized company name.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

// New opens the cache database at the given path and configures WAL mode.
// A non-positive ttl falls back to DefaultTTL.
func New(dsn string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	return &Store{db: db, ttl: ttl}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS company_cache (
	cache_key      TEXT PRIMARY KEY,
	payload        TEXT NOT NULL,
	schema_version TEXT NOT NULL,
	cached_at      DATETIME NOT NULL,
	expires_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_company_cache_expires_at ON company_cache(expires_at);
`

// Migrate creates the cache table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "cache: migrate")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached view for key. Expired rows and rows written under a
// different payload schema are treated as absent; expiry is lazy, the row is
// removed on the next write or purge.
func (s *Store) Get(ctx context.Context, key string) (*model.View, bool, error) {
	var (
		payload string
		version string
	)
	err := s.db.QueryRowContext(ctx, `
	SELECT payload, schema_version FROM company_cache
	WHERE cache_key = ? AND expires_at > ?`,
		key, time.Now().UTC(),
	).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: get")
	}

	if version != model.SchemaVersion {
		zap.L().Debug("cache: schema version mismatch, treating as miss",
			zap.String("key", key),
			zap.String("cached_version", version),
		)
		return nil, false, nil
	}

	var view model.View
	if err := json.Unmarshal([]byte(payload), &view); err != nil {
		return nil, false, eris.Wrap(err, "cache: unmarshal payload")
	}
	return &view, true, nil
}

// Put upserts a finished result under key. Last write wins.
func (s *Store) Put(ctx context.Context, key string, view model.View) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return eris.Wrap(err, "cache: marshal payload")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO company_cache (cache_key, payload, schema_version, cached_at, expires_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(cache_key) DO UPDATE SET
		payload = excluded.payload,
		schema_version = excluded.schema_version,
		cached_at = excluded.cached_at,
		expires_at = excluded.expires_at`,
		key, string(payload), model.SchemaVersion, now, now.Add(s.ttl),
	)
	if err != nil {
		return eris.Wrap(err, "cache: put")
	}
	return nil
}

// Purge removes the entry for key, reporting whether a row was deleted.
func (s *Store) Purge(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM company_cache WHERE cache_key = ?`, key)
	if err != nil {
		return false, eris.Wrap(err, "cache: purge")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, eris.Wrap(err, "cache: purge rows affected")
	}
	return n > 0, nil
}

// PurgeExpired deletes all expired rows and returns how many were removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM company_cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, eris.Wrap(err, "cache: purge expired")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "cache: purge expired rows affected")
	}
	return n, nil
}
