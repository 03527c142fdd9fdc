package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"landed-titles/internal/textutil"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"
)

// DB is the subset of *pgxpool.Pool the cache uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS exonym_cache (
	hash       TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	language   TEXT NOT NULL,
	exonym     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// ExonymCache provides in-memory + optional PostgreSQL-backed caching for exonym lookups.
type ExonymCache struct {
	db     DB
	mu     sync.RWMutex
	memory map[string]string // hash → exonym
}

// NewExonymCache creates a cache. A nil db keeps the cache in memory only.
func NewExonymCache(db DB) *ExonymCache {
	return &ExonymCache{
		db:     db,
		memory: make(map[string]string),
	}
}

// Key builds the cache key for a place name in a language.
func Key(name, language string) string {
	return textutil.Hash(language + "\x00" + name)
}

// EnsureSchema creates the cache table.
func (c *ExonymCache) EnsureSchema(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	if _, err := c.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create exonym cache table: %w", err)
	}
	return nil
}

// Get retrieves a cached exonym. Returns empty string and false if not found.
func (c *ExonymCache) Get(ctx context.Context, name, language string) (string, bool) {
	hash := Key(name, language)

	// Check in-memory cache first.
	c.mu.RLock()
	if v, ok := c.memory[hash]; ok {
		c.mu.RUnlock()
		return v, true
	}
	c.mu.RUnlock()

	if c.db == nil {
		return "", false
	}

	var exonym string
	err := c.db.QueryRow(ctx, `SELECT exonym FROM exonym_cache WHERE hash = $1`, hash).Scan(&exonym)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Debug().Err(err).Str("name", name).Msg("Exonym cache read failed")
		}
		return "", false
	}

	c.mu.Lock()
	c.memory[hash] = exonym
	c.mu.Unlock()

	return exonym, true
}

// Set stores an exonym in memory and, when configured, in PostgreSQL.
func (c *ExonymCache) Set(ctx context.Context, name, language, exonym string) error {
	hash := Key(name, language)

	c.mu.Lock()
	c.memory[hash] = exonym
	c.mu.Unlock()

	if c.db == nil {
		return nil
	}

	_, err := c.db.Exec(ctx, `
		INSERT INTO exonym_cache (hash, source, language, exonym)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hash) DO UPDATE SET exonym = EXCLUDED.exonym, updated_at = now()
	`, hash, name, language, exonym)
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}

	return nil
}

// Preload loads all persisted exonyms into memory.
func (c *ExonymCache) Preload(ctx context.Context) error {
	if c.db == nil {
		return nil
	}

	rows, err := c.db.Query(ctx, `SELECT hash, exonym FROM exonym_cache`)
	if err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}
	defer rows.Close()

	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for rows.Next() {
		var hash, exonym string
		if err := rows.Scan(&hash, &exonym); err != nil {
			return fmt.Errorf("preload cache: %w", err)
		}
		c.memory[hash] = exonym
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("preload cache: %w", err)
	}

	log.Info().Int("count", count).Msg("Preloaded exonym cache")
	return nil
}

// Len returns the number of entries held in memory.
func (c *ExonymCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.memory)
}
