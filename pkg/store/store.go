package store

import (
	"context"
	"time"

	"ai-ragchat-be/internal/pkg/logger"
)

// Defaults for the store tunables.
const (
	DefaultSessionTTL           = 30 * time.Minute
	DefaultMaxDocsPerCollection = 10
	DefaultMaxTotalTokens       = 1_500_000
	DefaultSweepInterval        = 5 * time.Minute
)

// Config selects and tunes a ContextStore backend. A non-empty RedisURL
// picks the shared Redis backend; otherwise sessions live in process
// memory.
type Config struct {
	RedisURL             string
	SessionTTL           time.Duration
	MaxDocsPerCollection int
	MaxTotalTokens       int
	TokenDivisor         int
	SweepInterval        time.Duration // in-memory backend only
}

func (c Config) withDefaults() Config {
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.MaxDocsPerCollection <= 0 {
		c.MaxDocsPerCollection = DefaultMaxDocsPerCollection
	}
	if c.MaxTotalTokens <= 0 {
		c.MaxTotalTokens = DefaultMaxTotalTokens
	}
	if c.TokenDivisor <= 0 {
		c.TokenDivisor = DefaultTokenDivisor
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

// ContextStore accumulates retrieved documents per chat session and
// projects them as prompt context. Both backends satisfy the same
// semantics; callers receive copies, never the store's own records.
//
// Absent sessions are not errors: lookups return nil (or false) and
// mutations of a missing session are no-ops, so errors only signal
// backend failures.
type ContextStore interface {
	// CreateSession persists a new empty session. An existing identifier
	// is kept as-is unless opts.Recreate is set.
	CreateSession(ctx context.Context, sessionID string, opts CreateOptions) (*SessionContext, error)

	// GetSession returns the session, or nil if absent or expired.
	// Reading refreshes the last-access time.
	GetSession(ctx context.Context, sessionID string) (*SessionContext, error)

	// HasSession reuses GetSession's expiry semantics.
	HasSession(ctx context.Context, sessionID string) (bool, error)

	// AddDocuments inserts results into the named collection bucket,
	// auto-creating the session and bucket. Best-effort batch: documents
	// over the per-collection count ceiling, duplicates, and everything
	// from the first budget-crossing document onward are skipped.
	AddDocuments(ctx context.Context, sessionID, collectionKey, collectionID string, results []SearchResult, searchQuery string) (*AddResult, error)

	// GetCollectionContext returns one bucket, or nil if absent.
	GetCollectionContext(ctx context.Context, sessionID, collectionKey string) (*CollectionContext, error)

	// GetAllDocuments flattens every bucket's documents in collection
	// insertion order.
	GetAllDocuments(ctx context.Context, sessionID string) ([]DocumentContext, error)

	// GetFormattedContext renders the accumulated context for prompt
	// construction. Empty string if the session is absent or empty.
	GetFormattedContext(ctx context.Context, sessionID string) (string, error)

	// ClearCollectionContext removes one bucket and its token share.
	ClearCollectionContext(ctx context.Context, sessionID, collectionKey string) error

	// ClearSession drops all buckets but keeps the session record.
	ClearSession(ctx context.Context, sessionID string) error

	// DeleteSession removes the session record entirely.
	DeleteSession(ctx context.Context, sessionID string) error

	// TouchSession extends the TTL without touching document content.
	TouchSession(ctx context.Context, sessionID string) error

	// GetSessionStats returns the stats view, or nil if absent.
	GetSessionStats(ctx context.Context, sessionID string) (*SessionStats, error)

	// Cleanup evicts expired sessions and returns how many were removed.
	// No-op for the Redis backend, which expires keys natively.
	Cleanup(ctx context.Context) (int, error)

	// Close releases backend resources and stops background work.
	Close() error
}

// New constructs the backend selected by cfg. Called once at bootstrap;
// consumers receive the instance through the container rather than a
// package-level singleton.
func New(cfg Config, log logger.ILogger) ContextStore {
	cfg = cfg.withDefaults()
	if cfg.RedisURL != "" {
		return NewRedisStore(cfg, log)
	}
	return NewMemoryStore(cfg, log)
}
