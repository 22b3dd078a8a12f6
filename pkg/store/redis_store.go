package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-ragchat-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces session records in the shared cache.
const redisKeyPrefix = "ragchat:context:"

// RedisStore implements the contract over a shared Redis. Each session is
// one JSON value whose absolute expiration is reset to the TTL on every
// write, and every operation - reads included, since they refresh the
// last-access time - is a full read-modify-write of the record. There is
// no compare-and-swap, so two concurrent writers to one session can race
// and one update can be lost; the surrounding system tolerates an
// occasionally dropped context addition, and session records are small
// enough that the whole-record rewrite stays cheap.
type RedisStore struct {
	cfg Config
	rdb *redis.Client
	log logger.ILogger
}

// NewRedisStore builds the shared backend. The connection itself is
// lazy: go-redis dials on first use, with a bounded retry budget.
func NewRedisStore(cfg Config, log logger.ILogger) *RedisStore {
	cfg = cfg.withDefaults()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warn("ContextStore", "Failed to parse Redis URL, using it as a direct address", map[string]interface{}{
			"error": err.Error(),
		})
		opt = &redis.Options{Addr: cfg.RedisURL}
	}
	opt.MaxRetries = 3

	return &RedisStore{
		cfg: cfg,
		rdb: redis.NewClient(opt),
		log: log,
	}
}

func (r *RedisStore) key(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// load fetches and decodes one session. A corrupt payload is deleted and
// treated as absent rather than surfaced as an error; only transport
// failures propagate.
func (r *RedisStore) load(ctx context.Context, sessionID string) (*SessionContext, error) {
	raw, err := r.rdb.Get(ctx, r.key(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("context store: redis get %s: %w", sessionID, err)
	}

	var s SessionContext
	if err := json.Unmarshal(raw, &s); err != nil {
		r.log.Warn("ContextStore", "Dropping corrupt session record", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		r.rdb.Del(ctx, r.key(sessionID))
		return nil, nil
	}
	return &s, nil
}

// save serializes the record and re-arms its expiration.
func (r *RedisStore) save(ctx context.Context, s *SessionContext, now time.Time) error {
	s.LastAccessedAt = now
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("context store: marshal session %s: %w", s.SessionID, err)
	}
	if err := r.rdb.Set(ctx, r.key(s.SessionID), payload, r.cfg.SessionTTL).Err(); err != nil {
		return fmt.Errorf("context store: redis set %s: %w", s.SessionID, err)
	}
	return nil
}

func (r *RedisStore) CreateSession(ctx context.Context, sessionID string, opts CreateOptions) (*SessionContext, error) {
	now := time.Now()
	existing, err := r.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil && !opts.Recreate {
		if err := r.save(ctx, existing, now); err != nil {
			return nil, err
		}
		return existing, nil
	}
	s := newSessionContext(sessionID, now)
	if err := r.save(ctx, s, now); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisStore) GetSession(ctx context.Context, sessionID string) (*SessionContext, error) {
	s, err := r.load(ctx, sessionID)
	if err != nil || s == nil {
		return nil, err
	}
	if err := r.save(ctx, s, time.Now()); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisStore) HasSession(ctx context.Context, sessionID string) (bool, error) {
	s, err := r.GetSession(ctx, sessionID)
	return s != nil, err
}

func (r *RedisStore) AddDocuments(ctx context.Context, sessionID, collectionKey, collectionID string, results []SearchResult, searchQuery string) (*AddResult, error) {
	now := time.Now()
	s, err := r.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s = newSessionContext(sessionID, now)
	}
	res := s.addDocuments(collectionKey, collectionID, results, searchQuery, r.cfg, now)
	if err := r.save(ctx, s, now); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *RedisStore) GetCollectionContext(ctx context.Context, sessionID, collectionKey string) (*CollectionContext, error) {
	s, err := r.load(ctx, sessionID)
	if err != nil || s == nil {
		return nil, err
	}
	if err := r.save(ctx, s, time.Now()); err != nil {
		return nil, err
	}
	return s.collection(collectionKey), nil
}

func (r *RedisStore) GetAllDocuments(ctx context.Context, sessionID string) ([]DocumentContext, error) {
	s, err := r.load(ctx, sessionID)
	if err != nil || s == nil {
		return nil, err
	}
	if err := r.save(ctx, s, time.Now()); err != nil {
		return nil, err
	}
	return s.allDocuments(), nil
}

func (r *RedisStore) GetFormattedContext(ctx context.Context, sessionID string) (string, error) {
	s, err := r.load(ctx, sessionID)
	if err != nil || s == nil {
		return "", err
	}
	if err := r.save(ctx, s, time.Now()); err != nil {
		return "", err
	}
	return formatContext(s), nil
}

func (r *RedisStore) ClearCollectionContext(ctx context.Context, sessionID, collectionKey string) error {
	s, err := r.load(ctx, sessionID)
	if err != nil || s == nil {
		return err
	}
	s.clearCollection(collectionKey)
	return r.save(ctx, s, time.Now())
}

func (r *RedisStore) ClearSession(ctx context.Context, sessionID string) error {
	s, err := r.load(ctx, sessionID)
	if err != nil || s == nil {
		return err
	}
	s.clearAll()
	return r.save(ctx, s, time.Now())
}

func (r *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	if err := r.rdb.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("context store: redis del %s: %w", sessionID, err)
	}
	return nil
}

func (r *RedisStore) TouchSession(ctx context.Context, sessionID string) error {
	// No touch-without-rewrite primitive: extending the TTL is the same
	// read + re-serialize cycle as every other operation.
	s, err := r.load(ctx, sessionID)
	if err != nil || s == nil {
		return err
	}
	return r.save(ctx, s, time.Now())
}

func (r *RedisStore) GetSessionStats(ctx context.Context, sessionID string) (*SessionStats, error) {
	s, err := r.load(ctx, sessionID)
	if err != nil || s == nil {
		return nil, err
	}
	now := time.Now()
	if err := r.save(ctx, s, now); err != nil {
		return nil, err
	}
	return s.stats(now), nil
}

// Cleanup is a no-op: Redis expires session keys natively.
func (r *RedisStore) Cleanup(ctx context.Context) (int, error) {
	return 0, nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
