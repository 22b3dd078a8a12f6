package store

import (
	"context"
	"sync"
	"time"

	"ai-ragchat-be/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps all sessions resident in a process-local go-cache.
// Every read or write re-sets the entry, so the TTL slides with activity
// and go-cache's own expiry check gives lazy eviction on Get. The cache
// janitor is disabled; a cancellable sweeper owned by this store runs
// Cleanup on a fixed interval instead.
//
// A single mutex serializes every read-modify-write cycle. Sessions are
// small and operations short, so whole-store locking is enough to keep
// the token-total invariant under concurrent inserts.
type MemoryStore struct {
	cfg   Config
	cache *cache.Cache
	mu    sync.Mutex
	log   logger.ILogger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore builds the in-process backend and starts its sweeper.
func NewMemoryStore(cfg Config, log logger.ILogger) *MemoryStore {
	cfg = cfg.withDefaults()
	m := &MemoryStore{
		cfg:   cfg,
		cache: cache.New(cfg.SessionTTL, 0),
		log:   log,
		stop:  make(chan struct{}),
	}
	go m.sweep()
	return m
}

func (m *MemoryStore) sweep() {
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			evicted, _ := m.Cleanup(context.Background())
			if evicted > 0 {
				m.log.Info("ContextStore", "Swept expired sessions", map[string]interface{}{
					"evicted": evicted,
				})
			}
		case <-m.stop:
			return
		}
	}
}

// load must be called with m.mu held.
func (m *MemoryStore) load(sessionID string) *SessionContext {
	if x, found := m.cache.Get(sessionID); found {
		return x.(*SessionContext)
	}
	return nil
}

// save refreshes the last-access time and re-arms the TTL.
// Must be called with m.mu held.
func (m *MemoryStore) save(s *SessionContext, now time.Time) {
	s.LastAccessedAt = now
	m.cache.Set(s.SessionID, s, cache.DefaultExpiration)
}

func (m *MemoryStore) CreateSession(ctx context.Context, sessionID string, opts CreateOptions) (*SessionContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing := m.load(sessionID); existing != nil && !opts.Recreate {
		m.save(existing, now)
		return existing.clone(), nil
	}
	s := newSessionContext(sessionID, now)
	m.save(s, now)
	return s.clone(), nil
}

func (m *MemoryStore) GetSession(ctx context.Context, sessionID string) (*SessionContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	if s == nil {
		return nil, nil
	}
	m.save(s, time.Now())
	return s.clone(), nil
}

func (m *MemoryStore) HasSession(ctx context.Context, sessionID string) (bool, error) {
	s, err := m.GetSession(ctx, sessionID)
	return s != nil, err
}

func (m *MemoryStore) AddDocuments(ctx context.Context, sessionID, collectionKey, collectionID string, results []SearchResult, searchQuery string) (*AddResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	s := m.load(sessionID)
	if s == nil {
		s = newSessionContext(sessionID, now)
	}
	res := s.addDocuments(collectionKey, collectionID, results, searchQuery, m.cfg, now)
	m.save(s, now)
	return res, nil
}

func (m *MemoryStore) GetCollectionContext(ctx context.Context, sessionID, collectionKey string) (*CollectionContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	if s == nil {
		return nil, nil
	}
	m.save(s, time.Now())
	col := s.collection(collectionKey)
	if col == nil {
		return nil, nil
	}
	return col.cloneCollection(), nil
}

func (m *MemoryStore) GetAllDocuments(ctx context.Context, sessionID string) ([]DocumentContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	if s == nil {
		return nil, nil
	}
	m.save(s, time.Now())
	return s.allDocuments(), nil
}

func (m *MemoryStore) GetFormattedContext(ctx context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	if s == nil {
		return "", nil
	}
	m.save(s, time.Now())
	return formatContext(s), nil
}

func (m *MemoryStore) ClearCollectionContext(ctx context.Context, sessionID, collectionKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	if s == nil {
		return nil
	}
	s.clearCollection(collectionKey)
	m.save(s, time.Now())
	return nil
}

func (m *MemoryStore) ClearSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	if s == nil {
		return nil
	}
	s.clearAll()
	m.save(s, time.Now())
	return nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Delete(sessionID)
	return nil
}

func (m *MemoryStore) TouchSession(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	if s == nil {
		return nil
	}
	m.save(s, time.Now())
	return nil
}

func (m *MemoryStore) GetSessionStats(ctx context.Context, sessionID string) (*SessionStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(sessionID)
	if s == nil {
		return nil, nil
	}
	now := time.Now()
	m.save(s, now)
	return s.stats(now), nil
}

// Cleanup evicts sessions past their TTL and returns the count removed.
func (m *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// ItemCount includes entries that have expired but not yet been
	// cleaned up, so the difference is the eviction count.
	before := m.cache.ItemCount()
	m.cache.DeleteExpired()
	return before - m.cache.ItemCount(), nil
}

// Stats aggregates over all resident sessions. This view exists only on
// the in-memory backend, the one place global state is enumerable.
func (m *MemoryStore) Stats() StoreStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := StoreStats{}
	for _, item := range m.cache.Items() {
		s, ok := item.Object.(*SessionContext)
		if !ok {
			continue
		}
		out.Sessions++
		out.Documents += s.documentCount()
		out.TotalTokens += s.TotalTokensEstimate
	}
	return out
}

// Close stops the sweeper and releases all resident sessions.
func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Flush()
	return nil
}
