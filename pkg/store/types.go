package store

import (
	"time"
)

// Provenance tags for retrieved content
const (
	SourceFullDocument = "full_document" // complete source text of the file
	SourceChunks       = "chunks"        // partial fragments from chunk search
)

// SearchResult is one hit handed over by the retrieval layer for insertion.
type SearchResult struct {
	FileID   string  `json:"file_id"`
	FileName string  `json:"file_name"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
	Source   string  `json:"source"` // SourceFullDocument | SourceChunks
}

// DocumentContext is one retrieved document held in a session's collection bucket.
type DocumentContext struct {
	FileID         string    `json:"file_id"`
	FileName       string    `json:"file_name"`
	Content        string    `json:"content"`
	Collection     string    `json:"collection"`
	Score          float64   `json:"score"`
	Source         string    `json:"source"`
	TokensEstimate int       `json:"tokens_estimate"`
	AddedAt        time.Time `json:"added_at"`
}

// CollectionContext accumulates the documents of one logical collection
// within a session. Documents keep insertion order and are unique by FileID.
type CollectionContext struct {
	Key          string            `json:"key"`
	CollectionID string            `json:"collection_id"`
	Documents    []DocumentContext `json:"documents"`
	SearchQuery  string            `json:"search_query"` // query of the most recent population
	LoadedAt     time.Time         `json:"loaded_at"`
}

// SessionContext is the root record for one chat session's accumulated
// retrieval context. Collections are kept as an ordered slice (insertion
// order) so that serialization and the formatted projection are
// deterministic regardless of backend.
type SessionContext struct {
	SessionID           string               `json:"session_id"`
	Collections         []*CollectionContext `json:"collections"`
	CreatedAt           time.Time            `json:"created_at"`
	LastAccessedAt      time.Time            `json:"last_accessed_at"`
	TotalTokensEstimate int                  `json:"total_tokens_estimate"`
}

// AddResult reports the outcome of a best-effort batch insert.
type AddResult struct {
	Added        bool `json:"added"` // at least one document admitted
	AddedCount   int  `json:"added_count"`
	SkippedCount int  `json:"skipped_count"`
	TotalTokens  int  `json:"total_tokens"`
}

// SessionStats is the read-only statistics view of one session.
type SessionStats struct {
	SessionID   string    `json:"session_id"`
	Collections int       `json:"collections"`
	Documents   int       `json:"documents"`
	TotalTokens int       `json:"total_tokens"`
	AgeSeconds  int       `json:"age_seconds"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoreStats is the aggregate view over all resident sessions.
// Only the in-memory backend can produce it.
type StoreStats struct {
	Sessions    int `json:"sessions"`
	Documents   int `json:"documents"`
	TotalTokens int `json:"total_tokens"`
}

// CreateOptions controls CreateSession behaviour for an existing identifier.
type CreateOptions struct {
	// Recreate discards an existing session with the same identifier.
	// The default keeps the existing record untouched.
	Recreate bool
}

func newSessionContext(sessionID string, now time.Time) *SessionContext {
	return &SessionContext{
		SessionID:      sessionID,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
}

func (s *SessionContext) collection(key string) *CollectionContext {
	for _, col := range s.Collections {
		if col.Key == key {
			return col
		}
	}
	return nil
}

func (s *SessionContext) documentCount() int {
	total := 0
	for _, col := range s.Collections {
		total += len(col.Documents)
	}
	return total
}

// allDocuments flattens every bucket in collection insertion order,
// then document insertion order within each bucket.
func (s *SessionContext) allDocuments() []DocumentContext {
	docs := make([]DocumentContext, 0, s.documentCount())
	for _, col := range s.Collections {
		docs = append(docs, col.Documents...)
	}
	return docs
}

// addDocuments applies the admission algorithm in input order:
// a full bucket skips the document, a duplicate FileID skips it, and the
// first document that would push the session past the token budget stops
// admission for the rest of the batch. Skipped documents never abort the
// batch; callers inspect the result to learn how much of it landed.
func (s *SessionContext) addDocuments(collectionKey, collectionID string, results []SearchResult, searchQuery string, cfg Config, now time.Time) *AddResult {
	col := s.collection(collectionKey)
	if col == nil {
		col = &CollectionContext{
			Key:          collectionKey,
			CollectionID: collectionID,
			LoadedAt:     now,
		}
		s.Collections = append(s.Collections, col)
	}
	col.CollectionID = collectionID
	col.SearchQuery = searchQuery
	col.LoadedAt = now

	res := &AddResult{}
	budgetExhausted := false
	for _, hit := range results {
		if budgetExhausted || len(col.Documents) >= cfg.MaxDocsPerCollection {
			res.SkippedCount++
			continue
		}
		if col.hasDocument(hit.FileID) {
			res.SkippedCount++
			continue
		}
		tokens := EstimateTokens(hit.Content, cfg.TokenDivisor)
		if s.TotalTokensEstimate+tokens > cfg.MaxTotalTokens {
			// No bin-packing: once the budget line is crossed the rest
			// of the batch is rejected as well, however small.
			budgetExhausted = true
			res.SkippedCount++
			continue
		}
		col.Documents = append(col.Documents, DocumentContext{
			FileID:         hit.FileID,
			FileName:       hit.FileName,
			Content:        hit.Content,
			Collection:     collectionKey,
			Score:          hit.Score,
			Source:         hit.Source,
			TokensEstimate: tokens,
			AddedAt:        now,
		})
		s.TotalTokensEstimate += tokens
		res.AddedCount++
	}
	res.Added = res.AddedCount > 0
	res.TotalTokens = s.TotalTokensEstimate
	return res
}

// clearCollection removes one bucket, decrementing the token total by the
// exact estimates admitted for its documents.
func (s *SessionContext) clearCollection(key string) {
	for i, col := range s.Collections {
		if col.Key != key {
			continue
		}
		for _, doc := range col.Documents {
			s.TotalTokensEstimate -= doc.TokensEstimate
		}
		s.Collections = append(s.Collections[:i], s.Collections[i+1:]...)
		return
	}
}

// clearAll drops every bucket but keeps the session record itself.
func (s *SessionContext) clearAll() {
	s.Collections = nil
	s.TotalTokensEstimate = 0
}

func (s *SessionContext) stats(now time.Time) *SessionStats {
	return &SessionStats{
		SessionID:   s.SessionID,
		Collections: len(s.Collections),
		Documents:   s.documentCount(),
		TotalTokens: s.TotalTokensEstimate,
		AgeSeconds:  int(now.Sub(s.CreatedAt).Seconds()),
		CreatedAt:   s.CreatedAt,
	}
}

// clone deep-copies the record so callers never share mutable state with
// the store.
func (s *SessionContext) clone() *SessionContext {
	out := *s
	out.Collections = make([]*CollectionContext, len(s.Collections))
	for i, col := range s.Collections {
		c := *col
		c.Documents = append([]DocumentContext(nil), col.Documents...)
		out.Collections[i] = &c
	}
	return &out
}

func (c *CollectionContext) hasDocument(fileID string) bool {
	for _, doc := range c.Documents {
		if doc.FileID == fileID {
			return true
		}
	}
	return false
}

// cloneCollection copies one bucket for handing out.
func (c *CollectionContext) cloneCollection() *CollectionContext {
	out := *c
	out.Documents = append([]DocumentContext(nil), c.Documents...)
	return &out
}
