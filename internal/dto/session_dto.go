package dto

import "time"

type SessionStatsDTO struct {
	Collections int       `json:"collections"`
	Documents   int       `json:"documents"`
	TotalTokens int       `json:"total_tokens"`
	AgeSeconds  int       `json:"age_seconds"`
	CreatedAt   time.Time `json:"created_at"`
}

// SessionStatusResponse answers GET. When no identifier was supplied a
// fresh one is issued with Exists=false.
type SessionStatusResponse struct {
	SessionID string           `json:"session_id"`
	Exists    bool             `json:"exists"`
	Stats     *SessionStatsDTO `json:"stats,omitempty"`
}

type CreateContextSessionResponse struct {
	SessionID string `json:"session_id"`
}

// SessionActionResponse answers DELETE. Success is false when the session
// did not exist; the HTTP status stays 200 either way.
type SessionActionResponse struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	Success   bool   `json:"success"`
}

type StoreStatsResponse struct {
	Backend     string `json:"backend"`
	Sessions    int    `json:"sessions"`
	Documents   int    `json:"documents"`
	TotalTokens int    `json:"total_tokens"`
}
