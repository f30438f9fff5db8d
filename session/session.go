package session

import (
	"time"

	"architect-assistant/models"
	"architect-assistant/session/session_models"
)

// Store manages per-session state keyed by the client-supplied id.
// Implementations must be safe for concurrent use.
type Store interface {
	// EnsureSession returns the session for id, creating it on first
	// use. A blank id yields a freshly generated one.
	EnsureSession(id string, ttl time.Duration) (Session, error)
	// GetSession returns nil, nil when the session does not exist.
	GetSession(id string) (Session, error)
}

// Session holds one conversation's history and at most one document
// index. History appends are serialized; ReplaceIndex swaps the index
// atomically so queries never observe a partially built one.
type Session interface {
	ID() string
	Expire(ttl time.Duration)

	AppendTurn(turn models.Turn)
	Turns() []models.Turn

	ReplaceIndex(chunks []session_models.DocChunk, vectors [][]float32) error
	HasIndex() bool
	ChunkCount() int

	VectorSearch(q []float32, k int) []session_models.SearchHit
	Bm25Search(q string, k int) ([]session_models.SearchHit, error)
	FuseRRF(a, b []session_models.SearchHit, k int) []session_models.SearchHit
}

// StoreType selects a Store implementation at wiring time.
type StoreType string

const (
	InMemoryStore StoreType = "inmemory"
	RedisStore    StoreType = "redis"
)
