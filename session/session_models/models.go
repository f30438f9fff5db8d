package session_models

import "time"

// DocChunk is one bounded text segment of an uploaded document.
type DocChunk struct {
	DocID      string    `json:"doc_id"`
	Source     string    `json:"source"` // originating filename
	Text       string    `json:"text"`
	ChunkIndex int       `json:"chunk_index"`
	SessionID  string    `json:"session_id"`
	IngestedAt time.Time `json:"ingested_at"`
}

// SearchHit is one retrieval result, ranked by descending score.
type SearchHit struct {
	DocID string  `json:"doc_id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}
