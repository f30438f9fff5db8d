package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"architect-assistant/models"
	"architect-assistant/session"
	"architect-assistant/session/session_models"
	"architect-assistant/session/session_object"
)

// Store keeps session state in redis so it survives process restarts.
// History turns live in a list, the document index in a single JSON
// value replaced wholesale (the SET is the atomic swap). The BM25 side
// index is rebuilt in-process on demand from the stored chunks.
type Store struct {
	client *redis.Client
}

func NewRedisSessionStore(addr, password string, db int) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: rdb}
}

var _ session.Store = (*Store)(nil)

func metaKey(id string) string  { return fmt.Sprintf("session:%s:meta", id) }
func turnsKey(id string) string { return fmt.Sprintf("session:%s:turns", id) }
func indexKey(id string) string { return fmt.Sprintf("session:%s:index", id) }

func (store *Store) EnsureSession(id string, ttl time.Duration) (session.Session, error) {
	ctx := context.Background()
	if id != "" {
		exists, err := store.client.Exists(ctx, metaKey(id)).Result()
		if err == nil && exists == 1 {
			for _, k := range []string{metaKey(id), turnsKey(id), indexKey(id)} {
				_ = store.client.Expire(ctx, k, ttl).Err()
			}
			return &Session{client: store.client, id: id, ttl: ttl}, nil
		}
	} else {
		id = uuid.NewString()
	}

	if err := store.client.Set(ctx, metaKey(id), "{}", ttl).Err(); err != nil {
		return nil, err
	}
	return &Session{client: store.client, id: id, ttl: ttl}, nil
}

func (store *Store) GetSession(id string) (session.Session, error) {
	ctx := context.Background()
	exists, err := store.client.Exists(ctx, metaKey(id)).Result()
	if err != nil || exists == 0 {
		return nil, nil
	}
	return &Session{client: store.client, id: id}, nil
}

// Session is a view over one session's redis keys.
type Session struct {
	client *redis.Client
	id     string
	ttl    time.Duration
}

var _ session.Session = (*Session)(nil)

// storedIndex is the wholesale-replaced index value.
type storedIndex struct {
	Chunks  []session_models.DocChunk `json:"chunks"`
	Vectors [][]float32               `json:"vectors"`
}

func (s *Session) ID() string { return s.id }

func (s *Session) Expire(ttl time.Duration) {
	ctx := context.Background()
	s.ttl = ttl
	for _, k := range []string{metaKey(s.id), turnsKey(s.id), indexKey(s.id)} {
		_ = s.client.Expire(ctx, k, ttl).Err()
	}
}

func (s *Session) AppendTurn(turn models.Turn) {
	ctx := context.Background()
	data, err := json.Marshal(turn)
	if err != nil {
		return
	}
	// RPUSH preserves receipt order without an extra lock.
	_ = s.client.RPush(ctx, turnsKey(s.id), data).Err()
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, turnsKey(s.id), s.ttl).Err()
	}
}

func (s *Session) Turns() []models.Turn {
	ctx := context.Background()
	raw, err := s.client.LRange(ctx, turnsKey(s.id), 0, -1).Result()
	if err != nil {
		return nil
	}
	out := make([]models.Turn, 0, len(raw))
	for _, r := range raw {
		var t models.Turn
		if json.Unmarshal([]byte(r), &t) == nil {
			out = append(out, t)
		}
	}
	return out
}

func (s *Session) ReplaceIndex(chunks []session_models.DocChunk, vectors [][]float32) error {
	ctx := context.Background()
	data, err := json.Marshal(storedIndex{Chunks: chunks, Vectors: vectors})
	if err != nil {
		return err
	}
	ttl := s.ttl
	if ttl <= 0 {
		ttl = redis.KeepTTL
	}
	return s.client.Set(ctx, indexKey(s.id), data, ttl).Err()
}

func (s *Session) loadIndex() storedIndex {
	ctx := context.Background()
	val, err := s.client.Get(ctx, indexKey(s.id)).Result()
	if err != nil {
		return storedIndex{}
	}
	var idx storedIndex
	_ = json.Unmarshal([]byte(val), &idx)
	return idx
}

func (s *Session) HasIndex() bool {
	return len(s.loadIndex().Chunks) > 0
}

func (s *Session) ChunkCount() int {
	return len(s.loadIndex().Chunks)
}

func (s *Session) VectorSearch(q []float32, k int) []session_models.SearchHit {
	idx := s.loadIndex()
	type scored struct {
		chunk session_models.DocChunk
		score float64
	}
	scoreds := make([]scored, 0, len(idx.Chunks))
	for i, c := range idx.Chunks {
		if i >= len(idx.Vectors) {
			break
		}
		scoreds = append(scoreds, scored{chunk: c, score: session_object.Cosine(q, idx.Vectors[i])})
	}
	sort.SliceStable(scoreds, func(i, j int) bool { return scoreds[i].score > scoreds[j].score })

	var out []session_models.SearchHit
	for i, sc := range scoreds {
		if i >= k {
			break
		}
		out = append(out, session_models.SearchHit{
			DocID: sc.chunk.DocID, Text: sc.chunk.Text, Score: sc.score, Rank: i + 1,
		})
	}
	return out
}

// Bm25Search rebuilds an in-memory index from the stored chunks. Cheap
// for the single-document corpora sessions hold.
func (s *Session) Bm25Search(q string, k int) ([]session_models.SearchHit, error) {
	idx := s.loadIndex()
	if len(idx.Chunks) == 0 {
		return nil, nil
	}
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}
	defer index.Close()
	byID := make(map[string]session_models.DocChunk, len(idx.Chunks))
	for _, c := range idx.Chunks {
		if err := index.Index(c.DocID, c); err != nil {
			return nil, err
		}
		byID[c.DocID] = c
	}

	query := bleve.NewQueryStringQuery(q)
	searchReq := bleve.NewSearchRequestOptions(query, k*3, 0, false)
	res, err := index.Search(searchReq)
	if err != nil {
		return nil, err
	}
	var out []session_models.SearchHit
	for i, hit := range res.Hits {
		doc := byID[hit.ID]
		out = append(out, session_models.SearchHit{
			DocID: hit.ID, Text: doc.Text, Score: hit.Score, Rank: i + 1,
		})
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

func (s *Session) FuseRRF(a, b []session_models.SearchHit, k int) []session_models.SearchHit {
	return session_object.FuseRRF(a, b, k)
}
