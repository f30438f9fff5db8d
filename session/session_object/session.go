package session_object

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/blevesearch/bleve"

	"architect-assistant/models"
	"architect-assistant/session/session_models"
	"architect-assistant/tools/embedding"
)

// Session keeps history turns and the current document index fully in
// memory. The index (bleve + vectors + meta) is replaced wholesale by
// ReplaceIndex under the session mutex.
type Session struct {
	id        string
	expiresAt time.Time
	turns     []models.Turn
	bleve     bleve.Index
	meta      map[string]session_models.DocChunk
	order     []string // chunk ids in ingest order
	vectors   []embedding.EmbedVec
	mu        sync.RWMutex
}

const rrfK = 60 // reciprocal-rank-fusion constant

func NewSession(id string, ttl time.Duration) *Session {
	return &Session{
		id:        id,
		expiresAt: time.Now().Add(ttl),
		meta:      make(map[string]session_models.DocChunk),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Expire(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresAt = time.Now().Add(ttl)
}

// ExpiresAt is used by the store for eviction ordering.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt())
}

func (s *Session) AppendTurn(turn models.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
}

func (s *Session) Turns() []models.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// ReplaceIndex builds the new index off to the side and swaps it in
// under the lock, so concurrent queries see either the old or the new
// index, never a partial one. The previous index is discarded.
func (s *Session) ReplaceIndex(chunks []session_models.DocChunk, vectors [][]float32) error {
	index, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return err
	}
	meta := make(map[string]session_models.DocChunk, len(chunks))
	order := make([]string, 0, len(chunks))
	vecs := make([]embedding.EmbedVec, 0, len(chunks))
	for i, c := range chunks {
		if err := index.Index(c.DocID, c); err != nil {
			return err
		}
		meta[c.DocID] = c
		order = append(order, c.DocID)
		if i < len(vectors) {
			vecs = append(vecs, embedding.EmbedVec{DocID: c.DocID, Vec: vectors[i]})
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bleve != nil {
		_ = s.bleve.Close()
	}
	s.bleve = index
	s.meta = meta
	s.order = order
	s.vectors = vecs
	return nil
}

func (s *Session) HasIndex() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order) > 0
}

func (s *Session) ChunkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// VectorSearch returns up to k chunks by descending cosine similarity.
// Fewer than k indexed chunks yields all of them; it never fails.
func (s *Session) VectorSearch(q []float32, k int) []session_models.SearchHit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type scored struct {
		id    string
		score float64
	}
	scoreds := make([]scored, 0, len(s.vectors))
	for _, v := range s.vectors {
		scoreds = append(scoreds, scored{id: v.DocID, score: Cosine(q, v.Vec)})
	}
	sort.SliceStable(scoreds, func(i, j int) bool { return scoreds[i].score > scoreds[j].score })

	var out []session_models.SearchHit
	for i, sc := range scoreds {
		if i >= k {
			break
		}
		doc := s.meta[sc.id]
		out = append(out, session_models.SearchHit{
			DocID: sc.id, Text: doc.Text, Score: sc.score, Rank: i + 1,
		})
	}
	return out
}

// Bm25Search holds the read lock for the whole search so ReplaceIndex
// cannot close the index out from under it.
func (s *Session) Bm25Search(q string, k int) ([]session_models.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bleve == nil {
		return nil, nil
	}

	query := bleve.NewQueryStringQuery(q)
	searchReq := bleve.NewSearchRequestOptions(query, k*3, 0, false)
	res, err := s.bleve.Search(searchReq)
	if err != nil {
		return nil, err
	}

	var out []session_models.SearchHit
	for i, hit := range res.Hits {
		doc := s.meta[hit.ID]
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
	return FuseRRF(a, b, k)
}

// FuseRRF merges two ranked lists with reciprocal-rank fusion.
func FuseRRF(a, b []session_models.SearchHit, k int) []session_models.SearchHit {
	type agg struct {
		item  session_models.SearchHit
		score float64
	}
	m := map[string]*agg{}
	add := func(list []session_models.SearchHit) {
		for _, h := range list {
			x, ok := m[h.DocID]
			if !ok {
				m[h.DocID] = &agg{item: h}
				x = m[h.DocID]
			}
			x.score += 1.0 / float64(rrfK+h.Rank)
		}
	}
	add(a)
	add(b)

	items := make([]agg, 0, len(m))
	for _, v := range m {
		items = append(items, *v)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].item.DocID < items[j].item.DocID
	})

	out := make([]session_models.SearchHit, 0, min(k, len(items)))
	for i := 0; i < len(items) && i < k; i++ {
		h := items[i].item
		h.Score = items[i].score
		h.Rank = i + 1
		out = append(out, h)
	}
	return out
}

// Cosine similarity over the shared prefix of two vectors.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ai := float64(a[i])
		bi := float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
