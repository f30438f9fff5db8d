package session_object

import (
	"fmt"
	"math"
	"testing"
	"time"

	"architect-assistant/models"
	"architect-assistant/session/session_models"
)

func chunk(id, text string) session_models.DocChunk {
	return session_models.DocChunk{DocID: id, Text: text, Source: "test.txt"}
}

func TestAppendTurnPreservesOrder(t *testing.T) {
	s := NewSession("s1", time.Hour)
	for i := 0; i < 5; i++ {
		s.AppendTurn(models.Turn{Role: models.RoleUser, Content: fmt.Sprintf("msg-%d", i)})
	}
	turns := s.Turns()
	if len(turns) != 5 {
		t.Fatalf("expected 5 turns, got %d", len(turns))
	}
	for i, turn := range turns {
		if turn.Content != fmt.Sprintf("msg-%d", i) {
			t.Fatalf("turn %d out of order: %q", i, turn.Content)
		}
	}
}

func TestReplaceIndexSwapsWholesale(t *testing.T) {
	s := NewSession("s1", time.Hour)
	if s.HasIndex() {
		t.Fatal("fresh session should have no index")
	}

	err := s.ReplaceIndex(
		[]session_models.DocChunk{chunk("a", "first"), chunk("b", "second"), chunk("c", "third")},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
	)
	if err != nil {
		t.Fatalf("ReplaceIndex: %v", err)
	}
	if !s.HasIndex() || s.ChunkCount() != 3 {
		t.Fatalf("expected 3 indexed chunks, got %d", s.ChunkCount())
	}

	// a second upload replaces everything from the first
	err = s.ReplaceIndex(
		[]session_models.DocChunk{chunk("x", "only")},
		[][]float32{{1, 0}},
	)
	if err != nil {
		t.Fatalf("ReplaceIndex: %v", err)
	}
	if s.ChunkCount() != 1 {
		t.Fatalf("expected 1 chunk after replace, got %d", s.ChunkCount())
	}
	hits := s.VectorSearch([]float32{1, 0}, 10)
	if len(hits) != 1 || hits[0].DocID != "x" {
		t.Fatalf("old chunks survived the replace: %+v", hits)
	}
}

func TestVectorSearchRanksByCosine(t *testing.T) {
	s := NewSession("s1", time.Hour)
	err := s.ReplaceIndex(
		[]session_models.DocChunk{chunk("a", "close"), chunk("b", "far"), chunk("c", "middle")},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
	)
	if err != nil {
		t.Fatalf("ReplaceIndex: %v", err)
	}

	hits := s.VectorSearch([]float32{1, 0}, 2)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].DocID != "a" || hits[1].DocID != "c" {
		t.Fatalf("unexpected ranking: %+v", hits)
	}
	if hits[0].Rank != 1 || hits[1].Rank != 2 {
		t.Fatalf("ranks not assigned: %+v", hits)
	}
}

func TestVectorSearchFewerThanK(t *testing.T) {
	s := NewSession("s1", time.Hour)
	_ = s.ReplaceIndex([]session_models.DocChunk{chunk("a", "solo")}, [][]float32{{1, 0}})
	hits := s.VectorSearch([]float32{1, 0}, 3)
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
}

func TestBm25SearchFindsTerm(t *testing.T) {
	s := NewSession("s1", time.Hour)
	err := s.ReplaceIndex(
		[]session_models.DocChunk{
			chunk("a", "the payment service uses kafka for event streaming"),
			chunk("b", "the user service stores profiles in postgres"),
		},
		[][]float32{{1, 0}, {0, 1}},
	)
	if err != nil {
		t.Fatalf("ReplaceIndex: %v", err)
	}

	hits, err := s.Bm25Search("kafka", 3)
	if err != nil {
		t.Fatalf("Bm25Search: %v", err)
	}
	if len(hits) == 0 || hits[0].DocID != "a" {
		t.Fatalf("expected chunk a first, got %+v", hits)
	}
}

func TestBm25SearchConcurrentWithReplace(t *testing.T) {
	s := NewSession("s1", time.Hour)
	chunks := []session_models.DocChunk{
		chunk("a", "event driven systems decouple producers from consumers"),
		chunk("b", "the ledger service records every transfer"),
	}
	vectors := [][]float32{{1, 0}, {0, 1}}
	if err := s.ReplaceIndex(chunks, vectors); err != nil {
		t.Fatalf("ReplaceIndex: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			if err := s.ReplaceIndex(chunks, vectors); err != nil {
				t.Errorf("ReplaceIndex: %v", err)
				return
			}
		}
	}()

	// a replace must never close the index out from under a search
	for i := 0; i < 50; i++ {
		if _, err := s.Bm25Search("ledger", 3); err != nil {
			t.Fatalf("Bm25Search during replace: %v", err)
		}
	}
	<-done
}

func TestFuseRRFMergesAndDedupes(t *testing.T) {
	a := []session_models.SearchHit{
		{DocID: "x", Text: "x", Rank: 1},
		{DocID: "y", Text: "y", Rank: 2},
	}
	b := []session_models.SearchHit{
		{DocID: "y", Text: "y", Rank: 1},
		{DocID: "z", Text: "z", Rank: 2},
	}

	fused := FuseRRF(a, b, 10)
	if len(fused) != 3 {
		t.Fatalf("expected 3 fused hits, got %d", len(fused))
	}
	// y appears in both lists, so it outranks everything
	if fused[0].DocID != "y" {
		t.Fatalf("expected y first, got %+v", fused)
	}
	for i, h := range fused {
		if h.Rank != i+1 {
			t.Fatalf("fused ranks not reassigned: %+v", fused)
		}
	}

	if got := FuseRRF(a, b, 1); len(got) != 1 {
		t.Fatalf("expected k to cap output, got %d", len(got))
	}
}

func TestCosine(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("identical vectors: got %f", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Fatalf("orthogonal vectors: got %f", got)
	}
	if got := Cosine(nil, []float32{1}); got != 0 {
		t.Fatalf("empty vector: got %f", got)
	}
}

func TestExpire(t *testing.T) {
	s := NewSession("s1", -time.Minute)
	if !s.Expired() {
		t.Fatal("expected session with past deadline to be expired")
	}
	s.Expire(time.Hour)
	if s.Expired() {
		t.Fatal("expected refreshed session to be live")
	}
}
