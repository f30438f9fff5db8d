package inmemory

import (
	"fmt"
	"testing"
	"time"
)

func TestEnsureSessionGeneratesID(t *testing.T) {
	store := NewInMemorySessionStore(10)
	sess, err := store.EnsureSession("", time.Hour)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if sess.ID() == "" {
		t.Fatal("expected a generated session id")
	}
}

func TestEnsureSessionReusesExisting(t *testing.T) {
	store := NewInMemorySessionStore(10)
	a, err := store.EnsureSession("abc", time.Hour)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	b, err := store.EnsureSession("abc", time.Hour)
	if err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if a != b {
		t.Fatal("expected the same session for the same id")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}
}

func TestGetSessionMissing(t *testing.T) {
	store := NewInMemorySessionStore(10)
	sess, err := store.GetSession("nope")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess != nil {
		t.Fatal("expected nil session for unknown id")
	}
}

func TestExpiredSessionsAreDropped(t *testing.T) {
	store := NewInMemorySessionStore(10)
	if _, err := store.EnsureSession("old", -time.Minute); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	sess, err := store.GetSession("old")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess != nil {
		t.Fatal("expected expired session to be invisible")
	}

	// the next ensure sweeps it out of the registry
	if _, err := store.EnsureSession("fresh", time.Hour); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected expired session evicted, have %d", store.Len())
	}
}

func TestCapEvictsSoonestExpiring(t *testing.T) {
	store := NewInMemorySessionStore(2)
	if _, err := store.EnsureSession("soon", time.Minute); err != nil {
		t.Fatal(err)
	}
	if _, err := store.EnsureSession("later", time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, err := store.EnsureSession("newest", time.Hour); err != nil {
		t.Fatal(err)
	}

	if store.Len() != 2 {
		t.Fatalf("expected registry capped at 2, have %d", store.Len())
	}
	if sess, _ := store.GetSession("soon"); sess != nil {
		t.Fatal("expected soonest-expiring session to be evicted")
	}
	for _, id := range []string{"later", "newest"} {
		if sess, _ := store.GetSession(id); sess == nil {
			t.Fatalf("expected session %q to survive", id)
		}
	}
}

func TestCapUnderLoad(t *testing.T) {
	store := NewInMemorySessionStore(5)
	for i := 0; i < 50; i++ {
		if _, err := store.EnsureSession(fmt.Sprintf("s-%d", i), time.Hour); err != nil {
			t.Fatal(err)
		}
	}
	if store.Len() > 5 {
		t.Fatalf("registry exceeded cap: %d", store.Len())
	}
}
