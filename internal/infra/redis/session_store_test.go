package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"lms-assessment-service/internal/app"
	"lms-assessment-service/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)

	store.Save(app.NewSession("s1", domain.Assessment{ID: "a1"}, "learner-1"))
	if !mr.Exists("assessment:session:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if got := mr.HGet("assessment:session:s1", "learner_id"); got != "learner-1" {
		t.Fatalf("expected learner id recorded, got %q", got)
	}
	if ttl := mr.TTL("assessment:session:s1"); ttl != time.Minute {
		t.Fatalf("expected ttl of a minute, got %v", ttl)
	}
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session in local map")
	}

	store.Delete("s1")
	if mr.Exists("assessment:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
}

func TestSessionStoreExpiresWithRedisKey(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	store.Save(app.NewSession("s1", domain.Assessment{ID: "a1"}, "learner-1"))

	mr.FastForward(45 * time.Second)
	if _, ok := store.Get("s1"); !ok {
		t.Fatalf("expected session still live before the ttl")
	}
	if ttl := mr.TTL("assessment:session:s1"); ttl != time.Minute {
		t.Fatalf("expected activity to refresh the ttl, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if mr.Exists("assessment:session:s1") {
		t.Fatalf("expected redis key to expire")
	}
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected expired session not to be served")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired session dropped locally, %d left", store.Len())
	}
}

func TestSessionStoreSweepDropsAbandonedSessions(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	for _, id := range []string{"s1", "s2", "s3"} {
		store.Save(app.NewSession(id, domain.Assessment{ID: "a1"}, "learner-1"))
	}
	mr.FastForward(2 * time.Minute)
	store.Save(app.NewSession("s4", domain.Assessment{ID: "a1"}, "learner-2"))

	if removed := store.Sweep(context.Background()); removed != 3 {
		t.Fatalf("expected 3 sessions swept, got %d", removed)
	}
	if _, ok := store.Get("s4"); !ok {
		t.Fatalf("expected the fresh session to survive")
	}
}
