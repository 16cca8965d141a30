package redisstore_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wildtrail/wildtrail/internal/infra/redisstore"
)

// setupTestStore connects to WILDTRAIL_TEST_REDIS (default localhost:6379,
// DB 15) and skips when Redis is not reachable.
func setupTestStore(t *testing.T) *redisstore.Store {
	t.Helper()
	addr := os.Getenv("WILDTRAIL_TEST_REDIS")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available for testing: %v", err)
	}
	client.FlushDB(ctx)

	s := redisstore.NewWithClient(client, "wildtrail-test")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKey(t *testing.T) {
	s := redisstore.NewWithClient(redis.NewClient(&redis.Options{}), "")
	defer s.Close()
	if got := s.Key("alice"); got != "wildtrail:snapshot:alice" {
		t.Errorf("expected wildtrail:snapshot:alice, got %s", got)
	}
}

func TestStore_LoadMissing(t *testing.T) {
	s := setupTestStore(t)
	blob, err := s.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if blob != nil {
		t.Errorf("expected nil, got %q", blob)
	}
}

func TestStore_SaveLoadUsers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, u := range []string{"bob", "alice"} {
		if err := s.Save(ctx, u, []byte(`{"version":1}`)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}
	blob, err := s.Load(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != `{"version":1}` {
		t.Errorf("unexpected blob %q", blob)
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0] != "alice" || users[1] != "bob" {
		t.Errorf("expected [alice bob], got %v", users)
	}
}
