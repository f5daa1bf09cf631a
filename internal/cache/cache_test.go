package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"kboard/internal/service"
	"kboard/internal/testutil"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func seededStore() *testutil.FakeStore {
	store := testutil.NewFakeStore()
	store.AddColumn("todo", "To Do")
	store.AddTask("todo", "t1", "Write code")
	return store
}

func TestFetchBoardMissThenHit(t *testing.T) {
	mr, client := newRedis(t)
	base := seededStore()
	c := NewStore(base, client, time.Minute, "test")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		snap, err := c.FetchBoard(ctx)
		if err != nil {
			t.Fatalf("FetchBoard: %v", err)
		}
		if len(snap.Tasks) != 1 || snap.Tasks[0].Title != "Write code" {
			t.Fatalf("unexpected snapshot %+v", snap)
		}
	}
	if got := base.Calls("FetchBoard"); got != 1 {
		t.Fatalf("expected 1 backend fetch, got %d", got)
	}
	if ttl := mr.TTL(c.Key()); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected TTL: %v", ttl)
	}
}

func TestDefaultTTL(t *testing.T) {
	mr, client := newRedis(t)
	c := NewStore(seededStore(), client, 0, "test")
	if _, err := c.FetchBoard(context.Background()); err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}
	if ttl := mr.TTL(c.Key()); ttl != DefaultTTL {
		t.Fatalf("TTL = %v, want %v", ttl, DefaultTTL)
	}
}

func TestMutationEvicts(t *testing.T) {
	mr, client := newRedis(t)
	base := seededStore()
	c := NewStore(base, client, time.Minute, "test")
	ctx := context.Background()

	if _, err := c.FetchBoard(ctx); err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}
	if !mr.Exists(c.Key()) {
		t.Fatal("snapshot not cached")
	}

	if _, err := c.CreateTask(ctx, "todo", service.TaskFields{Title: "Review", Priority: service.PriorityLow}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if mr.Exists(c.Key()) {
		t.Fatal("snapshot should be evicted after a mutation")
	}

	snap, err := c.FetchBoard(ctx)
	if err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}
	if len(snap.Tasks) != 2 {
		t.Fatalf("expected fresh snapshot with 2 tasks, got %d", len(snap.Tasks))
	}
	if got := base.Calls("FetchBoard"); got != 2 {
		t.Fatalf("expected 2 backend fetches, got %d", got)
	}
}

func TestFailedMutationEvicts(t *testing.T) {
	mr, client := newRedis(t)
	base := seededStore()
	base.MoveTaskErr = service.ErrTimeout
	c := NewStore(base, client, time.Minute, "test")
	ctx := context.Background()

	if _, err := c.FetchBoard(ctx); err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}
	err := c.MoveTask(ctx, service.Move{TaskID: "t1", SourceColumnID: "todo", DestinationColumnID: "todo", DestinationIndex: 0})
	if !errors.Is(err, service.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if mr.Exists(c.Key()) {
		t.Fatal("snapshot should be evicted after a failed mutation")
	}
}

func TestFetchBoardFreshBypassesCache(t *testing.T) {
	_, client := newRedis(t)
	base := seededStore()
	c := NewStore(base, client, time.Minute, "test")
	ctx := context.Background()

	if _, err := c.FetchBoard(ctx); err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}
	base.AddTask("todo", "t2", "Out of band")

	cached, err := c.FetchBoard(ctx)
	if err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}
	if len(cached.Tasks) != 1 {
		t.Fatalf("expected stale cached snapshot, got %d tasks", len(cached.Tasks))
	}

	fresh, err := service.FetchFresh(ctx, c)
	if err != nil {
		t.Fatalf("FetchFresh: %v", err)
	}
	if len(fresh.Tasks) != 2 {
		t.Fatalf("expected fresh snapshot with 2 tasks, got %d", len(fresh.Tasks))
	}

	again, err := c.FetchBoard(ctx)
	if err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}
	if len(again.Tasks) != 2 {
		t.Fatalf("fresh fetch should refresh the cache, got %d tasks", len(again.Tasks))
	}
}

func TestRedisDownFallsBack(t *testing.T) {
	mr, client := newRedis(t)
	base := seededStore()
	c := NewStore(base, client, time.Minute, "test")
	mr.Close()

	for i := 0; i < 2; i++ {
		if _, err := c.FetchBoard(context.Background()); err != nil {
			t.Fatalf("FetchBoard with redis down: %v", err)
		}
	}
	if got := base.Calls("FetchBoard"); got != 2 {
		t.Fatalf("expected every fetch to reach the backend, got %d", got)
	}
}

func TestCorruptEntryIsDropped(t *testing.T) {
	mr, client := newRedis(t)
	base := seededStore()
	c := NewStore(base, client, time.Minute, "test")

	if err := mr.Set(c.Key(), "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}
	if _, err := c.FetchBoard(context.Background()); err != nil {
		t.Fatalf("FetchBoard: %v", err)
	}
	if got := base.Calls("FetchBoard"); got != 1 {
		t.Fatalf("expected backend fetch after corrupt entry, got %d", got)
	}
}

func TestNilClientPassesThrough(t *testing.T) {
	base := seededStore()
	c := NewStore(base, nil, time.Minute, "test")
	for i := 0; i < 2; i++ {
		if _, err := c.FetchBoard(context.Background()); err != nil {
			t.Fatalf("FetchBoard: %v", err)
		}
	}
	if got := base.Calls("FetchBoard"); got != 2 {
		t.Fatalf("expected 2 backend fetches, got %d", got)
	}
}
