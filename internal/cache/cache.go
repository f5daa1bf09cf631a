// Package cache provides a Redis-backed snapshot cache for a Board Store.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"kboard/internal/service"
)

// DefaultTTL is used when the configured TTL is zero.
const DefaultTTL = 30 * time.Second

// Store wraps a service.Store and serves FetchBoard from Redis when it can.
// Redis errors never fail a call; the wrapped store is used instead.
type Store struct {
	base  service.Store
	redis *redis.Client
	ttl   time.Duration
	key   string
}

var _ service.Store = (*Store)(nil)
var _ service.Refresher = (*Store)(nil)

// NewStore creates a caching wrapper. namespace separates boards that share
// a Redis instance, typically the store's base URL.
func NewStore(base service.Store, client *redis.Client, ttl time.Duration, namespace string) *Store {
	if base == nil {
		panic("cache.NewStore: base store is nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		base:  base,
		redis: client,
		ttl:   ttl,
		key:   "kboard:board:" + namespace,
	}
}

// Key returns the Redis key holding the snapshot.
func (s *Store) Key() string {
	return s.key
}

// FetchBoard returns the cached snapshot, fetching and caching it on a miss.
func (s *Store) FetchBoard(ctx context.Context) (service.Snapshot, error) {
	if snap, ok := s.load(ctx); ok {
		return snap, nil
	}
	return s.FetchBoardFresh(ctx)
}

// FetchBoardFresh bypasses the cache and refreshes it with the result.
func (s *Store) FetchBoardFresh(ctx context.Context) (service.Snapshot, error) {
	snap, err := service.FetchFresh(ctx, s.base)
	if err != nil {
		s.evict(ctx)
		return service.Snapshot{}, err
	}
	s.store(ctx, snap)
	return snap, nil
}

func (s *Store) InitializeBoard(ctx context.Context) error {
	defer s.evict(ctx)
	return s.base.InitializeBoard(ctx)
}

func (s *Store) CreateTask(ctx context.Context, columnID string, fields service.TaskFields) (service.Task, error) {
	defer s.evict(ctx)
	return s.base.CreateTask(ctx, columnID, fields)
}

func (s *Store) UpdateTask(ctx context.Context, taskID string, fields service.TaskFields) (service.Task, error) {
	defer s.evict(ctx)
	return s.base.UpdateTask(ctx, taskID, fields)
}

func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	defer s.evict(ctx)
	return s.base.DeleteTask(ctx, taskID)
}

func (s *Store) CreateColumn(ctx context.Context, title string) (service.Column, error) {
	defer s.evict(ctx)
	return s.base.CreateColumn(ctx, title)
}

func (s *Store) UpdateColumn(ctx context.Context, columnID, title string) (service.Column, error) {
	defer s.evict(ctx)
	return s.base.UpdateColumn(ctx, columnID, title)
}

func (s *Store) DeleteColumn(ctx context.Context, columnID string) error {
	defer s.evict(ctx)
	return s.base.DeleteColumn(ctx, columnID)
}

func (s *Store) MoveTask(ctx context.Context, move service.Move) error {
	defer s.evict(ctx)
	return s.base.MoveTask(ctx, move)
}

func (s *Store) load(ctx context.Context) (service.Snapshot, bool) {
	if s.redis == nil {
		return service.Snapshot{}, false
	}
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			_ = s.redis.Del(ctx, s.key).Err()
		}
		return service.Snapshot{}, false
	}
	var snap service.Snapshot
	if err := sonic.ConfigStd.Unmarshal(data, &snap); err != nil {
		_ = s.redis.Del(ctx, s.key).Err()
		return service.Snapshot{}, false
	}
	return snap, true
}

func (s *Store) store(ctx context.Context, snap service.Snapshot) {
	if s.redis == nil {
		return
	}
	data, err := sonic.ConfigStd.Marshal(snap)
	if err != nil {
		return
	}
	_ = s.redis.Set(ctx, s.key, data, s.ttl).Err()
}

// evict runs after every mutation, failed ones included, since a failed
// call may still have reached the store.
func (s *Store) evict(ctx context.Context) {
	if s.redis == nil {
		return
	}
	_ = s.redis.Del(ctx, s.key).Err()
}
