// Package redisstore keeps progression snapshots in Redis so several
// daemons can share one set of users.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wildtrail/wildtrail/internal/domain"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "wildtrail"

// Store is a Redis-backed snapshot store. Each user is one string key.
type Store struct {
	client *redis.Client
	prefix string
}

// Options configures New.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	s := NewWithClient(client, opts.Prefix)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Key returns the Redis key holding userID's snapshot.
func (s *Store) Key(userID string) string {
	return fmt.Sprintf("%s:snapshot:%s", s.prefix, userID)
}

// Load returns the snapshot blob for userID, or nil when there is none.
func (s *Store) Load(ctx context.Context, userID string) ([]byte, error) {
	blob, err := s.client.Get(ctx, s.Key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return blob, nil
}

// Save replaces the snapshot blob for userID. Snapshots never expire.
func (s *Store) Save(ctx context.Context, userID string, blob []byte) error {
	if err := s.client.Set(ctx, s.Key(userID), blob, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Users lists every user with a saved snapshot, alphabetically.
func (s *Store) Users(ctx context.Context) ([]string, error) {
	keyPrefix := s.Key("")
	var users []string
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		users = append(users, strings.TrimPrefix(iter.Val(), keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	sort.Strings(users)
	return users, nil
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}
