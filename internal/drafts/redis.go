package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps drafts as JSON values, one key per wizard and owner.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore connects using a redis:// URL and pings the server.
// ttl of zero keeps drafts until they are deleted.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (s *RedisStore) Save(ctx context.Context, d Draft) (Draft, error) {
	if !d.Wizard.Valid() {
		return Draft{}, fmt.Errorf("unknown wizard %q", d.Wizard)
	}
	d.UpdatedAt = s.now().UTC()
	if d.Data == nil {
		d.Data = map[string]any{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return Draft{}, err
	}
	if err := s.client.Set(ctx, key(d.Wizard, d.OwnerID), data, s.ttl).Err(); err != nil {
		return Draft{}, fmt.Errorf("could not save draft: %w", err)
	}
	return d, nil
}

func (s *RedisStore) Get(ctx context.Context, wizard Wizard, ownerID string) (Draft, error) {
	raw, err := s.client.Get(ctx, key(wizard, ownerID)).Result()
	if errors.Is(err, redis.Nil) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("could not load draft: %w", err)
	}
	var d Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

func (s *RedisStore) Delete(ctx context.Context, wizard Wizard, ownerID string) error {
	return s.client.Del(ctx, key(wizard, ownerID)).Err()
}

// Count scans the draft keyspace; intended for stats pages, not hot paths.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n := 0
	iter := s.client.Scan(ctx, 0, "drafts:*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}

// Ping is used by the health checker.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }
