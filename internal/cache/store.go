package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store is the local session cache: a best-effort key-value mirror used to
// render optimistically before the identity provider answers. Operations
// never surface errors; failures are logged and read back as "absent".
// Callers linearize operations on the same key themselves.
type Store interface {
	Set(ctx context.Context, key string, value string)
	Get(ctx context.Context, key string) (string, bool)
	Remove(ctx context.Context, key string)
	RemoveAll(ctx context.Context, keys []string)
	ListKeys(ctx context.Context) []string
}

// Memory is an in-memory Store, the fallback when no durable backend is
// configured and the workhorse for tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]string)}
}

func (m *Memory) Set(_ context.Context, key string, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok
}

func (m *Memory) Remove(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *Memory) RemoveAll(_ context.Context, keys []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
}

func (m *Memory) ListKeys(_ context.Context) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.entries))
	for key := range m.entries {
		keys = append(keys, key)
	}
	return keys
}

// RedisStore is a durable Store on redis. Keys are namespaced and expire
// after ttl so stale session mirrors age out on their own.
type RedisStore struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
	log       zerolog.Logger
}

func NewRedisStore(client *redis.Client, namespace string, ttl time.Duration, log zerolog.Logger) *RedisStore {
	return &RedisStore{
		client:    client,
		namespace: namespace,
		ttl:       ttl,
		log:       log,
	}
}

func (s *RedisStore) key(key string) string {
	return s.namespace + ":" + key
}

func (s *RedisStore) Set(ctx context.Context, key string, value string) {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return "", false
	}
	return value, true
}

func (s *RedisStore) Remove(ctx context.Context, key string) {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache remove failed")
	}
}

func (s *RedisStore) RemoveAll(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	namespaced := make([]string, len(keys))
	for i, key := range keys {
		namespaced[i] = s.key(key)
	}
	if err := s.client.Del(ctx, namespaced...).Err(); err != nil {
		s.log.Warn().Err(err).Int("keys", len(keys)).Msg("cache bulk remove failed")
	}
}

func (s *RedisStore) ListKeys(ctx context.Context) []string {
	var keys []string
	prefix := s.namespace + ":"
	iter := s.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(prefix):])
	}
	if err := iter.Err(); err != nil {
		s.log.Warn().Err(err).Msg("cache key scan failed")
	}
	return keys
}
