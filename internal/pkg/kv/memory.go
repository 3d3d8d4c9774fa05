package kv

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryBackend keeps entries in process memory. Entries never expire, so it
// behaves like browser local storage for the lifetime of the process.
type MemoryBackend struct {
	cache *cache.Cache
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{cache: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (b *MemoryBackend) ForDevice(deviceID uuid.UUID) Store {
	return &memoryStore{cache: b.cache, prefix: "device/" + deviceID.String() + "/"}
}

func (b *MemoryBackend) Ping(context.Context) error { return nil }

func (b *MemoryBackend) Close() error {
	b.cache.Flush()
	return nil
}

type memoryStore struct {
	cache  *cache.Cache
	prefix string
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, found := s.cache.Get(s.prefix + key)
	if !found {
		return "", ErrNotFound
	}
	return v.(string), nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.cache.Set(s.prefix+key, value, cache.NoExpiration)
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.cache.Delete(s.prefix + key)
	return nil
}
