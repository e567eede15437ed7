package kvstore_adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcachedStore хранит состояние в memcached. Записи без срока жизни,
// но memcached может вытеснить их при нехватке памяти: это запасной снимок, а не источник истины.
type MemcachedStore struct {
	client *memcache.Client
	prefix string
}

func NewMemcachedStore(client *memcache.Client, prefix string) (*MemcachedStore, error) {
	if client == nil {
		return nil, fmt.Errorf("memcache client cannot be nil")
	}
	return &MemcachedStore{client: client, prefix: prefix}, nil
}

func (s *MemcachedStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	item, err := s.client.Get(s.prefix + key)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("memcached get %q: %w", key, err)
	}
	return item.Value, true, nil
}

func (s *MemcachedStore) Set(_ context.Context, key string, value []byte) error {
	if err := s.client.Set(&memcache.Item{Key: s.prefix + key, Value: value}); err != nil {
		return fmt.Errorf("memcached set %q: %w", key, err)
	}
	return nil
}

func (s *MemcachedStore) Delete(_ context.Context, key string) error {
	err := s.client.Delete(s.prefix + key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return fmt.Errorf("memcached delete %q: %w", key, err)
	}
	return nil
}
