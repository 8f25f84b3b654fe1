package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/msomdec/recipe-community/internal/domain"
)

// Memcache implements domain.Cache on a memcached cluster.
type Memcache struct {
	client *memcache.Client
	prefix string
}

// NewMemcache connects to the given servers. Every key is prefixed so several
// deployments can share one cluster.
func NewMemcache(prefix string, servers ...string) *Memcache {
	client := memcache.New(servers...)
	client.Timeout = 250 * time.Millisecond
	return &Memcache{client: client, prefix: prefix}
}

func (m *Memcache) Get(_ context.Context, key string) ([]byte, error) {
	item, err := m.client.Get(m.prefix + key)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("memcache get: %w", err)
	}
	return item.Value, nil
}

func (m *Memcache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := m.client.Set(&memcache.Item{
		Key:        m.prefix + key,
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
	if err != nil {
		return fmt.Errorf("memcache set: %w", err)
	}
	return nil
}

func (m *Memcache) Delete(_ context.Context, key string) error {
	if err := m.client.Delete(m.prefix + key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return fmt.Errorf("memcache delete: %w", err)
	}
	return nil
}

// Ping checks that every server is reachable.
func (m *Memcache) Ping() error {
	return m.client.Ping()
}
