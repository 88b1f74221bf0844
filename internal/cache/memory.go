package cache

import (
	"context"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Memory is an in-process Cache. Entries are invisible to other processes,
// so only use it where nothing else writes trackers.
type Memory struct {
	items *ttlcache.Cache[string, []byte]
}

// NewMemory returns an empty in-process cache and starts its expiry loop.
// Call Close to stop it.
func NewMemory() *Memory {
	items := ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
	)
	go items.Start()
	return &Memory{items: items}
}

// Get implements Cache
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := m.items.Get(key)
	if item == nil {
		return nil, false, nil
	}
	return append([]byte(nil), item.Value()...), true, nil
}

// Set implements Cache. A ttl <= 0 keeps the value until deleted.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// DeletePrefix implements Cache
func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	for _, key := range m.items.Keys() {
		if strings.HasPrefix(key, prefix) {
			m.items.Delete(key)
		}
	}
	return nil
}

// Close stops the expiry loop
func (m *Memory) Close() {
	m.items.Stop()
}
