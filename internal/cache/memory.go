package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryBackend is the in-process backend. It is the default for a single
// stdio server instance.
type MemoryBackend struct {
	c *gocache.Cache
}

// NewMemoryBackend builds an in-memory backend with a periodic janitor.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		c: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, data []byte, retention time.Duration) error {
	m.c.Set(key, data, retention)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.c.Flush()
	return nil
}

func (m *MemoryBackend) Ping(_ context.Context) error {
	return nil
}
