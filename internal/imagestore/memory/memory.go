package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"pastelaria-service/internal/imagestore"
)

// Backend is an in-memory implementation of imagestore.Backend
type Backend struct {
	mu      sync.RWMutex
	objects map[string][]byte
	types   map[string]string
}

// New creates a new in-memory backend
func New() *Backend {
	return &Backend{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (b *Backend) Put(ctx context.Context, key string, data []byte, contentType string) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = cp
	b.types[key] = contentType
	return nil
}

func (b *Backend) Exists(ctx context.Context, key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.objects[key]
	return ok, nil
}

func (b *Backend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, imagestore.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return imagestore.ErrObjectNotFound
	}
	delete(b.objects, key)
	delete(b.types, key)
	return nil
}

// Len returns the number of stored objects
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

// ContentTypeOf returns the content type recorded for key
func (b *Backend) ContentTypeOf(key string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.types[key]
}
