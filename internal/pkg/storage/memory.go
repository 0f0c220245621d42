package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// Memory keeps objects in process. Used by tests and single node development.
type Memory struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	Object
	data []byte
}

func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: baseURL, objects: make(map[string]memoryObject)}
}

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return Object{}, err
	}

	obj := Object{
		Key:         key,
		Size:        int64(buf.Len()),
		ContentType: opts.ContentType,
		UpdatedAt:   time.Now(),
	}

	m.mu.Lock()
	m.objects[key] = memoryObject{Object: obj, data: buf.Bytes()}
	m.mu.Unlock()

	return obj, nil
}

func (m *Memory) Stat(_ context.Context, key string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	if !ok {
		return Object{}, ErrObjectNotFound
	}
	return obj.Object, nil
}

// Bytes returns the stored content of key.
func (m *Memory) Bytes(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[key]
	return obj.data, ok
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	return joinURL(m.baseURL, key), nil
}

func (m *Memory) Close() error { return nil }
