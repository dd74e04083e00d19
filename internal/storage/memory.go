package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation used in tests.
// Safe for concurrent use.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data    []byte
	modTime time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string]memoryObject),
	}
}

func (m *MemoryStorage) Put(ctx context.Context, path string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read object body: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = memoryObject{data: data, modTime: time.Now()}
	return nil
}

func (m *MemoryStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", path)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryStorage) Copy(ctx context.Context, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[src]
	if !ok {
		return fmt.Errorf("object not found: %s", src)
	}

	data := make([]byte, len(obj.data))
	copy(data, obj.data)
	m.objects[dst] = memoryObject{data: data, modTime: time.Now()}
	return nil
}

func (m *MemoryStorage) Remove(ctx context.Context, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range paths {
		delete(m.objects, p)
	}
	return nil
}

func (m *MemoryStorage) PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.objects[path]; !ok {
		return "", fmt.Errorf("object not found: %s", path)
	}
	return "memory://" + path, nil
}

func (m *MemoryStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var infos []ObjectInfo
	for path, obj := range m.objects {
		if strings.HasPrefix(path, prefix) {
			infos = append(infos, ObjectInfo{
				Path:         path,
				SizeBytes:    int64(len(obj.data)),
				LastModified: obj.modTime,
			})
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

// Len returns the number of stored objects.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// Has reports whether an object exists at the given path.
func (m *MemoryStorage) Has(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok
}
