package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memDoc struct {
	data    []byte
	etag    string
	updated time.Time
}

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]memDoc
	hub  *hub
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]memDoc),
		hub:  newHub(),
	}
}

func (m *MemoryStore) Get(ctx context.Context, path string) (*Snapshot, error) {
	if _, _, err := SplitPath(path); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked(path), nil
}

func (m *MemoryStore) snapshotLocked(path string) *Snapshot {
	doc, ok := m.docs[path]
	if !ok {
		return missingSnapshot(path)
	}
	return newSnapshot(path, doc.data, doc.etag, doc.updated)
}

func (m *MemoryStore) Set(ctx context.Context, path string, v any) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}

	m.mu.Lock()
	m.docs[path] = memDoc{data: data, etag: newETag(), updated: time.Now().UTC()}
	m.mu.Unlock()

	m.hub.notify(path)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, path string, fn UpdateFunc) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}

	m.mu.Lock()
	out, err := fn(m.snapshotLocked(path))
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if out == nil {
		m.mu.Unlock()
		return nil
	}
	data, err := json.Marshal(out)
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}
	m.docs[path] = memDoc{data: data, etag: newETag(), updated: time.Now().UTC()}
	m.mu.Unlock()

	m.hub.notify(path)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, path string) error {
	if _, _, err := SplitPath(path); err != nil {
		return err
	}

	m.mu.Lock()
	_, existed := m.docs[path]
	delete(m.docs, path)
	m.mu.Unlock()

	if existed {
		m.hub.notify(path)
	}
	return nil
}

func (m *MemoryStore) Listen(ctx context.Context, path string, l Listener) (ListenerRegistration, error) {
	if _, _, err := SplitPath(path); err != nil {
		return nil, err
	}
	if l == nil {
		return nil, fmt.Errorf("nil listener for %s", path)
	}
	return m.hub.add(ctx, path, m.Get, l), nil
}

// Listeners reports the number of active registrations.
func (m *MemoryStore) Listeners() int {
	return m.hub.count()
}
