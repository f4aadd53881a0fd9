package cart

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrDocumentNotFound reports that no cart was ever saved under the id.
	ErrDocumentNotFound = errors.New("cart store: document not found")
	// ErrCorruptDocument reports persisted data that cannot be decoded.
	ErrCorruptDocument = errors.New("cart store: corrupt document")
)

// Store persists cart documents. Implementations must be safe for concurrent
// use; concurrent saves of one cart are last-write-wins.
type Store interface {
	Load(ctx context.Context, id string) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return Document{}, ErrDocumentNotFound
	}
	return doc.clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = doc.clone()
	return nil
}
