package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/natefinch/atomic"
)

var validDocumentID = regexp.MustCompile(`^[0-9A-Za-z_-]{1,64}$`)

// FileStore keeps one JSON document per cart under a directory. Writes
// replace the file atomically so readers never observe a partial document.
type FileStore struct {
	dir   string
	locks stripedLocks
}

// NewFileStore creates dir when missing.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("cart store: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cart store: create %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) (string, error) {
	if !validDocumentID.MatchString(id) {
		return "", fmt.Errorf("cart store: invalid id %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

func (s *FileStore) Load(_ context.Context, id string) (Document, error) {
	path, err := s.path(id)
	if err != nil {
		return Document{}, err
	}
	mu := s.locks.of(id)
	mu.Lock()
	data, err := os.ReadFile(path)
	mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, ErrDocumentNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("cart store: read %s: %w", id, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, id, err)
	}
	doc.ID = id
	return doc, nil
}

func (s *FileStore) Save(_ context.Context, doc Document) error {
	path, err := s.path(doc.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("cart store: encode %s: %w", doc.ID, err)
	}

	mu := s.locks.of(doc.ID)
	mu.Lock()
	defer mu.Unlock()
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("cart store: write %s: %w", doc.ID, err)
	}
	return nil
}
