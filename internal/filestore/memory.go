package filestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/gofrs/uuid"
)

type memoryFile struct {
	meta File
	data []byte
}

type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]memoryFile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]memoryFile)}
}

func (m *MemoryStore) Upload(_ context.Context, name, contentType string, r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("filestore: failed to read %s: %w", name, err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("filestore: failed to generate file id: %w", err)
	}

	meta := File{ID: id.String(), Name: name, ContentType: contentType, Size: int64(len(data))}

	m.mu.Lock()
	m.files[meta.ID] = memoryFile{meta: meta, data: data}
	m.mu.Unlock()

	return &meta, nil
}

func (m *MemoryStore) Open(_ context.Context, id string) (io.ReadCloser, *File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.files[id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	meta := f.meta

	return io.NopCloser(bytes.NewReader(f.data)), &meta, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return ErrNotFound
	}
	delete(m.files, id)

	return nil
}

// Len reports how many files are stored.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
