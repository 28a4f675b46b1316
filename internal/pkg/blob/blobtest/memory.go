package blobtest

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/georgemunganga/vendor-portal/internal/pkg/blob"
)

// Memory is an in-memory blob.Store for tests.
type Memory struct {
	mu        sync.Mutex
	objects   map[string][]byte
	Deleted   []string
	PutErr    error
	DeleteErr error
	OpenErr   error
	// ReadErr, when set, ends every opened stream with this error after the data.
	ReadErr error
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Put(_ context.Context, path string, data []byte, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.objects[path] = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Open(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	data, ok := m.objects[path]
	if !ok {
		return nil, blob.ErrNotFound
	}
	if m.ReadErr != nil {
		return io.NopCloser(io.MultiReader(bytes.NewReader(data), failingReader{m.ReadErr})), nil
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Memory) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.objects[path]; !ok {
		return blob.ErrNotFound
	}
	delete(m.objects, path)
	m.Deleted = append(m.Deleted, path)
	return nil
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

// Paths returns the stored paths.
func (m *Memory) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.objects))
	for p := range m.objects {
		paths = append(paths, p)
	}
	return paths
}
