package tokenstore

import (
	"context"
	"sync"
)

// MemoryStore holds a token in process memory. It backs the session tier:
// its contents are dropped when the process exits.
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

// Compile-time check to ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Read returns the held token. Returns ErrNoToken when nothing is held.
func (m *MemoryStore) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

// Write replaces the held token.
func (m *MemoryStore) Write(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

// Clear drops the held token.
func (m *MemoryStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
