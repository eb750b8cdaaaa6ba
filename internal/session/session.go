// Package session persists the console's single bearer credential.
package session

import (
	"context"
	"errors"
	"sync"
)

// TokenKey is the fixed name the credential is stored under.
const TokenKey = "auth_token"

// ErrNoToken is returned by Inspect when there is no credential.
var ErrNoToken = errors.New("no session token")

// Store holds at most one credential. Get returns "" when none is stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Memory is a process-local Store.
type Memory struct {
	mu    sync.RWMutex
	token string
}

// NewMemory creates a Memory store holding token.
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Get(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *Memory) Set(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	return m.Set(context.Background(), "")
}
