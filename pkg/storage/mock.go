package storage

import (
	"context"
	"errors"
	"sync"
)

// MockStorage is an in-memory VariableStore for testing
type MockStorage struct {
	mu        sync.RWMutex
	vars      map[string]map[string]string
	pingError error
	setError  error
}

// Ensure MockStorage implements VariableStore interface
var _ VariableStore = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		vars: make(map[string]map[string]string),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetWriteError configures the mock to fail every Set with the given error
func (m *MockStorage) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// Get mocks reading a variable
func (m *MockStorage) Get(ctx context.Context, playerID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[playerID][key]
	return v, ok, nil
}

// Set mocks writing a variable
func (m *MockStorage) Set(ctx context.Context, playerID, key, value string) error {
	if playerID == "" {
		return errors.New("player ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setError != nil {
		return m.setError
	}
	if m.vars[playerID] == nil {
		m.vars[playerID] = make(map[string]string)
	}
	m.vars[playerID][key] = value
	return nil
}

// Delete mocks removing a variable
func (m *MockStorage) Delete(ctx context.Context, playerID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars[playerID], key)
	return nil
}
