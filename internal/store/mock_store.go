// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/2389/desk-gateway/internal/ticket"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu       sync.RWMutex
	tickets  map[string]*ticket.Ticket
	settings map[string]string

	// UpsertErr, when set, is returned by UpsertTicket to simulate
	// persistence failures.
	UpsertErr error

	// UpsertCalls counts UpsertTicket invocations.
	UpsertCalls int
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		tickets:  make(map[string]*ticket.Ticket),
		settings: make(map[string]string),
	}
}

// GetTicket retrieves a ticket by id.
func (m *MockStore) GetTicket(ctx context.Context, id string) (*ticket.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tickets[id]
	if !ok {
		return nil, ticket.ErrNotFound
	}
	// Return a copy to avoid external modification of stored state.
	return t.Clone(), nil
}

// UpsertTicket stores a copy of the ticket.
func (m *MockStore) UpsertTicket(ctx context.Context, t *ticket.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpsertCalls++
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.tickets[t.ID] = t.Clone()
	return nil
}

// ListTickets returns stored tickets ordered by most recent update.
func (m *MockStore) ListTickets(ctx context.Context, limit int) ([]*ticket.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ticket.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetSetting returns a stored setting value.
func (m *MockStore) GetSetting(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.settings[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// PutSetting stores a setting value.
func (m *MockStore) PutSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings[key] = value
	return nil
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}
