package event

import (
	"context"
	"sync"
	"time"
)

// mockStore is an in-memory Store with error injection
type mockStore struct {
	mu        sync.Mutex
	events    map[string]*Event
	responses []*Response

	CreateErr error
	ListErr   error
}

func newMockStore() *mockStore {
	return &mockStore{events: make(map[string]*Event)}
}

func (m *mockStore) Create(ctx context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	e.CreatedAt = time.Now().UTC()
	copied := *e
	m.events[e.ID] = &copied
	return nil
}

func (m *mockStore) GetByID(ctx context.Context, id string) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	copied := *e
	return &copied, nil
}

func (m *mockStore) CreateResponse(ctx context.Context, r *Response) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.CreatedAt = time.Now().UTC()
	m.responses = append(m.responses, r)
	return nil
}

func (m *mockStore) ListResponses(ctx context.Context, eventID string) ([]*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []*Response
	for _, r := range m.responses {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}
