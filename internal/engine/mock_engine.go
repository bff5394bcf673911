package engine

import (
	"context"
	"fmt"
	"sync"
)

// MockEngine is an in-memory Engine for tests. By default every request gets
// the same borefield.
type MockEngine struct {
	mu       sync.Mutex
	requests []Request

	BoreholeLength float64
	BoreholeCount  int
	// SizeFunc, when set, replaces the default result.
	SizeFunc func(req *Request) (*Summary, error)
}

// NewMockEngine creates a mock that answers every request with count
// boreholes of the given length.
func NewMockEngine(length float64, count int) *MockEngine {
	return &MockEngine{BoreholeLength: length, BoreholeCount: count}
}

func (m *MockEngine) Size(ctx context.Context, req *Request) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	r := *req
	r.Loads.GroundLoads = append([]float64(nil), req.Loads.GroundLoads...)
	m.requests = append(m.requests, r)
	m.mu.Unlock()

	if m.SizeFunc != nil {
		return m.SizeFunc(req)
	}
	raw := fmt.Sprintf(`{"ghe_system":{"active_borehole_length":{"value":%g},"number_of_boreholes":%d}}`,
		m.BoreholeLength, m.BoreholeCount)
	return ParseSummary([]byte(raw))
}

// Requests returns a copy of every request received, in arrival order.
func (m *MockEngine) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Request returns the request received for a GHE, if any.
func (m *MockEngine) Request(gheID string) (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.requests {
		if r.GHEID == gheID {
			return r, true
		}
	}
	return Request{}, false
}
