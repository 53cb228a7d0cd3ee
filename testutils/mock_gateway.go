package testutils

import (
	"context"
	"sync"

	"github.com/evdnx/liqsweep/types"
)

// MockGateway implements the execution gateway in-memory. It records every
// request and can be scripted to reject.
type MockGateway struct {
	mu     sync.Mutex
	orders []types.OrderRequest

	// RejectWith, when non-empty, makes every submission come back
	// rejected with this reason.
	RejectWith string
}

func NewMockGateway() *MockGateway { return &MockGateway{} }

func (g *MockGateway) SubmitOrder(_ context.Context, req types.OrderRequest) (types.OrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.orders = append(g.orders, req)
	if g.RejectWith != "" {
		return types.OrderResult{Accepted: false, RejectReason: g.RejectWith}, nil
	}
	return types.OrderResult{Accepted: true, BrokerOrderID: "mock-1"}, nil
}

// Orders returns a copy of all submitted requests (useful for assertions).
func (g *MockGateway) Orders() []types.OrderRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]types.OrderRequest, len(g.orders))
	copy(out, g.orders)
	return out
}
