// Package gateway is the order-submission boundary. The engine only ever
// talks to the Gateway interface; live broker transport lives outside this
// repository.
package gateway

import (
	"context"
	"fmt"
	"sync"

	"github.com/evdnx/liqsweep/logger"
	"github.com/evdnx/liqsweep/types"
)

type Gateway interface {
	SubmitOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error)
}

// Paper is a very simple accept-all gateway. It records every request and
// hands out synthetic broker ids, which is all the engine needs when no
// live broker is attached.
type Paper struct {
	log logger.Logger

	mu     sync.Mutex
	seq    int
	orders []types.OrderRequest
}

func NewPaper(log logger.Logger) *Paper {
	if log == nil {
		log = logger.NewNop()
	}
	return &Paper{log: log}
}

func (p *Paper) SubmitOrder(_ context.Context, req types.OrderRequest) (types.OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	p.orders = append(p.orders, req)
	id := fmt.Sprintf("paper-%d", p.seq)

	p.log.Info("order_submitted",
		logger.String("symbol", req.Symbol),
		logger.String("side", string(req.Side)),
		logger.Float64("entry", req.Entry),
		logger.String("broker_order_id", id),
	)
	return types.OrderResult{Accepted: true, BrokerOrderID: id}, nil
}

// Orders returns a copy of all submitted requests (useful for assertions).
func (p *Paper) Orders() []types.OrderRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]types.OrderRequest, len(p.orders))
	copy(out, p.orders)
	return out
}
