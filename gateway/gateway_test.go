package gateway

import (
	"context"
	"testing"

	"github.com/evdnx/liqsweep/testutils"
	"github.com/evdnx/liqsweep/types"
)

// the in-memory test double must satisfy the same contract
var _ Gateway = (*testutils.MockGateway)(nil)

func TestPaperAcceptsAndNumbersOrders(t *testing.T) {
	log := testutils.NewMockLogger()
	p := NewPaper(log)
	ctx := context.Background()

	req := types.OrderRequest{Symbol: "EURUSD", Side: types.Buy, Entry: 95.6, Stop: 93.9, TakeProfit: 97.2}
	first, err := p.SubmitOrder(ctx, req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	second, err := p.SubmitOrder(ctx, req)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if !first.Accepted || !second.Accepted {
		t.Fatalf("paper gateway must accept everything: %+v %+v", first, second)
	}
	if first.BrokerOrderID != "paper-1" || second.BrokerOrderID != "paper-2" {
		t.Fatalf("ids must be sequential, got %q %q", first.BrokerOrderID, second.BrokerOrderID)
	}
	if got := len(p.Orders()); got != 2 {
		t.Fatalf("expected 2 recorded orders, got %d", got)
	}
	if log.LastMessage() != "order_submitted" {
		t.Fatalf("expected order_submitted log, got %q", log.LastMessage())
	}
}

func TestMockGatewayScriptedRejection(t *testing.T) {
	g := testutils.NewMockGateway()
	g.RejectWith = "insufficient margin"

	res, err := g.SubmitOrder(context.Background(), types.OrderRequest{Symbol: "EURUSD", Side: types.Sell})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Accepted || res.RejectReason != "insufficient margin" {
		t.Fatalf("expected a scripted rejection, got %+v", res)
	}
}
