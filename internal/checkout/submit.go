package checkout

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/obs"
)

// Generation is a per-session submission token. Each submission captures the
// current generation; leaving the checkout flow (or submitting again) bumps
// it, so a late-arriving success can be recognised and discarded.
type Generation struct {
	n atomic.Uint64
}

// Next bumps and returns the generation.
func (g *Generation) Next() uint64 {
	return g.n.Add(1)
}

// Current returns the generation without bumping it.
func (g *Generation) Current() uint64 {
	return g.n.Load()
}

// Generations tracks submission tokens per session id.
type Generations struct {
	mu   sync.Mutex
	byID map[string]*Generation
}

// For returns the generation tracker for a session, creating it on first use.
func (g *Generations) For(sessionID string) *Generation {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.byID == nil {
		g.byID = make(map[string]*Generation)
	}
	gen, ok := g.byID[sessionID]
	if !ok {
		gen = &Generation{}
		g.byID[sessionID] = gen
	}
	return gen
}

// Invalidate bumps a session's generation so in-flight submissions expire.
func (g *Generations) Invalidate(sessionID string) {
	g.For(sessionID).Next()
}

// Submitter drives a full submission: assemble, hand off, guard the response.
type Submitter struct {
	Assembler   *Assembler
	Orders      OrderCreator
	Events      *events.Bus
	Generations *Generations
}

// Submit assembles and hands the request to the order collaborator exactly
// once. A failed hand-off is terminal for this attempt and leaves the cart
// untouched; a success that arrives after the session moved on is discarded
// with ReasonSuperseded. The caller clears the cart only on a nil error.
func (s *Submitter) Submit(ctx context.Context, sessionID string, in Input) (Ack, []Notice, error) {
	req, notices, err := s.Assembler.Assemble(in)
	if err != nil {
		submitResult("rejected")
		return Ack{}, nil, err
	}

	gen := s.Generations.For(sessionID)
	token := gen.Next()

	ack, err := s.Orders.Create(ctx, req)
	if err != nil {
		submitResult("remote_failure")
		return Ack{}, notices, &GateError{Reason: ReasonRemoteFailure, Err: err}
	}
	if gen.Current() != token {
		// The session reset or resubmitted while this call was in flight.
		submitResult("superseded")
		return Ack{}, notices, &GateError{Reason: ReasonSuperseded}
	}

	if s.Events != nil {
		_ = s.Events.Emit(ctx, events.TopicOrderCreated, events.Payload{
			"orderId":   ack.OrderID,
			"sessionId": sessionID,
			"total":     req.Totals.Total,
			"payment":   string(req.Payment),
		})
	}
	submitResult("ok")
	return ack, notices, nil
}

func submitResult(result string) {
	if obs.CheckoutSubmitTotal != nil {
		obs.CheckoutSubmitTotal.WithLabelValues(result).Inc()
	}
}
