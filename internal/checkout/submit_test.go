package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/events"
	"github.com/noah-isme/toko-storefront/internal/pricing"
)

type stubOrders struct {
	ack      Ack
	err      error
	calls    int
	inFlight func()
}

func (o *stubOrders) Create(_ context.Context, _ Request) (Ack, error) {
	o.calls++
	if o.inFlight != nil {
		o.inFlight()
	}
	if o.err != nil {
		return Ack{}, o.err
	}
	return o.ack, nil
}

type recordingNotifier struct {
	events []events.Event
}

func (n *recordingNotifier) Notify(_ context.Context, event events.Event) error {
	n.events = append(n.events, event)
	return nil
}

func validSubmitInput() Input {
	return Input{
		Items:    testItems(1),
		View:     testViewStock(10),
		Selector: domesticSelector(),
		Payment:  pricing.PaymentManual,
		Contact:  validContact(),
	}
}

func newSubmitter(orders OrderCreator, notifier events.Notifier) *Submitter {
	var notifiers []events.Notifier
	if notifier != nil {
		notifiers = append(notifiers, notifier)
	}
	return &Submitter{
		Assembler:   &Assembler{Validator: NewValidator()},
		Orders:      orders,
		Events:      &events.Bus{Notifiers: notifiers},
		Generations: &Generations{},
	}
}

func TestSubmitSuccess(t *testing.T) {
	orders := &stubOrders{ack: Ack{OrderID: "ORD-1", Status: "created"}}
	notifier := &recordingNotifier{}
	s := newSubmitter(orders, notifier)

	ack, notices, err := s.Submit(context.Background(), "sess-1", validSubmitInput())
	require.NoError(t, err)
	require.Empty(t, notices)
	require.Equal(t, "ORD-1", ack.OrderID)
	require.Equal(t, 1, orders.calls)

	require.Len(t, notifier.events, 1)
	require.Equal(t, events.TopicOrderCreated, notifier.events[0].Topic)
	require.Equal(t, "ORD-1", notifier.events[0].Payload["orderId"])
}

func TestSubmitGateRejectionNeverReachesOrders(t *testing.T) {
	orders := &stubOrders{ack: Ack{OrderID: "ORD-1"}}
	s := newSubmitter(orders, nil)

	in := validSubmitInput()
	in.Items = nil
	_, _, err := s.Submit(context.Background(), "sess-1", in)

	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	require.Equal(t, ReasonEmptyCart, gateErr.Reason)
	require.Zero(t, orders.calls)
}

func TestSubmitRemoteFailure(t *testing.T) {
	boom := errors.New("order api down")
	orders := &stubOrders{err: boom}
	notifier := &recordingNotifier{}
	s := newSubmitter(orders, notifier)

	_, _, err := s.Submit(context.Background(), "sess-1", validSubmitInput())

	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	require.Equal(t, ReasonRemoteFailure, gateErr.Reason)
	require.ErrorIs(t, err, boom)
	require.Empty(t, notifier.events)
}

func TestSubmitLateSuccessDiscarded(t *testing.T) {
	gens := &Generations{}
	orders := &stubOrders{ack: Ack{OrderID: "ORD-1"}}
	// Simulate the session moving on while the create call is in flight.
	orders.inFlight = func() { gens.Invalidate("sess-1") }

	notifier := &recordingNotifier{}
	s := newSubmitter(orders, notifier)
	s.Generations = gens

	_, _, err := s.Submit(context.Background(), "sess-1", validSubmitInput())

	var gateErr *GateError
	require.ErrorAs(t, err, &gateErr)
	require.Equal(t, ReasonSuperseded, gateErr.Reason)
	// The late success must not surface as an order confirmation.
	require.Empty(t, notifier.events)
}

func TestGenerationsAreSessionScoped(t *testing.T) {
	gens := &Generations{}
	a := gens.For("sess-a")
	b := gens.For("sess-b")

	tokenA := a.Next()
	gens.Invalidate("sess-b")

	require.Equal(t, tokenA, a.Current())
	require.NotEqual(t, tokenA, b.Current())
	require.Same(t, a, gens.For("sess-a"))
}
