package commands

import (
	"context"
	"log/slog"

	"snapeats/internal/core/domain/model/order"
	"snapeats/internal/core/ports"
	"snapeats/internal/pkg/clock"
)

// RequestTransitionCommandHandler applies actor-requested lifecycle
// transitions. It is the exposed transition API: every restaurant, rider
// and customer action lands here, while rider assignment is reserved for
// the dispatch coordinator.
//
// When a transition lands the order in ready_for_rider (the kitchen
// finishing, or the explicit re-broadcast retry), the handler asks the
// coordinator to open a fresh acceptance window after the commit. When a
// transition takes the order out of ready_for_rider instead, the open
// window is cancelled.
type RequestTransitionCommandHandler struct {
	uowFactory  OrderUoWFactory
	publisher   ports.EventPublisher
	broadcaster DispatchBroadcaster
	clock       clock.Clock
	logger      *slog.Logger
}

// NewRequestTransitionCommandHandler creates a handler for transition requests.
func NewRequestTransitionCommandHandler(
	uowFactory OrderUoWFactory,
	publisher ports.EventPublisher,
	broadcaster DispatchBroadcaster,
	clk clock.Clock,
	logger *slog.Logger,
) RequestTransitionCommandHandler {
	return RequestTransitionCommandHandler{
		uowFactory:  uowFactory,
		publisher:   publisher,
		broadcaster: broadcaster,
		clock:       clk,
		logger:      logger.With("component", "request_transition_handler"),
	}
}

// Handle processes one transition request and returns the resulting order.
// Transition failures (InvalidTransition, PaymentNotConfirmed,
// NotAssignedRider) are reported synchronously and mutate nothing.
func (h RequestTransitionCommandHandler) Handle(ctx context.Context, cmd RequestTransitionCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()

	aggregate, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	from := aggregate.Status()

	if err = aggregate.RequestTransition(cmd.Requested(), cmd.Role(), cmd.ActorID(), h.clock.Now()); err != nil {
		return nil, err
	}

	events := aggregate.PopEvents()
	if len(events) == 0 {
		// Idempotent repeat: nothing changed, nothing to persist or publish.
		return aggregate, nil
	}

	if err = orders.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	publishOrderEvents(h.publisher, aggregate, events)

	if from == order.ReadyForRider && aggregate.Status() != order.ReadyForRider {
		// Cancellation took the order out of the rider search; the armed
		// window timer must not fire a stale expiry.
		h.broadcaster.CancelWindow(aggregate.ID())
	}

	if aggregate.Status() == order.ReadyForRider {
		if err = h.broadcaster.Broadcast(ctx, aggregate.ID()); err != nil {
			// The transition is already committed; the rider search can be
			// reopened by the explicit retry action.
			h.logger.ErrorContext(ctx, "rider broadcast failed",
				"order_id", aggregate.ID().String(), "error", err)
		}
	}

	return aggregate, nil
}
