package commands

import (
	"context"

	"snapeats/internal/core/domain/model/order"
	"snapeats/internal/core/ports"
	"snapeats/internal/pkg/clock"
)

// PlaceOrderCommandHandler creates orders once payment is confirmed.
//
// The payment gateway is consulted for the opaque confirmation signal; an
// order whose payment is pending or failed never enters the lifecycle and
// stays invisible to restaurant and rider flows.
type PlaceOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	payments   ports.PaymentGateway
	publisher  ports.EventPublisher
	clock      clock.Clock
}

// NewPlaceOrderCommandHandler creates a handler for order placement.
func NewPlaceOrderCommandHandler(
	uowFactory OrderUoWFactory,
	payments ports.PaymentGateway,
	publisher ports.EventPublisher,
	clk clock.Clock,
) PlaceOrderCommandHandler {
	return PlaceOrderCommandHandler{
		uowFactory: uowFactory,
		payments:   payments,
		publisher:  publisher,
		clock:      clk,
	}
}

// Handle processes the placement command: resolves the payment signal,
// builds the aggregate, persists it, and publishes the placement event to
// the restaurant room after commit.
func (h PlaceOrderCommandHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	paymentStatus, err := h.payments.Status(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	newOrder, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.RestaurantID(),
		cmd.Items(),
		cmd.Address(),
		cmd.Method(),
		paymentStatus,
		h.clock.Now(),
	)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, newOrder); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	publishOrderEvents(h.publisher, newOrder, newOrder.PopEvents())
	return newOrder, nil
}
