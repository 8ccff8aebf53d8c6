package commands

import (
	"errors"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"
	"snapeats/internal/pkg/errs"
	"snapeats/internal/pkg/guard"
)

var ErrPlaceOrderCommandIsNotConstructed = errors.New(
	"PlaceOrderCommand must be created via NewPlaceOrderCommand constructor",
)

// PlaceOrderCommand represents a checkout turning into an order. It carries
// everything that gets snapshotted onto the aggregate: line items, the
// delivery address, and the chosen payment method. Payment confirmation is
// resolved by the handler, not carried by the command.
type PlaceOrderCommand struct { //nolint:recvcheck //using for validation
	orderID      kernel.UUID
	customerID   kernel.UUID
	restaurantID kernel.UUID
	items        []order.LineItem
	address      order.DeliveryAddress
	method       order.PaymentMethod

	guard guard.ConstructorGuard
}

// NewPlaceOrderCommand creates a validated command to place a new order.
func NewPlaceOrderCommand(
	orderID kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	items []order.LineItem,
	address order.DeliveryAddress,
	method order.PaymentMethod,
) (PlaceOrderCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		customerID.Validate(),
		restaurantID.Validate(),
		address.Validate(),
		method.Validate(),
	); err != nil {
		return PlaceOrderCommand{}, err
	}

	if len(items) == 0 {
		return PlaceOrderCommand{}, errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return PlaceOrderCommand{}, err
		}
	}

	return PlaceOrderCommand{
		orderID:      orderID,
		customerID:   customerID,
		restaurantID: restaurantID,
		items:        append([]order.LineItem(nil), items...),
		address:      address,
		method:       method,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c PlaceOrderCommand) Validate() error {
	return c.guard.Validate(ErrPlaceOrderCommandIsNotConstructed)
}

// OrderID returns the identifier for the new order.
func (c PlaceOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// CustomerID returns the ordering customer.
func (c PlaceOrderCommand) CustomerID() kernel.UUID {
	return c.customerID
}

// RestaurantID returns the fulfilling restaurant.
func (c PlaceOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// Items returns the ordered line items.
func (c PlaceOrderCommand) Items() []order.LineItem {
	return append([]order.LineItem(nil), c.items...)
}

// Address returns the delivery address snapshot.
func (c PlaceOrderCommand) Address() order.DeliveryAddress {
	return c.address
}

// Method returns the chosen payment method.
func (c PlaceOrderCommand) Method() order.PaymentMethod {
	return c.method
}
