package commands

import (
	"errors"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"
	"snapeats/internal/pkg/guard"
)

var ErrRequestTransitionCommandIsNotConstructed = errors.New(
	"RequestTransitionCommand must be created via NewRequestTransitionCommand constructor",
)

// RequestTransitionCommand is one actor's request to move an order along
// the lifecycle graph: the restaurant marking kitchen progress, a rider
// marking pickup or delivery, or an authorized actor cancelling.
type RequestTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	requested order.Status
	role      order.ActorRole
	actorID   kernel.UUID

	guard guard.ConstructorGuard
}

// NewRequestTransitionCommand creates a validated transition request.
func NewRequestTransitionCommand(
	orderID kernel.UUID,
	requested order.Status,
	role order.ActorRole,
	actorID kernel.UUID,
) (RequestTransitionCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		requested.Validate(),
		role.Validate(),
		actorID.Validate(),
	); err != nil {
		return RequestTransitionCommand{}, err
	}

	return RequestTransitionCommand{
		orderID:   orderID,
		requested: requested,
		role:      role,
		actorID:   actorID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestTransitionCommandIsNotConstructed)
}

// OrderID returns the order to transition.
func (c RequestTransitionCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Requested returns the requested target status.
func (c RequestTransitionCommand) Requested() order.Status {
	return c.requested
}

// Role returns the requesting actor's role.
func (c RequestTransitionCommand) Role() order.ActorRole {
	return c.role
}

// ActorID returns the requesting actor's identifier.
func (c RequestTransitionCommand) ActorID() kernel.UUID {
	return c.actorID
}
