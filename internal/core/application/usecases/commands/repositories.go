// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations: validation,
// transaction management, persistence, then event fan-out after commit.
package commands

import (
	"context"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// OrderUoW manages transactions for order-only operations.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}
)

// DispatchBroadcaster manages the rider acceptance window for an order.
// Broadcast opens one when the order enters ready_for_rider; CancelWindow
// drops the armed timer when the order leaves ready_for_rider by a path
// other than acceptance. Implemented by the dispatch coordinator; declared
// here so command handlers stay decoupled from its construction.
type DispatchBroadcaster interface {
	Broadcast(ctx context.Context, orderID kernel.UUID) error
	CancelWindow(orderID kernel.UUID)
}
