// Package ports defines the contracts between the core and its adapters:
// repositories, the unit of work, and the external collaborators the
// coordinator consumes.
package ports

import (
	"context"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its unique identifier.
	// Returns an ObjectNotFoundError when no such order exists.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAllActiveByRestaurant retrieves a restaurant's orders that have not
	// reached a terminal status, oldest first.
	GetAllActiveByRestaurant(ctx context.Context, restaurantID kernel.UUID) ([]*order.Order, error)
}
