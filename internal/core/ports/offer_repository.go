package ports

import (
	"context"
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/offer"
)

// OfferRepository defines the persistence contract for dispatch offers.
type OfferRepository interface {
	// Add persists a new dispatch offer.
	Add(ctx context.Context, aggregate *offer.DispatchOffer) error

	// Update persists an offer's resolved outcome.
	Update(ctx context.Context, aggregate *offer.DispatchOffer) error

	// Get retrieves the offer identified by the (order, rider) pair.
	// Returns an ObjectNotFoundError when no such offer exists.
	Get(ctx context.Context, orderID, riderID kernel.UUID) (*offer.DispatchOffer, error)

	// GetPendingByOrder retrieves every still-pending offer for one order.
	GetPendingByOrder(ctx context.Context, orderID kernel.UUID) ([]*offer.DispatchOffer, error)

	// GetPendingExpiredBefore retrieves pending offers whose window elapsed
	// before the given instant, across all orders. Used by the sweep job to
	// finalize windows whose in-process timer was lost.
	GetPendingExpiredBefore(ctx context.Context, deadline time.Time) ([]*offer.DispatchOffer, error)
}
