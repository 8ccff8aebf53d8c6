package queries

import (
	"errors"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/pkg/guard"
)

var ErrGetRestaurantOrdersQueryIsNotConstructed = errors.New(
	"GetRestaurantOrdersQuery must be created via NewGetRestaurantOrdersQuery constructor",
)

// GetRestaurantOrdersQuery retrieves a restaurant's active orders: every
// order that has not yet reached a terminal status. This is the kitchen
// dashboard feed.
type GetRestaurantOrdersQuery struct {
	restaurantID kernel.UUID
	guard        guard.ConstructorGuard
}

// NewGetRestaurantOrdersQuery creates a query for a restaurant's active orders.
func NewGetRestaurantOrdersQuery(restaurantID kernel.UUID) (GetRestaurantOrdersQuery, error) {
	if err := restaurantID.Validate(); err != nil {
		return GetRestaurantOrdersQuery{}, err
	}

	return GetRestaurantOrdersQuery{
		restaurantID: restaurantID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// RestaurantID returns the restaurant whose orders are requested.
func (q GetRestaurantOrdersQuery) RestaurantID() kernel.UUID {
	return q.restaurantID
}

// Validate ensures the query was created through the constructor.
func (q GetRestaurantOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetRestaurantOrdersQueryIsNotConstructed)
}
