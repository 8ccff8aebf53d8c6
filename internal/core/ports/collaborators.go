package ports

import (
	"context"
	"fmt"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"
)

// Room key scheme shared by publishers and the session registry.
// Rooms group all sessions belonging to one customer, restaurant or rider.

// UserRoom returns the room key for a customer's sessions.
func UserRoom(customerID kernel.UUID) string {
	return fmt.Sprintf("user:%s", customerID)
}

// RestaurantRoom returns the room key for a restaurant's sessions.
func RestaurantRoom(restaurantID kernel.UUID) string {
	return fmt.Sprintf("restaurant:%s", restaurantID)
}

// RiderRoom returns the room key for a rider's sessions.
func RiderRoom(riderID kernel.UUID) string {
	return fmt.Sprintf("rider:%s", riderID)
}

// RiderDirectory is the external eligible-rider lookup. Availability and
// proximity to the restaurant are computed by the collaborator; the
// coordinator only consumes the resulting id list.
type RiderDirectory interface {
	EligibleRiders(ctx context.Context, restaurantID kernel.UUID) ([]kernel.UUID, error)
}

// PaymentGateway exposes the opaque payment confirmation signal consumed at
// placement. The provider protocol itself is out of scope.
type PaymentGateway interface {
	Status(ctx context.Context, orderID kernel.UUID) (order.PaymentStatus, error)
}

// EventPublisher is the transport-facing side of the event bus. Publishing
// is fire-and-forget: a disconnected session simply misses the event until
// its next fetch-triggered resynchronization.
type EventPublisher interface {
	Publish(room string, event order.Event)
}
