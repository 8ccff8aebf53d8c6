package order

import (
	"time"

	"snapeats/internal/core/domain/model/kernel"
)

// Event is a domain event raised by an order transition. Type returns the
// wire name published to subscribed actor sessions. Consumers treat events
// as invalidate-and-refetch signals, not as the source of truth.
type Event interface {
	Type() string
}

// OrderPlaced is raised once when a paid order is created.
// Delivered to the restaurant room so a new order appears immediately.
type OrderPlaced struct {
	OrderID      kernel.UUID
	RestaurantID kernel.UUID
	At           time.Time
}

func (e OrderPlaced) Type() string { return "order:new" }

// OrderStatusChanged is raised on every applied lifecycle transition.
// Delivered to the customer room, and to the restaurant room when the
// transition surfaces a retryable dispatch condition.
type OrderStatusChanged struct {
	OrderID kernel.UUID
	From    Status
	To      Status
	At      time.Time
}

func (e OrderStatusChanged) Type() string { return "order:update" }

// OrderAvailable invites one candidate rider to accept an order.
// It carries the order id only: no address details cross this channel
// before a rider is committed.
type OrderAvailable struct {
	OrderID kernel.UUID
}

func (e OrderAvailable) Type() string { return "order:available" }

// OrderRiderAssigned is raised when the dispatch race resolves. Delivered to the
// customer room and to every rider whose offer was withdrawn, so losing
// invitations disappear immediately instead of waiting out the window.
type OrderRiderAssigned struct {
	OrderID kernel.UUID
	RiderID kernel.UUID
	At      time.Time
}

func (e OrderRiderAssigned) Type() string { return "order:rider_assigned" }

// RiderLocation forwards the assigned rider's latest position to the
// customer room. Only the last known position exists; no track is kept.
type RiderLocation struct {
	OrderID   kernel.UUID
	Latitude  float64
	Longitude float64
	At        time.Time
}

func (e RiderLocation) Type() string { return "rider:location" }
