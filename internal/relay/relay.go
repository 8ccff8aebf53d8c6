// Package relay forwards the assigned rider's periodic position reports to
// the order's customer room while the delivery leg is active.
package relay

import (
	"context"
	"sync"
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"
	"snapeats/internal/core/ports"
	"snapeats/internal/pkg/clock"
)

// DefaultInterval is the minimum spacing between forwarded reports for one
// order.
const DefaultInterval = 10 * time.Second

// OrderGetter is the read-only slice of the order repository the relay needs.
type OrderGetter interface {
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

type lastReport struct {
	point kernel.GeoPoint
	at    time.Time
}

// Relay accepts rider position reports and pushes each forward as a
// rider:location event. It holds no history: each report overwrites the
// last known position, and nothing is persisted.
type Relay struct {
	orders    OrderGetter
	publisher ports.EventPublisher
	clock     clock.Clock
	interval  time.Duration

	mu   sync.Mutex
	last map[kernel.UUID]lastReport
}

// NewRelay creates a location relay. A non-positive interval falls back to
// DefaultInterval.
func NewRelay(orders OrderGetter, publisher ports.EventPublisher, clk clock.Clock, interval time.Duration) *Relay {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Relay{
		orders:    orders,
		publisher: publisher,
		clock:     clk,
		interval:  interval,
		last:      make(map[kernel.UUID]lastReport),
	}
}

// ReportPosition relays one position report for an order's active delivery
// leg (rider_assigned or picked_up).
//
// Reports for any other order state, or from a rider other than the
// assigned one, fail with order.ErrNotAssignedRider and never reach the
// customer room. Reports arriving faster than the configured interval are
// absorbed without being forwarded; position streaming is best-effort
// plumbing, not a ledger.
func (r *Relay) ReportPosition(ctx context.Context, orderID, riderID kernel.UUID, latitude, longitude float64) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if err := riderID.Validate(); err != nil {
		return err
	}

	point, err := kernel.NewGeoPoint(latitude, longitude)
	if err != nil {
		return err
	}

	aggregate, err := r.orders.Get(ctx, orderID)
	if err != nil {
		return err
	}

	if !aggregate.Status().InDeliveryLeg() {
		r.forget(orderID)
		return order.ErrNotAssignedRider
	}
	if assigned := aggregate.Rider(); assigned == nil || !assigned.IsEqual(riderID) {
		return order.ErrNotAssignedRider
	}

	now := r.clock.Now()

	r.mu.Lock()
	if previous, ok := r.last[orderID]; ok && now.Sub(previous.at) < r.interval {
		r.mu.Unlock()
		return nil
	}
	r.last[orderID] = lastReport{point: point, at: now}
	r.mu.Unlock()

	r.publisher.Publish(ports.UserRoom(aggregate.Customer()), order.RiderLocation{
		OrderID:   orderID,
		Latitude:  point.Latitude(),
		Longitude: point.Longitude(),
		At:        now,
	})
	return nil
}

// LastKnown returns the most recently forwarded position for an order.
func (r *Relay) LastKnown(orderID kernel.UUID) (kernel.GeoPoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.last[orderID]
	return report.point, ok
}

func (r *Relay) forget(orderID kernel.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.last, orderID)
}
