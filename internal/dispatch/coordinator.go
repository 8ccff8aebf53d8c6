// Package dispatch implements the rider-assignment coordinator: it converts
// one order entering ready_for_rider into exactly one rider_assigned
// outcome, or backs off to ready_for_rider for an explicit retry.
//
// Concurrency model: each order's status and its offer set form one
// critical section, guarded by a per-order mutex. "First accept wins" is
// defined by arrival order at that mutex, never by client timestamps.
// Cross-order concurrency is unrestricted; one timer runs per open window
// and is cancelled the instant the order leaves ready_for_rider.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/offer"
	"snapeats/internal/core/domain/model/order"
	"snapeats/internal/core/ports"
	"snapeats/internal/pkg/clock"
)

// ErrOfferNoLongerAvailable is returned to a rider whose accept arrived
// after the order was claimed, cancelled, or the window closed. Clients
// treat it exactly like a withdrawal event: the invitation disappears.
var ErrOfferNoLongerAvailable = errors.New("offer no longer available")

// ErrOrderNotReady is returned when a broadcast is requested for an order
// that is not in ready_for_rider.
var ErrOrderNotReady = errors.New("order is not ready for rider")

// DefaultWindow is the fixed acceptance window measured from broadcast
// time, shared by every offer of one broadcast.
const DefaultWindow = 10 * time.Second

// Coordinator owns the rider-assignment race for ready orders.
type Coordinator struct {
	uowFactory ports.UnitOfWorkFactory
	riders     ports.RiderDirectory
	publisher  ports.EventPublisher
	clock      clock.Clock
	window     time.Duration
	logger     *slog.Logger

	mu     sync.Mutex
	locks  map[kernel.UUID]*sync.Mutex
	timers map[kernel.UUID]*time.Timer
}

// NewCoordinator creates a dispatch coordinator. A non-positive window
// falls back to DefaultWindow.
func NewCoordinator(
	uowFactory ports.UnitOfWorkFactory,
	riders ports.RiderDirectory,
	publisher ports.EventPublisher,
	clk clock.Clock,
	window time.Duration,
	logger *slog.Logger,
) *Coordinator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Coordinator{
		uowFactory: uowFactory,
		riders:     riders,
		publisher:  publisher,
		clock:      clk,
		window:     window,
		logger:     logger.With("component", "dispatch_coordinator"),
		locks:      make(map[kernel.UUID]*sync.Mutex),
		timers:     make(map[kernel.UUID]*time.Timer),
	}
}

// orderLock returns the mutex that serializes all coordinator work for one
// order. The map only grows with orders that ever opened a window; entries
// are cheap and bounded by order volume.
func (c *Coordinator) orderLock(orderID kernel.UUID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[orderID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[orderID] = lock
	}
	return lock
}

// Broadcast opens one acceptance window for an order in ready_for_rider.
//
// It consults the external rider directory for the eligible set, creates
// one pending offer per rider sharing a single expiry measured from
// broadcast time, persists them, invites every rider with an
// order:available event (order id only, no address details), and arms the
// window timer. A broadcast with zero eligible riders still arms the timer
// so the retryable condition is surfaced when it elapses.
//
// Broadcast never fires on its own after an expired window: re-invocation
// is an explicit external action (restaurant retry or supervising
// scheduler). That backpressure is deliberate: perpetual silent retry
// would mask a systemic shortage of riders.
func (c *Coordinator) Broadcast(ctx context.Context, orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	lock := c.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return err
	}

	if aggregate.Status() != order.ReadyForRider {
		return ErrOrderNotReady
	}

	riderIDs, err := c.riders.EligibleRiders(ctx, aggregate.Restaurant())
	if err != nil {
		return err
	}

	now := c.clock.Now()
	expiresAt := now.Add(c.window)

	offers := make([]*offer.DispatchOffer, 0, len(riderIDs))
	offerRepo := uow.OfferRepository()
	for _, riderID := range riderIDs {
		dispatchOffer, offerErr := offer.NewDispatchOffer(orderID, riderID, now, expiresAt)
		if offerErr != nil {
			return offerErr
		}
		if offerErr = offerRepo.Add(ctx, dispatchOffer); offerErr != nil {
			return offerErr
		}
		offers = append(offers, dispatchOffer)
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	for _, dispatchOffer := range offers {
		c.publisher.Publish(ports.RiderRoom(dispatchOffer.RiderID()), order.OrderAvailable{OrderID: orderID})
	}

	c.armTimer(orderID)

	c.logger.InfoContext(ctx, "acceptance window opened",
		"order_id", orderID.String(),
		"eligible_riders", len(riderIDs),
		"window", c.window.String())
	return nil
}

// Accept resolves one rider's accept request for an order.
//
// The first accept to reach the per-order lock while the order is still
// ready_for_rider and the rider's offer is open wins. Winning applies four
// effects atomically under the lock and one transaction: the order moves
// to rider_assigned, the winning offer is marked accepted, every other
// pending offer is withdrawn, and order:rider_assigned goes to the
// customer room and every withdrawn rider's room. A losing accept fails
// with ErrOfferNoLongerAvailable and mutates nothing.
//
// Accept trusts the call itself, not a re-check of rider availability: a
// rider flipping offline as the accept lands does not void a live
// customer-facing commitment.
func (c *Coordinator) Accept(ctx context.Context, orderID, riderID kernel.UUID) (*order.Order, error) {
	if err := errors.Join(orderID.Validate(), riderID.Validate()); err != nil {
		return nil, err
	}

	lock := c.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	offerRepo := uow.OfferRepository()

	aggregate, err := orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if aggregate.Status() != order.ReadyForRider {
		return nil, ErrOfferNoLongerAvailable
	}

	winning, err := offerRepo.Get(ctx, orderID, riderID)
	if err != nil {
		return nil, ErrOfferNoLongerAvailable
	}

	now := c.clock.Now()
	if err = winning.Accept(now); err != nil {
		return nil, ErrOfferNoLongerAvailable
	}

	if err = aggregate.AssignRider(riderID, now); err != nil {
		return nil, err
	}

	pending, err := offerRepo.GetPendingByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// The winner's own offer is still pending in storage at this point; it
	// resolves to accepted, not withdrawn, and its rider must not get the
	// withdrawal notification.
	withdrawn := make([]*offer.DispatchOffer, 0, len(pending))
	for _, losing := range pending {
		if losing.RiderID().IsEqual(riderID) {
			continue
		}
		if wErr := losing.Withdraw(); wErr != nil {
			return nil, wErr
		}
		if wErr := offerRepo.Update(ctx, losing); wErr != nil {
			return nil, wErr
		}
		withdrawn = append(withdrawn, losing)
	}

	if err = offerRepo.Update(ctx, winning); err != nil {
		return nil, err
	}
	if err = orders.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	c.cancelTimer(orderID)

	for _, event := range aggregate.PopEvents() {
		switch e := event.(type) {
		case order.OrderStatusChanged:
			c.publisher.Publish(ports.UserRoom(aggregate.Customer()), e)
		case order.OrderRiderAssigned:
			c.publisher.Publish(ports.UserRoom(aggregate.Customer()), e)
			for _, losing := range withdrawn {
				c.publisher.Publish(ports.RiderRoom(losing.RiderID()), e)
			}
		}
	}

	c.logger.InfoContext(ctx, "rider assigned",
		"order_id", orderID.String(),
		"rider_id", riderID.String(),
		"withdrawn_offers", len(withdrawn))
	return aggregate, nil
}

// CancelWindow drops the order's timer without touching storage. Called
// when the order leaves ready_for_rider by a path other than acceptance,
// such as manual cancellation.
func (c *Coordinator) CancelWindow(orderID kernel.UUID) {
	c.cancelTimer(orderID)
}

// Stop cancels every open window timer. Pending offers stay in storage;
// the sweep job finalizes them if the process does not come back in time.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for orderID, timer := range c.timers {
		timer.Stop()
		delete(c.timers, orderID)
	}
}

func (c *Coordinator) armTimer(orderID kernel.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.timers[orderID]; ok {
		timer.Stop()
	}
	c.timers[orderID] = time.AfterFunc(c.window, func() {
		c.expireWindow(orderID)
	})
}

func (c *Coordinator) cancelTimer(orderID kernel.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.timers[orderID]; ok {
		timer.Stop()
		delete(c.timers, orderID)
	}
}

// expireWindow finalizes a window that elapsed with zero acceptances. The
// order stays in ready_for_rider and the retryable condition is surfaced
// to the restaurant room; there is no automatic re-broadcast.
//
// A timer that lost the race against Stop can still get here; the status
// re-check under the order lock makes a stale firing a no-op.
func (c *Coordinator) expireWindow(orderID kernel.UUID) {
	ctx := context.Background()

	lock := c.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	delete(c.timers, orderID)
	c.mu.Unlock()

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		c.logger.ErrorContext(ctx, "window expiry failed", "order_id", orderID.String(), "error", err)
		return
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	aggregate, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		c.logger.ErrorContext(ctx, "window expiry failed", "order_id", orderID.String(), "error", err)
		return
	}

	if aggregate.Status() != order.ReadyForRider {
		// The order was claimed or cancelled while this firing was queued.
		return
	}

	offerRepo := uow.OfferRepository()
	pending, err := offerRepo.GetPendingByOrder(ctx, orderID)
	if err != nil {
		c.logger.ErrorContext(ctx, "window expiry failed", "order_id", orderID.String(), "error", err)
		return
	}

	for _, dispatchOffer := range pending {
		if expireErr := dispatchOffer.Expire(); expireErr != nil {
			c.logger.ErrorContext(ctx, "window expiry failed", "order_id", orderID.String(), "error", expireErr)
			return
		}
		if expireErr := offerRepo.Update(ctx, dispatchOffer); expireErr != nil {
			c.logger.ErrorContext(ctx, "window expiry failed", "order_id", orderID.String(), "error", expireErr)
			return
		}
	}

	if err = uow.Commit(ctx); err != nil {
		c.logger.ErrorContext(ctx, "window expiry failed", "order_id", orderID.String(), "error", err)
		return
	}

	c.publisher.Publish(ports.RestaurantRoom(aggregate.Restaurant()), order.OrderStatusChanged{
		OrderID: orderID,
		From:    order.ReadyForRider,
		To:      order.ReadyForRider,
		At:      c.clock.Now(),
	})

	c.logger.WarnContext(ctx, "acceptance window elapsed with no acceptance; awaiting explicit retry",
		"order_id", orderID.String(),
		"expired_offers", len(pending))
}
