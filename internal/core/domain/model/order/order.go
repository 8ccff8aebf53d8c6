package order

import (
	"errors"
	"fmt"
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/pkg/errs"
)

// Pricing rules applied once at placement. Totals are immutable afterwards.
const (
	// FreeDeliveryThreshold waives the delivery fee for subtotals at or above it.
	FreeDeliveryThreshold = 250

	// StandardDeliveryFee is charged below the free-delivery threshold.
	StandardDeliveryFee = 49

	// PlatformFee is charged on every order.
	PlatformFee = 7

	// PaymentWindow is how long an order stays claimable by the payment
	// provider before the checkout session is considered stale.
	PaymentWindow = 15 * time.Minute
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder")

	// ErrNotAssignedRider is returned when a rider acts on an order that is
	// assigned to a different rider, or to no rider at all.
	ErrNotAssignedRider = errors.New("not assigned rider")
)

// Order is the aggregate root for one customer order. It owns the lifecycle
// state machine: the struct is mutated only through RequestTransition and
// AssignRider, every applied transition records a domain event, and orders
// are never deleted, only terminal-stamped as delivered or cancelled.
//
// Invariants:
//   - line items, the address snapshot and all monetary amounts are fixed
//     at placement
//   - a rider reference is present if and only if the status is
//     rider_assigned, picked_up or delivered
//   - no transition is applied while payment is not confirmed
type Order struct {
	id           kernel.UUID
	customerID   kernel.UUID
	restaurantID kernel.UUID

	// riderID is the assigned rider (nil until the dispatch race resolves)
	riderID *kernel.UUID

	items           []LineItem
	deliveryAddress DeliveryAddress

	subtotal    int
	deliveryFee int
	platformFee int
	total       int

	paymentMethod PaymentMethod
	paymentStatus PaymentStatus

	status Status

	createdAt time.Time
	expiresAt time.Time

	events []Event

	isConstructed bool
}

// NewOrder creates a paid order in Placed status and computes its totals.
//
// Orders whose payment is not confirmed never enter the state machine:
// a payment status other than paid fails with ErrPaymentNotConfirmed, so
// unpaid checkouts stay invisible to restaurant and rider flows.
//
// The delivery fee is StandardDeliveryFee when the subtotal is below
// FreeDeliveryThreshold and zero otherwise; PlatformFee is always added.
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	items []LineItem,
	deliveryAddress DeliveryAddress,
	paymentMethod PaymentMethod,
	paymentStatus PaymentStatus,
	now time.Time,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		customerID.Validate(),
		restaurantID.Validate(),
		deliveryAddress.Validate(),
		paymentMethod.Validate(),
		paymentStatus.Validate(),
	); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
	}

	if paymentStatus != PaymentPaid {
		return nil, ErrPaymentNotConfirmed
	}

	subtotal := 0
	for _, item := range items {
		subtotal += item.Total()
	}

	deliveryFee := StandardDeliveryFee
	if subtotal >= FreeDeliveryThreshold {
		deliveryFee = 0
	}

	o := &Order{
		id:              id,
		customerID:      customerID,
		restaurantID:    restaurantID,
		items:           append([]LineItem(nil), items...),
		deliveryAddress: deliveryAddress,
		subtotal:        subtotal,
		deliveryFee:     deliveryFee,
		platformFee:     PlatformFee,
		total:           subtotal + deliveryFee + PlatformFee,
		paymentMethod:   paymentMethod,
		paymentStatus:   paymentStatus,
		status:          Placed,
		createdAt:       now,
		expiresAt:       now.Add(PaymentWindow),
		isConstructed:   true,
	}

	o.raise(OrderPlaced{OrderID: id, RestaurantID: restaurantID, At: now})
	return o, nil
}

// RestoreOrder reconstructs an order from persistence without raising events.
// It re-checks the rider invariant so corrupted records cannot re-enter
// the domain.
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	riderID *kernel.UUID,
	items []LineItem,
	deliveryAddress DeliveryAddress,
	subtotal, deliveryFee, platformFee, total int,
	paymentMethod PaymentMethod,
	paymentStatus PaymentStatus,
	status Status,
	createdAt, expiresAt time.Time,
) (*Order, error) {
	if err := errors.Join(
		id.Validate(),
		customerID.Validate(),
		restaurantID.Validate(),
		deliveryAddress.Validate(),
		paymentMethod.Validate(),
		paymentStatus.Validate(),
		status.Validate(),
	); err != nil {
		return nil, err
	}

	if status.RequiresRider() != (riderID != nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause("riderID",
			fmt.Errorf("rider reference is inconsistent with status %s", status))
	}

	return &Order{
		id:              id,
		customerID:      customerID,
		restaurantID:    restaurantID,
		riderID:         riderID,
		items:           append([]LineItem(nil), items...),
		deliveryAddress: deliveryAddress,
		subtotal:        subtotal,
		deliveryFee:     deliveryFee,
		platformFee:     platformFee,
		total:           total,
		paymentMethod:   paymentMethod,
		paymentStatus:   paymentStatus,
		status:          status,
		createdAt:       createdAt,
		expiresAt:       expiresAt,
		isConstructed:   true,
	}, nil
}

// Validate ensures the Order was created through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Customer returns the ordering customer's identifier.
func (o *Order) Customer() kernel.UUID {
	return o.customerID
}

// Restaurant returns the fulfilling restaurant's identifier.
func (o *Order) Restaurant() kernel.UUID {
	return o.restaurantID
}

// Rider returns the assigned rider's identifier, or nil before assignment.
func (o *Order) Rider() *kernel.UUID {
	return o.riderID
}

// Items returns a copy of the ordered line items.
func (o *Order) Items() []LineItem {
	return append([]LineItem(nil), o.items...)
}

// DeliveryAddress returns the address snapshot taken at placement.
func (o *Order) DeliveryAddress() DeliveryAddress {
	return o.deliveryAddress
}

// Subtotal returns the sum of line item totals.
func (o *Order) Subtotal() int {
	return o.subtotal
}

// DeliveryFee returns the delivery fee computed at placement.
func (o *Order) DeliveryFee() int {
	return o.deliveryFee
}

// PlatformFee returns the platform fee computed at placement.
func (o *Order) PlatformFee() int {
	return o.platformFee
}

// Total returns subtotal + delivery fee + platform fee.
func (o *Order) Total() int {
	return o.total
}

// PaymentMethod returns the provider chosen at checkout.
func (o *Order) PaymentMethod() PaymentMethod {
	return o.paymentMethod
}

// PaymentStatus returns the state of the payment confirmation signal.
func (o *Order) PaymentStatus() PaymentStatus {
	return o.paymentStatus
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// CreatedAt returns the placement timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// ExpiresAt returns the checkout-session expiry timestamp.
func (o *Order) ExpiresAt() time.Time {
	return o.expiresAt
}

// PopEvents returns and clears the domain events recorded since the last
// call. The application layer publishes them after a successful commit.
func (o *Order) PopEvents() []Event {
	events := o.events
	o.events = nil
	return events
}

// RequestTransition applies one actor-requested lifecycle transition.
//
// Rules enforced here on top of the status graph:
//   - payment must be confirmed, whatever the requested pair
//   - a rider may only act on the order it is assigned to
//   - rider assignment never happens through this method; the dispatch
//     coordinator resolves a won offer via AssignRider
//   - cancellation clears the rider reference so the rider invariant holds
//
// Re-requesting an already-applied transition succeeds without recording
// a duplicate event.
func (o *Order) RequestTransition(requested Status, role ActorRole, actorID kernel.UUID, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}

	if o.paymentStatus != PaymentPaid {
		return ErrPaymentNotConfirmed
	}

	if role == RoleRider {
		if o.riderID == nil || !o.riderID.IsEqual(actorID) {
			return ErrNotAssignedRider
		}
	}

	if requested == RiderAssigned {
		return &InvalidTransitionError{From: o.status, To: requested, Role: role}
	}

	next, applied, err := o.status.TransitionTo(requested, role)
	if err != nil {
		return err
	}
	if !applied {
		return nil
	}

	from := o.status
	o.status = next
	if next == Cancelled {
		o.riderID = nil
	}

	o.raise(OrderStatusChanged{OrderID: o.id, From: from, To: next, At: now})
	return nil
}

// AssignRider resolves a won dispatch offer: the coordinator moves the order
// from ReadyForRider to RiderAssigned and pins the winning rider. Any other
// current status fails with an InvalidTransitionError, which is how losing
// accept requests are detected without mutating state.
func (o *Order) AssignRider(riderID kernel.UUID, now time.Time) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if err := riderID.Validate(); err != nil {
		return err
	}

	if o.paymentStatus != PaymentPaid {
		return ErrPaymentNotConfirmed
	}

	next, applied, err := o.status.TransitionTo(RiderAssigned, RoleCoordinator)
	if err != nil {
		return err
	}
	if !applied {
		// A repeat resolution must not swap the pinned rider or re-raise
		// the assignment events.
		return &InvalidTransitionError{From: o.status, To: RiderAssigned, Role: RoleCoordinator}
	}

	from := o.status
	o.status = next
	o.riderID = &riderID

	o.raise(OrderStatusChanged{OrderID: o.id, From: from, To: next, At: now})
	o.raise(OrderRiderAssigned{OrderID: o.id, RiderID: riderID, At: now})
	return nil
}

func (o *Order) raise(event Event) {
	o.events = append(o.events, event)
}
