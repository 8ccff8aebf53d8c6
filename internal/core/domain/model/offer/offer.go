// Package offer implements the DispatchOffer aggregate: one candidate
// rider's outstanding invitation for one order.
//
// Offers for an order are created together when the order becomes ready for
// a rider and share a single acceptance window measured from broadcast time,
// not from each rider's receipt time. At most one offer per order may ever
// resolve to accepted; the dispatch coordinator's per-order critical section
// enforces that across the whole candidate set.
package offer

import (
	"errors"
	"fmt"
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/pkg/errs"
)

// ErrOfferIsNotConstructed is returned when a DispatchOffer instance was not
// created through NewDispatchOffer or RestoreDispatchOffer.
var ErrOfferIsNotConstructed = errors.New("DispatchOffer must be created via NewDispatchOffer or RestoreDispatchOffer")

// ErrOfferNotPending is returned when finalizing an offer that was already
// resolved.
var ErrOfferNotPending = errors.New("offer is not pending")

// ErrOfferExpired is returned when an accept arrives after the acceptance
// window has elapsed.
var ErrOfferExpired = errors.New("offer window has elapsed")

// Outcome is the resolution state of a dispatch offer.
type Outcome int

const (
	// OutcomeUnknown represents an invalid or undefined outcome.
	OutcomeUnknown Outcome = iota

	// Pending means the rider has not responded and the window is open.
	Pending

	// Accepted means this rider won the dispatch race for the order.
	Accepted

	// Expired means the window elapsed with no response.
	Expired

	// Withdrawn means another rider claimed the order first.
	Withdrawn
)

func getOutcomeStrings() map[Outcome]string {
	return map[Outcome]string{
		Pending:   "pending",
		Accepted:  "accepted",
		Expired:   "expired",
		Withdrawn: "withdrawn",
	}
}

// Validate checks that the value is one of the defined outcomes.
func (o Outcome) Validate() error {
	if _, ok := getOutcomeStrings()[o]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("outcome",
			fmt.Errorf("%d is not a valid outcome", o))
	}
	return nil
}

// String returns the wire name of the outcome.
func (o Outcome) String() string {
	if s, ok := getOutcomeStrings()[o]; ok {
		return s
	}
	return "unknown"
}

// IsFinal reports whether the outcome permits no further resolution.
func (o Outcome) IsFinal() bool {
	return o == Accepted || o == Expired || o == Withdrawn
}

// DispatchOffer is one rider's invitation for one order. Its identity is
// the (order id, rider id) pair.
type DispatchOffer struct {
	orderID   kernel.UUID
	riderID   kernel.UUID
	createdAt time.Time
	expiresAt time.Time
	outcome   Outcome

	isConstructed bool
}

// NewDispatchOffer creates a pending offer for one eligible rider.
// expiresAt is the shared window end for the whole broadcast and must be
// after createdAt.
func NewDispatchOffer(orderID, riderID kernel.UUID, createdAt, expiresAt time.Time) (*DispatchOffer, error) {
	if err := errors.Join(orderID.Validate(), riderID.Validate()); err != nil {
		return nil, err
	}
	if !expiresAt.After(createdAt) {
		return nil, errs.NewValueIsInvalidErrorWithCause("expiresAt",
			fmt.Errorf("window end %s is not after broadcast time %s", expiresAt, createdAt))
	}

	return &DispatchOffer{
		orderID:       orderID,
		riderID:       riderID,
		createdAt:     createdAt,
		expiresAt:     expiresAt,
		outcome:       Pending,
		isConstructed: true,
	}, nil
}

// RestoreDispatchOffer reconstructs an offer from persistence.
func RestoreDispatchOffer(orderID, riderID kernel.UUID, createdAt, expiresAt time.Time, outcome Outcome) (*DispatchOffer, error) {
	if err := errors.Join(orderID.Validate(), riderID.Validate(), outcome.Validate()); err != nil {
		return nil, err
	}

	return &DispatchOffer{
		orderID:       orderID,
		riderID:       riderID,
		createdAt:     createdAt,
		expiresAt:     expiresAt,
		outcome:       outcome,
		isConstructed: true,
	}, nil
}

// Validate ensures the offer was created through a constructor.
func (d *DispatchOffer) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrOfferIsNotConstructed
	}
	return nil
}

// OrderID returns the order this offer invites a rider to.
func (d *DispatchOffer) OrderID() kernel.UUID {
	return d.orderID
}

// RiderID returns the invited rider.
func (d *DispatchOffer) RiderID() kernel.UUID {
	return d.riderID
}

// CreatedAt returns the broadcast time.
func (d *DispatchOffer) CreatedAt() time.Time {
	return d.createdAt
}

// ExpiresAt returns the shared window end.
func (d *DispatchOffer) ExpiresAt() time.Time {
	return d.expiresAt
}

// Outcome returns the offer's resolution state.
func (d *DispatchOffer) Outcome() Outcome {
	return d.outcome
}

// IsOpen reports whether the offer is still acceptable at the given instant.
func (d *DispatchOffer) IsOpen(now time.Time) bool {
	return d.outcome == Pending && now.Before(d.expiresAt)
}

// Accept resolves the offer as won. Fails with ErrOfferNotPending when the
// offer was already finalized, or ErrOfferExpired when the window has
// elapsed; neither failure mutates the offer.
func (d *DispatchOffer) Accept(now time.Time) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.outcome != Pending {
		return ErrOfferNotPending
	}
	if !now.Before(d.expiresAt) {
		return ErrOfferExpired
	}

	d.outcome = Accepted
	return nil
}

// Withdraw finalizes the offer because another rider claimed the order.
func (d *DispatchOffer) Withdraw() error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.outcome != Pending {
		return ErrOfferNotPending
	}

	d.outcome = Withdrawn
	return nil
}

// Expire finalizes the offer because the window elapsed with no acceptance.
func (d *DispatchOffer) Expire() error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.outcome != Pending {
		return ErrOfferNotPending
	}

	d.outcome = Expired
	return nil
}
