package order

import (
	"errors"
	"fmt"

	"snapeats/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	placed ──> accepted ──> preparing ──> ready_for_rider ──> rider_assigned ──> picked_up ──> delivered
//	                                            │ ▲
//	                                            └─┘ (re-broadcast retry)
//
//	cancelled is reachable from every state before picked_up.
//
// Each edge is owned by a specific actor role; see TransitionTo.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Placed is the initial status, entered only once payment is confirmed.
	Placed

	// Accepted indicates the restaurant has taken the order.
	Accepted

	// Preparing indicates the kitchen is working on the order.
	Preparing

	// ReadyForRider indicates the order awaits rider assignment.
	// The dispatch coordinator opens an acceptance window in this state.
	ReadyForRider

	// RiderAssigned indicates exactly one rider won the dispatch race.
	RiderAssigned

	// PickedUp indicates the rider has collected the order.
	PickedUp

	// Delivered is the successful terminal state.
	Delivered

	// Cancelled is the unsuccessful terminal state.
	Cancelled
)

// ErrInvalidTransition is the sentinel for transition-graph violations.
// Use errors.Is against it; the concrete error names both statuses.
var ErrInvalidTransition = errors.New("invalid transition")

// InvalidTransitionError reports a requested edge that is not in the
// transition graph, or one requested by a role that does not own it.
type InvalidTransitionError struct {
	From Status
	To   Status
	Role ActorRole
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s (requested by %s)", e.From, e.To, e.Role)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:       "unknown",
		Placed:        "placed",
		Accepted:      "accepted",
		Preparing:     "preparing",
		ReadyForRider: "ready_for_rider",
		RiderAssigned: "rider_assigned",
		PickedUp:      "picked_up",
		Delivered:     "delivered",
		Cancelled:     "cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	m := getStatusStrings()
	delete(m, Unknown)
	return m
}

// ParseStatus converts a wire string into a Status.
// Returns a ValueIsInvalidError for unrecognized strings.
func ParseStatus(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status",
		fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the Status value is one of the defined lifecycle states.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status, or "unknown" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether the status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// RequiresRider reports whether an order in this status must carry a rider
// reference. The rider invariant: riderID is non-nil iff RequiresRider.
func (s Status) RequiresRider() bool {
	switch s {
	case RiderAssigned, PickedUp, Delivered:
		return true
	default:
		return false
	}
}

// InDeliveryLeg reports whether the assigned rider is en route, which is
// the only span during which position reports are relayed.
func (s Status) InDeliveryLeg() bool {
	return s == RiderAssigned || s == PickedUp
}

// IsBeforePickup reports whether the order can still be cancelled.
func (s Status) IsBeforePickup() bool {
	switch s {
	case Placed, Accepted, Preparing, ReadyForRider, RiderAssigned:
		return true
	default:
		return false
	}
}

type edge struct {
	from Status
	to   Status
}

// allowedTransitions maps each forward edge to the roles that own it.
// Cancellation is handled separately because it is reachable from every
// pre-pickup state.
func allowedTransitions() map[edge][]ActorRole {
	return map[edge][]ActorRole{
		{Placed, Accepted}:             {RoleRestaurant},
		{Accepted, Preparing}:          {RoleRestaurant},
		{Preparing, ReadyForRider}:     {RoleRestaurant},
		{ReadyForRider, ReadyForRider}: {RoleRestaurant, RoleCoordinator},
		{ReadyForRider, RiderAssigned}: {RoleCoordinator},
		{RiderAssigned, PickedUp}:      {RoleRider},
		{PickedUp, Delivered}:          {RoleRider},
	}
}

func roleIn(role ActorRole, roles []ActorRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// canCancel reports whether role may cancel an order in status s.
func canCancel(s Status, role ActorRole) bool {
	return s.IsBeforePickup() && (role == RoleCustomer || role == RoleRestaurant)
}

// TransitionTo resolves a transition request against the graph.
//
// It returns the resulting status and whether the transition was actually
// applied. Re-requesting an already-applied transition (requested equals
// current and the requesting role owns an edge into it) succeeds without
// being applied, so callers emit no duplicate events. The one self-edge
// that IS applied is ReadyForRider -> ReadyForRider, the explicit
// re-broadcast retry.
//
// Any pair not in the table, or requested by a role that does not own it,
// fails with an InvalidTransitionError naming both statuses.
func (s Status) TransitionTo(requested Status, role ActorRole) (Status, bool, error) {
	if err := s.Validate(); err != nil {
		return Unknown, false, err
	}
	if err := requested.Validate(); err != nil {
		return Unknown, false, err
	}
	if err := role.Validate(); err != nil {
		return Unknown, false, err
	}

	if roles, ok := allowedTransitions()[edge{s, requested}]; ok && roleIn(role, roles) {
		return requested, true, nil
	}

	if requested == Cancelled && canCancel(s, role) {
		return Cancelled, true, nil
	}

	if requested == s && s.hasInboundEdgeFor(role) {
		return s, false, nil
	}

	return Unknown, false, &InvalidTransitionError{From: s, To: requested, Role: role}
}

// hasInboundEdgeFor reports whether role owns any edge whose target is s,
// including the cancellation rule. Used to recognize idempotent repeats.
func (s Status) hasInboundEdgeFor(role ActorRole) bool {
	if s == Cancelled {
		return role == RoleCustomer || role == RoleRestaurant
	}
	for e, roles := range allowedTransitions() {
		if e.to == s && e.from != e.to && roleIn(role, roles) {
			return true
		}
	}
	return false
}
