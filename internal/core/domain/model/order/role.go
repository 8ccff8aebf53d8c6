package order

import (
	"fmt"

	"snapeats/internal/pkg/errs"
)

// ActorRole identifies which kind of actor is requesting a transition.
// The dispatch coordinator is a system actor: it is the only role allowed
// to move an order into RiderAssigned, and only as the resolution of a
// won dispatch offer.
type ActorRole int

const (
	// RoleUnknown represents an invalid or undefined role.
	RoleUnknown ActorRole = iota

	// RoleCustomer is the ordering customer.
	RoleCustomer

	// RoleRestaurant is the restaurant fulfilling the order.
	RoleRestaurant

	// RoleRider is a delivery rider.
	RoleRider

	// RoleCoordinator is the dispatch coordinator system actor.
	RoleCoordinator
)

func getRoleStrings() map[ActorRole]string {
	return map[ActorRole]string{
		RoleCustomer:    "customer",
		RoleRestaurant:  "restaurant",
		RoleRider:       "rider",
		RoleCoordinator: "coordinator",
	}
}

// ParseActorRole converts a wire string into an ActorRole.
// Returns a ValueIsInvalidError for unrecognized strings.
func ParseActorRole(s string) (ActorRole, error) {
	for role, str := range getRoleStrings() {
		if str == s {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("actor role",
		fmt.Errorf("%q is not a valid actor role", s))
}

// Validate checks that the role is one of the defined actor roles.
func (r ActorRole) Validate() error {
	if _, ok := getRoleStrings()[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("actor role",
			fmt.Errorf("%d is not a valid actor role", r))
	}
	return nil
}

// String returns the wire name of the role, or "unknown" for invalid values.
func (r ActorRole) String() string {
	if s, ok := getRoleStrings()[r]; ok {
		return s
	}
	return "unknown"
}
