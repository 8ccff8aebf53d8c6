package order_test

import (
	"errors"
	"testing"

	"snapeats/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_TransitionTo(t *testing.T) {
	t.Run("should allow each forward edge for its owning role", func(t *testing.T) {
		testCases := []struct {
			from order.Status
			to   order.Status
			role order.ActorRole
		}{
			{order.Placed, order.Accepted, order.RoleRestaurant},
			{order.Accepted, order.Preparing, order.RoleRestaurant},
			{order.Preparing, order.ReadyForRider, order.RoleRestaurant},
			{order.ReadyForRider, order.RiderAssigned, order.RoleCoordinator},
			{order.RiderAssigned, order.PickedUp, order.RoleRider},
			{order.PickedUp, order.Delivered, order.RoleRider},
		}

		for _, tc := range testCases {
			next, applied, err := tc.from.TransitionTo(tc.to, tc.role)

			require.NoError(t, err, "%s -> %s by %s", tc.from, tc.to, tc.role)
			assert.True(t, applied)
			assert.Equal(t, tc.to, next)
		}
	})

	t.Run("should reject forward edge requested by wrong role", func(t *testing.T) {
		testCases := []struct {
			from order.Status
			to   order.Status
			role order.ActorRole
		}{
			{order.Placed, order.Accepted, order.RoleCustomer},
			{order.Placed, order.Accepted, order.RoleRider},
			{order.Accepted, order.Preparing, order.RoleCoordinator},
			{order.Preparing, order.ReadyForRider, order.RoleCustomer},
			{order.ReadyForRider, order.RiderAssigned, order.RoleRider},
			{order.ReadyForRider, order.RiderAssigned, order.RoleRestaurant},
			{order.RiderAssigned, order.PickedUp, order.RoleRestaurant},
			{order.PickedUp, order.Delivered, order.RoleCustomer},
		}

		for _, tc := range testCases {
			_, _, err := tc.from.TransitionTo(tc.to, tc.role)

			require.Error(t, err, "%s -> %s by %s", tc.from, tc.to, tc.role)
			assert.ErrorIs(t, err, order.ErrInvalidTransition)
		}
	})

	t.Run("should reject skipped states", func(t *testing.T) {
		testCases := []struct {
			from order.Status
			to   order.Status
			role order.ActorRole
		}{
			{order.Placed, order.Preparing, order.RoleRestaurant},
			{order.Placed, order.ReadyForRider, order.RoleRestaurant},
			{order.Accepted, order.ReadyForRider, order.RoleRestaurant},
			{order.Placed, order.Delivered, order.RoleRider},
			{order.ReadyForRider, order.PickedUp, order.RoleRider},
			{order.RiderAssigned, order.Delivered, order.RoleRider},
		}

		for _, tc := range testCases {
			_, _, err := tc.from.TransitionTo(tc.to, tc.role)

			require.Error(t, err, "%s -> %s by %s", tc.from, tc.to, tc.role)
			assert.ErrorIs(t, err, order.ErrInvalidTransition)
		}
	})

	t.Run("should reject backward edges", func(t *testing.T) {
		_, _, err := order.Preparing.TransitionTo(order.Accepted, order.RoleRestaurant)
		require.Error(t, err)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)

		_, _, err = order.PickedUp.TransitionTo(order.RiderAssigned, order.RoleRider)
		require.Error(t, err)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)
	})

	t.Run("should apply ready_for_rider self-edge as re-broadcast retry", func(t *testing.T) {
		for _, role := range []order.ActorRole{order.RoleRestaurant, order.RoleCoordinator} {
			next, applied, err := order.ReadyForRider.TransitionTo(order.ReadyForRider, role)

			require.NoError(t, err, "retry by %s", role)
			assert.True(t, applied)
			assert.Equal(t, order.ReadyForRider, next)
		}
	})

	t.Run("should reject ready_for_rider self-edge by non-owning roles", func(t *testing.T) {
		for _, role := range []order.ActorRole{order.RoleCustomer, order.RoleRider} {
			_, _, err := order.ReadyForRider.TransitionTo(order.ReadyForRider, role)

			require.Error(t, err, "retry by %s", role)
			assert.ErrorIs(t, err, order.ErrInvalidTransition)
		}
	})

	t.Run("should allow cancellation from every pre-pickup state", func(t *testing.T) {
		before := []order.Status{
			order.Placed, order.Accepted, order.Preparing,
			order.ReadyForRider, order.RiderAssigned,
		}

		for _, from := range before {
			for _, role := range []order.ActorRole{order.RoleCustomer, order.RoleRestaurant} {
				next, applied, err := from.TransitionTo(order.Cancelled, role)

				require.NoError(t, err, "cancel from %s by %s", from, role)
				assert.True(t, applied)
				assert.Equal(t, order.Cancelled, next)
			}
		}
	})

	t.Run("should reject cancellation after pickup", func(t *testing.T) {
		for _, from := range []order.Status{order.PickedUp, order.Delivered} {
			_, _, err := from.TransitionTo(order.Cancelled, order.RoleCustomer)

			require.Error(t, err, "cancel from %s", from)
			assert.ErrorIs(t, err, order.ErrInvalidTransition)
		}
	})

	t.Run("should reject cancellation by rider or coordinator", func(t *testing.T) {
		for _, role := range []order.ActorRole{order.RoleRider, order.RoleCoordinator} {
			_, _, err := order.Preparing.TransitionTo(order.Cancelled, role)

			require.Error(t, err, "cancel by %s", role)
			assert.ErrorIs(t, err, order.ErrInvalidTransition)
		}
	})

	t.Run("should treat repeated request as no-op when role owns an inbound edge", func(t *testing.T) {
		next, applied, err := order.Accepted.TransitionTo(order.Accepted, order.RoleRestaurant)

		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, order.Accepted, next)
	})

	t.Run("should treat repeated cancellation as no-op", func(t *testing.T) {
		for _, role := range []order.ActorRole{order.RoleCustomer, order.RoleRestaurant} {
			next, applied, err := order.Cancelled.TransitionTo(order.Cancelled, role)

			require.NoError(t, err, "repeat cancel by %s", role)
			assert.False(t, applied)
			assert.Equal(t, order.Cancelled, next)
		}
	})

	t.Run("should reject repeated request by role that does not own an inbound edge", func(t *testing.T) {
		_, _, err := order.Accepted.TransitionTo(order.Accepted, order.RoleCustomer)
		require.Error(t, err)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)

		_, _, err = order.Cancelled.TransitionTo(order.Cancelled, order.RoleRider)
		require.Error(t, err)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)
	})

	t.Run("should reject transitions out of terminal states", func(t *testing.T) {
		_, _, err := order.Delivered.TransitionTo(order.Placed, order.RoleRestaurant)
		require.Error(t, err)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)

		_, _, err = order.Cancelled.TransitionTo(order.Accepted, order.RoleRestaurant)
		require.Error(t, err)
		assert.ErrorIs(t, err, order.ErrInvalidTransition)
	})

	t.Run("should fail on invalid current status", func(t *testing.T) {
		_, _, err := order.Unknown.TransitionTo(order.Placed, order.RoleRestaurant)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status")
	})

	t.Run("should fail on invalid requested status", func(t *testing.T) {
		_, _, err := order.Placed.TransitionTo(order.Status(99), order.RoleRestaurant)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status")
	})

	t.Run("should fail on invalid role", func(t *testing.T) {
		_, _, err := order.Placed.TransitionTo(order.Accepted, order.RoleUnknown)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "actor role")
	})

	t.Run("should name both statuses and the role in the error", func(t *testing.T) {
		_, _, err := order.Placed.TransitionTo(order.Delivered, order.RoleRider)

		require.Error(t, err)

		var transitionErr *order.InvalidTransitionError
		require.True(t, errors.As(err, &transitionErr))
		assert.Equal(t, order.Placed, transitionErr.From)
		assert.Equal(t, order.Delivered, transitionErr.To)
		assert.Equal(t, order.RoleRider, transitionErr.Role)
		assert.Contains(t, err.Error(), "placed")
		assert.Contains(t, err.Error(), "delivered")
		assert.Contains(t, err.Error(), "rider")
	})
}

func TestParseStatus(t *testing.T) {
	t.Run("should parse every wire name", func(t *testing.T) {
		testCases := map[string]order.Status{
			"placed":          order.Placed,
			"accepted":        order.Accepted,
			"preparing":       order.Preparing,
			"ready_for_rider": order.ReadyForRider,
			"rider_assigned":  order.RiderAssigned,
			"picked_up":       order.PickedUp,
			"delivered":       order.Delivered,
			"cancelled":       order.Cancelled,
		}

		for wire, want := range testCases {
			got, err := order.ParseStatus(wire)

			require.NoError(t, err, wire)
			assert.Equal(t, want, got)
			assert.Equal(t, wire, got.String())
		}
	})

	t.Run("should reject unknown strings", func(t *testing.T) {
		for _, wire := range []string{"", "unknown", "PLACED", "ready"} {
			got, err := order.ParseStatus(wire)

			require.Error(t, err, wire)
			assert.Equal(t, order.Unknown, got)
		}
	})
}

func TestStatus_Predicates(t *testing.T) {
	t.Run("should report terminal statuses", func(t *testing.T) {
		assert.True(t, order.Delivered.IsTerminal())
		assert.True(t, order.Cancelled.IsTerminal())
		assert.False(t, order.Placed.IsTerminal())
		assert.False(t, order.RiderAssigned.IsTerminal())
	})

	t.Run("should require rider only after assignment", func(t *testing.T) {
		withRider := []order.Status{order.RiderAssigned, order.PickedUp, order.Delivered}
		withoutRider := []order.Status{
			order.Placed, order.Accepted, order.Preparing,
			order.ReadyForRider, order.Cancelled,
		}

		for _, s := range withRider {
			assert.True(t, s.RequiresRider(), s.String())
		}
		for _, s := range withoutRider {
			assert.False(t, s.RequiresRider(), s.String())
		}
	})

	t.Run("should limit delivery leg to rider_assigned and picked_up", func(t *testing.T) {
		assert.True(t, order.RiderAssigned.InDeliveryLeg())
		assert.True(t, order.PickedUp.InDeliveryLeg())
		assert.False(t, order.ReadyForRider.InDeliveryLeg())
		assert.False(t, order.Delivered.InDeliveryLeg())
		assert.False(t, order.Cancelled.InDeliveryLeg())
	})
}
