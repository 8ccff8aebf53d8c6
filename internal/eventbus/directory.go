package eventbus

import (
	"cmp"
	"context"
	"slices"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"
)

// ConnectedRiders returns the ids of riders with at least one live session,
// deduplicated in connection order.
func (b *Bus) ConnectedRiders() []kernel.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()

	riderSessions := make([]*Session, 0)
	for _, session := range b.sessions {
		if session.role == order.RoleRider {
			riderSessions = append(riderSessions, session)
		}
	}
	slices.SortFunc(riderSessions, func(a, b *Session) int {
		return cmp.Compare(a.id, b.id)
	})

	seen := make(map[kernel.UUID]struct{})
	riders := make([]kernel.UUID, 0, len(riderSessions))
	for _, session := range riderSessions {
		if _, dup := seen[session.actorID]; dup {
			continue
		}
		seen[session.actorID] = struct{}{}
		riders = append(riders, session.actorID)
	}
	return riders
}

// RiderDirectory implements ports.RiderDirectory on top of the session
// registry: a rider is eligible for an order while it holds a live session.
// Proximity filtering is left to whoever decides to connect the rider.
type RiderDirectory struct {
	bus *Bus
}

// NewRiderDirectory creates a directory backed by the bus.
func NewRiderDirectory(bus *Bus) *RiderDirectory {
	return &RiderDirectory{bus: bus}
}

// EligibleRiders returns the connected riders. The restaurant id is not
// used for filtering here.
func (d *RiderDirectory) EligibleRiders(_ context.Context, _ kernel.UUID) ([]kernel.UUID, error) {
	return d.bus.ConnectedRiders(), nil
}
