// Package eventbus fans out order lifecycle events to subscribed actor
// sessions, grouped into rooms keyed as user:<id>, restaurant:<id> and
// rider:<id>.
//
// Delivery is fire-and-forget and at-least-once per connected session:
// a disconnected or saturated session simply misses events until its next
// fetch-triggered resynchronization, so consumers treat every event as an
// invalidate-and-refetch signal. Within one room, events are delivered in
// emission order; no ordering holds across rooms.
package eventbus

import (
	"log/slog"
	"sync"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"
	"snapeats/internal/core/ports"
)

// DefaultSessionBuffer is the per-session event buffer. A session that
// falls this far behind starts dropping events.
const DefaultSessionBuffer = 32

// Session is one actor's transport connection. It is owned by the Bus:
// created on Connect, destroyed on Disconnect, never persisted.
type Session struct {
	id      uint64
	role    order.ActorRole
	actorID kernel.UUID
	events  chan order.Event

	mu    sync.Mutex
	rooms map[string]struct{}
}

// Role returns the actor role this session authenticated as.
func (s *Session) Role() order.ActorRole {
	return s.role
}

// ActorID returns the connected actor's identifier.
func (s *Session) ActorID() kernel.UUID {
	return s.actorID
}

// Events returns the session's delivery channel. The channel is closed on
// disconnect.
func (s *Session) Events() <-chan order.Event {
	return s.events
}

// Bus is the explicit session registry and room publisher. It implements
// ports.EventPublisher.
type Bus struct {
	logger *slog.Logger
	buffer int

	mu       sync.Mutex
	nextID   uint64
	sessions map[uint64]*Session
	rooms    map[string][]*Session
}

// NewBus creates an empty bus. A non-positive buffer falls back to
// DefaultSessionBuffer.
func NewBus(buffer int, logger *slog.Logger) *Bus {
	if buffer <= 0 {
		buffer = DefaultSessionBuffer
	}
	return &Bus{
		logger:   logger.With("component", "eventbus"),
		buffer:   buffer,
		sessions: make(map[uint64]*Session),
		rooms:    make(map[string][]*Session),
	}
}

// Connect registers a new session and joins it to the actor's own room,
// derived from its role. Extra rooms are joined explicitly via Join.
func (b *Bus) Connect(role order.ActorRole, actorID kernel.UUID) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	session := &Session{
		id:      b.nextID,
		role:    role,
		actorID: actorID,
		events:  make(chan order.Event, b.buffer),
		rooms:   make(map[string]struct{}),
	}
	b.sessions[session.id] = session

	if room := ownRoom(role, actorID); room != "" {
		b.joinLocked(session, room)
	}
	return session
}

// Disconnect removes the session from every room and closes its channel.
func (b *Bus) Disconnect(session *Session) {
	if session == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.sessions[session.id]; !ok {
		return
	}
	delete(b.sessions, session.id)

	session.mu.Lock()
	for room := range session.rooms {
		b.leaveRoomLocked(session, room)
	}
	session.rooms = make(map[string]struct{})
	session.mu.Unlock()

	close(session.events)
}

// Join subscribes the session to an additional room.
func (b *Bus) Join(session *Session, room string) {
	if session == nil || room == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.sessions[session.id]; !ok {
		return
	}
	b.joinLocked(session, room)
}

// Leave unsubscribes the session from a room.
func (b *Bus) Leave(session *Session, room string) {
	if session == nil || room == "" {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	session.mu.Lock()
	defer session.mu.Unlock()

	if _, ok := session.rooms[room]; !ok {
		return
	}
	delete(session.rooms, room)
	b.leaveRoomLocked(session, room)
}

// Publish delivers an event to every session in the room, in stable join
// order. Publishing under the bus lock preserves per-room emission order;
// a session whose buffer is full drops the event.
func (b *Bus) Publish(room string, event order.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, session := range b.rooms[room] {
		select {
		case session.events <- event:
		default:
			b.logger.Debug("session buffer full, event dropped",
				"room", room, "event", event.Type())
		}
	}
}

func (b *Bus) joinLocked(session *Session, room string) {
	session.mu.Lock()
	defer session.mu.Unlock()

	if _, ok := session.rooms[room]; ok {
		return
	}
	session.rooms[room] = struct{}{}
	b.rooms[room] = append(b.rooms[room], session)
}

func (b *Bus) leaveRoomLocked(session *Session, room string) {
	members := b.rooms[room]
	for i, member := range members {
		if member.id == session.id {
			b.rooms[room] = append(members[:i:i], members[i+1:]...)
			break
		}
	}
	if len(b.rooms[room]) == 0 {
		delete(b.rooms, room)
	}
}

func ownRoom(role order.ActorRole, actorID kernel.UUID) string {
	switch role {
	case order.RoleCustomer:
		return ports.UserRoom(actorID)
	case order.RoleRestaurant:
		return ports.RestaurantRoom(actorID)
	case order.RoleRider:
		return ports.RiderRoom(actorID)
	default:
		return ""
	}
}
