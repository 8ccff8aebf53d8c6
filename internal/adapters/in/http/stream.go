package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// StreamEvents handles GET /api/v1/events - the server-sent-events feed of
// one actor's rooms. A session exists only while this request is open:
// connecting joins the actor's own room, disconnecting drops everything.
//
// Connected riders are also what the dispatch coordinator considers
// eligible, so a rider opens this stream to go on shift.
func (s *Server) StreamEvents(ctx echo.Context) error {
	role, err := order.ParseActorRole(ctx.QueryParam("role"))
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	actorID, err := kernel.UUIDFromString(ctx.QueryParam("actor_id"))
	if err != nil {
		return badRequest(ctx, "invalid actor_id: "+err.Error())
	}

	session := s.bus.Connect(role, actorID)
	defer s.bus.Disconnect(session)

	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	for {
		select {
		case <-ctx.Request().Context().Done():
			return nil
		case event, ok := <-session.Events():
			if !ok {
				return nil
			}
			payload, marshalErr := json.Marshal(eventPayload(event))
			if marshalErr != nil {
				continue
			}
			if _, writeErr := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event.Type(), payload); writeErr != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

// eventPayload flattens a domain event into its wire shape. Identifiers go
// out as strings, timestamps as RFC 3339.
func eventPayload(event order.Event) map[string]any {
	switch e := event.(type) {
	case order.OrderPlaced:
		return map[string]any{
			"order_id":      e.OrderID.String(),
			"restaurant_id": e.RestaurantID.String(),
			"at":            e.At.Format(time.RFC3339Nano),
		}
	case order.OrderStatusChanged:
		return map[string]any{
			"order_id": e.OrderID.String(),
			"from":     e.From.String(),
			"to":       e.To.String(),
			"at":       e.At.Format(time.RFC3339Nano),
		}
	case order.OrderAvailable:
		return map[string]any{
			"order_id": e.OrderID.String(),
		}
	case order.OrderRiderAssigned:
		return map[string]any{
			"order_id": e.OrderID.String(),
			"rider_id": e.RiderID.String(),
			"at":       e.At.Format(time.RFC3339Nano),
		}
	case order.RiderLocation:
		return map[string]any{
			"order_id":  e.OrderID.String(),
			"latitude":  e.Latitude,
			"longitude": e.Longitude,
			"at":        e.At.Format(time.RFC3339Nano),
		}
	default:
		return map[string]any{}
	}
}
