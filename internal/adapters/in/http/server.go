// Package http exposes the order lifecycle over REST. Handlers translate
// request payloads into commands and queries and map the domain error
// taxonomy onto HTTP status codes.
package http

import (
	"context"
	"errors"
	"net/http"

	"snapeats/internal/core/application/usecases/commands"
	"snapeats/internal/core/application/usecases/queries"
	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"
	"snapeats/internal/dispatch"
	"snapeats/internal/eventbus"
	"snapeats/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// DispatchAccepter resolves a rider's claim on an open acceptance window.
// Implemented by the dispatch coordinator.
type DispatchAccepter interface {
	Accept(ctx context.Context, orderID, riderID kernel.UUID) (*order.Order, error)
}

// PositionRelay forwards rider position reports to order watchers.
type PositionRelay interface {
	ReportPosition(ctx context.Context, orderID, riderID kernel.UUID, latitude, longitude float64) error
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	placeOrderHandler        commands.PlaceOrderCommandHandler
	requestTransitionHandler commands.RequestTransitionCommandHandler

	getOrderHandler            queries.GetOrderQueryHandler
	getRestaurantOrdersHandler queries.GetRestaurantOrdersQueryHandler

	accepter DispatchAccepter
	relay    PositionRelay
	bus      *eventbus.Bus
}

// NewServer creates an HTTP server with the required handlers and
// collaborators.
func NewServer(
	placeOrderHandler commands.PlaceOrderCommandHandler,
	requestTransitionHandler commands.RequestTransitionCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getRestaurantOrdersHandler queries.GetRestaurantOrdersQueryHandler,
	accepter DispatchAccepter,
	relay PositionRelay,
	bus *eventbus.Bus,
) *Server {
	return &Server{
		placeOrderHandler:        placeOrderHandler,
		requestTransitionHandler: requestTransitionHandler,

		getOrderHandler:            getOrderHandler,
		getRestaurantOrdersHandler: getRestaurantOrdersHandler,

		accepter: accepter,
		relay:    relay,
		bus:      bus,
	}
}

// RegisterRoutes mounts every route on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.PlaceOrder)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/restaurants/:id/orders", s.GetRestaurantOrders)
	api.PUT("/orders/:id/status", s.UpdateOrderStatus)
	api.POST("/orders/:id/accept", s.AcceptOrder)
	api.POST("/orders/:id/location", s.ReportLocation)
	api.GET("/events", s.StreamEvents)
}

// PlaceOrder handles POST /api/v1/orders.
func (s *Server) PlaceOrder(ctx echo.Context) error {
	var req placeOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return badRequest(ctx, "invalid order_id: "+err.Error())
	}
	customerID, err := kernel.UUIDFromString(req.CustomerID)
	if err != nil {
		return badRequest(ctx, "invalid customer_id: "+err.Error())
	}
	restaurantID, err := kernel.UUIDFromString(req.RestaurantID)
	if err != nil {
		return badRequest(ctx, "invalid restaurant_id: "+err.Error())
	}

	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	items := make([]order.LineItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		item, itemErr := order.NewLineItem(itemReq.Name, itemReq.UnitPrice, itemReq.Quantity)
		if itemErr != nil {
			return badRequest(ctx, itemErr.Error())
		}
		items = append(items, item)
	}

	point, err := kernel.NewGeoPoint(req.Address.Latitude, req.Address.Longitude)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	address, err := order.NewDeliveryAddress(req.Address.FormattedAddress, req.Address.Phone, point)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewPlaceOrderCommand(orderID, customerID, restaurantID, items, address, method)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	placed, err := s.placeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, orderFromAggregate(placed))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid order id: "+err.Error())
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	view, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromView(view))
}

// GetRestaurantOrders handles GET /api/v1/restaurants/:id/orders.
func (s *Server) GetRestaurantOrders(ctx echo.Context) error {
	restaurantID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid restaurant id: "+err.Error())
	}

	query, err := queries.NewGetRestaurantOrdersQuery(restaurantID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	views, err := s.getRestaurantOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	response := make([]orderResponse, 0, len(views))
	for _, view := range views {
		response = append(response, orderFromView(view))
	}

	return ctx.JSON(http.StatusOK, response)
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status.
func (s *Server) UpdateOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid order id: "+err.Error())
	}

	var req updateStatusRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	requested, err := order.ParseStatus(req.Status)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	role, err := order.ParseActorRole(req.Role)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	actorID, err := kernel.UUIDFromString(req.ActorID)
	if err != nil {
		return badRequest(ctx, "invalid actor_id: "+err.Error())
	}

	cmd, err := commands.NewRequestTransitionCommand(orderID, requested, role, actorID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	updated, err := s.requestTransitionHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromAggregate(updated))
}

// AcceptOrder handles POST /api/v1/orders/:id/accept - a rider claiming an
// open dispatch offer. First accept wins; the rest get 409.
func (s *Server) AcceptOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid order id: "+err.Error())
	}

	var req acceptOrderRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	riderID, err := kernel.UUIDFromString(req.RiderID)
	if err != nil {
		return badRequest(ctx, "invalid rider_id: "+err.Error())
	}

	claimed, err := s.accepter.Accept(ctx.Request().Context(), orderID, riderID)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromAggregate(claimed))
}

// ReportLocation handles POST /api/v1/orders/:id/location - the assigned
// rider reporting its position during the delivery leg.
func (s *Server) ReportLocation(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "invalid order id: "+err.Error())
	}

	var req reportLocationRequest
	if err = ctx.Bind(&req); err != nil {
		return badRequest(ctx, "invalid request body")
	}

	riderID, err := kernel.UUIDFromString(req.RiderID)
	if err != nil {
		return badRequest(ctx, "invalid rider_id: "+err.Error())
	}

	err = s.relay.ReportPosition(ctx.Request().Context(), orderID, riderID, req.Latitude, req.Longitude)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusAccepted)
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// domainError maps the domain error taxonomy onto HTTP status codes.
func domainError(ctx echo.Context, err error) error {
	var notFoundErr *errs.ObjectNotFoundError

	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFoundErr):
		code = http.StatusNotFound
	case errors.Is(err, order.ErrPaymentNotConfirmed):
		code = http.StatusPaymentRequired
	case errors.Is(err, order.ErrNotAssignedRider):
		code = http.StatusForbidden
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, dispatch.ErrOfferNoLongerAvailable),
		errors.Is(err, dispatch.ErrOrderNotReady):
		code = http.StatusConflict
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	}

	return ctx.JSON(code, errorResponse{Code: code, Message: err.Error()})
}
