package http

import (
	"time"

	"snapeats/internal/core/application/usecases/queries"
	"snapeats/internal/core/domain/model/order"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type placeOrderRequest struct {
	OrderID       string            `json:"order_id"`
	CustomerID    string            `json:"customer_id"`
	RestaurantID  string            `json:"restaurant_id"`
	Items         []lineItemPayload `json:"items"`
	Address       addressPayload    `json:"address"`
	PaymentMethod string            `json:"payment_method"`
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	Role    string `json:"role"`
	ActorID string `json:"actor_id"`
}

type acceptOrderRequest struct {
	RiderID string `json:"rider_id"`
}

type reportLocationRequest struct {
	RiderID   string  `json:"rider_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lineItemPayload struct {
	Name      string `json:"name"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type addressPayload struct {
	FormattedAddress string  `json:"formatted_address"`
	Phone            string  `json:"phone"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
}

type orderResponse struct {
	ID           string  `json:"id"`
	CustomerID   string  `json:"customer_id"`
	RestaurantID string  `json:"restaurant_id"`
	RiderID      *string `json:"rider_id,omitempty"`

	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	PaymentStatus string `json:"payment_status"`

	Items   []lineItemPayload `json:"items"`
	Address addressPayload    `json:"address"`

	Subtotal    int `json:"subtotal"`
	DeliveryFee int `json:"delivery_fee"`
	PlatformFee int `json:"platform_fee"`
	Total       int `json:"total"`

	CreatedAt time.Time `json:"created_at"`
}

func orderFromAggregate(o *order.Order) orderResponse {
	var riderID *string
	if id := o.Rider(); id != nil {
		s := id.String()
		riderID = &s
	}

	items := make([]lineItemPayload, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, lineItemPayload{
			Name:      item.Name(),
			UnitPrice: item.UnitPrice(),
			Quantity:  item.Quantity(),
		})
	}

	address := o.DeliveryAddress()

	return orderResponse{
		ID:           o.ID().String(),
		CustomerID:   o.Customer().String(),
		RestaurantID: o.Restaurant().String(),
		RiderID:      riderID,

		Status:        o.Status().String(),
		PaymentMethod: o.PaymentMethod().String(),
		PaymentStatus: o.PaymentStatus().String(),

		Items: items,
		Address: addressPayload{
			FormattedAddress: address.FormattedAddress(),
			Phone:            address.Phone(),
			Latitude:         address.Point().Latitude(),
			Longitude:        address.Point().Longitude(),
		},

		Subtotal:    o.Subtotal(),
		DeliveryFee: o.DeliveryFee(),
		PlatformFee: o.PlatformFee(),
		Total:       o.Total(),

		CreatedAt: o.CreatedAt(),
	}
}

func orderFromView(view queries.OrderView) orderResponse {
	var riderID *string
	if view.RiderID != nil {
		s := view.RiderID.String()
		riderID = &s
	}

	items := make([]lineItemPayload, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, lineItemPayload{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}

	return orderResponse{
		ID:           view.ID.String(),
		CustomerID:   view.CustomerID.String(),
		RestaurantID: view.RestaurantID.String(),
		RiderID:      riderID,

		Status:        view.Status.String(),
		PaymentMethod: view.PaymentMethod.String(),
		PaymentStatus: view.PaymentStatus.String(),

		Items: items,
		Address: addressPayload{
			FormattedAddress: view.Address.FormattedAddress,
			Phone:            view.Address.Phone,
			Latitude:         view.Address.Latitude,
			Longitude:        view.Address.Longitude,
		},

		Subtotal:    view.Subtotal,
		DeliveryFee: view.DeliveryFee,
		PlatformFee: view.PlatformFee,
		Total:       view.Total,

		CreatedAt: view.CreatedAt,
	}
}
