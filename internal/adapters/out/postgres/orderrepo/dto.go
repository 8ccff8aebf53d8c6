// Package orderrepo provides data transfer objects and mapping functions for
// order persistence. It implements the repository pattern for the order
// aggregate, converting between domain entities and database rows.
package orderrepo

import (
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Line items are stored as a JSON column: they are immutable after placement
// and only ever read back as a whole.
type OrderDTO struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey"`
	CustomerID   uuid.UUID     `gorm:"type:uuid;index"`
	RestaurantID uuid.UUID     `gorm:"type:uuid;index"`
	RiderID      *uuid.UUID    `gorm:"type:uuid;index"`
	Items        []LineItemDTO `gorm:"type:jsonb;serializer:json"`
	Address      AddressDTO    `gorm:"embedded;embeddedPrefix:address_"`

	Subtotal    int
	DeliveryFee int
	PlatformFee int
	Total       int

	PaymentMethod int
	PaymentStatus int
	Status        int `gorm:"index"`

	CreatedAt time.Time
	ExpiresAt time.Time
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// LineItemDTO is one ordered item inside the JSON items column.
type LineItemDTO struct {
	Name      string `json:"name"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// AddressDTO is the embedded delivery address snapshot.
type AddressDTO struct {
	FormattedAddress string
	Phone            string
	Latitude         float64
	Longitude        float64
}

// fromDomain converts an order aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	var riderID *uuid.UUID
	if id := aggregate.Rider(); id != nil {
		raw := id.Bytes()
		riderID = &raw
	}

	items := make([]LineItemDTO, 0, len(aggregate.Items()))
	for _, item := range aggregate.Items() {
		items = append(items, LineItemDTO{
			Name:      item.Name(),
			UnitPrice: item.UnitPrice(),
			Quantity:  item.Quantity(),
		})
	}

	address := aggregate.DeliveryAddress()

	return OrderDTO{
		ID:           aggregate.ID().Bytes(),
		CustomerID:   aggregate.Customer().Bytes(),
		RestaurantID: aggregate.Restaurant().Bytes(),
		RiderID:      riderID,
		Items:        items,
		Address: AddressDTO{
			FormattedAddress: address.FormattedAddress(),
			Phone:            address.Phone(),
			Latitude:         address.Point().Latitude(),
			Longitude:        address.Point().Longitude(),
		},
		Subtotal:      aggregate.Subtotal(),
		DeliveryFee:   aggregate.DeliveryFee(),
		PlatformFee:   aggregate.PlatformFee(),
		Total:         aggregate.Total(),
		PaymentMethod: int(aggregate.PaymentMethod()),
		PaymentStatus: int(aggregate.PaymentStatus()),
		Status:        int(aggregate.Status()),
		CreatedAt:     aggregate.CreatedAt(),
		ExpiresAt:     aggregate.ExpiresAt(),
	}
}

// toDomain converts a database row back into an order aggregate.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	var riderID *kernel.UUID
	if dto.RiderID != nil {
		rID, riderErr := kernel.UUIDFromBytes((*dto.RiderID)[:])
		if riderErr != nil {
			return nil, riderErr
		}
		riderID = &rID
	}

	items := make([]order.LineItem, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := order.NewLineItem(itemDTO.Name, itemDTO.UnitPrice, itemDTO.Quantity)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	point, err := kernel.NewGeoPoint(dto.Address.Latitude, dto.Address.Longitude)
	if err != nil {
		return nil, err
	}
	address, err := order.NewDeliveryAddress(dto.Address.FormattedAddress, dto.Address.Phone, point)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(
		id,
		customerID,
		restaurantID,
		riderID,
		items,
		address,
		dto.Subtotal, dto.DeliveryFee, dto.PlatformFee, dto.Total,
		order.PaymentMethod(dto.PaymentMethod),
		order.PaymentStatus(dto.PaymentStatus),
		order.Status(dto.Status),
		dto.CreatedAt, dto.ExpiresAt,
	)
}
