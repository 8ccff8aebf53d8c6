// Package queries implements the read side of the application layer.
// Query handlers read the database directly and return flat view types;
// they never load aggregates or mutate state.
package queries

import (
	"database/sql"
	"encoding/json"
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderView is the flat read model returned by order queries.
type OrderView struct {
	ID           kernel.UUID
	CustomerID   kernel.UUID
	RestaurantID kernel.UUID
	RiderID      *kernel.UUID

	Status        order.Status
	PaymentMethod order.PaymentMethod
	PaymentStatus order.PaymentStatus

	Items   []OrderItemView
	Address AddressView

	Subtotal    int
	DeliveryFee int
	PlatformFee int
	Total       int

	CreatedAt time.Time
}

// OrderItemView is one line item in the read model.
type OrderItemView struct {
	Name      string `json:"name"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// AddressView is the delivery address in the read model.
type AddressView struct {
	FormattedAddress string
	Phone            string
	Latitude         float64
	Longitude        float64
}

// orderViewColumns is the column list every order query selects, in the
// order scanOrderView expects.
const orderViewColumns = `
	id,
	customer_id,
	restaurant_id,
	rider_id,
	status,
	payment_method,
	payment_status,
	items,
	address_formatted_address,
	address_phone,
	address_latitude,
	address_longitude,
	subtotal,
	delivery_fee,
	platform_fee,
	total,
	created_at
`

// scanOrderView maps one result row onto an OrderView.
func scanOrderView(rows *sql.Rows) (OrderView, error) {
	var (
		view      OrderView
		id        uuid.UUID
		custID    uuid.UUID
		restID    uuid.UUID
		riderID   *uuid.UUID
		itemsJSON []byte
	)

	err := rows.Scan(
		&id,
		&custID,
		&restID,
		&riderID,
		&view.Status,
		&view.PaymentMethod,
		&view.PaymentStatus,
		&itemsJSON,
		&view.Address.FormattedAddress,
		&view.Address.Phone,
		&view.Address.Latitude,
		&view.Address.Longitude,
		&view.Subtotal,
		&view.DeliveryFee,
		&view.PlatformFee,
		&view.Total,
		&view.CreatedAt,
	)
	if err != nil {
		return OrderView{}, err
	}

	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return OrderView{}, err
	}
	if view.CustomerID, err = kernel.UUIDFromBytes(custID[:]); err != nil {
		return OrderView{}, err
	}
	if view.RestaurantID, err = kernel.UUIDFromBytes(restID[:]); err != nil {
		return OrderView{}, err
	}
	if riderID != nil {
		rID, riderErr := kernel.UUIDFromBytes((*riderID)[:])
		if riderErr != nil {
			return OrderView{}, riderErr
		}
		view.RiderID = &rID
	}

	if len(itemsJSON) > 0 {
		if err = json.Unmarshal(itemsJSON, &view.Items); err != nil {
			return OrderView{}, err
		}
	}

	return view, nil
}
