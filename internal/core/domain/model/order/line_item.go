package order

import (
	"fmt"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/pkg/errs"
	"snapeats/internal/pkg/guard"
)

// LineItem is one ordered menu item: name, unit price and quantity.
// All fields are immutable after placement; price changes on the live menu
// never affect an already placed order.
type LineItem struct {
	name      string
	unitPrice int
	quantity  int
	guard     guard.ConstructorGuard
}

// ErrLineItemIsNotConstructed indicates that a LineItem was not created
// through the NewLineItem constructor.
var ErrLineItemIsNotConstructed = errs.NewValueIsRequiredError("LineItem must be created via NewLineItem")

// NewLineItem creates a validated LineItem. Name must be non-empty,
// unit price must be positive, quantity must be positive.
func NewLineItem(name string, unitPrice, quantity int) (LineItem, error) {
	if name == "" {
		return LineItem{}, errs.NewValueIsRequiredError("name")
	}
	if unitPrice <= 0 {
		return LineItem{}, errs.NewValueIsInvalidErrorWithCause("unit price",
			fmt.Errorf("%d is not greater than 0", unitPrice))
	}
	if quantity <= 0 {
		return LineItem{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}

	return LineItem{
		name:      name,
		unitPrice: unitPrice,
		quantity:  quantity,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the LineItem was created through NewLineItem.
func (i LineItem) Validate() error {
	return i.guard.Validate(ErrLineItemIsNotConstructed)
}

// Name returns the menu item name as ordered.
func (i LineItem) Name() string {
	return i.name
}

// UnitPrice returns the per-unit price as ordered.
func (i LineItem) UnitPrice() int {
	return i.unitPrice
}

// Quantity returns the ordered quantity.
func (i LineItem) Quantity() int {
	return i.quantity
}

// Total returns unit price times quantity.
func (i LineItem) Total() int {
	return i.unitPrice * i.quantity
}

// DeliveryAddress is the address snapshot copied onto the order at placement.
// It is independent of the customer's live address book: later edits there
// must not move an in-flight delivery.
type DeliveryAddress struct {
	formattedAddress string
	phone            string
	point            kernel.GeoPoint
	guard            guard.ConstructorGuard
}

// ErrDeliveryAddressIsNotConstructed indicates that a DeliveryAddress was
// not created through the NewDeliveryAddress constructor.
var ErrDeliveryAddressIsNotConstructed = errs.NewValueIsRequiredError("DeliveryAddress must be created via NewDeliveryAddress")

// NewDeliveryAddress creates a validated address snapshot.
func NewDeliveryAddress(formattedAddress, phone string, point kernel.GeoPoint) (DeliveryAddress, error) {
	if formattedAddress == "" {
		return DeliveryAddress{}, errs.NewValueIsRequiredError("formatted address")
	}
	if phone == "" {
		return DeliveryAddress{}, errs.NewValueIsRequiredError("phone")
	}
	if err := point.Validate(); err != nil {
		return DeliveryAddress{}, err
	}

	return DeliveryAddress{
		formattedAddress: formattedAddress,
		phone:            phone,
		point:            point,
		guard:            guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the DeliveryAddress was created through NewDeliveryAddress.
func (a DeliveryAddress) Validate() error {
	return a.guard.Validate(ErrDeliveryAddressIsNotConstructed)
}

// FormattedAddress returns the address text as snapshotted at order time.
func (a DeliveryAddress) FormattedAddress() string {
	return a.formattedAddress
}

// Phone returns the contact phone as snapshotted at order time.
func (a DeliveryAddress) Phone() string {
	return a.phone
}

// Point returns the delivery coordinates.
func (a DeliveryAddress) Point() kernel.GeoPoint {
	return a.point
}
