// Package offerrepo provides data transfer objects and mapping functions for
// dispatch offer persistence. Offers are keyed by the (order, rider) pair: a
// rider receives at most one live offer per order.
package offerrepo

import (
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/offer"

	"github.com/google/uuid"
)

// OfferDTO represents the database structure for persisting dispatch offers.
type OfferDTO struct {
	OrderID uuid.UUID `gorm:"type:uuid;primaryKey"`
	RiderID uuid.UUID `gorm:"type:uuid;primaryKey"`

	Outcome int `gorm:"index"`

	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"index"`
}

// TableName specifies the database table name for dispatch offers.
func (OfferDTO) TableName() string {
	return "dispatch_offers"
}

// fromDomain converts a dispatch offer to its database representation.
func fromDomain(aggregate *offer.DispatchOffer) OfferDTO {
	return OfferDTO{
		OrderID:   aggregate.OrderID().Bytes(),
		RiderID:   aggregate.RiderID().Bytes(),
		Outcome:   int(aggregate.Outcome()),
		CreatedAt: aggregate.CreatedAt(),
		ExpiresAt: aggregate.ExpiresAt(),
	}
}

// toDomain converts a database row back into a dispatch offer.
func toDomain(dto OfferDTO) (*offer.DispatchOffer, error) {
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	riderID, err := kernel.UUIDFromBytes(dto.RiderID[:])
	if err != nil {
		return nil, err
	}

	return offer.RestoreDispatchOffer(orderID, riderID, dto.CreatedAt, dto.ExpiresAt, offer.Outcome(dto.Outcome))
}
