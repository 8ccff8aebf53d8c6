package offerrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/offer"
	"snapeats/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOfferRepository implements OfferRepository using GORM.
type GormOfferRepository struct {
	db *gorm.DB
}

// NewGormOfferRepository creates a new GORM dispatch offer repository.
func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// Add saves a dispatch offer, replacing any previous offer for the same
// (order, rider) pair. A fresh broadcast after an expired window reuses the
// pair identity, so the insert is an upsert.
func (r *GormOfferRepository) Add(ctx context.Context, aggregate *offer.DispatchOffer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "rider_id"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}

// Update saves an offer's resolved outcome.
func (r *GormOfferRepository) Update(ctx context.Context, aggregate *offer.DispatchOffer) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OfferDTO{}).
		Where("order_id = ? AND rider_id = ?", dto.OrderID, dto.RiderID).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// Get retrieves the offer identified by the (order, rider) pair.
func (r *GormOfferRepository) Get(ctx context.Context, orderID, riderID kernel.UUID) (*offer.DispatchOffer, error) {
	if err := errors.Join(orderID.Validate(), riderID.Validate()); err != nil {
		return nil, err
	}

	var dto OfferDTO
	err := r.db.WithContext(ctx).
		First(&dto, "order_id = ? AND rider_id = ?", orderID.Bytes(), riderID.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("dispatch offer",
				fmt.Sprintf("%s/%s", orderID.String(), riderID.String()))
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetPendingByOrder retrieves every still-pending offer for one order.
func (r *GormOfferRepository) GetPendingByOrder(ctx context.Context, orderID kernel.UUID) ([]*offer.DispatchOffer, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []OfferDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "order_id = ? AND outcome = ?", orderID.Bytes(), int(offer.Pending)).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

// GetPendingExpiredBefore retrieves pending offers whose window elapsed
// before the given instant, across all orders.
func (r *GormOfferRepository) GetPendingExpiredBefore(ctx context.Context, deadline time.Time) ([]*offer.DispatchOffer, error) {
	var dtos []OfferDTO
	err := r.db.WithContext(ctx).
		Find(&dtos, "outcome = ? AND expires_at < ?", int(offer.Pending), deadline).Error
	if err != nil {
		return nil, err
	}

	return toDomainSlice(dtos)
}

func toDomainSlice(dtos []OfferDTO) ([]*offer.DispatchOffer, error) {
	offers := make([]*offer.DispatchOffer, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, nil
}
