package offerrepo_test

import (
	"context"
	"testing"
	"time"

	"snapeats/internal/adapters/out/postgres/offerrepo"
	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/core/domain/model/offer"
	"snapeats/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OfferRepositoryIntegrationTestSuite provides integration tests for
// OfferRepository using PostgreSQL containers.
type OfferRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *offerrepo.GormOfferRepository
}

func (suite *OfferRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&offerrepo.OfferDTO{}))
}

func (suite *OfferRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE dispatch_offers").Error)
	suite.repository = offerrepo.NewGormOfferRepository(suite.db)
}

func (suite *OfferRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OfferRepositoryIntegrationTestSuite) TestAdd_NewOffer_Success() {
	ctx := context.Background()

	pending := suite.createPendingOffer(kernel.NewUUID(), kernel.NewUUID())
	suite.Require().NoError(suite.repository.Add(ctx, pending))

	retrieved, err := suite.repository.Get(ctx, pending.OrderID(), pending.RiderID())
	suite.Require().NoError(err)
	suite.Equal(offer.Pending, retrieved.Outcome())
	suite.WithinDuration(pending.ExpiresAt(), retrieved.ExpiresAt(), time.Millisecond)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestAdd_SamePair_ReplacesFinalizedOffer() {
	ctx := context.Background()

	orderID := kernel.NewUUID()
	riderID := kernel.NewUUID()

	first := suite.createPendingOffer(orderID, riderID)
	suite.Require().NoError(suite.repository.Add(ctx, first))

	suite.Require().NoError(first.Expire())
	suite.Require().NoError(suite.repository.Update(ctx, first))

	// A fresh broadcast reuses the (order, rider) identity; the insert must
	// overwrite the expired row instead of failing on the primary key.
	second := suite.createPendingOffer(orderID, riderID)
	suite.Require().NoError(suite.repository.Add(ctx, second))

	retrieved, err := suite.repository.Get(ctx, orderID, riderID)
	suite.Require().NoError(err)
	suite.Equal(offer.Pending, retrieved.Outcome())

	var count int64
	suite.Require().NoError(suite.db.Model(&offerrepo.OfferDTO{}).Count(&count).Error)
	suite.Equal(int64(1), count)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestGet_NonExistentOffer_ReturnsNotFoundError() {
	ctx := context.Background()

	retrieved, err := suite.repository.Get(ctx, kernel.NewUUID(), kernel.NewUUID())
	suite.Nil(retrieved)
	suite.Require().Error(err)

	var notFoundErr *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFoundErr)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestUpdate_ResolvedOutcome_Persists() {
	ctx := context.Background()

	pending := suite.createPendingOffer(kernel.NewUUID(), kernel.NewUUID())
	suite.Require().NoError(suite.repository.Add(ctx, pending))

	suite.Require().NoError(pending.Withdraw())
	suite.Require().NoError(suite.repository.Update(ctx, pending))

	retrieved, err := suite.repository.Get(ctx, pending.OrderID(), pending.RiderID())
	suite.Require().NoError(err)
	suite.Equal(offer.Withdrawn, retrieved.Outcome())
}

func (suite *OfferRepositoryIntegrationTestSuite) TestUpdate_NonExistentOffer_ReturnsError() {
	ctx := context.Background()

	orphan := suite.createPendingOffer(kernel.NewUUID(), kernel.NewUUID())
	suite.Require().NoError(orphan.Expire())

	err := suite.repository.Update(ctx, orphan)
	suite.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *OfferRepositoryIntegrationTestSuite) TestGetPendingByOrder_ReturnsOnlyPendingForThatOrder() {
	ctx := context.Background()

	orderID := kernel.NewUUID()
	otherOrderID := kernel.NewUUID()

	pending1 := suite.createPendingOffer(orderID, kernel.NewUUID())
	pending2 := suite.createPendingOffer(orderID, kernel.NewUUID())
	withdrawn := suite.createPendingOffer(orderID, kernel.NewUUID())
	foreign := suite.createPendingOffer(otherOrderID, kernel.NewUUID())

	for _, o := range []*offer.DispatchOffer{pending1, pending2, withdrawn, foreign} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	suite.Require().NoError(withdrawn.Withdraw())
	suite.Require().NoError(suite.repository.Update(ctx, withdrawn))

	offers, err := suite.repository.GetPendingByOrder(ctx, orderID)
	suite.Require().NoError(err)
	suite.Require().Len(offers, 2)
	for _, o := range offers {
		suite.Equal(orderID, o.OrderID())
		suite.Equal(offer.Pending, o.Outcome())
	}
}

func (suite *OfferRepositoryIntegrationTestSuite) TestGetPendingExpiredBefore_ReturnsOnlyElapsedPending() {
	ctx := context.Background()

	now := time.Now().UTC()

	elapsed := suite.createOfferWithWindow(kernel.NewUUID(), kernel.NewUUID(), now.Add(-30*time.Second), now.Add(-20*time.Second))
	open := suite.createOfferWithWindow(kernel.NewUUID(), kernel.NewUUID(), now, now.Add(10*time.Second))
	accepted := suite.createOfferWithWindow(kernel.NewUUID(), kernel.NewUUID(), now.Add(-30*time.Second), now.Add(-20*time.Second))

	for _, o := range []*offer.DispatchOffer{elapsed, open, accepted} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	suite.Require().NoError(accepted.Accept(now.Add(-25 * time.Second)))
	suite.Require().NoError(suite.repository.Update(ctx, accepted))

	stale, err := suite.repository.GetPendingExpiredBefore(ctx, now)
	suite.Require().NoError(err)
	suite.Require().Len(stale, 1)
	suite.Equal(elapsed.OrderID(), stale[0].OrderID())
	suite.Equal(elapsed.RiderID(), stale[0].RiderID())
}

func (suite *OfferRepositoryIntegrationTestSuite) createPendingOffer(orderID, riderID kernel.UUID) *offer.DispatchOffer {
	now := time.Now().UTC()
	return suite.createOfferWithWindow(orderID, riderID, now, now.Add(10*time.Second))
}

func (suite *OfferRepositoryIntegrationTestSuite) createOfferWithWindow(
	orderID, riderID kernel.UUID, createdAt, expiresAt time.Time,
) *offer.DispatchOffer {
	pending, err := offer.NewDispatchOffer(orderID, riderID, createdAt, expiresAt)
	suite.Require().NoError(err)
	return pending
}

func TestOfferRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OfferRepositoryIntegrationTestSuite))
}
