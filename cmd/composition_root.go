package cmd

import (
	"log/slog"
	"time"

	httpin "snapeats/internal/adapters/in/http"
	"snapeats/internal/adapters/out/payments"
	"snapeats/internal/adapters/out/postgres"
	"snapeats/internal/adapters/out/postgres/orderrepo"
	"snapeats/internal/core/application/usecases/commands"
	"snapeats/internal/core/application/usecases/queries"
	"snapeats/internal/core/domain/model/kernel"
	"snapeats/internal/dispatch"
	"snapeats/internal/eventbus"
	"snapeats/internal/jobs"
	"snapeats/internal/pkg/clock"
	"snapeats/internal/relay"

	"gorm.io/gorm"
)

// CompositionRoot wires every long-lived collaborator once and hands out
// request-scoped handlers on demand.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	clock      clock.Clock
	logger     *slog.Logger

	bus         *eventbus.Bus
	coordinator *dispatch.Coordinator
	relay       *relay.Relay
	payments    *payments.ServiceGateway
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)
	clk := clock.NewSystem()

	bus := eventbus.NewBus(eventbus.DefaultSessionBuffer, logger)

	coordinator := dispatch.NewCoordinator(
		uowFactory,
		eventbus.NewRiderDirectory(bus),
		bus,
		clk,
		time.Duration(config.DispatchWindowSeconds)*time.Second,
		logger,
	)

	positionRelay := relay.NewRelay(
		orderrepo.NewGormOrderRepository(gormDB, noopTracker{}),
		bus,
		clk,
		time.Duration(config.LocationIntervalSeconds)*time.Second,
	)

	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *uowFactory,
		clock:      clk,
		logger:     logger,

		bus:         bus,
		coordinator: coordinator,
		relay:       positionRelay,
		payments:    payments.NewServiceGateway(config.PaymentServiceURL),
	}
}

// Bus returns the session registry for transport adapters.
func (c *CompositionRoot) Bus() *eventbus.Bus {
	return c.bus
}

// Coordinator returns the dispatch coordinator.
func (c *CompositionRoot) Coordinator() *dispatch.Coordinator {
	return c.coordinator
}

// Relay returns the rider position relay.
func (c *CompositionRoot) Relay() *relay.Relay {
	return c.relay
}

func (c *CompositionRoot) CreatePlaceOrderCommandHandler() commands.PlaceOrderCommandHandler {
	return commands.NewPlaceOrderCommandHandler(c.orderUoWFactory(), c.payments, c.bus, c.clock)
}

func (c *CompositionRoot) CreateRequestTransitionCommandHandler() commands.RequestTransitionCommandHandler {
	return commands.NewRequestTransitionCommandHandler(c.orderUoWFactory(), c.bus, c.coordinator, c.clock, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRestaurantOrdersQueryHandler() queries.GetRestaurantOrdersQueryHandler {
	return queries.NewGetRestaurantOrdersQueryHandler(c.gormDB)
}

// CreateHTTPServer assembles the REST surface.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreatePlaceOrderCommandHandler(),
		c.CreateRequestTransitionCommandHandler(),
		c.CreateGetOrderQueryHandler(),
		c.CreateGetRestaurantOrdersQueryHandler(),
		c.coordinator,
		c.relay,
		c.bus,
	)
}

// CreateJobManager assembles the background jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(&c.uowFactory, c.clock, c.logger)
}

// Stop releases long-lived resources: open dispatch timers stop firing.
func (c *CompositionRoot) Stop() {
	c.coordinator.Stop()
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

// FuncOrderUoWFactory adapts a closure to the OrderUoWFactory interface.
type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}
