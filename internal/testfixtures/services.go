package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/hotel-reservations/internal/application"
	"github.com/example/hotel-reservations/internal/payment"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// BookingServiceDeps captures dependencies for constructing a booking
// service.
type BookingServiceDeps struct {
	Bookings    application.BookingRepository
	Rooms       application.RoomFinder
	Gateway     payment.Gateway
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewBookingService builds a booking service using the supplied dependencies
// combined with the factory defaults. When no gateway is provided, a
// simulated gateway that approves every attempt is used.
func (f *ServiceFactory) NewBookingService(deps BookingServiceDeps) *application.BookingService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	gateway := deps.Gateway
	if gateway == nil {
		gateway = payment.NewSimulatedGateway(nil)
	}
	return application.NewBookingServiceWithLogger(
		deps.Bookings,
		deps.Rooms,
		gateway,
		idGen,
		now,
		deps.Logger,
	)
}

// AvailabilityServiceDeps captures dependencies for constructing an
// availability service.
type AvailabilityServiceDeps struct {
	Catalog  application.CatalogReader
	Calendar application.BookingCalendar
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewAvailabilityService builds an availability service using the supplied
// dependencies.
func (f *ServiceFactory) NewAvailabilityService(deps AvailabilityServiceDeps) *application.AvailabilityService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAvailabilityServiceWithLogger(
		deps.Catalog,
		deps.Calendar,
		now,
		deps.Logger,
	)
}

// CatalogServiceDeps captures dependencies for constructing a catalog
// service.
type CatalogServiceDeps struct {
	Catalog application.CatalogReader
	Logger  *slog.Logger
}

// NewCatalogService builds a catalog service using the supplied
// dependencies.
func (f *ServiceFactory) NewCatalogService(deps CatalogServiceDeps) *application.CatalogService {
	return application.NewCatalogServiceWithLogger(deps.Catalog, deps.Logger)
}

// AuthServiceDeps captures dependencies for constructing an auth service.
type AuthServiceDeps struct {
	Users          application.UserStore
	Sessions       application.SessionRepository
	IDGenerator    func() string
	TokenGenerator func() string
	Now            func() time.Time
	SessionTTL     time.Duration
	Logger         *slog.Logger
}

// NewAuthService builds an auth service using the supplied dependencies.
func (f *ServiceFactory) NewAuthService(deps AuthServiceDeps) *application.AuthService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	token := deps.TokenGenerator
	if token == nil {
		token = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return application.NewAuthServiceWithLogger(
		deps.Users,
		deps.Sessions,
		idGen,
		token,
		now,
		ttl,
		deps.Logger,
	)
}
