package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/carpool/api"
	"github.com/Domenick1991/carpool/config"
	"github.com/Domenick1991/carpool/internal/auth"
	"github.com/Domenick1991/carpool/internal/bootstrap"
	"github.com/Domenick1991/carpool/internal/cache"
	"github.com/Domenick1991/carpool/internal/corridor"
	"github.com/Domenick1991/carpool/internal/email"
	"github.com/Domenick1991/carpool/internal/kafka"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/matcher"
	"github.com/Domenick1991/carpool/internal/realtime"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/Domenick1991/carpool/internal/retry"
	"github.com/Domenick1991/carpool/internal/routing"
	"github.com/Domenick1991/carpool/internal/service/booking"
	"github.com/Domenick1991/carpool/internal/service/cars"
	"github.com/Domenick1991/carpool/internal/service/ledger"
	"github.com/Domenick1991/carpool/internal/service/notify"
	"github.com/Domenick1991/carpool/internal/service/rides"
	"github.com/Domenick1991/carpool/internal/service/search"
	"github.com/jackc/pgx/v5/pgxpool"
)

type stores struct {
	rides         repository.RideRepository
	bookings      repository.BookingRepository
	notifications repository.NotificationRepository
	cars          repository.CarRepository
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st stores
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on restart")
		rideStore, bookingStore := repository.NewMemoryRideRepository(), repository.NewMemoryBookingRepository()
		repository.LinkMemoryRepositories(rideStore, bookingStore)
		st = stores{
			rides:         rideStore,
			bookings:      bookingStore,
			notifications: repository.NewMemoryNotificationRepository(),
			cars:          repository.NewMemoryCarRepository(),
		}
	default:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		st = stores{
			rides:         repository.NewRideRepository(pool),
			bookings:      repository.NewBookingRepository(pool),
			notifications: repository.NewNotificationRepository(pool),
			cars:          repository.NewCarRepository(pool),
		}
	}

	router, closeRouter := newRouter(cfg, logger)
	defer closeRouter()

	builder := corridor.NewBuilder(cfg.Matching.Precision)
	storagePolicy := retry.Policy{
		Attempts:  cfg.Ledger.MaxAttempts,
		BaseDelay: cfg.Ledger.BaseDelay,
		MaxDelay:  retry.DefaultPolicy().MaxDelay,
	}
	seats := ledger.New(st.rides,
		ledger.WithRetryPolicy(storagePolicy),
		ledger.WithLogger(logger),
	)

	searchService := search.NewSearchService(router, st.rides,
		search.WithCorridorBuilder(builder),
		search.WithMatcher(matcher.New(matcher.Policy{
			SpatialWeight:  cfg.Matching.SpatialWeight,
			TimeWeight:     cfg.Matching.TimeWeight,
			SeatWeight:     cfg.Matching.SeatWeight,
			AdmitThreshold: cfg.Matching.AdmitThreshold,
			TimeDecayHours: cfg.Matching.TimeDecayHours,
		})),
		search.WithWindow(cfg.Matching.Window()),
		search.WithLogger(logger),
	)
	carService := cars.NewCarService(st.cars, logger)
	rideService := rides.NewRideService(st.rides, router,
		rides.WithCars(st.cars),
		rides.WithCorridorBuilder(builder),
		rides.WithLogger(logger),
	)

	notifications := notify.NewNotificationService(st.notifications, nil, logger, notify.WithRetryPolicy(storagePolicy))
	deps := api.Deps{
		Rides:          rideService,
		Search:         searchService,
		Notifications:  notifications,
		Cars:           carService,
		Verifier:       auth.NewVerifier(cfg.Auth.JWTSecret),
		SwaggerDir:     cfg.HTTP.SwaggerDir,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         logger,
	}

	// With Kafka configured the worker owns delivery; otherwise events are
	// dispatched to the websocket hub of this process.
	var publisher booking.EventPublisher
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, logger)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("kafka not reachable at startup", "error", err)
		}
		publisher = producer
	} else {
		hub := realtime.NewHub(logger)
		notifications = notify.NewNotificationService(st.notifications, notify.Fallback{
			Realtime: hub,
			Deferred: email.NewSender(nil, logger),
		}, logger, notify.WithRetryPolicy(storagePolicy))
		deps.Notifications = notifications
		deps.Realtime = hub
		publisher = notifications
	}

	deps.Bookings = booking.NewBookingService(st.bookings, st.rides, seats,
		booking.WithEventPublisher(publisher),
		booking.WithLogger(logger),
	)

	if err := bootstrap.Run(ctx, cfg.HTTP, api.NewRouter(deps), logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newRouter(cfg *config.Config, logger *slog.Logger) (routing.Router, func()) {
	var base routing.Router
	switch cfg.Routing.Provider {
	case config.ProviderGoogle:
		g, err := routing.NewGoogleRouter(cfg.Routing.GoogleAPIKey)
		if err != nil {
			log.Fatalf("google router: %v", err)
		}
		base = g
	default:
		base = routing.NewOSRMClient(cfg.Routing.OSRMEndpoint, cfg.Routing.Timeout)
	}
	if cfg.Redis.Addr == "" {
		return base, func() {}
	}
	redisCache := cache.NewRedisCache(cfg.Redis)
	return routing.NewCachedRouter(base, redisCache, logger), func() { _ = redisCache.Close() }
}
