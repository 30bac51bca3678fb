package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"motofleet/internal/broker"
	"motofleet/internal/broker/kafka"
	driverhandler "motofleet/internal/driver/handler"
	driverservice "motofleet/internal/driver/service"
	driverstore "motofleet/internal/driver/store"
	"motofleet/internal/fleet/cache"
	fleethandler "motofleet/internal/fleet/handler"
	fleetservice "motofleet/internal/fleet/service"
	eventstore "motofleet/internal/fleet/store/event"
	vehiclestore "motofleet/internal/fleet/store/vehicle"
	"motofleet/internal/platform/config"
	"motofleet/internal/platform/httpserver"
	"motofleet/internal/platform/logger"
	"motofleet/internal/platform/metrics"
	"motofleet/internal/platform/middleware"
	"motofleet/internal/platform/postgres"
	platformredis "motofleet/internal/platform/redis"
	rentalhandler "motofleet/internal/rental/handler"
	rentalservice "motofleet/internal/rental/service"
	rentalstore "motofleet/internal/rental/store"
)

// main wires dependencies and keeps the process lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(context.Background(), cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// rentalStores is the union of the ports the rental, fleet and driver
// services need from rental persistence.
type rentalStores interface {
	rentalservice.RentalStore
	fleetservice.RentalGuard
	driverservice.RentalCascade
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		vehicles fleetservice.VehicleStore
		events   fleetservice.EventStore
		drivers  driverservice.DriverStore
		rentals  rentalStores
	)
	if cfg.PostgresDSN != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		vehicles = vehiclestore.NewPostgres(db)
		events = eventstore.NewPostgres(db)
		drivers = driverstore.NewPostgres(db)
		rentals = rentalstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		vehicles = vehiclestore.NewInMemory()
		events = eventstore.NewInMemory()
		drivers = driverstore.NewInMemory()
		rentals = rentalstore.NewInMemory()
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		// The cache is an optimization, never a dependency.
		log.Warn("redis unavailable, continuing without vehicle cache", "error", err)
	}
	vehicleCache := cache.New(redisClient, config.PlateCacheTTL)

	var publisher broker.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := kafka.New(ctx, cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer kp.Close()
		publisher = kp
		log.Info("kafka publisher ready", "topic", cfg.KafkaTopic)
	} else {
		log.Warn("KAFKA_BROKERS not set, registration broadcasts disabled")
	}

	relay := fleetservice.NewRelay(publisher, cfg.KafkaTopic, log, m)

	fleetSvc := fleetservice.New(vehicles, events, rentals, relay,
		fleetservice.WithLogger(log),
		fleetservice.WithMetrics(m),
		fleetservice.WithCache(vehicleCache),
		fleetservice.WithDistinguishedYear(cfg.DistinguishedYear),
	)
	driverSvc := driverservice.New(drivers, rentals, log, m)
	rentalSvc := rentalservice.New(rentals, drivers, vehicles, log, m)

	adminMW := middleware.RequireAdminToken(cfg.AdminToken, log)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.ContentTypeJSON)

	fleethandler.New(fleetSvc, log, adminMW).Register(r)
	driverhandler.New(driverSvc, log, adminMW).Register(r)
	rentalhandler.New(rentalSvc, log).Register(r)

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := relay.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting motofleet", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
