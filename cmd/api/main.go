package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	eventadp "bloodbank-service/internal/adapter/event"
	httpadp "bloodbank-service/internal/adapter/http"
	"bloodbank-service/internal/adapter/repository/gormrepo"
	"bloodbank-service/internal/config"
	"bloodbank-service/internal/domain/event"
	"bloodbank-service/internal/infrastructure/cache"
	"bloodbank-service/internal/infrastructure/db"
	"bloodbank-service/internal/infrastructure/logging"
	"bloodbank-service/internal/infrastructure/messaging"
	"bloodbank-service/internal/infrastructure/tracing"
	"bloodbank-service/internal/usecase/donation"
	"bloodbank-service/internal/usecase/inventory"
	"bloodbank-service/internal/usecase/registry"
	"bloodbank-service/internal/usecase/request"
	"bloodbank-service/internal/usecase/timeslot"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, Dev: cfg.Dev(), ServiceName: cfg.ServiceName})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	shutdownTracing, err := tracing.Setup(ctx, tracing.Options{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.OTELEndpoint,
		AuthHeader:  cfg.OTELAuthHeader,
	}, logger)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	gdb, err := db.OpenGorm(db.Options{Driver: cfg.DBDriver, DSN: cfg.DSN(), LogSQL: cfg.DBLogSQL})
	if err != nil {
		return err
	}
	if err := db.Migrate(gdb); err != nil {
		return err
	}

	rdb, err := cache.OpenRedis(cache.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Password: cfg.RedisPassword})
	if err != nil {
		return err
	}
	defer rdb.Close()

	emitter, closeEmitter, err := newEmitter(cfg, logger)
	if err != nil {
		return err
	}
	defer closeEmitter()

	repos := gormrepo.Repos(gdb)
	tx := gormrepo.NewGormUoW(gdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger(), middleware.Recover())
	httpadp.Register(e, httpadp.RouterDeps{
		Registry:  registry.NewUsecase(repos, tx, registry.WithLogger(logger)),
		Donations: donation.NewUsecase(repos, tx,
			donation.WithEmitter(emitter),
			donation.WithLogger(logger),
			donation.WithUnitLocation(cfg.DefaultUnitLocation),
		),
		Timeslots:      timeslot.NewUsecase(repos, tx, timeslot.WithEmitter(emitter), timeslot.WithLogger(logger)),
		Inventory:      inventory.NewUsecase(repos, tx, inventory.WithEmitter(emitter), inventory.WithLogger(logger)),
		Requests:       request.NewUsecase(repos, tx, request.WithEmitter(emitter), request.WithLogger(logger)),
		JWTSecret:      []byte(cfg.JWTSecret),
		Redis:          rdb,
		IdempotencyTTL: time.Duration(cfg.IdempTTLSecs) * time.Second,
		Log:            logger,
	})

	addr := ":" + cfg.AppPort
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(sctx)
}

// newEmitter logs every event and also publishes to Kafka when brokers are set.
func newEmitter(cfg *config.Config, logger *zap.Logger) (event.Emitter, func(), error) {
	logEmitter := eventadp.NewLogEmitter(logger)
	brokers := cfg.Brokers()
	if brokers == nil {
		return logEmitter, func() {}, nil
	}
	w, err := messaging.NewWriter(messaging.WriterOptions{Brokers: brokers, Topic: cfg.KafkaTopic})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := w.Close(); err != nil {
			logger.Warn("kafka writer close", zap.Error(err))
		}
	}
	return eventadp.FanOut{logEmitter, eventadp.NewKafkaEmitter(w)}, closeFn, nil
}
