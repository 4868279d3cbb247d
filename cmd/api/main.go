package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/njprem/TravelAgency_BackEnd/internal/config"
	"github.com/njprem/TravelAgency_BackEnd/internal/logging"
	"github.com/njprem/TravelAgency_BackEnd/internal/media"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/minio"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/ports"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/postgres"
	"github.com/njprem/TravelAgency_BackEnd/internal/repository/redis"
	"github.com/njprem/TravelAgency_BackEnd/internal/service"
	transport "github.com/njprem/TravelAgency_BackEnd/internal/transport/http"
	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}

	log, closeLog, err := logging.New(logging.Options{
		Level:           cfg.Logging.Level,
		LogstashTCPAddr: cfg.Logging.LogstashTCPAddr,
	})
	if err != nil {
		logrus.WithError(err).Fatal("init logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.WithError(err).Error("server stopped")
	}
	_ = closeLog.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger) error {
	db, err := postgres.New(cfg.Database.URL, postgres.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("close database")
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		log.Info("database schema ensured")
	}

	cache, closeCache, err := lookupCache(ctx, cfg.Cache, log)
	if err != nil {
		return err
	}
	defer closeCache()

	storage, err := objectStorage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}

	e := transport.NewRouter(transport.RouterConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		SwaggerSpec:  cfg.Server.SwaggerSpec,
		Logger:       log,
	}, buildServices(cfg, db, cache, storage, log))

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.Server.Port).Info("http server listening")
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-runCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown complete")
	return nil
}

func buildServices(cfg config.Config, db *sqlx.DB, cache ports.LookupCache, storage ports.ObjectStorage, log *logrus.Logger) transport.Services {
	timeout := cfg.Database.StoreTimeout

	users := postgres.NewUserRepo(db)
	destinations := postgres.NewDestinationRepo(db)
	masterData := postgres.NewMasterDataRepo(db)
	packages := postgres.NewPackageRepo(db)
	schedules := postgres.NewScheduleRepo(db)
	bookings := postgres.NewBookingRepo(db)
	reviews := postgres.NewReviewRepo(db)

	jwt := util.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL)
	pricing := service.PricingPolicy{
		DiscountMinParticipants: cfg.Pricing.DiscountMinParticipants,
		DiscountRate:            cfg.Pricing.DiscountRate,
	}
	thumbnails := media.NewThumbnailProcessor(cfg.Storage.ThumbnailMaxBytes, cfg.Storage.ThumbnailMaxDimension)

	return transport.Services{
		Auth: service.NewAuthService(users, jwt, service.AuthServiceConfig{
			GoogleAudience: cfg.Auth.GoogleAudience,
			StoreTimeout:   timeout,
			Logger:         log,
		}),
		Bookings: service.NewBookingService(bookings, schedules, packages, service.BookingServiceConfig{
			Pricing:      pricing,
			StoreTimeout: timeout,
			Logger:       log,
		}),
		Dashboard: service.NewDashboardService(bookings, users, packages, destinations, reviews, service.DashboardServiceConfig{
			StoreTimeout: timeout,
			Logger:       log,
		}),
		Packages: service.NewPackageService(packages, schedules, destinations, reviews, service.PackageServiceConfig{
			StoreTimeout: timeout,
			Logger:       log,
		}),
		Schedules: service.NewScheduleService(schedules, packages, service.ScheduleServiceConfig{
			StoreTimeout: timeout,
			Logger:       log,
		}),
		Destinations: service.NewDestinationService(destinations, masterData, storage, thumbnails, service.DestinationServiceConfig{
			Bucket:       cfg.Storage.Bucket,
			StoreTimeout: timeout,
			Logger:       log,
		}),
		MasterData: service.NewMasterDataService(masterData, cache, service.MasterDataServiceConfig{
			CacheTTL:     cfg.Cache.LookupCacheTTL,
			StoreTimeout: timeout,
			Logger:       log,
		}),
		Customers: service.NewCustomerService(users, service.CustomerServiceConfig{
			StoreTimeout: timeout,
			Logger:       log,
		}),
		Reviews: service.NewReviewService(reviews, packages, service.ReviewServiceConfig{
			StoreTimeout: timeout,
			Logger:       log,
		}),
	}
}

// lookupCache falls back to a cache that stores nothing when Redis is not configured.
func lookupCache(ctx context.Context, cfg config.Cache, log logrus.FieldLogger) (ports.LookupCache, func(), error) {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, lookup cache disabled")
		return redis.NoopCache{}, func() {}, nil
	}
	client, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	return redis.NewLookupCache(client), func() {
		if err := client.Close(); err != nil {
			log.WithError(err).Warn("close redis")
		}
	}, nil
}

// objectStorage returns a nil storage when MinIO is not configured, which
// turns thumbnail uploads into validation errors.
func objectStorage(ctx context.Context, cfg config.Storage, log logrus.FieldLogger) (ports.ObjectStorage, error) {
	if !cfg.Enabled() {
		log.Warn("minio not configured, thumbnail uploads disabled")
		return nil, nil
	}
	client, err := minio.NewClient(cfg.Endpoint, cfg.AccessKey, cfg.SecretKey, cfg.UseSSL)
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	storage := minio.NewStorage(client, cfg.PublicURL)
	if err := storage.EnsureBucket(ctx, cfg.Bucket); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", cfg.Bucket, err)
	}
	return storage, nil
}
