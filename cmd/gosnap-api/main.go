// README: Entry point; loads config, wires stores and services, serves HTTP until SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gosnap/internal/config"
	httptransport "gosnap/internal/http"
	"gosnap/internal/infra"
	"gosnap/internal/maps"
	"gosnap/internal/modules/booking"
	"gosnap/internal/modules/estimate"
	"gosnap/internal/modules/pricing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := infra.NewLogger(cfg.Development(), "gosnap-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("gosnap-api stopped with error", zap.Error(err))
	}
	log.Info("gosnap-api stopped")
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	mapsClient, err := maps.NewClient(cfg.Maps.APIKey)
	if err != nil {
		return err
	}
	routeSvc := maps.NewRouteService(mapsClient, cfg.Maps.Region, maps.RetryPolicy{
		Attempts: cfg.Route.RetryAttempts,
		Delay:    cfg.Route.RetryDelay,
	}, log.Named("maps"))
	placesSvc := maps.NewPlacesService(mapsClient, cfg.Maps.Region)

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	var tierSource pricing.TierSource
	if dbPool != nil {
		defer dbPool.Close()
		tierSource = pricing.NewStore(dbPool)
	} else {
		log.Info("no database configured, using static tier catalogs")
	}
	pricingSvc := pricing.NewService(tierSource, log.Named("pricing"))

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		return err
	}
	var drafts booking.DraftStore = booking.NewMemoryStore()
	if redisClient != nil {
		defer redisClient.Close()
		drafts = booking.NewRedisStore(redisClient)
	} else {
		log.Info("no redis configured, keeping booking drafts in memory")
	}
	bookingSvc := booking.NewService(drafts, pricingSvc, log.Named("booking"), booking.WithTTL(cfg.Booking.DraftTTL))

	estimator := estimate.NewEstimator(routeSvc, routeSvc, log.Named("estimate"))

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Estimator: estimator,
		Places:    placesSvc,
		Pricing:   pricingSvc,
		Booking:   bookingSvc,
		Log:       log.Named("http"),
	})
	return httptransport.NewServer(cfg.HTTP.Addr, router, log).Run(ctx)
}
