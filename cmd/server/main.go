// Command server runs the Treasure Hunt Adventures API: the public catalog
// and registration endpoints, the admin surface, and the background email
// queue dispatcher.
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

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"treasurehunt/internal/auth"
	"treasurehunt/internal/campaign"
	"treasurehunt/internal/health"
	"treasurehunt/internal/mailer"
	"treasurehunt/internal/mailqueue"
	"treasurehunt/internal/plan"
	"treasurehunt/internal/platform/config"
	"treasurehunt/internal/platform/database"
	"treasurehunt/internal/platform/httpserver"
	"treasurehunt/internal/platform/logger"
	"treasurehunt/internal/platform/metrics"
	platformredis "treasurehunt/internal/platform/redis"
	"treasurehunt/internal/registration"
	"treasurehunt/internal/settings"
	httptransport "treasurehunt/internal/transport/http"
	"treasurehunt/internal/upload"
	"treasurehunt/internal/validation"
)

const shutdownTimeout = 30 * time.Second

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db, cfg.MigrationsDir); err != nil {
		return err
	}

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	validator := validation.New()

	store := database.Instrument(db, m, log)

	queueStore := mailqueue.NewPostgres(store)
	queueSvc := mailqueue.NewService(queueStore, log, cfg.AdminEmail)

	settingsSvc := settings.NewService(settings.NewPostgres(store), log)

	regStore := registration.NewPostgres(store)
	planSvc := plan.NewService(plan.NewPostgres(store), regStore, validator, log)
	regSvc := registration.NewService(regStore, planSvc, queueSvc, settingsSvc, validator, log)

	files, err := upload.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return err
	}
	uploadSvc := upload.NewService(upload.NewPostgres(store), files, planSvc, regSvc, validator, log)

	campaignSvc := campaign.NewService(campaign.NewPostgres(store), queueSvc, validator, log)

	tokens := auth.NewTokens(cfg.JWTSigningKey, cfg.TokenTTL)
	var revocations auth.RevocationStore
	if redisClient != nil {
		revocations = auth.NewRedisRevocations(redisClient)
	} else {
		log.Warn("redis not configured, token revocation is in-memory only")
		revocations = auth.NewInMemoryRevocations()
	}
	authSvc, err := auth.NewService(cfg.AdminEmail, cfg.AdminPassword, tokens, revocations, log)
	if err != nil {
		return err
	}

	renderer, err := mailqueue.NewRenderer()
	if err != nil {
		return err
	}
	transport := mailer.New(cfg.SMTP, log)
	dispatcher := mailqueue.NewDispatcher(queueStore, transport, renderer, m, log, cfg.Dispatcher)

	checks := []health.Check{
		{Name: "database", Probe: func(ctx context.Context) error { return db.PingContext(ctx) }},
		{Name: "dispatcher", Probe: func(context.Context) error {
			if !dispatcher.Running() {
				return errors.New("dispatcher not running")
			}
			return nil
		}},
	}
	if redisClient != nil {
		checks = append(checks, health.Check{Name: "redis", Probe: redisClient.Health})
	}
	checker := health.NewChecker(version, log, checks...)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		Metrics:        m,
		Gatherer:       registry,
		TokenValidator: tokens,
		Revocations:    revocations,
		Auth:           auth.NewHandler(authSvc, log),
		Plans:          plan.NewHandler(planSvc, log),
		Registrations:  registration.NewHandler(regSvc, log),
		Uploads:        upload.NewHandler(uploadSvc, log),
		Campaigns:      campaign.NewHandler(campaignSvc, log),
		Settings:       settings.NewHandler(settingsSvc, log),
		Queue:          mailqueue.NewHandler(queueSvc, cfg.Dispatcher.Retention, log),
		Health:         checker,
	})

	srv := httpserver.New(cfg.Addr, router)

	dispatcher.Start()
	defer dispatcher.Stop()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr, "environment", cfg.Environment, "version", version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
