package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	appservice "github.com/hearthware/ovenlink/internal/application/service"
	"github.com/hearthware/ovenlink/internal/config"
	domainsvc "github.com/hearthware/ovenlink/internal/domain/service"
	"github.com/hearthware/ovenlink/internal/infrastructure/cloud"
	"github.com/hearthware/ovenlink/internal/infrastructure/iot"
	"github.com/hearthware/ovenlink/internal/infrastructure/monitoring"
	"github.com/hearthware/ovenlink/internal/interfaces/http/handlers"
	"github.com/hearthware/ovenlink/internal/interfaces/http/router"
)

func main() {
	startupLogger, _ := monitoring.NewZapLogger(&config.LogConfig{Level: "info"})

	cfg, err := config.LoadConfig(startupLogger)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(context.Background(), "failed to initialize tracing", err)
	}

	metrics := monitoring.NewDefaultMetrics()

	gateway := cloud.NewClient(&cfg.Cloud, appLogger)
	channels := appservice.ChannelFactory(func() domainsvc.DeviceChannel {
		return iot.NewMQTTChannel(cfg.Cloud.IoTEndpoint, cfg.Cloud.Region, &cfg.Channel, appLogger)
	})

	registry := appservice.NewRegistry(appLogger, metrics)
	factory := appservice.NewSessionFactory(gateway, channels, &cfg.Session, appLogger, metrics)

	srv := router.NewRouter(
		cfg,
		appLogger,
		handlers.NewHealthHandler(registry),
		handlers.NewApplianceHandler(registry, factory, appLogger),
		tracing.Tracer(),
		metrics,
	)
	srv.SetupRoutes()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(srv.Start)

	group.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		registry.Shutdown(shutdownCtx)
		if err := srv.Stop(shutdownCtx); err != nil {
			return err
		}
		return tracing.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		appLogger.Fatal(context.Background(), "bridge terminated", err)
	}
	appLogger.Info(context.Background(), "bridge stopped")
}
