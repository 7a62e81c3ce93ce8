package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"betline-server/services/support-api/internal/config"
	"betline-server/services/support-api/internal/infrastructure/crontab"
	"betline-server/services/support-api/internal/infrastructure/logger"
	"betline-server/services/support-api/internal/infrastructure/observability"
	"betline-server/services/support-api/internal/interfaces/httpserver"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	_ "net/http/pprof"
)

type Application struct {
	httpServer *httpserver.HTTPServer
	crontab    *crontab.Crontab
	config     *config.Config
}

func init() {
	logger.GetLogger()
	config.Load()
}

// @title Betline Support API
// @version 1.0
// @description Customer support chat backend for the betting platform: flow routing, ticket resolution, identity verification.
// @BasePath /
func (application *Application) Start() {
	background := context.Background()
	ctx, cancel := context.WithCancel(background)
	defer cancel()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	var eg errgroup.Group
	eg.Go(func() error {
		err := http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", application.config.MetricsPort), metricsMux)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := http.ListenAndServe("0.0.0.0:6060", nil)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.crontab.Run(ctx)
		if err != nil {
			cancel()
		}
		return err
	})
	eg.Go(func() error {
		err := application.httpServer.Run()
		if err != nil {
			cancel()
		}
		return err
	})

	if err := eg.Wait(); err != nil {
		panic(err)
	}
}

func main() {
	ctx := context.Background()
	log := logger.GetLogger()

	cfg := config.GetGlobal()
	if cfg == nil {
		log.Fatal().Msg("config not loaded")
	}

	application, err := CreateApplication()
	if err != nil {
		log.Fatal().Err(err).Msg("create application")
	}

	otelShutdown, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	application.Start()
}
