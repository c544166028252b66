package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"elexon"
	"elexon/internal/api/handler/endpoints"
	"elexon/internal/api/service"
	"elexon/internal/bmrs"
	"elexon/internal/metric"
	"elexon/internal/progress"
	"elexon/internal/registry"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := elexon.InitConfig(".env"); err != nil {
		elexon.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg := elexon.GetConfig()
	gin.SetMode(gin.ReleaseMode)
	if cfg.Mode == "dev" {
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg, err := registry.Load(ctx, cfg.SpecSource)
	if err != nil {
		elexon.Logger.Fatal().Err(err).Str("source", cfg.SpecSource).Msg("Failed to build dataset registry")
	}

	metrics := metric.New()
	reporter := progress.NewNATSReporter(cfg.NatsConfig.URL, cfg.NatsConfig.SubjectPrefix)
	defer reporter.Close()

	client := bmrs.NewClientFromConfig(cfg, bmrs.WithObserver(metrics))
	catalog := service.NewDatasetService(reg)
	downloads := service.NewDownloadService(reg, client,
		service.WithReporter(reporter),
		service.WithMetrics(metrics),
	)

	router, err := graceful.Default(graceful.WithAddr(cfg.ApiPort))
	if err != nil {
		panic(err)
	}
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	endpoints.SystemHandler(router, catalog, metrics)
	endpoints.DatasetHandler(router, catalog, downloads, cfg)

	elexon.Logger.Info().
		Int("datasets", catalog.Count()).
		Str("baseURL", client.BaseURL()).
		Msgf("Starting gateway on port %s", cfg.ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		elexon.Logger.Fatal().Msg(err.Error())
	}
}
