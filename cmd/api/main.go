package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"outreach/internal/adapter/repo"
	"outreach/internal/crm"
	"outreach/internal/enrich"
	"outreach/internal/http/handlers"
	httpapi "outreach/internal/http/httpapi"
	"outreach/internal/infra"
	"outreach/internal/infra/geoip"
	"outreach/internal/providers/summary"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	crmClient, err := crm.NewClient(crm.Options{
		APIKey:  cfg.CRMAPIKey,
		BaseURL: cfg.CRMBaseURL,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure crm client")
	}

	var summarizer enrich.Summarizer
	if cfg.SummaryAPIKey != "" {
		client, err := summary.NewClient(summary.Options{
			APIKey:  cfg.SummaryAPIKey,
			BaseURL: cfg.SummaryBaseURL,
			Model:   cfg.SummaryModel,
			Logger:  &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure summary client")
		}
		summarizer = client
	} else {
		logger.Warn().Msg("summary api key missing, digests will skip generated talking points")
	}

	countries, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, skipping country tagging")
	}

	app := handlers.NewApp(
		logger,
		repo.NewOutreachRepository(dbpool),
		repo.NewRunRepository(dbpool),
		enrich.NewGivingService(crmClient, cfg.CRMPageSize, logger),
		enrich.NewDigestService(crmClient, summarizer, cfg.CRMPageSize, logger),
	)

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		Countries:       countries,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != os.ErrClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
