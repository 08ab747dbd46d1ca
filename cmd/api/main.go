package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"campaignkit/internal/bootstrap"
	"campaignkit/internal/http/handlers"
	"campaignkit/internal/http/httpapi"
	"campaignkit/internal/infra"
)

func main() {
	infra.LoadDotEnv()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.NewService(ctx, cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to build service")
	}

	app := handlers.NewApp(svc, &logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		RateLimitPerMin: cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)
	logger.Info().Str("addr", server.Addr()).Str("env", cfg.AppEnv).Msg("api: listening")
	if err := server.Run(ctx, cfg.HTTPIdleTimeout); err != nil {
		logger.Fatal().Err(err).Msg("api: http server failed")
	}
	logger.Info().Msg("api: server stopped")
}
