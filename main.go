package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SundayYogurt/visa_service/config"
	"github.com/SundayYogurt/visa_service/internal/api"
	"github.com/SundayYogurt/visa_service/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()
	logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	server, err := api.NewServer(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("server init")
	}

	go func() {
		if err := server.Listen(); err != nil {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	if err := server.Shutdown(10 * time.Second); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
