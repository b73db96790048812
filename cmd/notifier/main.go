package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SundayYogurt/visa_service/config"
	"github.com/SundayYogurt/visa_service/infra/queue"
	"github.com/SundayYogurt/visa_service/internal/notification"
	"github.com/SundayYogurt/visa_service/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()
	logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if err := cfg.ValidateNotifier(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Info().
		Str("broker", cfg.KafkaBroker).
		Str("topic", cfg.KafkaTopic).
		Str("group", cfg.KafkaGroupID).
		Msg("notifier starting")

	mailService, err := notification.NewMailService(
		notification.SMTPSender{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		},
		cfg.MailFrom,
		cfg.MailFromName,
		cfg.PortalBaseURL,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("mail service init")
	}

	consumer := queue.NewKafkaConsumer(
		cfg.KafkaBroker,
		cfg.KafkaTopic,
		cfg.KafkaGroupID,
		cfg.KafkaUsername,
		cfg.KafkaPassword,
		notification.NewMailHandler(mailService),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Msg("notifier listening for events")
	if err := consumer.Listen(ctx); err != nil {
		logger.Error().Err(err).Msg("consumer stopped")
	}
}
