package queue

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/SundayYogurt/visa_service/internal/interfaces"
	"github.com/SundayYogurt/visa_service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

const (
	minReadBackoff = 200 * time.Millisecond
	maxReadBackoff = 10 * time.Second
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type KafkaConsumer struct {
	Reader      messageReader
	Handler     interfaces.ConsumerHandler
	ServiceName string

	backoff func(failures int) time.Duration
}

// readBackoff doubles from minReadBackoff per consecutive failure, capped at maxReadBackoff.
func readBackoff(failures int) time.Duration {
	if failures < 1 {
		return minReadBackoff
	}
	if failures > 10 {
		return maxReadBackoff
	}
	d := minReadBackoff << (failures - 1)
	if d > maxReadBackoff {
		return maxReadBackoff
	}
	return d
}

func NewKafkaConsumer(broker, topic, groupID, username, password string, handler interfaces.ConsumerHandler) *KafkaConsumer {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	if username != "" {
		dialer.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
		dialer.SASLMechanism = plain.Mechanism{Username: username, Password: password}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{broker},
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
		Dialer:   dialer,
	})

	return &KafkaConsumer{
		Reader:      reader,
		Handler:     handler,
		ServiceName: "visa-notifier",
		backoff:     readBackoff,
	}
}

// Listen consumes until ctx is cancelled. Handler failures are logged and the offset still
// advances; notifications are best effort. Read errors back off until a read succeeds.
func (kc *KafkaConsumer) Listen(ctx context.Context) error {
	log := logger.With("service", kc.ServiceName)
	backoff := kc.backoff
	if backoff == nil {
		backoff = readBackoff
	}

	failures := 0
	for {
		msg, err := kc.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return kc.Reader.Close()
			}
			failures++
			delay := backoff(failures)
			log.Warn().Err(err).Int("failures", failures).Dur("retry_in", delay).Msg("read message")

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return kc.Reader.Close()
			case <-timer.C:
			}
			continue
		}
		failures = 0

		log.Debug().Str("key", string(msg.Key)).Int64("offset", msg.Offset).Msg("message received")

		if err := kc.Handler.HandleMessage(string(msg.Value)); err != nil {
			log.Error().Err(err).Str("key", string(msg.Key)).Msg("handle message")
		}
	}
}
