package services

import (
	"encoding/json"
	"time"

	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/interfaces"
	"github.com/SundayYogurt/visa_service/pkg/logger"
)

// notifier publishes best-effort notification events; a failed publish never fails the
// operation that triggered it.
type notifier struct {
	producer interfaces.ProducerHandler
	now      func() time.Time
}

func newNotifier(producer interfaces.ProducerHandler) notifier {
	return notifier{producer: producer, now: time.Now}
}

func (n notifier) publish(event dto.NotificationEvent) {
	if n.producer == nil || event.RecipientEmail == "" {
		return
	}
	event.OccurredAt = n.now().UTC().Format(time.RFC3339)

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("type", event.Type).Msg("encode notification")
		return
	}

	if err := n.producer.PublishMessage([]byte(event.Type), payload); err != nil {
		logger.Warn().Err(err).Str("type", event.Type).Uint("subject_id", event.SubjectID).Msg("publish notification")
	}
}
