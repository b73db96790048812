package notification

import (
	"encoding/json"
	"errors"

	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/pkg/logger"
)

type Notifier interface {
	Notify(event dto.NotificationEvent) error
}

type MailHandler struct {
	mail Notifier
}

func NewMailHandler(mail Notifier) *MailHandler {
	return &MailHandler{mail: mail}
}

// HandleMessage decodes one event from the topic. Event types this notifier does not
// render are skipped.
func (h *MailHandler) HandleMessage(message string) error {
	var event dto.NotificationEvent
	if err := json.Unmarshal([]byte(message), &event); err != nil {
		logger.Warn().Err(err).Msg("invalid notification payload")
		return err
	}

	err := h.mail.Notify(event)
	if errors.Is(err, ErrUnknownEvent) {
		logger.Debug().Str("type", event.Type).Msg("skip unknown event")
		return nil
	}
	return err
}
