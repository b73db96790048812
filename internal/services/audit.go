package services

import (
	"github.com/SundayYogurt/visa_service/internal/domain"
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/repository"
	"github.com/SundayYogurt/visa_service/pkg/logger"
)

// auditor writes audit rows after the audited change has committed; a failed write is logged only.
type auditor struct {
	repo repository.AuditRepository
}

func (a auditor) record(actor dto.AuthResponse, action, entity string, entityID uint, note *string) {
	if a.repo == nil {
		return
	}
	if err := a.repo.Create(&domain.AuditLog{
		ActorID:   actor.UserID,
		ActorRole: actor.Role,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Note:      note,
	}); err != nil {
		logger.Warn().Err(err).Str("action", action).Uint("entity_id", entityID).Msg("write audit log")
	}
}

func strPtr(s string) *string {
	return &s
}
