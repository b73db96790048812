package services

import (
	"fmt"
	"strings"

	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"github.com/SundayYogurt/visa_service/pkg/apperrors"
)

// notFoundOr converts a missing-row error into a NotFound with msg; other errors are wrapped.
func notFoundOr(err error, msg string) error {
	if helper.IsNotFound(err) {
		return apperrors.NewNotFound(msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// trimmedOrNil returns nil for absent or blank strings.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func requireStaff(actor dto.AuthResponse) error {
	if !actor.Role.IsStaff() {
		return apperrors.NewForbidden("staff only")
	}
	return nil
}

func requireDirector(actor dto.AuthResponse) error {
	if !actor.IsDirector() {
		return apperrors.NewForbidden("director only")
	}
	return nil
}
