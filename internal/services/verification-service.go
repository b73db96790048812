package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/SundayYogurt/visa_service/internal/domain"
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/helper"
	"github.com/SundayYogurt/visa_service/internal/interfaces"
	"github.com/SundayYogurt/visa_service/internal/repository"
	"github.com/SundayYogurt/visa_service/pkg/apperrors"
	"github.com/SundayYogurt/visa_service/pkg/logger"
)

type VerificationService interface {
	// Student side
	Open(actor dto.AuthResponse, input dto.CreateVerificationRequest) (*domain.VerificationRequest, bool, error)
	ListMine(actor dto.AuthResponse) ([]domain.VerificationRequest, error)
	GetMine(actor dto.AuthResponse, id uint) (*domain.VerificationRequest, error)

	// Staff side
	List(actor dto.AuthResponse, filter dto.VerificationFilter) ([]domain.VerificationRequest, int64, error)
	Get(actor dto.AuthResponse, id uint) (*domain.VerificationRequest, error)
	Update(actor dto.AuthResponse, id uint, input dto.UpdateVerificationRequest) (*domain.VerificationRequest, error)
	History(actor dto.AuthResponse, id uint) ([]domain.AuditLog, error)
}

type verificationService struct {
	verificationRepo repository.VerificationRepository
	countryRepo      repository.CountryRepository
	staffRepo        repository.StaffRepository
	studentRepo      repository.StudentRepository
	auditRepo        repository.AuditRepository
	audit            auditor
	notify           notifier
	now              func() time.Time
}

func NewVerificationService(
	verificationRepo repository.VerificationRepository,
	countryRepo repository.CountryRepository,
	staffRepo repository.StaffRepository,
	studentRepo repository.StudentRepository,
	auditRepo repository.AuditRepository,
	producer interfaces.ProducerHandler,
) VerificationService {
	return &verificationService{
		verificationRepo: verificationRepo,
		countryRepo:      countryRepo,
		staffRepo:        staffRepo,
		studentRepo:      studentRepo,
		auditRepo:        auditRepo,
		audit:            auditor{repo: auditRepo},
		notify:           newNotifier(producer),
		now:              time.Now,
	}
}

func (s *verificationService) Open(actor dto.AuthResponse, input dto.CreateVerificationRequest) (*domain.VerificationRequest, bool, error) {
	if actor.Role != domain.RoleStudent {
		return nil, false, apperrors.NewForbidden("students only")
	}
	if _, err := s.countryRepo.FindByID(input.CountryID); err != nil {
		return nil, false, notFoundOr(err, "country not found")
	}

	req, created, err := s.verificationRepo.FindOrCreateOpen(actor.UserID, input.CountryID)
	if err != nil {
		return nil, false, fmt.Errorf("open verification request: %w", err)
	}
	return req, created, nil
}

func (s *verificationService) ListMine(actor dto.AuthResponse) ([]domain.VerificationRequest, error) {
	return s.verificationRepo.ListByStudent(actor.UserID)
}

func (s *verificationService) GetMine(actor dto.AuthResponse, id uint) (*domain.VerificationRequest, error) {
	req, err := s.verificationRepo.FindDetailed(id)
	if err != nil {
		return nil, notFoundOr(err, "verification request not found")
	}
	if req.StudentID != actor.UserID {
		return nil, apperrors.NewNotFound("verification request not found")
	}
	return req, nil
}

func (s *verificationService) List(actor dto.AuthResponse, filter dto.VerificationFilter) ([]domain.VerificationRequest, int64, error) {
	if err := requireStaff(actor); err != nil {
		return nil, 0, err
	}
	if filter.Status != "" {
		status := domain.VerificationStatus(strings.ToUpper(filter.Status))
		if !status.Valid() {
			return nil, 0, apperrors.NewValidation("invalid status filter")
		}
		filter.Status = string(status)
	}
	return s.verificationRepo.List(filter)
}

func (s *verificationService) Get(actor dto.AuthResponse, id uint) (*domain.VerificationRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	req, err := s.verificationRepo.FindDetailed(id)
	if err != nil {
		return nil, notFoundOr(err, "verification request not found")
	}
	return req, nil
}

// Update is the direct override. Reassignment is director-only; a status set here bypasses
// document aggregation and is audited.
func (s *verificationService) Update(actor dto.AuthResponse, id uint, input dto.UpdateVerificationRequest) (*domain.VerificationRequest, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if input.AssignedToID == nil && input.Status == nil && input.ReviewNotes == nil {
		return nil, apperrors.NewValidation("nothing to update")
	}
	if input.AssignedToID != nil && !actor.IsDirector() {
		return nil, apperrors.NewForbidden("only a director can reassign a verification request")
	}

	var status domain.VerificationStatus
	if input.Status != nil {
		status = domain.VerificationStatus(strings.ToUpper(strings.TrimSpace(*input.Status)))
		if !status.Valid() {
			return nil, apperrors.NewValidation("status must be one of PENDING, IN_REVIEW, COMPLETED, REJECTED")
		}
	}

	req, err := s.verificationRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "verification request not found")
	}

	fields := map[string]any{}

	if input.AssignedToID != nil {
		if _, err := s.staffRepo.FindActiveByID(*input.AssignedToID); err != nil {
			if helper.IsNotFound(err) {
				return nil, apperrors.NewValidation("assignee must be an active staff member")
			}
			return nil, fmt.Errorf("find assignee: %w", err)
		}
		fields["assigned_to_id"] = *input.AssignedToID
	}

	if input.ReviewNotes != nil {
		fields["review_notes"] = trimmedOrNil(input.ReviewNotes)
	}

	if input.Status != nil {
		fields["status"] = status
		if req.AssignedToID == nil && input.AssignedToID == nil {
			fields["assigned_to_id"] = actor.UserID
		}
		if status.Terminal() {
			fields["reviewed_by_id"] = actor.UserID
			fields["reviewed_at"] = s.now()
		}
	}

	if err := s.verificationRepo.Update(id, fields); err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, errOpenRequestExists()
		}
		return nil, notFoundOr(err, "verification request not found")
	}

	if input.AssignedToID != nil {
		note := fmt.Sprintf("assigned to staff #%d", *input.AssignedToID)
		s.audit.record(actor, domain.AuditRequestReassigned, domain.EntityVerification, id, &note)
	}
	if input.Status != nil {
		note := fmt.Sprintf("%s -> %s", req.Status, status)
		s.audit.record(actor, domain.AuditRequestStatusForced, domain.EntityVerification, id, &note)
		if status != req.Status {
			s.notifyStatus(req.StudentID, id, status)
		}
	}

	updated, err := s.verificationRepo.FindDetailed(id)
	if err != nil {
		return nil, notFoundOr(err, "verification request not found")
	}
	return updated, nil
}

// errOpenRequestExists reports a move off COMPLETED while the student has opened a newer
// request for the same country.
func errOpenRequestExists() error {
	return apperrors.NewConflict("student already has an open verification request for this country")
}

// History lists the request's reassignments and status overrides, oldest first.
func (s *verificationService) History(actor dto.AuthResponse, id uint) ([]domain.AuditLog, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}
	if _, err := s.verificationRepo.FindByID(id); err != nil {
		return nil, notFoundOr(err, "verification request not found")
	}
	return s.auditRepo.ListByEntity(domain.EntityVerification, id)
}

func (s *verificationService) notifyStatus(studentID, requestID uint, status domain.VerificationStatus) {
	if s.notify.producer == nil {
		return
	}
	student, err := s.studentRepo.FindByID(studentID)
	if err != nil {
		logger.Warn().Err(err).Uint("student_id", studentID).Msg("load student for notification")
		return
	}
	s.notify.publish(dto.NotificationEvent{
		Type:           dto.EventVerificationStatus,
		RecipientEmail: student.Email,
		RecipientName:  student.FullName,
		SubjectID:      requestID,
		Title:          fmt.Sprintf("Verification request #%d", requestID),
		Status:         string(status),
	})
}
