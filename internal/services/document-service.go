package services

import (
	"context"
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
	"github.com/SundayYogurt/visa_service/pkg/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const uploadTimeout = 30 * time.Second

type DocumentService interface {
	// Submit records a file against a requirement. The bool is true when a new row was created.
	Submit(actor dto.AuthResponse, requestID uint, input dto.SubmitDocumentRequest) (*domain.StudentDocument, bool, error)
	Review(actor dto.AuthResponse, documentID uint, input dto.ReviewDocumentRequest) (*dto.ReviewDocumentResponse, error)
	Upload(ctx context.Context, actor dto.AuthResponse, requirementID uint, originalName string, data []byte) (*dto.UploadResponse, error)
}

type documentService struct {
	documentRepo     repository.DocumentRepository
	requirementRepo  repository.RequirementRepository
	verificationRepo repository.VerificationRepository
	countryRepo      repository.CountryRepository
	studentRepo      repository.StudentRepository
	audit            auditor
	uploader         interfaces.Uploader
	notify           notifier
	now              func() time.Time
}

func NewDocumentService(
	documentRepo repository.DocumentRepository,
	requirementRepo repository.RequirementRepository,
	verificationRepo repository.VerificationRepository,
	countryRepo repository.CountryRepository,
	studentRepo repository.StudentRepository,
	auditRepo repository.AuditRepository,
	uploader interfaces.Uploader,
	producer interfaces.ProducerHandler,
) DocumentService {
	return &documentService{
		documentRepo:     documentRepo,
		requirementRepo:  requirementRepo,
		verificationRepo: verificationRepo,
		countryRepo:      countryRepo,
		studentRepo:      studentRepo,
		audit:            auditor{repo: auditRepo},
		uploader:         uploader,
		notify:           newNotifier(producer),
		now:              time.Now,
	}
}

func (s *documentService) Submit(actor dto.AuthResponse, requestID uint, input dto.SubmitDocumentRequest) (*domain.StudentDocument, bool, error) {
	// 1. request must be the caller's own
	req, err := s.verificationRepo.FindByID(requestID)
	if err != nil {
		return nil, false, notFoundOr(err, "verification request not found")
	}
	if req.StudentID != actor.UserID {
		return nil, false, apperrors.NewNotFound("verification request not found")
	}

	// 2. requirement must be live and for the request's country
	requirement, err := s.requirementRepo.FindByID(input.RequirementID)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, false, apperrors.NewValidation("requirement not found")
		}
		return nil, false, fmt.Errorf("find requirement: %w", err)
	}
	if !requirement.Active {
		return nil, false, apperrors.NewValidation("requirement is not active")
	}
	if requirement.CountryID != req.CountryID {
		return nil, false, apperrors.NewValidation("requirement does not belong to the request's country")
	}

	// 3. size
	if input.FileSize <= 0 || input.FileSize > requirement.MaxFileSize {
		return nil, false, apperrors.NewValidation(
			fmt.Sprintf("file size must be between 1 and %d bytes", requirement.MaxFileSize))
	}

	// 4. extension
	ext := helper.FileExt(input.OriginalName)
	if ext == "" || !requirement.Allows(ext) {
		return nil, false, apperrors.NewValidation(
			fmt.Sprintf("file type not allowed; accepted: %s", strings.Join(requirement.AllowedTypes, ", ")))
	}

	doc := &domain.StudentDocument{
		RequirementID:         requirement.ID,
		VerificationRequestID: req.ID,
		StudentID:             actor.UserID,
		FileName:              strings.TrimSpace(input.FileName),
		OriginalName:          strings.TrimSpace(input.OriginalName),
		FileURL:               strings.TrimSpace(input.FileURL),
		FileSize:              input.FileSize,
		MimeType:              strings.TrimSpace(input.MimeType),
		Status:                domain.DocumentPending,
	}

	// 5. replacement or new row
	if input.ParentDocumentID == nil {
		if err := s.documentRepo.Create(doc); err != nil {
			return nil, false, fmt.Errorf("create document: %w", err)
		}
		return doc, true, nil
	}

	parent, err := s.documentRepo.FindByID(*input.ParentDocumentID)
	if err != nil {
		return nil, false, notFoundOr(err, "parent document not found")
	}
	if parent.VerificationRequestID != req.ID || parent.StudentID != actor.UserID {
		return nil, false, apperrors.NewValidation("parent document belongs to another request")
	}
	if parent.RequirementID != requirement.ID {
		return nil, false, apperrors.NewValidation("parent document is for a different requirement")
	}

	doc.ID = parent.ID
	doc.ParentDocumentID = input.ParentDocumentID
	doc.CreatedAt = parent.CreatedAt
	if err := s.documentRepo.Replace(doc); err != nil {
		return nil, false, notFoundOr(err, "parent document not found")
	}

	note := fmt.Sprintf("replaced %s with %s", parent.FileName, doc.FileName)
	s.audit.record(actor, domain.AuditDocumentReplaced, domain.EntityDocument, doc.ID, &note)
	return doc, false, nil
}

func (s *documentService) Review(actor dto.AuthResponse, documentID uint, input dto.ReviewDocumentRequest) (*dto.ReviewDocumentResponse, error) {
	if err := requireStaff(actor); err != nil {
		return nil, err
	}

	status := domain.DocumentStatus(strings.ToUpper(strings.TrimSpace(input.Status)))
	if !status.Reviewable() {
		return nil, apperrors.NewValidation("status must be one of APPROVED, REJECTED, RESUBMISSION_REQUIRED")
	}

	reason := trimmedOrNil(input.RejectionReason)
	if !status.Failing() {
		reason = nil
	}

	res, err := s.documentRepo.Review(documentID, repository.ReviewInput{
		Status:          status,
		ReviewNotes:     trimmedOrNil(input.ReviewNotes),
		RejectionReason: reason,
		ReviewerID:      actor.UserID,
		ReviewedAt:      s.now(),
	}, AggregateStatus)
	if err != nil {
		if helper.IsDuplicateKey(err) {
			return nil, errOpenRequestExists()
		}
		return nil, notFoundOr(err, "document not found")
	}

	s.audit.record(actor, domain.AuditDocumentReviewed, domain.EntityDocument, res.Document.ID, strPtr(string(status)))
	s.notifyReview(res)

	return &dto.ReviewDocumentResponse{
		Document:              res.Document,
		VerificationRequestID: res.Request.ID,
		RequestStatus:         res.Request.Status,
	}, nil
}

func (s *documentService) notifyReview(res *repository.ReviewResult) {
	if s.notify.producer == nil {
		return
	}
	student, err := s.studentRepo.FindByID(res.Document.StudentID)
	if err != nil {
		logger.Warn().Err(err).Uint("student_id", res.Document.StudentID).Msg("load student for notification")
		return
	}

	note := ""
	if res.Document.RejectionReason != nil {
		note = *res.Document.RejectionReason
	} else if res.Document.ReviewNotes != nil {
		note = *res.Document.ReviewNotes
	}

	s.notify.publish(dto.NotificationEvent{
		Type:           dto.EventDocumentReviewed,
		RecipientEmail: student.Email,
		RecipientName:  student.FullName,
		SubjectID:      res.Document.ID,
		Title:          res.Document.OriginalName,
		Status:         string(res.Document.Status),
		Note:           note,
	})

	if res.PreviousStatus != res.Request.Status {
		s.notify.publish(dto.NotificationEvent{
			Type:           dto.EventVerificationStatus,
			RecipientEmail: student.Email,
			RecipientName:  student.FullName,
			SubjectID:      res.Request.ID,
			Title:          fmt.Sprintf("Verification request #%d", res.Request.ID),
			Status:         string(res.Request.Status),
		})
	}
}

func (s *documentService) Upload(ctx context.Context, actor dto.AuthResponse, requirementID uint, originalName string, data []byte) (*dto.UploadResponse, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	requirement, err := s.requirementRepo.FindByID(requirementID)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, apperrors.NewValidation("requirement not found")
		}
		return nil, fmt.Errorf("find requirement: %w", err)
	}
	if !requirement.Active {
		return nil, apperrors.NewValidation("requirement is not active")
	}

	size := int64(len(data))
	if size == 0 || size > requirement.MaxFileSize {
		return nil, apperrors.NewValidation(
			fmt.Sprintf("file size must be between 1 and %d bytes", requirement.MaxFileSize))
	}

	ext := helper.FileExt(originalName)
	if ext == "" || !requirement.Allows(ext) {
		return nil, apperrors.NewValidation(
			fmt.Sprintf("file type not allowed; accepted: %s", strings.Join(requirement.AllowedTypes, ", ")))
	}

	mime := mimetype.Detect(data)
	if (ext == "jpg" || ext == "jpeg") && mime.Is("image/jpeg") {
		if normalized, err := utils.NormalizeJPEG(data, utils.ScanMaxWidth, utils.ScanQuality); err == nil {
			data = normalized
		} else {
			logger.Debug().Err(err).Str("file", originalName).Msg("jpeg normalise skipped")
		}
	}

	folder := "visa/documents"
	if country, err := s.countryRepo.FindByID(requirement.CountryID); err == nil && country.Slug != "" {
		folder += "/" + country.Slug
	}

	id := uuid.NewString()
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	url, err := s.uploader.UploadBytes(ctx, folder, id, data)
	if err != nil {
		return nil, fmt.Errorf("upload file: %w", err)
	}

	logger.Info().
		Uint("student_id", actor.UserID).
		Uint("requirement_id", requirement.ID).
		Int("bytes", len(data)).
		Msg("document uploaded")

	return &dto.UploadResponse{
		FileURL:      url,
		FileName:     id + "." + ext,
		OriginalName: originalName,
		FileSize:     int64(len(data)),
		MimeType:     mime.String(),
	}, nil
}
