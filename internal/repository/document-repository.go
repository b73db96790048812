package repository

import (
	"time"

	"github.com/SundayYogurt/visa_service/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewInput is one reviewer decision on a document.
type ReviewInput struct {
	Status          domain.DocumentStatus
	ReviewNotes     *string
	RejectionReason *string
	ReviewerID      uint
	ReviewedAt      time.Time
}

type ReviewResult struct {
	Document       domain.StudentDocument
	Request        domain.VerificationRequest
	PreviousStatus domain.VerificationStatus
}

// AggregateFunc derives a request status from all of its documents.
type AggregateFunc func(docs []domain.StudentDocument) domain.VerificationStatus

type DocumentRepository interface {
	Create(doc *domain.StudentDocument) error
	FindByID(id uint) (*domain.StudentDocument, error)
	Replace(doc *domain.StudentDocument) error
	Review(docID uint, in ReviewInput, aggregate AggregateFunc) (*ReviewResult, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (d *documentRepository) Create(doc *domain.StudentDocument) error {
	return d.db.Create(doc).Error
}

func (d *documentRepository) FindByID(id uint) (*domain.StudentDocument, error) {
	var doc domain.StudentDocument
	if err := d.db.First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// Replace overwrites a previous submission in place; review fields are expected to be cleared.
func (d *documentRepository) Replace(doc *domain.StudentDocument) error {
	return d.db.Model(&domain.StudentDocument{}).
		Where("id = ?", doc.ID).
		Updates(map[string]any{
			"parent_document_id": doc.ParentDocumentID,
			"file_name":          doc.FileName,
			"original_name":      doc.OriginalName,
			"file_url":           doc.FileURL,
			"file_size":          doc.FileSize,
			"mime_type":          doc.MimeType,
			"status":             domain.DocumentPending,
			"review_notes":       nil,
			"rejection_reason":   nil,
			"reviewed_by_id":     nil,
			"reviewed_at":        nil,
		}).Error
}

// Review stores the decision and re-derives the parent request status in one transaction.
// The request row is locked so sibling reviews are serialised.
func (d *documentRepository) Review(docID uint, in ReviewInput, aggregate AggregateFunc) (*ReviewResult, error) {
	var out ReviewResult

	err := d.db.Transaction(func(tx *gorm.DB) error {
		var doc domain.StudentDocument
		if err := tx.First(&doc, docID).Error; err != nil {
			return err
		}

		var req domain.VerificationRequest
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, doc.VerificationRequestID).Error; err != nil {
			return err
		}
		out.PreviousStatus = req.Status

		reviewerID := in.ReviewerID
		reviewedAt := in.ReviewedAt
		if err := tx.Model(&domain.StudentDocument{}).
			Where("id = ?", doc.ID).
			Updates(map[string]any{
				"status":           in.Status,
				"review_notes":     in.ReviewNotes,
				"rejection_reason": in.RejectionReason,
				"reviewed_by_id":   reviewerID,
				"reviewed_at":      reviewedAt,
			}).Error; err != nil {
			return err
		}
		doc.Status = in.Status
		doc.ReviewNotes = in.ReviewNotes
		doc.RejectionReason = in.RejectionReason
		doc.ReviewedByID = &reviewerID
		doc.ReviewedAt = &reviewedAt

		var siblings []domain.StudentDocument
		if err := tx.Where("verification_request_id = ?", req.ID).Find(&siblings).Error; err != nil {
			return err
		}

		status := aggregate(siblings)
		if err := tx.Model(&domain.VerificationRequest{}).
			Where("id = ?", req.ID).
			Updates(map[string]any{
				"status":         status,
				"assigned_to_id": reviewerID,
			}).Error; err != nil {
			return err
		}
		req.Status = status
		req.AssignedToID = &reviewerID

		out.Document = doc
		out.Request = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
