package services

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/SundayYogurt/visa_service/internal/domain"
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRequest(t *testing.T, f *fixture) *domain.VerificationRequest {
	t.Helper()
	req, created, err := f.verifications().Open(f.student, dto.CreateVerificationRequest{CountryID: 1})
	require.NoError(t, err)
	require.True(t, created)
	return req
}

func submission(requirementID uint, name string, size int64) dto.SubmitDocumentRequest {
	return dto.SubmitDocumentRequest{
		RequirementID: requirementID,
		FileURL:       "https://cdn.example.com/" + name,
		OriginalName:  name,
		FileName:      name,
		FileSize:      size,
		MimeType:      "application/octet-stream",
	}
}

func TestSubmitSizeAndTypeScenario(t *testing.T) {
	f := newFixture()
	svc := f.documents(nil)
	req := openRequest(t, f)

	_, _, err := svc.Submit(f.student, req.ID, submission(f.passport.ID, "id.jpg", 6_000_000))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Empty(t, f.store.documents)

	doc, created, err := svc.Submit(f.student, req.ID, submission(f.passport.ID, "id.jpg", 1_000_000))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.DocumentPending, doc.Status)
	assert.Len(t, f.store.documents, 1)
}

func TestSubmitExtensionIsCaseInsensitive(t *testing.T) {
	f := newFixture()
	svc := f.documents(nil)
	req := openRequest(t, f)

	_, _, err := svc.Submit(f.student, req.ID, submission(f.transcript.ID, "scan.PDF", 1000))
	require.NoError(t, err)

	_, _, err = svc.Submit(f.student, req.ID, submission(f.transcript.ID, "scan.docx", 1000))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = svc.Submit(f.student, req.ID, submission(f.transcript.ID, "noext", 1000))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, _, err = svc.Submit(f.student, req.ID, submission(f.transcript.ID, "empty.pdf", 0))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSubmitValidationOrder(t *testing.T) {
	f := newFixture()
	svc := f.documents(nil)
	req := openRequest(t, f)

	// someone else's request is invisible
	_, _, err := svc.Submit(f.otherStudent, req.ID, submission(f.passport.ID, "id.jpg", 1000))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, _, err = svc.Submit(f.student, 9999, submission(f.passport.ID, "id.jpg", 1000))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// unknown requirement is a bad request, not a missing resource
	_, _, err = svc.Submit(f.student, req.ID, submission(777, "id.jpg", 1000))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	f.store.requirements[f.photo.ID].Active = false
	_, _, err = svc.Submit(f.student, req.ID, submission(f.photo.ID, "me.jpg", 1000))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	f.store.requirements[40] = &domain.DocumentRequirement{ID: 40, CountryID: 2, Title: "Other",
		MaxFileSize: 1000, AllowedTypes: []string{"pdf"}, Active: true}
	_, _, err = svc.Submit(f.student, req.ID, submission(40, "x.pdf", 10))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.Empty(t, f.store.documents)
}

func TestSubmitReplacementResetsReview(t *testing.T) {
	f := newFixture()
	svc := f.documents(nil)
	req := openRequest(t, f)

	first, _, err := svc.Submit(f.student, req.ID, submission(f.passport.ID, "old.pdf", 1000))
	require.NoError(t, err)

	_, err = svc.Review(f.associate, first.ID, dto.ReviewDocumentRequest{
		Status:          "REJECTED",
		RejectionReason: strPtr("blurry"),
	})
	require.NoError(t, err)

	in := submission(f.passport.ID, "new.pdf", 2000)
	in.ParentDocumentID = &first.ID
	replaced, created, err := svc.Submit(f.student, req.ID, in)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, replaced.ID)

	stored := f.store.documents[first.ID]
	assert.Equal(t, domain.DocumentPending, stored.Status)
	assert.Equal(t, "new.pdf", stored.FileName)
	assert.Nil(t, stored.RejectionReason)
	assert.Nil(t, stored.ReviewedByID)
	assert.Len(t, f.store.documents, 1)

	var audit *domain.AuditLog
	for i, a := range f.store.audits {
		if a.Action == domain.AuditDocumentReplaced {
			audit = &f.store.audits[i]
		}
	}
	require.NotNil(t, audit)
	assert.Equal(t, domain.RoleStudent, audit.ActorRole)
	assert.Equal(t, domain.EntityDocument, audit.Entity)

	// parent for another requirement
	wrong := submission(f.transcript.ID, "t.pdf", 10)
	wrong.ParentDocumentID = &first.ID
	_, _, err = svc.Submit(f.student, req.ID, wrong)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	missing := uint(4242)
	gone := submission(f.passport.ID, "g.pdf", 10)
	gone.ParentDocumentID = &missing
	_, _, err = svc.Submit(f.student, req.ID, gone)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestReviewAggregationScenario(t *testing.T) {
	f := newFixture()
	svc := f.documents(nil)
	req := openRequest(t, f)

	var ids []uint
	for _, r := range []struct {
		id   uint
		name string
	}{{f.passport.ID, "p.pdf"}, {f.photo.ID, "me.png"}, {f.transcript.ID, "t.pdf"}} {
		doc, _, err := svc.Submit(f.student, req.ID, submission(r.id, r.name, 100))
		require.NoError(t, err)
		ids = append(ids, doc.ID)
	}

	var res *dto.ReviewDocumentResponse
	var err error
	for i, id := range ids {
		res, err = svc.Review(f.associate, id, dto.ReviewDocumentRequest{Status: "APPROVED"})
		require.NoError(t, err)
		if i < len(ids)-1 {
			assert.Equal(t, domain.VerificationInReview, res.RequestStatus)
		}
	}
	assert.Equal(t, domain.VerificationCompleted, res.RequestStatus)
	assert.Equal(t, domain.VerificationCompleted, f.store.requests[req.ID].Status)

	res, err = svc.Review(f.associate, ids[1], dto.ReviewDocumentRequest{Status: "RESUBMISSION_REQUIRED", RejectionReason: strPtr("face hidden")})
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationRejected, res.RequestStatus)
	assert.Equal(t, req.ID, res.VerificationRequestID)

	stored := f.store.requests[req.ID]
	assert.Equal(t, domain.VerificationRejected, stored.Status)
	require.NotNil(t, stored.AssignedToID)
	assert.Equal(t, f.associate.UserID, *stored.AssignedToID)
}

func TestReviewRejectionReasonOnlyWhenFailing(t *testing.T) {
	f := newFixture()
	svc := f.documents(nil)
	req := openRequest(t, f)
	doc, _, err := svc.Submit(f.student, req.ID, submission(f.passport.ID, "p.pdf", 100))
	require.NoError(t, err)

	res, err := svc.Review(f.associate, doc.ID, dto.ReviewDocumentRequest{
		Status:          "approved",
		ReviewNotes:     strPtr("looks fine"),
		RejectionReason: strPtr("should be dropped"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentApproved, res.Document.Status)
	assert.Nil(t, res.Document.RejectionReason)
	require.NotNil(t, res.Document.ReviewNotes)
	assert.Equal(t, "looks fine", *res.Document.ReviewNotes)

	res, err = svc.Review(f.associate, doc.ID, dto.ReviewDocumentRequest{Status: "REJECTED", RejectionReason: strPtr("expired")})
	require.NoError(t, err)
	require.NotNil(t, res.Document.RejectionReason)
	assert.Equal(t, "expired", *res.Document.RejectionReason)
}

func TestReviewIsIdempotentExceptTimestamp(t *testing.T) {
	f := newFixture()
	svc := f.documents(nil).(*documentService)
	req := openRequest(t, f)
	doc, _, err := svc.Submit(f.student, req.ID, submission(f.passport.ID, "p.pdf", 100))
	require.NoError(t, err)

	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	in := dto.ReviewDocumentRequest{Status: "REJECTED", RejectionReason: strPtr("expired")}
	first, err := svc.Review(f.associate, doc.ID, in)
	require.NoError(t, err)

	svc.now = func() time.Time { return t0.Add(time.Hour) }
	second, err := svc.Review(f.associate, doc.ID, in)
	require.NoError(t, err)

	assert.Equal(t, first.RequestStatus, second.RequestStatus)
	assert.Equal(t, first.Document.Status, second.Document.Status)
	assert.Equal(t, *first.Document.RejectionReason, *second.Document.RejectionReason)
	assert.Equal(t, *first.Document.ReviewedByID, *second.Document.ReviewedByID)
	assert.True(t, second.Document.ReviewedAt.After(*first.Document.ReviewedAt))
}

func TestReviewErrors(t *testing.T) {
	f := newFixture()
	svc := f.documents(nil)

	_, err := svc.Review(f.associate, 1, dto.ReviewDocumentRequest{Status: "PENDING"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Review(f.associate, 12345, dto.ReviewDocumentRequest{Status: "APPROVED"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Review(f.student, 1, dto.ReviewDocumentRequest{Status: "APPROVED"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestReviewPublishesEvents(t *testing.T) {
	f := newFixture()
	svc := f.documents(nil)
	req := openRequest(t, f)
	doc, _, err := svc.Submit(f.student, req.ID, submission(f.passport.ID, "p.pdf", 100))
	require.NoError(t, err)

	_, err = svc.Review(f.associate, doc.ID, dto.ReviewDocumentRequest{Status: "APPROVED"})
	require.NoError(t, err)
	assert.Equal(t, []string{dto.EventDocumentReviewed, dto.EventVerificationStatus}, f.producer.types())

	// same aggregate again: no status event
	_, err = svc.Review(f.associate, doc.ID, dto.ReviewDocumentRequest{Status: "APPROVED"})
	require.NoError(t, err)
	assert.Equal(t, []string{dto.EventDocumentReviewed, dto.EventVerificationStatus, dto.EventDocumentReviewed}, f.producer.types())
}

func TestUploadStoresUnderCountryFolder(t *testing.T) {
	f := newFixture()
	up := &fakeUploader{}
	svc := f.documents(up)

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8)), nil))

	res, err := svc.Upload(context.Background(), f.student, f.photo.ID, "Me.JPG", buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, "visa/documents/canada", up.folder)
	assert.Equal(t, "image/jpeg", res.MimeType)
	assert.Equal(t, "Me.JPG", res.OriginalName)
	assert.Equal(t, up.filename+".jpg", res.FileName)
	assert.Contains(t, res.FileURL, up.filename)
	assert.Equal(t, int64(up.size), res.FileSize)
}

func TestUploadChecksConstraintsBeforeStoring(t *testing.T) {
	f := newFixture()
	up := &fakeUploader{}
	svc := f.documents(up)

	_, err := svc.Upload(context.Background(), f.student, f.transcript.ID, "t.png", []byte("png"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Upload(context.Background(), f.student, f.photo.ID, "me.jpg", make([]byte, 2*1024*1024+1))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Upload(context.Background(), f.student, 999, "me.jpg", []byte("x"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.Empty(t, up.folder)
}
