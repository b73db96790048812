package services

import "github.com/SundayYogurt/visa_service/internal/domain"

// AggregateStatus derives a verification request's status from its documents:
// any failing document rejects the request, a non-empty fully approved set completes it,
// anything else is still in review.
func AggregateStatus(docs []domain.StudentDocument) domain.VerificationStatus {
	if len(docs) == 0 {
		return domain.VerificationInReview
	}

	approved := 0
	for _, d := range docs {
		if d.Status.Failing() {
			return domain.VerificationRejected
		}
		if d.Status == domain.DocumentApproved {
			approved++
		}
	}

	if approved == len(docs) {
		return domain.VerificationCompleted
	}
	return domain.VerificationInReview
}
