package reports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrReviewNotFound is returned for unknown review ids
	ErrReviewNotFound = errors.New("review not found")
	// ErrReviewNotPending is returned when resolving an already resolved review
	ErrReviewNotPending = errors.New("review already resolved")
)

// ReviewRepository stores reports held for human review
type ReviewRepository interface {
	CreateReview(ctx context.Context, item *ReviewItem) error
	GetReview(ctx context.Context, id uuid.UUID) (*ReviewItem, error)
	ListPendingReviews(ctx context.Context, limit, offset int) ([]*ReviewItem, int64, error)
	// ResolveReview moves a pending review to status; exactly one caller wins
	ResolveReview(ctx context.Context, id uuid.UUID, status ReviewStatus, resolvedBy, notes string, resolvedAt time.Time) (*ReviewItem, error)
	// ReopenReview puts a resolved review back to pending
	ReopenReview(ctx context.Context, id uuid.UUID) error
}
