package reports

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryReviewRepository keeps review items in process memory
type MemoryReviewRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*ReviewItem
}

var _ ReviewRepository = (*MemoryReviewRepository)(nil)

// NewMemoryReviewRepository creates an empty repository
func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{items: make(map[uuid.UUID]*ReviewItem)}
}

// CreateReview stores a copy of item
func (r *MemoryReviewRepository) CreateReview(ctx context.Context, item *ReviewItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *item
	r.items[item.ID] = &cp
	return nil
}

// GetReview returns a review by id
func (r *MemoryReviewRepository) GetReview(ctx context.Context, id uuid.UUID) (*ReviewItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	cp := *item
	return &cp, nil
}

// ListPendingReviews returns pending reviews, oldest first
func (r *MemoryReviewRepository) ListPendingReviews(ctx context.Context, limit, offset int) ([]*ReviewItem, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := make([]*ReviewItem, 0)
	for _, item := range r.items {
		if item.Status == ReviewPending {
			cp := *item
			pending = append(pending, &cp)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
	})

	total := int64(len(pending))
	if offset >= len(pending) {
		return []*ReviewItem{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(pending) {
		end = len(pending)
	}
	return pending[offset:end], total, nil
}

// ResolveReview implements ReviewRepository
func (r *MemoryReviewRepository) ResolveReview(ctx context.Context, id uuid.UUID, status ReviewStatus, resolvedBy, notes string, resolvedAt time.Time) (*ReviewItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	if item.Status != ReviewPending {
		return nil, ErrReviewNotPending
	}

	item.Status = status
	item.ResolvedBy = resolvedBy
	item.ResolvedAt = &resolvedAt
	item.Notes = notes

	cp := *item
	return &cp, nil
}

// ReopenReview implements ReviewRepository
func (r *MemoryReviewRepository) ReopenReview(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return ErrReviewNotFound
	}
	item.Status = ReviewPending
	item.ResolvedBy = ""
	item.ResolvedAt = nil
	item.Notes = ""
	return nil
}
