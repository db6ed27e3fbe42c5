package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/fraud-registry/internal/phonekey"
)

// PostgresReviewRepository stores review items in the report_reviews table
type PostgresReviewRepository struct {
	db *pgxpool.Pool
}

var _ ReviewRepository = (*PostgresReviewRepository)(nil)

// NewPostgresReviewRepository creates a new review repository
func NewPostgresReviewRepository(db *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

const reviewColumns = `
	id, reporter_phone_key, reported_phone_key, report_text, is_suspicious,
	verdict_reason, status, submitted_by, submitted_at, resolved_by, resolved_at, notes`

// CreateReview inserts a new review item
func (r *PostgresReviewRepository) CreateReview(ctx context.Context, item *ReviewItem) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO report_reviews (
			id, reporter_phone_key, reported_phone_key, report_text, is_suspicious,
			verdict_reason, status, submitted_by, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		item.ID,
		string(item.ReporterPhoneKey),
		string(item.ReportedPhoneKey),
		item.ReportText,
		item.Verdict.IsSuspicious,
		item.Verdict.Reason,
		string(item.Status),
		item.SubmittedBy,
		item.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetReview retrieves a review by id
func (r *PostgresReviewRepository) GetReview(ctx context.Context, id uuid.UUID) (*ReviewItem, error) {
	item, err := scanReview(r.db.QueryRow(ctx, `SELECT `+reviewColumns+` FROM report_reviews WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return item, nil
}

// ListPendingReviews returns pending reviews, oldest first, with the total pending count
func (r *PostgresReviewRepository) ListPendingReviews(ctx context.Context, limit, offset int) ([]*ReviewItem, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM report_reviews WHERE status = $1`, string(ReviewPending)).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM report_reviews
		WHERE status = $1
		ORDER BY submitted_at
		LIMIT $2 OFFSET $3
	`, string(ReviewPending), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	items := make([]*ReviewItem, 0)
	for rows.Next() {
		item, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read reviews: %w", err)
	}

	return items, total, nil
}

// ResolveReview transitions a pending review. The status guard in the WHERE
// clause makes concurrent resolutions race-free.
func (r *PostgresReviewRepository) ResolveReview(ctx context.Context, id uuid.UUID, status ReviewStatus, resolvedBy, notes string, resolvedAt time.Time) (*ReviewItem, error) {
	item, err := scanReview(r.db.QueryRow(ctx, `
		UPDATE report_reviews
		SET status = $2, resolved_by = $3, resolved_at = $4, notes = $5
		WHERE id = $1 AND status = $6
		RETURNING `+reviewColumns,
		id, string(status), resolvedBy, resolvedAt, notes, string(ReviewPending),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetReview(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrReviewNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve review: %w", err)
	}
	return item, nil
}

// ReopenReview puts a review back to pending
func (r *PostgresReviewRepository) ReopenReview(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE report_reviews
		SET status = $2, resolved_by = NULL, resolved_at = NULL, notes = NULL
		WHERE id = $1
	`, id, string(ReviewPending))
	if err != nil {
		return fmt.Errorf("failed to reopen review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func scanReview(row pgx.Row) (*ReviewItem, error) {
	var item ReviewItem
	var reporter, reported, status string
	var resolvedBy, notes sql.NullString
	var resolvedAt sql.NullTime

	err := row.Scan(
		&item.ID,
		&reporter,
		&reported,
		&item.ReportText,
		&item.Verdict.IsSuspicious,
		&item.Verdict.Reason,
		&status,
		&item.SubmittedBy,
		&item.SubmittedAt,
		&resolvedBy,
		&resolvedAt,
		&notes,
	)
	if err != nil {
		return nil, err
	}

	item.ReporterPhoneKey = phonekey.PhoneKey(reporter)
	item.ReportedPhoneKey = phonekey.PhoneKey(reported)
	item.Status = ReviewStatus(status)
	item.SubmittedAt = item.SubmittedAt.UTC()
	if resolvedBy.Valid {
		item.ResolvedBy = resolvedBy.String
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		item.ResolvedAt = &t
	}
	if notes.Valid {
		item.Notes = notes.String
	}
	return &item, nil
}
