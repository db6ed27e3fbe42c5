package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/fraud-registry/internal/phonekey"
)

// PostgresStore keeps records in PostgreSQL. Row-level upserts serialize
// writes for one phone key.
type PostgresStore struct {
	db *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgreSQL-backed store
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Lookup implements Store. Counters and comments are read from one
// REPEATABLE READ snapshot.
func (s *PostgresStore) Lookup(ctx context.Context, key phonekey.PhoneKey) (*FraudRecord, error) {
	rec := emptyRecord(key)

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		SELECT report_count, total_fraud_amount, updated_at
		FROM fraud_records
		WHERE phone_key = $1
	`, string(key)).Scan(&rec.ReportCount, &rec.TotalFraudAmount, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fraud record: %w", err)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, author_identity, author_display_name, body, submitted_at
		FROM fraud_comments
		WHERE phone_key = $1
		ORDER BY id
	`, string(key))
	if err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.AuthorIdentity, &c.AuthorDisplayName, &c.Text, &c.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		c.SubmittedAt = c.SubmittedAt.UTC()
		rec.Comments = append(rec.Comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read comments: %w", err)
	}

	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}

// RecordAcceptedReport implements Store
func (s *PostgresStore) RecordAcceptedReport(ctx context.Context, key phonekey.PhoneKey, amount float64) (*Tally, error) {
	if err := checkWrite(key, amount); err != nil {
		return nil, err
	}

	var tally Tally
	err := s.db.QueryRow(ctx, `
		INSERT INTO fraud_records (phone_key, report_count, total_fraud_amount, created_at, updated_at)
		VALUES ($1, 1, $2, NOW(), NOW())
		ON CONFLICT (phone_key) DO UPDATE
		SET report_count       = fraud_records.report_count + 1,
		    total_fraud_amount = fraud_records.total_fraud_amount + EXCLUDED.total_fraud_amount,
		    updated_at         = NOW()
		RETURNING report_count, total_fraud_amount
	`, string(key), amount).Scan(&tally.ReportCount, &tally.TotalFraudAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to record report: %w", err)
	}

	return &tally, nil
}

// AppendComment implements Store. The comment_seq bump holds the record row
// lock until commit, so ids are assigned in commit order.
func (s *PostgresStore) AppendComment(ctx context.Context, key phonekey.PhoneKey, comment Comment) (*Comment, error) {
	if err := checkWrite(key, 0); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO fraud_records (phone_key, comment_seq, created_at, updated_at)
		VALUES ($1, 1, NOW(), NOW())
		ON CONFLICT (phone_key) DO UPDATE
		SET comment_seq = fraud_records.comment_seq + 1,
		    updated_at  = NOW()
		RETURNING comment_seq
	`, string(key)).Scan(&comment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate comment id: %w", err)
	}

	if comment.SubmittedAt.IsZero() {
		comment.SubmittedAt = time.Now().UTC()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO fraud_comments (phone_key, id, author_identity, author_display_name, body, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, string(key), comment.ID, comment.AuthorIdentity, comment.AuthorDisplayName, comment.Text, comment.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &comment, nil
}

// Ping implements Store
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}
