//go:build integration

package reports

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/richxcame/fraud-registry/pkg/database"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// PostgresReviewRepositoryTestSuite runs against TEST_DATABASE_URL (postgres://...)
type PostgresReviewRepositoryTestSuite struct {
	suite.Suite
	pool *pgxpool.Pool
	repo *PostgresReviewRepository
	base time.Time
}

func TestPostgresReviewRepositorySuite(t *testing.T) {
	suite.Run(t, new(PostgresReviewRepositoryTestSuite))
}

func (s *PostgresReviewRepositoryTestSuite) SetupSuite() {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		s.T().Skip("TEST_DATABASE_URL not set")
	}

	migrateURL := "pgx5://" + strings.TrimPrefix(strings.TrimPrefix(url, "postgres://"), "postgresql://")
	require.NoError(s.T(), database.Migrate(migrateURL))

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(s.T(), err)
	s.pool = pool
	s.repo = NewPostgresReviewRepository(pool)
	s.base = time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
}

func (s *PostgresReviewRepositoryTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresReviewRepositoryTestSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE report_reviews`)
	require.NoError(s.T(), err)
}

func (s *PostgresReviewRepositoryTestSuite) create(submittedAt time.Time) *ReviewItem {
	item := pendingItem(submittedAt)
	item.Verdict.IsSuspicious = true
	item.Verdict.Reason = "narrative lacks incident details"
	s.Require().NoError(s.repo.CreateReview(context.Background(), item))
	return item
}

func (s *PostgresReviewRepositoryTestSuite) TestCreateAndGetWithNullResolution() {
	item := s.create(s.base)

	got, err := s.repo.GetReview(context.Background(), item.ID)
	s.Require().NoError(err)
	s.Equal(item.ID, got.ID)
	s.Equal(item.ReportedPhoneKey, got.ReportedPhoneKey)
	s.Equal(ReviewPending, got.Status)
	s.True(got.Verdict.IsSuspicious)
	s.Equal("narrative lacks incident details", got.Verdict.Reason)
	s.True(got.SubmittedAt.Equal(s.base))
	s.Empty(got.ResolvedBy)
	s.Nil(got.ResolvedAt)
	s.Empty(got.Notes)

	_, err = s.repo.GetReview(context.Background(), uuid.New())
	s.ErrorIs(err, ErrReviewNotFound)
}

func (s *PostgresReviewRepositoryTestSuite) TestListPendingTotalAndPaging() {
	ctx := context.Background()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		ids = append(ids, s.create(s.base.Add(time.Duration(i)*time.Minute)).ID)
	}
	resolved := s.create(s.base.Add(-time.Hour))
	_, err := s.repo.ResolveReview(ctx, resolved.ID, ReviewDismissed, "admin@example.com", "", s.base)
	s.Require().NoError(err)

	items, total, err := s.repo.ListPendingReviews(ctx, 2, 0)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(items, 2)
	s.Equal(ids[0], items[0].ID)
	s.Equal(ids[1], items[1].ID)

	items, total, err = s.repo.ListPendingReviews(ctx, 2, 2)
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(items, 1)
	s.Equal(ids[2], items[0].ID)

	items, _, err = s.repo.ListPendingReviews(ctx, 2, 10)
	s.Require().NoError(err)
	s.Empty(items)
}

func (s *PostgresReviewRepositoryTestSuite) TestResolveGuardsStatus() {
	ctx := context.Background()
	item := s.create(s.base)
	resolvedAt := s.base.Add(time.Hour)

	got, err := s.repo.ResolveReview(ctx, item.ID, ReviewConfirmed, "admin@example.com", "verified by phone", resolvedAt)
	s.Require().NoError(err)
	s.Equal(ReviewConfirmed, got.Status)
	s.Equal("admin@example.com", got.ResolvedBy)
	s.Equal("verified by phone", got.Notes)
	s.Require().NotNil(got.ResolvedAt)
	s.True(got.ResolvedAt.Equal(resolvedAt))

	_, err = s.repo.ResolveReview(ctx, item.ID, ReviewDismissed, "other@example.com", "", resolvedAt)
	s.ErrorIs(err, ErrReviewNotPending)

	_, err = s.repo.ResolveReview(ctx, uuid.New(), ReviewDismissed, "other@example.com", "", resolvedAt)
	s.ErrorIs(err, ErrReviewNotFound)
}

func (s *PostgresReviewRepositoryTestSuite) TestConcurrentResolveHasOneWinner() {
	ctx := context.Background()
	item := s.create(s.base)
	const n = 10

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.ResolveReview(ctx, item.ID, ReviewConfirmed, "admin@example.com", "", s.base)
			if err == nil {
				wins.Add(1)
				return
			}
			s.ErrorIs(err, ErrReviewNotPending)
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
}

func (s *PostgresReviewRepositoryTestSuite) TestReopenClearsResolution() {
	ctx := context.Background()
	item := s.create(s.base)

	_, err := s.repo.ResolveReview(ctx, item.ID, ReviewConfirmed, "admin@example.com", "registry write failed", s.base)
	s.Require().NoError(err)
	s.Require().NoError(s.repo.ReopenReview(ctx, item.ID))

	got, err := s.repo.GetReview(ctx, item.ID)
	s.Require().NoError(err)
	s.Equal(ReviewPending, got.Status)
	s.Empty(got.ResolvedBy)
	s.Nil(got.ResolvedAt)
	s.Empty(got.Notes)

	var nulls int
	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM report_reviews
		WHERE id = $1 AND resolved_by IS NULL AND resolved_at IS NULL AND notes IS NULL
	`, item.ID).Scan(&nulls)
	s.Require().NoError(err)
	s.Equal(1, nulls)

	s.ErrorIs(s.repo.ReopenReview(ctx, uuid.New()), ErrReviewNotFound)
}
