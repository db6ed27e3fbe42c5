package comments

import (
	"context"
	"errors"
	"time"

	"github.com/richxcame/fraud-registry/internal/phonekey"
	"github.com/richxcame/fraud-registry/internal/registry"
	"github.com/richxcame/fraud-registry/internal/session"
	"github.com/richxcame/fraud-registry/pkg/common"
	"github.com/richxcame/fraud-registry/pkg/errorreporting"
	"github.com/richxcame/fraud-registry/pkg/eventbus"
	"github.com/richxcame/fraud-registry/pkg/logger"
	"github.com/richxcame/fraud-registry/pkg/tracing"
	"github.com/richxcame/fraud-registry/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrUnauthorized is returned when an anonymous caller tries to comment
var ErrUnauthorized = errors.New("authentication required")

// Service appends community comments to fraud records
type Service struct {
	store     registry.Store
	publisher eventbus.Publisher
	now       func() time.Time
}

// NewService creates a comment service. publisher may be nil.
func NewService(store registry.Store, publisher eventbus.Publisher) *Service {
	if publisher == nil {
		publisher = eventbus.NopPublisher{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AddComment appends a comment by the session's user to the record of req.PhoneNumber,
// creating the record if needed.
func (s *Service) AddComment(ctx context.Context, sess session.Session, req AddCommentRequest) (*registry.Comment, error) {
	ctx, span := tracing.StartSpan(ctx, "comments.add")
	defer span.End()

	if !sess.Authenticated {
		return nil, common.NewUnauthorizedError("sign in to add a comment", ErrUnauthorized)
	}

	if err := validation.ValidateStruct(req); err != nil {
		commentsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, registry.AsAppError(err)
	}

	key := phonekey.Normalize(req.PhoneNumber)
	if !key.Valid() {
		commentsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, common.NewValidationError("validation failed",
			map[string]string{"phoneNumber": "phoneNumber must contain at least one digit"}, nil)
	}
	span.SetAttributes(attribute.String("phone_key", key.Masked()))

	comment, err := s.store.AppendComment(ctx, key, registry.Comment{
		AuthorIdentity:    sess.Identity,
		AuthorDisplayName: sess.DisplayName,
		Text:              req.Text,
		SubmittedAt:       s.now(),
	})
	if err != nil {
		commentsTotal.WithLabelValues(outcomeFailed).Inc()
		tracing.RecordError(span, err)
		logger.WithContext(ctx).Error("Failed to append comment",
			zap.String("phone_key", key.Masked()),
			zap.Error(err),
		)
		errorreporting.CaptureError(ctx, err)
		return nil, common.NewInternalError("failed to add comment", err)
	}

	commentsTotal.WithLabelValues(outcomeAdded).Inc()
	logger.WithContext(ctx).Info("Comment added",
		zap.String("phone_key", key.Masked()),
		zap.Int64("comment_id", comment.ID),
		zap.String("author", sess.Identity),
	)

	if err := s.publisher.Publish(ctx, eventbus.SubjectCommentAdded, "comment.added", eventbus.CommentAddedData{
		PhoneKey:       key.String(),
		CommentID:      comment.ID,
		AuthorIdentity: comment.AuthorIdentity,
		SubmittedAt:    comment.SubmittedAt,
	}); err != nil {
		logger.WithContext(ctx).Warn("Failed to publish event",
			zap.String("subject", eventbus.SubjectCommentAdded),
			zap.Error(err),
		)
	}

	return comment, nil
}
