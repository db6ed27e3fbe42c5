package reports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/fraud-registry/internal/phonekey"
	"github.com/richxcame/fraud-registry/internal/registry"
	"github.com/richxcame/fraud-registry/internal/session"
	"github.com/richxcame/fraud-registry/internal/triage"
	"github.com/richxcame/fraud-registry/pkg/common"
	"github.com/richxcame/fraud-registry/pkg/errorreporting"
	"github.com/richxcame/fraud-registry/pkg/eventbus"
	"github.com/richxcame/fraud-registry/pkg/logger"
	"github.com/richxcame/fraud-registry/pkg/tracing"
	"github.com/richxcame/fraud-registry/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrUnauthorized is returned when an anonymous caller submits a report
var ErrUnauthorized = errors.New("authentication required")

// Service runs submitted reports through validation, triage and the registry
type Service struct {
	store     registry.Store
	gate      triage.Classifier
	reviews   ReviewRepository
	publisher eventbus.Publisher
	policy    Policy
	now       func() time.Time
}

// NewService creates a report intake service. publisher may be nil.
func NewService(store registry.Store, gate triage.Classifier, reviews ReviewRepository, publisher eventbus.Publisher, policy Policy) *Service {
	if publisher == nil {
		publisher = eventbus.NopPublisher{}
	}
	if policy == "" {
		policy = PolicyAdvisory
	}
	return &Service{
		store:     store,
		gate:      gate,
		reviews:   reviews,
		publisher: publisher,
		policy:    policy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Policy returns the configured suspicious-report policy
func (s *Service) Policy() Policy {
	return s.policy
}

// Submit validates, triages and records a report. It makes a single attempt:
// a retried submission counts again.
func (s *Service) Submit(ctx context.Context, sess session.Session, req SubmitReportRequest) (*Outcome, error) {
	ctx, span := tracing.StartSpan(ctx, "reports.submit")
	defer span.End()

	log := logger.WithContext(ctx)

	if !sess.Authenticated {
		return nil, common.NewUnauthorizedError("sign in to submit a report", ErrUnauthorized)
	}

	if err := validation.ValidateStruct(req); err != nil {
		reportsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, registry.AsAppError(err)
	}

	report := triage.Report{
		ReporterPhoneKey: phonekey.Normalize(req.ReporterPhoneNumber),
		ReportedPhoneKey: phonekey.Normalize(req.ReportedPhoneNumber),
		ReportText:       req.ReportText,
	}
	if fields := emptyKeyFields(report); len(fields) > 0 {
		reportsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, common.NewValidationError("validation failed", fields, nil)
	}
	span.SetAttributes(attribute.String("reported_phone_key", report.ReportedPhoneKey.Masked()))

	verdict, err := s.gate.Classify(ctx, report)
	if err != nil {
		reportsTotal.WithLabelValues(outcomeUnavailable).Inc()
		tracing.RecordError(span, err)
		return nil, common.NewServiceUnavailableError("report could not be screened right now, please try again", err)
	}

	if verdict.IsSuspicious && s.policy == PolicyReview {
		return s.hold(ctx, sess, report, *verdict)
	}

	tally, err := s.store.RecordAcceptedReport(ctx, report.ReportedPhoneKey, 0)
	if err != nil {
		reportsTotal.WithLabelValues(outcomeFailed).Inc()
		tracing.RecordError(span, err)
		log.Error("Failed to record report",
			zap.String("reported_phone_key", report.ReportedPhoneKey.Masked()),
			zap.Error(err),
		)
		errorreporting.CaptureError(ctx, err)
		return nil, common.NewInternalError("failed to record report", err)
	}

	reportsTotal.WithLabelValues(outcomeRecorded).Inc()
	log.Info("Report recorded",
		zap.String("reported_phone_key", report.ReportedPhoneKey.Masked()),
		zap.String("submitted_by", sess.Identity),
		zap.Bool("suspicious", verdict.IsSuspicious),
		zap.Int64("report_count", tally.ReportCount),
	)

	s.publish(ctx, eventbus.SubjectReportRecorded, "report.recorded", eventbus.ReportRecordedData{
		ReportedPhoneKey: report.ReportedPhoneKey.String(),
		ReportCount:      tally.ReportCount,
		IsSuspicious:     verdict.IsSuspicious,
		Reason:           verdict.Reason,
		RecordedAt:       s.now(),
	})

	return &Outcome{Accepted: true, Status: StatusRecorded, Verdict: *verdict}, nil
}

func (s *Service) hold(ctx context.Context, sess session.Session, report triage.Report, verdict triage.Verdict) (*Outcome, error) {
	item := &ReviewItem{
		ID:               uuid.New(),
		ReporterPhoneKey: report.ReporterPhoneKey,
		ReportedPhoneKey: report.ReportedPhoneKey,
		ReportText:       report.ReportText,
		Verdict:          verdict,
		Status:           ReviewPending,
		SubmittedBy:      sess.Identity,
		SubmittedAt:      s.now(),
	}
	if err := s.reviews.CreateReview(ctx, item); err != nil {
		reportsTotal.WithLabelValues(outcomeFailed).Inc()
		logger.WithContext(ctx).Error("Failed to queue report for review",
			zap.String("reported_phone_key", report.ReportedPhoneKey.Masked()),
			zap.Error(err),
		)
		errorreporting.CaptureError(ctx, err)
		return nil, common.NewInternalError("failed to queue report for review", err)
	}

	reportsTotal.WithLabelValues(outcomeHeld).Inc()
	logger.WithContext(ctx).Info("Suspicious report held for review",
		zap.String("review_id", item.ID.String()),
		zap.String("reported_phone_key", report.ReportedPhoneKey.Masked()),
		zap.String("reason", verdict.Reason),
	)

	s.publish(ctx, eventbus.SubjectReportHeld, "report.held", eventbus.ReportHeldData{
		ReviewID:         item.ID.String(),
		ReportedPhoneKey: report.ReportedPhoneKey.String(),
		Reason:           verdict.Reason,
		HeldAt:           item.SubmittedAt,
	})

	id := item.ID
	return &Outcome{Accepted: true, Status: StatusHeldForReview, Verdict: verdict, ReviewID: &id}, nil
}

// ListPending returns reports waiting for review
func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]*ReviewItem, int64, error) {
	items, total, err := s.reviews.ListPendingReviews(ctx, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalError("failed to list pending reviews", err)
	}
	return items, total, nil
}

// Resolve confirms or dismisses a held report. Confirming records it.
func (s *Service) Resolve(ctx context.Context, sess session.Session, id uuid.UUID, req ResolveReviewRequest) (*ReviewItem, error) {
	if !sess.Authenticated {
		return nil, common.NewUnauthorizedError("sign in to resolve reviews", ErrUnauthorized)
	}
	if !sess.IsAdmin() {
		return nil, common.NewForbiddenError("only admins can resolve reviews")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return nil, registry.AsAppError(err)
	}

	status := ReviewDismissed
	if *req.Confirm {
		status = ReviewConfirmed
	}

	item, err := s.reviews.ResolveReview(ctx, id, status, sess.Identity, req.Notes, s.now())
	switch {
	case errors.Is(err, ErrReviewNotFound):
		return nil, common.NewNotFoundError("review not found", err)
	case errors.Is(err, ErrReviewNotPending):
		return nil, common.NewConflictError("review already resolved")
	case err != nil:
		return nil, common.NewInternalError("failed to resolve review", err)
	}

	log := logger.WithContext(ctx).With(
		zap.String("review_id", id.String()),
		zap.String("resolved_by", sess.Identity),
		zap.String("status", string(status)),
	)

	if status == ReviewDismissed {
		log.Info("Review dismissed")
		return item, nil
	}

	tally, err := s.store.RecordAcceptedReport(ctx, item.ReportedPhoneKey, 0)
	if err != nil {
		log.Error("Failed to record confirmed report, reopening review", zap.Error(err))
		if reopenErr := s.reviews.ReopenReview(ctx, id); reopenErr != nil {
			log.Error("Failed to reopen review", zap.Error(reopenErr))
		}
		errorreporting.CaptureError(ctx, err)
		return nil, common.NewInternalError("failed to record confirmed report", err)
	}

	reportsTotal.WithLabelValues(outcomeRecorded).Inc()
	log.Info("Review confirmed, report recorded", zap.Int64("report_count", tally.ReportCount))

	s.publish(ctx, eventbus.SubjectReportRecorded, "report.recorded", eventbus.ReportRecordedData{
		ReportedPhoneKey: item.ReportedPhoneKey.String(),
		ReportCount:      tally.ReportCount,
		IsSuspicious:     item.Verdict.IsSuspicious,
		Reason:           item.Verdict.Reason,
		ReviewID:         id.String(),
		RecordedAt:       s.now(),
	})

	return item, nil
}

func emptyKeyFields(report triage.Report) map[string]string {
	fields := map[string]string{}
	if !report.ReporterPhoneKey.Valid() {
		fields["reporterPhoneNumber"] = "reporterPhoneNumber must contain at least one digit"
	}
	if !report.ReportedPhoneKey.Valid() {
		fields["reportedPhoneNumber"] = "reportedPhoneNumber must contain at least one digit"
	}
	return fields
}

// publish never fails the request; the registry write already happened
func (s *Service) publish(ctx context.Context, subject, eventType string, data interface{}) {
	if err := s.publisher.Publish(ctx, subject, eventType, data); err != nil {
		logger.WithContext(ctx).Warn("Failed to publish event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
