package registry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/richxcame/fraud-registry/internal/phonekey"
	"github.com/richxcame/fraud-registry/pkg/common"
	"github.com/richxcame/fraud-registry/pkg/logger"
	"github.com/richxcame/fraud-registry/pkg/validation"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service answers number lookups against the registry
type Service struct {
	store  Store
	flight singleflight.Group
	// writes counts registry writes made through Store()
	writes atomic.Uint64
}

// NewService creates a lookup service over store
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Store returns the registry for writers. Writes made through it are never
// hidden by a lookup that was already in flight when they completed.
func (s *Service) Store() Store {
	return &writeTrackingStore{Store: s.store, writes: &s.writes}
}

// writeTrackingStore bumps the write generation once a write has returned
type writeTrackingStore struct {
	Store
	writes *atomic.Uint64
}

func (w *writeTrackingStore) RecordAcceptedReport(ctx context.Context, key phonekey.PhoneKey, amount float64) (*Tally, error) {
	tally, err := w.Store.RecordAcceptedReport(ctx, key, amount)
	w.writes.Add(1)
	return tally, err
}

func (w *writeTrackingStore) AppendComment(ctx context.Context, key phonekey.PhoneKey, comment Comment) (*Comment, error) {
	c, err := w.Store.AppendComment(ctx, key, comment)
	w.writes.Add(1)
	return c, err
}

// Lookup validates and normalizes raw, then returns the number's public record.
// Concurrent lookups of the same number share one store read as long as no
// write completed in between.
func (s *Service) Lookup(ctx context.Context, raw string) (*NumberDetails, error) {
	key, err := ParseNumber(raw)
	if err != nil {
		return nil, err
	}

	rec, err := s.read(ctx, key)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to look up number",
			zap.String("phone_key", key.Masked()),
			zap.Error(err),
		)
		return nil, common.NewInternalError("failed to look up number", err)
	}

	lookupsTotal.WithLabelValues(lookupResult(rec.IsFraud())).Inc()
	return NewNumberDetails(rec), nil
}

// Check answers whether raw has any accepted report
func (s *Service) Check(ctx context.Context, raw string) (bool, error) {
	details, err := s.Lookup(ctx, raw)
	if err != nil {
		return false, err
	}
	return details.IsFraud, nil
}

func (s *Service) read(ctx context.Context, key phonekey.PhoneKey) (*FraudRecord, error) {
	flightKey := fmt.Sprintf("%s#%d", key, s.writes.Load())
	ch := s.flight.DoChan(flightKey, func() (interface{}, error) {
		// One caller going away must not fail the others waiting on this read
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return s.store.Lookup(readCtx, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			lookupsCoalesced.Inc()
		}
		return res.Val.(*FraudRecord).Clone(), nil
	}
}

// ParseNumber validates a raw phone number (10-15 characters with at least one digit)
// and returns its key
func ParseNumber(raw string) (phonekey.PhoneKey, error) {
	if err := validation.ValidateStruct(LookupRequest{PhoneNumber: raw}); err != nil {
		return "", AsAppError(err)
	}
	return phonekey.Normalize(raw), nil
}

// AsAppError converts validation failures into a 400 AppError with field messages
func AsAppError(err error) error {
	if verr, ok := err.(*validation.ValidationError); ok {
		return common.NewValidationError("validation failed", verr.Errors, verr)
	}
	return common.NewBadRequestError("invalid request", err)
}

// demoRecord mirrors the sample data the registry can be seeded with
type demoRecord struct {
	number   string
	reports  int
	amount   float64
	comments []Comment
}

var demoRecords = []demoRecord{
	{
		number:  "1112223333",
		reports: 3,
		amount:  450,
		comments: []Comment{
			demoComment("driverA@email.com", "This person called claiming to be from a ride-sharing company and asked for my login details.", "2024-05-10T10:00:00Z"),
			demoComment("driverB@email.com", "Sent a fake payment link for a trip that never happened.", "2024-05-11T14:30:00Z"),
			demoComment("driverC@email.com", `Tried the classic "I sent you too much money, please send some back" scam.`, "2024-05-12T09:00:00Z"),
		},
	},
	{
		number:  "5556667777",
		reports: 2,
		amount:  120.50,
		comments: []Comment{
			demoComment("driverD@email.com", "Booked a ride and then claimed they needed me to buy gift cards for them, promising to pay back. They did not.", "2024-04-20T18:00:00Z"),
			demoComment("driverE@email.com", "Very persistent and suspicious. Kept asking personal questions not related to the ride.", "2024-04-22T11:00:00Z"),
		},
	},
	{
		number:  "9876543210",
		reports: 1,
		amount:  50,
		comments: []Comment{
			demoComment("driverF@email.com", "Cancelled the ride last minute and then sent a phishing text message.", "2024-05-01T20:45:00Z"),
		},
	},
}

func demoComment(author, text, at string) Comment {
	submittedAt, _ := time.Parse(time.RFC3339, at)
	return Comment{
		AuthorIdentity:    author,
		AuthorDisplayName: author,
		Text:              text,
		SubmittedAt:       submittedAt,
	}
}

// SeedDemo loads the sample records through the normal store operations.
// Numbers that already have reports or comments are left alone, so a
// persistent backend can be seeded on every start.
func SeedDemo(ctx context.Context, store Store) error {
	seeded := 0
	for _, d := range demoRecords {
		key := phonekey.Normalize(d.number)
		existing, err := store.Lookup(ctx, key)
		if err != nil {
			return fmt.Errorf("seed %s lookup: %w", key.Masked(), err)
		}
		if existing.ReportCount > 0 || len(existing.Comments) > 0 {
			continue
		}

		perReport := d.amount / float64(d.reports)
		for i := 0; i < d.reports; i++ {
			if _, err := store.RecordAcceptedReport(ctx, key, perReport); err != nil {
				return fmt.Errorf("seed %s: %w", key.Masked(), err)
			}
		}
		for _, c := range d.comments {
			if _, err := store.AppendComment(ctx, key, c); err != nil {
				return fmt.Errorf("seed %s comment: %w", key.Masked(), err)
			}
		}
		seeded++
	}
	logger.Info("Seeded registry with demo records",
		zap.Int("seeded", seeded),
		zap.Int("skipped", len(demoRecords)-seeded),
	)
	return nil
}
