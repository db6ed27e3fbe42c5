package triage

import (
	"context"
	"errors"

	"github.com/richxcame/fraud-registry/internal/phonekey"
)

// ErrTriageUnavailable means a report could not be classified; callers may retry
var ErrTriageUnavailable = errors.New("triage unavailable")

// Report is what the classifier sees of a submission
type Report struct {
	ReporterPhoneKey phonekey.PhoneKey `json:"reporterPhoneKey"`
	ReportedPhoneKey phonekey.PhoneKey `json:"reportedPhoneKey"`
	ReportText       string            `json:"reportText"`
}

// Verdict is the classification of one report
type Verdict struct {
	IsSuspicious bool   `json:"isSuspicious"`
	Reason       string `json:"reason"`
}

// Classifier decides whether a report looks abusive, fabricated or spam
type Classifier interface {
	Classify(ctx context.Context, report Report) (*Verdict, error)
}

// ClassifierFunc adapts a function to Classifier
type ClassifierFunc func(ctx context.Context, report Report) (*Verdict, error)

// Classify implements Classifier
func (f ClassifierFunc) Classify(ctx context.Context, report Report) (*Verdict, error) {
	return f(ctx, report)
}
