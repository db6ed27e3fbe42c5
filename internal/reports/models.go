package reports

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/fraud-registry/internal/phonekey"
	"github.com/richxcame/fraud-registry/internal/triage"
)

// Policy decides what happens to reports the triage gate flags as suspicious
type Policy string

const (
	// PolicyAdvisory records every classified report; the verdict is informational
	PolicyAdvisory Policy = "advisory"
	// PolicyReview holds suspicious reports until an admin confirms them
	PolicyReview Policy = "review"
)

// ParsePolicy parses a configured policy name
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyAdvisory, "":
		return PolicyAdvisory, nil
	case PolicyReview:
		return PolicyReview, nil
	default:
		return "", fmt.Errorf("unknown suspicious report policy %q", s)
	}
}

// OutcomeStatus says whether a report reached the registry
type OutcomeStatus string

const (
	StatusRecorded      OutcomeStatus = "recorded"
	StatusHeldForReview OutcomeStatus = "held_for_review"
)

// SubmitReportRequest is a raw fraud report
type SubmitReportRequest struct {
	ReporterPhoneNumber string `json:"reporterPhoneNumber" validate:"required,min=10,max=15,phonekey"`
	ReportedPhoneNumber string `json:"reportedPhoneNumber" validate:"required,min=10,max=15,phonekey"`
	ReportText          string `json:"reportText" validate:"required,min=20,max=1000"`
}

// Outcome is the result of an accepted submission
type Outcome struct {
	Accepted bool           `json:"accepted"`
	Status   OutcomeStatus  `json:"status"`
	Verdict  triage.Verdict `json:"verdict"`
	ReviewID *uuid.UUID     `json:"reviewId,omitempty"`
}

// ReviewStatus is the lifecycle state of a held report
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewConfirmed ReviewStatus = "confirmed"
	ReviewDismissed ReviewStatus = "dismissed"
)

// ReviewItem is a suspicious report waiting for, or resolved by, an admin
type ReviewItem struct {
	ID               uuid.UUID         `json:"id"`
	ReporterPhoneKey phonekey.PhoneKey `json:"reporterPhoneKey"`
	ReportedPhoneKey phonekey.PhoneKey `json:"reportedPhoneKey"`
	ReportText       string            `json:"reportText"`
	Verdict          triage.Verdict    `json:"verdict"`
	Status           ReviewStatus      `json:"status"`
	SubmittedBy      string            `json:"submittedBy"`
	SubmittedAt      time.Time         `json:"submittedAt"`
	ResolvedBy       string            `json:"resolvedBy,omitempty"`
	ResolvedAt       *time.Time        `json:"resolvedAt,omitempty"`
	Notes            string            `json:"notes,omitempty"`
}

// ResolveReviewRequest confirms or dismisses a held report
type ResolveReviewRequest struct {
	Confirm *bool  `json:"confirm" validate:"required"`
	Notes   string `json:"notes" validate:"max=1000"`
}
