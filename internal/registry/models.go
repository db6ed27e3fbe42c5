package registry

import (
	"time"

	"github.com/richxcame/fraud-registry/internal/phonekey"
)

// Comment is a community note attached to a fraud record
type Comment struct {
	ID                int64     `json:"id"`
	AuthorIdentity    string    `json:"authorIdentity"`
	AuthorDisplayName string    `json:"authorDisplayName"`
	Text              string    `json:"text"`
	SubmittedAt       time.Time `json:"submittedAt"`
}

// FraudRecord is the aggregate fraud state of one phone number
type FraudRecord struct {
	PhoneKey         phonekey.PhoneKey `json:"phoneKey"`
	ReportCount      int64             `json:"reportCount"`
	TotalFraudAmount float64           `json:"totalFraudAmount"`
	Comments         []Comment         `json:"comments"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// IsFraud is derived at read time and never stored
func (r *FraudRecord) IsFraud() bool {
	return r.ReportCount > 0
}

// Clone returns a deep copy
func (r *FraudRecord) Clone() *FraudRecord {
	out := *r
	out.Comments = make([]Comment, len(r.Comments))
	copy(out.Comments, r.Comments)
	return &out
}

// emptyRecord is what lookups return for numbers nobody has written to
func emptyRecord(key phonekey.PhoneKey) *FraudRecord {
	return &FraudRecord{PhoneKey: key, Comments: []Comment{}}
}

// Tally is the report aggregate after a recorded report
type Tally struct {
	ReportCount      int64   `json:"reportCount"`
	TotalFraudAmount float64 `json:"totalFraudAmount"`
}

// NumberDetails is the public lookup view of a record
type NumberDetails struct {
	PhoneNumber      string     `json:"phoneNumber"`
	IsFraud          bool       `json:"isFraud"`
	ReportCount      int64      `json:"reportCount"`
	TotalFraudAmount float64    `json:"totalFraudAmount"`
	Comments         []Comment  `json:"comments"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty"`
}

// NewNumberDetails builds the lookup view from a record
func NewNumberDetails(rec *FraudRecord) *NumberDetails {
	details := &NumberDetails{
		PhoneNumber:      rec.PhoneKey.String(),
		IsFraud:          rec.IsFraud(),
		ReportCount:      rec.ReportCount,
		TotalFraudAmount: rec.TotalFraudAmount,
		Comments:         rec.Comments,
	}
	if details.Comments == nil {
		details.Comments = []Comment{}
	}
	if !rec.UpdatedAt.IsZero() {
		updatedAt := rec.UpdatedAt
		details.UpdatedAt = &updatedAt
	}
	return details
}

// LookupRequest is the body of a quick fraud check
type LookupRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=10,max=15,phonekey"`
}

// CheckResponse answers a quick fraud check
type CheckResponse struct {
	IsFraud bool `json:"isFraud"`
}
