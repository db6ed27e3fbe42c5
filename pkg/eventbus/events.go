package eventbus

import "time"

// Subjects
const (
	SubjectReportRecorded = "fraud.report.recorded"
	SubjectReportHeld     = "fraud.report.held"
	SubjectCommentAdded   = "fraud.comment.added"
)

// ReportRecordedData is published after an accepted report updates the registry
type ReportRecordedData struct {
	ReportedPhoneKey string    `json:"reported_phone_key"`
	ReportCount      int64     `json:"report_count"`
	IsSuspicious     bool      `json:"is_suspicious"`
	Reason           string    `json:"reason"`
	ReviewID         string    `json:"review_id,omitempty"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// ReportHeldData is published when a suspicious report is queued for human review
type ReportHeldData struct {
	ReviewID         string    `json:"review_id"`
	ReportedPhoneKey string    `json:"reported_phone_key"`
	Reason           string    `json:"reason"`
	HeldAt           time.Time `json:"held_at"`
}

// CommentAddedData is published after a comment is appended to a record
type CommentAddedData struct {
	PhoneKey       string    `json:"phone_key"`
	CommentID      int64     `json:"comment_id"`
	AuthorIdentity string    `json:"author_identity"`
	SubmittedAt    time.Time `json:"submitted_at"`
}
