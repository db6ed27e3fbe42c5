package registry

import (
	"context"
	"errors"

	"github.com/richxcame/fraud-registry/internal/phonekey"
)

var (
	// ErrEmptyKey is returned for writes addressed to an empty phone key
	ErrEmptyKey = errors.New("phone key is empty")
	// ErrNegativeAmount is returned when a report claims a negative loss
	ErrNegativeAmount = errors.New("fraud amount must not be negative")
)

// Store maps phone keys to fraud records. Writes for the same key are
// serialized; writes for different keys do not block each other.
type Store interface {
	// Lookup returns the stored record or a zero-value record. It never creates one.
	Lookup(ctx context.Context, key phonekey.PhoneKey) (*FraudRecord, error)
	// RecordAcceptedReport adds one report and amount to the record, creating it if absent
	RecordAcceptedReport(ctx context.Context, key phonekey.PhoneKey, amount float64) (*Tally, error)
	// AppendComment appends comment and assigns its per-record id, starting at 1
	AppendComment(ctx context.Context, key phonekey.PhoneKey, comment Comment) (*Comment, error)
	Ping(ctx context.Context) error
}

func checkWrite(key phonekey.PhoneKey, amount float64) error {
	if !key.Valid() {
		return ErrEmptyKey
	}
	if amount < 0 {
		return ErrNegativeAmount
	}
	return nil
}
