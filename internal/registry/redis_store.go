package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/fraud-registry/internal/phonekey"
)

const (
	fieldReportCount = "report_count"
	fieldTotalAmount = "total_fraud_amount"
	fieldUpdatedAt   = "updated_at"
)

// RedisStore keeps counters in a hash and comments in a list per phone key.
// RPUSH returns the new list length, which doubles as the comment id. Both keys
// share a hash tag so MULTI/EXEC works on Redis Cluster.
type RedisStore struct {
	client redis.Cmdable
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{
		client: client,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func recordKey(key phonekey.PhoneKey) string   { return "fraud:{" + string(key) + "}:record" }
func commentsKey(key phonekey.PhoneKey) string { return "fraud:{" + string(key) + "}:comments" }

// Lookup implements Store. Counters and comments are read in one MULTI so
// they come from the same moment.
func (s *RedisStore) Lookup(ctx context.Context, key phonekey.PhoneKey) (*FraudRecord, error) {
	rec := emptyRecord(key)

	var (
		fieldsCmd  *redis.MapStringStringCmd
		entriesCmd *redis.StringSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fieldsCmd = pipe.HGetAll(ctx, recordKey(key))
		entriesCmd = pipe.LRange(ctx, commentsKey(key), 0, -1)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get fraud record: %w", err)
	}
	if err := applyRecordFields(rec, fieldsCmd.Val()); err != nil {
		return nil, err
	}

	for i, entry := range entriesCmd.Val() {
		var c Comment
		if err := json.Unmarshal([]byte(entry), &c); err != nil {
			return nil, fmt.Errorf("failed to decode comment %d: %w", i+1, err)
		}
		c.ID = int64(i) + 1
		rec.Comments = append(rec.Comments, c)
	}

	return rec, nil
}

// RecordAcceptedReport implements Store
func (s *RedisStore) RecordAcceptedReport(ctx context.Context, key phonekey.PhoneKey, amount float64) (*Tally, error) {
	if err := checkWrite(key, amount); err != nil {
		return nil, err
	}

	var (
		countCmd  *redis.IntCmd
		amountCmd *redis.FloatCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		countCmd = pipe.HIncrBy(ctx, recordKey(key), fieldReportCount, 1)
		amountCmd = pipe.HIncrByFloat(ctx, recordKey(key), fieldTotalAmount, amount)
		pipe.HSet(ctx, recordKey(key), fieldUpdatedAt, s.now().Format(time.RFC3339Nano))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record report: %w", err)
	}

	return &Tally{ReportCount: countCmd.Val(), TotalFraudAmount: amountCmd.Val()}, nil
}

// AppendComment implements Store
func (s *RedisStore) AppendComment(ctx context.Context, key phonekey.PhoneKey, comment Comment) (*Comment, error) {
	if err := checkWrite(key, 0); err != nil {
		return nil, err
	}
	if comment.SubmittedAt.IsZero() {
		comment.SubmittedAt = s.now()
	}
	comment.ID = 0

	payload, err := json.Marshal(comment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode comment: %w", err)
	}

	var pushCmd *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pushCmd = pipe.RPush(ctx, commentsKey(key), string(payload))
		pipe.HSet(ctx, recordKey(key), fieldUpdatedAt, s.now().Format(time.RFC3339Nano))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append comment: %w", err)
	}

	comment.ID = pushCmd.Val()
	return &comment, nil
}

// Ping implements Store
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func applyRecordFields(rec *FraudRecord, fields map[string]string) error {
	if v, ok := fields[fieldReportCount]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt %s %q: %w", fieldReportCount, v, err)
		}
		rec.ReportCount = n
	}
	if v, ok := fields[fieldTotalAmount]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("corrupt %s %q: %w", fieldTotalAmount, v, err)
		}
		rec.TotalFraudAmount = f
	}
	if v, ok := fields[fieldUpdatedAt]; ok {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return fmt.Errorf("corrupt %s %q: %w", fieldUpdatedAt, v, err)
		}
		rec.UpdatedAt = t.UTC()
	}
	return nil
}
