package registry

import (
	"context"
	"sync"
	"time"

	"github.com/richxcame/fraud-registry/internal/phonekey"
)

// numShards spreads keys over independent locks so unrelated numbers never contend
const numShards = 128

type memoryShard struct {
	mu      sync.RWMutex
	records map[phonekey.PhoneKey]*FraudRecord
}

// MemoryStore keeps records in process memory
type MemoryStore struct {
	shards [numShards]memoryShard
	now    func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{now: func() time.Time { return time.Now().UTC() }}
	for i := range s.shards {
		s.shards[i].records = make(map[phonekey.PhoneKey]*FraudRecord)
	}
	return s
}

func (s *MemoryStore) shard(key phonekey.PhoneKey) *memoryShard {
	return &s.shards[hashKey(string(key))%numShards]
}

// hashKey is FNV-1a
func hashKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

// Lookup implements Store
func (s *MemoryStore) Lookup(ctx context.Context, key phonekey.PhoneKey) (*FraudRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sh := s.shard(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.records[key]
	if !ok {
		return emptyRecord(key), nil
	}
	return rec.Clone(), nil
}

// RecordAcceptedReport implements Store
func (s *MemoryStore) RecordAcceptedReport(ctx context.Context, key phonekey.PhoneKey, amount float64) (*Tally, error) {
	if err := checkWrite(key, amount); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec := sh.getOrCreate(key)
	rec.ReportCount++
	rec.TotalFraudAmount += amount
	rec.UpdatedAt = s.now()

	return &Tally{ReportCount: rec.ReportCount, TotalFraudAmount: rec.TotalFraudAmount}, nil
}

// AppendComment implements Store
func (s *MemoryStore) AppendComment(ctx context.Context, key phonekey.PhoneKey, comment Comment) (*Comment, error) {
	if err := checkWrite(key, 0); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec := sh.getOrCreate(key)
	comment.ID = int64(len(rec.Comments)) + 1
	rec.Comments = append(rec.Comments, comment)
	rec.UpdatedAt = s.now()

	return &comment, nil
}

// Ping implements Store
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// caller holds sh.mu
func (sh *memoryShard) getOrCreate(key phonekey.PhoneKey) *FraudRecord {
	rec, ok := sh.records[key]
	if !ok {
		rec = emptyRecord(key)
		sh.records[key] = rec
	}
	return rec
}
