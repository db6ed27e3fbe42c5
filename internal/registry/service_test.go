package registry

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/richxcame/fraud-registry/internal/phonekey"
	"github.com/richxcame/fraud-registry/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Lookup(ctx context.Context, key phonekey.PhoneKey) (*FraudRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*FraudRecord), args.Error(1)
}

func (m *MockStore) RecordAcceptedReport(ctx context.Context, key phonekey.PhoneKey, amount float64) (*Tally, error) {
	args := m.Called(ctx, key, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Tally), args.Error(1)
}

func (m *MockStore) AppendComment(ctx context.Context, key phonekey.PhoneKey, comment Comment) (*Comment, error) {
	args := m.Called(ctx, key, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Comment), args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestService_LookupFormattingVariants(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := store.RecordAcceptedReport(ctx, phonekey.Normalize("1112223333"), 0)
	require.NoError(t, err)

	for _, raw := range []string{"111-222-3333", "1112223333", "(111) 222 3333"} {
		details, err := svc.Lookup(ctx, raw)
		require.NoError(t, err, raw)
		assert.Equal(t, int64(1), details.ReportCount, raw)
		assert.True(t, details.IsFraud, raw)
		assert.Equal(t, "1112223333", details.PhoneNumber)
	}
}

func TestService_LookupUnknownNumber(t *testing.T) {
	svc := NewService(NewMemoryStore())

	details, err := svc.Lookup(context.Background(), "5550001111")
	require.NoError(t, err)
	assert.False(t, details.IsFraud)
	assert.Equal(t, int64(0), details.ReportCount)
	assert.Equal(t, []Comment{}, details.Comments)
	assert.Nil(t, details.UpdatedAt)
}

func TestService_LookupValidation(t *testing.T) {
	svc := NewService(NewMemoryStore())

	tests := []struct {
		name string
		raw  string
	}{
		{"too short", "12345"},
		{"too long", "1234567890123456"},
		{"no digits", "abcdefghijk"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Lookup(context.Background(), tt.raw)
			require.Error(t, err)
			appErr, ok := err.(*common.AppError)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, appErr.Code)
			assert.Contains(t, appErr.Fields, "phoneNumber")
		})
	}
}

func TestService_LookupStoreFailure(t *testing.T) {
	store := new(MockStore)
	store.On("Lookup", mock.Anything, phonekey.PhoneKey("1112223333")).Return(nil, errors.New("db down"))
	svc := NewService(store)

	_, err := svc.Lookup(context.Background(), "1112223333")
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	store.AssertExpectations(t)
}

// blockingStore holds every lookup until release is closed
type blockingStore struct {
	*MemoryStore
	calls   atomic.Int32
	release chan struct{}
}

func (b *blockingStore) Lookup(ctx context.Context, key phonekey.PhoneKey) (*FraudRecord, error) {
	b.calls.Add(1)
	<-b.release
	return b.MemoryStore.Lookup(ctx, key)
}

func TestService_LookupCoalescesConcurrentReads(t *testing.T) {
	store := &blockingStore{MemoryStore: NewMemoryStore(), release: make(chan struct{})}
	svc := NewService(store)
	const callers = 10

	var wg sync.WaitGroup
	results := make([]*NumberDetails, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			details, err := svc.Lookup(context.Background(), "1112223333")
			assert.NoError(t, err)
			results[i] = details
		}(i)
	}

	require.Eventually(t, func() bool { return store.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// let the other callers join the in-flight read
	time.Sleep(20 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.Less(t, store.calls.Load(), int32(callers))
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, int64(0), r.ReportCount)
	}
}

// holdingStore parks the first lookup after it has read the store
type holdingStore struct {
	*MemoryStore
	calls   atomic.Int32
	read    chan struct{}
	release chan struct{}
}

func (h *holdingStore) Lookup(ctx context.Context, key phonekey.PhoneKey) (*FraudRecord, error) {
	rec, err := h.MemoryStore.Lookup(ctx, key)
	if h.calls.Add(1) == 1 {
		close(h.read)
		<-h.release
	}
	return rec, err
}

func TestService_LookupAfterWriteSeesWrite(t *testing.T) {
	store := &holdingStore{MemoryStore: NewMemoryStore(), read: make(chan struct{}), release: make(chan struct{})}
	svc := NewService(store)
	ctx := context.Background()

	first := make(chan *NumberDetails, 1)
	go func() {
		details, err := svc.Lookup(ctx, "1112223333")
		assert.NoError(t, err)
		first <- details
	}()
	<-store.read

	_, err := svc.Store().RecordAcceptedReport(ctx, "1112223333", 0)
	require.NoError(t, err)

	second := make(chan *NumberDetails, 1)
	go func() {
		details, err := svc.Lookup(ctx, "1112223333")
		assert.NoError(t, err)
		second <- details
	}()

	select {
	case details := <-second:
		require.NotNil(t, details)
		assert.Equal(t, int64(1), details.ReportCount)
		assert.True(t, details.IsFraud)
	case <-time.After(2 * time.Second):
		t.Fatal("lookup after the write waited on a read that started before it")
	}

	close(store.release)
	stale := <-first
	require.NotNil(t, stale)
	assert.Equal(t, int64(0), stale.ReportCount)
}

func TestService_StoreWritesAreVisible(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.Store().AppendComment(ctx, "1112223333", Comment{AuthorIdentity: "a@example.com", Text: "sent a fake payment link"})
	require.NoError(t, err)

	details, err := svc.Lookup(ctx, "111-222-3333")
	require.NoError(t, err)
	assert.Len(t, details.Comments, 1)
	assert.Equal(t, uint64(1), svc.writes.Load())
}

func TestService_LookupCallerCancelled(t *testing.T) {
	store := &blockingStore{MemoryStore: NewMemoryStore(), release: make(chan struct{})}
	defer close(store.release)
	svc := NewService(store)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := svc.Lookup(ctx, "1112223333")
	assert.Error(t, err)
}

func TestService_Check(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	isFraud, err := svc.Check(ctx, "555-999-8888")
	require.NoError(t, err)
	assert.False(t, isFraud)

	_, err = store.RecordAcceptedReport(ctx, "5559998888", 0)
	require.NoError(t, err)

	isFraud, err = svc.Check(ctx, "555-999-8888")
	require.NoError(t, err)
	assert.True(t, isFraud)
}

func TestSeedDemo(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, SeedDemo(ctx, store))

	tests := []struct {
		number   string
		reports  int64
		amount   float64
		comments int
	}{
		{"1112223333", 3, 450, 3},
		{"5556667777", 2, 120.50, 2},
		{"9876543210", 1, 50, 1},
	}
	for _, tt := range tests {
		details, err := svc.Lookup(ctx, tt.number)
		require.NoError(t, err)
		assert.Equal(t, tt.reports, details.ReportCount, tt.number)
		assert.InDelta(t, tt.amount, details.TotalFraudAmount, 0.001, tt.number)
		assert.Len(t, details.Comments, tt.comments, tt.number)
	}
}

func TestSeedDemo_Idempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, SeedDemo(ctx, store))
	require.NoError(t, SeedDemo(ctx, store))

	rec, err := store.Lookup(ctx, "1112223333")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.ReportCount)
	assert.InDelta(t, 450, rec.TotalFraudAmount, 0.001)
	assert.Len(t, rec.Comments, 3)
}

func TestSeedDemo_SkipsNumbersWithHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.RecordAcceptedReport(ctx, "9876543210", 0)
	require.NoError(t, err)
	require.NoError(t, SeedDemo(ctx, store))

	rec, err := store.Lookup(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ReportCount)
	assert.Empty(t, rec.Comments)

	rec, err = store.Lookup(ctx, "5556667777")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.ReportCount)
}

func TestSeedDemo_LookupFailure(t *testing.T) {
	store := new(MockStore)
	store.On("Lookup", mock.Anything, phonekey.PhoneKey("1112223333")).Return(nil, errors.New("db down"))

	err := SeedDemo(context.Background(), store)
	assert.ErrorContains(t, err, "db down")
	store.AssertNotCalled(t, "RecordAcceptedReport", mock.Anything, mock.Anything, mock.Anything)
}
