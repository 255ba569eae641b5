package ledger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NgigiN/aureliya/internal/storage"
)

// DefaultSlot is the storage slot holding the serialized deposit list.
const DefaultSlot = "deposits"

// Store owns the persisted deposit ledger. It is safe for concurrent use
// within one process; separate processes sharing a slot are not coordinated.
type Store struct {
	mu    sync.Mutex
	slots storage.Slots
	key   string
	log   *zap.Logger
	now   func() time.Time
}

type StoreOption func(*Store)

// WithClock replaces the wall clock used for record timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithSlot changes the storage slot key.
func WithSlot(key string) StoreOption {
	return func(s *Store) { s.key = key }
}

func NewStore(slots storage.Slots, log *zap.Logger, opts ...StoreOption) *Store {
	s := &Store{
		slots: slots,
		key:   DefaultSlot,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records a deposit with a store-assigned timestamp and persists the
// whole ledger. A corrupt existing ledger is discarded.
func (s *Store) Append(ctx context.Context, amount decimal.Decimal, method Method) (DepositRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx)
	if err != nil {
		return DepositRecord{Amount: amount, Method: method, Timestamp: s.now()}, err
	}

	ts := time.UnixMilli(s.now().UnixMilli())
	if n := len(records); n > 0 && !ts.After(records[n-1].Timestamp) {
		ts = records[n-1].Timestamp.Add(time.Millisecond)
	}
	rec := DepositRecord{Amount: amount, Method: method, Timestamp: ts}
	records = append(records, rec)

	b, err := encodeRecords(records)
	if err != nil {
		s.log.Error("Unable to encode deposit data", zap.Error(err))
		return rec, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := s.slots.Put(ctx, s.key, b); err != nil {
		s.log.Error("Unable to save deposit data", zap.String("slot", s.key), zap.Error(err))
		return rec, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return rec, nil
}

// ReadAll returns the ledger in insertion order. Absent, corrupt or
// unreachable storage reads as an empty ledger.
func (s *Store) ReadAll(ctx context.Context) []DepositRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, _ := s.load(ctx)
	return records
}

// Clear removes the ledger. Clearing an empty ledger succeeds.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(ctx)
}

// ClearIfUnchanged clears the ledger only if it still holds exactly the
// snapshot the caller read. Otherwise it returns ErrLedgerChanged.
func (s *Store) ClearIfUnchanged(ctx context.Context, snapshot []DepositRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.load(ctx)
	if err != nil {
		return err
	}
	want, err := encodeRecords(snapshot)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	have, err := encodeRecords(current)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if !bytes.Equal(want, have) {
		s.log.Warn("Ledger changed before clear",
			zap.Int("expected_records", len(snapshot)),
			zap.Int("current_records", len(current)))
		return ErrLedgerChanged
	}
	return s.remove(ctx)
}

func (s *Store) remove(ctx context.Context) error {
	if err := s.slots.Remove(ctx, s.key); err != nil {
		s.log.Error("Unable to clear deposit data", zap.String("slot", s.key), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// load must be called with mu held. Missing or corrupt data reads as an empty
// ledger; only an unreachable medium is reported.
func (s *Store) load(ctx context.Context) ([]DepositRecord, error) {
	raw, err := s.slots.Get(ctx, s.key)
	if errors.Is(err, storage.ErrSlotEmpty) {
		return []DepositRecord{}, nil
	}
	if err != nil {
		s.log.Error("Unable to load deposits", zap.String("slot", s.key), zap.Error(err))
		return []DepositRecord{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	records, err := decodeRecords(raw)
	if err != nil {
		s.log.Error("Discarding unreadable deposits", zap.String("slot", s.key), zap.Error(err))
		return []DepositRecord{}, nil
	}
	return records, nil
}
