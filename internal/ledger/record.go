package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrStorage wraps any failure of the underlying storage medium.
	ErrStorage = errors.New("ledger storage unavailable")
	// ErrInvalidAmount is returned by intake under the reject policy.
	ErrInvalidAmount = errors.New("invalid deposit amount")
	// ErrLedgerChanged means the ledger moved between reading a total and clearing it.
	ErrLedgerChanged = errors.New("ledger changed since it was read")
)

// DepositRecord is one recorded payment intent. Records are never edited in place.
type DepositRecord struct {
	Amount    decimal.Decimal
	Method    Method
	Timestamp time.Time
}

// storedDeposit is the persisted shape: amount as a JSON number, epoch milliseconds.
type storedDeposit struct {
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	Timestamp int64   `json:"timestamp"`
}

func encodeRecords(records []DepositRecord) ([]byte, error) {
	out := make([]storedDeposit, 0, len(records))
	for _, r := range records {
		out = append(out, storedDeposit{
			Amount:    r.Amount.InexactFloat64(),
			Method:    string(r.Method),
			Timestamp: r.Timestamp.UnixMilli(),
		})
	}
	return json.Marshal(out)
}

func decodeRecords(b []byte) ([]DepositRecord, error) {
	var stored []storedDeposit
	if err := json.Unmarshal(b, &stored); err != nil {
		return nil, fmt.Errorf("corrupt ledger: %w", err)
	}
	records := make([]DepositRecord, 0, len(stored))
	for _, s := range stored {
		records = append(records, DepositRecord{
			Amount:    decimal.NewFromFloat(s.Amount),
			Method:    Method(s.Method),
			Timestamp: time.UnixMilli(s.Timestamp),
		})
	}
	return records, nil
}
