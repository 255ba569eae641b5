package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AmountPolicy decides what happens to an amount that does not parse.
type AmountPolicy string

const (
	// CoerceInvalid records unparseable or negative amounts as zero.
	CoerceInvalid AmountPolicy = "coerce"
	// RejectInvalid refuses them with ErrInvalidAmount.
	RejectInvalid AmountPolicy = "reject"
)

const ackTimeout = 10 * time.Second

// Intake turns payment form submissions into ledger records.
type Intake struct {
	store  *Store
	sink   Acknowledger
	policy AmountPolicy
	log    *zap.Logger
	wg     sync.WaitGroup
}

func NewIntake(store *Store, sink Acknowledger, policy AmountPolicy, log *zap.Logger) *Intake {
	if policy == "" {
		policy = CoerceInvalid
	}
	return &Intake{store: store, sink: sink, policy: policy, log: log}
}

// Submit records a deposit. Only an invalid amount under RejectInvalid fails;
// storage faults are logged and the normalized record is still returned.
func (in *Intake) Submit(ctx context.Context, rawAmount, rawMethod string) (DepositRecord, error) {
	method := ParseMethod(rawMethod)
	amount, err := ParseAmount(rawAmount)
	if err != nil {
		if in.policy == RejectInvalid {
			in.log.Warn("Deposit rejected", zap.String("amount", rawAmount), zap.Error(err))
			return DepositRecord{}, err
		}
		in.log.Warn("Deposit amount coerced to zero", zap.String("amount", rawAmount), zap.Error(err))
		amount = decimal.Zero
	}

	rec, err := in.store.Append(ctx, amount, method)
	if err != nil {
		in.log.Error("Deposit not persisted",
			zap.String("amount", amount.StringFixed(2)),
			zap.String("method", string(method)),
			zap.Error(err))
	} else {
		in.log.Info("Deposit submitted",
			zap.String("amount", amount.StringFixed(2)),
			zap.String("method", string(method)))
	}

	in.acknowledge(Acknowledgement{Amount: amount, Method: method})
	return rec, nil
}

// acknowledge notifies the sink in the background.
func (in *Intake) acknowledge(ack Acknowledgement) {
	if in.sink == nil {
		return
	}
	in.wg.Add(1)
	go func() {
		defer in.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), ackTimeout)
		defer cancel()
		if err := in.sink.Acknowledge(ctx, ack); err != nil {
			in.log.Warn("Deposit acknowledgement failed", zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight acknowledgements finish.
func (in *Intake) Wait() {
	in.wg.Wait()
}

// ParseAmount parses a form amount such as "250", "$1,250.50" or " 99.9 ".
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: missing", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative", ErrInvalidAmount)
	}
	return d, nil
}
