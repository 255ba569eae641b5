package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NgigiN/aureliya/internal/storage"
)

type recordingSink struct {
	mu   sync.Mutex
	acks []Acknowledgement
	err  error
}

func (r *recordingSink) Acknowledge(_ context.Context, ack Acknowledgement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acks = append(r.acks, ack)
	return r.err
}

func (r *recordingSink) received() []Acknowledgement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Acknowledgement(nil), r.acks...)
}

// blockingSink never returns until released.
type blockingSink struct{ release chan struct{} }

func (b *blockingSink) Acknowledge(ctx context.Context, _ Acknowledgement) error {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return errors.New("sink gave up")
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"250", "250", true},
		{" 99.90 ", "99.9", true},
		{"$1,250.50", "1250.5", true},
		{"0", "0", true},
		{"abc", "", false},
		{"", "", false},
		{"-5", "", false},
		{"12abc", "", false},
	}
	for _, c := range cases {
		got, err := ParseAmount(c.in)
		if c.ok {
			if err != nil {
				t.Fatalf("ParseAmount(%q): unexpected error %v", c.in, err)
			}
			if !got.Equal(decimal.RequireFromString(c.want)) {
				t.Fatalf("ParseAmount(%q): want %s got %s", c.in, c.want, got)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseAmount(%q): expected ErrInvalidAmount, got %v", c.in, err)
		}
	}
}

func TestSubmitRecordsDeposit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemorySlots())
	sink := &recordingSink{}
	intake := NewIntake(store, sink, CoerceInvalid, zap.NewNop())

	rec, err := intake.Submit(ctx, "250", "stripe")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	intake.Wait()

	if !rec.Amount.Equal(decimal.NewFromInt(250)) || rec.Method != Stripe {
		t.Fatalf("unexpected record: %+v", rec)
	}
	all := store.ReadAll(ctx)
	if len(all) != 1 || !Total(all).Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected one record totalling 250, got %+v", all)
	}
	row := Render(all, time.UTC)[0]
	if row.Amount != "$250.00" || row.Method != "Stripe" || row.Date != testNow.Format("2006-01-02") {
		t.Fatalf("unexpected row: %+v", row)
	}

	acks := sink.received()
	if len(acks) != 1 || !acks[0].Amount.Equal(decimal.NewFromInt(250)) || acks[0].Method != Stripe {
		t.Fatalf("unexpected acknowledgements: %+v", acks)
	}
}

func TestSubmitCoercesInvalidAmount(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemorySlots())
	intake := NewIntake(store, nil, CoerceInvalid, zap.NewNop())

	rec, err := intake.Submit(ctx, "abc", "paypal")
	if err != nil {
		t.Fatalf("coerce policy should not fail, got %v", err)
	}
	if !rec.Amount.IsZero() || rec.Method != PayPal {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if all := store.ReadAll(ctx); len(all) != 1 || !all[0].Amount.IsZero() {
		t.Fatalf("expected a zero-amount record, got %+v", all)
	}
}

func TestSubmitRejectsInvalidAmount(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemorySlots())
	sink := &recordingSink{}
	intake := NewIntake(store, sink, RejectInvalid, zap.NewNop())

	if _, err := intake.Submit(ctx, "abc", "paypal"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	intake.Wait()
	if all := store.ReadAll(ctx); len(all) != 0 {
		t.Fatalf("rejected deposit was stored: %+v", all)
	}
	if acks := sink.received(); len(acks) != 0 {
		t.Fatalf("rejected deposit was acknowledged: %+v", acks)
	}
}

func TestSubmitKeepsUnknownMethod(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemorySlots())
	intake := NewIntake(store, nil, "", zap.NewNop())

	if _, err := intake.Submit(ctx, "10", "Apple Pay"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := intake.Submit(ctx, "5", "PayPal"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	all := store.ReadAll(ctx)
	if len(all) != 2 || all[0].Method != "Apple Pay" || all[1].Method != "PayPal" {
		t.Fatalf("expected methods kept as entered, got %+v", all)
	}
	rows := Render(all, time.UTC)
	if rows[0].Method != "Apple Pay" {
		t.Fatalf("expected verbatim label, got %s", rows[0].Method)
	}
	if rows[1].Method != "PayPal" {
		t.Fatalf("expected known label for mixed case method, got %s", rows[1].Method)
	}
}

func TestSubmitTotalsMatchSum(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(storage.NewMemorySlots())
	intake := NewIntake(store, nil, CoerceInvalid, zap.NewNop())

	inputs := []struct{ amount, method string }{
		{"100", "stripe"}, {"50", "paypal"}, {"0.25", "crypto"}, {"bogus", "bank"}, {"$1,000", ""},
	}
	want := decimal.RequireFromString("1150.25")
	for _, in := range inputs {
		if _, err := intake.Submit(ctx, in.amount, in.method); err != nil {
			t.Fatalf("submit %v failed: %v", in, err)
		}
	}
	if got := Total(store.ReadAll(ctx)); !got.Equal(want) {
		t.Fatalf("want total %s got %s", want, got)
	}
}

func TestSubmitSurvivesSinkAndStorageFailures(t *testing.T) {
	ctx := context.Background()
	slots := newFaultySlots()
	store := newTestStore(slots)

	failing := &recordingSink{err: errors.New("mail server down")}
	intake := NewIntake(store, failing, CoerceInvalid, zap.NewNop())
	if _, err := intake.Submit(ctx, "20", "wallet"); err != nil {
		t.Fatalf("sink failure must not fail submit: %v", err)
	}
	intake.Wait()
	if len(store.ReadAll(ctx)) != 1 {
		t.Fatalf("sink failure must not roll back the append")
	}

	slots.failPut = true
	rec, err := intake.Submit(ctx, "30", "wallet")
	if err != nil {
		t.Fatalf("storage fault should be logged, not returned: %v", err)
	}
	if !rec.Amount.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected normalized record back, got %+v", rec)
	}
	intake.Wait()
	if n := len(failing.received()); n != 2 {
		t.Fatalf("expected both deposits acknowledged, got %d", n)
	}
}

func TestSubmitDoesNotWaitForSink(t *testing.T) {
	store := newTestStore(storage.NewMemorySlots())
	sink := &blockingSink{release: make(chan struct{})}
	intake := NewIntake(store, sink, CoerceInvalid, zap.NewNop())

	done := make(chan struct{})
	go func() {
		_, _ = intake.Submit(context.Background(), "5", "stripe")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("submit blocked on the acknowledgement sink")
	}
	close(sink.release)
	intake.Wait()
}

func TestAcknowledgersFanOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{err: errors.New("boom")}
	sinks := Acknowledgers{a, nil, b}

	err := sinks.Acknowledge(context.Background(), Acknowledgement{Amount: decimal.NewFromInt(1), Method: Bank})
	if err == nil {
		t.Fatalf("expected joined error from failing sink")
	}
	if len(a.received()) != 1 || len(b.received()) != 1 {
		t.Fatalf("expected every sink to be called")
	}
}
