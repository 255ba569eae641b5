package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OutcomeStatus string

const (
	OutcomeNothingToWithdraw OutcomeStatus = "nothing_to_withdraw"
	OutcomeDeclined          OutcomeStatus = "declined"
	OutcomeSettled           OutcomeStatus = "settled"
	OutcomeConflict          OutcomeStatus = "conflict"
	OutcomeFailed            OutcomeStatus = "failed"
)

// Outcome is the result of one withdrawal request. View is only set once settled.
type Outcome struct {
	Status  OutcomeStatus
	Total   decimal.Decimal
	Method  Method
	Message string
	View    *View
}

// Withdrawal reports the ledger total, asks for confirmation and clears the ledger.
type Withdrawal struct {
	store     *Store
	dashboard *Dashboard
	log       *zap.Logger
}

func NewWithdrawal(store *Store, dashboard *Dashboard, log *zap.Logger) *Withdrawal {
	return &Withdrawal{store: store, dashboard: dashboard, log: log}
}

// Request runs a withdrawal via method, defaulting to Stripe. The returned
// error is non-nil only when the ledger could not be cleared.
func (w *Withdrawal) Request(ctx context.Context, method Method, prompt Prompter) (Outcome, error) {
	if method == "" {
		method = Stripe
	}
	label := method.PayoutLabel()

	records := w.store.ReadAll(ctx)
	total := Total(records)
	out := Outcome{Total: total, Method: method}

	if !total.IsPositive() {
		out.Status = OutcomeNothingToWithdraw
		out.Message = "There are no deposits to withdraw."
		return out, nil
	}

	question := fmt.Sprintf("Withdraw all collected deposits (%s) via %s?", FormatUSD(total), label)
	ok, err := prompt.Confirm(ctx, question)
	if err != nil {
		w.log.Warn("Withdrawal confirmation not received", zap.Error(err))
		ok = false
	}
	if !ok {
		out.Status = OutcomeDeclined
		out.Message = "Withdrawal cancelled."
		return out, nil
	}

	if err := w.store.ClearIfUnchanged(ctx, records); err != nil {
		if errors.Is(err, ErrLedgerChanged) {
			out.Status = OutcomeConflict
			out.Message = "New deposits arrived while confirming. Please review the total and try again."
			return out, nil
		}
		w.log.Error("Withdrawal failed",
			zap.String("total", total.StringFixed(2)),
			zap.String("method", string(method)),
			zap.Error(err))
		out.Status = OutcomeFailed
		out.Message = fmt.Sprintf("The withdrawal of %s via %s could not be completed.", FormatUSD(total), label)
		return out, err
	}

	w.log.Info("Withdrawal settled",
		zap.String("total", total.StringFixed(2)),
		zap.String("method", string(method)),
		zap.Int("records", len(records)))

	out.Status = OutcomeSettled
	out.Message = fmt.Sprintf("%s has been transferred to your account via %s.", FormatUSD(total), label)
	view := w.dashboard.Snapshot(ctx)
	out.View = &view
	return out, nil
}
