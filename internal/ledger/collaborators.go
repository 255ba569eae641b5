package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Acknowledgement is the normalized deposit handed to notification sinks.
type Acknowledgement struct {
	Amount decimal.Decimal
	Method Method
}

// Acknowledger receives every accepted deposit. Its result never affects the ledger.
type Acknowledger interface {
	Acknowledge(ctx context.Context, ack Acknowledgement) error
}

// Acknowledgers fans one acknowledgement out to several sinks.
type Acknowledgers []Acknowledger

func (a Acknowledgers) Acknowledge(ctx context.Context, ack Acknowledgement) error {
	var errs []error
	for _, sink := range a {
		if sink == nil {
			continue
		}
		if err := sink.Acknowledge(ctx, ack); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func(ctx context.Context, message string) (bool, error)

func (f PromptFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}

// Answer returns a Prompter that always gives the same answer, for callers
// that collected the confirmation up front.
func Answer(yes bool) Prompter {
	return PromptFunc(func(context.Context, string) (bool, error) { return yes, nil })
}
