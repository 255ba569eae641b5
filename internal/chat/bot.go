package chat

import (
	"context"
	"strings"
	"time"
)

const (
	Greeting = "Hello! How can I help you plan your event today?"
	Pricing  = "Our pricing varies depending on the event type and size. Please provide details through our contact form."
	Fallback = "Thank you for your message! A member of our team will respond shortly."
)

// Reply picks a canned answer by keyword.
func Reply(message string) string {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "hello") || strings.Contains(lower, "hi") {
		return Greeting
	}
	if strings.Contains(lower, "price") || strings.Contains(lower, "cost") {
		return Pricing
	}
	return Fallback
}

// Bot answers after a fixed delay, like a person typing.
type Bot struct {
	Delay time.Duration
}

// Respond waits for the reply delay and answers, or returns ctx.Err() if the
// conversation is abandoned first.
func (b Bot) Respond(ctx context.Context, message string) (string, error) {
	if b.Delay > 0 {
		t := time.NewTimer(b.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return Reply(message), nil
}
