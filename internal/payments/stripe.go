package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// BookingDepositCents is the fixed amount charged to confirm a booking.
const BookingDepositCents = 10000

var ErrNotConfigured = errors.New("stripe secret key is not set")

// Stripe charges booking deposits through PaymentIntents.
type Stripe struct {
	api *client.API
}

func NewStripe(secretKey string) *Stripe {
	if secretKey == "" {
		return &Stripe{}
	}
	return &Stripe{api: client.New(secretKey, nil)}
}

// Charge creates and confirms a PaymentIntent for paymentMethodID and returns its ID.
func (s *Stripe) Charge(ctx context.Context, paymentMethodID string, amountCents int64) (string, error) {
	if s.api == nil {
		return "", ErrNotConfigured
	}
	if paymentMethodID == "" {
		return "", fmt.Errorf("missing stripe payment method")
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}
	return pi.ID, nil
}
