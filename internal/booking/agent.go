// Package booking processes event booking requests: it charges the deposit,
// emails the confirmation and keeps a record for the owner.
package booking

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NgigiN/aureliya/internal/mailer"
	"github.com/NgigiN/aureliya/internal/payments"
	"github.com/NgigiN/aureliya/internal/storage"
)

// Request is the booking form as posted by the site.
type Request struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	EventType       string `json:"event_type"`
	EventDate       string `json:"event_date"`
	Guests          string `json:"guests"`
	Budget          string `json:"budget"`
	Message         string `json:"message"`
	PaymentMethod   string `json:"payment_method"`
	StripePaymentID string `json:"stripe_payment_id"`
}

type Result struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Reference string `json:"reference"`
	PaymentID string `json:"payment_id,omitempty"`
}

type Charger interface {
	Charge(ctx context.Context, paymentMethodID string, amountCents int64) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type Recorder interface {
	SaveBooking(ctx context.Context, b *storage.Booking) error
}

type Agent struct {
	charger    Charger
	mailer     Mailer
	recorder   Recorder
	ownerEmail string
	log        *zap.Logger
}

func NewAgent(charger Charger, m Mailer, recorder Recorder, ownerEmail string, log *zap.Logger) *Agent {
	return &Agent{
		charger:    charger,
		mailer:     m,
		recorder:   recorder,
		ownerEmail: ownerEmail,
		log:        log,
	}
}

// Validate checks the fields the confirmation email cannot do without.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if !strings.Contains(r.Email, "@") || strings.ContainsAny(r.Email, "\r\n,") {
		return fmt.Errorf("a valid email is required")
	}
	if strings.ContainsAny(r.EventType, "\r\n") {
		return fmt.Errorf("event type must be a single line")
	}
	return nil
}

// Process charges, confirms and records a booking. Any provider failure
// aborts the remaining steps and is returned to the caller.
func (a *Agent) Process(ctx context.Context, req Request) (Result, error) {
	ref := uuid.NewString()
	log := a.log.With(zap.String("reference", ref), zap.String("event_type", req.EventType))
	log.Info("Processing booking", zap.String("payment_method", req.PaymentMethod))

	var paymentID string
	switch strings.ToLower(req.PaymentMethod) {
	case "stripe":
		id, err := a.charger.Charge(ctx, req.StripePaymentID, payments.BookingDepositCents)
		if err != nil {
			log.Error("Stripe charge failed", zap.Error(err))
			return Result{}, err
		}
		paymentID = id
		log.Info("Stripe payment confirmed", zap.String("payment_id", id))
	case "paypal":
		log.Info("PayPal payment processed")
	}

	if err := a.sendConfirmation(ctx, req); err != nil {
		log.Error("Booking confirmation email failed", zap.Error(err))
		return Result{}, err
	}

	guests, _ := strconv.Atoi(strings.TrimSpace(req.Guests))
	budget, _ := strconv.ParseFloat(strings.TrimSpace(req.Budget), 64)
	record := &storage.Booking{
		Reference:     ref,
		Name:          req.Name,
		Email:         req.Email,
		EventType:     req.EventType,
		EventDate:     req.EventDate,
		Guests:        guests,
		Budget:        budget,
		PaymentMethod: req.PaymentMethod,
		PaymentID:     paymentID,
		Message:       req.Message,
	}
	if err := a.recorder.SaveBooking(ctx, record); err != nil {
		log.Error("Booking not logged", zap.Error(err))
		return Result{}, err
	}
	log.Info("Booking logged")

	return Result{
		Status:    "success",
		Message:   "Booking processed by AI agent",
		Reference: ref,
		PaymentID: paymentID,
	}, nil
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<h2>Thank you, {{.Name}}!</h2>
<p>Your event booking request has been received:</p>
<ul>
  <li><strong>Event Type:</strong> {{.EventType}}</li>
  <li><strong>Event Date:</strong> {{.EventDate}}</li>
  <li><strong>Guests:</strong> {{.Guests}}</li>
  <li><strong>Budget:</strong> ${{.Budget}}</li>
  <li><strong>Message:</strong> {{.Message}}</li>
</ul>
<p>Our AI team will follow up with tailored options shortly.</p>
<p>– Auréliya Holdings</p>
`))

func (a *Agent) sendConfirmation(ctx context.Context, req Request) error {
	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, req); err != nil {
		return err
	}
	to := []string{req.Email}
	if a.ownerEmail != "" {
		to = append(to, a.ownerEmail)
	}
	return a.mailer.Send(ctx, mailer.Message{
		To:       to,
		Subject:  "Booking Confirmation – " + req.EventType,
		HTMLBody: body.String(),
	})
}
