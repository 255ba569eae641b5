// Package automation holds the client-follow-up heuristics run on form
// submissions, deposits and dashboard visits. Each level only inspects the
// submitted fields and logs what it concluded.
package automation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/NgigiN/aureliya/internal/ledger"
)

// VIPBudget is the budget above which a lead is flagged as VIP.
const VIPBudget = 20000

// Acknowledgement is the text shown to a visitor after any submission.
const Acknowledgement = "Thank you for your inquiry. We'll be in touch shortly."

// Form is a flat set of submitted form fields.
type Form map[string]string

func (f Form) get(key string) string {
	return strings.TrimSpace(f[key])
}

// Insight is what levels 2 to 4 and 7 concluded about a lead.
type Insight struct {
	VIP        bool   `json:"vip"`
	Style      string `json:"style"`
	Tone       string `json:"tone"`
	Proposal   string `json:"proposal"`
	Suggestion string `json:"suggestion"`
}

type Engine struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Engine {
	return &Engine{log: log}
}

// Acknowledge sends the basic acknowledgement (level 1).
func (e *Engine) Acknowledge(form Form) string {
	e.log.Info("Level 1 activated: sending polite acknowledgement")
	return Acknowledgement
}

// TrackLead evaluates VIP status from the budget field (level 2).
func (e *Engine) TrackLead(form Form) bool {
	budget, _ := strconv.Atoi(leadingDigits(form.get("budget")))
	vip := budget > VIPBudget
	e.log.Info("Level 2 activated: lead logged", zap.Bool("vip", vip), zap.Int("budget", budget))
	return vip
}

// Understand infers style and tone from the theme and vibe fields (level 3).
func (e *Engine) Understand(form Form) (style, tone string) {
	style = strings.ToLower(form.get("theme"))
	if style == "" {
		style = "unspecified"
	}
	tone = strings.ToLower(form.get("vibe"))
	if tone == "" {
		tone = "classic"
	}
	e.log.Info("Level 3 activated: preferences analysed", zap.String("style", style), zap.String("tone", tone))
	return style, tone
}

// Propose outlines a proposal from guest count and location (level 4).
func (e *Engine) Propose(form Form) string {
	guests := guestCount(form)
	location := form.get("location")
	if location == "" {
		location = "TBD"
	}
	proposal := fmt.Sprintf("Based on %d guests in %s, a luxury design plan will be prepared.", guests, location)
	e.log.Info("Level 4 activated: proposal outline generated", zap.String("proposal", proposal))
	return proposal
}

// QueueMarketing pushes the event to the marketing queue (level 5).
func (e *Engine) QueueMarketing() {
	e.log.Info("Level 5 activated: event pushed to marketing queue")
}

// ScanPatterns is the lead-resonance placeholder (level 6).
func (e *Engine) ScanPatterns() {
	e.log.Info("Level 6 placeholder: scanning patterns for lead resonance")
}

// Curate recommends an experience from event type and guest count (level 7).
func (e *Engine) Curate(form Form) string {
	eventType := strings.ToLower(form.get("eventType"))
	if eventType == "" {
		eventType = strings.ToLower(form.get("event_type"))
	}
	guests := guestCount(form)

	suggestion := "A curated plan will be prepared."
	switch {
	case strings.Contains(eventType, "wedding") && guests > 100:
		suggestion = "Recommend beachfront or ballroom luxury with tiered service packages."
	case strings.Contains(eventType, "corporate"):
		suggestion = "Suggest luxury venue with privacy rooms and branded ambiance."
	case strings.Contains(eventType, "intimate") || guests <= 20:
		suggestion = "Private estate or rooftop option with micro-luxury design."
	}
	e.log.Info("Level 7 activated: predictive suggestion", zap.String("suggestion", suggestion))
	return suggestion
}

// Inquiry runs levels 1 to 4 and 7 for a services or contact form submission.
func (e *Engine) Inquiry(form Form) (string, Insight) {
	ack := e.Acknowledge(form)
	style, tone := e.Understand(form)
	insight := Insight{
		VIP:        e.TrackLead(form),
		Style:      style,
		Tone:       tone,
		Proposal:   e.Propose(form),
		Suggestion: e.Curate(form),
	}
	return ack, insight
}

// DashboardVisit runs the levels applied when the owner opens the dashboard.
func (e *Engine) DashboardVisit(form Form) string {
	proposal := e.Propose(form)
	e.QueueMarketing()
	e.ScanPatterns()
	return proposal
}

// DepositSink adapts the engine to the ledger acknowledgement sink, running
// levels 1 to 3 on every deposit.
type DepositSink struct {
	Engine *Engine
}

func (s DepositSink) Acknowledge(_ context.Context, ack ledger.Acknowledgement) error {
	form := Form{
		"depositAmount": ack.Amount.StringFixed(2),
		"paymentMethod": string(ack.Method),
	}
	s.Engine.Acknowledge(form)
	s.Engine.TrackLead(form)
	s.Engine.Understand(form)
	return nil
}

func guestCount(form Form) int {
	n, _ := strconv.Atoi(leadingDigits(form.get("guests")))
	return n
}

// leadingDigits keeps the integer prefix of s, the way form numbers are read.
func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
