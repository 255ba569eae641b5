package ledger

import "strings"

// Method is the payment method a deposit was made with. Values outside the
// known set are kept verbatim.
type Method string

const (
	Stripe Method = "stripe"
	PayPal Method = "paypal"
	Wallet Method = "wallet"
	Bank   Method = "bank"
)

var methodLabels = map[Method]string{
	Stripe: "Stripe",
	PayPal: "PayPal",
	Wallet: "Digital Wallet",
	Bank:   "Bank Transfer",
}

// ParseMethod trims raw form input and otherwise keeps it as entered.
func ParseMethod(raw string) Method {
	return Method(strings.TrimSpace(raw))
}

// lookup matches m against the supported methods regardless of case.
func (m Method) lookup() (string, bool) {
	label, ok := methodLabels[Method(strings.ToLower(string(m)))]
	return label, ok
}

// Known reports whether m is one of the supported methods.
func (m Method) Known() bool {
	_, ok := m.lookup()
	return ok
}

// Label is the display name used in the deposit listing.
func (m Method) Label() string {
	if label, ok := m.lookup(); ok {
		return label
	}
	if m == "" {
		return "Unknown"
	}
	return string(m)
}

// PayoutLabel is the display name used when settling a withdrawal.
// Unsupported payout methods fall back to Stripe.
func (m Method) PayoutLabel() string {
	if label, ok := m.lookup(); ok {
		return label
	}
	return methodLabels[Stripe]
}
