package ledger

import "testing"

func TestMethodLabels(t *testing.T) {
	cases := []struct {
		method Method
		label  string
		payout string
		known  bool
	}{
		{Stripe, "Stripe", "Stripe", true},
		{PayPal, "PayPal", "PayPal", true},
		{Wallet, "Digital Wallet", "Digital Wallet", true},
		{Bank, "Bank Transfer", "Bank Transfer", true},
		{"PayPal", "PayPal", "PayPal", true},
		{"BANK", "Bank Transfer", "Bank Transfer", true},
		{"crypto", "crypto", "Stripe", false},
		{"Apple Pay", "Apple Pay", "Stripe", false},
		{"", "Unknown", "Stripe", false},
	}
	for _, c := range cases {
		if got := c.method.Label(); got != c.label {
			t.Fatalf("Label(%q): want %s got %s", c.method, c.label, got)
		}
		if got := c.method.PayoutLabel(); got != c.payout {
			t.Fatalf("PayoutLabel(%q): want %s got %s", c.method, c.payout, got)
		}
		if got := c.method.Known(); got != c.known {
			t.Fatalf("Known(%q): want %t got %t", c.method, c.known, got)
		}
	}
}

func TestParseMethod(t *testing.T) {
	if got := ParseMethod("  paypal "); got != PayPal {
		t.Fatalf("want paypal got %q", got)
	}
	if got := ParseMethod(" Apple Pay "); got != "Apple Pay" {
		t.Fatalf("methods should pass through as entered, got %q", got)
	}
}
