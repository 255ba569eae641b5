package mailer

import (
	"context"
	"errors"
	"mime"
	"strings"
	"testing"
)

func TestCompose(t *testing.T) {
	raw := string(compose("owner@example.com", Message{
		To:       []string{"client@example.com", "owner@example.com"},
		Subject:  "Booking Confirmation – Wedding",
		HTMLBody: "<h2>Thank you, Ada!</h2>",
	}))

	for _, want := range []string{
		"From: owner@example.com\r\n",
		"To: client@example.com, owner@example.com\r\n",
		"Subject: " + mime.QEncoding.Encode("utf-8", "Booking Confirmation – Wedding") + "\r\n",
		"Content-Type: text/html; charset=\"utf-8\"\r\n\r\n<h2>Thank you, Ada!</h2>",
	} {
		if !strings.Contains(raw, want) {
			t.Fatalf("message missing %q:\n%s", want, raw)
		}
	}
}

func TestSendWithoutHost(t *testing.T) {
	if err := (&SMTP{}).Send(context.Background(), Message{To: []string{"a@example.com"}}); err == nil {
		t.Fatalf("expected error when host is not configured")
	}
}

func TestComposeSubjectCannotAddHeaders(t *testing.T) {
	raw := string(compose("owner@example.com", Message{
		To:       []string{"client@example.com"},
		Subject:  "Booking Confirmation – Wedding\r\nBcc: victim@example.net",
		HTMLBody: "<p>hi</p>",
	}))

	headers, _, _ := strings.Cut(raw, "\r\n\r\n")
	for _, line := range strings.Split(headers, "\r\n") {
		if strings.HasPrefix(strings.ToLower(line), "bcc:") {
			t.Fatalf("subject produced an extra header line:\n%s", headers)
		}
	}
	if strings.Count(headers, "\r\n") != 4 {
		t.Fatalf("expected exactly five header lines:\n%s", headers)
	}
	if strings.Contains(headers, "–") {
		t.Fatalf("subject should be encoded, got raw 8-bit text:\n%s", headers)
	}
}

func TestSendRejectsLineBreaksInHeaders(t *testing.T) {
	m := &SMTP{Host: "smtp.invalid", Port: "25"}
	cases := []Message{
		{To: []string{"a@example.com"}, Subject: "Hi\nBcc: victim@example.net"},
		{To: []string{"a@example.com\r\nBcc: victim@example.net"}, Subject: "Hi"},
	}
	for _, msg := range cases {
		if err := m.Send(context.Background(), msg); !errors.Is(err, ErrHeaderInjection) {
			t.Fatalf("expected ErrHeaderInjection, got %v", err)
		}
	}
}
