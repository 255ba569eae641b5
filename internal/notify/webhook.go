package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/NgigiN/aureliya/internal/ledger"
)

// Webhook forwards recorded deposits to an external URL as JSON.
type Webhook struct {
	URL    string
	Client *http.Client
	now    func() time.Time
}

func NewWebhook(url string) *Webhook {
	return &Webhook{
		URL:    url,
		Client: &http.Client{Timeout: 5 * time.Second},
		now:    time.Now,
	}
}

type event struct {
	Event string      `json:"event"`
	Data  depositData `json:"data"`
}

type depositData struct {
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Method    string `json:"method"`
	Timestamp int64  `json:"timestamp"`
}

func (w *Webhook) Acknowledge(ctx context.Context, ack ledger.Acknowledgement) error {
	body, err := json.Marshal(event{
		Event: "deposit.recorded",
		Data: depositData{
			Amount:    ack.Amount.StringFixed(2),
			Currency:  "USD",
			Method:    string(ack.Method),
			Timestamp: w.now().UnixMilli(),
		},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Aureliya-Webhook/1.0")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
}
