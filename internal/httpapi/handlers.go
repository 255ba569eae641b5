package httpapi

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/NgigiN/aureliya/internal/automation"
	"github.com/NgigiN/aureliya/internal/booking"
	"github.com/NgigiN/aureliya/internal/ledger"
)

const (
	dashboardHeader = "X-Dashboard-Password"
	maxBodyBytes    = 1 << 20
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
		"storage":   s.StorageDriver,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if s.DiscordConnected != nil {
		health["discord_connected"] = s.DiscordConnected()
	}
	respond(w, http.StatusOK, "", health)
}

type depositRequest struct {
	Amount json.RawMessage `json:"amount"`
	Method string          `json:"method"`
}

type depositResponse struct {
	Amount    string `json:"amount"`
	Method    string `json:"method"`
	Label     string `json:"label"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	if s.Intake == nil {
		respondError(w, http.StatusServiceUnavailable, "deposits are not available")
		return
	}
	amount, method, err := readDeposit(w, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.Intake.Submit(r.Context(), amount, method)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respond(w, http.StatusCreated, "Deposit recorded", depositResponse{
		Amount:    rec.Amount.StringFixed(2),
		Method:    string(rec.Method),
		Label:     rec.Method.Label(),
		Timestamp: rec.Timestamp.UTC().Format(time.RFC3339Nano),
	})
}

// readDeposit accepts a JSON body or a urlencoded form. A JSON amount may be a
// number or a string.
func readDeposit(w http.ResponseWriter, r *http.Request) (amount, method string, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := r.ParseForm(); err != nil {
			return "", "", fmt.Errorf("invalid form: %w", err)
		}
		return r.PostFormValue("amount"), r.PostFormValue("method"), nil
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", "", fmt.Errorf("invalid request body: %w", err)
	}
	raw := strings.TrimSpace(string(req.Amount))
	switch {
	case raw == "" || raw == "null":
		return "", req.Method, nil
	case strings.HasPrefix(raw, `"`):
		if err := json.Unmarshal(req.Amount, &amount); err != nil {
			return "", "", fmt.Errorf("invalid amount: %w", err)
		}
		return amount, req.Method, nil
	default:
		return raw, req.Method, nil
	}
}

func (s *Server) requireDashboardPassword(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.DashboardPassword != "" {
			given := r.Header.Get(dashboardHeader)
			if subtle.ConstantTimeCompare([]byte(given), []byte(s.DashboardPassword)) != 1 {
				respondError(w, http.StatusUnauthorized, "invalid dashboard password")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type dashboardResponse struct {
	Ledger   ledger.View `json:"ledger"`
	Proposal string      `json:"proposal,omitempty"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.Dashboard == nil {
		respondError(w, http.StatusServiceUnavailable, "dashboard is not available")
		return
	}
	resp := dashboardResponse{Ledger: s.Dashboard.Snapshot(r.Context())}
	if s.Engine != nil {
		form := automation.Form{}
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				form[k] = v[0]
			}
		}
		resp.Proposal = s.Engine.DashboardVisit(form)
	}
	respond(w, http.StatusOK, "", resp)
}

type withdrawalRequest struct {
	Method  string `json:"method"`
	Confirm bool   `json:"confirm"`
}

type withdrawalResponse struct {
	Outcome string       `json:"outcome"`
	Total   string       `json:"total"`
	Method  string       `json:"method"`
	Label   string       `json:"label"`
	Ledger  *ledger.View `json:"ledger,omitempty"`
}

func (s *Server) handleWithdrawal(w http.ResponseWriter, r *http.Request) {
	if s.Withdrawal == nil {
		respondError(w, http.StatusServiceUnavailable, "withdrawals are not available")
		return
	}
	var req withdrawalRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.Withdrawal.Request(r.Context(), ledger.ParseMethod(req.Method), ledger.Answer(req.Confirm))
	if err != nil {
		s.Log.Error("Withdrawal failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, out.Message)
		return
	}

	status := http.StatusOK
	if out.Status == ledger.OutcomeConflict {
		status = http.StatusConflict
	}
	respond(w, status, out.Message, withdrawalResponse{
		Outcome: string(out.Status),
		Total:   ledger.FormatUSD(out.Total),
		Method:  string(out.Method),
		Label:   out.Method.PayoutLabel(),
		Ledger:  out.View,
	})
}

func (s *Server) handleInquiry(w http.ResponseWriter, r *http.Request) {
	if s.Engine == nil {
		respondError(w, http.StatusServiceUnavailable, "inquiries are not available")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form := automation.Form{}
	for k, v := range fields {
		if v != nil {
			form[k] = fmt.Sprint(v)
		}
	}
	ack, insight := s.Engine.Inquiry(form)
	respond(w, http.StatusOK, ack, insight)
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.Chat.Respond(r.Context(), req.Message)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "chat request was cancelled")
		return
	}
	respond(w, http.StatusOK, "", map[string]string{"reply": reply})
}

func (s *Server) handleBooking(w http.ResponseWriter, r *http.Request) {
	if s.Booking == nil {
		respondError(w, http.StatusServiceUnavailable, "bookings are not available")
		return
	}
	var req booking.Request
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.Booking.Process(r.Context(), req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respond(w, http.StatusOK, res.Message, res)
}
