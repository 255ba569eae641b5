// Package httpapi exposes the ledger and the site's form handlers over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/NgigiN/aureliya/internal/automation"
	"github.com/NgigiN/aureliya/internal/booking"
	"github.com/NgigiN/aureliya/internal/chat"
	"github.com/NgigiN/aureliya/internal/ledger"
)

// Booker processes a booking form.
type Booker interface {
	Process(ctx context.Context, req booking.Request) (booking.Result, error)
}

type Server struct {
	Intake     *ledger.Intake
	Dashboard  *ledger.Dashboard
	Withdrawal *ledger.Withdrawal
	Engine     *automation.Engine
	Chat       chat.Bot
	Booking    Booker

	DashboardPassword string
	StorageDriver     string
	DiscordConnected  func() bool
	Log               *zap.Logger

	startTime time.Time
}

// Routes builds the router. Every route is mounted even when its collaborator
// is optional; the handlers answer 503 for what is not configured.
func (s *Server) Routes() http.Handler {
	if s.Log == nil {
		s.Log = zap.NewNop()
	}
	s.startTime = time.Now()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(s.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", dashboardHeader},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/deposits", s.handleDeposit)
		r.Post("/inquiries", s.handleInquiry)
		r.Post("/chat", s.handleChat)
		r.Post("/booking", s.handleBooking)

		r.Group(func(r chi.Router) {
			r.Use(s.requireDashboardPassword)
			r.Get("/dashboard", s.handleDashboard)
			r.Post("/withdrawals", s.handleWithdrawal)
		})
	})

	return r
}

// LoggerMiddleware logs HTTP requests
func LoggerMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
