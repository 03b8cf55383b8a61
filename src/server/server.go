package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	logger "github.com/sirupsen/logrus"

	"newsexecutor/src/handler"
)

// Engine is everything the HTTP surface needs from the decision engine.
type Engine interface {
	handler.Venue
	handler.Views
}

// NewRouter mounts the venue protocol and the observability views.
func NewRouter(eng Engine) http.Handler {
	r := chi.NewRouter()
	// === Global Middleware ===
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/healthcheck", handler.HealthcheckHandler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/heartbeat", handler.HeartbeatHandler(eng))
		r.Get("/commands/next", handler.NextCommandHandler(eng))
		r.Post("/commands/ack", handler.AckHandler(eng))
		r.Post("/trades/outcome", handler.OutcomeHandler(eng))

		r.Get("/clients/{clientID}/positions", handler.PositionsHandler(eng))
		r.Get("/clients/{clientID}/commands", handler.ClientCommandsHandler(eng))
		r.Get("/events", handler.EventsHandler(eng))
		r.Get("/trades", handler.TradesHandler(eng))
		r.Get("/exposure", handler.ExposureHandler(eng))
		r.Get("/status", handler.StatusHandler(eng))
	})
	return r
}

// StartServer serves h on port until SIGINT or SIGTERM, then shuts down
// gracefully.
func StartServer(port string, h http.Handler, shutdownTimeout time.Duration) {
	// Server setup
	addr := ":" + port
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
