// Package server exposes the rate-shopping service over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/parcelgrid/rateshop/internal/telemetry"
	"github.com/parcelgrid/rateshop/pkg/carrier"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Server is the HTTP server for the rate-shopping service.
type Server struct {
	port        int
	registry    *carrier.Registry
	service     *carrier.RateService
	logger      *otelzap.Logger
	metrics     *telemetry.Metrics
	promRegistry *prometheus.Registry
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, registry *carrier.Registry, logger *otelzap.Logger) *Server {
	promReg := prometheus.NewRegistry()
	return &Server{
		port:        cfg.Port,
		registry:    registry,
		service:     carrier.NewRateService(registry, logger),
		logger:      logger,
		metrics:     telemetry.NewMetrics(promReg),
		promRegistry: promReg,
	}
}

// Handler returns the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/v1/quotes", s.handleQuotes)
	mux.HandleFunc("/v1/carriers", s.handleCarriers)
	return mux
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleCarriers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed, use GET")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"carriers": s.registry.Names(),
	})
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed, use POST")
		return
	}

	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	start := time.Now()
	resp, err := s.service.GetQuotes(r.Context(), req.toModel())
	duration := time.Since(start).Seconds()

	if err != nil {
		cerr := carrier.Coerce(err, "")
		s.metrics.RecordRequest("quotes", "error", duration)
		s.metrics.RecordCarrierError(cerr.Carrier, string(cerr.Kind))
		s.logger.Warn("Quote request failed",
			zap.String("kind", string(cerr.Kind)),
			zap.Error(cerr),
		)
		writeJSON(w, statusForKind(cerr.Kind), errorResponse{Error: toErrorDTO(cerr)})
		return
	}

	s.metrics.RecordRequest("quotes", "ok", duration)
	s.metrics.RecordQuotes("quotes", len(resp.Quotes))
	for _, pe := range resp.PartialErrors {
		s.metrics.RecordCarrierError(pe.Carrier, string(pe.Kind))
	}

	writeJSON(w, http.StatusOK, toQuoteResponseDTO(resp))
}

// statusForKind maps the error taxonomy onto HTTP statuses.
func statusForKind(kind carrier.Kind) int {
	switch kind {
	case carrier.KindValidation:
		return http.StatusBadRequest
	case carrier.KindCarrierUnavailable:
		return http.StatusNotFound
	case carrier.KindRateLimited:
		return http.StatusTooManyRequests
	case carrier.KindTimeout:
		return http.StatusGatewayTimeout
	case carrier.KindAuth, carrier.KindNetwork, carrier.KindCarrierAPI, carrier.KindMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: errorDTO{Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
