// Package api exposes scan and analysis results over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vkryukov/pulsar/internal/analyzer"
	"github.com/vkryukov/pulsar/internal/indicators"
	"github.com/vkryukov/pulsar/internal/scanner"
	"github.com/vkryukov/pulsar/pkg/logger"
)

// Server serves the JSON API
type Server struct {
	server    *http.Server
	analyzer  *analyzer.Analyzer
	scanner   *scanner.Scanner
	startTime time.Time
}

// staleEnvelope wraps a payload served from cache after an upstream failure
type staleEnvelope struct {
	Data    interface{} `json:"data"`
	Cached  bool        `json:"cached"`
	Message string      `json:"message"`
}

// NewServer creates the API server
func NewServer(port string, a *analyzer.Analyzer, s *scanner.Scanner) *Server {
	mux := http.NewServeMux()

	srv := &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		analyzer:  a,
		scanner:   s,
		startTime: time.Now(),
	}

	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/api/analysis", srv.handleAnalysis)
	mux.HandleFunc("/api/market", srv.handleMarket)
	mux.HandleFunc("/api/trending", srv.scanHandler(scanner.KindTrending))
	mux.HandleFunc("/api/gainers", srv.scanHandler(scanner.KindGainers))
	mux.HandleFunc("/api/losers", srv.scanHandler(scanner.KindLosers))
	mux.HandleFunc("/api/volume", srv.scanHandler(scanner.KindVolumeSurge))
	mux.HandleFunc("/api/signals", srv.scanHandler(scanner.KindSignals))
	mux.HandleFunc("/api/analyses", srv.scanHandler(scanner.KindMarketAnalysis))

	return srv
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	logger.Info("api server starting", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol query parameter is required")
		return
	}

	result, stale, err := s.analyzer.Analyze(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, indicators.ErrInsufficientData) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.Error("analysis request failed", zap.String("symbol", symbol), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to analyze symbol")
		return
	}

	if stale {
		writeJSON(w, http.StatusOK, staleEnvelope{
			Data:    result,
			Cached:  true,
			Message: "Serving cached data due to API error",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	tickers, stale, err := s.scanner.MarketData(r.Context())
	if err != nil {
		logger.Error("market data request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to fetch market data")
		return
	}

	if stale {
		writeJSON(w, http.StatusOK, staleEnvelope{
			Data:    tickers,
			Cached:  true,
			Message: "Serving cached data due to API error",
		})
		return
	}

	writeJSON(w, http.StatusOK, tickers)
}

func (s *Server) scanHandler(kind scanner.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, stale, err := s.scanner.Scan(r.Context(), kind)
		if err != nil {
			logger.Error("scan request failed", zap.String("kind", string(kind)), zap.Error(err))
			writeError(w, http.StatusBadGateway, "failed to run scan")
			return
		}

		if stale {
			writeJSON(w, http.StatusOK, staleEnvelope{
				Data:    entries,
				Cached:  true,
				Message: "Serving cached data due to API error",
			})
			return
		}

		writeJSON(w, http.StatusOK, entries)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
