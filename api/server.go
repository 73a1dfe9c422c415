// Package api - Thin HTTP layer over the engine
// The API is only responsible for: input ingestion, engine orchestration, output serialization.
// It never performs cost logic.
package api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"freight-cost/adapters/catalog"
	"freight-cost/adapters/storage"
	"freight-cost/api/envelope"
	"freight-cost/core/engine"
	"freight-cost/internal/errors"
)

// Options configures a Server
type Options struct {
	Version string

	Engine  *engine.Engine
	Catalog *catalog.Catalog

	// Store is optional; without one, saving and quote lookup are unavailable
	Store storage.Store

	Logger *zap.Logger

	// Audit receives one entry per quote request; defaults to the logger
	Audit envelope.AuditLogger

	MetricsEnabled bool

	// RateLimit caps POST /quote at this many requests per second; 0 disables it
	RateLimit float64
	RateBurst int
}

// loadedCatalog pairs a catalog with its content hash
type loadedCatalog struct {
	catalog *catalog.Catalog
	hash    string
}

// Server is the API server
type Server struct {
	engine  *engine.Engine
	current atomic.Pointer[loadedCatalog]
	store   storage.Store
	router  *mux.Router
	version string
	logger  *zap.Logger
	audit   envelope.AuditLogger
	metrics bool
	limiter *rate.Limiter
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	audit := opts.Audit
	if audit == nil {
		audit = &envelope.ZapAuditLogger{Logger: logger.Named("audit")}
	}
	eng := opts.Engine
	if eng == nil {
		eng = engine.New(engine.DefaultConfig(), engine.WithLogger(logger.Named("engine")))
	}

	s := &Server{
		engine:  eng,
		store:   opts.Store,
		router:  mux.NewRouter(),
		version: opts.Version,
		logger:  logger,
		audit:   audit,
		metrics: opts.MetricsEnabled,
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	s.SetCatalog(opts.Catalog)

	s.registerRoutes()
	return s
}

// SetCatalog swaps the catalog quotes are priced against. Requests in flight keep
// the catalog they started with.
func (s *Server) SetCatalog(cat *catalog.Catalog) {
	if cat == nil {
		cat = &catalog.Catalog{}
	}
	s.current.Store(&loadedCatalog{catalog: cat, hash: cat.Tables.ContentHash().Hex()})
}

func (s *Server) loaded() *loadedCatalog {
	return s.current.Load()
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.router.Handle("/quote", rateLimitMiddleware(s.limiter)(http.HandlerFunc(s.handleQuote))).Methods(http.MethodPost)
	s.router.HandleFunc("/quotes", s.handleListQuotes).Methods(http.MethodGet)
	s.router.HandleFunc("/quotes/{id}", s.handleGetQuote).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	// Supporting endpoints
	s.router.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	s.router.HandleFunc("/catalog", s.handleCatalog).Methods(http.MethodGet)
	if s.metrics {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(recoveryMiddleware(s.logger))
}

// handleQuote handles POST /quote
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := generateRequestID()

	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		recordError()
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	loaded := s.loaded()
	env, err := envelope.New(req.CostInput, loaded.hash)
	if err != nil {
		recordError()
		s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	entry := envelope.CreateAuditEntry(env, requestID, clientIP(r), r.UserAgent())
	log := s.logger.With(zap.String("requestId", requestID), zap.String("input", env.ShortHash()))
	defer func() {
		entry.SetDuration(time.Since(start))
		_ = s.audit.Log(entry)
	}()

	// Execute engine (no cost logic here)
	result, err := s.engine.CalculateCost(
		env.Input,
		loaded.catalog.Tables,
		loaded.catalog.Registries,
		loaded.catalog.SnapshotAt(env.Input.HistoricalDate),
	)
	if err != nil {
		recordError()
		entry.MarkFailed(err)
		s.writeTypedError(w, err)
		return
	}
	recordQuote(result, time.Since(start).Seconds())
	log.Debug("quote priced",
		zap.Bool("historical", env.IsHistorical()),
		zap.Int("rows", len(result.Breakdown)),
		zap.Int("missing", len(result.MissingFreights)))

	resp := &QuoteResponse{Result: result}

	if req.Save {
		if s.store == nil {
			entry.MarkFailed(fmt.Errorf("quote store not configured"))
			s.writeError(w, "STORE_UNAVAILABLE", "quote store not configured", http.StatusServiceUnavailable)
			return
		}
		stored := storage.NewStoredQuote(result)
		stored.Metadata = map[string]string{"requestId": requestID, "inputHash": env.InputHash}
		if err := s.store.Save(r.Context(), stored); err != nil {
			log.Error("failed to save quote", zap.Error(err))
			entry.MarkFailed(err)
			s.writeTypedError(w, err)
			return
		}
		resp.QuoteID = stored.ID
	}

	resp.Metadata = ResponseMetadata{
		RequestID:     requestID,
		InputHash:     env.InputHash,
		CatalogHash:   loaded.hash,
		EngineVersion: s.version,
		Timestamp:     env.ReceivedAt,
		DurationMs:    time.Since(start).Milliseconds(),
	}

	s.writeJSON(w, resp, http.StatusOK)
}

// handleGetQuote handles GET /quotes/{id}
func (s *Server) handleGetQuote(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, "STORE_UNAVAILABLE", "quote store not configured", http.StatusServiceUnavailable)
		return
	}

	quote, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeTypedError(w, err)
		return
	}
	s.writeJSON(w, quote, http.StatusOK)
}

// handleListQuotes handles GET /quotes
func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, "STORE_UNAVAILABLE", "quote store not configured", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	filter := &storage.ListFilter{Agent: q.Get("agent")}
	if origin, transit, destination := q.Get("origin"), q.Get("transit"), q.Get("destination"); origin != "" || transit != "" || destination != "" {
		filter.Route = &storage.Route{Origin: origin, Transit: transit, Destination: destination}
	}
	if limit := q.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			s.writeError(w, "VALIDATION_ERROR", "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		filter.Limit = n
	}

	quotes, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.writeTypedError(w, err)
		return
	}
	s.writeJSON(w, QuoteListResponse{Quotes: quotes, Count: len(quotes)}, http.StatusOK)
}

// handleCatalog handles GET /catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	loaded := s.loaded()
	c := loaded.catalog
	dates := c.Dates()
	if dates == nil {
		dates = []string{}
	}
	s.writeJSON(w, CatalogResponse{
		Source:        c.Source,
		Hash:          loaded.hash,
		Tables:        c.Tables.Count(),
		SnapshotDates: dates,
		RailAgents:    c.Registries.RailAgents.Partners(),
		TruckAgents:   c.Registries.TruckAgents.Partners(),
		ShippingLines: c.Registries.ShippingLines.Partners(),
	}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "freight-cost",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}, status)
}

// writeTypedError maps a domain error type to an HTTP status
func (s *Server) writeTypedError(w http.ResponseWriter, err error) {
	t := errors.TypeOf(err)
	status := http.StatusInternalServerError
	switch t {
	case errors.TypeInput, errors.TypeParsing:
		status = http.StatusBadRequest
	case errors.TypeNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeError(w, string(t), err.Error(), status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

func generateRequestID() string {
	return fmt.Sprintf("quote-%d", time.Now().UnixNano())
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
