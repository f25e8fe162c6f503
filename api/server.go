// Package api provides the HTTP API for tickerscan.
//
// It exposes research scans over REST and streams pipeline progress to
// WebSocket subscribers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/tickerscan/internal/config"
	"github.com/seenimoa/tickerscan/internal/infra"
	"github.com/seenimoa/tickerscan/internal/report"
	"github.com/seenimoa/tickerscan/internal/research"
	"github.com/seenimoa/tickerscan/pkg/models"
	"github.com/seenimoa/tickerscan/pkg/utils"
	"github.com/seenimoa/tickerscan/web"
)

// ScanTimeout bounds a single research scan started by the API.
const ScanTimeout = 5 * time.Minute

// Scanner runs research requests. *research.Engine satisfies it.
type Scanner interface {
	Scan(ctx context.Context, req models.ResearchRequest, listen research.Listener) (*models.CompositeReport, error)
	Providers() []models.ProviderID
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	scanner Scanner
	cache   *infra.Cache[*models.CompositeReport]
	flight  singleflight.Group
	wsHub   *WSHub
	logger  *zap.Logger
	version string
	serveUI bool // when true, serve the embedded dashboard at /
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, scanner Scanner, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		scanner: scanner,
		cache:   infra.NewCache[*models.CompositeReport](time.Duration(cfg.API.CacheTTL) * time.Second),
		wsHub:   NewWSHub(logger),
		logger:  logger.With(zap.String("component", "api")),
		version: "dev",
		serveUI: true,
	}
	s.router = s.buildRouter()
	return s
}

// SetVersion sets the version reported by /health.
func (s *Server) SetVersion(v string) {
	s.version = v
}

// SetServeUI controls whether the embedded dashboard is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe starts the HTTP server and shuts it down gracefully
// once ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.API.Host, strconv.Itoa(s.cfg.API.Port))
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: ScanTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/research", s.handleResearch)
		r.Get("/research/{symbol}", s.handleCachedResearch)

		r.Get("/config/keys", s.handleGetConfigKeys)

		r.Get("/ws", s.handleWebSocket)
	})

	if s.serveUI {
		r.Handle("/*", http.FileServerFS(web.DistFS()))
	}
	return r
}

// requestLogger logs one line per request through zap.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

// ════════════════════════════════════════════════════════════════════
// Request / Response types
// ════════════════════════════════════════════════════════════════════

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ResearchRequest is the body for POST /api/v1/research. Credentials
// always come from the server configuration.
type ResearchRequest struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"company_name,omitempty"`
	Sector      string  `json:"sector,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Refresh     bool    `json:"refresh,omitempty"` // bypass the report cache
}

// ════════════════════════════════════════════════════════════════════
// Handlers
// ════════════════════════════════════════════════════════════════════

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":     "ok",
			"version":    s.version,
			"providers":  s.scanner.Providers(),
			"ws_clients": s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var body ResearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	format, err := formatParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := models.NewResearchRequest(body.Symbol, body.CompanyName, body.Sector, body.Price, s.cfg.Credentials())
	if err := utils.ValidateSymbol(req.Symbol); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !body.Refresh {
		if cached, ok := s.cache.Get(req.Symbol); ok {
			w.Header().Set("X-Cache", "HIT")
			s.writeReport(w, cached, format)
			return
		}
	}

	rep, err := s.scan(req)
	if err != nil {
		if errors.Is(err, research.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("scan failed", zap.String("symbol", req.Symbol), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	w.Header().Set("X-Cache", "MISS")
	s.writeReport(w, rep, format)
}

// scan runs one research request, sharing the result between concurrent
// callers for the same symbol. The scan is detached from any single
// caller so one client disconnecting does not fail the others.
func (s *Server) scan(req models.ResearchRequest) (*models.CompositeReport, error) {
	v, err, _ := s.flight.Do(req.Symbol, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), ScanTimeout)
		defer cancel()

		rep, err := s.scanner.Scan(ctx, req, s.broadcastEvent)
		if err != nil {
			return nil, err
		}
		s.cache.Set(req.Symbol, rep)
		return rep, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.CompositeReport), nil
}

func (s *Server) broadcastEvent(ev research.Event) {
	s.wsHub.Broadcast(WSMessage{Type: "research." + string(ev.Type), Data: ev})
}

func (s *Server) handleCachedResearch(w http.ResponseWriter, r *http.Request) {
	symbol := utils.NormalizeSymbol(chi.URLParam(r, "symbol"))
	rep, ok := s.cache.Get(symbol)
	if !ok {
		writeError(w, http.StatusNotFound, "no cached report for "+symbol)
		return
	}
	format, err := formatParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeReport(w, rep, format)
}

// handleGetConfigKeys returns the masked status of every provider key.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

// formatParam reads ?format=, defaulting to the JSON envelope.
func formatParam(r *http.Request) (report.ReportFormat, error) {
	f := r.URL.Query().Get("format")
	if f == "" {
		return report.FormatJSON, nil
	}
	return report.ParseFormat(f)
}

func (s *Server) writeReport(w http.ResponseWriter, rep *models.CompositeReport, format report.ReportFormat) {
	if format == report.FormatJSON {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep})
		return
	}
	out, err := report.Render(rep, format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch format {
	case report.FormatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case report.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   strings.TrimSpace(msg),
	})
}
