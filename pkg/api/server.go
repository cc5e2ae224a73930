package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/catalog"
	"github.com/rmax-ai/collabgraph/pkg/coauthor"
	"github.com/rmax-ai/collabgraph/pkg/engine"
	"github.com/rmax-ai/collabgraph/pkg/filter"
	"github.com/rmax-ai/collabgraph/pkg/logger"
	"github.com/rmax-ai/collabgraph/pkg/render"
)

// Context keys
type contextKey string

const traceIDKey contextKey = "trace_id"

const (
	defaultSongLimit     = 10
	defaultCoauthorCount = 5
)

// Interfaces for dependencies to enable mocking

type CatalogInterface interface {
	FetchArtist(ctx context.Context, name string) (artist.Info, error)
	FetchSongsWithCoauthors(ctx context.Context, name string) ([]artist.Song, error)
}

type ExpanderInterface interface {
	Expand(ctx context.Context, req engine.Request) (*engine.Result, error)
}

// Defaults are applied to graph requests that omit depth or breadth.
type Defaults struct {
	MaxDepth int
	Breadth  int
}

// Server encapsulates the HTTP API server
type Server struct {
	catalog  CatalogInterface
	expander ExpanderInterface
	defaults Defaults
	presets  map[string]map[string]string
	log      *zap.Logger
	server   *http.Server
}

// NewServer creates a new API server instance
func NewServer(cat CatalogInterface, exp ExpanderInterface, defaults Defaults, addr string, log *zap.Logger) *Server {
	s := &Server{
		catalog:  cat,
		expander: exp,
		defaults: defaults,
		log:      logger.OrNop(log),
	}

	mux := http.NewServeMux()

	// Register routes
	mux.HandleFunc("/v1/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/artists", s.handleArtist)
	mux.HandleFunc("/v1/songs", s.handleSongs)
	mux.HandleFunc("/v1/coauthors", s.handleCoauthors)
	mux.HandleFunc("/v1/graph", s.handleGraph)
	mux.HandleFunc("/v1/filters", s.handleFilters)

	// Middleware: Logging, Panic Recovery, Security Headers
	handler := s.withLogging(s.withRecovery(withSecureHeaders(mux)))

	// Use default port if addr is empty
	if addr == "" {
		addr = "127.0.0.1:8091"
	}

	s.server = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       15 * time.Second,
	}

	return s
}

// SetPresets exposes named filter presets to graph requests (?preset=name).
func (s *Server) SetPresets(presets map[string]map[string]string) {
	s.presets = presets
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start runs the HTTP server (blocking)
func (s *Server) Start() error {
	s.log.Info("server_starting", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("server_stopping")
	return s.server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleArtist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing_name", "")
		return
	}

	info, err := s.catalog.FetchArtist(r.Context(), name)
	if err != nil {
		s.catalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSongs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("artist"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing_artist", "")
		return
	}
	limit, err := intParam(q.Get("limit"), defaultSongLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", err.Error())
		return
	}

	songs, err := s.catalog.FetchSongsWithCoauthors(r.Context(), name)
	if err != nil {
		s.catalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SongsResponse{
		Artist: name,
		Total:  len(songs),
		Songs:  coauthor.TopSongs(songs, limit),
	})
}

func (s *Server) handleCoauthors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	q := r.URL.Query()
	name := strings.TrimSpace(q.Get("artist"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "missing_artist", "")
		return
	}
	n, err := intParam(q.Get("n"), defaultCoauthorCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_n", err.Error())
		return
	}

	songs, err := s.catalog.FetchSongsWithCoauthors(r.Context(), name)
	if err != nil {
		s.catalogError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CoauthorsResponse{Artist: name, Coauthors: coauthor.RankTopN(songs, n)})
}

// handleGraph expands the seed and renders the result as JSON, HTML or CSV.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	q := r.URL.Query()

	req := engine.Request{Seed: strings.TrimSpace(q.Get("seed"))}
	if req.Seed == "" {
		writeError(w, http.StatusBadRequest, "missing_seed", "")
		return
	}
	var err error
	if req.MaxDepth, err = intParam(q.Get("depth"), s.defaults.MaxDepth); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_depth", err.Error())
		return
	}
	if req.Breadth, err = intParam(q.Get("breadth"), s.defaults.Breadth); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_breadth", err.Error())
		return
	}
	format, err := render.ParseFormat(q.Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}
	if req.Filters, err = s.filtersFromQuery(q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := s.expander.Expand(r.Context(), req)
	if err != nil {
		s.catalogError(w, r, err)
		return
	}

	if format != render.FormatJSON {
		w.Header().Set("Content-Type", format.ContentType())
		w.WriteHeader(http.StatusOK)
		page := render.Page{Title: fmt.Sprintf("%s collaboration network", res.SeedInfo.Name), Filters: req.Filters.String()}
		if err := render.Write(w, res.Graph, format, page); err != nil {
			s.log.Error("failed_to_render_graph", zap.String("trace_id", getTraceID(r.Context())), zap.Error(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, GraphResponse{
		Seed:     artist.Key(req.Seed),
		SeedInfo: res.SeedInfo,
		MaxDepth: req.MaxDepth,
		Breadth:  req.Breadth,
		Filters:  req.Filters.String(),
		Graph:    res.Graph.Snapshot(),
		Skipped:  res.Skipped,
	})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, FiltersResponse{Filters: filter.Descriptors(), Presets: s.presets})
}

// filtersFromQuery starts from the named preset, if any, and lets explicit
// filter parameters override it.
func (s *Server) filtersFromQuery(q map[string][]string) (filter.Set, error) {
	values := make(map[string]string)
	if name := first(q["preset"]); name != "" {
		preset, ok := s.presets[name]
		if !ok {
			return nil, errors.Newf("unknown filter preset %q", name)
		}
		for k, v := range preset {
			values[k] = v
		}
	}
	for _, d := range filter.Descriptors() {
		if v, ok := q[string(d.Kind)]; ok {
			values[string(d.Kind)] = first(v)
		}
	}
	return filter.FromValues(values)
}

// catalogError maps catalog and expansion failures to responses.
func (s *Server) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	traceID := getTraceID(r.Context())
	switch {
	case errors.Is(err, catalog.ErrArtistNotFound):
		writeError(w, http.StatusNotFound, "artist_not_found", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.log.Info("request_canceled", zap.String("trace_id", traceID), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "request_canceled", "")
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		s.log.Warn("catalog_unavailable", zap.String("trace_id", traceID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "catalog_unavailable", err.Error())
	default:
		s.log.Error("catalog_request_failed", zap.String("trace_id", traceID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "catalog_error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Error: code, Detail: detail})
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Newf("%q is not an integer", raw)
	}
	if v < 0 {
		return 0, errors.Newf("%d must not be negative", v)
	}
	return v, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// Middleware: Panic Recovery
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic_recovered", zap.Any("error", err), zap.String("path", r.URL.Path))
				writeError(w, http.StatusInternalServerError, "internal_server_error", "")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Middleware: Request Logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 1. Extract or Generate Trace ID
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = generateTraceID()
		}

		// 2. Inject into Context
		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		r = r.WithContext(ctx)

		// Wrap writer to capture status code
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		// 3. Set response header
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(ww, r)

		s.log.Info("http_request",
			zap.String("trace_id", traceID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func generateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Fallback if random fails (unlikely)
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

func getTraceID(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok {
		return v
	}
	return ""
}

// statusWriter captures HTTP status code
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware: Secure Headers
func withSecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:;")
		w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-XSS-Protection", "1; mode=block")

		next.ServeHTTP(w, r)
	})
}
