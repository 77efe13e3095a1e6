package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/jaro/internal/catalog"
	"github.com/dshills/jaro/internal/config"
	"github.com/dshills/jaro/internal/fuzzy"
	"github.com/dshills/jaro/internal/jaro"
)

// ErrNoCandidates is reported by /v1/match when no catalog is configured.
var ErrNoCandidates = errors.New("no candidate catalog configured")

// parallelMin is the catalog size from which matching is spread across workers.
const parallelMin = 5000

// Server serves the HTTP API.
type Server struct {
	cfg     config.Server
	logger  *zap.Logger
	matcher *fuzzy.Matcher
	async   *fuzzy.AsyncMatcher
	catalog *catalog.Catalog
	limit   int
	started time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalog sets the candidates served by /v1/match.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) {
		s.catalog = c
	}
}

// WithWorkers sets the worker count for large catalogs. 0 uses all CPUs.
func WithWorkers(n int) Option {
	return func(s *Server) {
		s.async = fuzzy.NewAsyncMatcher(s.matcher, n)
	}
}

// WithDefaultLimit sets the result limit used when a request has none.
func WithDefaultLimit(n int) Option {
	return func(s *Server) {
		s.limit = n
	}
}

// New creates a server that ranks with matcher.
func New(cfg config.Server, matcher *fuzzy.Matcher, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  zap.NewNop(),
		matcher: matcher,
		limit:   10,
		started: time.Now(),
	}
	s.async = fuzzy.NewAsyncMatcher(matcher, 0)
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("server")
	return s
}

// Handler returns the HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/compare", s.handleCompareQuery)
	mux.HandleFunc("POST /v1/compare", s.handleCompareJSON)
	mux.HandleFunc("GET /v1/match", s.handleMatch)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return withRequestID(withAccessLog(s.logger, mux))
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully.
// A catalog with a backing file is watched for changes while serving.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like Run but accepts connections on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(s.logger),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if s.catalog != nil && s.catalog.Path() != "" {
		g.Go(func() error {
			// Serving continues without live reload.
			if err := s.catalog.Watch(gctx); err != nil {
				s.logger.Warn("catalog watch stopped", zap.Error(err))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type compareRequest struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Metric string `json:"metric,omitempty"`
}

type compareResponse struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	Metric string  `json:"metric"`
	Score  float64 `json:"score"`
}

type matchResult struct {
	Text   string  `json:"text"`
	Data   any     `json:"data,omitempty"`
	Score  float64 `json:"score"`
	Prefix int     `json:"prefix"`
}

type matchResponse struct {
	Query   string        `json:"query"`
	Results []matchResult `json:"results"`
}

type healthResponse struct {
	Status string `json:"status"`
	Items  int    `json:"items"`
	Uptime string `json:"uptime"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleCompareQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.compare(w, r, compareRequest{A: q.Get("a"), B: q.Get("b"), Metric: q.Get("metric")})
}

func (s *Server) handleCompareJSON(w http.ResponseWriter, r *http.Request) {
	// Four bytes per rune for each input plus room for the envelope.
	r.Body = http.MaxBytesReader(w, r.Body, int64(8*s.cfg.MaxInput+1024))

	var req compareRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	s.compare(w, r, req)
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request, req compareRequest) {
	if !s.checkLength(w, r, req.A, req.B) {
		return
	}

	opts := s.matcher.Options()
	metric := opts.Metric
	if req.Metric != "" {
		m, err := fuzzy.ParseMetric(req.Metric)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		metric = m
	}

	var score float64
	if metric == fuzzy.MetricJaro {
		score = jaro.String(req.A, req.B)
	} else {
		score = jaro.WinklerStringWith(req.A, req.B, opts.Params)
	}

	writeJSON(w, http.StatusOK, compareResponse{
		A:      req.A,
		B:      req.B,
		Metric: metric.String(),
		Score:  score,
	})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		writeError(w, r, http.StatusServiceUnavailable, ErrNoCandidates.Error())
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, r, http.StatusBadRequest, "missing query parameter q")
		return
	}
	if !s.checkLength(w, r, query) {
		return
	}

	limit := s.limit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items := s.catalog.Items()

	var results []fuzzy.Result
	var err error
	if len(items) >= parallelMin {
		results, err = s.async.MatchParallel(r.Context(), query, items, limit)
	} else {
		results, err = s.matcher.Match(query, items, limit)
	}
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		s.logger.Warn("match failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := matchResponse{Query: query, Results: make([]matchResult, len(results))}
	for i, res := range results {
		resp.Results[i] = matchResult{
			Text:   res.Item.Text,
			Data:   res.Item.Data,
			Score:  res.Score,
			Prefix: res.Prefix,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	items := 0
	if s.catalog != nil {
		items = s.catalog.Len()
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Items:  items,
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

// checkLength answers 413 when any input exceeds the configured rune limit.
func (s *Server) checkLength(w http.ResponseWriter, r *http.Request, inputs ...string) bool {
	for _, in := range inputs {
		if utf8.RuneCountInString(in) > s.cfg.MaxInput {
			writeError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("input longer than %d characters", s.cfg.MaxInput))
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: RequestID(r.Context())})
}
