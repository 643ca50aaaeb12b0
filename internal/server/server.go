// Package server exposes the HTTP surface: the REST analysis API, the
// websocket session endpoint, health probes, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voxmate/voxmate/internal/app"
	"github.com/voxmate/voxmate/internal/archive"
	"github.com/voxmate/voxmate/internal/engine"
	"github.com/voxmate/voxmate/internal/explorer"
	"github.com/voxmate/voxmate/internal/game"
	"github.com/voxmate/voxmate/internal/health"
	"github.com/voxmate/voxmate/internal/observe"
)

// shutdownTimeout bounds graceful shutdown once the run context ends.
const shutdownTimeout = 10 * time.Second

// Server routes HTTP traffic to the analysis sources and spawns one app
// session per websocket connection.
type Server struct {
	logger   *slog.Logger
	metrics  *observe.Metrics
	analyzer engine.Analyzer // nil: analysis endpoints return 503
	stats    app.StatsSource // nil: master-moves endpoint returns 503
	store    archive.Store   // nil: recent-games endpoint returns 503
	checkers []health.Checker
	gameOpts []app.Option
}

// Option configures a [Server].
type Option func(*Server)

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics sets the metrics instance.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithAnalyzer wires the engine behind /api/top-moves and /api/evaluation.
func WithAnalyzer(a engine.Analyzer) Option {
	return func(s *Server) { s.analyzer = a }
}

// WithStats wires the master-game source behind /api/master-moves.
func WithStats(src app.StatsSource) Option {
	return func(s *Server) { s.stats = src }
}

// WithArchive wires the finished-game store behind /api/games.
func WithArchive(st archive.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithCheckers adds readiness checks to /readyz.
func WithCheckers(cs ...health.Checker) Option {
	return func(s *Server) { s.checkers = append(s.checkers, cs...) }
}

// WithGameOptions sets extra options applied to every websocket session.
func WithGameOptions(opts ...app.Option) Option {
	return func(s *Server) { s.gameOpts = append(s.gameOpts, opts...) }
}

// New creates a [Server].
func New(opts ...Option) *Server {
	s := &Server{logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Handler builds the full route table wrapped in the observability
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/top-moves", s.handleTopMoves)
	mux.HandleFunc("GET /api/evaluation", s.handleEvaluation)
	mux.HandleFunc("GET /api/master-moves", s.handleMasterMoves)
	mux.HandleFunc("GET /api/games", s.handleRecentGames)
	mux.HandleFunc("GET /ws", s.handleWS)

	health.New(s.checkers...).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(s.metrics)(mux)
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failed"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// parseFEN validates the fen query parameter against the move generator
// so malformed positions are rejected before reaching the engine.
func parseFEN(r *http.Request) (string, error) {
	fen := r.URL.Query().Get("fen")
	if fen == "" {
		return "", errors.New("missing fen parameter")
	}
	if _, err := game.NewPositionFEN(fen); err != nil {
		return "", err
	}
	return fen, nil
}

func intParam(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

type topMovesResponse struct {
	Moves []engine.MoveInfo `json:"moves"`
}

func (s *Server) handleTopMoves(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "no engine configured")
		return
	}
	fen, err := parseFEN(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	depth := engine.ClampDepth(intParam(r, "depth"))
	n := engine.ClampTopMoves(intParam(r, "num_moves"))

	moves, err := s.analyzer.TopMoves(r.Context(), fen, depth, n)
	if err != nil {
		s.logger.Error("top-moves analysis failed", "fen", fen, "err", err)
		writeError(w, http.StatusBadGateway, "analysis failed")
		return
	}
	if moves == nil {
		moves = []engine.MoveInfo{}
	}
	writeJSON(w, http.StatusOK, topMovesResponse{Moves: moves})
}

func (s *Server) handleEvaluation(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "no engine configured")
		return
	}
	fen, err := parseFEN(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	eval, err := s.analyzer.Evaluate(r.Context(), fen)
	if err != nil {
		s.logger.Error("evaluation failed", "fen", fen, "err", err)
		writeError(w, http.StatusBadGateway, "analysis failed")
		return
	}
	writeJSON(w, http.StatusOK, eval)
}

func (s *Server) handleMasterMoves(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "no master-game source configured")
		return
	}
	fen, err := parseFEN(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.stats.Lookup(r.Context(), fen)
	if err != nil {
		// A failed lookup degrades to an empty book rather than an error;
		// voice autoplay does the same.
		s.logger.Warn("master-moves lookup failed", "fen", fen, "err", err)
		res = &explorer.Result{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecentGames(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "no archive configured")
		return
	}
	limit := intParam(r, "limit")
	recs, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("recent games query failed", "err", err)
		writeError(w, http.StatusBadGateway, "archive query failed")
		return
	}
	if recs == nil {
		recs = []archive.GameRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
