// Package uci drives a UCI chess engine subprocess (Stockfish in
// production) and adapts it to the [engine.Analyzer] contract.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/voxmate/voxmate/internal/engine"
	"github.com/voxmate/voxmate/internal/game"
)

var _ engine.Analyzer = (*Engine)(nil)

// ErrNoMoves is returned when the engine reports no principal variation,
// which happens in checkmate and stalemate positions.
var ErrNoMoves = errors.New("uci: engine found no moves")

const quitTimeout = 3 * time.Second

// Engine is a running UCI engine process. Searches are serialized: the
// UCI protocol is stateful and one search owns the pipe at a time.
type Engine struct {
	logger  *slog.Logger
	threads int
	options []uciOption

	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithThreads sets the engine's Threads option. Defaults to 2.
func WithThreads(n int) Option {
	return func(e *Engine) { e.threads = n }
}

type uciOption struct {
	name, value string
}

// WithOption sets an arbitrary engine option ("Hash", "Skill Level", ...)
// during the handshake. May be given multiple times.
func WithOption(name, value string) Option {
	return func(e *Engine) { e.options = append(e.options, uciOption{name, value}) }
}

// New starts the engine binary at path and completes the UCI handshake.
// ctx bounds the handshake only, not the engine's lifetime; call
// [Engine.Close] to stop the process.
func New(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	e := &Engine{
		logger:  slog.Default(),
		threads: 2,
		lines:   make(chan string, 256),
	}
	for _, o := range opts {
		o(e)
	}
	if e.threads <= 0 {
		e.threads = 2
	}

	e.cmd = exec.Command(path)
	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stdin pipe: %w", err)
	}
	e.stdin = stdin
	stdout, err := e.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stdout pipe: %w", err)
	}
	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("uci: start %q: %w", path, err)
	}

	go func() {
		defer close(e.lines)
		sc := bufio.NewScanner(stdout)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			e.lines <- sc.Text()
		}
	}()

	if err := e.handshake(ctx); err != nil {
		_ = e.cmd.Process.Kill()
		return nil, err
	}
	e.logger.Info("uci engine ready", "path", path, "threads", e.threads)
	return e, nil
}

func (e *Engine) handshake(ctx context.Context) error {
	if err := e.send("uci"); err != nil {
		return err
	}
	if err := e.waitFor(ctx, "uciok"); err != nil {
		return fmt.Errorf("uci: handshake: %w", err)
	}
	if err := e.send("setoption name Threads value %d", e.threads); err != nil {
		return err
	}
	for _, opt := range e.options {
		if err := e.send("setoption name %s value %s", opt.name, opt.value); err != nil {
			return err
		}
	}
	return e.Ping(ctx)
}

// Ping round-trips an isready/readyok pair. Used as the health probe.
func (e *Engine) Ping(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.send("isready"); err != nil {
		return err
	}
	return e.waitFor(ctx, "readyok")
}

// TopMoves runs a MultiPV search and returns the best candidates,
// best-first. depth and n are clamped to the engine package bounds.
func (e *Engine) TopMoves(ctx context.Context, fen string, depth, n int) ([]engine.MoveInfo, error) {
	depth = engine.ClampDepth(depth)
	n = engine.ClampTopMoves(n)

	pos, err := game.NewPositionFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("uci: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.send("setoption name MultiPV value %d", n); err != nil {
		return nil, err
	}
	if err := e.send("position fen %s", fen); err != nil {
		return nil, err
	}
	if err := e.send("go depth %d", depth); err != nil {
		return nil, err
	}

	best, err := e.collect(ctx)
	if err != nil {
		return nil, err
	}
	if len(best) == 0 {
		return nil, ErrNoMoves
	}

	pvs := make([]int, 0, len(best))
	for k := range best {
		pvs = append(pvs, k)
	}
	sort.Ints(pvs)

	moves := make([]engine.MoveInfo, 0, len(pvs))
	for _, k := range pvs {
		info := best[k]
		uciMove := info.PV[0]
		c, err := pos.Peek(uciMove)
		if err != nil {
			e.logger.Warn("engine proposed unparseable move", "move", uciMove, "err", err)
			continue
		}
		m := engine.MoveInfo{SAN: c.SAN, UCI: uciMove}
		if info.HasMate {
			m.Evaluation = float64(info.Mate)
			m.Kind = engine.KindMate
		} else {
			m.Evaluation = float64(info.ScoreCP) / 100
			m.Kind = engine.KindCentipawn
		}
		moves = append(moves, m)
	}
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	return moves, nil
}

// Evaluate scores the position via a single-PV search at default depth.
func (e *Engine) Evaluate(ctx context.Context, fen string) (engine.Eval, error) {
	moves, err := e.TopMoves(ctx, fen, engine.DefaultDepth, 1)
	if err != nil {
		return engine.Eval{}, err
	}
	return engine.Eval{Value: moves[0].Evaluation, Kind: moves[0].Kind}, nil
}

// collect reads search output until bestmove, keeping the last scored
// info line per PV slot. On ctx cancellation it issues "stop" and drains
// to the bestmove so the pipe stays usable for the next search.
func (e *Engine) collect(ctx context.Context) (map[int]Info, error) {
	best := make(map[int]Info)
	for {
		select {
		case <-ctx.Done():
			if err := e.send("stop"); err != nil {
				return nil, err
			}
			e.drainToBestmove()
			return nil, ctx.Err()
		case line, ok := <-e.lines:
			if !ok {
				return nil, errors.New("uci: engine exited mid-search")
			}
			if strings.HasPrefix(line, "bestmove") {
				return best, nil
			}
			if info, ok := ParseInfo(line); ok {
				best[info.MultiPV] = info
			}
		}
	}
}

func (e *Engine) drainToBestmove() {
	for line := range e.lines {
		if strings.HasPrefix(line, "bestmove") {
			return
		}
	}
}

// waitFor drains lines until the wanted token appears.
func (e *Engine) waitFor(ctx context.Context, token string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-e.lines:
			if !ok {
				return errors.New("uci: engine exited")
			}
			if strings.TrimSpace(line) == token {
				return nil
			}
		}
	}
}

func (e *Engine) send(format string, args ...any) error {
	if _, err := fmt.Fprintf(e.stdin, format+"\n", args...); err != nil {
		return fmt.Errorf("uci: write: %w", err)
	}
	return nil
}

// Close asks the engine to quit and kills it if it lingers.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_ = e.send("quit")
	done := make(chan error, 1)
	go func() { done <- e.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(quitTimeout):
		_ = e.cmd.Process.Kill()
		return <-done
	}
}
