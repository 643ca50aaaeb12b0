// Package app orchestrates one voice-controlled game session: transcript
// correction, intent classification, move resolution, board mutation,
// per-position analysis fetches, and autoplay.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/voxmate/voxmate/internal/archive"
	"github.com/voxmate/voxmate/internal/autoplay"
	"github.com/voxmate/voxmate/internal/engine"
	"github.com/voxmate/voxmate/internal/explorer"
	"github.com/voxmate/voxmate/internal/game"
	"github.com/voxmate/voxmate/internal/intent"
	"github.com/voxmate/voxmate/internal/observe"
	"github.com/voxmate/voxmate/internal/resolve"
	"github.com/voxmate/voxmate/internal/speech"
	"github.com/voxmate/voxmate/internal/transcript"
)

// StatsSource is the master-game statistics capability the session
// consumes. *explorer.Client satisfies it.
type StatsSource interface {
	Lookup(ctx context.Context, fen string) (*explorer.Result, error)
}

// settleTimeout bounds how long autoplay waits for the per-position
// fetches before treating unsettled sources as empty.
const settleTimeout = 15 * time.Second

// analysis holds the fetch results for one position. Fields other than
// done are written once by the fetch goroutine before done is closed.
type analysis struct {
	fen  string
	done chan struct{}

	engMoves []engine.MoveInfo
	book     *explorer.Result
}

// Game is a single voice-controlled game session. One transcript or
// command is processed to completion before the next is accepted; the
// speech [speech.Gate] enforces that timeline.
type Game struct {
	logger    *slog.Logger
	metrics   *observe.Metrics
	corrector *transcript.Corrector
	selector  *autoplay.Selector
	analyzer  engine.Analyzer // nil: engine tier and analysis disabled
	stats     StatsSource     // nil: book tier disabled
	store     archive.Store   // nil: no archiving
	depth     int
	multipv   int

	pos  *game.Position
	sess *autoplay.Session
	gate *speech.Gate

	// Session defaults re-applied on board reset.
	defaultStrength autoplay.Strength
	defaultMuted    bool

	mu          sync.Mutex
	paused      bool
	flipped     bool
	helpVisible bool
	darkMode    bool
	startedAt   time.Time
	archived    bool
	cur         *analysis
	fetchCancel context.CancelFunc
}

// Option configures a [Game].
type Option func(*Game)

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(g *Game) { g.logger = l }
}

// WithMetrics sets the metrics instance. Defaults to [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Game) { g.metrics = m }
}

// WithAnalyzer wires the engine analysis source.
func WithAnalyzer(a engine.Analyzer) Option {
	return func(g *Game) { g.analyzer = a }
}

// WithStats wires the master-game statistics source.
func WithStats(s StatsSource) Option {
	return func(g *Game) { g.stats = s }
}

// WithArchive wires the finished-game store.
func WithArchive(s archive.Store) Option {
	return func(g *Game) { g.store = s }
}

// WithSelector overrides the autoplay selector (tests inject a seeded one).
func WithSelector(s *autoplay.Selector) Option {
	return func(g *Game) { g.selector = s }
}

// WithSearch sets the engine search depth and candidate count.
func WithSearch(depth, multipv int) Option {
	return func(g *Game) {
		g.depth = engine.ClampDepth(depth)
		g.multipv = engine.ClampTopMoves(multipv)
	}
}

// WithAnnounceMuted sets whether sessions start with spoken move
// announcements muted.
func WithAnnounceMuted(muted bool) Option {
	return func(g *Game) {
		g.defaultMuted = muted
		g.sess.SetAnnounceMuted(muted)
	}
}

// WithDefaultStrength sets the autoplay strength new games start at.
func WithDefaultStrength(s autoplay.Strength) Option {
	return func(g *Game) {
		if s.IsValid() {
			g.defaultStrength = s
			_ = g.sess.SetStrength(s)
		}
	}
}

// New creates a session at the starting position.
func New(opts ...Option) *Game {
	g := &Game{
		logger:    slog.Default(),
		corrector: transcript.New(),
		selector:  autoplay.NewSelector(),
		depth:     engine.DefaultDepth,
		multipv:   engine.DefaultTopMoves,
		pos:       game.NewPosition(),
		sess:      autoplay.NewSession(),
		gate:      speech.NewGate(),
		startedAt: time.Now().UTC(),

		defaultStrength: autoplay.DefaultStrength,
	}
	for _, o := range opts {
		o(g)
	}
	if g.metrics == nil {
		g.metrics = observe.DefaultMetrics()
	}
	return g
}

// Gate exposes the listening gate so the transport layer can arm
// listening on connect and mark speaking windows.
func (g *Game) Gate() *speech.Gate { return g.gate }

// FEN returns the current board state.
func (g *Game) FEN() string { return g.pos.FEN() }

// Start arms the fetch pipeline for the initial position and begins
// listening. Call once after construction.
func (g *Game) Start(ctx context.Context) {
	g.restartFetch(ctx)
	g.gate.StartListening()
}

// Close cancels any in-flight fetch.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchCancel != nil {
		g.fetchCancel()
	}
}

// HandleTranscript runs one raw transcript through the pipeline and
// returns the events to deliver. Transcripts arriving outside the
// Listening state are dropped, not buffered.
func (g *Game) HandleTranscript(ctx context.Context, raw string) []Event {
	if !g.gate.Accept() {
		g.logger.Debug("transcript dropped", "state", g.gate.State().String(), "text", raw)
		return nil
	}
	defer func() {
		g.gate.FinishProcessing()
		g.gate.StartListening()
	}()

	start := time.Now()
	corrected := g.corrector.Correct(raw)
	it := intent.Classify(corrected, g.isPaused())
	g.logger.Info("utterance", "raw", raw, "corrected", corrected, "intent", it.Type.String())

	var events []Event
	switch it.Type {
	case intent.TypeSystemCommand:
		g.metrics.RecordUtterance(ctx, "command")
		events = g.handleCommands(ctx, it.Commands, corrected)
	case intent.TypeMoveExpression:
		g.metrics.RecordUtterance(ctx, "move")
		events = g.handleMove(ctx, it.Text, raw)
	default:
		g.metrics.RecordUtterance(ctx, "unrecognized")
		events = []Event{errText(fmt.Sprintf("I heard %q and couldn't make sense of it. Try a move like \"knight f3\" or a command like \"reset the board\".", raw))}
	}

	g.metrics.UtteranceDuration.Record(ctx, time.Since(start).Seconds())
	return events
}

// handleMove resolves a move expression against the live position.
func (g *Game) handleMove(ctx context.Context, expr, heard string) []Event {
	if g.pos.IsGameOver() {
		return []Event{info("The game is over. Say \"reset the board\" to start a new one.")}
	}

	r := resolve.Resolve(expr, g.pos, g.bestEngineSAN())
	switch r.Type {
	case resolve.Resolved:
		g.metrics.RecordResolution(ctx, "resolved")
		c, err := g.pos.ApplySAN(r.Move.SAN)
		if err != nil {
			// The resolver probed this exact move; failure here means the
			// board changed underneath us, which the gate should prevent.
			g.logger.Error("resolved move failed to apply", "san", r.Move.SAN, "err", err)
			return []Event{errText("Something went wrong applying that move.")}
		}
		return g.afterMove(ctx, c, "")

	case resolve.NeedsDisambiguation:
		g.metrics.RecordResolution(ctx, "disambiguation")
		return []Event{prompt(r.Prompt)}

	case resolve.NoLegalMove:
		g.metrics.RecordResolution(ctx, "no_legal_move")
		return []Event{errText(fmt.Sprintf("I heard %q, but %s. Try something like \"knight f3\".", heard, r.Reason))}

	case resolve.Resigned:
		g.metrics.RecordResolution(ctx, "resigned")
		g.pos.Resign(g.pos.Turn())
		return g.finishGame("resignation accepted")

	default: // NotAMove
		g.metrics.RecordResolution(ctx, "not_a_move")
		return []Event{errText(fmt.Sprintf("I heard %q, which doesn't look like a move. Try something like \"e4\" or \"rook takes d5\".", heard))}
	}
}

// afterMove emits board/speak events for an applied move, restarts the
// per-position fetches, and lets autoplay respond when it is the
// engine's turn.
func (g *Game) afterMove(ctx context.Context, c game.MoveCandidate, source string) []Event {
	events := []Event{{Type: EventBoard, FEN: g.pos.FEN(), SAN: c.SAN, Source: source}}
	if !g.sess.AnnounceMuted() {
		events = append(events, speak(speech.Vocalize(c.SAN)))
	}

	if g.pos.IsGameOver() {
		return append(events, g.finishGame("")...)
	}

	g.restartFetch(ctx)
	if g.enginesTurn() {
		events = append(events, g.autoplayMove(ctx)...)
	}
	return events
}

// autoplayMove waits for the current position's sources to settle, asks
// the selector for a move, and applies it. A nil pick is "no moves
// available", not an error.
func (g *Game) autoplayMove(ctx context.Context) []Event {
	a := g.currentAnalysis()
	if a == nil {
		return nil
	}
	select {
	case <-a.done:
	case <-time.After(settleTimeout):
		g.logger.Warn("analysis sources did not settle in time", "fen", a.fen)
	case <-ctx.Done():
		return nil
	}

	book, games := bookInputs(a.book)
	eng := engineInputs(a.engMoves)

	pick := g.selector.SelectMove(g.sess, book, games, eng)
	if pick == nil {
		return []Event{info("No moves available for the engine here.")}
	}
	g.metrics.RecordAutoplayPick(ctx, pick.Source.String())

	c, err := g.pos.ApplySAN(pick.SAN)
	if err != nil {
		g.logger.Error("autoplay pick failed to apply", "san", pick.SAN, "err", err)
		return []Event{errText("The engine picked a move that couldn't be applied.")}
	}

	var events []Event
	if pick.JustLeftBook && !g.sess.AnnounceMuted() {
		events = append(events, speak("We are out of the opening book."))
	}
	if pick.Game != nil {
		events = append(events, info(fmt.Sprintf("Following %s vs %s (%d).",
			pick.Game.White, pick.Game.Black, pick.Game.Year)))
	}
	return append(events, g.afterMove(ctx, c, pick.Source.String())...)
}

// finishGame emits the game-over events and archives the finished game.
func (g *Game) finishGame(note string) []Event {
	outcome := g.pos.Outcome()
	g.logger.Info("game over", "outcome", outcome, "moves", g.pos.MoveCount())

	g.archiveGame(outcome)

	text := "Game over: " + outcome + "."
	if note != "" {
		text = strings.ToUpper(note[:1]) + note[1:] + ". " + text
	}
	events := []Event{{Type: EventGameOver, FEN: g.pos.FEN(), Outcome: outcome}}
	if !g.sess.AnnounceMuted() {
		events = append(events, speak(text))
	}
	return events
}

func (g *Game) archiveGame(outcome string) {
	if g.store == nil {
		return
	}
	g.mu.Lock()
	if g.archived {
		g.mu.Unlock()
		return
	}
	g.archived = true
	startedAt := g.startedAt
	g.mu.Unlock()

	result, method := outcome, ""
	if i := strings.Index(outcome, " by "); i >= 0 {
		result, method = outcome[:i], outcome[i+4:]
	}
	rec := &archive.GameRecord{
		StartedAt:   startedAt,
		Outcome:     result,
		Method:      method,
		PGN:         g.pos.PGN(),
		FinalFEN:    g.pos.FEN(),
		MoveCount:   g.pos.MoveCount(),
		EnginePlays: g.sess.EnginePlays().String(),
		Strength:    int(g.sess.Strength()),
		Grandmaster: g.sess.Grandmaster(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.store.Save(ctx, rec); err != nil {
		g.logger.Error("archiving finished game failed", "err", err)
		g.metrics.RecordSourceError(ctx, "archive")
	}
}

// restartFetch cancels the previous position's in-flight fetches and
// starts engine + explorer lookups for the current position. Stale
// responses for superseded positions die with their context.
func (g *Game) restartFetch(ctx context.Context) {
	fen := g.pos.FEN()

	g.mu.Lock()
	if g.fetchCancel != nil {
		g.fetchCancel()
	}
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	g.fetchCancel = cancel
	a := &analysis{fen: fen, done: make(chan struct{})}
	g.cur = a
	g.mu.Unlock()

	g.sess.ClearBookProbed()

	go g.fetch(fetchCtx, a)
}

func (g *Game) fetch(ctx context.Context, a *analysis) {
	defer close(a.done)

	eg, ctx := errgroup.WithContext(ctx)

	if g.analyzer != nil {
		eg.Go(func() error {
			start := time.Now()
			moves, err := g.analyzer.TopMoves(ctx, a.fen, g.depth, g.multipv)
			g.metrics.EngineDuration.Record(ctx, time.Since(start).Seconds())
			if err != nil {
				// An errored tier is empty data for this position.
				g.logger.Warn("engine analysis failed", "fen", a.fen, "err", err)
				g.metrics.RecordSourceError(ctx, "engine")
				return nil
			}
			a.engMoves = moves
			return nil
		})
	}

	if g.stats != nil {
		eg.Go(func() error {
			start := time.Now()
			res, err := g.stats.Lookup(ctx, a.fen)
			g.metrics.ExplorerDuration.Record(ctx, time.Since(start).Seconds())
			if err != nil {
				g.logger.Warn("explorer lookup failed", "fen", a.fen, "err", err)
				g.metrics.RecordSourceError(ctx, "explorer")
				res = &explorer.Result{}
			}
			a.book = res
			// The book source has settled for this position, success or
			// not; the out-of-book notice may now fire.
			g.sess.MarkBookProbed()
			return nil
		})
	} else {
		g.sess.MarkBookProbed()
	}

	_ = eg.Wait()
}

func (g *Game) currentAnalysis() *analysis {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cur
}

// bestEngineSAN returns the settled engine best move for the current
// position, or empty while the fetch is still in flight.
func (g *Game) bestEngineSAN() string {
	a := g.currentAnalysis()
	if a == nil {
		return ""
	}
	select {
	case <-a.done:
		if len(a.engMoves) > 0 {
			return a.engMoves[0].SAN
		}
	default:
	}
	return ""
}

// settledAnalysis blocks until the current position's sources settle.
func (g *Game) settledAnalysis(ctx context.Context) *analysis {
	a := g.currentAnalysis()
	if a == nil {
		return nil
	}
	select {
	case <-a.done:
		return a
	case <-time.After(settleTimeout):
		return a
	case <-ctx.Done():
		return a
	}
}

func (g *Game) enginesTurn() bool {
	switch g.sess.EnginePlays() {
	case autoplay.PlaysWhite:
		return g.pos.Turn() == game.White
	case autoplay.PlaysBlack:
		return g.pos.Turn() == game.Black
	}
	return false
}

func (g *Game) isPaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// bookInputs converts an explorer result to selector book inputs.
func bookInputs(res *explorer.Result) ([]autoplay.BookMove, []autoplay.TopGame) {
	if res == nil || !res.Found {
		return nil, nil
	}
	book := make([]autoplay.BookMove, 0, len(res.Moves))
	for _, m := range res.Moves {
		book = append(book, autoplay.BookMove{SAN: m.SAN, Total: m.Total})
	}
	games := make([]autoplay.TopGame, 0, len(res.TopGames))
	for _, tg := range res.TopGames {
		games = append(games, autoplay.TopGame{
			SAN:         tg.SAN,
			White:       tg.WhiteName,
			Black:       tg.BlackName,
			WhiteRating: tg.WhiteRating,
			BlackRating: tg.BlackRating,
			Year:        tg.Year,
			Winner:      tg.Winner,
		})
	}
	return book, games
}

// engineInputs converts engine analysis to selector inputs.
func engineInputs(moves []engine.MoveInfo) []autoplay.EngineMove {
	eng := make([]autoplay.EngineMove, 0, len(moves))
	for _, m := range moves {
		eng = append(eng, autoplay.EngineMove{
			SAN:        m.SAN,
			Evaluation: m.Evaluation,
			Kind:       string(m.Kind),
		})
	}
	return eng
}
