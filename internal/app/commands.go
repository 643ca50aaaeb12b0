package app

import (
	"context"
	"fmt"
	"time"

	"github.com/voxmate/voxmate/internal/autoplay"
	"github.com/voxmate/voxmate/internal/engine"
	"github.com/voxmate/voxmate/internal/game"
	"github.com/voxmate/voxmate/internal/intent"
	"github.com/voxmate/voxmate/internal/speech"
)

// handleCommands executes the classified command kinds in order.
// Compound utterances ("grandmaster plays white") arrive as multiple
// kinds and each contributes its events.
func (g *Game) handleCommands(ctx context.Context, kinds []intent.Kind, heard string) []Event {
	var events []Event
	for _, k := range kinds {
		events = append(events, g.handleCommand(ctx, k, heard)...)
	}
	return events
}

func (g *Game) handleCommand(ctx context.Context, k intent.Kind, heard string) []Event {
	switch k {
	case intent.Reset:
		return g.cmdReset(ctx)
	case intent.Flip:
		return g.cmdFlip()
	case intent.Undo:
		return g.cmdUndo(ctx)
	case intent.SoundOn:
		g.sess.SetAnnounceMuted(false)
		return []Event{speak("Sound on."), g.stateEvent()}
	case intent.SoundOff:
		g.sess.SetAnnounceMuted(true)
		return []Event{g.stateEvent()}
	case intent.Pause:
		g.setPaused(true)
		return []Event{info("Paused. Say \"resume listening\" when you are ready."), g.stateEvent()}
	case intent.Resume:
		g.setPaused(false)
		return []Event{g.speakUnlessMuted("Listening."), g.stateEvent()}
	case intent.ShowHelp:
		g.setFlag(&g.helpVisible, true)
		return []Event{g.stateEvent()}
	case intent.HideHelp:
		g.setFlag(&g.helpVisible, false)
		return []Event{g.stateEvent()}
	case intent.DarkMode:
		g.setFlag(&g.darkMode, true)
		return []Event{g.stateEvent()}
	case intent.LightMode:
		g.setFlag(&g.darkMode, false)
		return []Event{g.stateEvent()}
	case intent.EngineModeWhite:
		return g.cmdEngineMode(ctx, autoplay.PlaysWhite)
	case intent.EngineModeBlack:
		return g.cmdEngineMode(ctx, autoplay.PlaysBlack)
	case intent.AnalysisMode:
		g.sess.SetEnginePlays(autoplay.PlaysNone)
		return []Event{g.speakUnlessMuted("Analysis mode. You play both sides."), g.stateEvent()}
	case intent.GrandmasterToggle:
		on := g.sess.ToggleGrandmaster()
		return g.grandmasterEvents(on)
	case intent.GrandmasterOn:
		g.sess.SetGrandmaster(true)
		return g.grandmasterEvents(true)
	case intent.GrandmasterOff:
		g.sess.SetGrandmaster(false)
		return g.grandmasterEvents(false)
	case intent.TopMove:
		return g.cmdTopMove(ctx)
	case intent.MasterMove:
		return g.cmdMasterMove(ctx)
	case intent.Resign:
		return g.cmdResign()
	}
	g.logger.Warn("unhandled command kind", "kind", string(k), "heard", heard)
	return nil
}

func (g *Game) cmdReset(ctx context.Context) []Event {
	g.pos.Reset()
	g.sess.ResetForNewGame()
	_ = g.sess.SetStrength(g.defaultStrength)
	g.sess.SetAnnounceMuted(g.defaultMuted)

	g.mu.Lock()
	g.paused = false
	g.archived = false
	g.startedAt = time.Now().UTC()
	g.mu.Unlock()

	g.restartFetch(ctx)
	return []Event{
		{Type: EventBoard, FEN: g.pos.FEN()},
		g.speakUnlessMuted("Board reset. White to move."),
		g.stateEvent(),
	}
}

// cmdFlip toggles orientation. While the engine owns a color the board
// stays oriented for the human side, so the command is refused.
func (g *Game) cmdFlip() []Event {
	if g.sess.EnginePlays() != autoplay.PlaysNone {
		return []Event{info("The board stays oriented for your side while the engine is playing.")}
	}
	g.mu.Lock()
	g.flipped = !g.flipped
	g.mu.Unlock()
	return []Event{g.stateEvent()}
}

// cmdUndo takes back one ply, or two when the engine owns the side that
// would then be to move, so the human is always the one back on turn.
func (g *Game) cmdUndo(ctx context.Context) []Event {
	if err := g.pos.Undo(); err != nil {
		return []Event{info("There is nothing to take back.")}
	}
	if g.enginesTurn() {
		if err := g.pos.Undo(); err != nil {
			g.logger.Warn("second undo ply unavailable", "err", err)
		}
	}
	g.restartFetch(ctx)
	return []Event{
		{Type: EventBoard, FEN: g.pos.FEN()},
		g.speakUnlessMuted("Move taken back."),
	}
}

func (g *Game) cmdEngineMode(ctx context.Context, c autoplay.EngineColor) []Event {
	g.sess.SetEnginePlays(c)

	// Orient the board so the human side is at the bottom.
	g.mu.Lock()
	g.flipped = c == autoplay.PlaysWhite
	g.mu.Unlock()

	events := []Event{
		g.speakUnlessMuted(fmt.Sprintf("The engine plays %s.", c.String())),
		g.stateEvent(),
	}
	if g.enginesTurn() && !g.pos.IsGameOver() {
		events = append(events, g.autoplayMove(ctx)...)
	}
	return events
}

func (g *Game) grandmasterEvents(on bool) []Event {
	text := "Grandmaster mode off."
	if on {
		text = "Grandmaster mode on. Book moves follow master games."
	}
	return []Event{g.speakUnlessMuted(text), g.stateEvent()}
}

// cmdTopMove speaks the engine's best move for the current position.
func (g *Game) cmdTopMove(ctx context.Context) []Event {
	if g.analyzer == nil {
		return []Event{info("No engine is configured.")}
	}
	a := g.settledAnalysis(ctx)
	if a == nil || len(a.engMoves) == 0 {
		return []Event{info("No engine analysis is available here.")}
	}
	best := a.engMoves[0]
	return []Event{speak(fmt.Sprintf("The engine suggests %s, %s.",
		speech.Vocalize(best.SAN), describeEval(best)))}
}

// cmdMasterMove speaks the most played master move for the current position.
func (g *Game) cmdMasterMove(ctx context.Context) []Event {
	if g.stats == nil {
		return []Event{info("No master-game statistics are configured.")}
	}
	a := g.settledAnalysis(ctx)
	if a == nil || a.book == nil || !a.book.Found || len(a.book.Moves) == 0 {
		return []Event{info("This position is not in the master-game book.")}
	}
	top := a.book.Moves[0]
	return []Event{speak(fmt.Sprintf("Masters most often play %s, seen in %d games.",
		speech.Vocalize(top.SAN), top.Total))}
}

// cmdResign resigns for the human side.
func (g *Game) cmdResign() []Event {
	if g.pos.IsGameOver() {
		return []Event{info("The game is already over.")}
	}
	side := g.pos.Turn()
	switch g.sess.EnginePlays() {
	case autoplay.PlaysWhite:
		side = game.Black
	case autoplay.PlaysBlack:
		side = game.White
	}
	g.pos.Resign(side)
	return g.finishGame("resignation accepted")
}

func describeEval(m engine.MoveInfo) string {
	if m.Kind == engine.KindMate {
		n := int(m.Evaluation)
		if n < 0 {
			n = -n
		}
		return fmt.Sprintf("mate in %d", n)
	}
	return fmt.Sprintf("evaluation %+.2f", m.Evaluation)
}

func (g *Game) stateEvent() Event {
	g.mu.Lock()
	flipped, help, dark, paused := g.flipped, g.helpVisible, g.darkMode, g.paused
	g.mu.Unlock()
	return Event{Type: EventState, State: &UIState{
		Flipped:     flipped,
		HelpVisible: help,
		DarkMode:    dark,
		Muted:       g.sess.AnnounceMuted(),
		Paused:      paused,
		EnginePlays: g.sess.EnginePlays().String(),
		Grandmaster: g.sess.Grandmaster(),
		Strength:    int(g.sess.Strength()),
	}}
}

// speakUnlessMuted downgrades a spoken notice to info while muted so the
// text still reaches the screen.
func (g *Game) speakUnlessMuted(text string) Event {
	if g.sess.AnnounceMuted() {
		return info(text)
	}
	return speak(text)
}

func (g *Game) setPaused(v bool) {
	g.mu.Lock()
	g.paused = v
	g.mu.Unlock()
}

func (g *Game) setFlag(f *bool, v bool) {
	g.mu.Lock()
	*f = v
	g.mu.Unlock()
}
