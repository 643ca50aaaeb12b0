// Package autoplay implements the move-selection engine behind the
// "computer plays a side" mode: a two-tier probabilistic model that
// prefers opening-book statistics over engine evaluations, with
// strength-tiered randomness and an optional grandmaster sampling mode.
package autoplay

import (
	"fmt"
	"sync"
)

// Strength is the playing-strength tier. Higher tiers tolerate less
// evaluation loss and sample closer to the best move.
type Strength int

const (
	Strength1000 Strength = 1000
	Strength1500 Strength = 1500
	Strength2000 Strength = 2000
	Strength2500 Strength = 2500
)

// DefaultStrength is the tier a fresh session starts at.
const DefaultStrength = Strength2000

// IsValid reports whether s is a recognised strength tier.
func (s Strength) IsValid() bool {
	switch s {
	case Strength1000, Strength1500, Strength2000, Strength2500:
		return true
	}
	return false
}

// EngineColor selects which side, if any, the computer plays.
type EngineColor int

const (
	PlaysNone EngineColor = iota
	PlaysWhite
	PlaysBlack
)

// String returns "none", "white", or "black".
func (c EngineColor) String() string {
	switch c {
	case PlaysWhite:
		return "white"
	case PlaysBlack:
		return "black"
	}
	return "none"
}

// Session is the mutable autoplay state for one game. It is passed by
// reference to the selector and the command handlers; its lifetime
// matches the game session and it resets atomically on board reset.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	enginePlays   EngineColor
	grandmaster   bool
	strength      Strength
	wasInBook     bool
	bookProbed    bool
	announceMuted bool
}

// NewSession returns a session in its reset state.
func NewSession() *Session {
	s := &Session{}
	s.ResetForNewGame()
	return s
}

// ResetForNewGame restores the defaults atomically: no engine side,
// grandmaster off, default strength, in-book, announcements on.
func (s *Session) ResetForNewGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enginePlays = PlaysNone
	s.grandmaster = false
	s.strength = DefaultStrength
	s.wasInBook = true
	s.bookProbed = false
	s.announceMuted = false
}

// EnginePlays returns the side the computer currently plays.
func (s *Session) EnginePlays() EngineColor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enginePlays
}

// SetEnginePlays switches the engine side. Entering an engine-play mode
// re-arms the book tracker so the out-of-book notice can fire for the
// new game line.
func (s *Session) SetEnginePlays(c EngineColor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enginePlays = c
	if c != PlaysNone {
		s.wasInBook = true
	}
}

// Grandmaster reports whether grandmaster sampling mode is on.
func (s *Session) Grandmaster() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grandmaster
}

// SetGrandmaster sets grandmaster sampling mode.
func (s *Session) SetGrandmaster(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grandmaster = on
}

// ToggleGrandmaster flips grandmaster mode and returns the new value.
func (s *Session) ToggleGrandmaster() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grandmaster = !s.grandmaster
	return s.grandmaster
}

// Strength returns the current strength tier.
func (s *Session) Strength() Strength {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strength
}

// SetStrength sets the strength tier. Invalid tiers are rejected.
func (s *Session) SetStrength(v Strength) error {
	if !v.IsValid() {
		return fmt.Errorf("autoplay: invalid strength %d (valid: 1000, 1500, 2000, 2500)", v)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strength = v
	return nil
}

// AnnounceMuted reports whether spoken move announcements are muted.
func (s *Session) AnnounceMuted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.announceMuted
}

// SetAnnounceMuted sets the announcement mute flag.
func (s *Session) SetAnnounceMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announceMuted = muted
}

// MarkBookProbed records that a book-data source has responded at least
// once for the current position. The out-of-book notice is gated on this
// so a slow network delays the notice instead of misfiring it.
func (s *Session) MarkBookProbed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookProbed = true
}

// ClearBookProbed resets the probe flag when the position changes.
func (s *Session) ClearBookProbed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookProbed = false
}

// markBookMove records a book-tier pick.
func (s *Session) markBookMove() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wasInBook = true
}

// leaveBook consumes the out-of-book signal: it returns true exactly once
// per book-to-engine transition, and only after the book source has been
// probed for the current position.
func (s *Session) leaveBook() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wasInBook && s.bookProbed {
		s.wasInBook = false
		return true
	}
	return false
}

// WasInBook reports the book tracker state. Exposed for the session
// status surface.
func (s *Session) WasInBook() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wasInBook
}
