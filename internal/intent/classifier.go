package intent

import "strings"

// Classify maps a corrected transcript to an [Intent]. paused is the
// session's pause flag: while paused, every intent other than resume and
// pause itself is suppressed; the pause gate is deliberate, not a
// fallback, so that synthesized speech or table talk cannot drive the
// board while the user has stepped away.
//
// Matching is substring containment on the corrected text, first match
// wins, in the priority order the session depends on (resume before the
// gate, commands before move parsing).
func Classify(text string, paused bool) Intent {
	s := strings.TrimSpace(strings.ToLower(text))
	if s == "" {
		return Unrecognized
	}

	// Resume and pause are checked even while paused; pause must be
	// escapable.
	switch {
	case containsAny(s, "resume", "unpause", "continue"):
		return System(Resume)
	case containsAny(s, "pause", "hold on"):
		return System(Pause)
	}

	if paused {
		return System(Pause)
	}

	switch {
	case containsAny(s, "reset", "new game", "start over"):
		return System(Reset)

	// "flip" collides with move phrasings that mention rotation-like
	// words; a flip that also mentions "move" is treated as a move.
	case strings.Contains(s, "flip") && !strings.Contains(s, "move"):
		return System(Flip)

	// The corrector rewrites "takes back" to "x back".
	case containsAny(s, "undo", "go back", "x back"):
		return System(Undo)

	case strings.Contains(s, "unmute"):
		return System(SoundOn)
	case strings.Contains(s, "mute"):
		return System(SoundOff)
	case strings.Contains(s, "sound"):
		if containsAny(s, "off", "stop") {
			return System(SoundOff)
		}
		return System(SoundOn)

	case containsAny(s, "help", "commands", "what can i say"):
		if containsAny(s, "hide", "close", "dismiss") {
			return System(HideHelp)
		}
		return System(ShowHelp)

	// "night mode" arrives as "knight mode" after correction.
	case containsAny(s, "dark mode", "dark theme", "knight mode"):
		return System(DarkMode)
	case containsAny(s, "light mode", "light theme", "day mode"):
		return System(LightMode)

	case strings.Contains(s, "grandmaster") && strings.Contains(s, "white"):
		return System(EngineModeWhite, GrandmasterOn)
	case strings.Contains(s, "grandmaster") && strings.Contains(s, "black"):
		return System(EngineModeBlack, GrandmasterOn)

	case containsAny(s, "engine plays white", "engine white", "computer plays white", "computer white"):
		return System(EngineModeWhite)
	case containsAny(s, "engine plays black", "engine black", "computer plays black", "computer black"):
		return System(EngineModeBlack)
	case containsAny(s, "analysis mode", "analysis only", "manual mode", "two player"):
		return System(AnalysisMode)

	case strings.Contains(s, "grandmaster"):
		if strings.Contains(s, "off") {
			return System(GrandmasterOff)
		}
		if containsAny(s, "on", "mode") {
			return System(GrandmasterOn)
		}
		return System(GrandmasterToggle)

	case containsAny(s, "top move", "best move", "engine move"):
		return System(TopMove)
	case containsAny(s, "master move", "book move"):
		return System(MasterMove)

	case containsAny(s, "resign", "i give up"):
		return System(Resign)
	}

	// Castle legality depends on board state; the resolver owns it, so a
	// castle keyword stays a move expression. Everything else is handed to
	// the resolver as-is.
	return Move(s)
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
