package app

// EventType tags an outgoing session event.
type EventType string

const (
	// EventSpeak carries text to vocalize to the user.
	EventSpeak EventType = "speak"
	// EventBoard carries the new board state after a move or reset.
	EventBoard EventType = "board"
	// EventPrompt asks the user to disambiguate between legal moves.
	EventPrompt EventType = "prompt"
	// EventInfo carries non-spoken informational text.
	EventInfo EventType = "info"
	// EventError reports a failed interpretation, restating what was heard.
	EventError EventType = "error"
	// EventGameOver reports a finished game with its outcome.
	EventGameOver EventType = "game_over"
	// EventState reports UI-facing session flags (flip, help, theme, sound).
	EventState EventType = "state"
)

// Event is one message from the session to its client.
type Event struct {
	Type EventType `json:"type"`

	// Text is the spoken or displayed payload.
	Text string `json:"text,omitempty"`

	// FEN is the board state for EventBoard and EventGameOver.
	FEN string `json:"fen,omitempty"`

	// SAN is the move that produced this event, when one did.
	SAN string `json:"san,omitempty"`

	// Source is the autoplay provenance ("book" or "engine") when the
	// move was machine-selected.
	Source string `json:"source,omitempty"`

	// Outcome is the game result string for EventGameOver.
	Outcome string `json:"outcome,omitempty"`

	// State carries the UI flags for EventState.
	State *UIState `json:"state,omitempty"`
}

// UIState is the client-rendered session state.
type UIState struct {
	Flipped     bool   `json:"flipped"`
	HelpVisible bool   `json:"help_visible"`
	DarkMode    bool   `json:"dark_mode"`
	Muted       bool   `json:"muted"`
	Paused      bool   `json:"paused"`
	EnginePlays string `json:"engine_plays"`
	Grandmaster bool   `json:"grandmaster"`
	Strength    int    `json:"strength"`
}

func speak(text string) Event   { return Event{Type: EventSpeak, Text: text} }
func info(text string) Event    { return Event{Type: EventInfo, Text: text} }
func errText(text string) Event { return Event{Type: EventError, Text: text} }
func prompt(text string) Event  { return Event{Type: EventPrompt, Text: text} }
