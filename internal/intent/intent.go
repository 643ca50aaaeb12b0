// Package intent classifies corrected transcripts into system commands or
// move expressions. Classification is read-only keyword containment over
// the canonical token stream produced by the transcript package; the
// handlers triggered by the returned intent perform all side effects.
package intent

// Kind enumerates the system commands a spoken utterance can trigger.
type Kind string

const (
	Reset             Kind = "reset"
	Flip              Kind = "flip"
	Undo              Kind = "undo"
	SoundOn           Kind = "sound-on"
	SoundOff          Kind = "sound-off"
	Pause             Kind = "pause"
	Resume            Kind = "resume"
	ShowHelp          Kind = "show-help"
	HideHelp          Kind = "hide-help"
	DarkMode          Kind = "dark-mode"
	LightMode         Kind = "light-mode"
	EngineModeWhite   Kind = "engine-white"
	EngineModeBlack   Kind = "engine-black"
	AnalysisMode      Kind = "analysis-mode"
	GrandmasterToggle Kind = "grandmaster-toggle"
	GrandmasterOn     Kind = "grandmaster-on"
	GrandmasterOff    Kind = "grandmaster-off"
	TopMove           Kind = "top-move"
	MasterMove        Kind = "master-move"
	Resign            Kind = "resign"
)

// Type tags the classification outcome.
type Type int

const (
	// TypeSystemCommand means the utterance is a command; Commands holds
	// the kinds to execute in order.
	TypeSystemCommand Type = iota

	// TypeMoveExpression means the utterance should be resolved against
	// the board; Text holds the corrected expression.
	TypeMoveExpression

	// TypeUnrecognized means the utterance carried no usable content.
	TypeUnrecognized
)

// String returns the classification name, for logs and metric labels.
func (t Type) String() string {
	switch t {
	case TypeSystemCommand:
		return "command"
	case TypeMoveExpression:
		return "move"
	default:
		return "unrecognized"
	}
}

// Intent is the classification result for one utterance. Intents are
// transient: created per utterance and discarded after handling.
type Intent struct {
	Type Type

	// Commands is non-empty only for TypeSystemCommand. Compound phrases
	// ("grandmaster plays white") expand to more than one kind.
	Commands []Kind

	// Text is the corrected move expression for TypeMoveExpression.
	Text string
}

// System builds a system-command intent.
func System(kinds ...Kind) Intent {
	return Intent{Type: TypeSystemCommand, Commands: kinds}
}

// Move builds a move-expression intent.
func Move(text string) Intent {
	return Intent{Type: TypeMoveExpression, Text: text}
}

// Unrecognized is the empty-utterance outcome.
var Unrecognized = Intent{Type: TypeUnrecognized}
