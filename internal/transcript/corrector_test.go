package transcript_test

import (
	"testing"

	"github.com/voxmate/voxmate/internal/transcript"
	"github.com/voxmate/voxmate/internal/transcript/phonetic"
)

func TestCorrect_CanonicalForms(t *testing.T) {
	t.Parallel()

	c := transcript.New()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"square words", "e four", "e4"},
		{"number homophone", "e cigs", "e6"},
		{"see homophone", "see four", "c4"},
		{"off homophone", "off six", "f6"},
		{"age homophone", "age five", "h5"},
		{"bee homophone", "bee seven", "b7"},
		{"ace homophone", "ace three", "a3"},
		{"gee homophone", "gee two", "g2"},
		{"piece variant brook", "brook takes e four", "rook x e4"},
		{"piece variant night", "night f three", "knight f3"},
		{"piece variant horse", "horse to f three", "knight to f3"},
		{"capture synonym", "bishop captures d five", "bishop x d5"},
		{"times synonym", "rook times a one", "rook x a1"},
		{"castle synonym", "castles kingside", "castle kingside"},
		{"castle short", "castle short", "castle kingside"},
		{"trailing check stripped", "queen h five check", "queen h5"},
		{"trailing plus stripped", "knight f three plus", "knight f3"},
		{"punctuation stripped", "pawn, e4.", "pawn e4"},
		{"disambiguation filler", "rook a to a five", "rook aa5"},
		{"queenie fused", "queenie four", "queen e4"},
		{"queeny fused trailing", "move queeny", "move queen e"},
		{"upper case input", "Knight F Three", "knight f3"},
		{"empty", "", ""},
		{"only check", "check", ""},
		{"untouched command", "reset the board", "reset the board"},
		{"flip synonym", "rotate the board", "flip the board"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := c.Correct(tc.in)
			if got != tc.want {
				t.Errorf("Correct(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// Re-running the full rule set on its own output must not change it.
func TestCorrect_Idempotent(t *testing.T) {
	t.Parallel()

	c := transcript.New(transcript.WithPhoneticFallback(phonetic.New()))

	inputs := []string{
		"e four", "see four", "e cigs", "brook takes e four",
		"knight f three", "rook a to a five", "queenie four",
		"castle kingside check", "pawn takes d five",
		"undo that", "some completely unrelated sentence",
		"knite f three", "bischop to c four",
	}

	for _, in := range inputs {
		once := c.Correct(in)
		twice := c.Correct(once)
		if once != twice {
			t.Errorf("not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCorrect_PhoneticFallback(t *testing.T) {
	t.Parallel()

	c := transcript.New(transcript.WithPhoneticFallback(phonetic.New()))

	cases := []struct {
		in   string
		want string
	}{
		// Misspellings the literal dictionary does not carry.
		{"knite f three", "knight f3"},
		{"bischop to c four", "bishop to c4"},
		{"resine", "resign"},
	}

	for _, tc := range cases {
		got := c.Correct(tc.in)
		if got != tc.want {
			t.Errorf("Correct(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCorrect_NeverInventsSquares(t *testing.T) {
	t.Parallel()

	c := transcript.New()

	// Words that merely resemble files must survive outside square context.
	got := c.Correct("let me see the board")
	if got != "let me see the board" {
		t.Errorf("Correct rewrote non-square context: %q", got)
	}
}

func TestPhoneticMatcher_ShortTokensUntouched(t *testing.T) {
	t.Parallel()

	m := phonetic.New()
	for _, tok := range []string{"e4", "a", "h8", "x", "b2"} {
		if got, ok := m.Match(tok); ok {
			t.Errorf("Match(%q) rewrote short token to %q", tok, got)
		}
	}
}
