package resolve_test

import (
	"strings"
	"testing"

	"github.com/voxmate/voxmate/internal/game"
	"github.com/voxmate/voxmate/internal/resolve"
)

// position builds a board by applying the given SAN moves from the start.
func position(t *testing.T, moves ...string) *game.Position {
	t.Helper()
	p := game.NewPosition()
	for _, m := range moves {
		if _, err := p.ApplySAN(m); err != nil {
			t.Fatalf("setup move %q: %v", m, err)
		}
	}
	return p
}

func TestResolve_GenericTakes_UniqueCapture(t *testing.T) {
	t.Parallel()

	// After 1.e4 d5 the only capture for white is exd5.
	p := position(t, "e4", "d5")

	r := resolve.Resolve("x", p, "")
	if r.Type != resolve.Resolved {
		t.Fatalf("Resolve(x) = %+v, want Resolved", r)
	}
	if r.Move.SAN != "exd5" {
		t.Errorf("Resolve(x).Move.SAN = %q, want exd5", r.Move.SAN)
	}
}

func TestResolve_GenericTakes_NoCaptures(t *testing.T) {
	t.Parallel()

	p := game.NewPosition()
	r := resolve.Resolve("x", p, "")
	if r.Type != resolve.NoLegalMove {
		t.Fatalf("Resolve(x) in start position = %+v, want NoLegalMove", r)
	}
	if !strings.Contains(r.Reason, "no captures") {
		t.Errorf("Reason = %q, want capture explanation", r.Reason)
	}
}

func TestResolve_GenericTakes_EngineBreaksTie(t *testing.T) {
	t.Parallel()

	// After 1.e4 d5 2.exd5 Qxd5 3.Nc3 both Nxd5 and nothing else?
	// Build a position with two captures instead: 1.e4 e5 2.Nf3 Nc6 3.d4.
	// Black can take on d4 with the e-pawn or the knight.
	p := position(t, "e4", "e5", "Nf3", "Nc6", "d4")

	r := resolve.Resolve("x", p, "exd4")
	if r.Type != resolve.Resolved {
		t.Fatalf("Resolve(x) with engine hint = %+v, want Resolved", r)
	}
	if r.Move.SAN != "exd4" {
		t.Errorf("Move.SAN = %q, want engine-preferred exd4", r.Move.SAN)
	}

	// Without a hint the same position needs disambiguation.
	r = resolve.Resolve("x", p, "")
	if r.Type != resolve.NeedsDisambiguation {
		t.Fatalf("Resolve(x) without hint = %+v, want NeedsDisambiguation", r)
	}
	if len(r.Candidates) < 2 {
		t.Errorf("Candidates = %d, want at least 2", len(r.Candidates))
	}
	if r.Prompt == "" {
		t.Error("Prompt is empty")
	}
}

func TestResolve_PawnCapture_TwoFiles(t *testing.T) {
	t.Parallel()

	// 1.e4 d5 2.c4 e6: pawns on c4 and e4 can both take d5.
	p := position(t, "e4", "d5", "c4", "e6")

	r := resolve.Resolve("pawn x d5", p, "")
	if r.Type != resolve.NeedsDisambiguation {
		t.Fatalf("Resolve(pawn x d5) = %+v, want NeedsDisambiguation", r)
	}
	if len(r.Candidates) != 2 {
		t.Fatalf("Candidates = %d, want 2", len(r.Candidates))
	}
	for _, want := range []string{"c", "e"} {
		if !strings.Contains(r.Prompt, want+" ") && !strings.Contains(r.Prompt, " "+want) {
			t.Errorf("Prompt %q does not name file %q", r.Prompt, want)
		}
	}
	// Both candidates must be legal in the live position.
	for _, c := range r.Candidates {
		if _, err := p.Peek(c.SAN); err != nil {
			t.Errorf("candidate %q is not legal: %v", c.SAN, err)
		}
	}
}

func TestResolve_PawnCapture_FileAnswersPrompt(t *testing.T) {
	t.Parallel()

	// Same two-file setup as above; naming the file must pick one pawn
	// instead of asking again.
	p := position(t, "e4", "d5", "c4", "e6")

	cases := []struct {
		expr string
		want string
	}{
		{"e x d5", "exd5"},
		{"c x d5", "cxd5"},
		{"e4 x d5", "exd5"},
		{"c4 x d5", "cxd5"},
		{"pawn e4 x d5", "exd5"},
	}
	for _, tc := range cases {
		r := resolve.Resolve(tc.expr, p, "")
		if r.Type != resolve.Resolved {
			t.Fatalf("Resolve(%q) = %+v, want Resolved", tc.expr, r)
		}
		if r.Move.SAN != tc.want {
			t.Errorf("Resolve(%q).Move.SAN = %q, want %q", tc.expr, r.Move.SAN, tc.want)
		}
	}

	// A file with no pawn able to take explains itself instead of looping
	// back to the same prompt.
	r := resolve.Resolve("b x d5", p, "")
	if r.Type != resolve.NoLegalMove {
		t.Fatalf("Resolve(b x d5) = %+v, want NoLegalMove", r)
	}
	if !strings.Contains(r.Reason, "b") || !strings.Contains(r.Reason, "d5") {
		t.Errorf("Reason = %q, want to name the b file and d5", r.Reason)
	}
}

func TestResolve_PawnCapture_Unique(t *testing.T) {
	t.Parallel()

	p := position(t, "e4", "d5")
	r := resolve.Resolve("x d5", p, "")
	if r.Type != resolve.Resolved || r.Move.SAN != "exd5" {
		t.Fatalf("Resolve(x d5) = %+v, want exd5", r)
	}
}

func TestResolve_PawnCapture_None(t *testing.T) {
	t.Parallel()

	p := game.NewPosition()
	r := resolve.Resolve("pawn x d5", p, "")
	if r.Type != resolve.NoLegalMove {
		t.Fatalf("Resolve(pawn x d5) = %+v, want NoLegalMove", r)
	}
	if !strings.Contains(r.Reason, "d5") {
		t.Errorf("Reason = %q, want to mention d5", r.Reason)
	}
}

func TestResolve_PawnPush(t *testing.T) {
	t.Parallel()

	p := game.NewPosition()
	r := resolve.Resolve("pawn e4", p, "")
	if r.Type != resolve.Resolved || r.Move.SAN != "e4" {
		t.Fatalf("Resolve(pawn e4) = %+v, want e4", r)
	}
}

func TestResolve_Castle(t *testing.T) {
	t.Parallel()

	castlePos := func(t *testing.T) *game.Position {
		p, err := game.NewPositionFEN("r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w KQkq - 0 1")
		if err != nil {
			t.Fatal(err)
		}
		return p
	}

	t.Run("bare castle needs disambiguation", func(t *testing.T) {
		t.Parallel()
		r := resolve.Resolve("castle", castlePos(t), "")
		if r.Type != resolve.NeedsDisambiguation {
			t.Fatalf("Resolve(castle) = %+v, want NeedsDisambiguation", r)
		}
		if len(r.Candidates) != 2 {
			t.Errorf("Candidates = %d, want 2", len(r.Candidates))
		}
	})

	t.Run("kingside deterministic", func(t *testing.T) {
		t.Parallel()
		r := resolve.Resolve("castle kingside", castlePos(t), "")
		if r.Type != resolve.Resolved || !r.Move.KingSideCastle {
			t.Fatalf("Resolve(castle kingside) = %+v, want kingside castle", r)
		}
	})

	t.Run("queenside deterministic", func(t *testing.T) {
		t.Parallel()
		r := resolve.Resolve("castle queenside", castlePos(t), "")
		if r.Type != resolve.Resolved || !r.Move.QueenSideCastle {
			t.Fatalf("Resolve(castle queenside) = %+v, want queenside castle", r)
		}
	})

	t.Run("bare side answers the prompt", func(t *testing.T) {
		t.Parallel()
		r := resolve.Resolve("kingside", castlePos(t), "")
		if r.Type != resolve.Resolved || !r.Move.KingSideCastle {
			t.Fatalf("Resolve(kingside) = %+v, want kingside castle", r)
		}
		r = resolve.Resolve("queen side", castlePos(t), "")
		if r.Type != resolve.Resolved || !r.Move.QueenSideCastle {
			t.Fatalf("Resolve(queen side) = %+v, want queenside castle", r)
		}
	})

	t.Run("not legal at start", func(t *testing.T) {
		t.Parallel()
		r := resolve.Resolve("castle", game.NewPosition(), "")
		if r.Type != resolve.NoLegalMove {
			t.Fatalf("Resolve(castle) at start = %+v, want NoLegalMove", r)
		}
	})

	t.Run("only one side available", func(t *testing.T) {
		t.Parallel()
		p, err := game.NewPositionFEN("r3k2r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w Kkq - 0 1")
		if err != nil {
			t.Fatal(err)
		}
		r := resolve.Resolve("castle", p, "")
		if r.Type != resolve.Resolved || !r.Move.KingSideCastle {
			t.Fatalf("Resolve(castle) with only kingside rights = %+v, want kingside", r)
		}
	})
}

func TestResolve_GeneralNotation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		setup []string
		expr  string
		want  string
	}{
		{"piece word", nil, "knight f3", "Nf3"},
		{"piece letter already", nil, "nf3", "Nf3"},
		{"capture expression", []string{"e4", "d5"}, "pawn x d5", "exd5"},
		{"rook capture", []string{"a4", "h5", "Ra3", "h4", "Rh3", "a5"}, "rook x h4", "Rxh4"},
		{"filler words", nil, "play knight to f3 please", "Nf3"},
		{"square pair fallback", nil, "g1 f3", "Nf3"},
		{"bare square", nil, "e4", "e4"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := position(t, tc.setup...)
			r := resolve.Resolve(tc.expr, p, "")
			if r.Type != resolve.Resolved {
				t.Fatalf("Resolve(%q) = %+v, want Resolved", tc.expr, r)
			}
			if r.Move.SAN != tc.want {
				t.Errorf("Resolve(%q).Move.SAN = %q, want %q", tc.expr, r.Move.SAN, tc.want)
			}
		})
	}
}

func TestResolve_IllegalMoveIsNoLegalMove(t *testing.T) {
	t.Parallel()

	// Queen h5 is blocked after 1.d4 d5.
	p := position(t, "d4", "d5")
	r := resolve.Resolve("queen h5", p, "")
	if r.Type != resolve.NoLegalMove {
		t.Fatalf("Resolve(queen h5) = %+v, want NoLegalMove", r)
	}
}

func TestResolve_NotAMove(t *testing.T) {
	t.Parallel()

	p := game.NewPosition()
	r := resolve.Resolve("tell me a story", p, "")
	if r.Type != resolve.NotAMove {
		t.Fatalf("Resolve(nonsense) = %+v, want NotAMove", r)
	}
}

func TestResolve_Resign(t *testing.T) {
	t.Parallel()

	r := resolve.Resolve("resign", game.NewPosition(), "")
	if r.Type != resolve.Resigned {
		t.Fatalf("Resolve(resign) = %+v, want Resigned", r)
	}
}

func TestResolve_DoesNotMutatePosition(t *testing.T) {
	t.Parallel()

	p := position(t, "e4", "d5")
	before := p.FEN()

	resolve.Resolve("x", p, "")
	resolve.Resolve("pawn x d5", p, "")
	resolve.Resolve("knight f3", p, "")
	resolve.Resolve("castle", p, "")
	resolve.Resolve("nonsense words", p, "")

	if p.FEN() != before {
		t.Errorf("position mutated by Resolve: %q -> %q", before, p.FEN())
	}
}

func TestNormalizeNotation(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"knight f3", "nf3"},
		{"rook x e4", "rxe4"},
		{"move the queen to d2", "qd2"},
		{"pawn e4", "e4"},
		{"king g1", "kg1"},
	}
	for _, tc := range cases {
		if got := resolve.NormalizeNotation(tc.in); got != tc.want {
			t.Errorf("NormalizeNotation(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
