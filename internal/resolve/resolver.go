// Package resolve turns a corrected move expression plus live board state
// into a concrete legal move, a disambiguation request, or a parse
// failure. The resolver never mutates the position; it probes candidate
// interpretations and leaves move application to the session layer.
package resolve

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/voxmate/voxmate/internal/game"
)

// ResultType tags a resolution outcome.
type ResultType int

const (
	// Resolved means exactly one legal move matched the expression.
	Resolved ResultType = iota

	// NeedsDisambiguation means more than one legal interpretation
	// remains; Candidates lists them and Prompt asks the user to choose.
	NeedsDisambiguation

	// NoLegalMove means the expression parsed as a move but no legal move
	// matches it in this position.
	NoLegalMove

	// NotAMove means the expression could not be read as a move at all.
	NotAMove

	// Resigned means the user resigned; a terminal action, not a board move.
	Resigned
)

// Result is the outcome of resolving one expression.
type Result struct {
	Type ResultType

	// Move is the resolved candidate when Type is Resolved.
	Move game.MoveCandidate

	// Candidates holds the live alternatives when Type is
	// NeedsDisambiguation. Never drawn from static assumptions, always
	// the current legal-move set.
	Candidates []game.MoveCandidate

	// Prompt is the user-facing disambiguation question.
	Prompt string

	// Reason explains a NoLegalMove outcome.
	Reason string
}

var (
	squareToken = regexp.MustCompile(`\b([a-h][1-8])\b`)
	fileToken   = regexp.MustCompile(`\b([a-h])\b`)
	pieceWord   = regexp.MustCompile(`\b(knight|bishop|rook|queen|king)\b`)
)

// fillerWords are dropped before general notation parsing.
var fillerWords = map[string]struct{}{
	"move": {}, "play": {}, "to": {}, "the": {}, "square": {},
	"on": {}, "at": {}, "piece": {}, "please": {}, "a": {}, "my": {},
}

// pieceLetters maps spoken piece names to SAN letter codes. Pawn maps to
// the empty string: pawn moves are square-only in algebraic notation.
var pieceLetters = map[string]string{
	"knight": "n", "bishop": "b", "rook": "r",
	"queen": "q", "king": "k", "pawn": "",
}

// Resolve interprets expr against pos. bestEngineSAN, when non-empty, is
// the top externally-supplied engine move for this position; the generic
// "takes" branch uses it to break ties among multiple captures.
//
// Branches run in order, first applicable wins: generic capture, pawn
// capture, plain pawn push, castling, resign, general notation with a
// square-pair fallback.
func Resolve(expr string, pos *game.Position, bestEngineSAN string) Result {
	s := strings.TrimSpace(strings.ToLower(expr))
	if s == "" {
		return Result{Type: NotAMove}
	}

	hasCapture := strings.Contains(" "+s+" ", " x ") || s == "x"
	hasPiece := pieceWord.MatchString(s)
	hasPawn := strings.Contains(s, "pawn")

	switch {
	case s == "x":
		return resolveGenericCapture(pos, bestEngineSAN)

	case hasCapture && !hasPiece:
		return resolvePawnCapture(s, pos)

	case hasPawn && !hasCapture:
		if r, ok := resolvePawnPush(s, pos); ok {
			return r
		}
		// Fall through to general parsing rather than failing outright.

	case strings.Contains(s, "castle") || bareCastleSide(s):
		return resolveCastle(s, pos)

	case strings.Contains(s, "resign"):
		return Result{Type: Resigned}
	}

	return resolveNotation(s, pos)
}

// resolveGenericCapture handles a bare capture operator: the user said
// "takes" with no square or piece.
func resolveGenericCapture(pos *game.Position, bestEngineSAN string) Result {
	var captures []game.MoveCandidate
	for _, c := range pos.LegalMoves() {
		if c.IsCapture {
			captures = append(captures, c)
		}
	}

	switch len(captures) {
	case 0:
		return Result{Type: NoLegalMove, Reason: "no captures available"}
	case 1:
		return Result{Type: Resolved, Move: captures[0]}
	}

	// Several captures: if the engine's best move is itself a capture,
	// assume the user wants the objectively best one.
	if bestEngineSAN != "" {
		for _, c := range captures {
			if sanEqual(c.SAN, bestEngineSAN) {
				return Result{Type: Resolved, Move: c}
			}
		}
	}

	return Result{
		Type:       NeedsDisambiguation,
		Candidates: captures,
		Prompt: fmt.Sprintf("there are %d possible captures. Say the piece or file to capture with, for example %q",
			len(captures), spokenHint(captures[0])),
	}
}

// resolvePawnCapture handles a capture with no piece word (or an explicit
// "pawn"): only pawns are considered. Anything the user said before the
// capture operator is an origin hint ("e x d5", "e4 x d5"), which is how
// the two-file disambiguation prompt gets answered. At most two files can
// attack one square, so the disambiguation set never exceeds two.
func resolvePawnCapture(s string, pos *game.Position) Result {
	left, right, _ := strings.Cut(" "+s+" ", " x ")

	dest := ""
	if sq := squareToken.FindAllString(right, -1); len(sq) > 0 {
		dest = sq[len(sq)-1]
	}

	origin, originFile := "", ""
	if sq := squareToken.FindAllString(left, -1); len(sq) > 0 {
		origin = sq[len(sq)-1]
	} else if f := fileToken.FindAllString(left, -1); len(f) > 0 {
		originFile = f[len(f)-1]
	}

	var pawnCaps []game.MoveCandidate
	for _, c := range pos.LegalMoves() {
		if c.Piece != "p" || !c.IsCapture {
			continue
		}
		if dest != "" && c.To != dest {
			continue
		}
		if origin != "" && c.From != origin {
			continue
		}
		if originFile != "" && string(c.From[0]) != originFile {
			continue
		}
		pawnCaps = append(pawnCaps, c)
	}

	switch len(pawnCaps) {
	case 0:
		switch {
		case originFile != "" && dest != "":
			return Result{Type: NoLegalMove, Reason: fmt.Sprintf("the %s-file pawn cannot capture on %s", originFile, dest)}
		case origin != "" && dest != "":
			return Result{Type: NoLegalMove, Reason: fmt.Sprintf("the pawn on %s cannot capture on %s", origin, dest)}
		case dest != "":
			return Result{Type: NoLegalMove, Reason: fmt.Sprintf("no pawn can capture on %s", dest)}
		default:
			return Result{Type: NoLegalMove, Reason: "no pawn captures available"}
		}
	case 1:
		return Result{Type: Resolved, Move: pawnCaps[0]}
	}

	sort.Slice(pawnCaps, func(i, j int) bool { return pawnCaps[i].From < pawnCaps[j].From })
	files := make([]string, len(pawnCaps))
	for i, c := range pawnCaps {
		files[i] = string(c.From[0])
	}
	return Result{
		Type:       NeedsDisambiguation,
		Candidates: pawnCaps,
		Prompt: fmt.Sprintf("pawns on the %s and %s files can both capture on %s. Which one?",
			files[0], files[1], pawnCaps[0].To),
	}
}

// resolvePawnPush tries the destination square directly as a move.
// Returns ok=false to let the caller fall through to general parsing.
func resolvePawnPush(s string, pos *game.Position) (Result, bool) {
	squares := squareToken.FindAllString(s, -1)
	if len(squares) == 0 {
		return Result{}, false
	}
	dest := squares[len(squares)-1]
	c, err := pos.Peek(dest)
	if err != nil {
		return Result{}, false
	}
	return Result{Type: Resolved, Move: c}, true
}

// bareCastleSide reports whether the whole expression is just a castle
// side, the natural answer to the "kingside or queenside?" prompt.
func bareCastleSide(s string) bool {
	switch strings.Join(strings.Fields(s), "") {
	case "kingside", "queenside":
		return true
	}
	return false
}

// resolveCastle handles castle expressions. Legality depends entirely on
// board state, so the classifier defers castle keywords here.
func resolveCastle(s string, pos *game.Position) Result {
	var kingside, queenside *game.MoveCandidate
	for _, c := range pos.LegalMoves() {
		c := c
		if c.KingSideCastle {
			kingside = &c
		}
		if c.QueenSideCastle {
			queenside = &c
		}
	}

	wantsKing := strings.Contains(s, "king")
	wantsQueen := strings.Contains(s, "queen")

	switch {
	case kingside == nil && queenside == nil:
		return Result{Type: NoLegalMove, Reason: "castling is not legal right now"}

	case wantsKing && !wantsQueen:
		if kingside == nil {
			return Result{Type: NoLegalMove, Reason: "castling kingside is not legal right now"}
		}
		return Result{Type: Resolved, Move: *kingside}

	case wantsQueen && !wantsKing:
		if queenside == nil {
			return Result{Type: NoLegalMove, Reason: "castling queenside is not legal right now"}
		}
		return Result{Type: Resolved, Move: *queenside}

	case kingside != nil && queenside != nil:
		return Result{
			Type:       NeedsDisambiguation,
			Candidates: []game.MoveCandidate{*kingside, *queenside},
			Prompt:     "both sides are available. Castle kingside or queenside?",
		}

	case kingside != nil:
		return Result{Type: Resolved, Move: *kingside}

	default:
		return Result{Type: Resolved, Move: *queenside}
	}
}

// resolveNotation is the general branch: strip filler, rewrite piece
// names to letter codes, collapse whitespace, and attempt the result as
// notation. On failure, fall back to extracting two square tokens and
// trying a from-to move with a default queen promotion.
func resolveNotation(s string, pos *game.Position) Result {
	normalized := NormalizeNotation(s)

	if normalized != "" {
		if c, err := pos.Peek(normalized); err == nil {
			return Result{Type: Resolved, Move: c}
		}
	}

	squares := squareToken.FindAllString(s, -1)
	if len(squares) >= 2 {
		if c, err := pos.PeekFromTo(squares[0], squares[1], "q"); err == nil {
			return Result{Type: Resolved, Move: c}
		}
	}

	// A lone square is a pawn-push attempt even without the word "pawn".
	if len(squares) == 1 {
		if c, err := pos.Peek(squares[0]); err == nil {
			return Result{Type: Resolved, Move: c}
		}
		return Result{Type: NoLegalMove, Reason: fmt.Sprintf("no legal move matches %q", s)}
	}

	if normalized != "" && squareToken.MatchString(normalized) {
		return Result{Type: NoLegalMove, Reason: fmt.Sprintf("no legal move matches %q", s)}
	}
	return Result{Type: NotAMove}
}

// NormalizeNotation reduces a spoken move expression to compact notation:
// filler words dropped, piece names replaced with their letter codes,
// whitespace removed. "rook x e4" becomes "rxe4".
func NormalizeNotation(s string) string {
	tokens := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, filler := fillerWords[tok]; filler {
			continue
		}
		if letter, ok := pieceLetters[tok]; ok {
			if letter != "" {
				out = append(out, letter)
			}
			continue
		}
		out = append(out, tok)
	}
	return strings.Join(out, "")
}

// sanEqual compares SAN labels ignoring case and check annotations.
func sanEqual(a, b string) bool {
	trim := func(s string) string {
		return strings.ToLower(strings.TrimRight(strings.TrimSpace(s), "+#"))
	}
	return trim(a) == trim(b)
}

// spokenHint renders a candidate the way a user would say it, for use in
// disambiguation prompts.
func spokenHint(c game.MoveCandidate) string {
	name := pieceName(c.Piece)
	if c.IsCapture {
		return fmt.Sprintf("%s takes %s", name, c.To)
	}
	return fmt.Sprintf("%s %s", name, c.To)
}

// pieceName expands a letter code to the spoken piece name.
func pieceName(code string) string {
	switch code {
	case "n":
		return "knight"
	case "b":
		return "bishop"
	case "r":
		return "rook"
	case "q":
		return "queen"
	case "k":
		return "king"
	}
	return "pawn"
}
