// Package game wraps the notnil/chess rules engine behind the small
// position-view surface the rest of voxmate consumes: legal-move
// enumeration with piece and capture metadata, tolerant move application
// from spoken notation, and game-over predicates.
//
// The wrapper never reimplements chess rules; every legality decision is
// delegated to the underlying library.
package game

import (
	"fmt"
	"strings"
	"sync"

	"github.com/notnil/chess"
)

// Side identifies the colour to move or the colour a player controls.
type Side int

const (
	White Side = iota
	Black
)

// String returns "white" or "black".
func (s Side) String() string {
	if s == Black {
		return "black"
	}
	return "white"
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == White {
		return Black
	}
	return White
}

// MoveCandidate is one legal move with the metadata the resolver and
// vocalizer need. SAN is the canonical algebraic label for the move in the
// position it was enumerated from.
type MoveCandidate struct {
	// From and To are compact square names ("e2", "e4").
	From string
	To   string

	// Piece is the lower-case single-letter code of the moving piece
	// ("p", "n", "b", "r", "q", "k").
	Piece string

	// SAN is the standard algebraic label ("Nf3", "exd5", "O-O").
	SAN string

	// IsCapture reports whether the move takes a piece (including en passant).
	IsCapture bool

	// Promotion is the promotion piece code ("q", "r", "b", "n") or empty.
	Promotion string

	// KingSideCastle / QueenSideCastle flag castling moves.
	KingSideCastle  bool
	QueenSideCastle bool
}

// Position is a live game the session mutates. All methods are safe for
// concurrent use; the voice pipeline itself is single-threaded but the
// HTTP surface may read the position concurrently.
type Position struct {
	mu sync.Mutex
	g  *chess.Game
}

// NewPosition returns a position at the standard starting setup.
func NewPosition() *Position {
	return &Position{g: chess.NewGame()}
}

// NewPositionFEN returns a position initialised from a FEN string.
func NewPositionFEN(fen string) (*Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("game: parse fen %q: %w", fen, err)
	}
	return &Position{g: chess.NewGame(opt)}, nil
}

// pieceCode maps a chess.PieceType to its lower-case letter code.
func pieceCode(t chess.PieceType) string {
	switch t {
	case chess.King:
		return "k"
	case chess.Queen:
		return "q"
	case chess.Rook:
		return "r"
	case chess.Bishop:
		return "b"
	case chess.Knight:
		return "n"
	case chess.Pawn:
		return "p"
	}
	return ""
}

// candidate builds a MoveCandidate from a library move in pos.
func candidate(pos *chess.Position, m *chess.Move) MoveCandidate {
	c := MoveCandidate{
		From:            m.S1().String(),
		To:              m.S2().String(),
		Piece:           pieceCode(pos.Board().Piece(m.S1()).Type()),
		SAN:             chess.AlgebraicNotation{}.Encode(pos, m),
		IsCapture:       m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant),
		KingSideCastle:  m.HasTag(chess.KingSideCastle),
		QueenSideCastle: m.HasTag(chess.QueenSideCastle),
	}
	if m.Promo() != chess.NoPieceType {
		c.Promotion = pieceCode(m.Promo())
	}
	return c
}

// LegalMoves enumerates every legal move in the current position.
func (p *Position) LegalMoves() []MoveCandidate {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := p.g.Position()
	moves := pos.ValidMoves()
	out := make([]MoveCandidate, 0, len(moves))
	for _, m := range moves {
		out = append(out, candidate(pos, m))
	}
	return out
}

// Turn returns the side to move.
func (p *Position) Turn() Side {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.g.Position().Turn() == chess.Black {
		return Black
	}
	return White
}

// normalizeSAN repairs the casing quirks a spoken-notation pipeline
// produces: lower-case piece letters and "o-o" castle spellings. Pawn
// moves ("e4", "exd5") keep their lower-case file letters.
func normalizeSAN(s string) string {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "o-o", "0-0":
		return "O-O"
	case "o-o-o", "0-0-0":
		return "O-O-O"
	}
	if s == "" {
		return s
	}
	// A leading n/b/r/q/k followed by more notation is a piece letter.
	// A bare two-rune square like "b4" stays as-is.
	head := s[0]
	if len(s) > 2 && strings.ContainsRune("nbrqk", rune(head)) {
		s = strings.ToUpper(string(head)) + s[1:]
	}
	// Promotion piece letters are upper-case in SAN ("e8=Q").
	if i := strings.IndexByte(s, '='); i >= 0 && i+1 < len(s) {
		s = s[:i+1] + strings.ToUpper(s[i+1:i+2]) + s[i+2:]
	}
	return s
}

// ApplySAN decodes notation against the current position and applies it.
// The notation may use spoken-pipeline casing ("nf3", "o-o"); bare square
// pairs ("e2e4") are accepted as UCI. Returns the applied move.
func (p *Position) ApplySAN(notation string) (MoveCandidate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applyLocked(notation)
}

func (p *Position) applyLocked(notation string) (MoveCandidate, error) {
	pos := p.g.Position()
	normalized := normalizeSAN(notation)

	m, err := chess.AlgebraicNotation{}.Decode(pos, normalized)
	if err != nil {
		// UCI fallback for from-to square pairs.
		var uciErr error
		m, uciErr = chess.UCINotation{}.Decode(pos, strings.ToLower(normalized))
		if uciErr != nil {
			return MoveCandidate{}, fmt.Errorf("game: no legal move for %q: %w", notation, err)
		}
	}

	c := candidate(pos, m)
	if err := p.g.Move(m); err != nil {
		return MoveCandidate{}, fmt.Errorf("game: apply %q: %w", notation, err)
	}
	return c, nil
}

// ApplyFromTo applies a from-square/to-square move, promoting to promo
// (letter code, "q" by default) when the move is a promotion.
func (p *Position) ApplyFromTo(from, to, promo string) (MoveCandidate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	uci := strings.ToLower(from + to)
	pos := p.g.Position()
	m, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		if promo == "" {
			promo = "q"
		}
		m, err = chess.UCINotation{}.Decode(pos, uci+strings.ToLower(promo))
		if err != nil {
			return MoveCandidate{}, fmt.Errorf("game: no legal move %s-%s: %w", from, to, err)
		}
	}

	c := candidate(pos, m)
	if err := p.g.Move(m); err != nil {
		return MoveCandidate{}, fmt.Errorf("game: apply %s-%s: %w", from, to, err)
	}
	return c, nil
}

// Peek decodes notation against the current position without applying it.
// The resolver uses this to probe interpretations; only the session layer
// mutates the position.
func (p *Position) Peek(notation string) (MoveCandidate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pos := p.g.Position()
	normalized := normalizeSAN(notation)

	m, err := chess.AlgebraicNotation{}.Decode(pos, normalized)
	if err != nil {
		var uciErr error
		m, uciErr = chess.UCINotation{}.Decode(pos, strings.ToLower(normalized))
		if uciErr != nil {
			return MoveCandidate{}, fmt.Errorf("game: no legal move for %q: %w", notation, err)
		}
	}
	return candidate(pos, m), nil
}

// PeekFromTo decodes a from-square/to-square pair without applying it,
// defaulting the promotion piece to promo when the bare pair is illegal.
func (p *Position) PeekFromTo(from, to, promo string) (MoveCandidate, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	uci := strings.ToLower(from + to)
	pos := p.g.Position()
	m, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		if promo == "" {
			promo = "q"
		}
		m, err = chess.UCINotation{}.Decode(pos, uci+strings.ToLower(promo))
		if err != nil {
			return MoveCandidate{}, fmt.Errorf("game: no legal move %s-%s: %w", from, to, err)
		}
	}
	return candidate(pos, m), nil
}

// Undo removes the last applied move. The library keeps no undo stack, so
// the game is rebuilt by replaying all but the final move.
func (p *Position) Undo() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	moves := p.g.Moves()
	if len(moves) == 0 {
		return fmt.Errorf("game: nothing to undo")
	}

	rebuilt := chess.NewGame()
	for _, m := range moves[:len(moves)-1] {
		san := chess.AlgebraicNotation{}.Encode(rebuilt.Position(), m)
		replay, err := chess.AlgebraicNotation{}.Decode(rebuilt.Position(), san)
		if err != nil {
			return fmt.Errorf("game: undo replay %q: %w", san, err)
		}
		if err := rebuilt.Move(replay); err != nil {
			return fmt.Errorf("game: undo replay %q: %w", san, err)
		}
	}
	p.g = rebuilt
	return nil
}

// Reset restores the standard starting position.
func (p *Position) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.g = chess.NewGame()
}

// Resign ends the game with a resignation by the given side.
func (p *Position) Resign(s Side) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s == Black {
		p.g.Resign(chess.Black)
	} else {
		p.g.Resign(chess.White)
	}
}

// FEN returns the current position in Forsyth-Edwards notation.
func (p *Position) FEN() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g.Position().String()
}

// PGN returns the move list in portable game notation.
func (p *Position) PGN() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g.String()
}

// MoveCount returns the number of half-moves played.
func (p *Position) MoveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.g.Moves())
}

// IsCheckmate reports whether the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g.Position().Status() == chess.Checkmate
}

// IsStalemate reports whether the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g.Position().Status() == chess.Stalemate
}

// IsDraw reports whether the game ended in any draw.
func (p *Position) IsDraw() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g.Outcome() == chess.Draw
}

// IsCheck reports whether the side to move is currently in check. The
// check flag rides on the previous move's SAN annotation.
func (p *Position) IsCheck() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	moves := p.g.Moves()
	if len(moves) == 0 {
		return false
	}
	return moves[len(moves)-1].HasTag(chess.Check)
}

// IsGameOver reports whether the game has any outcome (mate, draw,
// resignation).
func (p *Position) IsGameOver() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.g.Outcome() != chess.NoOutcome
}

// Outcome returns a short human-readable outcome ("1-0 by checkmate") or
// empty while the game is running.
func (p *Position) Outcome() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.g.Outcome() == chess.NoOutcome {
		return ""
	}
	return fmt.Sprintf("%s by %s", p.g.Outcome(), p.g.Method())
}

// SANToUCI converts a SAN label to a UCI square pair in the current
// position without applying it. Used to intersect explorer statistics
// (keyed by UCI) with engine output (keyed by SAN).
func (p *Position) SANToUCI(san string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pos := p.g.Position()
	m, err := chess.AlgebraicNotation{}.Decode(pos, normalizeSAN(san))
	if err != nil {
		return "", fmt.Errorf("game: decode %q: %w", san, err)
	}
	return chess.UCINotation{}.Encode(pos, m), nil
}
