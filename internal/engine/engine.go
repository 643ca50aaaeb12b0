// Package engine defines the analysis-source contract: given a position,
// produce the best moves with evaluations. The UCI subprocess
// implementation lives in the uci subpackage.
package engine

import "context"

// Kind tags how an evaluation is expressed.
type Kind string

const (
	// KindCentipawn means Evaluation is in pawns (centipawns / 100).
	KindCentipawn Kind = "cp"
	// KindMate means Evaluation is a signed distance to mate in moves;
	// negative when the side to move is getting mated.
	KindMate Kind = "mate"
)

// Search parameter bounds. Requests outside these are clamped, matching
// the limits the HTTP surface advertises.
const (
	MinDepth     = 1
	MaxDepth     = 30
	DefaultDepth = 15

	MinTopMoves     = 1
	MaxTopMoves     = 10
	DefaultTopMoves = 5
)

// ClampDepth bounds a requested search depth, mapping zero to the default.
func ClampDepth(d int) int {
	switch {
	case d == 0:
		return DefaultDepth
	case d < MinDepth:
		return MinDepth
	case d > MaxDepth:
		return MaxDepth
	}
	return d
}

// ClampTopMoves bounds a requested candidate count, mapping zero to the
// default.
func ClampTopMoves(n int) int {
	switch {
	case n == 0:
		return DefaultTopMoves
	case n < MinTopMoves:
		return MinTopMoves
	case n > MaxTopMoves:
		return MaxTopMoves
	}
	return n
}

// MoveInfo is one engine candidate. Slices of MoveInfo are always ordered
// best-first; downstream consumers rely on that ordering.
type MoveInfo struct {
	SAN        string  `json:"move"`
	UCI        string  `json:"uci"`
	Evaluation float64 `json:"evaluation"`
	Kind       Kind    `json:"type"`
}

// Eval is a whole-position evaluation.
type Eval struct {
	Value float64 `json:"value"`
	Kind  Kind    `json:"type"`
}

// Analyzer is the analysis capability the session and HTTP layers
// consume. Implementations must honor ctx cancellation mid-search.
type Analyzer interface {
	// TopMoves returns up to n best moves for the FEN position at the
	// given depth, best-first. depth and n are clamped to the package
	// bounds.
	TopMoves(ctx context.Context, fen string, depth, n int) ([]MoveInfo, error)

	// Evaluate scores the position from the side to move's perspective.
	Evaluate(ctx context.Context, fen string) (Eval, error)
}
