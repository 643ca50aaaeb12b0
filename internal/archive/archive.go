// Package archive persists finished games so sessions can be reviewed
// after the fact. Persistence is optional: when no database is
// configured the app layer simply skips archiving.
package archive

import (
	"context"
	"time"
)

// GameRecord is one finished game.
type GameRecord struct {
	ID          int64
	StartedAt   time.Time
	FinishedAt  time.Time
	Outcome     string // "1-0", "0-1", "1/2-1/2", "*"
	Method      string // e.g. "checkmate", "resignation", "stalemate"
	PGN         string
	FinalFEN    string
	MoveCount   int
	EnginePlays string // "none", "white", "black"
	Strength    int
	Grandmaster bool
}

// Store persists finished games.
type Store interface {
	// Save writes rec and fills in its ID.
	Save(ctx context.Context, rec *GameRecord) error

	// Recent returns the most recently finished games, newest first.
	Recent(ctx context.Context, limit int) ([]GameRecord, error)
}
