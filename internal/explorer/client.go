// Package explorer queries the Lichess opening-explorer masters database
// for per-move statistics and notable games in a position.
package explorer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

// DefaultBaseURL is the public Lichess masters explorer endpoint.
const DefaultBaseURL = "https://explorer.lichess.ovh/masters"

const userAgent = "voxmate/1.0"

// Response caps, matching what the voice surface can usefully present.
const (
	maxMoves    = 10
	maxTopGames = 5
)

// MoveStat is the aggregate record for one move in a position.
type MoveStat struct {
	SAN           string `json:"move"`
	UCI           string `json:"uci"`
	White         int    `json:"white"`
	Draws         int    `json:"draws"`
	Black         int    `json:"black"`
	Total         int    `json:"total"`
	AverageRating int    `json:"average_rating"`
}

// TopGame is one notable master game that reached the position.
type TopGame struct {
	ID          string `json:"id"`
	WhiteName   string `json:"white_name"`
	WhiteRating int    `json:"white_rating"`
	BlackName   string `json:"black_name"`
	BlackRating int    `json:"black_rating"`
	Winner      string `json:"winner"` // "white", "black", or "draw"
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	SAN         string `json:"move"`
}

// Result is a position lookup outcome. Found is false when the position
// is absent from the masters database; that is a normal answer, not an
// error.
type Result struct {
	Moves      []MoveStat `json:"moves"`
	TopGames   []TopGame  `json:"top_games"`
	TotalGames int        `json:"total_games"`
	Found      bool       `json:"found"`
}

// Cache stores lookup results keyed by normalized FEN. Implementations
// must treat storage failures as misses.
type Cache interface {
	Get(ctx context.Context, key string) (*Result, bool)
	Set(ctx context.Context, key string, r *Result)
}

// NormalizeFEN reduces a FEN to its first four fields (placement, side
// to move, castling, en passant): move counters don't affect opening
// statistics and would fragment the cache.
func NormalizeFEN(fen string) string {
	parts := strings.Fields(fen)
	if len(parts) > 4 {
		parts = parts[:4]
	}
	return strings.Join(parts, " ")
}

// Client is a masters-database client with retries and an optional cache.
type Client struct {
	baseURL string
	httpc   *http.Client
	cache   Cache
	logger  *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL overrides the explorer endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithCache adds a lookup cache.
func WithCache(cache Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient returns a client against the public Lichess endpoint.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpc:   &http.Client{Timeout: 5 * time.Second},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// wireResponse mirrors the Lichess explorer JSON shape.
type wireResponse struct {
	White int `json:"white"`
	Draws int `json:"draws"`
	Black int `json:"black"`
	Moves []struct {
		UCI           string `json:"uci"`
		SAN           string `json:"san"`
		AverageRating int    `json:"averageRating"`
		White         int    `json:"white"`
		Draws         int    `json:"draws"`
		Black         int    `json:"black"`
	} `json:"moves"`
	TopGames []struct {
		ID     string `json:"id"`
		UCI    string `json:"uci"`
		Winner string `json:"winner"`
		White  struct {
			Name   string `json:"name"`
			Rating int    `json:"rating"`
		} `json:"white"`
		Black struct {
			Name   string `json:"name"`
			Rating int    `json:"rating"`
		} `json:"black"`
		Year  int `json:"year"`
		Month int `json:"month"`
	} `json:"topGames"`
}

// Lookup fetches master-game statistics for fen. The FEN is normalized
// before querying and caching. Transient failures are retried; a final
// failure returns an error for the caller to degrade to an empty result.
func (c *Client) Lookup(ctx context.Context, fen string) (*Result, error) {
	key := NormalizeFEN(fen)
	if key == "" {
		return nil, fmt.Errorf("explorer: empty fen")
	}

	if c.cache != nil {
		if r, ok := c.cache.Get(ctx, key); ok {
			return r, nil
		}
	}

	// Each attempt decodes into its own value; a partially-decoded failed
	// attempt must not leak fields into a later success.
	var wire wireResponse
	err := retry.Do(
		func() error {
			var attempt wireResponse
			if err := c.fetch(ctx, key, &attempt); err != nil {
				return err
			}
			wire = attempt
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("explorer lookup retry", "attempt", n+1, "err", err)
		}),
	)
	if err != nil {
		return nil, err
	}

	r := assemble(&wire)
	if c.cache != nil {
		c.cache.Set(ctx, key, r)
	}
	return r, nil
}

func (c *Client) fetch(ctx context.Context, normalizedFEN string, out *wireResponse) error {
	u := c.baseURL + "?fen=" + url.QueryEscape(normalizedFEN)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("explorer: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("explorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("explorer: unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("explorer: decode response: %w", err)
	}
	return nil
}

func assemble(wire *wireResponse) *Result {
	r := &Result{}

	for _, m := range wire.Moves {
		if len(r.Moves) == maxMoves {
			break
		}
		r.Moves = append(r.Moves, MoveStat{
			SAN:           m.SAN,
			UCI:           m.UCI,
			White:         m.White,
			Draws:         m.Draws,
			Black:         m.Black,
			Total:         m.White + m.Draws + m.Black,
			AverageRating: m.AverageRating,
		})
	}

	r.TotalGames = wire.White + wire.Draws + wire.Black
	if r.TotalGames == 0 {
		for _, m := range r.Moves {
			r.TotalGames += m.Total
		}
	}

	// The game records carry the move as UCI only; resolve it to SAN
	// through the move list.
	sanByUCI := make(map[string]string, len(wire.Moves))
	for _, m := range wire.Moves {
		sanByUCI[m.UCI] = m.SAN
	}
	for _, g := range wire.TopGames {
		if len(r.TopGames) == maxTopGames {
			break
		}
		winner := g.Winner
		if winner == "" {
			winner = "draw"
		}
		r.TopGames = append(r.TopGames, TopGame{
			ID:          g.ID,
			WhiteName:   g.White.Name,
			WhiteRating: g.White.Rating,
			BlackName:   g.Black.Name,
			BlackRating: g.Black.Rating,
			Winner:      winner,
			Year:        g.Year,
			Month:       g.Month,
			SAN:         sanByUCI[g.UCI],
		})
	}

	r.Found = len(r.Moves) > 0
	return r
}
