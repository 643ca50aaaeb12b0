package autoplay

import (
	"math"

	"lukechampine.com/frand"
)

// Source tags where a pick came from.
type Source int

const (
	SourceBook Source = iota
	SourceEngine
)

// String returns "book" or "engine".
func (s Source) String() string {
	if s == SourceBook {
		return "book"
	}
	return "engine"
}

// BookMove is one master-game statistic for the current position.
type BookMove struct {
	SAN   string
	Total int // games played across all results
}

// TopGame is a notable master game that continued with a given move.
type TopGame struct {
	SAN         string
	White       string
	Black       string
	WhiteRating int
	BlackRating int
	Year        int
	Winner      string // "white", "black", or "draw"
}

// EngineMove is one engine candidate with its evaluation.
type EngineMove struct {
	SAN        string
	Evaluation float64 // pawns for "cp", moves-to-mate for "mate"
	Kind       string  // "cp" or "mate"
}

// Pick is a selected autoplay move.
type Pick struct {
	SAN    string
	Source Source

	// JustLeftBook is true on the single pick where the session crossed
	// from book territory to engine territory.
	JustLeftBook bool

	// Game is the exemplar master game in grandmaster mode, when one
	// matched the chosen move.
	Game *TopGame
}

// mate scores dominate any centipawn evaluation; each extra move to mate
// costs a full queen-and-change so shorter mates always rank first.
const (
	mateBase = 10000
	mateStep = 1000
)

// tierParams are the strength-dependent knobs: tolerance is the maximum
// centipawn loss a candidate may have versus the best move and still be
// considered; bias steepens the preference for near-best candidates.
type tierParams struct {
	tolerance float64
	bias      float64
}

var tiers = map[Strength]tierParams{
	Strength2500: {tolerance: 2, bias: 10000},
	Strength2000: {tolerance: 20, bias: 50},
	Strength1500: {tolerance: 50, bias: 10},
	Strength1000: {tolerance: 100, bias: 3},
}

// rng is the randomness the selector consumes. *frand.RNG satisfies it;
// tests inject math/rand for determinism.
type rng interface {
	Float64() float64
}

// Selector picks autoplay moves for a session. Zero value is not usable;
// construct with [NewSelector].
type Selector struct {
	rnd rng
}

// Option configures a [Selector].
type Option func(*Selector)

// WithRand overrides the randomness source.
func WithRand(r rng) Option {
	return func(s *Selector) { s.rnd = r }
}

// NewSelector returns a selector backed by a fast CSPRNG.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{rnd: frand.New()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SelectMove picks the next move for the engine-played side. Book data
// always wins over engine data when present. Returns nil when neither
// source produced candidates; the caller falls back to doing nothing.
//
// SelectMove updates sess's book tracker: a book pick re-arms it, an
// engine pick after book play consumes the one-shot out-of-book signal.
func (sel *Selector) SelectMove(sess *Session, book []BookMove, games []TopGame, eng []EngineMove) *Pick {
	if len(book) > 0 {
		return sel.pickBook(sess, book, games)
	}
	if len(eng) > 0 {
		return sel.pickEngine(sess, eng)
	}
	return nil
}

func (sel *Selector) pickBook(sess *Session, book []BookMove, games []TopGame) *Pick {
	defer sess.markBookMove()

	if sess.Grandmaster() {
		if p := sel.pickGrandmaster(book, games); p != nil {
			return p
		}
	}

	// Popularity-weighted draw: a move played in 60% of master games is
	// chosen about 60% of the time.
	var total float64
	for _, m := range book {
		total += float64(m.Total)
	}
	if total <= 0 {
		return &Pick{SAN: book[0].SAN, Source: SourceBook}
	}

	r := sel.rnd.Float64() * total
	for _, m := range book {
		r -= float64(m.Total)
		if r < 0 {
			return &Pick{SAN: m.SAN, Source: SourceBook}
		}
	}
	return &Pick{SAN: book[len(book)-1].SAN, Source: SourceBook}
}

// pickGrandmaster restricts the pool to moves that appear in the notable
// games list and surfaces one of those games as an exemplar. Returns nil
// when no book move has a notable game, letting the caller fall back to
// the popularity draw.
func (sel *Selector) pickGrandmaster(book []BookMove, games []TopGame) *Pick {
	byMove := make(map[string][]TopGame, len(games))
	for _, g := range games {
		byMove[g.SAN] = append(byMove[g.SAN], g)
	}

	var pool []string
	for _, m := range book {
		if len(byMove[m.SAN]) > 0 {
			pool = append(pool, m.SAN)
		}
	}
	if len(pool) == 0 {
		return nil
	}

	san := pool[sel.intn(len(pool))]
	exemplars := byMove[san]
	g := exemplars[sel.intn(len(exemplars))]
	return &Pick{SAN: san, Source: SourceBook, Game: &g}
}

func (sel *Selector) pickEngine(sess *Session, eng []EngineMove) *Pick {
	params := tiers[sess.Strength()]

	scores := make([]float64, len(eng))
	for i, m := range eng {
		scores[i] = cpScore(m)
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s > best {
			best = s
		}
	}

	// Candidates within tolerance of the best, weighted so that smaller
	// losses are exponentially favored at high bias.
	var (
		idx     []int
		weights []float64
		sum     float64
	)
	for i, s := range scores {
		dist := best - s
		if dist > params.tolerance {
			continue
		}
		w := 1.0 / (1.0 + dist*params.bias/10.0)
		idx = append(idx, i)
		weights = append(weights, w)
		sum += w
	}

	chosen := idx[len(idx)-1]
	r := sel.rnd.Float64() * sum
	for k, i := range idx {
		r -= weights[k]
		if r < 0 {
			chosen = i
			break
		}
	}

	return &Pick{
		SAN:          eng[chosen].SAN,
		Source:       SourceEngine,
		JustLeftBook: sess.leaveBook(),
	}
}

// cpScore converts an engine evaluation to a comparable centipawn score
// from the mover's perspective.
func cpScore(m EngineMove) float64 {
	if m.Kind == "mate" {
		dist := math.Abs(m.Evaluation)
		if dist < 1 {
			dist = 1
		}
		score := float64(mateBase) - float64(mateStep)*(dist-1)
		if m.Evaluation < 0 {
			return -score
		}
		return score
	}
	return m.Evaluation * 100
}

// intn draws a uniform int in [0, n) from the injected source.
func (sel *Selector) intn(n int) int {
	i := int(sel.rnd.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}
