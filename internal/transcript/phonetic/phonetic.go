// Package phonetic implements the [transcript.PhoneticMatcher] interface
// against the closed chess vocabulary using Double Metaphone encoding
// combined with Jaro-Winkler similarity for ranking.
//
// Unlike an open entity list, the chess vocabulary is small and fixed:
// piece names, capture and castle words, and board commands. The matcher
// therefore precomputes all phonetic codes at construction and answers
// per-token lookups without allocation-heavy rescans.
package phonetic

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.80
	defaultFuzzyThreshold    = 0.92

	// minTokenLen guards against matching short tokens: file letters,
	// digits, and compact squares must never be rewritten phonetically.
	minTokenLen = 4
)

// vocabulary is the canonical word list tokens are matched against. All
// entries are fixed points of the corrector's dictionary stage or feed
// directly into it.
var vocabulary = []string{
	"pawn", "knight", "bishop", "rook", "queen", "king",
	"takes", "captures", "castle", "kingside", "queenside",
	"resign", "reset", "undo", "flip", "pause", "resume",
	"sound", "help", "board",
}

// Option is a functional option for configuring a [Matcher].
type Option func(*Matcher)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched word to be accepted. Default: 0.80.
func WithPhoneticThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required when no
// phonetic code overlaps and the matcher falls back to pure string
// similarity. Default: 0.92.
func WithFuzzyThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.fuzzyThreshold = threshold
	}
}

// entry is one vocabulary word with its precomputed phonetic codes.
type entry struct {
	word    string
	primary string
	alt     string
}

// Matcher matches single spoken tokens against the chess vocabulary.
// It is read-only after construction and safe for concurrent use.
type Matcher struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
	entries           []entry
	known             map[string]struct{}
}

// New returns a [Matcher] over the built-in chess vocabulary.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
		known:             make(map[string]struct{}, len(vocabulary)),
	}
	for _, o := range opts {
		o(m)
	}
	for _, w := range vocabulary {
		p, a := matchr.DoubleMetaphone(w)
		m.entries = append(m.entries, entry{word: w, primary: p, alt: a})
		m.known[w] = struct{}{}
	}
	return m
}

// Match attempts to map token to a vocabulary word. Canonical words map to
// themselves; tokens shorter than four runes pass through untouched so
// square names and file letters are never rewritten.
func (m *Matcher) Match(token string) (string, bool) {
	tok := strings.ToLower(strings.TrimSpace(token))
	if len(tok) < minTokenLen {
		return token, false
	}
	if _, ok := m.known[tok]; ok {
		return tok, true
	}

	p, a := matchr.DoubleMetaphone(tok)

	var bestWord string
	var bestScore float64
	var bestPhonetic bool

	for _, e := range m.entries {
		overlap := codeOverlap(p, a, e.primary, e.alt)
		score := matchr.JaroWinkler(tok, e.word, false)

		if overlap {
			if score >= m.phoneticThreshold && (!bestPhonetic || score > bestScore) {
				bestWord, bestScore, bestPhonetic = e.word, score, true
			}
		} else if !bestPhonetic {
			if score >= m.fuzzyThreshold && score > bestScore {
				bestWord, bestScore = e.word, score
			}
		}
	}

	if bestWord == "" {
		return token, false
	}
	return bestWord, true
}

// codeOverlap reports whether any non-empty code on one side equals any
// non-empty code on the other.
func codeOverlap(p1, a1, p2, a2 string) bool {
	for _, x := range [2]string{p1, a1} {
		if x == "" {
			continue
		}
		if x == p2 || (a2 != "" && x == a2) {
			return true
		}
	}
	return false
}
