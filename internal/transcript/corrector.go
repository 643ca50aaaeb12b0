// Package transcript normalizes noisy speech-recognition output into the
// canonical token stream the intent classifier and move resolver consume.
//
// Correction is a pure function over strings: lower-casing, a trailing
// check-annotation strip, a flat dictionary of whole-word substitutions,
// and an ordered list of context-sensitive pattern rules. An optional
// phonetic stage catches near-miss piece and command words the literal
// dictionary cannot enumerate. The corrector only normalizes vocabulary;
// it never invents a move, and re-running it on its own output is a no-op.
package transcript

import "strings"

// Option is a functional option for configuring a [Corrector].
type Option func(*Corrector)

// WithPhoneticFallback attaches a [PhoneticMatcher] that runs before the
// dictionary pass. When nil (the default), the phonetic stage is skipped.
func WithPhoneticFallback(m PhoneticMatcher) Option {
	return func(c *Corrector) {
		c.phonetic = m
	}
}

// PhoneticMatcher maps a single unrecognized token to a canonical
// vocabulary word. When matched is false, the token passes through
// unchanged. Implementations must be deterministic and must map canonical
// vocabulary words to themselves.
type PhoneticMatcher interface {
	Match(token string) (corrected string, matched bool)
}

// Corrector rewrites raw transcripts into canonical form. It is read-only
// after construction and safe for concurrent use.
type Corrector struct {
	phonetic PhoneticMatcher
}

// New returns a [Corrector] configured with the supplied options.
func New(opts ...Option) *Corrector {
	c := &Corrector{}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Correct applies the full correction stack to text. It is total: any
// input string yields some output string, worst case unchanged.
//
// Stages, in order:
//  1. lower-case, strip punctuation, collapse whitespace;
//  2. strip a trailing spoken check annotation;
//  3. phonetic fallback on tokens the vocabulary does not recognize;
//  4. whole-word dictionary substitution;
//  5. ordered pattern rules (homophone files, square compaction,
//     disambiguation-filler collapse, fused queen-e tokens).
func (c *Corrector) Correct(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = punct.ReplaceAllString(s, " ")
	s = spaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = trailingCheck.ReplaceAllString(s, "")
	if s == "" {
		return s
	}

	tokens := strings.Fields(s)

	if c.phonetic != nil {
		for i, tok := range tokens {
			if corrected, ok := c.phonetic.Match(tok); ok {
				tokens[i] = corrected
			}
		}
	}

	for i, tok := range tokens {
		if repl, ok := dictionary[tok]; ok {
			tokens[i] = repl
		}
	}
	s = strings.Join(tokens, " ")

	for _, rule := range patternRules {
		s = rule.re.ReplaceAllString(s, rule.repl)
	}

	return strings.TrimSpace(s)
}
