// Package speech owns the two contact points with the voice layer: a
// vocalizer that expands move notation into speakable words, and the
// gate that serializes listening, speaking, and processing so a
// transcript can never race an announcement.
package speech

import "strings"

var spokenPieces = map[byte]string{
	'N': "knight", 'B': "bishop", 'R': "rook", 'Q': "queen", 'K': "king",
}

var spokenPromotions = map[byte]string{
	'Q': "queen", 'N': "knight", 'R': "rook", 'B': "bishop",
	'q': "queen", 'n': "knight", 'r': "rook", 'b': "bishop",
}

// Vocalize expands a SAN move into spoken words: piece letters become
// piece names, the capture operator becomes "takes", castling and
// check/checkmate/promotion markers become phrases. Unknown characters
// are dropped rather than spoken.
//
//	Vocalize("Qxf7#") == "queen takes f7 checkmate"
//	Vocalize("e8=Q")  == "e8 promotes to queen"
func Vocalize(san string) string {
	s := strings.TrimSpace(san)
	if s == "" {
		return ""
	}

	var suffix string
	switch {
	case strings.HasSuffix(s, "#"):
		s, suffix = strings.TrimSuffix(s, "#"), "checkmate"
	case strings.HasSuffix(s, "+"):
		s, suffix = strings.TrimSuffix(s, "+"), "check"
	}

	var promotion string
	if i := strings.IndexByte(s, '='); i >= 0 {
		if i+1 < len(s) {
			if name, ok := spokenPromotions[s[i+1]]; ok {
				promotion = "promotes to " + name
			}
		}
		s = s[:i]
	}

	var words []string
	switch strings.ToUpper(strings.ReplaceAll(s, "0", "O")) {
	case "O-O":
		words = []string{"castles kingside"}
	case "O-O-O":
		words = []string{"castles queenside"}
	default:
		words = spellMove(s)
	}

	if promotion != "" {
		words = append(words, promotion)
	}
	if suffix != "" {
		words = append(words, suffix)
	}
	return strings.Join(words, " ")
}

// spellMove walks the notation body left to right, grouping file+rank
// pairs into square tokens.
func spellMove(s string) []string {
	var words []string
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case spokenPieces[c] != "":
			words = append(words, spokenPieces[c])
		case c == 'x':
			words = append(words, "takes")
		case c >= 'a' && c <= 'h' && i+1 < len(s) && s[i+1] >= '1' && s[i+1] <= '8':
			words = append(words, s[i:i+2])
			i++
		case c >= 'a' && c <= 'h', c >= '1' && c <= '8':
			// Lone file or rank disambiguator, e.g. the b in Nbd2.
			words = append(words, string(c))
		}
	}
	return words
}
