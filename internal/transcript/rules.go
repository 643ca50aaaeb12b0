package transcript

import "regexp"

// dictionary maps whole spoken tokens to canonical tokens. Literal entries
// are order-independent; every replacement value is itself a fixed point of
// the table so that re-running the corrector cannot change its own output.
var dictionary = map[string]string{
	// Number words and their common mishearings.
	"one": "1", "won": "1", "juan": "1",
	"two": "2", "too": "2", "tu": "2",
	"three": "3", "tree": "3", "free": "3",
	"four": "4", "for": "4", "fore": "4", "forth": "4",
	"five": "5", "fife": "5", "hive": "5",
	"six": "6", "sex": "6", "sicks": "6", "cigs": "6", "sics": "6",
	"seven": "7", "heaven": "7",
	"eight": "8", "ate": "8", "aid": "8",

	// Piece-name variants.
	"brook": "rook", "rock": "rook", "ruck": "rook", "rooks": "rook",
	"rick": "rook", "wreck": "rook",
	"night": "knight", "nite": "knight", "knights": "knight", "nights": "knight",
	"horse": "knight", "knife": "knight",
	"bishops": "bishop", "bishopp": "bishop", "bisharp": "bishop",
	"queens": "queen", "clean": "queen", "quin": "queen", "wean": "queen",
	"kings": "king", "keen": "king",
	"pawns": "pawn", "pond": "pawn", "prawn": "pawn", "pon": "pawn",
	"upon": "pawn", "palm": "pawn",

	// Capture synonyms collapse to the capture operator.
	"takes": "x", "take": "x", "captures": "x", "capture": "x",
	"times": "x", "taxes": "x",

	// Castle synonyms.
	"castles": "castle", "castling": "castle", "kassel": "castle",
	"casel": "castle", "cassel": "castle",
	"longside": "queenside", "shortside": "kingside",
	"short": "kingside", "long": "queenside",

	// Board-command synonyms.
	"restart": "reset", "rewind": "undo", "rotate": "flip",
	"resigned": "resign", "resigns": "resign",
}

// patternRule is an ordered context-sensitive rewrite. Rules run after the
// dictionary pass so digit words are already digits, and in slice order;
// homophone-file expansion must precede square collapsing, which must
// precede the disambiguation-filler rule's cleanup.
type patternRule struct {
	re   *regexp.Regexp
	repl string
}

var patternRules = []patternRule{
	// Fused "queen e" tokens produced by the recognizer.
	{regexp.MustCompile(`\bqueen(?:ie|y)\s+([1-8])\b`), "queen e$1"},
	{regexp.MustCompile(`\bqueen(?:ie|y)\b`), "queen e"},

	// Homophone column letters. These only fire directly before a digit, so
	// ordinary words ("see the board") are left alone.
	{regexp.MustCompile(`\b(?:hey|ay|ace|eh)\s+([1-8])\b`), "a$1"},
	{regexp.MustCompile(`\b(?:be|bee)\s+([1-8])\b`), "b$1"},
	{regexp.MustCompile(`\b(?:see|sea|si)\s+([1-8])\b`), "c$1"},
	{regexp.MustCompile(`\b(?:dee|de)\s+([1-8])\b`), "d$1"},
	{regexp.MustCompile(`\b(?:ee)\s+([1-8])\b`), "e$1"},
	{regexp.MustCompile(`\b(?:off|ef|eff)\s+([1-8])\b`), "f$1"},
	{regexp.MustCompile(`\b(?:gee|ji)\s+([1-8])\b`), "g$1"},
	{regexp.MustCompile(`\b(?:age|ache|aitch|each)\s+([1-8])\b`), "h$1"},

	// Disambiguation-filler collapse: "rook a to a5" → "rook aa5". The
	// filler may have been heard as "two" (already rewritten to "2").
	{regexp.MustCompile(`\b(pawn|knight|bishop|rook|queen|king)\s+([a-h])\s+(?:to|2)\s+([a-h][1-8])\b`), "$1 $2$3"},

	// Compact spoken squares: "e 4" → "e4".
	{regexp.MustCompile(`\b([a-h])\s+([1-8])\b`), "$1$2"},
}

// trailingCheck strips a spoken check annotation from the end of an
// utterance. It carries no move information and confuses parsing.
var trailingCheck = regexp.MustCompile(`(?:\s*(?:check|checkmate|mate|plus|\+))+$`)

// punct matches punctuation the recognizer sprinkles into transcripts.
var punct = regexp.MustCompile(`[.,!?;:]+`)

// spaces collapses runs of whitespace.
var spaces = regexp.MustCompile(`\s+`)
