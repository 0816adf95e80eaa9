// Package pgn tokenizes Portable Game Notation documents.
//
// The package does not build any data structure itself. ReadGame lexes the
// input and reports what it finds to a Visitor; consumers decide what a
// header, a move or a nested variation means to them.
package pgn

// Visitor receives the structural events of one PGN game in document order.
type Visitor interface {
	// BeginGame is called once, before any other event.
	BeginGame()

	// Header is called for every tag pair in the tag section.
	Header(key, value string)

	// Move is called with the bare SAN text of a move token. Move numbers
	// and !/? suffix annotations are already stripped; suffixes arrive as a
	// following NAG event.
	Move(san string)

	// NAG is called for $n glyphs and for suffix annotations ("!" = 1,
	// "?" = 2, "!!" = 3, "??" = 4, "!?" = 5, "?!" = 6).
	NAG(code uint8)

	// Comment is called for brace and rest-of-line comments. Internal
	// whitespace runs are collapsed to single spaces.
	Comment(text string)

	// BeginVariation is called when a '(' opens a recursive annotation
	// variation. Returning skip = true discards everything up to the
	// matching ')'; EndVariation is not called for skipped variations.
	BeginVariation() (skip bool)

	// EndVariation is called when a variation closes.
	EndVariation()

	// EndGame is called once, after the terminating result token, a
	// following game's tag section, or end of input. Variations still open
	// at that point are closed first.
	EndGame()
}
