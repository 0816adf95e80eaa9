package pgntree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Visitor receives the elements of a game in PGN document order. Accept
// drives one; pgnWriter is the text renderer, but any exporter can plug in.
type Visitor interface {
	BeginGame()

	BeginHeaders()
	VisitHeader(name, value string)
	EndHeaders()

	// VisitMove receives the position the move is played from.
	VisitMove(board *chess.Position, m *chess.Move)
	VisitComment(comment string)
	VisitNAG(nag uint8)

	// BeginVariation may return skip = true to drop the variation's content;
	// EndVariation is then not called for it.
	BeginVariation() (skip bool)
	EndVariation()

	VisitResult(result string)
	EndGame()
}

// Accept walks the game in serialization order: headers, the leading game
// comment if any, the move tree depth-first, then the result.
func (g *Game) Accept(v Visitor) {
	v.BeginGame()

	v.BeginHeaders()
	g.header.accept(v)
	keys := maps.Keys(g.tags)
	slices.Sort(keys)
	for _, key := range keys {
		v.VisitHeader(key, g.tags[key])
	}
	v.EndHeaders()

	if comment := g.root.Comment(); comment != "" {
		v.VisitComment(comment)
	}

	acceptNode(g.root, g.initial, v)

	v.VisitResult(g.header.Result.String())
	v.EndGame()
}

// acceptNode emits the continuations of n. board is the position at n.
//
// The mainline child's edge content comes first, then each side variation is
// emitted in full inside its bracket pair, and only then is the mainline
// recursed into, so the main continuation reads on past its alternatives.
func acceptNode(n *Node, board *chess.Position, v Visitor) {
	main := n.Mainline()
	if main == nil {
		return
	}

	acceptEdge(main, board, v)

	for _, variation := range n.OtherVariations() {
		if v.BeginVariation() {
			continue
		}
		acceptEdge(variation, board, v)
		acceptNode(variation, board.Update(variation.move), v)
		v.EndVariation()
	}

	acceptNode(main, board.Update(main.move), v)
}

// acceptEdge emits the content of the edge into n: starting comment, the
// move itself, NAGs, then the trailing comment. prev is the position the
// move is played from.
func acceptEdge(n *Node, prev *chess.Position, v Visitor) {
	if comment := n.StartingComment(); comment != "" {
		v.VisitComment(comment)
	}

	v.VisitMove(prev, n.move)

	for _, nag := range n.Nags() {
		v.VisitNAG(nag)
	}

	if comment := n.Comment(); comment != "" {
		v.VisitComment(comment)
	}
}

// pgnWriter renders visitor events into PGN text lines.
//
// Tokens accumulate in a line buffer; when appending a token would push the
// buffer past maxWidth the buffer is flushed first. Header lines bypass the
// buffer entirely and are never wrapped.
type pgnWriter struct {
	maxWidth int // 0 = no wrapping

	lines []string
	cur   string

	// forceMoveNumber requests an explicit "N..." prefix on the next black
	// move, set after anything that interrupts move-number continuity.
	forceMoveNumber bool
}

func newPGNWriter(maxWidth int) *pgnWriter {
	return &pgnWriter{maxWidth: maxWidth}
}

// Lines returns the rendered lines after the visit completed.
func (w *pgnWriter) Lines() []string { return w.lines }

func (w *pgnWriter) flush() {
	line := strings.TrimSpace(w.cur)
	w.cur = ""
	if line == "" {
		return
	}
	w.lines = append(w.lines, line)
}

func (w *pgnWriter) writeToken(token string) {
	if w.maxWidth > 0 &&
		(w.maxWidth < len(w.cur) || w.maxWidth-len(w.cur) < len(token)) {
		w.flush()
	}
	w.cur += token
}

func (w *pgnWriter) writeLine(line string) {
	w.flush()
	w.lines = append(w.lines, strings.TrimSpace(line))
}

func (w *pgnWriter) BeginGame() {
	w.lines = nil
	w.cur = ""
	w.forceMoveNumber = false
}

func (w *pgnWriter) BeginHeaders() {}

func (w *pgnWriter) VisitHeader(name, value string) {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	w.writeLine(fmt.Sprintf("[%s \"%s\"]", name, escaped))
}

func (w *pgnWriter) EndHeaders() {
	// One blank line separates the tag section from the movetext.
	w.writeLine("")
}

func (w *pgnWriter) VisitMove(board *chess.Position, m *chess.Move) {
	var prefix string
	switch {
	case board.Turn() == chess.White:
		prefix = fmt.Sprintf("%d. ", fullmoveNumber(board))
	case w.forceMoveNumber:
		prefix = fmt.Sprintf("%d... ", fullmoveNumber(board))
	}

	san := chess.AlgebraicNotation{}.Encode(board, m)
	w.writeToken(prefix + san + " ")

	w.forceMoveNumber = false
}

func (w *pgnWriter) VisitComment(comment string) {
	w.writeToken("{ " + strings.TrimSpace(comment) + " } ")
	w.forceMoveNumber = true
}

func (w *pgnWriter) VisitNAG(nag uint8) {
	w.writeToken("$" + strconv.Itoa(int(nag)) + " ")
}

func (w *pgnWriter) BeginVariation() bool {
	w.forceMoveNumber = true
	w.writeToken("( ")
	return false
}

func (w *pgnWriter) EndVariation() {
	w.forceMoveNumber = true
	w.writeToken(") ")
}

func (w *pgnWriter) VisitResult(result string) {
	w.writeToken(result + " ")
}

func (w *pgnWriter) EndGame() {
	w.flush()
}

// fullmoveNumber reads the fullmove counter off the position. notnil/chess
// does not expose it directly, so it comes from the FEN's sixth field.
func fullmoveNumber(board *chess.Position) int {
	fields := strings.Fields(board.String())
	if len(fields) != 6 {
		return 1
	}
	n, err := strconv.Atoi(fields[5])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
