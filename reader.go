package pgntree

import (
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/notnil/chess"
	"github.com/pkg/errors"

	"github.com/pgntree/pgn"
)

// ReadPGN parses one game from PGN text. Malformed individual tokens are
// skipped; only structural damage is an error.
func ReadPGN(text string) (*Game, error) {
	return ReadGame(strings.NewReader(text))
}

// ReadGame parses one game from r. Skipped tokens are logged through the
// game's logger but do not fail the parse; use ReadGameStrict to see them.
func ReadGame(r io.Reader) (*Game, error) {
	b := &gameBuilder{}
	if err := pgn.ReadGame(r, b); err != nil {
		return nil, err
	}

	if warns := b.warns.ErrorOrNil(); warns != nil {
		b.game.log.Warn().Err(warns).Msg("pgn import skipped tokens")
	}
	return b.game, nil
}

// ReadGameStrict parses one game from r and additionally returns the
// accumulated skip diagnostics as an error. The game is still returned; it
// holds everything that did parse.
func ReadGameStrict(r io.Reader) (*Game, error) {
	b := &gameBuilder{}
	if err := pgn.ReadGame(r, b); err != nil {
		return nil, err
	}
	return b.game, b.warns.ErrorOrNil()
}

// gameBuilder consumes tokenizer events and grows a Game.
//
// The variation stack tracks the current insertion point; its top is the
// node the next move extends. Opening a variation pushes the parent of the
// top node, because a variation branches from the position before the move
// it is an alternative to.
type gameBuilder struct {
	game *Game

	stack       []*Node
	inVariation bool

	// startingComment buffers comment text seen before a variation's first
	// move; it becomes that move's starting comment.
	startingComment string

	warns *multierror.Error
}

var _ pgn.Visitor = (*gameBuilder)(nil)

func (b *gameBuilder) top() *Node {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *gameBuilder) BeginGame() {
	b.game = NewGame()
	b.stack = []*Node{b.game.root}
	b.inVariation = false
	b.startingComment = ""
	b.warns = nil
}

func (b *gameBuilder) Header(key, value string) {
	if key == "FEN" {
		pos := &chess.Position{}
		if err := pos.UnmarshalText([]byte(value)); err != nil {
			b.warns = multierror.Append(b.warns,
				errors.Wrapf(err, "invalid FEN header %q", value))
		} else {
			b.game.initial = pos
		}
	}

	if !b.game.header.Parse(key, value) {
		b.game.tags[key] = value
	}
}

func (b *gameBuilder) Move(san string) {
	cur := b.top()
	if cur == nil {
		return
	}

	board := cur.Board(b.game.initial)
	m, err := chess.AlgebraicNotation{}.Decode(board, san)
	if err != nil {
		b.warns = multierror.Append(b.warns,
			errors.Wrapf(err, "unresolvable move %q", san))
		return
	}

	// Resolution against the position already guarantees legality.
	child := cur.newVariationUnchecked(m)
	if b.startingComment != "" {
		child.SetStartingComment(b.startingComment)
		b.startingComment = ""
	}
	b.game.nodes[child.id] = child

	b.stack[len(b.stack)-1] = child
	b.inVariation = true
}

func (b *gameBuilder) NAG(code uint8) {
	if cur := b.top(); cur != nil {
		cur.AddNag(code)
	}
}

func (b *gameBuilder) Comment(text string) {
	cur := b.top()
	if cur == nil {
		return
	}

	// A comment right after a move trails that move's node; a comment before
	// any move of the game is the leading game comment on the root.
	if b.inVariation || (cur.parent == nil && len(cur.children) == 0) {
		cur.comment = joinComments(cur.comment, text)
		return
	}

	// Otherwise it precedes the next move and starts its variation.
	b.startingComment = joinComments(b.startingComment, text)
}

func (b *gameBuilder) BeginVariation() bool {
	cur := b.top()
	if cur == nil {
		return true
	}

	parent := cur.Parent()
	if parent == nil {
		b.warns = multierror.Append(b.warns,
			errors.New("variation opened before any move"))
		return true
	}

	b.stack = append(b.stack, parent)
	b.inVariation = false
	return false
}

func (b *gameBuilder) EndVariation() {
	if len(b.stack) > 1 {
		b.stack = b.stack[:len(b.stack)-1]
	}
}

func (b *gameBuilder) EndGame() {
	b.stack = b.stack[:1]
	b.inVariation = false
	b.startingComment = ""
}

func joinComments(existing, addition string) string {
	if existing == "" {
		return addition
	}
	return existing + " " + addition
}
