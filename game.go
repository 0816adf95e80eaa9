// Package pgntree models an editable chess game transcript: a tree of
// positions reached by moves, annotated with comments and numeric annotation
// glyphs, importable from and exportable to PGN text.
//
// Chess rules come from github.com/notnil/chess; this package never decides
// legality itself, it only asks the rules engine.
package pgntree

import (
	"strings"

	"github.com/google/uuid"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
)

// Game is a game tree plus its header record and starting position.
//
// Besides the pointer-based Node API, every node is registered in a
// uuid-keyed map so callers that cannot hold pointers (binding layers,
// serialized references) get stable handles via Node IDs.
type Game struct {
	header Header
	tags   map[string]string

	initial *chess.Position

	root  *Node
	nodes map[uuid.UUID]*Node

	log zerolog.Logger
}

// NewGame returns a game with only a root node at the default starting
// position.
func NewGame() *Game {
	return NewGameFromPosition(chess.StartingPosition())
}

// NewGameFromPosition returns an empty game rooted at pos.
func NewGameFromPosition(pos *chess.Position) *Game {
	root := newRoot()
	return &Game{
		tags:    make(map[string]string),
		initial: pos,
		root:    root,
		nodes:   map[uuid.UUID]*Node{root.id: root},
		log:     log.Logger,
	}
}

// SetLogger replaces the diagnostic logger. Structural misuse (operating on
// detached or foreign nodes) is reported through it.
func (g *Game) SetLogger(logger zerolog.Logger) { g.log = logger }

// Root returns the node before any moves.
func (g *Game) Root() *Node { return g.root }

// InitialPosition returns the position the tree is rooted at.
func (g *Game) InitialPosition() *chess.Position { return g.initial }

// Header returns the seven-tag header record for reading and mutation.
func (g *Game) Header() *Header { return &g.header }

// Tag returns the value of a non-standard tag pair.
func (g *Game) Tag(key string) (string, bool) {
	value, ok := g.tags[key]
	return value, ok
}

// SetTag stores a non-standard tag pair.
func (g *Game) SetTag(key, value string) { g.tags[key] = value }

// Tags returns a copy of the non-standard tag pairs.
func (g *Game) Tags() map[string]string { return maps.Clone(g.tags) }

// Node resolves a stable handle to the live node, or nil if no such node is
// (still) part of this tree.
func (g *Game) Node(id uuid.UUID) *Node { return g.nodes[id] }

// contains reports whether n is a live node of this tree. Identity-based:
// a stale pointer whose id was reused by another tree does not pass.
func (g *Game) contains(n *Node) bool {
	return n != nil && g.nodes[n.id] == n
}

// AddNode plays m from parent, attaching a new variation node. This is the
// only way the tree grows and it enforces legality: the result is nil if m
// is illegal at parent or if parent is not part of this tree.
func (g *Game) AddNode(parent *Node, m *chess.Move) *Node {
	if !g.contains(parent) {
		g.log.Warn().Msg("add requested on a node that is not part of this game")
		return nil
	}

	child := parent.NewVariation(g.initial, m)
	if child == nil {
		return nil
	}

	g.nodes[child.id] = child
	return child
}

// RemoveNode detaches n and its whole subtree from the tree. Returns nil if
// n is the root or not part of this tree; handles into the removed subtree
// stop resolving.
func (g *Game) RemoveNode(n *Node) *Node {
	if !g.contains(n) {
		g.log.Warn().Msg("remove requested on a node that is not part of this game")
		return nil
	}

	parent := n.Parent()
	if parent == nil {
		g.log.Warn().Str("node", n.id.String()).Msg("refusing to remove the root node")
		return nil
	}

	// Evict the subtree from the handle map first.
	queue := []*Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		delete(g.nodes, cur.id)
		queue = append(queue, cur.children...)
	}

	if !parent.RemoveVariation(n) {
		g.log.Error().
			Str("node", n.id.String()).
			Str("parent", parent.id.String()).
			Msg("node has a parent yet is not among its children")
		return nil
	}

	return n
}

// PromoteVariation reorders n to be its parent's mainline continuation.
// Returns nil for the root node or a node that is not part of this tree.
func (g *Game) PromoteVariation(n *Node) *Node {
	if !g.contains(n) {
		g.log.Warn().Msg("promote requested on a node that is not part of this game")
		return nil
	}

	parent := n.Parent()
	if parent == nil {
		g.log.Warn().Str("node", n.id.String()).Msg("the root node cannot be promoted")
		return nil
	}

	if !parent.PromoteVariation(n) {
		g.log.Error().
			Str("node", n.id.String()).
			Str("parent", parent.id.String()).
			Msg("node has a parent yet is not among its children")
		return nil
	}

	return n
}

// BoardAt returns the position reached at n, or nil for a foreign node.
func (g *Game) BoardAt(n *Node) *chess.Position {
	if !g.contains(n) {
		return nil
	}
	return n.Board(g.initial)
}

// BoardBefore returns the position n's move was played from, or nil for a
// foreign node.
func (g *Game) BoardBefore(n *Node) *chess.Position {
	if !g.contains(n) {
		return nil
	}
	return n.BoardBefore(g.initial)
}

// MovesBefore returns the move sequence from the root to n.
func (g *Game) MovesBefore(n *Node) []*chess.Move {
	if !g.contains(n) {
		return nil
	}
	return n.Moves()
}

// PGN serializes the game. maxWidth bounds the movetext line width; zero
// disables wrapping. Header lines are never wrapped.
func (g *Game) PGN(maxWidth int) []string {
	w := newPGNWriter(maxWidth)
	g.Accept(w)
	return w.Lines()
}

// String renders the unwrapped PGN, one trailing newline included.
func (g *Game) String() string {
	return strings.Join(g.PGN(0), "\n") + "\n"
}
