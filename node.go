package pgntree

import (
	"github.com/google/uuid"
	"github.com/notnil/chess"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Node is one position in the game tree.
//
// A node owns its children; the first child is the mainline continuation and
// the rest are side variations in insertion order. The parent link is a plain
// back-reference used for navigation only. Node identity is pointer identity:
// two nodes with the same move and annotations are still distinct nodes.
type Node struct {
	id     uuid.UUID
	parent *Node
	move   *chess.Move // move on the edge from parent; nil for the root

	children []*Node

	comment         string
	startingComment string
	nags            map[uint8]struct{}
}

func newRoot() *Node {
	return &Node{id: uuid.New(), nags: make(map[uint8]struct{})}
}

func newChild(parent *Node, m *chess.Move) *Node {
	return &Node{
		id:     uuid.New(),
		parent: parent,
		move:   m,
		nags:   make(map[uint8]struct{}),
	}
}

// ID returns the node's stable handle. It survives any tree mutation and is
// what foreign callers should hold on to instead of the pointer.
func (n *Node) ID() uuid.UUID { return n.id }

// Parent returns nil only for the root node.
func (n *Node) Parent() *Node { return n.parent }

// PrevMove returns the move on the edge from the parent, nil for the root.
func (n *Node) PrevMove() *chess.Move { return n.move }

// Children returns the node's variations, mainline first.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// setChildren atomically replaces the ordered child list. Only the
// remove/promote mutations go through here.
func (n *Node) setChildren(children []*Node) { n.children = children }

// Mainline returns the primary continuation, nil for a leaf.
func (n *Node) Mainline() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// OtherVariations returns every non-mainline child.
func (n *Node) OtherVariations() []*Node {
	if len(n.children) < 2 {
		return nil
	}
	return slices.Clone(n.children[1:])
}

// Siblings returns the parent's other children. Empty for the root.
func (n *Node) Siblings() []*Node {
	if n.parent == nil {
		return nil
	}
	siblings := make([]*Node, 0, len(n.parent.children))
	for _, child := range n.parent.children {
		if child != n {
			siblings = append(siblings, child)
		}
	}
	return siblings
}

// Comment returns the commentary on the position reached at this node.
func (n *Node) Comment() string { return n.comment }

func (n *Node) SetComment(comment string) { n.comment = comment }

// StartingComment returns the commentary on the edge into this node,
// rendered before the move when the node opens a variation.
func (n *Node) StartingComment() string { return n.startingComment }

func (n *Node) SetStartingComment(comment string) { n.startingComment = comment }

// Nags returns the node's numeric annotation glyphs in ascending order.
func (n *Node) Nags() []uint8 {
	nags := maps.Keys(n.nags)
	slices.Sort(nags)
	return nags
}

func (n *Node) SetNags(nags []uint8) {
	maps.Clear(n.nags)
	for _, nag := range nags {
		n.nags[nag] = struct{}{}
	}
}

func (n *Node) AddNag(nag uint8) { n.nags[nag] = struct{}{} }

func (n *Node) ClearNags() { maps.Clear(n.nags) }

// Root walks the parent chain to the tree's root.
func (n *Node) Root() *Node {
	node := n
	for node.parent != nil {
		node = node.parent
	}
	return node
}

// Depth returns the number of half-moves from the root to this node.
func (n *Node) Depth() int {
	depth := 0
	for node := n; node.parent != nil; node = node.parent {
		depth++
	}
	return depth
}

// Moves returns the move sequence from the root to this node.
func (n *Node) Moves() []*chess.Move {
	var moves []*chess.Move
	for node := n; node.parent != nil; node = node.parent {
		moves = append(moves, node.move)
	}
	slices.Reverse(moves)
	return moves
}

// Board replays the node's move chain onto initial and returns the position
// reached at this node. Moves were validated when their nodes were created,
// so the replay applies them without re-checking.
func (n *Node) Board(initial *chess.Position) *chess.Position {
	board := initial
	for _, m := range n.Moves() {
		board = board.Update(m)
	}
	return board
}

// BoardBefore returns the position the node's own move was played from.
// For the root it is the initial position itself.
func (n *Node) BoardBefore(initial *chess.Position) *chess.Position {
	if n.parent == nil {
		return initial
	}
	return n.parent.Board(initial)
}

// NewVariation plays m from this node's position and appends the resulting
// node to the child list. Returns nil if m is not legal here.
func (n *Node) NewVariation(initial *chess.Position, m *chess.Move) *Node {
	if m == nil {
		return nil
	}
	matched := legalMove(n.Board(initial), m)
	if matched == nil {
		return nil
	}
	return n.newVariationUnchecked(matched)
}

// newVariationUnchecked attaches a child for a move that is already known to
// be legal, e.g. one resolved against the current position by SAN decoding.
func (n *Node) newVariationUnchecked(m *chess.Move) *Node {
	child := newChild(n, m)
	n.children = append(n.children, child)
	return child
}

// RemoveVariation detaches child, compared by identity, from this node.
// Returns false if child is not currently one of this node's children.
func (n *Node) RemoveVariation(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.setChildren(slices.Delete(slices.Clone(n.children), i, i+1))
	return true
}

// PromoteVariation moves child, compared by identity, to the front of the
// child list, preserving the relative order of the others. Promoting the
// current mainline is a no-op. Returns false if child is not a child here.
func (n *Node) PromoteVariation(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	if i == 0 {
		return true
	}
	reordered := slices.Delete(slices.Clone(n.children), i, i+1)
	n.setChildren(slices.Insert(reordered, 0, child))
	return true
}

// legalMove resolves m against the legal moves of board. The returned move
// is board's own enumeration entry, which carries the capture/castle/en
// passant tags SAN encoding needs later.
func legalMove(board *chess.Position, m *chess.Move) *chess.Move {
	want := m.String()
	for _, valid := range board.ValidMoves() {
		if valid.String() == want {
			return valid
		}
	}
	return nil
}
