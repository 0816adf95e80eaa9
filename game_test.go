package pgntree

import (
	"fmt"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/require"
)

func mustRead(t *testing.T, text string) *Game {
	t.Helper()
	g, err := ReadPGN(text)
	require.NoError(t, err)
	return g
}

func mustMove(t *testing.T, board *chess.Position, san string) *chess.Move {
	t.Helper()
	m, err := chess.AlgebraicNotation{}.Decode(board, san)
	require.NoError(t, err, "decoding %q", san)
	return m
}

func requireEqualGames(t *testing.T, want, got *Game) {
	t.Helper()
	require.Equal(t, *want.Header(), *got.Header(), "headers should match")
	require.Equal(t, want.Tags(), got.Tags(), "extra tags should match")
	require.Equal(t, want.InitialPosition().String(), got.InitialPosition().String(),
		"initial positions should match")
	requireEqualNodes(t, want.Root(), got.Root(), "root")
}

func requireEqualNodes(t *testing.T, want, got *Node, path string) {
	t.Helper()
	if want.PrevMove() == nil {
		require.Nil(t, got.PrevMove(), "%s: expected no move", path)
	} else {
		require.NotNil(t, got.PrevMove(), "%s: expected a move", path)
		require.Equal(t, want.PrevMove().String(), got.PrevMove().String(), path)
	}
	require.Equal(t, want.Comment(), got.Comment(), "%s: comment", path)
	require.Equal(t, want.StartingComment(), got.StartingComment(), "%s: starting comment", path)
	require.Equal(t, want.Nags(), got.Nags(), "%s: nags", path)

	wantChildren, gotChildren := want.Children(), got.Children()
	require.Len(t, gotChildren, len(wantChildren), "%s: children", path)
	for i := range wantChildren {
		requireEqualNodes(t, wantChildren[i], gotChildren[i], fmt.Sprintf("%s/%d", path, i))
	}
}

func TestNewGame(t *testing.T) {
	g := NewGame()

	require.NotNil(t, g.Root())
	require.Nil(t, g.Root().Parent())
	require.Nil(t, g.Root().PrevMove())
	require.Empty(t, g.Root().Children())
	require.Equal(t, chess.StartingPosition().String(), g.InitialPosition().String())
	require.Equal(t, g.Root(), g.Node(g.Root().ID()), "root should resolve by handle")
}

func TestAddNode(t *testing.T) {
	t.Run("legal move extends the tree", func(t *testing.T) {
		g := NewGame()
		e4 := g.AddNode(g.Root(), mustMove(t, g.InitialPosition(), "e4"))

		require.NotNil(t, e4)
		require.Equal(t, e4, g.Root().Mainline())
		require.Equal(t, g.Root(), e4.Parent())
		require.Equal(t, e4, g.Node(e4.ID()), "new node should resolve by handle")
	})

	t.Run("illegal move is rejected", func(t *testing.T) {
		// Qh4 is legal for black after 1. e4 e5 2. Nc3 but not after 1. d4,
		// where the e7 pawn blocks the diagonal.
		open := mustRead(t, "1. e4 e5 2. Nc3")
		tip := open.Root().Mainline().Mainline().Mainline()
		qh4 := mustMove(t, open.BoardAt(tip), "Qh4")

		g := mustRead(t, "1. d4")
		d4 := g.Root().Mainline()
		require.Nil(t, g.AddNode(d4, qh4), "illegal move should be rejected")
		require.Empty(t, d4.Children())
	})

	t.Run("foreign node is rejected", func(t *testing.T) {
		g := NewGame()
		other := NewGame()
		e4 := other.AddNode(other.Root(), mustMove(t, other.InitialPosition(), "e4"))

		require.Nil(t, g.AddNode(e4, mustMove(t, g.InitialPosition(), "e5")))
	})

	t.Run("duplicate moves create distinct nodes", func(t *testing.T) {
		g := NewGame()
		first := g.AddNode(g.Root(), mustMove(t, g.InitialPosition(), "e4"))
		second := g.AddNode(g.Root(), mustMove(t, g.InitialPosition(), "e4"))

		require.NotNil(t, first)
		require.NotNil(t, second)
		require.NotSame(t, first, second, "content-equal nodes must keep separate identities")
		require.Len(t, g.Root().Children(), 2)
	})
}

func TestRemoveNode(t *testing.T) {
	t.Run("detaches the whole subtree", func(t *testing.T) {
		g := mustRead(t, "1. e4 e5 2. Nf3 Nc6")
		n1 := g.Root().Mainline()
		n2 := n1.Mainline()
		n3 := n2.Mainline()
		n4 := n3.Mainline()

		require.Equal(t, n2, g.RemoveNode(n2))

		require.Nil(t, n1.Mainline(), "n1 should have no continuation left")
		require.Equal(t, n1, g.Node(n1.ID()), "n1 should stay reachable")
		require.Nil(t, g.Node(n2.ID()), "removed node handle should stop resolving")
		require.Nil(t, g.Node(n3.ID()), "descendant handles should stop resolving")
		require.Nil(t, g.Node(n4.ID()), "descendant handles should stop resolving")
	})

	t.Run("root cannot be removed", func(t *testing.T) {
		g := NewGame()
		require.Nil(t, g.RemoveNode(g.Root()))
		require.Equal(t, g.Root(), g.Node(g.Root().ID()))
	})

	t.Run("stale handles are rejected after removal", func(t *testing.T) {
		g := mustRead(t, "1. e4 e5")
		n1 := g.Root().Mainline()

		require.NotNil(t, g.RemoveNode(n1))
		require.Nil(t, g.RemoveNode(n1), "second removal should fail, not corrupt the tree")
		require.Nil(t, g.PromoteVariation(n1))
		require.Empty(t, g.Root().Children())
	})

	t.Run("removes only the node with matching identity", func(t *testing.T) {
		g := NewGame()
		first := g.AddNode(g.Root(), mustMove(t, g.InitialPosition(), "e4"))
		second := g.AddNode(g.Root(), mustMove(t, g.InitialPosition(), "e4"))

		require.Equal(t, second, g.RemoveNode(second))
		require.Equal(t, []*Node{first}, g.Root().Children(),
			"the structurally identical twin must survive")
	})
}

func TestPromoteVariation(t *testing.T) {
	t.Run("side line becomes mainline", func(t *testing.T) {
		g := mustRead(t, "1. d4 (1. e4) (1. c4) 1... d5")
		d4 := g.Root().Mainline()
		e4 := g.Root().OtherVariations()[0]
		c4 := g.Root().OtherVariations()[1]

		require.Equal(t, e4, g.PromoteVariation(e4))
		require.Equal(t, []*Node{e4, d4, c4}, g.Root().Children(),
			"relative order of the rest should be preserved")
	})

	t.Run("promoting the mainline is a no-op", func(t *testing.T) {
		g := mustRead(t, "1. d4 (1. e4) 1... d5")
		d4 := g.Root().Mainline()
		before := g.Root().Children()

		require.Equal(t, d4, g.PromoteVariation(d4))
		require.Equal(t, before, g.Root().Children())
	})

	t.Run("root cannot be promoted", func(t *testing.T) {
		g := NewGame()
		require.Nil(t, g.PromoteVariation(g.Root()))
	})
}

func TestBoardAt(t *testing.T) {
	g := mustRead(t, "1. e4 c5")
	n2 := g.Root().Mainline().Mainline()

	require.Equal(t,
		"rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2",
		g.BoardAt(n2).String())
	require.Equal(t,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1",
		g.BoardBefore(n2).String())
	require.Len(t, g.MovesBefore(n2), 2)
}

func TestParseResult(t *testing.T) {
	require.Equal(t, Result{}, ParseResult("*"))
	require.Equal(t, Result{Finished: true, WhiteScore: 1}, ParseResult("1-0"))
	require.Equal(t, Result{Finished: true, BlackScore: 1}, ParseResult("0-1"))
	require.Equal(t, Result{}, ParseResult("1/2-1/2"), "fractional scores stay ongoing")
	require.Equal(t, Result{}, ParseResult("garbage"))

	require.Equal(t, "*", Result{}.String())
	require.Equal(t, "1-0", Result{Finished: true, WhiteScore: 1}.String())
}

func TestHeaderParse(t *testing.T) {
	var h Header

	require.True(t, h.Parse("White", "Alice"))
	require.Equal(t, "Alice", h.White)

	require.True(t, h.Parse("Event", "?"), "sentinel still counts as recognized")
	require.Empty(t, h.Event)

	require.True(t, h.Parse("Date", "????.??.??"))
	require.Empty(t, h.Date)

	require.False(t, h.Parse("ECO", "C50"), "unknown keys are the caller's")
}
