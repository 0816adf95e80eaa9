package pgntree

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
	"github.com/notnil/chess"
	"github.com/pkg/errors"
)

// DOT renders the variation tree in Graphviz dot format. Each node is
// labelled with the SAN of the move that reached it; side-variation edges
// are dashed so the mainline stands out.
func (g *Game) DOT() (string, error) {
	graph := gographviz.NewGraph()
	if err := graph.SetName("game"); err != nil {
		return "", errors.Wrap(err, "initializing dot graph")
	}
	if err := graph.SetDir(true); err != nil {
		return "", errors.Wrap(err, "initializing dot graph")
	}

	counter := 0
	nextName := func() string {
		name := fmt.Sprintf("n%d", counter)
		counter++
		return name
	}

	rootName := nextName()
	if err := graph.AddNode("game", rootName, map[string]string{
		"label": strconv.Quote("start"),
		"shape": "box",
	}); err != nil {
		return "", errors.Wrap(err, "adding dot root")
	}

	var walk func(n *Node, name string, board *chess.Position) error
	walk = func(n *Node, name string, board *chess.Position) error {
		for i, child := range n.Children() {
			childName := nextName()
			san := chess.AlgebraicNotation{}.Encode(board, child.move)
			if err := graph.AddNode("game", childName, map[string]string{
				"label": strconv.Quote(san),
			}); err != nil {
				return errors.Wrapf(err, "adding dot node for %s", san)
			}

			var attrs map[string]string
			if i > 0 {
				attrs = map[string]string{"style": "dashed"}
			}
			if err := graph.AddEdge(name, childName, true, attrs); err != nil {
				return errors.Wrapf(err, "adding dot edge for %s", san)
			}

			if err := walk(child, childName, board.Update(child.move)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(g.root, rootName, g.initial); err != nil {
		return "", err
	}

	return graph.String(), nil
}
