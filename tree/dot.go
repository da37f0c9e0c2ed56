package tree

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

/*
WriteDOT takes a tree, a graph name and an io.Writer and writes on it the
graphviz DOT representation of the tree, labelling split nodes with their
rules and terminal nodes with their outputs.
*/
func WriteDOT[R any](t *Tree[R], name string, w io.Writer) error {
	graphAst, err := gographviz.Parse([]byte(fmt.Sprintf("digraph %s {}", strconv.Quote(name))))
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}
	graph := gographviz.NewGraph()
	err = gographviz.Analyse(graphAst, graph)
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}
	graphName := graph.Name
	ids := make(map[Node[R]]string)
	var next int
	idFor := func(n Node[R]) string {
		id, ok := ids[n]
		if !ok {
			id = fmt.Sprintf("n%d", next)
			next++
			ids[n] = id
		}
		return id
	}
	err = t.Traverse(context.Background(), false, func(_ context.Context, n Node[R], _ int) error {
		id := idFor(n)
		switch node := n.(type) {
		case *SplitNode[R]:
			err := graph.AddNode(graphName, id, map[string]string{
				"label": strconv.Quote(fmt.Sprintf("%v\nrows = %d", node.Rule, node.Rows)),
				"shape": "box",
			})
			if err != nil {
				return err
			}
			for _, child := range []struct {
				n     Node[R]
				side  Side
				label string
			}{{node.Left, Left, "yes"}, {node.Right, Right, "no"}} {
				label := child.label
				if node.NASide == child.side {
					label += ", NA"
				}
				err = graph.AddEdge(id, idFor(child.n), true, map[string]string{"label": strconv.Quote(label)})
				if err != nil {
					return err
				}
			}
		case *TerminalNode[R]:
			return graph.AddNode(graphName, id, map[string]string{
				"label": strconv.Quote(fmt.Sprintf("%v\nrows = %d", node.Response, node.Rows)),
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}
	_, err = io.WriteString(w, graph.String())
	return err
}
