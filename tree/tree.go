/*
Package tree provides the binary decision trees grown by forests and the
prediction of samples through them.
*/
package tree

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pbanos/grove/covariate"
)

// Error represents an error related with trees
type Error string

// ErrEmptyTree is returned when predicting with a tree that has no root
const ErrEmptyTree = Error("tree has no root node")

func (e Error) Error() string {
	return string(e)
}

// Tree represents a decision tree whose terminal nodes hold outputs of type R.
type Tree[R any] struct {
	Root Node[R]
}

// New takes the root node of a tree and returns the tree
func New[R any](root Node[R]) *Tree[R] {
	return &Tree[R]{root}
}

/*
Predict takes a sample and returns the output of the terminal node it reaches,
or an error. Reaching a split node whose covariate the sample has no value
for is a *covariate.MissingValueError unless the node routes missing values.
Asking for a covariate index the sample does not have fails with the sample's
error.
*/
func (t *Tree[R]) Predict(s covariate.Sample) (R, error) {
	tn, err := t.TerminalNodeFor(s)
	if err != nil {
		var zero R
		return zero, err
	}
	return tn.Response, nil
}

/*
TerminalNodeFor takes a sample and returns the terminal node it reaches or an
error, as Predict does.
*/
func (t *Tree[R]) TerminalNodeFor(s covariate.Sample) (*TerminalNode[R], error) {
	if t == nil || t.Root == nil {
		return nil, ErrEmptyTree
	}
	n := t.Root
	for {
		switch node := n.(type) {
		case *TerminalNode[R]:
			return node, nil
		case *SplitNode[R]:
			next, err := node.route(s)
			if err != nil {
				return nil, err
			}
			n = next
		default:
			return nil, fmt.Errorf("unexpected node of type %T", n)
		}
	}
}

func (sn *SplitNode[R]) route(s covariate.Sample) (Node[R], error) {
	v, err := s.ValueAt(sn.Rule.CovariateIndex())
	if err != nil {
		return nil, err
	}
	if v == nil || v.IsNA() {
		switch sn.NASide {
		case Left:
			return sn.Left, nil
		case Right:
			return sn.Right, nil
		}
		return nil, &covariate.MissingValueError{RowID: s.ID(), Rule: sn.Rule}
	}
	left, err := sn.Rule.IsLeftHand(v)
	if errors.Is(err, covariate.ErrMissingValue) {
		return nil, &covariate.MissingValueError{RowID: s.ID(), Rule: sn.Rule}
	}
	if err != nil {
		return nil, err
	}
	if left {
		return sn.Left, nil
	}
	return sn.Right, nil
}

/*
Traverse takes a context, a bottomup boolean and an error-returning function
that takes a context, a node and its depth, and goes through the tree running
the function for every node. It calls the function with a parent node before
its children if bottomup is false, and after them if it is true. Left
children go before right ones. If the context is cancelled or the function
returns an error, the traversal is aborted and the error returned.
*/
func (t *Tree[R]) Traverse(ctx context.Context, bottomup bool, f func(context.Context, Node[R], int) error) error {
	if t == nil || t.Root == nil {
		return nil
	}
	return traverse[R](ctx, t.Root, 0, bottomup, f)
}

func traverse[R any](ctx context.Context, n Node[R], depth int, bottomup bool, f func(context.Context, Node[R], int) error) error {
	err := ctx.Err()
	if err != nil {
		return err
	}
	if !bottomup {
		err = f(ctx, n, depth)
		if err != nil {
			return err
		}
	}
	if sn, ok := n.(*SplitNode[R]); ok {
		err = traverse[R](ctx, sn.Left, depth+1, bottomup, f)
		if err != nil {
			return err
		}
		err = traverse[R](ctx, sn.Right, depth+1, bottomup, f)
		if err != nil {
			return err
		}
	}
	if bottomup {
		return f(ctx, n, depth)
	}
	return nil
}

/*
Stats summarizes the shape of a tree.
*/
type Stats struct {
	SplitNodes    int
	TerminalNodes int
	Depth         int
	// number of split nodes on each covariate index
	Splits map[int]int
}

// Stats returns the shape summary of the tree
func (t *Tree[R]) Stats() Stats {
	stats := Stats{Splits: make(map[int]int)}
	t.Traverse(context.Background(), false, func(_ context.Context, n Node[R], depth int) error {
		if depth > stats.Depth {
			stats.Depth = depth
		}
		if sn, ok := n.(*SplitNode[R]); ok {
			stats.SplitNodes++
			stats.Splits[sn.Rule.CovariateIndex()]++
		} else {
			stats.TerminalNodes++
		}
		return nil
	})
	return stats
}

func (t *Tree[R]) String() string {
	if t == nil || t.Root == nil {
		return "[empty]\n"
	}
	return subtreeString[R](t.Root)
}

func subtreeString[R any](n Node[R]) string {
	var children []Node[R]
	var result string
	switch node := n.(type) {
	case *SplitNode[R]:
		result = fmt.Sprintf("{ %v } (%d rows, NA %v)\n|\n", node.Rule, node.Rows, node.NASide)
		children = []Node[R]{node.Left, node.Right}
	case *TerminalNode[R]:
		result = fmt.Sprintf("{ %v } (%d rows)\n \n", node.Response, node.Rows)
	}
	for i, child := range children {
		for j, line := range strings.Split(subtreeString[R](child), "\n") {
			if len(line) == 0 {
				continue
			}
			switch {
			case j == 0:
				result = fmt.Sprintf("%s|__%s\n", result, line)
			case i == len(children)-1:
				result = fmt.Sprintf("%s   %s\n", result, line)
			default:
				result = fmt.Sprintf("%s|  %s\n", result, line)
			}
		}
	}
	return result
}
