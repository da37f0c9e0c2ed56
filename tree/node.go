package tree

import (
	"github.com/pbanos/grove/covariate"
)

/*
Side identifies the hand of a split node a row goes to.
*/
type Side int

const (
	// Unrouted is the Side of split nodes that cannot route missing values
	Unrouted Side = iota
	// Left is the left hand of a split node
	Left
	// Right is the right hand of a split node
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unrouted"
}

/*
Node is a node of a tree: either a *SplitNode or a *TerminalNode. Nodes own
their children exclusively and hold no reference to their parent.
*/
type Node[R any] interface {
	// Size returns the number of training rows that reached the node
	Size() int
	isNode()
}

/*
SplitNode is an internal node of a tree. Rows whose value for the covariate of
its Rule is left hand go to its Left child, the rest to its Right child.
Rows missing that value go to the NASide child, unless it is Unrouted.
*/
type SplitNode[R any] struct {
	Rule   covariate.SplitRule
	Left   Node[R]
	Right  Node[R]
	NASide Side
	Rows   int
}

/*
TerminalNode is a leaf of a tree holding the combination of the responses of
the training rows that reached it.
*/
type TerminalNode[R any] struct {
	Response R
	Rows     int
}

// Size returns the number of training rows that reached the node
func (sn *SplitNode[R]) Size() int {
	return sn.Rows
}

// Size returns the number of training rows that reached the node
func (tn *TerminalNode[R]) Size() int {
	return tn.Rows
}

func (*SplitNode[R]) isNode()    {}
func (*TerminalNode[R]) isNode() {}
