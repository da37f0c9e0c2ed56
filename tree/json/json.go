/*
Package json provides methods to serialize trees as JSON and deserialize them
back. Split rules are keyed by covariate index, and the covariates the trees
were grown on are serialized with them so that their index bindings can be
checked on deserialization.
*/
package json

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/tree"
	"golang.org/x/exp/slices"
)

/*
TreeEncodeDecoder is an interface for objects that allow encoding trees into
slices of bytes and decoding them back to trees.
*/
type TreeEncodeDecoder[R any] interface {
	// Encode receives a tree and returns a slice of bytes with the tree
	// encoded or an error if the encoding could not be performed.
	Encode(*tree.Tree[R]) ([]byte, error)
	// Decode receives a slice of bytes and returns the tree decoded from it
	// or an error if the decoding could not be performed.
	Decode([]byte) (*tree.Tree[R], error)
}

type treeEncodeDecoder[R any] struct {
	covariates []covariate.Covariate
}

/*
NewTreeEncodeDecoder takes the covariates trees are grown on and returns a
TreeEncodeDecoder for trees whose outputs are of type R and are serializable
as JSON.
*/
func NewTreeEncodeDecoder[R any](covariates []covariate.Covariate) TreeEncodeDecoder[R] {
	return &treeEncodeDecoder[R]{covariates}
}

type rule struct {
	Covariate int      `json:"c"`
	Threshold *float64 `json:"t,omitempty"`
	Levels    []string `json:"l,omitempty"`
}

type node struct {
	Rule     *rule            `json:"r,omitempty"`
	Left     *node            `json:"lh,omitempty"`
	Right    *node            `json:"rh,omitempty"`
	NASide   string           `json:"na,omitempty"`
	Response *json.RawMessage `json:"o,omitempty"`
	Rows     int              `json:"n"`
}

type document struct {
	Covariates []covariate.Settings `json:"covariates"`
	Trees      []*node              `json:"trees"`
}

func (ted *treeEncodeDecoder[R]) Encode(t *tree.Tree[R]) ([]byte, error) {
	return encode([]*tree.Tree[R]{t}, ted.covariates)
}

func (ted *treeEncodeDecoder[R]) Decode(data []byte) (*tree.Tree[R], error) {
	trees, _, err := decode[R](data, ted.covariates)
	if err != nil {
		return nil, err
	}
	if len(trees) != 1 {
		return nil, fmt.Errorf("decoding tree: expected 1 tree, found %d", len(trees))
	}
	return trees[0], nil
}

/*
WriteTrees takes an io.Writer, a slice of trees and the covariates they were
grown on and writes the trees on the writer as a JSON object with the
following fields:
  - "covariates": an array with the settings of the covariates in index order
  - "trees": an array with the root node of every tree
*/
func WriteTrees[R any](w io.Writer, trees []*tree.Tree[R], covariates []covariate.Covariate) error {
	data, err := encode(trees, covariates)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

/*
ReadTrees takes an io.Reader and the covariates trees were grown on and reads
the trees written on it by WriteTrees. It returns an error if the covariates in
the document do not match the given ones in index, name, kind and levels. If
no covariates are given, the ones in the document are built and returned.
*/
func ReadTrees[R any](r io.Reader, covariates []covariate.Covariate) ([]*tree.Tree[R], []covariate.Covariate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading trees: %w", err)
	}
	return decode[R](data, covariates)
}

func encode[R any](trees []*tree.Tree[R], covariates []covariate.Covariate) ([]byte, error) {
	doc := &document{Trees: make([]*node, 0, len(trees))}
	for _, c := range covariates {
		doc.Covariates = append(doc.Covariates, covariate.SettingsOf(c))
	}
	for i, t := range trees {
		if t == nil || t.Root == nil {
			return nil, fmt.Errorf("encoding tree %d: %w", i, tree.ErrEmptyTree)
		}
		jn, err := encodeNode[R](t.Root)
		if err != nil {
			return nil, fmt.Errorf("encoding tree %d: %w", i, err)
		}
		doc.Trees = append(doc.Trees, jn)
	}
	return json.Marshal(doc)
}

func encodeNode[R any](n tree.Node[R]) (*node, error) {
	switch tn := n.(type) {
	case *tree.TerminalNode[R]:
		data, err := json.Marshal(tn.Response)
		if err != nil {
			return nil, fmt.Errorf("encoding output %v: %w", tn.Response, err)
		}
		raw := json.RawMessage(data)
		return &node{Response: &raw, Rows: tn.Rows}, nil
	case *tree.SplitNode[R]:
		jr, err := encodeRule(tn.Rule)
		if err != nil {
			return nil, err
		}
		jn := &node{Rule: jr, Rows: tn.Rows}
		if tn.NASide != tree.Unrouted {
			jn.NASide = tn.NASide.String()
		}
		jn.Left, err = encodeNode[R](tn.Left)
		if err != nil {
			return nil, err
		}
		jn.Right, err = encodeNode[R](tn.Right)
		if err != nil {
			return nil, err
		}
		return jn, nil
	}
	return nil, fmt.Errorf("unexpected node of type %T", n)
}

func encodeRule(sr covariate.SplitRule) (*rule, error) {
	jr := &rule{Covariate: sr.CovariateIndex()}
	switch r := sr.(type) {
	case *covariate.NumericSplitRule:
		threshold := r.Threshold()
		if math.IsInf(threshold, 0) || math.IsNaN(threshold) {
			return nil, fmt.Errorf("encoding rule %v: invalid threshold", r)
		}
		jr.Threshold = &threshold
	case *covariate.FactorSplitRule:
		jr.Levels = r.LeftLevels()
		if jr.Levels == nil {
			jr.Levels = []string{}
		}
	case *covariate.BooleanSplitRule:
	default:
		return nil, fmt.Errorf("encoding rule: unexpected rule of type %T", sr)
	}
	return jr, nil
}

func decode[R any](data []byte, covariates []covariate.Covariate) ([]*tree.Tree[R], []covariate.Covariate, error) {
	doc := &document{}
	err := json.Unmarshal(data, doc)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding trees: %w", err)
	}
	if covariates == nil {
		covariates, err = covariate.Build(doc.Covariates)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding trees: %w", err)
		}
	} else {
		err = checkBindings(doc.Covariates, covariates)
		if err != nil {
			return nil, nil, err
		}
	}
	trees := make([]*tree.Tree[R], 0, len(doc.Trees))
	for i, jn := range doc.Trees {
		root, err := decodeNode[R](jn, covariates)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding tree %d: %w", i, err)
		}
		trees = append(trees, tree.New[R](root))
	}
	return trees, covariates, nil
}

func checkBindings(settings []covariate.Settings, covariates []covariate.Covariate) error {
	if len(settings) != len(covariates) {
		return fmt.Errorf("trees were grown on %d covariates, %d given", len(settings), len(covariates))
	}
	for i, s := range settings {
		c := covariates[i]
		if c.Index() != i {
			return fmt.Errorf("covariate %s has index %d instead of %d", c.Name(), c.Index(), i)
		}
		if c.Name() != s.Name || c.Kind() != s.Kind {
			return fmt.Errorf("trees were grown with %s covariate %s at index %d, %s covariate %s given", s.Kind, s.Name, i, c.Kind(), c.Name())
		}
		if fc, ok := c.(*covariate.FactorCovariate); ok && !slices.Equal(fc.Levels(), s.Levels) {
			return fmt.Errorf("trees were grown with levels %v for covariate %s, %v given", s.Levels, s.Name, fc.Levels())
		}
	}
	return nil
}

func decodeNode[R any](jn *node, covariates []covariate.Covariate) (tree.Node[R], error) {
	if jn == nil {
		return nil, fmt.Errorf("missing node")
	}
	if jn.Rule == nil {
		if jn.Response == nil {
			return nil, fmt.Errorf("terminal node without output")
		}
		tn := &tree.TerminalNode[R]{Rows: jn.Rows}
		err := json.Unmarshal(*jn.Response, &tn.Response)
		if err != nil {
			return nil, fmt.Errorf("decoding output: %w", err)
		}
		return tn, nil
	}
	sr, err := decodeRule(jn.Rule, covariates)
	if err != nil {
		return nil, err
	}
	sn := &tree.SplitNode[R]{Rule: sr, Rows: jn.Rows}
	switch jn.NASide {
	case "":
	case tree.Left.String():
		sn.NASide = tree.Left
	case tree.Right.String():
		sn.NASide = tree.Right
	default:
		return nil, fmt.Errorf("unknown missing value side %q", jn.NASide)
	}
	sn.Left, err = decodeNode[R](jn.Left, covariates)
	if err != nil {
		return nil, err
	}
	sn.Right, err = decodeNode[R](jn.Right, covariates)
	if err != nil {
		return nil, err
	}
	return sn, nil
}

func decodeRule(jr *rule, covariates []covariate.Covariate) (covariate.SplitRule, error) {
	if jr.Covariate < 0 || jr.Covariate >= len(covariates) {
		return nil, fmt.Errorf("rule on unknown covariate index %d: %w", jr.Covariate, covariate.ErrUnknownCovariate)
	}
	switch c := covariates[jr.Covariate].(type) {
	case *covariate.NumericCovariate:
		if jr.Threshold == nil {
			return nil, fmt.Errorf("rule on numeric covariate %s without threshold", c.Name())
		}
		return c.SplitRule(*jr.Threshold), nil
	case *covariate.FactorCovariate:
		if jr.Levels == nil {
			return nil, fmt.Errorf("rule on factor covariate %s without levels", c.Name())
		}
		return c.SplitRule(jr.Levels)
	case *covariate.BooleanCovariate:
		return c.SplitRule(), nil
	}
	return nil, fmt.Errorf("rule on covariate %s of unsupported type %T", covariates[jr.Covariate].Name(), covariates[jr.Covariate])
}
