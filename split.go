package grove

import (
	"errors"
	"math"
	"math/rand"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/response"
	"github.com/pbanos/grove/tree"
)

/*
Split represents the best scoring candidate split rule proposed by a
covariate for the rows at a node.
*/
type Split struct {
	Covariate covariate.Covariate
	Rule      covariate.SplitRule
	Score     float64
}

/*
bestSplit takes a covariate, the values the rows at a node take for it, their
responses, a group differentiator, a number of candidate splits and a source
of randomness, and returns the best scoring candidate split the covariate
proposes, or nil if none of them can be scored. Ties go to the first candidate.

Rows missing the value only take part in the scoring when the covariate has a
NA split penalty, and then always on the side that has more of the rest of
the rows, which is where they would go if the candidate was chosen.
*/
func bestSplit[Y any](c covariate.Covariate, values []covariate.Value, responses []Y, gd response.GroupDifferentiator[Y], number int, rnd *rand.Rand) *Split {
	var present, missing []int
	for i, v := range values {
		if v == nil || v.IsNA() {
			missing = append(missing, i)
		} else {
			present = append(present, i)
		}
	}
	if len(present) < 2 {
		return nil
	}
	ps := &partitionScorer{
		positions: make([]int, len(values)),
		inLeft:    make([]bool, len(values)),
		mark:      make([]bool, len(values)),
		present:   len(present),
	}
	var scored []Y
	if c.HaveNASplitPenalty() && len(missing) > 0 {
		scored = responses
		for i := range ps.positions {
			ps.positions[i] = i
		}
		ps.missing = missing
	} else {
		scored = make([]Y, len(present))
		for j, i := range present {
			ps.positions[i] = j
			scored[j] = responses[i]
		}
		for _, i := range missing {
			ps.positions[i] = -1
		}
	}
	ps.scorer = response.NewScorer(gd, scored)
	it := c.GenerateSplitRules(values, number, rnd)
	var best *Split
	for {
		candidate, ok := it.Next()
		if !ok {
			return best
		}
		ps.apply(candidate)
		score, ok := ps.score()
		if !ok {
			continue
		}
		if best == nil || score > best.Score {
			best = &Split{Covariate: c, Rule: candidate.Rule, Score: score}
		}
	}
}

/*
partitionScorer follows the candidates of a split iterator on a scorer,
keeping track of which rows are on the left hand. Rows are identified by
their position on the node's values and mapped to their position on the
scorer.
*/
type partitionScorer struct {
	scorer      response.Scorer
	positions   []int
	left        []int
	inLeft      []bool
	mark        []bool
	present     int
	missing     []int
	missingLeft bool
}

func (ps *partitionScorer) apply(c covariate.Candidate) {
	if c.Full {
		for _, p := range c.Movers {
			ps.mark[p] = true
		}
		kept := ps.left[:0]
		for _, p := range ps.left {
			if ps.mark[p] {
				kept = append(kept, p)
				continue
			}
			ps.inLeft[p] = false
			ps.scorer.MoveRight(ps.positions[p])
		}
		ps.left = kept
		for _, p := range c.Movers {
			ps.mark[p] = false
		}
	}
	for _, p := range c.Movers {
		ps.moveLeft(p)
	}
	if ps.missing != nil {
		ps.routeMissing(len(ps.left) >= ps.present-len(ps.left))
	}
}

func (ps *partitionScorer) moveLeft(p int) {
	if ps.inLeft[p] {
		return
	}
	ps.inLeft[p] = true
	ps.left = append(ps.left, p)
	ps.scorer.MoveLeft(ps.positions[p])
}

func (ps *partitionScorer) routeMissing(left bool) {
	if left == ps.missingLeft {
		return
	}
	for _, p := range ps.missing {
		if left {
			ps.scorer.MoveLeft(ps.positions[p])
		} else {
			ps.scorer.MoveRight(ps.positions[p])
		}
	}
	ps.missingLeft = left
}

func (ps *partitionScorer) score() (float64, bool) {
	score, ok := ps.scorer.Score()
	if !ok || math.IsNaN(score) {
		return 0, false
	}
	return score, true
}

/*
partitionRows takes the rows at a node, the values they take for the
covariate of a split rule and the rule, and returns the rows that go to the
left and right hands along with the side rows missing the value go to. Rows
with a value are routed by the rule; rows missing it go to the side with more
of the rest of the rows, the left one on ties. Rows keep their relative order.
*/
func partitionRows[Y any](rows []*dataset.Row[Y], values []covariate.Value, rule covariate.SplitRule) (left, right []*dataset.Row[Y], naSide tree.Side, err error) {
	var missing []*dataset.Row[Y]
	for i, v := range values {
		if v == nil || v.IsNA() {
			missing = append(missing, rows[i])
			continue
		}
		isLeft, err := rule.IsLeftHand(v)
		if errors.Is(err, covariate.ErrMissingValue) {
			return nil, nil, tree.Unrouted, &covariate.MissingValueError{RowID: rows[i].ID(), Rule: rule}
		}
		if err != nil {
			return nil, nil, tree.Unrouted, err
		}
		if isLeft {
			left = append(left, rows[i])
		} else {
			right = append(right, rows[i])
		}
	}
	naSide = tree.Right
	if len(left) >= len(right) {
		naSide = tree.Left
	}
	if len(missing) == 0 {
		return left, right, naSide, nil
	}
	if naSide == tree.Left {
		left = mergeRows(rows, left, missing)
	} else {
		right = mergeRows(rows, right, missing)
	}
	return left, right, naSide, nil
}

// mergeRows merges two disjoint subsequences of rows back in their order on rows
func mergeRows[Y any](rows, a, b []*dataset.Row[Y]) []*dataset.Row[Y] {
	result := make([]*dataset.Row[Y], 0, len(a)+len(b))
	i, j := 0, 0
	for _, r := range rows {
		switch {
		case i < len(a) && a[i] == r:
			result = append(result, r)
			i++
		case j < len(b) && b[j] == r:
			result = append(result, r)
			j++
		}
	}
	return result
}
