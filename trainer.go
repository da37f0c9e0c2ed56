/*
Package grove grows random forests: ensembles of binary decision trees over
rows with typed covariates, whose terminal nodes combine the responses of the
training rows that reach them.
*/
package grove

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/response"
	"github.com/pbanos/grove/tree"
)

/*
TreeTrainer grows trees that predict responses of type Y with outputs of type
R on their terminal nodes.

Nodes are split on the best scoring candidate split, according to the
Differentiator, among those proposed by a sample of the Covariates. Terminal
nodes hold the combination of their responses by the Combiner. Besides the
stopping rules described by the Settings, any of the extra StoppingRules makes
a node terminal.
*/
type TreeTrainer[Y comparable, R any] struct {
	Covariates     []covariate.Covariate
	Combiner       response.ResponseCombiner[Y, R]
	Differentiator response.GroupDifferentiator[Y]
	Settings       Settings
	StoppingRules  []StoppingRule[Y]
	Logger         *zap.Logger
}

/*
GrowTree takes a context, the rows to train on and a source of randomness and
returns the grown tree or an error. The tree only depends on the rows, the
trainer and the state of the source of randomness, which it consumes.
It returns an error if there are no rows, if a row lacks a value for a
covariate or if the context is cancelled.
*/
func (tt *TreeTrainer[Y, R]) GrowTree(ctx context.Context, rows []*dataset.Row[Y], rnd *rand.Rand) (*tree.Tree[R], error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot grow a tree without rows")
	}
	if len(tt.Covariates) == 0 {
		return nil, fmt.Errorf("cannot grow a tree without covariates")
	}
	err := dataset.Validate(rows, tt.Covariates)
	if err != nil {
		return nil, err
	}
	stop := AnyOf(append(StoppingRules[Y](tt.Settings), tt.StoppingRules...)...)
	root, err := tt.grow(ctx, rows, 0, stop, rnd)
	if err != nil {
		return nil, err
	}
	t := tree.New[R](root)
	stats := t.Stats()
	tt.logger().Debug("grown tree",
		zap.Int("rows", len(rows)),
		zap.Int("splitNodes", stats.SplitNodes),
		zap.Int("terminalNodes", stats.TerminalNodes),
		zap.Int("depth", stats.Depth),
	)
	return t, nil
}

func (tt *TreeTrainer[Y, R]) grow(ctx context.Context, rows []*dataset.Row[Y], depth int, stop StoppingRule[Y], rnd *rand.Rand) (tree.Node[R], error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}
	responses := dataset.Responses(rows)
	if stop.Stop(responses, depth) {
		return tt.terminal(responses), nil
	}
	split, err := tt.findSplit(ctx, rows, responses, rnd)
	if err != nil {
		return nil, err
	}
	if split == nil {
		return tt.terminal(responses), nil
	}
	values, err := dataset.Column(rows, split.Covariate.Index())
	if err != nil {
		return nil, err
	}
	leftRows, rightRows, naSide, err := partitionRows(rows, values, split.Rule)
	if err != nil {
		return nil, err
	}
	if len(leftRows) == 0 || len(rightRows) == 0 {
		return tt.terminal(responses), nil
	}
	if !split.Covariate.HasNAs() {
		naSide = tree.Unrouted
	}
	leftRnd := rand.New(rand.NewSource(rnd.Int63()))
	rightRnd := rand.New(rand.NewSource(rnd.Int63()))
	left, err := tt.grow(ctx, leftRows, depth+1, stop, leftRnd)
	if err != nil {
		return nil, err
	}
	right, err := tt.grow(ctx, rightRows, depth+1, stop, rightRnd)
	if err != nil {
		return nil, err
	}
	return &tree.SplitNode[R]{Rule: split.Rule, Left: left, Right: right, NASide: naSide, Rows: len(rows)}, nil
}

func (tt *TreeTrainer[Y, R]) terminal(responses []Y) tree.Node[R] {
	return &tree.TerminalNode[R]{Response: tt.Combiner.Combine(responses), Rows: len(responses)}
}

/*
findSplit samples the covariates to try at a node and returns the best
scoring split among them, or nil if no covariate proposes a scoreable one.
Covariates are tried in index order when all of them are, and in sampling
order otherwise.
*/
func (tt *TreeTrainer[Y, R]) findSplit(ctx context.Context, rows []*dataset.Row[Y], responses []Y, rnd *rand.Rand) (*Split, error) {
	var best *Split
	for _, c := range tt.sampleCovariates(rnd) {
		err := ctx.Err()
		if err != nil {
			return nil, err
		}
		values, err := dataset.Column(rows, c.Index())
		if err != nil {
			return nil, err
		}
		split := bestSplit(c, values, responses, tt.Differentiator, tt.Settings.NumberOfSplits, rnd)
		if split != nil && (best == nil || split.Score > best.Score) {
			best = split
		}
	}
	return best, nil
}

func (tt *TreeTrainer[Y, R]) sampleCovariates(rnd *rand.Rand) []covariate.Covariate {
	mtry := tt.Settings.MTry
	if mtry <= 0 || mtry >= len(tt.Covariates) {
		return tt.Covariates
	}
	result := make([]covariate.Covariate, mtry)
	for i, j := range rnd.Perm(len(tt.Covariates))[:mtry] {
		result[i] = tt.Covariates[j]
	}
	return result
}

func (tt *TreeTrainer[Y, R]) logger() *zap.Logger {
	if tt.Logger == nil {
		return zap.NewNop()
	}
	return tt.Logger
}
