/*
Package importance measures how much the predictions of a model rely on each
covariate by permuting the covariate's values on held-out rows.
*/
package importance

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/response"
)

/*
Predictor is anything that makes predictions of type P for samples, like a
forest.
*/
type Predictor[P any] interface {
	Predict(covariate.Sample) (P, error)
}

/*
Calculator computes the permutation importance of covariates for the
predictions of a Predictor on a set of held-out Rows, measuring their error
with an ErrorCalculator. Permutations are drawn from Rand, or from a stream
seeded with 1 if it is nil.

A Calculator is not safe for concurrent use.
*/
type Calculator[Y, P any] struct {
	Predictor       Predictor[P]
	ErrorCalculator response.ErrorCalculator[Y, P]
	Rows            []*dataset.Row[Y]
	Rand            *rand.Rand
}

/*
Calculate takes a context and a covariate and returns the average error of
the predictions for the rows after permuting their values for the covariate
minus the average error of the predictions for the original rows. Positive
values mean the covariate matters for the predictions.
*/
func (c *Calculator[Y, P]) Calculate(ctx context.Context, cov covariate.Covariate) (float64, error) {
	baseline, err := c.averageError(ctx, c.Rows)
	if err != nil {
		return 0, err
	}
	return c.calculate(ctx, cov, baseline)
}

/*
CalculateAll takes a context and a slice of covariates and returns the
importance of each of them, in the same order, as Calculate would.
*/
func (c *Calculator[Y, P]) CalculateAll(ctx context.Context, covariates []covariate.Covariate) ([]float64, error) {
	baseline, err := c.averageError(ctx, c.Rows)
	if err != nil {
		return nil, err
	}
	result := make([]float64, len(covariates))
	for i, cov := range covariates {
		result[i], err = c.calculate(ctx, cov, baseline)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c *Calculator[Y, P]) calculate(ctx context.Context, cov covariate.Covariate, baseline float64) (float64, error) {
	permuted, err := c.permute(cov)
	if err != nil {
		return 0, err
	}
	permutedError, err := c.averageError(ctx, permuted)
	if err != nil {
		return 0, err
	}
	return permutedError - baseline, nil
}

// permute returns copies of the rows with a random permutation of their values for the covariate
func (c *Calculator[Y, P]) permute(cov covariate.Covariate) ([]*dataset.Row[Y], error) {
	values, err := dataset.Column(c.Rows, cov.Index())
	if err != nil {
		return nil, err
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(1))
	}
	result := make([]*dataset.Row[Y], len(c.Rows))
	for i, j := range c.Rand.Perm(len(values)) {
		result[i] = c.Rows[i].WithValue(cov.Index(), values[j])
	}
	return result, nil
}

func (c *Calculator[Y, P]) averageError(ctx context.Context, rows []*dataset.Row[Y]) (float64, error) {
	if len(rows) == 0 {
		return 0, fmt.Errorf("cannot measure errors without rows")
	}
	predictions := make([]P, len(rows))
	for i, r := range rows {
		err := ctx.Err()
		if err != nil {
			return 0, err
		}
		predictions[i], err = c.Predictor.Predict(r)
		if err != nil {
			return 0, err
		}
	}
	return c.ErrorCalculator.AverageError(dataset.Responses(rows), predictions), nil
}
