/*
Package regression provides the response combiner, group differentiator and
error calculator for forests over real valued responses.
*/
package regression

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/response"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

/*
MeanResponseCombiner combines real valued responses into their mean. It serves
both as the combiner of terminal nodes and as the forest level combiner.
*/
type MeanResponseCombiner struct{}

/*
Combine takes a slice of responses and returns their mean, or NaN if it is
empty.
*/
func (MeanResponseCombiner) Combine(ys []float64) float64 {
	if len(ys) == 0 {
		return math.NaN()
	}
	return stat.Mean(ys, nil)
}

/*
StartIntermediateCombinedResponse takes the number of responses expected and
returns an accumulator that keeps a running mean. Each input contributes
y/expected; if the number of inputs processed differs from the expected one,
the result is rescaled by expected/actual when transformed. A non positive
expected count keeps an exact running mean instead.
*/
func (MeanResponseCombiner) StartIntermediateCombinedResponse(expected int) response.IntermediateCombinedResponse[float64, float64] {
	return &meanAccumulator{expected: expected}
}

type meanAccumulator struct {
	expected int
	actual   int
	mean     float64
}

func (ma *meanAccumulator) ProcessNewInput(y float64) {
	ma.actual++
	if ma.expected <= 0 {
		ma.mean += (y - ma.mean) / float64(ma.actual)
		return
	}
	ma.mean += y / float64(ma.expected)
}

func (ma *meanAccumulator) TransformToOutput() float64 {
	if ma.actual == 0 {
		return math.NaN()
	}
	if ma.expected > 0 && ma.actual != ma.expected {
		return ma.mean * float64(ma.expected) / float64(ma.actual)
	}
	return ma.mean
}

/*
VarianceGroupDifferentiator scores partitions by their negated total within
group sum of squares over the number of responses: -(SSE_left+SSE_right)/n.
*/
type VarianceGroupDifferentiator struct{}

// Score returns -(SSE_left+SSE_right)/n, or false if either group is empty
func (VarianceGroupDifferentiator) Score(left, right []float64) (float64, bool) {
	if len(left) == 0 || len(right) == 0 {
		return 0, false
	}
	return -(sse(left) + sse(right)) / float64(len(left)+len(right)), true
}

func sse(ys []float64) float64 {
	mean := stat.Mean(ys, nil)
	var result float64
	for _, y := range ys {
		result += (y - mean) * (y - mean)
	}
	return result
}

/*
NewScorer takes a slice of responses and returns a Scorer that keeps sums and
sums of squares of both groups, so every move and score is O(1). The sums are
kept over the responses minus their mean.
*/
func (VarianceGroupDifferentiator) NewScorer(ys []float64) response.Scorer {
	centered := append([]float64(nil), ys...)
	if len(ys) > 0 {
		floats.AddConst(-stat.Mean(ys, nil), centered)
	}
	vs := &varianceScorer{ys: centered, left: make([]bool, len(ys))}
	vs.sum = floats.Sum(centered)
	vs.sumSq = floats.Dot(centered, centered)
	return vs
}

type varianceScorer struct {
	ys                 []float64
	left               []bool
	nLeft              int
	sum, sumSq         float64
	sumLeft, sumSqLeft float64
}

func (vs *varianceScorer) MoveLeft(i int) {
	if vs.left[i] {
		return
	}
	vs.left[i] = true
	vs.nLeft++
	vs.sumLeft += vs.ys[i]
	vs.sumSqLeft += vs.ys[i] * vs.ys[i]
}

func (vs *varianceScorer) MoveRight(i int) {
	if !vs.left[i] {
		return
	}
	vs.left[i] = false
	vs.nLeft--
	vs.sumLeft -= vs.ys[i]
	vs.sumSqLeft -= vs.ys[i] * vs.ys[i]
}

func (vs *varianceScorer) IsLeft(i int) bool {
	return vs.left[i]
}

func (vs *varianceScorer) Score() (float64, bool) {
	n := len(vs.ys)
	nRight := n - vs.nLeft
	if vs.nLeft == 0 || nRight == 0 {
		return 0, false
	}
	sumRight := vs.sum - vs.sumLeft
	sumSqRight := vs.sumSq - vs.sumSqLeft
	sseLeft := vs.sumSqLeft - vs.sumLeft*vs.sumLeft/float64(vs.nLeft)
	sseRight := sumSqRight - sumRight*sumRight/float64(nRight)
	return -(math.Max(sseLeft, 0) + math.Max(sseRight, 0)) / float64(n), true
}

/*
ErrorCalculator measures the mean squared error of real valued predictions.
*/
type ErrorCalculator struct{}

/*
AverageError takes responses and predictions matched by position and returns
mean((response - prediction)^2), or NaN if there are none.
*/
func (ErrorCalculator) AverageError(responses, predictions []float64) float64 {
	if len(responses) == 0 || len(responses) != len(predictions) {
		return math.NaN()
	}
	var total float64
	for i, y := range responses {
		d := y - predictions[i]
		total += d * d
	}
	return total / float64(len(responses))
}

/*
ResponseParser takes the name of a field and returns a dataset.ResponseParser
that reads a float64 response from it.
*/
func ResponseParser(field string) dataset.ResponseParser[float64] {
	return func(r dataset.Record) (float64, error) {
		raw, ok := r[field]
		if !ok {
			return 0, fmt.Errorf("record has no %s field", field)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return 0, fmt.Errorf("parsing response %q: %w", raw, err)
		}
		return y, nil
	}
}
