/*
Package response defines the contracts for combining the responses of rows
into predictions, for scoring candidate partitions of responses and for
measuring the error of predictions.

Y is the type of the responses of rows, R the type of the output a tree
stores on its terminal nodes and P the type of the prediction of a forest.
*/
package response

/*
ResponseCombiner aggregates a set of values of type Y into a single output of
type R.

Combine takes a fully materialized slice of inputs and returns their
combination.

StartIntermediateCombinedResponse takes the number of inputs expected and
returns an accumulator to feed them one at a time.
*/
type ResponseCombiner[Y, R any] interface {
	Combine([]Y) R
	StartIntermediateCombinedResponse(expected int) IntermediateCombinedResponse[Y, R]
}

/*
IntermediateCombinedResponse accumulates inputs one at a time without
necessarily retaining them.

ProcessNewInput takes a new input and accounts for it.

TransformToOutput returns the combination of the inputs processed so far. The
accumulator must not be used afterwards.
*/
type IntermediateCombinedResponse[Y, R any] interface {
	ProcessNewInput(Y)
	TransformToOutput() R
}

/*
GroupDifferentiator scores a partition of responses in a left and a right
group. Higher scores are better. It returns false if the partition cannot be
scored, which is always the case when either group is empty.
*/
type GroupDifferentiator[Y any] interface {
	Score(left, right []Y) (float64, bool)
}

/*
IncrementalGroupDifferentiator is a GroupDifferentiator that can score a
sequence of partitions of the same responses through a Scorer, updating its
state as responses move between groups instead of scoring every partition
from scratch.
*/
type IncrementalGroupDifferentiator[Y any] interface {
	GroupDifferentiator[Y]
	NewScorer(responses []Y) Scorer
}

/*
Scorer keeps the state of a partition of a slice of responses. All responses
start on the right group.

MoveLeft and MoveRight take the position of a response on the slice and move
it to the left or right group. Moving a response to the group it is already in
has no effect.

Score returns the score of the current partition, as the GroupDifferentiator
it comes from would.
*/
type Scorer interface {
	MoveLeft(int)
	MoveRight(int)
	IsLeft(int) bool
	Score() (float64, bool)
}

/*
ErrorCalculator measures the error of predictions of type P against the
responses of type Y they were made for. AverageError takes the responses and
the predictions, matched by position, and returns their average error.
*/
type ErrorCalculator[Y, P any] interface {
	AverageError(responses []Y, predictions []P) float64
}

/*
NewScorer takes a GroupDifferentiator and a slice of responses and returns a
Scorer for partitions of the responses. The Scorer comes from the
differentiator if it is an IncrementalGroupDifferentiator, otherwise it scores
every partition with a call to the differentiator's Score method.
*/
func NewScorer[Y any](gd GroupDifferentiator[Y], responses []Y) Scorer {
	if igd, ok := gd.(IncrementalGroupDifferentiator[Y]); ok {
		return igd.NewScorer(responses)
	}
	return &bulkScorer[Y]{gd: gd, responses: responses, left: make([]bool, len(responses))}
}

type bulkScorer[Y any] struct {
	gd        GroupDifferentiator[Y]
	responses []Y
	left      []bool
	nLeft     int
}

func (bs *bulkScorer[Y]) MoveLeft(i int) {
	if !bs.left[i] {
		bs.left[i] = true
		bs.nLeft++
	}
}

func (bs *bulkScorer[Y]) MoveRight(i int) {
	if bs.left[i] {
		bs.left[i] = false
		bs.nLeft--
	}
}

func (bs *bulkScorer[Y]) IsLeft(i int) bool {
	return bs.left[i]
}

func (bs *bulkScorer[Y]) Score() (float64, bool) {
	if bs.nLeft == 0 || bs.nLeft == len(bs.responses) {
		return 0, false
	}
	left := make([]Y, 0, bs.nLeft)
	right := make([]Y, 0, len(bs.responses)-bs.nLeft)
	for i, y := range bs.responses {
		if bs.left[i] {
			left = append(left, y)
		} else {
			right = append(right, y)
		}
	}
	return bs.gd.Score(left, right)
}
