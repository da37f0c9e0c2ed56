package competingrisk

import (
	"math"
)

/*
ConcordanceErrorCalculator measures the error of competing risk predictions
for a single Event as one minus their naive concordance index. The risk of a
prediction is its cumulative incidence for the event at Horizon, or at its
last time if Horizon is not positive.

A pair of responses is comparable when the first ended with the event before
the second ended, or at the same time if the second did not end with the
event. A comparable pair is concordant when the first has the higher risk and
counts half when both risks are equal.
*/
type ConcordanceErrorCalculator struct {
	Event   int
	Horizon float64
}

/*
AverageError takes responses and predictions matched by position and returns
one minus their naive concordance index, or NaN if there are no comparable
pairs.
*/
func (cec ConcordanceErrorCalculator) AverageError(responses []Response, predictions []Functions) float64 {
	if len(responses) != len(predictions) {
		return math.NaN()
	}
	horizon := cec.Horizon
	if horizon <= 0 {
		horizon = math.Inf(1)
	}
	risks := make([]float64, len(predictions))
	for i, p := range predictions {
		cif, err := p.CumulativeIncidence(cec.Event)
		if err != nil {
			return math.NaN()
		}
		risks[i] = cif.Evaluate(horizon)
	}
	var comparable, concordant float64
	for i, ri := range responses {
		if ri.Delta != cec.Event {
			continue
		}
		for j, rj := range responses {
			if i == j {
				continue
			}
			if ri.U < rj.U || (ri.U == rj.U && rj.Delta != cec.Event) {
				comparable++
				switch {
				case risks[i] > risks[j]:
					concordant++
				case risks[i] == risks[j]:
					concordant += 0.5
				}
			}
		}
	}
	if comparable == 0 {
		return math.NaN()
	}
	return 1 - concordant/comparable
}
