package competingrisk

import (
	"math"

	"golang.org/x/exp/slices"
)

/*
LogRankDifferentiator scores partitions with a composite log-rank statistic
over the cause specific hazards of all its Events: the absolute sum of the
per event observed minus expected counts on the left group, over the square
root of the sum of their variances. Partitions without variance cannot be
scored.
*/
type LogRankDifferentiator struct {
	Events []int
}

// Score returns the composite log-rank statistic of the partition
func (d LogRankDifferentiator) Score(left, right []Response) (float64, bool) {
	return logRank(d.Events, left, right)
}

/*
LogRankSingleGroupDifferentiator scores partitions with the log-rank statistic
of the cause specific hazard of a single Event, treating the others as
censoring.
*/
type LogRankSingleGroupDifferentiator struct {
	Event int
}

// Score returns the log-rank statistic of the partition for the event
func (d LogRankSingleGroupDifferentiator) Score(left, right []Response) (float64, bool) {
	return logRank([]int{d.Event}, left, right)
}

type sideResponse struct {
	Response
	left bool
}

func logRank(events []int, left, right []Response) (float64, bool) {
	if len(left) == 0 || len(right) == 0 {
		return 0, false
	}
	index := make(map[int]int, len(events))
	for i, e := range events {
		index[e] = i
	}
	all := make([]sideResponse, 0, len(left)+len(right))
	for _, r := range left {
		all = append(all, sideResponse{r, true})
	}
	for _, r := range right {
		all = append(all, sideResponse{r, false})
	}
	slices.SortFunc(all, func(a, b sideResponse) bool {
		return a.U < b.U
	})
	atRisk := float64(len(all))
	atRiskLeft := float64(len(left))
	d := make([]float64, len(events))
	dLeft := make([]float64, len(events))
	var numerator, variance float64
	for start := 0; start < len(all); {
		end := start
		for i := range d {
			d[i], dLeft[i] = 0, 0
		}
		var removed, removedLeft float64
		for ; end < len(all) && all[end].U == all[start].U; end++ {
			r := all[end]
			removed++
			if r.left {
				removedLeft++
			}
			i, ok := index[r.Delta]
			if !ok {
				continue
			}
			d[i]++
			if r.left {
				dLeft[i]++
			}
		}
		for i := range d {
			if d[i] == 0 {
				continue
			}
			share := atRiskLeft / atRisk
			numerator += dLeft[i] - d[i]*share
			if atRisk > 1 {
				variance += d[i] * share * (1 - share) * (atRisk - d[i]) / (atRisk - 1)
			}
		}
		atRisk -= removed
		atRiskLeft -= removedLeft
		start = end
	}
	if variance <= 0 {
		return 0, false
	}
	return math.Abs(numerator) / math.Sqrt(variance), true
}
