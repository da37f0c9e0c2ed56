package covariate

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

/*
NumericCovariate represents a covariate that takes real values.
*/
type NumericCovariate struct {
	base
}

/*
NewNumericCovariate takes a name, an index and options and returns a numeric
covariate.
*/
func NewNumericCovariate(name string, index int, options ...Option) *NumericCovariate {
	return &NumericCovariate{newBase(name, index, options)}
}

// Kind returns Numeric
func (nc *NumericCovariate) Kind() Kind {
	return Numeric
}

/*
CreateValue takes a raw string and returns a missing value if it is empty, an
NA token or NaN, the parsed float64 otherwise, or a *ParseError if it is not a
number.
*/
func (nc *NumericCovariate) CreateValue(raw string) (Value, error) {
	if IsNAToken(raw) || strings.EqualFold(strings.TrimSpace(raw), "nan") {
		return Missing[float64](), nil
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, &ParseError{Covariate: nc.name, Raw: raw, Err: err}
	}
	return Present(x), nil
}

/*
NewValue takes a float64 and returns it as a value of the covariate. NaN
values are missing.
*/
func (nc *NumericCovariate) NewValue(x float64) Value {
	if math.IsNaN(x) {
		return Missing[float64]()
	}
	return Present(x)
}

/*
SplitRule takes a threshold and returns the split rule that sends the
covariate's values lower or equal to it to the left hand.
*/
func (nc *NumericCovariate) SplitRule(threshold float64) *NumericSplitRule {
	return &NumericSplitRule{index: nc.index, name: nc.name, threshold: threshold}
}

/*
GenerateSplitRules takes the values of the rows at a node, a number of
candidate splits and a source of randomness and returns an iterator over
split rules with thresholds at the distinct non-missing values, in ascending
order. The largest distinct value is never a threshold, so k distinct values
produce at most k-1 candidates. If number is positive and lower than that, the
thresholds are sampled without replacement using rnd, or evenly spaced if rnd
is nil. Candidates carry the incremental movers from the previous threshold.
*/
func (nc *NumericCovariate) GenerateSplitRules(values []Value, number int, rnd *rand.Rand) SplitIterator {
	type positionedValue struct {
		position int
		x        float64
	}
	pvs := make([]positionedValue, 0, len(values))
	for i, v := range values {
		if x, ok := numericValue(v); ok {
			pvs = append(pvs, positionedValue{i, x})
		}
	}
	if len(pvs) < 2 {
		return emptyIterator{}
	}
	slices.SortStableFunc(pvs, func(a, b positionedValue) bool {
		return a.x < b.x
	})
	it := &numericIterator{
		covariate: nc,
		positions: make([]int, len(pvs)),
		xs:        make([]float64, len(pvs)),
	}
	var distinct []float64
	for i, pv := range pvs {
		it.positions[i] = pv.position
		it.xs[i] = pv.x
		if i == 0 || pv.x != pvs[i-1].x {
			distinct = append(distinct, pv.x)
		}
	}
	cuts := distinct[:len(distinct)-1]
	if len(cuts) == 0 {
		return emptyIterator{}
	}
	if number <= 0 || number >= len(cuts) {
		it.thresholds = cuts
		return it
	}
	picked := make([]int, number)
	if rnd == nil {
		step := float64(len(cuts)) / float64(number)
		for i := range picked {
			picked[i] = int(float64(i) * step)
		}
	} else {
		copy(picked, rnd.Perm(len(cuts))[:number])
		sort.Ints(picked)
	}
	it.thresholds = make([]float64, number)
	for i, p := range picked {
		it.thresholds[i] = cuts[p]
	}
	return it
}

type numericIterator struct {
	covariate  *NumericCovariate
	positions  []int
	xs         []float64
	thresholds []float64
	next       int
	cursor     int
}

func (it *numericIterator) Next() (Candidate, bool) {
	if it.next >= len(it.thresholds) {
		return Candidate{}, false
	}
	threshold := it.thresholds[it.next]
	it.next++
	start := it.cursor
	for it.cursor < len(it.xs) && it.xs[it.cursor] <= threshold {
		it.cursor++
	}
	return Candidate{Rule: it.covariate.SplitRule(threshold), Movers: it.positions[start:it.cursor]}, true
}
