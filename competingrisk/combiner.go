package competingrisk

import (
	"github.com/pbanos/grove/response"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

/*
ResponseCombiner combines competing risk responses into their Kaplan-Meier
survival, Nelson-Aalen cause specific cumulative hazards and Aalen-Johansen
cumulative incidences for each of its Events. Estimates change only at times
where some event happens. Events not in Events count for the overall survival
but get no functions of their own.
*/
type ResponseCombiner struct {
	Events []int
}

// Combine returns the estimated functions for the given responses
func (rc ResponseCombiner) Combine(responses []Response) Functions {
	acc := rc.newAccumulator()
	for _, r := range responses {
		acc.ProcessNewInput(r)
	}
	return acc.TransformToOutput()
}

/*
StartIntermediateCombinedResponse returns an accumulator that keeps the counts
of events and censorings per time instead of the responses themselves. The
expected count is not needed.
*/
func (rc ResponseCombiner) StartIntermediateCombinedResponse(int) response.IntermediateCombinedResponse[Response, Functions] {
	return rc.newAccumulator()
}

func (rc ResponseCombiner) newAccumulator() *eventCounter {
	index := make(map[int]int, len(rc.Events))
	for i, e := range rc.Events {
		index[e] = i
	}
	return &eventCounter{events: rc.Events, index: index, counts: make(map[float64]*timeCounts)}
}

type timeCounts struct {
	byEvent  []int
	events   int
	censored int
}

type eventCounter struct {
	events []int
	index  map[int]int
	counts map[float64]*timeCounts
	total  int
}

func (ec *eventCounter) ProcessNewInput(r Response) {
	tc, ok := ec.counts[r.U]
	if !ok {
		tc = &timeCounts{byEvent: make([]int, len(ec.events))}
		ec.counts[r.U] = tc
	}
	ec.total++
	if r.IsCensored() {
		tc.censored++
		return
	}
	tc.events++
	if i, ok := ec.index[r.Delta]; ok {
		tc.byEvent[i]++
	}
}

func (ec *eventCounter) TransformToOutput() Functions {
	k := len(ec.events)
	fs := Functions{
		Events:               append([]int(nil), ec.events...),
		Survival:             Function{Default: 1},
		CauseSpecificHazards: make([]Function, k),
		CumulativeIncidences: make([]Function, k),
	}
	times := maps.Keys(ec.counts)
	slices.Sort(times)
	atRisk := float64(ec.total)
	survival := 1.0
	hazards := make([]float64, k)
	cifs := make([]float64, k)
	for _, t := range times {
		tc := ec.counts[t]
		if tc.events > 0 {
			for i, d := range tc.byEvent {
				hazards[i] += float64(d) / atRisk
				cifs[i] += survival * float64(d) / atRisk
				fs.CauseSpecificHazards[i].Times = append(fs.CauseSpecificHazards[i].Times, t)
				fs.CauseSpecificHazards[i].Values = append(fs.CauseSpecificHazards[i].Values, hazards[i])
				fs.CumulativeIncidences[i].Times = append(fs.CumulativeIncidences[i].Times, t)
				fs.CumulativeIncidences[i].Values = append(fs.CumulativeIncidences[i].Values, cifs[i])
			}
			survival *= 1 - float64(tc.events)/atRisk
			fs.Survival.Times = append(fs.Survival.Times, t)
			fs.Survival.Values = append(fs.Survival.Values, survival)
		}
		atRisk -= float64(tc.events + tc.censored)
	}
	return fs
}

/*
FunctionCombiner combines the Functions of several trees into their pointwise
average. If Times is set, the average is taken at those times; otherwise it is
taken at every time any of the combined functions changes.
*/
type FunctionCombiner struct {
	Events []int
	Times  []float64
}

// Combine returns the pointwise average of the given functions
func (fc FunctionCombiner) Combine(fss []Functions) Functions {
	acc := fc.StartIntermediateCombinedResponse(len(fss))
	for _, fs := range fss {
		acc.ProcessNewInput(fs)
	}
	return acc.TransformToOutput()
}

/*
StartIntermediateCombinedResponse returns an accumulator of functions that
only keeps running sums. With Times set the sums are kept on them; otherwise
they are kept on the times seen so far, which grow as functions changing at
new times arrive.
*/
func (fc FunctionCombiner) StartIntermediateCombinedResponse(expected int) response.IntermediateCombinedResponse[Functions, Functions] {
	if len(fc.Times) > 0 {
		return fc.newGridAccumulator(fc.Times)
	}
	return &mergingAccumulator{
		ga:             fc.newGridAccumulator(nil),
		hazardDefaults: make([]float64, len(fc.Events)),
		cifDefaults:    make([]float64, len(fc.Events)),
	}
}

type mergingAccumulator struct {
	ga              *gridAccumulator
	survivalDefault float64
	hazardDefaults  []float64
	cifDefaults     []float64
}

func (ma *mergingAccumulator) ProcessNewInput(fs Functions) {
	ma.extend(fs)
	ma.ga.ProcessNewInput(fs)
	ma.survivalDefault += fs.Survival.Default
	for i, e := range ma.ga.events {
		hazard, err := fs.CauseSpecificHazard(e)
		if err != nil {
			continue
		}
		cif, _ := fs.CumulativeIncidence(e)
		ma.hazardDefaults[i] += hazard.Default
		ma.cifDefaults[i] += cif.Default
	}
}

func (ma *mergingAccumulator) TransformToOutput() Functions {
	return ma.ga.TransformToOutput()
}

/*
extend adds the times at which the given functions change to the grid of the
accumulator. The sums at a new time are those at the previous time of the
grid, or the sums of the defaults if there is none, as the functions added so
far do not change between them.
*/
func (ma *mergingAccumulator) extend(fs Functions) {
	old := ma.ga.times
	seen := make(map[float64]bool, len(old))
	for _, t := range old {
		seen[t] = true
	}
	var added []float64
	add := func(f Function) {
		for _, t := range f.Times {
			if !seen[t] {
				seen[t] = true
				added = append(added, t)
			}
		}
	}
	add(fs.Survival)
	for _, f := range fs.CauseSpecificHazards {
		add(f)
	}
	for _, f := range fs.CumulativeIncidences {
		add(f)
	}
	if len(added) == 0 {
		return
	}
	times := make([]float64, 0, len(old)+len(added))
	times = append(append(times, old...), added...)
	slices.Sort(times)
	from := make([]int, len(times))
	j := -1
	for i, t := range times {
		for j+1 < len(old) && old[j+1] <= t {
			j++
		}
		from[i] = j
	}
	regrid := func(sums []float64, def float64) []float64 {
		result := make([]float64, len(times))
		for i, j := range from {
			if j < 0 {
				result[i] = def
			} else {
				result[i] = sums[j]
			}
		}
		return result
	}
	ma.ga.survival = regrid(ma.ga.survival, ma.survivalDefault)
	for i := range ma.ga.events {
		ma.ga.hazards[i] = regrid(ma.ga.hazards[i], ma.hazardDefaults[i])
		ma.ga.cifs[i] = regrid(ma.ga.cifs[i], ma.cifDefaults[i])
	}
	ma.ga.times = times
}

func (fc FunctionCombiner) newGridAccumulator(times []float64) *gridAccumulator {
	k := len(fc.Events)
	ga := &gridAccumulator{
		events:   fc.Events,
		times:    times,
		survival: make([]float64, len(times)),
		hazards:  make([][]float64, k),
		cifs:     make([][]float64, k),
	}
	for i := 0; i < k; i++ {
		ga.hazards[i] = make([]float64, len(times))
		ga.cifs[i] = make([]float64, len(times))
	}
	return ga
}

type gridAccumulator struct {
	events   []int
	times    []float64
	survival []float64
	hazards  [][]float64
	cifs     [][]float64
	count    int
}

func (ga *gridAccumulator) ProcessNewInput(fs Functions) {
	ga.count++
	for j, t := range ga.times {
		ga.survival[j] += fs.Survival.Evaluate(t)
	}
	for i, e := range ga.events {
		hazard, err := fs.CauseSpecificHazard(e)
		if err != nil {
			continue
		}
		cif, _ := fs.CumulativeIncidence(e)
		for j, t := range ga.times {
			ga.hazards[i][j] += hazard.Evaluate(t)
			ga.cifs[i][j] += cif.Evaluate(t)
		}
	}
}

func (ga *gridAccumulator) TransformToOutput() Functions {
	k := len(ga.events)
	fs := Functions{
		Events:               append([]int(nil), ga.events...),
		Survival:             averaged(ga.times, ga.survival, ga.count, 1),
		CauseSpecificHazards: make([]Function, k),
		CumulativeIncidences: make([]Function, k),
	}
	for i := 0; i < k; i++ {
		fs.CauseSpecificHazards[i] = averaged(ga.times, ga.hazards[i], ga.count, 0)
		fs.CumulativeIncidences[i] = averaged(ga.times, ga.cifs[i], ga.count, 0)
	}
	return fs
}

func averaged(times, sums []float64, count int, def float64) Function {
	f := Function{Default: def}
	if count == 0 {
		return f
	}
	f.Times = append([]float64(nil), times...)
	f.Values = make([]float64, len(sums))
	for i, s := range sums {
		f.Values[i] = s / float64(count)
	}
	return f
}

/*
ListCombiner combines the member lists of the terminal nodes of several trees
by merging them and estimating the functions once over the merged list. It is
the forest level combiner for trees grown with a response.ListCombiner.
*/
type ListCombiner struct {
	Events []int
}

// Combine returns the functions estimated over all the given lists
func (lc ListCombiner) Combine(lists [][]Response) Functions {
	acc := lc.StartIntermediateCombinedResponse(len(lists))
	for _, l := range lists {
		acc.ProcessNewInput(l)
	}
	return acc.TransformToOutput()
}

/*
StartIntermediateCombinedResponse returns an accumulator that merges the
lists into counts of events and censorings per time.
*/
func (lc ListCombiner) StartIntermediateCombinedResponse(int) response.IntermediateCombinedResponse[[]Response, Functions] {
	return &listMerger{ResponseCombiner{lc.Events}.newAccumulator()}
}

type listMerger struct {
	*eventCounter
}

func (lm *listMerger) ProcessNewInput(l []Response) {
	for _, r := range l {
		lm.eventCounter.ProcessNewInput(r)
	}
}
