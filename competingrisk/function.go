package competingrisk

import (
	"fmt"
	"sort"
)

/*
Function is a right continuous step function: it takes Values[i] from
Times[i] until the next time, and Default before the first one. Times are
strictly increasing.
*/
type Function struct {
	Times   []float64 `json:"times"`
	Values  []float64 `json:"values"`
	Default float64   `json:"default"`
}

// Evaluate returns the value of the function at time t
func (f Function) Evaluate(t float64) float64 {
	i := sort.Search(len(f.Times), func(i int) bool { return f.Times[i] > t })
	if i == 0 {
		return f.Default
	}
	return f.Values[i-1]
}

/*
Functions holds the estimates for a group of competing risk responses: the
overall survival and, for every event in Events, its cause specific
cumulative hazard and its cumulative incidence, in the same order.
*/
type Functions struct {
	Events               []int      `json:"events"`
	Survival             Function   `json:"survival"`
	CauseSpecificHazards []Function `json:"hazards"`
	CumulativeIncidences []Function `json:"cifs"`
}

/*
CumulativeIncidence takes an event and returns its cumulative incidence
function, or an error if the functions do not cover the event.
*/
func (fs Functions) CumulativeIncidence(event int) (Function, error) {
	for i, e := range fs.Events {
		if e == event {
			return fs.CumulativeIncidences[i], nil
		}
	}
	return Function{}, fmt.Errorf("no cumulative incidence for event %d", event)
}

/*
CauseSpecificHazard takes an event and returns its cause specific cumulative
hazard function, or an error if the functions do not cover the event.
*/
func (fs Functions) CauseSpecificHazard(event int) (Function, error) {
	for i, e := range fs.Events {
		if e == event {
			return fs.CauseSpecificHazards[i], nil
		}
	}
	return Function{}, fmt.Errorf("no cause specific hazard for event %d", event)
}

func (fs Functions) String() string {
	return fmt.Sprintf("survival at %d times for events %v", len(fs.Survival.Times), fs.Events)
}
