package competingrisk

import (
	"math"
	"testing"

	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/response"
	. "github.com/smartystreets/goconvey/convey"
)

var responses = []Response{{1, 1}, {1, 2}, {2, 3}, {0, 4}, {2, 5}}

func shouldMatchValues(f Function, times, values []float64) {
	So(f.Times, ShouldResemble, times)
	So(f.Values, ShouldHaveLength, len(values))
	for i, v := range values {
		So(f.Values[i], ShouldAlmostEqual, v, 1e-12)
	}
}

func TestResponseCombiner(t *testing.T) {
	Convey("Given a response combiner for events 1 and 2", t, func() {
		rc := ResponseCombiner{Events: []int{1, 2}}

		Convey("it estimates survival, hazards and cumulative incidences", func() {
			fs := rc.Combine(responses)
			So(fs.Events, ShouldResemble, []int{1, 2})
			shouldMatchValues(fs.Survival, []float64{1, 2, 3, 5}, []float64{0.8, 0.6, 0.4, 0})
			shouldMatchValues(fs.CauseSpecificHazards[0], []float64{1, 2, 3, 5}, []float64{0.2, 0.45, 0.45, 0.45})
			shouldMatchValues(fs.CauseSpecificHazards[1], []float64{1, 2, 3, 5}, []float64{0, 0, 1.0 / 3, 4.0 / 3})
			shouldMatchValues(fs.CumulativeIncidences[0], []float64{1, 2, 3, 5}, []float64{0.2, 0.4, 0.4, 0.4})
			shouldMatchValues(fs.CumulativeIncidences[1], []float64{1, 2, 3, 5}, []float64{0, 0, 0.2, 0.6})
			for _, t := range []float64{0.5, 1, 2.5, 4, 5, 10} {
				total := fs.Survival.Evaluate(t) + fs.CumulativeIncidences[0].Evaluate(t) + fs.CumulativeIncidences[1].Evaluate(t)
				So(total, ShouldAlmostEqual, 1, 1e-12)
			}
			So(fs.Survival.Evaluate(0.5), ShouldEqual, 1)
			So(fs.Survival.Evaluate(2.5), ShouldAlmostEqual, 0.6, 1e-12)
			cif, err := fs.CumulativeIncidence(2)
			So(err, ShouldBeNil)
			So(cif.Evaluate(4), ShouldAlmostEqual, 0.2, 1e-12)
			_, err = fs.CumulativeIncidence(3)
			So(err, ShouldNotBeNil)
		})

		Convey("streaming over counts matches bulk combination", func() {
			acc := rc.StartIntermediateCombinedResponse(len(responses))
			for i := len(responses) - 1; i >= 0; i-- {
				acc.ProcessNewInput(responses[i])
			}
			So(acc.TransformToOutput(), ShouldResemble, rc.Combine(responses))
		})

		Convey("only censored responses keep the initial estimates", func() {
			fs := rc.Combine([]Response{{0, 1}, {0, 2}})
			So(fs.Survival.Evaluate(3), ShouldEqual, 1)
			So(fs.CumulativeIncidences[0].Evaluate(3), ShouldEqual, 0)
		})
	})
}

func TestFunctionCombiner(t *testing.T) {
	Convey("Given the functions of two groups", t, func() {
		rc := ResponseCombiner{Events: []int{1, 2}}
		a := rc.Combine(responses[:2])
		b := rc.Combine(responses[2:])
		fc := FunctionCombiner{Events: []int{1, 2}}

		Convey("they are averaged at every time either changes", func() {
			fs := fc.Combine([]Functions{a, b})
			So(fs.Survival.Times, ShouldResemble, []float64{1, 2, 3, 5})
			for _, t := range []float64{0, 1, 2, 3, 4, 5, 6} {
				So(fs.Survival.Evaluate(t), ShouldAlmostEqual, (a.Survival.Evaluate(t)+b.Survival.Evaluate(t))/2, 1e-12)
				So(fs.CumulativeIncidences[1].Evaluate(t), ShouldAlmostEqual, (a.CumulativeIncidences[1].Evaluate(t)+b.CumulativeIncidences[1].Evaluate(t))/2, 1e-12)
			}
		})

		Convey("streaming on a fixed grid matches bulk combination on it", func() {
			grid := FunctionCombiner{Events: []int{1, 2}, Times: []float64{0.5, 2, 4.5}}
			acc := grid.StartIntermediateCombinedResponse(2)
			acc.ProcessNewInput(b)
			acc.ProcessNewInput(a)
			streamed := acc.TransformToOutput()
			bulk := grid.Combine([]Functions{a, b})
			So(streamed.Survival.Times, ShouldResemble, bulk.Survival.Times)
			for i := range bulk.Survival.Values {
				So(streamed.Survival.Values[i], ShouldAlmostEqual, bulk.Survival.Values[i], 1e-12)
			}
		})

		Convey("streaming without a grid matches bulk combination", func() {
			acc := fc.StartIntermediateCombinedResponse(2)
			acc.ProcessNewInput(a)
			acc.ProcessNewInput(b)
			So(acc.TransformToOutput(), ShouldResemble, fc.Combine([]Functions{a, b}))
		})

		Convey("streaming without a grid merges the functions as they arrive", func() {
			acc := fc.StartIntermediateCombinedResponse(3)
			for _, fs := range []Functions{b, a, b} {
				acc.ProcessNewInput(fs)
			}
			ma, ok := acc.(*mergingAccumulator)
			So(ok, ShouldBeTrue)
			So(ma.ga.times, ShouldResemble, []float64{1, 2, 3, 5})
			fs := acc.TransformToOutput()
			for _, t := range []float64{0, 1, 2.5, 3, 4, 5, 6} {
				So(fs.Survival.Evaluate(t), ShouldAlmostEqual, (a.Survival.Evaluate(t)+2*b.Survival.Evaluate(t))/3, 1e-12)
				So(fs.CauseSpecificHazards[0].Evaluate(t), ShouldAlmostEqual, (a.CauseSpecificHazards[0].Evaluate(t)+2*b.CauseSpecificHazards[0].Evaluate(t))/3, 1e-12)
				So(fs.CumulativeIncidences[1].Evaluate(t), ShouldAlmostEqual, (a.CumulativeIncidences[1].Evaluate(t)+2*b.CumulativeIncidences[1].Evaluate(t))/3, 1e-12)
			}
		})
	})
}

func TestListCombiner(t *testing.T) {
	Convey("Given the member list of a single tree's terminal node", t, func() {
		events := []int{1, 2}
		list := response.ListCombiner[Response]{}.Combine(responses)

		Convey("deferred combination equals direct combination", func() {
			direct := FunctionCombiner{Events: events}.Combine([]Functions{ResponseCombiner{Events: events}.Combine(list)})
			deferred := ListCombiner{Events: events}.Combine([][]Response{list})
			So(deferred, ShouldResemble, direct)
		})

		Convey("merging lists estimates over all their members", func() {
			merged := ListCombiner{Events: events}.Combine([][]Response{responses[:2], responses[2:]})
			So(merged, ShouldResemble, ResponseCombiner{Events: events}.Combine(responses))
		})
	})
}

func TestLogRankDifferentiator(t *testing.T) {
	Convey("Given log-rank differentiators", t, func() {
		d := LogRankDifferentiator{Events: []int{1, 2}}
		single := LogRankSingleGroupDifferentiator{Event: 1}

		Convey("empty groups or groups without events cannot be scored", func() {
			_, ok := d.Score(nil, responses)
			So(ok, ShouldBeFalse)
			_, ok = d.Score([]Response{{0, 1}}, []Response{{0, 2}})
			So(ok, ShouldBeFalse)
		})

		Convey("the statistic matches a hand computation", func() {
			score, ok := single.Score([]Response{{1, 1}, {1, 2}}, []Response{{0, 3}, {1, 4}})
			So(ok, ShouldBeTrue)
			numerator := 0.5 + 2.0/3
			variance := 0.25 + 2.0/9
			So(score, ShouldAlmostEqual, numerator/math.Sqrt(variance), 1e-12)
		})

		Convey("separated groups score higher than mixed ones", func() {
			separated, ok := d.Score([]Response{{1, 1}, {2, 2}, {1, 3}}, []Response{{0, 10}, {1, 11}, {0, 12}})
			So(ok, ShouldBeTrue)
			mixed, ok := d.Score([]Response{{1, 1}, {0, 10}, {1, 3}}, []Response{{2, 2}, {1, 11}, {0, 12}})
			So(ok, ShouldBeTrue)
			So(separated, ShouldBeGreaterThan, mixed)
		})
	})
}

func cifPrediction(risk float64) Functions {
	return Functions{
		Events:               []int{1},
		CumulativeIncidences: []Function{{Times: []float64{0}, Values: []float64{risk}}},
	}
}

func TestConcordanceErrorCalculator(t *testing.T) {
	Convey("Given a concordance error calculator for event 1", t, func() {
		cec := ConcordanceErrorCalculator{Event: 1}
		rs := []Response{{1, 1}, {1, 2}, {0, 3}}

		Convey("perfectly ordered risks have no error", func() {
			e := cec.AverageError(rs, []Functions{cifPrediction(0.9), cifPrediction(0.5), cifPrediction(0.1)})
			So(e, ShouldEqual, 0)
		})

		Convey("reversed risks have full error", func() {
			e := cec.AverageError(rs, []Functions{cifPrediction(0.1), cifPrediction(0.5), cifPrediction(0.9)})
			So(e, ShouldEqual, 1)
		})

		Convey("tied risks count half", func() {
			e := cec.AverageError(rs, []Functions{cifPrediction(0.5), cifPrediction(0.5), cifPrediction(0.5)})
			So(e, ShouldEqual, 0.5)
		})

		Convey("no comparable pairs is NaN", func() {
			e := cec.AverageError([]Response{{0, 1}, {0, 2}}, []Functions{cifPrediction(0.5), cifPrediction(0.5)})
			So(math.IsNaN(e), ShouldBeTrue)
		})
	})
}

func TestResponseParser(t *testing.T) {
	Convey("Given a response parser on fields delta and time", t, func() {
		rp := ResponseParser("delta", "time")

		Convey("it reads events and times", func() {
			r, err := rp(dataset.Record{"delta": "2", "time": "3.5"})
			So(err, ShouldBeNil)
			So(r, ShouldResemble, Response{Delta: 2, U: 3.5})
			So(r.IsCensored(), ShouldBeFalse)
		})

		Convey("it rejects invalid events and times", func() {
			for _, record := range []dataset.Record{
				{"delta": "-1", "time": "1"},
				{"delta": "a", "time": "1"},
				{"delta": "1", "time": "-2"},
				{"delta": "1"},
				{"time": "1"},
			} {
				_, err := rp(record)
				So(err, ShouldNotBeNil)
			}
		})
	})
}
