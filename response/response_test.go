package response

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type countDifference struct{}

func (countDifference) Score(left, right []int) (float64, bool) {
	if len(left) == 0 || len(right) == 0 {
		return 0, false
	}
	var sum float64
	for _, y := range left {
		sum += float64(y)
	}
	for _, y := range right {
		sum -= float64(y)
	}
	return sum, true
}

func TestNewScorer(t *testing.T) {
	Convey("Given a differentiator without incremental scoring", t, func() {
		s := NewScorer[int](countDifference{}, []int{1, 2, 3})

		Convey("nothing on the left cannot be scored", func() {
			_, ok := s.Score()
			So(ok, ShouldBeFalse)
		})

		Convey("moves update the partition", func() {
			s.MoveLeft(2)
			s.MoveLeft(2)
			So(s.IsLeft(2), ShouldBeTrue)
			score, ok := s.Score()
			So(ok, ShouldBeTrue)
			So(score, ShouldEqual, 0)
			s.MoveLeft(1)
			score, _ = s.Score()
			So(score, ShouldEqual, 4)
			s.MoveLeft(0)
			_, ok = s.Score()
			So(ok, ShouldBeFalse)
			s.MoveRight(2)
			s.MoveRight(2)
			score, ok = s.Score()
			So(ok, ShouldBeTrue)
			So(score, ShouldEqual, 0)
		})
	})
}

func TestListCombiner(t *testing.T) {
	Convey("Given a list combiner", t, func() {
		var lc ListCombiner[string]

		Convey("bulk and streaming combination list the inputs in order", func() {
			inputs := []string{"a", "b", "c"}
			So(lc.Combine(inputs), ShouldResemble, inputs)
			acc := lc.StartIntermediateCombinedResponse(3)
			for _, in := range inputs {
				acc.ProcessNewInput(in)
			}
			So(acc.TransformToOutput(), ShouldResemble, inputs)
		})
	})
}
