package grove

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSettings(t *testing.T) {
	Convey("Given the default settings", t, func() {
		s := DefaultSettings()

		Convey("they are valid", func() {
			So(s.Validate(), ShouldBeNil)
		})

		Convey("invalid parameters are reported", func() {
			for _, modify := range []func(*Settings){
				func(s *Settings) { s.NodeSize = 0 },
				func(s *Settings) { s.MaxNodeDepth = -1 },
				func(s *Settings) { s.NumberOfSplits = -1 },
				func(s *Settings) { s.MTry = -2 },
				func(s *Settings) { s.NTree = 0 },
				func(s *Settings) { s.Workers = 0 },
			} {
				invalid := s
				modify(&invalid)
				So(invalid.Validate(), ShouldNotBeNil)
			}
		})
	})
}

func TestStoppingRules(t *testing.T) {
	Convey("Given the stopping rules", t, func() {
		Convey("node size stops small nodes", func() {
			r := NodeSizeRule[int](2)
			So(r.Stop([]int{1, 2}, 0), ShouldBeTrue)
			So(r.Stop([]int{1, 2, 3}, 0), ShouldBeFalse)
		})

		Convey("maximum depth stops deep nodes unless it is 0", func() {
			So(MaxDepthRule[int](2).Stop(nil, 2), ShouldBeTrue)
			So(MaxDepthRule[int](2).Stop(nil, 1), ShouldBeFalse)
			So(MaxDepthRule[int](0).Stop(nil, 100), ShouldBeFalse)
		})

		Convey("purity stops nodes with equal responses", func() {
			r := PurityRule[string]()
			So(r.Stop([]string{"a", "a"}, 0), ShouldBeTrue)
			So(r.Stop([]string{"a", "b"}, 0), ShouldBeFalse)
			So(r.Stop(nil, 0), ShouldBeTrue)
		})

		Convey("any of several rules stops when one does", func() {
			r := AnyOf(NodeSizeRule[int](1), MaxDepthRule[int](3))
			So(r.Stop([]int{1, 2}, 3), ShouldBeTrue)
			So(r.Stop([]int{1, 2}, 2), ShouldBeFalse)
		})

		Convey("settings describe their rules", func() {
			So(StoppingRules[int](Settings{NodeSize: 1}), ShouldHaveLength, 2)
			So(StoppingRules[int](Settings{NodeSize: 1, CheckNodePurity: true}), ShouldHaveLength, 3)
		})
	})
}
