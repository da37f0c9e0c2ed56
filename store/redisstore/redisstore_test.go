package redisstore

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/store"
	"github.com/pbanos/grove/tree"
	treejson "github.com/pbanos/grove/tree/json"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/redis.v5"
)

func TestKeys(t *testing.T) {
	Convey("Given a redis store with a prefix", t, func() {
		rs := &redisStore[float64]{prefix: "forest"}

		Convey("tree keys carry the prefix and the index", func() {
			So(rs.keyFor(12), ShouldEqual, "forest:tree:12")
			i, ok := rs.indexFor("forest:tree:12")
			So(ok, ShouldBeTrue)
			So(i, ShouldEqual, 12)
			_, ok = rs.indexFor("other:tree:12")
			So(ok, ShouldBeFalse)
			_, ok = rs.indexFor("forest:tree:x")
			So(ok, ShouldBeFalse)
		})
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("GROVE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("GROVE_TEST_REDIS_ADDR not set")
	}
	Convey("Given a redis store", t, func() {
		ctx := context.Background()
		x := covariate.NewNumericCovariate("x", 0)
		rc := redis.NewClient(&redis.Options{Addr: addr})
		prefix := "grove-test"
		keys, _ := rc.Keys(prefix + ":*").Result()
		if len(keys) > 0 {
			rc.Del(keys...)
		}
		ts := New[float64](rc, prefix, treejson.NewTreeEncodeDecoder[float64]([]covariate.Covariate{x}))
		defer ts.Close(ctx)

		Convey("stored trees are retrieved by index", func() {
			tr := tree.New[float64](&tree.SplitNode[float64]{
				Rule:  x.SplitRule(1),
				Rows:  2,
				Left:  &tree.TerminalNode[float64]{Response: 1, Rows: 1},
				Right: &tree.TerminalNode[float64]{Response: 2, Rows: 1},
			})
			So(ts.Store(ctx, 3, tr), ShouldBeNil)
			So(ts.Store(ctx, 1, tr), ShouldBeNil)
			indexes, err := ts.Indexes(ctx)
			So(err, ShouldBeNil)
			So(indexes, ShouldResemble, []int{1, 3})
			got, err := ts.Get(ctx, 3)
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, tr.String())
			_, err = ts.Get(ctx, 2)
			So(errors.Is(err, store.ErrTreeNotFound), ShouldBeTrue)
		})
	})
}
