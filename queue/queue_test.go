package queue

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemQueue(t *testing.T) {
	Convey("Given a memory queue with some tasks", t, func() {
		ctx := context.Background()
		q := New()
		for i := 0; i < 3; i++ {
			So(q.Push(ctx, &Task{TreeIndex: i, Seed: int64(10 * i)}), ShouldBeNil)
		}

		Convey("tasks are pulled in order and counted as running", func() {
			task, tctx, err := q.Pull(ctx)
			So(err, ShouldBeNil)
			So(tctx, ShouldNotBeNil)
			So(task.TreeIndex, ShouldEqual, 0)
			pending, running, err := q.Count(ctx)
			So(err, ShouldBeNil)
			So(pending, ShouldEqual, 2)
			So(running, ShouldEqual, 1)

			Convey("dropped tasks go back to pending", func() {
				So(q.Drop(ctx, task.ID()), ShouldBeNil)
				pending, running, _ := q.Count(ctx)
				So(pending, ShouldEqual, 3)
				So(running, ShouldEqual, 0)
			})

			Convey("completed tasks leave the queue", func() {
				So(q.Complete(ctx, task.ID()), ShouldBeNil)
				So(q.Drop(ctx, task.ID()), ShouldBeNil)
				pending, running, _ := q.Count(ctx)
				So(pending, ShouldEqual, 2)
				So(running, ShouldEqual, 0)
			})

			Convey("stopping the queue cancels pulled contexts", func() {
				So(q.Stop(ctx), ShouldBeNil)
				So(tctx.Err(), ShouldEqual, context.Canceled)
			})
		})

		Convey("an empty queue pulls nothing", func() {
			for i := 0; i < 3; i++ {
				task, _, _ := q.Pull(ctx)
				So(q.Complete(ctx, task.ID()), ShouldBeNil)
			}
			task, tctx, err := q.Pull(ctx)
			So(task, ShouldBeNil)
			So(tctx, ShouldBeNil)
			So(err, ShouldBeNil)
			So(WaitFor(ctx, q, time.Millisecond), ShouldBeNil)
		})

		Convey("waiting honours the context", func() {
			cctx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
			defer cancel()
			So(WaitFor(cctx, q, time.Millisecond), ShouldNotBeNil)
		})
	})
}
