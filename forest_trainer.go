package grove

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/queue"
	"github.com/pbanos/grove/response"
	"github.com/pbanos/grove/store"
	"github.com/pbanos/grove/tree"
)

/*
ForestTrainer grows forests of trees with a TreeTrainer, as many at a time as
the TreeTrainer's settings establish, and combines their outputs with the
Combiner.

A task for every tree is pushed to the Queue (an in-memory one if nil) and
workers pull them, grow the trees and keep them on the Store (an in-memory
one if nil) by their index. Train only stops the queues it creates, so a
Queue may serve several calls to Train.
*/
type ForestTrainer[Y comparable, R, P any] struct {
	TreeTrainer *TreeTrainer[Y, R]
	Combiner    response.ResponseCombiner[R, P]
	Queue       queue.Queue
	Store       store.TreeStore[R]
	Logger      *zap.Logger
}

/*
Train takes a context and the rows to train on and returns a forest grown from
them, or an error. The seed of every tree derives from the settings' seed
before any tree is grown, so the forest does not depend on how the trees are
scheduled among workers. The first error growing or storing a tree cancels
the rest of the work and is returned, without a forest.
*/
func (ft *ForestTrainer[Y, R, P]) Train(ctx context.Context, rows []*dataset.Row[Y]) (*Forest[R, P], error) {
	settings := ft.TreeTrainer.Settings
	err := settings.Validate()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cannot grow a forest without rows")
	}
	q := ft.Queue
	if q == nil {
		q = queue.New()
		defer q.Stop(ctx)
	}
	ts := ft.Store
	if ts == nil {
		ts = store.NewMemoryTreeStore[R]()
	}
	err = Seed(ctx, settings, q)
	if err != nil {
		return nil, err
	}
	logger := ft.logger()
	logger.Info("growing forest",
		zap.Int("trees", settings.NTree),
		zap.Int("rows", len(rows)),
		zap.Int("covariates", len(ft.TreeTrainer.Covariates)),
		zap.Int("workers", settings.Workers),
	)
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error
	wg.Add(settings.Workers)
	for w := 0; w < settings.Workers; w++ {
		go func(w int) {
			defer wg.Done()
			err := ft.work(wctx, q, ts, rows)
			if err != nil {
				once.Do(func() {
					firstErr = err
					cancel()
				})
				logger.Debug("worker failed", zap.Int("worker", w), zap.Error(err))
			}
		}(w)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	trees, err := forestTrees(ctx, ts, settings.NTree)
	if err != nil {
		return nil, err
	}
	logger.Info("grown forest", zap.Int("trees", len(trees)))
	return &Forest[R, P]{Trees: trees, Covariates: ft.TreeTrainer.Covariates, Combiner: ft.Combiner}, nil
}

/*
Seed takes a context, settings and a queue and pushes to the queue a task for
every tree of a forest, with a seed drawn from a random stream seeded with the
settings' seed. It returns an error if a task cannot be pushed.
*/
func Seed(ctx context.Context, settings Settings, q queue.Queue) error {
	master := rand.New(rand.NewSource(settings.Seed))
	for i := 0; i < settings.NTree; i++ {
		err := q.Push(ctx, &queue.Task{TreeIndex: i, Seed: master.Int63()})
		if err != nil {
			return fmt.Errorf("pushing task for tree %d: %w", i, err)
		}
	}
	return nil
}

/*
work pulls tasks from the queue until it is empty, growing and storing the
tree of each. It returns a non-nil error if the given context is cancelled,
if a tree cannot be grown or stored or if an operation with the queue fails.
*/
func (ft *ForestTrainer[Y, R, P]) work(ctx context.Context, q queue.Queue, ts store.TreeStore[R], rows []*dataset.Row[Y]) error {
	for {
		task, tctx, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if task == nil {
			return nil
		}
		mctx, cancel := mergeCtxCancel(tctx, ctx)
		err = ft.workTask(mctx, q, ts, task, rows)
		cancel()
		if err != nil {
			return err
		}
		err = ctx.Err()
		if err != nil {
			return err
		}
	}
}

func (ft *ForestTrainer[Y, R, P]) workTask(ctx context.Context, q queue.Queue, ts store.TreeStore[R], task *queue.Task, rows []*dataset.Row[Y]) error {
	defer func() {
		q.Drop(ctx, task.ID())
	}()
	rnd := rand.New(rand.NewSource(task.Seed))
	trainingRows := rows
	if ft.TreeTrainer.Settings.Bootstrap {
		trainingRows, _ = dataset.Bootstrap(rows, rnd)
	}
	t, err := ft.TreeTrainer.GrowTree(ctx, trainingRows, rnd)
	if err != nil {
		return fmt.Errorf("growing tree %d: %w", task.TreeIndex, err)
	}
	err = ts.Store(ctx, task.TreeIndex, t)
	if err != nil {
		return fmt.Errorf("storing tree %d: %w", task.TreeIndex, err)
	}
	ft.logger().Debug("stored tree", zap.Int("tree", task.TreeIndex), zap.Int64("seed", task.Seed))
	return q.Complete(ctx, task.ID())
}

func forestTrees[R any](ctx context.Context, ts store.TreeStore[R], n int) ([]*tree.Tree[R], error) {
	trees := make([]*tree.Tree[R], n)
	for i := range trees {
		t, err := ts.Get(ctx, i)
		if err != nil {
			return nil, err
		}
		trees[i] = t
	}
	return trees, nil
}

func mergeCtxCancel(ctx1, ctx2 context.Context) (context.Context, context.CancelFunc) {
	mctx, cancel := context.WithCancel(ctx1)
	go func() {
		select {
		case <-mctx.Done():
		case <-ctx2.Done():
			cancel()
		}
	}()
	return mctx, cancel
}

func (ft *ForestTrainer[Y, R, P]) logger() *zap.Logger {
	if ft.Logger == nil {
		return zap.NewNop()
	}
	return ft.Logger
}
