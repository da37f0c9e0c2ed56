package grove

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/response"
	"github.com/pbanos/grove/tree"
)

/*
Forest represents an ensemble of trees with outputs of type R whose
predictions of type P are the combination of the outputs of its trees by the
Combiner.
*/
type Forest[R, P any] struct {
	Trees      []*tree.Tree[R]
	Covariates []covariate.Covariate
	Combiner   response.ResponseCombiner[R, P]
}

/*
Predict takes a sample and returns the combination of the predictions of
every tree of the forest for it, or the first error a tree returns. The
sample must have a value for every covariate of the forest and, if it tells
its number of values, no more values than those.
*/
func (f *Forest[R, P]) Predict(s covariate.Sample) (P, error) {
	var zero P
	if len(f.Trees) == 0 {
		return zero, tree.ErrEmptyTree
	}
	err := f.check(s)
	if err != nil {
		return zero, err
	}
	icr := f.Combiner.StartIntermediateCombinedResponse(len(f.Trees))
	for i, t := range f.Trees {
		r, err := t.Predict(s)
		if err != nil {
			return zero, fmt.Errorf("tree %d predicting sample %d: %w", i, s.ID(), err)
		}
		icr.ProcessNewInput(r)
	}
	return icr.TransformToOutput(), nil
}

/*
PredictAll takes a context, a slice of samples and a number of workers and
returns the predictions of the forest for the samples in the same order,
computed by that many goroutines (as many as CPUs if workers is not
positive). The first error aborts the rest of the predictions and is
returned.
*/
func (f *Forest[R, P]) PredictAll(ctx context.Context, samples []covariate.Sample, workers int) ([]P, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	predictions := make([]P, len(samples))
	indexes := make(chan int)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				p, err := f.Predict(samples[i])
				if err != nil {
					fail(err)
					continue
				}
				predictions[i] = p
			}
		}()
	}
feed:
	for i := range samples {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return predictions, nil
}

type valueCounter interface {
	NumValues() int
}

func (f *Forest[R, P]) check(s covariate.Sample) error {
	for _, c := range f.Covariates {
		_, err := s.ValueAt(c.Index())
		if err != nil {
			return fmt.Errorf("sample %d has no value for covariate %s: %w", s.ID(), c.Name(), err)
		}
	}
	if vc, ok := s.(valueCounter); ok && vc.NumValues() > len(f.Covariates) {
		return fmt.Errorf("sample %d has %d values for %d covariates: %w", s.ID(), vc.NumValues(), len(f.Covariates), covariate.ErrUnknownCovariate)
	}
	return nil
}
