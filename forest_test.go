package grove

import (
	"context"
	"errors"
	"testing"

	"github.com/pbanos/grove/competingrisk"
	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/queue"
	"github.com/pbanos/grove/regression"
	"github.com/pbanos/grove/store"
	"github.com/pbanos/grove/tree"
	. "github.com/smartystreets/goconvey/convey"
)

func regressionForestTrainer(covariates []covariate.Covariate, settings Settings) *ForestTrainer[float64, float64, float64] {
	return &ForestTrainer[float64, float64, float64]{
		TreeTrainer: &TreeTrainer[float64, float64]{
			Covariates:     covariates,
			Combiner:       regression.MeanResponseCombiner{},
			Differentiator: regression.VarianceGroupDifferentiator{},
			Settings:       settings,
		},
		Combiner: regression.MeanResponseCombiner{},
	}
}

func TestForestTrainer(t *testing.T) {
	Convey("Given rows and forest settings", t, func() {
		ctx := context.Background()
		rows, covariates := randomRows(80, 5)
		settings := Settings{NodeSize: 5, MTry: 2, NTree: 6, Seed: 11, Workers: 3, Bootstrap: true}

		Convey("a forest with a tree for every task is grown", func() {
			ts := store.NewMemoryTreeStore[float64]()
			ft := regressionForestTrainer(covariates, settings)
			ft.Store = ts
			forest, err := ft.Train(ctx, rows)
			So(err, ShouldBeNil)
			So(forest.Trees, ShouldHaveLength, 6)
			So(forest.Covariates, ShouldResemble, covariates)
			indexes, err := ts.Indexes(ctx)
			So(err, ShouldBeNil)
			So(indexes, ShouldResemble, []int{0, 1, 2, 3, 4, 5})

			Convey("the forest does not depend on the number of workers", func() {
				settings.Workers = 1
				other, err := regressionForestTrainer(covariates, settings).Train(ctx, rows)
				So(err, ShouldBeNil)
				for i, tr := range forest.Trees {
					So(other.Trees[i].String(), ShouldEqual, tr.String())
				}
			})

			Convey("predictions combine those of every tree", func() {
				p, err := forest.Predict(rows[0])
				So(err, ShouldBeNil)
				var sum float64
				for _, tr := range forest.Trees {
					r, err := tr.Predict(rows[0])
					So(err, ShouldBeNil)
					sum += r
				}
				So(p, ShouldAlmostEqual, sum/6, 1e-9)
			})

			Convey("batch predictions match single ones", func() {
				predictions, err := forest.PredictAll(ctx, dataset.Samples(rows), 4)
				So(err, ShouldBeNil)
				So(predictions, ShouldHaveLength, len(rows))
				for i, r := range rows {
					p, err := forest.Predict(r)
					So(err, ShouldBeNil)
					So(predictions[i], ShouldEqual, p)
				}
			})

			Convey("batch predictions fail on samples lacking covariates", func() {
				samples := dataset.Samples(rows)
				samples[3] = dataset.NewRow(3, 0.0, nil)
				_, err := forest.PredictAll(ctx, samples, 2)
				So(errors.Is(err, covariate.ErrUnknownCovariate), ShouldBeTrue)
			})
		})

		Convey("the first failure aborts the forest", func() {
			broken := append([]covariate.Covariate{}, covariates...)
			broken = append(broken, covariate.NewNumericCovariate("extra", len(covariates)))
			forest, err := regressionForestTrainer(broken, settings).Train(ctx, rows)
			So(err, ShouldNotBeNil)
			So(errors.Is(err, covariate.ErrUnknownCovariate), ShouldBeTrue)
			So(forest, ShouldBeNil)
		})

		Convey("a queue of the caller can be used for more than one forest", func() {
			q := queue.New()
			ft := regressionForestTrainer(covariates, settings)
			ft.Queue = q
			first, err := ft.Train(ctx, rows)
			So(err, ShouldBeNil)
			second, err := ft.Train(ctx, rows)
			So(err, ShouldBeNil)
			So(second.Trees, ShouldHaveLength, len(first.Trees))
			for i, tr := range first.Trees {
				So(second.Trees[i].String(), ShouldEqual, tr.String())
			}
		})

		Convey("invalid settings are rejected", func() {
			settings.Workers = 0
			_, err := regressionForestTrainer(covariates, settings).Train(ctx, rows)
			So(err, ShouldNotBeNil)
		})

		Convey("a cancelled context aborts the forest", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := regressionForestTrainer(covariates, settings).Train(cctx, rows)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSeed(t *testing.T) {
	Convey("Given settings and a queue", t, func() {
		ctx := context.Background()
		settings := Settings{NTree: 3, Seed: 5}
		q1, q2 := queue.New(), queue.New()

		Convey("a task is pushed for every tree with seeds derived from the master seed", func() {
			So(Seed(ctx, settings, q1), ShouldBeNil)
			So(Seed(ctx, settings, q2), ShouldBeNil)
			pending, _, err := q1.Count(ctx)
			So(err, ShouldBeNil)
			So(pending, ShouldEqual, 3)
			for i := 0; i < 3; i++ {
				t1, _, _ := q1.Pull(ctx)
				t2, _, _ := q2.Pull(ctx)
				So(t1.TreeIndex, ShouldEqual, i)
				So(t1.Seed, ShouldEqual, t2.Seed)
			}
		})
	})
}

func TestCompetingRiskForest(t *testing.T) {
	Convey("Given competing risk rows", t, func() {
		ctx := context.Background()
		x := covariate.NewNumericCovariate("x", 0)
		var rows []*dataset.Row[competingrisk.Response]
		for i := 0; i < 20; i++ {
			delta := 1
			if i >= 10 {
				delta = 2
			}
			if i%5 == 0 {
				delta = 0
			}
			rows = append(rows, dataset.NewRow(i, competingrisk.Response{Delta: delta, U: float64(i%10 + 1)}, []covariate.Value{x.NewValue(float64(i))}))
		}
		events := []int{1, 2}
		ft := &ForestTrainer[competingrisk.Response, competingrisk.Functions, competingrisk.Functions]{
			TreeTrainer: &TreeTrainer[competingrisk.Response, competingrisk.Functions]{
				Covariates:     []covariate.Covariate{x},
				Combiner:       competingrisk.ResponseCombiner{Events: events},
				Differentiator: competingrisk.LogRankDifferentiator{Events: events},
				Settings:       Settings{NodeSize: 4, NTree: 3, Seed: 3, Workers: 2, Bootstrap: true},
			},
			Combiner: competingrisk.FunctionCombiner{Events: events},
		}

		Convey("a forest predicting cumulative incidences is grown", func() {
			forest, err := ft.Train(ctx, rows)
			So(err, ShouldBeNil)
			fs, err := forest.Predict(rows[0])
			So(err, ShouldBeNil)
			cif, err := fs.CumulativeIncidence(1)
			So(err, ShouldBeNil)
			So(cif.Evaluate(100), ShouldBeBetweenOrEqual, 0.0, 1.0)
		})
	})
}

func TestForestPredict(t *testing.T) {
	Convey("Given a forest without trees", t, func() {
		forest := &Forest[float64, float64]{Combiner: regression.MeanResponseCombiner{}}

		Convey("predicting fails", func() {
			_, err := forest.Predict(dataset.NewRow(0, 0.0, nil))
			So(err, ShouldEqual, tree.ErrEmptyTree)
		})
	})

	Convey("Given a forest whose tree only splits on the first of its covariates", t, func() {
		x := covariate.NewNumericCovariate("x", 0)
		b := covariate.NewBooleanCovariate("b", 1)
		tr := tree.New[float64](&tree.SplitNode[float64]{
			Rule:  x.SplitRule(2),
			Left:  &tree.TerminalNode[float64]{Response: 1, Rows: 2},
			Right: &tree.TerminalNode[float64]{Response: 3, Rows: 2},
			Rows:  4,
		})
		forest := &Forest[float64, float64]{
			Trees:      []*tree.Tree[float64]{tr},
			Covariates: []covariate.Covariate{x, b},
			Combiner:   regression.MeanResponseCombiner{},
		}

		Convey("samples with a value for every covariate are predicted", func() {
			p, err := forest.Predict(dataset.NewRow(0, 0.0, []covariate.Value{x.NewValue(5), b.NewValue(true)}))
			So(err, ShouldBeNil)
			So(p, ShouldEqual, 3)
		})

		Convey("samples lacking a covariate the tree does not visit fail", func() {
			_, err := forest.Predict(dataset.NewRow(0, 0.0, []covariate.Value{x.NewValue(5)}))
			So(errors.Is(err, covariate.ErrUnknownCovariate), ShouldBeTrue)
		})

		Convey("samples with more values than covariates fail", func() {
			_, err := forest.Predict(dataset.NewRow(0, 0.0, []covariate.Value{x.NewValue(5), b.NewValue(true), x.NewValue(1)}))
			So(errors.Is(err, covariate.ErrUnknownCovariate), ShouldBeTrue)
			_, err = forest.PredictAll(context.Background(), []covariate.Sample{dataset.NewRow(0, 0.0, []covariate.Value{x.NewValue(5), b.NewValue(true), x.NewValue(1)})}, 1)
			So(errors.Is(err, covariate.ErrUnknownCovariate), ShouldBeTrue)
		})
	})
}
