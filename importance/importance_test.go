package importance

import (
	"context"
	"math/rand"
	"testing"

	"github.com/pbanos/grove"
	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/regression"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCalculator(t *testing.T) {
	Convey("Given a forest that never splits on one of its covariates", t, func() {
		ctx := context.Background()
		x := covariate.NewNumericCovariate("x", 0)
		z := covariate.NewNumericCovariate("z", 1)
		rnd := rand.New(rand.NewSource(3))
		var rows []*dataset.Row[float64]
		for i := 0; i < 60; i++ {
			xv := rnd.Float64() * 10
			zv := rnd.Float64()
			if i < 40 {
				zv = 0.5
			}
			rows = append(rows, dataset.NewRow(i, 3*xv, []covariate.Value{x.NewValue(xv), z.NewValue(zv)}))
		}
		training, heldOut := rows[:40], rows[40:]
		ft := &grove.ForestTrainer[float64, float64, float64]{
			TreeTrainer: &grove.TreeTrainer[float64, float64]{
				Covariates:     []covariate.Covariate{x, z},
				Combiner:       regression.MeanResponseCombiner{},
				Differentiator: regression.VarianceGroupDifferentiator{},
				Settings:       grove.Settings{NodeSize: 3, NTree: 5, Seed: 9, Workers: 2, Bootstrap: true},
			},
			Combiner: regression.MeanResponseCombiner{},
		}
		forest, err := ft.Train(ctx, training)
		So(err, ShouldBeNil)
		for _, tr := range forest.Trees {
			So(tr.Stats().Splits[z.Index()], ShouldEqual, 0)
		}

		Convey("permuting the unused covariate makes no difference, whatever the permutation", func() {
			for seed := int64(1); seed <= 5; seed++ {
				c := &Calculator[float64, float64]{
					Predictor:       forest,
					ErrorCalculator: regression.ErrorCalculator{},
					Rows:            heldOut,
					Rand:            rand.New(rand.NewSource(seed)),
				}
				importance, err := c.Calculate(ctx, z)
				So(err, ShouldBeNil)
				So(importance, ShouldAlmostEqual, 0, 1e-12)
			}
		})

		Convey("permuting the covariate the response depends on increases the error", func() {
			c := &Calculator[float64, float64]{
				Predictor:       forest,
				ErrorCalculator: regression.ErrorCalculator{},
				Rows:            heldOut,
			}
			importances, err := c.CalculateAll(ctx, []covariate.Covariate{x, z})
			So(err, ShouldBeNil)
			So(importances, ShouldHaveLength, 2)
			So(importances[0], ShouldBeGreaterThan, 1)
			So(importances[1], ShouldAlmostEqual, 0, 1e-12)
		})

		Convey("the original rows are left untouched", func() {
			before := heldOut[0].String()
			c := &Calculator[float64, float64]{Predictor: forest, ErrorCalculator: regression.ErrorCalculator{}, Rows: heldOut}
			_, err := c.Calculate(ctx, x)
			So(err, ShouldBeNil)
			So(heldOut[0].String(), ShouldEqual, before)
		})

		Convey("held-out rows are required", func() {
			c := &Calculator[float64, float64]{Predictor: forest, ErrorCalculator: regression.ErrorCalculator{}}
			_, err := c.Calculate(ctx, x)
			So(err, ShouldNotBeNil)
		})
	})
}
