package sqlite3adapter

import (
	"context"
	"strconv"
	"testing"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
	"github.com/pbanos/grove/dataset/sqlloader"
	. "github.com/smartystreets/goconvey/convey"
)

func TestReadRows(t *testing.T) {
	Convey("Given an in-memory SQLite3 database with a table of records", t, func() {
		ctx := context.Background()
		a, err := New(":memory:")
		So(err, ShouldBeNil)
		defer a.DB().Close()
		_, err = a.DB().ExecContext(ctx, `CREATE TABLE rows (y TEXT, x1 REAL, x2 TEXT, x3 TEXT)`)
		So(err, ShouldBeNil)
		n, err := sqlloader.WriteRecords(ctx, a, "rows", []string{"y", "x1", "x2", "x3"}, []dataset.Record{
			{"y": "1.5", "x1": "2.5", "x2": "dog", "x3": "true"},
			{"y": "2", "x2": "cat", "x3": "false"},
			{"y": "-3", "x1": "4", "x2": "mouse"},
		})
		So(err, ShouldBeNil)
		So(n, ShouldEqual, 3)
		covariates, err := covariate.Build([]covariate.Settings{
			{Name: "x1", Kind: covariate.Numeric},
			{Name: "x2", Kind: covariate.Factor, Levels: []string{"dog", "cat", "mouse"}},
			{Name: "x3", Kind: covariate.Boolean},
		})
		So(err, ShouldBeNil)
		rp := func(r dataset.Record) (float64, error) {
			return strconv.ParseFloat(r["y"], 64)
		}

		Convey("its records are read as rows with NULLs as missing values", func() {
			rows, err := sqlloader.ReadRows(ctx, a, "rows", covariates, rp)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 3)
			So(rows[0].Response(), ShouldEqual, 1.5)
			v, _ := rows[0].ValueAt(0)
			So(v.String(), ShouldEqual, "2.5")
			v, _ = rows[1].ValueAt(0)
			So(v.IsNA(), ShouldBeTrue)
			v, _ = rows[2].ValueAt(1)
			So(v.String(), ShouldEqual, "mouse")
			v, _ = rows[2].ValueAt(2)
			So(v.IsNA(), ShouldBeTrue)
		})

		Convey("a table without a covariate's column cannot be read", func() {
			extra := covariate.NewNumericCovariate("x4", 3)
			_, err := sqlloader.ReadRows(ctx, a, "rows", append(covariates, extra), rp)
			So(err, ShouldNotBeNil)
		})

		Convey("invalid identifiers are rejected", func() {
			_, err := sqlloader.ReadRows(ctx, a, `ro"ws`, covariates, rp)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCreateTable(t *testing.T) {
	Convey("Given an in-memory SQLite3 database", t, func() {
		ctx := context.Background()
		a, err := New(":memory:")
		So(err, ShouldBeNil)
		defer a.DB().Close()
		columns := []string{"x1", "prediction"}

		Convey("a table created for some columns stores records with them", func() {
			So(sqlloader.CreateTable(ctx, a, "predictions", columns), ShouldBeNil)
			So(sqlloader.CreateTable(ctx, a, "predictions", columns), ShouldBeNil)
			n, err := sqlloader.WriteRecords(ctx, a, "predictions", columns, []dataset.Record{
				{"x1": "2.5", "prediction": "7"},
				{"x1": "", "prediction": "3.25"},
			})
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			x1 := covariate.NewNumericCovariate("x1", 0)
			rows, err := sqlloader.ReadRows(ctx, a, "predictions", []covariate.Covariate{x1}, func(r dataset.Record) (float64, error) {
				return strconv.ParseFloat(r["prediction"], 64)
			})
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(rows[1].Response(), ShouldEqual, 3.25)
			v, _ := rows[1].ValueAt(0)
			So(v.IsNA(), ShouldBeTrue)
		})

		Convey("invalid column names are rejected", func() {
			So(sqlloader.CreateTable(ctx, a, "predictions", []string{`x"1`}), ShouldNotBeNil)
		})
	})
}
