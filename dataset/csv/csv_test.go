package csv

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
	. "github.com/smartystreets/goconvey/convey"
)

func floatResponse(r dataset.Record) (float64, error) {
	return strconv.ParseFloat(r["y"], 64)
}

func TestReadRows(t *testing.T) {
	Convey("Given covariates x1 numeric, x2 factor and x3 boolean", t, func() {
		covariates, err := covariate.Build([]covariate.Settings{
			{Name: "x1", Kind: covariate.Numeric},
			{Name: "x2", Kind: covariate.Factor, Levels: []string{"dog", "cat", "mouse"}},
			{Name: "x3", Kind: covariate.Boolean},
		})
		So(err, ShouldBeNil)

		Convey("3 CSV records produce 3 rows matching their fields in file order", func() {
			content := "y,x1,x2,x3\n1.5,2.0,dog,true\n2,,cat,false\n-3,4.25,mouse,NA\n"
			rows, err := ReadRows(strings.NewReader(content), covariates, floatResponse)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 3)
			expected := []struct {
				id       int
				response float64
				values   []string
			}{
				{0, 1.5, []string{"2", "dog", "true"}},
				{1, 2, []string{"NA", "cat", "false"}},
				{2, -3, []string{"4.25", "mouse", "NA"}},
			}
			for i, e := range expected {
				So(rows[i].ID(), ShouldEqual, e.id)
				So(rows[i].Response(), ShouldEqual, e.response)
				So(rows[i].NumValues(), ShouldEqual, 3)
				for j, s := range e.values {
					v, err := rows[i].ValueAt(j)
					So(err, ShouldBeNil)
					So(v.String(), ShouldEqual, s)
				}
			}
			x1, _ := rows[0].ValueAt(0)
			So(x1, ShouldResemble, covariates[0].(*covariate.NumericCovariate).NewValue(2))
			x2, _ := rows[2].ValueAt(1)
			mouse, _ := covariates[1].(*covariate.FactorCovariate).NewValue("mouse")
			So(x2, ShouldResemble, mouse)
		})

		Convey("columns may come in any order", func() {
			content := "x3,x2,y,x1\nfalse,cat,1,3\n"
			rows, err := ReadRows(strings.NewReader(content), covariates, floatResponse)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
			v, _ := rows[0].ValueAt(0)
			So(v.String(), ShouldEqual, "3")
		})

		Convey("a value out of a factor's levels fails the load", func() {
			content := "y,x1,x2,x3\n1,2,horse,true\n"
			_, err := ReadRows(strings.NewReader(content), covariates, floatResponse)
			var pe *covariate.ParseError
			So(err, ShouldNotBeNil)
			So(errors.As(err, &pe), ShouldBeTrue)
			So(pe.Covariate, ShouldEqual, "x2")
		})

		Convey("a missing covariate column fails the load", func() {
			_, err := ReadRows(strings.NewReader("y,x1,x2\n1,2,dog\n"), covariates, floatResponse)
			So(err, ShouldNotBeNil)
		})

		Convey("reading can be stopped early", func() {
			content := "y,x1,x2,x3\n1,2,dog,true\n2,3,cat,false\n"
			var seen []int
			err := ReadRowsByRow(strings.NewReader(content), covariates, floatResponse, func(i int, r *dataset.Row[float64]) (bool, error) {
				seen = append(seen, i)
				return false, nil
			})
			So(err, ShouldBeNil)
			So(seen, ShouldResemble, []int{0})
		})
	})
}

func TestWriter(t *testing.T) {
	Convey("Given a writer with a header", t, func() {
		buf := &bytes.Buffer{}
		w, err := NewWriter(buf, []string{"id", "prediction"})
		So(err, ShouldBeNil)

		Convey("records are written with the header's fields", func() {
			n, err := w.Write(context.Background(), []dataset.Record{{"id": "0", "prediction": "1.5"}, {"prediction": "2"}})
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			So(w.Flush(), ShouldBeNil)
			So(w.Count(), ShouldEqual, 2)
			So(buf.String(), ShouldEqual, "id,prediction\n0,1.5\n,2\n")
		})
	})
}
