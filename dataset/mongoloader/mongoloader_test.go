package mongoloader

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/mgo.v2/bson"
)

func TestRecordFromDocument(t *testing.T) {
	Convey("Given covariates and a document", t, func() {
		covariates, err := covariate.Build([]covariate.Settings{
			{Name: "x1", Kind: covariate.Numeric},
			{Name: "x2", Kind: covariate.Factor, Levels: []string{"dog", "cat"}},
			{Name: "x3", Kind: covariate.Boolean},
		})
		So(err, ShouldBeNil)
		doc := bson.M{"_id": bson.NewObjectId(), "y": 2.5, "x1": 3, "x2": "cat", "x3": nil}

		Convey("it becomes a record that covariates can parse", func() {
			record := RecordFromDocument(doc, covariates)
			So(record["y"], ShouldEqual, "2.5")
			So(record["x1"], ShouldEqual, "3")
			So(record["x2"], ShouldEqual, "cat")
			So(record["x3"], ShouldEqual, "")
			_, ok := record["_id"]
			So(ok, ShouldBeFalse)
			for _, c := range covariates {
				_, err := c.CreateValue(record[c.Name()])
				So(err, ShouldBeNil)
			}
		})

		Convey("absent fields are empty", func() {
			record := RecordFromDocument(bson.M{"x1": 1.0}, covariates)
			So(record["x2"], ShouldEqual, "")
			So(record["x3"], ShouldEqual, "")
		})
	})
}

func TestDocumentFromRecord(t *testing.T) {
	Convey("Given a record with an empty field", t, func() {
		record := dataset.Record{"x1": "2.5", "x2": "", "prediction": "7"}

		Convey("its document leaves the empty field out", func() {
			doc := DocumentFromRecord(record)
			So(doc, ShouldResemble, bson.M{"x1": "2.5", "prediction": "7"})
		})
	})
}

func TestWriteAndReadRows(t *testing.T) {
	url := os.Getenv("GROVE_TEST_MONGO_URL")
	if url == "" {
		t.Skip("GROVE_TEST_MONGO_URL not set")
	}
	Convey("Given a loader on a collection", t, func() {
		ctx := context.Background()
		l, err := Dial(url, "grove_test_rows")
		So(err, ShouldBeNil)
		defer l.Close()
		s := l.session.Copy()
		defer s.Close()
		s.DB("").C(l.collection).DropCollection()
		x1 := covariate.NewNumericCovariate("x1", 0)

		Convey("written records are read back as rows", func() {
			n, err := WriteRecords(ctx, l, []dataset.Record{{"x1": "1", "y": "2"}, {"x1": "", "y": "4"}})
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 2)
			rows, err := ReadRows(ctx, l, []covariate.Covariate{x1}, func(r dataset.Record) (float64, error) {
				return strconv.ParseFloat(r["y"], 64)
			})
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)
			So(rows[0].Response(), ShouldEqual, 2)
			v, _ := rows[1].ValueAt(0)
			So(v.IsNA(), ShouldBeTrue)
		})
	})
}
