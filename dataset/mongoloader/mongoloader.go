/*
Package mongoloader provides methods to read dataset rows from a MongoDB
collection, with a document per row and a field per covariate.
*/
package mongoloader

import (
	"context"
	"fmt"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
)

/*
Loader reads rows from a collection of the default database of a MongoDB
session.
*/
type Loader struct {
	session    *mgo.Session
	collection string
}

/*
New takes a MongoDB session and a collection name and returns a Loader on that
collection of the session's default database.
*/
func New(session *mgo.Session, collection string) *Loader {
	return &Loader{session, collection}
}

/*
Dial takes a MongoDB connection URL and a collection name and returns a Loader
on that collection of the URL's database, or an error if it cannot connect.
*/
func Dial(url, collection string) (*Loader, error) {
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	return New(session, collection), nil
}

// Close closes the session of the loader
func (l *Loader) Close() {
	l.session.Close()
}

/*
ReadRows takes a context, a Loader, a slice of covariates and a
ResponseParser and returns the rows parsed from every document of the
loader's collection, or an error. Absent or null fields are read as missing
values.
*/
func ReadRows[Y any](ctx context.Context, l *Loader, covariates []covariate.Covariate, rp dataset.ResponseParser[Y]) ([]*dataset.Row[Y], error) {
	var rows []*dataset.Row[Y]
	s := l.session.Copy()
	defer s.Close()
	iter := s.DB("").C(l.collection).Find(nil).Iter()
	defer iter.Close()
	var doc bson.M
	for i := 0; iter.Next(&doc); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		row, err := dataset.RowFromRecord(i, RecordFromDocument(doc, covariates), covariates, rp)
		if err != nil {
			return nil, fmt.Errorf("parsing document of collection %s: %w", l.collection, err)
		}
		rows = append(rows, row)
		doc = nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("reading collection %s: %w", l.collection, err)
	}
	return rows, nil
}

/*
WriteRecords takes a context, a Loader and a slice of records and inserts a
document for each record on the loader's collection, leaving out empty fields.
It returns the number of inserted records or an error.
*/
func WriteRecords(ctx context.Context, l *Loader, records []dataset.Record) (int, error) {
	docs := make([]interface{}, 0, len(records))
	for _, r := range records {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		docs = append(docs, DocumentFromRecord(r))
	}
	s := l.session.Copy()
	defer s.Close()
	err := s.DB("").C(l.collection).Insert(docs...)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

/*
RecordFromDocument takes a document and a slice of covariates and returns a
Record with every field of the document in string form. Covariates the
document has no field for, or a null one, get an empty field.
*/
func RecordFromDocument(doc bson.M, covariates []covariate.Covariate) dataset.Record {
	record := make(dataset.Record, len(doc)+len(covariates))
	for _, c := range covariates {
		record[c.Name()] = ""
	}
	for k, v := range doc {
		if k == "_id" || v == nil {
			continue
		}
		record[k] = fmt.Sprintf("%v", v)
	}
	return record
}

// DocumentFromRecord returns a document with the non-empty fields of a record
func DocumentFromRecord(r dataset.Record) bson.M {
	doc := make(bson.M, len(r))
	for k, v := range r {
		if v != "" {
			doc[k] = v
		}
	}
	return doc
}
