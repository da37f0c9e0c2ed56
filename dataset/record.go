package dataset

import (
	"fmt"

	"github.com/pbanos/grove/covariate"
)

/*
Record is a raw observation as read by a loader: a map of field names to raw
string values.
*/
type Record map[string]string

/*
ResponseParser takes a record and returns the response it holds or an error.
*/
type ResponseParser[Y any] func(Record) (Y, error)

/*
RowFromRecord takes an id, a record, the covariates to read from it and a
ResponseParser and returns the row for the record. Every covariate is read
from the field with its name through its CreateValue method. It fails with
the *covariate.ParseError of the first field that cannot be parsed, or with an
error if the record lacks a field for a covariate.
*/
func RowFromRecord[Y any](id int, record Record, covariates []covariate.Covariate, rp ResponseParser[Y]) (*Row[Y], error) {
	values := make([]covariate.Value, len(covariates))
	for _, c := range covariates {
		raw, ok := record[c.Name()]
		if !ok {
			return nil, fmt.Errorf("record %d has no field for covariate %s", id, c.Name())
		}
		v, err := c.CreateValue(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", id, err)
		}
		values[c.Index()] = v
	}
	response, err := rp(record)
	if err != nil {
		return nil, fmt.Errorf("record %d: parsing response: %w", id, err)
	}
	return &Row[Y]{id: id, response: response, values: values}, nil
}

/*
RecordFromSample takes a covariate.Sample and the covariates to read from it
and returns a Record with the string form of its values, using the empty
string for missing values.
*/
func RecordFromSample(s covariate.Sample, covariates []covariate.Covariate) (Record, error) {
	record := make(Record, len(covariates))
	for _, c := range covariates {
		v, err := s.ValueAt(c.Index())
		if err != nil {
			return nil, err
		}
		if v.IsNA() {
			record[c.Name()] = ""
			continue
		}
		record[c.Name()] = v.String()
	}
	return record, nil
}
