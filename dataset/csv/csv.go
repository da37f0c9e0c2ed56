/*
Package csv provides methods to read dataset rows from CSV streams and to
write records to them.
*/
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
)

/*
Writer is an interface for a CSV stream to which records can be written.
*/
type Writer interface {
	// Write will attempt to write the given records and will return the
	// actually written number of records and an error (if not all records
	// could be written)
	Write(context.Context, []dataset.Record) (int, error)
	// Count returns the total number of records written to the writer
	Count() int
	// Flush ensures any pending written operations finish before returning.
	// It returns an error if that cannot be ensured.
	Flush() error
}

type csvWriter struct {
	count  int
	header []string
	w      *csv.Writer
}

/*
ReadRows takes an io.Reader for a CSV stream, a slice of covariates and a
ResponseParser and returns the rows parsed from the reader in order, or an
error.

The header or first row of the CSV content is expected to contain the names of
all the covariates in the given slice, in any order, plus any columns the
ResponseParser needs. The rest of the rows should consist of valid values for
the covariates, or the empty string, 'NA' or '?' to indicate a missing value.
Rows get their 0-based position in the stream as ID.
*/
func ReadRows[Y any](reader io.Reader, covariates []covariate.Covariate, rp dataset.ResponseParser[Y]) ([]*dataset.Row[Y], error) {
	rows := []*dataset.Row[Y]{}
	err := ReadRowsByRow(reader, covariates, rp, func(_ int, r *dataset.Row[Y]) (bool, error) {
		rows = append(rows, r)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

/*
ReadRowsByRow takes an io.Reader for a CSV stream, a slice of covariates, a
ResponseParser and a lambda function on an integer and a row that returns a
boolean value. It parses the rows from the reader and for each it calls the
lambda function with its index and the row. If the lambda function returns
true, it will continue processing the next row, otherwise it will stop. An
error is returned if something goes wrong when reading the stream or parsing a
row.
*/
func ReadRowsByRow[Y any](reader io.Reader, covariates []covariate.Covariate, rp dataset.ResponseParser[Y], lambda func(int, *dataset.Row[Y]) (bool, error)) error {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	err = checkHeader(header, covariates)
	if err != nil {
		return err
	}
	r.FieldsPerRecord = len(header)
	for l := 2; ; l++ {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		record := make(dataset.Record, len(header))
		for i, name := range header {
			record[name] = fields[i]
		}
		row, err := dataset.RowFromRecord(l-2, record, covariates, rp)
		if err != nil {
			return fmt.Errorf("parsing line %d: %w", l, err)
		}
		ok, err := lambda(l-2, row)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadRowsFromFilePath takes a filepath string, a slice of covariates and a
ResponseParser, opens the file to which the filepath points to (os.Stdin if it
is "") and uses ReadRows to return the rows read from it or an error.
*/
func ReadRowsFromFilePath[Y any](filepath string, covariates []covariate.Covariate, rp dataset.ResponseParser[Y]) ([]*dataset.Row[Y], error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("reading rows: %w", err)
		}
		defer f.Close()
	}
	rows, err := ReadRows(f, covariates, rp)
	if err != nil {
		err = fmt.Errorf("parsing CSV file %s: %w", filepath, err)
	}
	return rows, err
}

/*
NewWriter takes an io.Writer and a header with the names of the fields to
write and returns a Writer that will write records on the io.Writer with
those fields in that order. Fields missing from a record are written empty.
*/
func NewWriter(writer io.Writer, header []string) (Writer, error) {
	w := csv.NewWriter(writer)
	err := w.Write(header)
	if err != nil {
		return nil, fmt.Errorf("writing CSV header: %w", err)
	}
	return &csvWriter{header: header, w: w}, nil
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Write(ctx context.Context, records []dataset.Record) (int, error) {
	fields := make([]string, len(cw.header))
	for i, record := range records {
		select {
		case <-ctx.Done():
			return i, ctx.Err()
		default:
		}
		for j, name := range cw.header {
			fields[j] = record[name]
		}
		err := cw.w.Write(fields)
		if err != nil {
			return i, fmt.Errorf("writing record %d: %w", cw.count, err)
		}
		cw.count++
	}
	return len(records), nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}

func checkHeader(header []string, covariates []covariate.Covariate) error {
	columns := make(map[string]bool, len(header))
	for _, name := range header {
		if columns[name] {
			return fmt.Errorf("parsing header: column %s appears more than once", name)
		}
		columns[name] = true
	}
	for _, c := range covariates {
		if !columns[c.Name()] {
			return fmt.Errorf("parsing header: no column for covariate %s", c.Name())
		}
	}
	return nil
}
