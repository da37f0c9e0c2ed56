/*
Package sqlloader provides methods to read dataset rows from a table of a SQL
database. The database is accessed through an Adapter that deals with the
particularities of each SQL dialect.
*/
package sqlloader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pbanos/grove/covariate"
	"github.com/pbanos/grove/dataset"
)

/*
Adapter is an interface to a SQL database.

Its DB method returns the *sql.DB to query.

Its Quote method takes a table or column name and returns it quoted as an
identifier for the dialect, or an error if it cannot be used as one.

Its Placeholder method takes the 1-based position of a query parameter and
returns its placeholder for the dialect.
*/
type Adapter interface {
	DB() *sql.DB
	Quote(string) (string, error)
	Placeholder(int) string
}

/*
ReadRows takes a context, an Adapter, a table name, a slice of covariates and
a ResponseParser and returns the rows read from every record of the table or
an error. The table must have a column for each covariate, named after it, plus
any columns the ResponseParser needs. NULL values are read as missing values.
Rows get their 0-based position in the result set as ID.
*/
func ReadRows[Y any](ctx context.Context, a Adapter, table string, covariates []covariate.Covariate, rp dataset.ResponseParser[Y]) ([]*dataset.Row[Y], error) {
	rows := []*dataset.Row[Y]{}
	err := ReadRowsByRow(ctx, a, table, covariates, rp, func(_ int, r *dataset.Row[Y]) (bool, error) {
		rows = append(rows, r)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

/*
ReadRowsByRow takes a context, an Adapter, a table name, a slice of
covariates, a ResponseParser and a lambda function on an integer and a row
that returns a boolean value. It reads the records of the table and for each
it calls the lambda function with its index and the row parsed from it. If the
lambda function returns true, it will continue processing the next record,
otherwise it will stop.
*/
func ReadRowsByRow[Y any](ctx context.Context, a Adapter, table string, covariates []covariate.Covariate, rp dataset.ResponseParser[Y], lambda func(int, *dataset.Row[Y]) (bool, error)) error {
	qt, err := a.Quote(table)
	if err != nil {
		return err
	}
	sqlRows, err := a.DB().QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", qt))
	if err != nil {
		return fmt.Errorf("querying table %s: %w", table, err)
	}
	defer sqlRows.Close()
	columns, err := sqlRows.Columns()
	if err != nil {
		return fmt.Errorf("reading columns of table %s: %w", table, err)
	}
	err = checkColumns(table, columns, covariates)
	if err != nil {
		return err
	}
	fields := make([]sql.NullString, len(columns))
	dest := make([]interface{}, len(columns))
	for i := range fields {
		dest[i] = &fields[i]
	}
	for i := 0; sqlRows.Next(); i++ {
		err = sqlRows.Scan(dest...)
		if err != nil {
			return fmt.Errorf("scanning record %d of table %s: %w", i, table, err)
		}
		record := make(dataset.Record, len(columns))
		for j, name := range columns {
			if fields[j].Valid {
				record[name] = fields[j].String
			} else {
				record[name] = ""
			}
		}
		row, err := dataset.RowFromRecord(i, record, covariates, rp)
		if err != nil {
			return fmt.Errorf("parsing record of table %s: %w", table, err)
		}
		ok, err := lambda(i, row)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return sqlRows.Err()
}

/*
WriteRecords takes a context, an Adapter, a table name, the names of the
columns to fill and a slice of records and inserts the records on the table,
using NULL for empty fields. It returns the number of records inserted and an
error if not all of them could be.
*/
func WriteRecords(ctx context.Context, a Adapter, table string, columns []string, records []dataset.Record) (int, error) {
	qt, err := a.Quote(table)
	if err != nil {
		return 0, err
	}
	qcs := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		qcs[i], err = a.Quote(c)
		if err != nil {
			return 0, err
		}
		placeholders[i] = a.Placeholder(i + 1)
	}
	stmt, err := a.DB().PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", qt, strings.Join(qcs, ", "), strings.Join(placeholders, ", ")))
	if err != nil {
		return 0, fmt.Errorf("preparing insertion on table %s: %w", table, err)
	}
	defer stmt.Close()
	args := make([]interface{}, len(columns))
	for n, record := range records {
		for i, c := range columns {
			args[i] = sql.NullString{String: record[c], Valid: record[c] != ""}
		}
		_, err = stmt.ExecContext(ctx, args...)
		if err != nil {
			return n, fmt.Errorf("inserting record %d on table %s: %w", n, table, err)
		}
	}
	return len(records), nil
}

/*
CreateTable takes a context, an Adapter, a table name and the names of its
columns and creates the table, with a TEXT column for each name, unless it
already exists.
*/
func CreateTable(ctx context.Context, a Adapter, table string, columns []string) error {
	qt, err := a.Quote(table)
	if err != nil {
		return err
	}
	definitions := make([]string, len(columns))
	for i, c := range columns {
		qc, err := a.Quote(c)
		if err != nil {
			return err
		}
		definitions[i] = qc + " TEXT"
	}
	_, err = a.DB().ExecContext(ctx, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", qt, strings.Join(definitions, ", ")))
	if err != nil {
		return fmt.Errorf("creating table %s: %w", table, err)
	}
	return nil
}

func checkColumns(table string, columns []string, covariates []covariate.Covariate) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, c := range covariates {
		if !present[c.Name()] {
			return fmt.Errorf("table %s has no column for covariate %s", table, c.Name())
		}
	}
	return nil
}

/*
QuoteIdentifier takes a name and a quote character and returns the name
quoted with it, or an error if the name is empty or contains the quote
character.
*/
func QuoteIdentifier(name string, quote byte) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty identifier")
	}
	if strings.IndexByte(name, quote) >= 0 {
		return "", fmt.Errorf("identifier %s contains invalid character '%c'", name, quote)
	}
	return string(quote) + name + string(quote), nil
}
