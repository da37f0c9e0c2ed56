/*
Package pgadapter provides an implementation of the Adapter interface in the
sqlloader package that works over a PostgreSQL database.
*/
package pgadapter

import (
	"database/sql"
	"fmt"

	"github.com/pbanos/grove/dataset/sqlloader"

	// Import of PostgreSQL driver
	_ "github.com/lib/pq"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a PostgreSQL database connection URL and returns an Adapter that
works on the database or an error if it fails to connect to it.
*/
func New(url string) (sqlloader.Adapter, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, err
	}
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) Quote(name string) (string, error) {
	return sqlloader.QuoteIdentifier(name, '"')
}

func (a *adapter) Placeholder(i int) string {
	return fmt.Sprintf("$%d", i)
}
