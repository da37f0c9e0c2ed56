/*
Package sqlite3adapter provides an implementation of the Adapter interface in
the sqlloader package that works over an SQLite3 database.
*/
package sqlite3adapter

import (
	"database/sql"

	"github.com/pbanos/grove/dataset/sqlloader"

	// Import of sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

type adapter struct {
	db *sql.DB
}

/*
New takes a path to an SQLite3 database file and returns an Adapter that works
on the file's database or an error if it fails to open as an sqlite3 database.
A path of ":memory:" opens a private in-memory database.
*/
func New(path string) (sqlloader.Adapter, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return &adapter{db}, nil
}

func (a *adapter) DB() *sql.DB {
	return a.db
}

func (a *adapter) Quote(name string) (string, error) {
	return sqlloader.QuoteIdentifier(name, '"')
}

func (a *adapter) Placeholder(int) string {
	return "?"
}
