package database

import "database/sql"

func (db *DB) exec(query string, args ...any) (sql.Result, error) {
	return db.Exec(query, args...)
}

func (db *DB) query(query string, args ...any) (*sql.Rows, error) {
	return db.Query(query, args...)
}

func (db *DB) queryRow(query string, args ...any) *sql.Row {
	return db.QueryRow(query, args...)
}

func (db *DB) begin() (*sql.Tx, error) {
	return db.Begin()
}
