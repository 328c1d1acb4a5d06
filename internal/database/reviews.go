package database

import (
	"database/sql"
	"fmt"
)

// ReviewRow is a raw row of the reviews table. Columns holding NULL or a
// value of the wrong storage class come back as invalid nulls so callers can
// reject them instead of failing the scan.
type ReviewRow struct {
	ID         int64
	Year       sql.NullInt64
	Summary    sql.NullString
	EmployeeID sql.NullInt64
}

const reviewColumns = `
	id,
	CASE WHEN typeof(year) = 'integer' THEN year END,
	CASE WHEN typeof(summary) = 'text' THEN summary END,
	CASE WHEN typeof(employee_id) = 'integer' THEN employee_id END`

// CreateReviewsTable creates the reviews table if it does not exist.
func (db *DB) CreateReviewsTable() error {
	_, err := db.exec(`
		CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY,
			year INT,
			summary TEXT,
			employee_id INTEGER,
			FOREIGN KEY (employee_id) REFERENCES employees(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create reviews table: %w", err)
	}
	return nil
}

// DropReviewsTable drops the reviews table if it exists.
func (db *DB) DropReviewsTable() error {
	if _, err := db.exec("DROP TABLE IF EXISTS reviews"); err != nil {
		return fmt.Errorf("failed to drop reviews table: %w", err)
	}
	return nil
}

// InsertReview inserts a review and returns the generated ID.
func (db *DB) InsertReview(year int, summary string, employeeID int64) (int64, error) {
	result, err := db.exec(`
		INSERT INTO reviews (year, summary, employee_id)
		VALUES (?, ?, ?)
	`, year, summary, employeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get review id: %w", err)
	}
	return id, nil
}

// UpdateReview overwrites every column of the review with the given ID and
// returns the number of rows matched.
func (db *DB) UpdateReview(id int64, year int, summary string, employeeID int64) (int64, error) {
	result, err := db.exec(`
		UPDATE reviews
		SET year = ?, summary = ?, employee_id = ?
		WHERE id = ?
	`, year, summary, employeeID, id)
	if err != nil {
		return 0, fmt.Errorf("failed to update review %d: %w", id, err)
	}
	return result.RowsAffected()
}

// DeleteReview removes a review by ID and returns the number of rows removed.
func (db *DB) DeleteReview(id int64) (int64, error) {
	result, err := db.exec("DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete review %d: %w", id, err)
	}
	return result.RowsAffected()
}

// GetReview retrieves a review row by ID.
func (db *DB) GetReview(id int64) (*ReviewRow, error) {
	r := &ReviewRow{}
	err := db.queryRow("SELECT"+reviewColumns+" FROM reviews WHERE id = ?", id).
		Scan(&r.ID, &r.Year, &r.Summary, &r.EmployeeID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review %d: %w", id, err)
	}
	return r, nil
}

// ListReviews returns every review row ordered by ID.
func (db *DB) ListReviews() ([]*ReviewRow, error) {
	return db.listReviews("SELECT" + reviewColumns + " FROM reviews ORDER BY id")
}

// ListReviewsByEmployee returns the review rows of one employee ordered by ID.
func (db *DB) ListReviewsByEmployee(employeeID int64) ([]*ReviewRow, error) {
	return db.listReviews("SELECT"+reviewColumns+" FROM reviews WHERE employee_id = ? ORDER BY id", employeeID)
}

func (db *DB) listReviews(query string, args ...any) ([]*ReviewRow, error) {
	rows, err := db.query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*ReviewRow
	for rows.Next() {
		r := &ReviewRow{}
		if err := rows.Scan(&r.ID, &r.Year, &r.Summary, &r.EmployeeID); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
