package database

import (
	"database/sql"
	"fmt"
)

// DepartmentRecord represents a department stored in the database.
type DepartmentRecord struct {
	ID       int64
	Name     string
	Location string
}

// CreateDepartment inserts a new department record.
func (db *DB) CreateDepartment(name, location string) (*DepartmentRecord, error) {
	result, err := db.exec(`
		INSERT INTO departments (name, location)
		VALUES (?, ?)
	`, name, location)
	if err != nil {
		return nil, fmt.Errorf("failed to create department: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get department id: %w", err)
	}

	return &DepartmentRecord{ID: id, Name: name, Location: location}, nil
}

// GetDepartment retrieves a department by ID.
func (db *DB) GetDepartment(id int64) (*DepartmentRecord, error) {
	d := &DepartmentRecord{}
	err := db.queryRow(`
		SELECT id, name, location FROM departments WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &d.Location)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return d, nil
}

// ListDepartments returns all departments ordered by ID.
func (db *DB) ListDepartments() ([]*DepartmentRecord, error) {
	rows, err := db.query("SELECT id, name, location FROM departments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []*DepartmentRecord
	for rows.Next() {
		d := &DepartmentRecord{}
		if err := rows.Scan(&d.ID, &d.Name, &d.Location); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// DeleteDepartment removes a department by ID.
func (db *DB) DeleteDepartment(id int64) error {
	_, err := db.exec("DELETE FROM departments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}
	return nil
}
