package database

import (
	"database/sql"
	"fmt"
)

// EmployeeRecord represents an employee stored in the database.
type EmployeeRecord struct {
	ID           int64
	Name         string
	JobTitle     string
	DepartmentID *int64
}

// CreateEmployee inserts a new employee record. departmentID may be nil.
func (db *DB) CreateEmployee(name, jobTitle string, departmentID *int64) (*EmployeeRecord, error) {
	result, err := db.exec(`
		INSERT INTO employees (name, job_title, department_id)
		VALUES (?, ?, ?)
	`, name, jobTitle, ptrToNullInt64(departmentID))
	if err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get employee id: %w", err)
	}

	return &EmployeeRecord{
		ID:           id,
		Name:         name,
		JobTitle:     jobTitle,
		DepartmentID: departmentID,
	}, nil
}

// GetEmployee retrieves an employee by ID.
func (db *DB) GetEmployee(id int64) (*EmployeeRecord, error) {
	e := &EmployeeRecord{}
	var departmentID sql.NullInt64
	err := db.queryRow(`
		SELECT id, name, job_title, department_id FROM employees WHERE id = ?
	`, id).Scan(&e.ID, &e.Name, &e.JobTitle, &departmentID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	e.DepartmentID = nullInt64ToPtr(departmentID)
	return e, nil
}

// EmployeeExists reports whether an employee row with the given ID exists.
func (db *DB) EmployeeExists(id int64) (bool, error) {
	var exists bool
	err := db.queryRow("SELECT EXISTS(SELECT 1 FROM employees WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee %d: %w", id, err)
	}
	return exists, nil
}

// ListEmployees returns all employees ordered by ID.
func (db *DB) ListEmployees() ([]*EmployeeRecord, error) {
	rows, err := db.query("SELECT id, name, job_title, department_id FROM employees ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []*EmployeeRecord
	for rows.Next() {
		e := &EmployeeRecord{}
		var departmentID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Name, &e.JobTitle, &departmentID); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		e.DepartmentID = nullInt64ToPtr(departmentID)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee by ID.
func (db *DB) DeleteEmployee(id int64) error {
	_, err := db.exec("DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}
