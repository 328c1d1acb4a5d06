package review

import "fmt"

// Review is one performance review. Instances are created through a Manager,
// which validates every field before the value exists.
type Review struct {
	id         int64
	hasID      bool
	year       int
	summary    string
	employeeID int64
}

// ID returns the primary key, or 0 when the review has not been saved.
func (r *Review) ID() int64 { return r.id }

// HasID reports whether the review is backed by a row.
func (r *Review) HasID() bool { return r.hasID }

func (r *Review) Year() int { return r.year }
func (r *Review) Summary() string { return r.summary }
func (r *Review) EmployeeID() int64 { return r.employeeID }

// Fields returns the current field values.
func (r *Review) Fields() Fields {
	return Fields{Year: r.year, Summary: r.summary, EmployeeID: r.employeeID}
}

// SetYear validates and assigns year. The review is unchanged on error.
func (r *Review) SetYear(year int) error {
	if err := checkYear(year); err != nil {
		return err
	}
	r.year = year
	return nil
}

// SetSummary validates and assigns summary. The review is unchanged on error.
func (r *Review) SetSummary(summary string) error {
	if err := checkSummary(summary); err != nil {
		return err
	}
	r.summary = summary
	return nil
}

func (r *Review) String() string {
	id := "unsaved"
	if r.hasID {
		id = fmt.Sprint(r.id)
	}
	return fmt.Sprintf("<Review %s: %d, %s, Employee: %d>", id, r.year, r.summary, r.employeeID)
}

func (r *Review) attach(id int64) {
	r.id = id
	r.hasID = true
}

func (r *Review) detach() {
	r.id = 0
	r.hasID = false
}
