package review

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// MinYear is the earliest year a review may cover.
const MinYear = 2000

var yearRule = "gte=" + strconv.Itoa(MinYear)

const (
	fieldYear       = "year"
	fieldSummary    = "summary"
	fieldEmployeeID = "employee_id"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Fields are the user-settable columns of a review.
type Fields struct {
	Year       int
	Summary    string
	EmployeeID int64
}

// Validate checks year, summary and employee_id shape, in that order, and
// returns the first failure. It never touches the store.
func (f Fields) Validate() error {
	if err := checkYear(f.Year); err != nil {
		return err
	}
	if err := checkSummary(f.Summary); err != nil {
		return err
	}
	return checkEmployeeID(f.EmployeeID)
}

// ParseYear converts text input to a year, reporting non-integers as an
// invalid-type validation failure.
func ParseYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: fieldYear, Reason: ReasonInvalidType, Message: "Year must be an integer."}
	}
	return year, checkYear(year)
}

// ParseEmployeeID converts text input to an employee id.
func ParseEmployeeID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &ValidationError{Field: fieldEmployeeID, Reason: ReasonInvalidType, Message: "Employee ID must be an integer."}
	}
	return id, checkEmployeeID(id)
}

func checkYear(year int) error {
	if failed(validate.Var(year, yearRule)) {
		return &ValidationError{Field: fieldYear, Reason: ReasonOutOfRange, Message: "Year must be greater than or equal to 2000."}
	}
	return nil
}

func checkSummary(summary string) error {
	if failed(validate.Var(summary, "required")) {
		return &ValidationError{Field: fieldSummary, Reason: ReasonEmpty, Message: "Summary cannot be empty."}
	}
	return nil
}

func checkEmployeeID(id int64) error {
	if failed(validate.Var(id, "gt=0")) {
		return &ValidationError{Field: fieldEmployeeID, Reason: ReasonOutOfRange, Message: "Employee ID must be a positive integer."}
	}
	return nil
}

// failed reports whether err is a rule violation. Anything else means the
// rule itself is malformed, which is a programming error.
func failed(err error) bool {
	if err == nil {
		return false
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return true
	}
	panic(err)
}
