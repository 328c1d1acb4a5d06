package review

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/saltyorg/staffdb/internal/database"
)

// EmployeeChecker answers whether an employee row exists.
type EmployeeChecker interface {
	EmployeeExists(id int64) (bool, error)
}

// Store is the persistence the manager needs. *database.DB satisfies it.
type Store interface {
	EmployeeChecker
	CreateReviewsTable() error
	DropReviewsTable() error
	InsertReview(year int, summary string, employeeID int64) (int64, error)
	UpdateReview(id int64, year int, summary string, employeeID int64) (int64, error)
	DeleteReview(id int64) (int64, error)
	GetReview(id int64) (*database.ReviewRow, error)
	ListReviews() ([]*database.ReviewRow, error)
	ListReviewsByEmployee(employeeID int64) ([]*database.ReviewRow, error)
}

// Manager validates, persists and caches reviews for one store.
type Manager struct {
	store    Store
	identity *IdentityMap
}

// NewManager creates a manager with an empty identity map.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		identity: NewIdentityMap(),
	}
}

// CreateTable creates the reviews table if it does not exist.
func (m *Manager) CreateTable() error {
	if err := m.store.CreateReviewsTable(); err != nil {
		return storeErr("create table", err)
	}
	return nil
}

// DropTable drops the reviews table if it exists, then forgets and detaches
// every cached instance. A later Save of one of them inserts a new row.
func (m *Manager) DropTable() error {
	if err := m.store.DropReviewsTable(); err != nil {
		return storeErr("drop table", err)
	}
	m.identity.Reset()
	return nil
}

// New validates f and returns an unsaved review. Shape rules are checked
// first, then the employee reference; nothing is constructed on failure.
func (m *Manager) New(f Fields) (*Review, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := m.CheckEmployee(f.EmployeeID); err != nil {
		return nil, err
	}
	return &Review{
		year:       f.Year,
		summary:    f.Summary,
		employeeID: f.EmployeeID,
	}, nil
}

// Create validates f, saves the review and returns it.
func (m *Manager) Create(f Fields) (*Review, error) {
	r, err := m.New(f)
	if err != nil {
		return nil, err
	}
	if err := m.Save(r); err != nil {
		return nil, err
	}
	return r, nil
}

// CheckEmployee returns a ValidationError when no employee with id exists.
func (m *Manager) CheckEmployee(id int64) error {
	exists, err := m.store.EmployeeExists(id)
	if err != nil {
		return storeErr("check employee", err)
	}
	if !exists {
		return &ValidationError{
			Field:   fieldEmployeeID,
			Reason:  ReasonUnknownReference,
			Message: "Employee ID must reference an existing employee.",
		}
	}
	return nil
}

// AssignEmployee points r at another employee after checking that it exists.
// The change is not persisted until Save or Update.
func (m *Manager) AssignEmployee(r *Review, employeeID int64) error {
	if err := checkEmployeeID(employeeID); err != nil {
		return err
	}
	if err := m.CheckEmployee(employeeID); err != nil {
		return err
	}
	r.employeeID = employeeID
	return nil
}

// Save inserts r when it has no ID, otherwise writes all of its fields to
// the existing row.
func (m *Manager) Save(r *Review) error {
	if r.HasID() {
		return m.write(r, "save")
	}

	id, err := m.store.InsertReview(r.year, r.summary, r.employeeID)
	if err != nil {
		return storeErr("insert", err)
	}
	r.attach(id)

	// A fresh row owns its key; anything still cached under it is stale.
	if prev := m.identity.Put(r); prev != nil {
		prev.detach()
		log.Warn().Int64("review_id", id).Msg("Replaced stale cached review")
	}

	log.Debug().Int64("review_id", id).Int64("employee_id", r.employeeID).Msg("Review inserted")
	return nil
}

// Update writes all fields of a saved review.
func (m *Manager) Update(r *Review) error {
	if !r.HasID() {
		return ErrNotPersisted
	}
	return m.write(r, "update")
}

func (m *Manager) write(r *Review, op string) error {
	n, err := m.store.UpdateReview(r.id, r.year, r.summary, r.employeeID)
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, r.id)
	}
	log.Debug().Int64("review_id", r.id).Msg("Review updated")
	return nil
}

// Delete removes the row behind r, evicts it from the identity map and
// clears its ID. A row already removed elsewhere is not an error.
func (m *Manager) Delete(r *Review) error {
	if !r.HasID() {
		return ErrNotPersisted
	}

	id := r.id
	n, err := m.store.DeleteReview(id)
	if err != nil {
		return storeErr("delete", err)
	}
	m.identity.Evict(id)
	r.detach()

	log.Debug().Int64("review_id", id).Int64("rows", n).Msg("Review deleted")
	return nil
}

// FindByID returns the review with the given ID, or ErrNotFound.
func (m *Manager) FindByID(id int64) (*Review, error) {
	row, err := m.store.GetReview(id)
	if err != nil {
		return nil, storeErr("find", err)
	}
	if row == nil {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return m.FromRow(row)
}

// GetAll returns every review in primary key order.
func (m *Manager) GetAll() ([]*Review, error) {
	rows, err := m.store.ListReviews()
	if err != nil {
		return nil, storeErr("list", err)
	}
	return m.fromRows(rows)
}

// ForEmployee returns the reviews written for one employee.
func (m *Manager) ForEmployee(employeeID int64) ([]*Review, error) {
	rows, err := m.store.ListReviewsByEmployee(employeeID)
	if err != nil {
		return nil, storeErr("list by employee", err)
	}
	return m.fromRows(rows)
}

func (m *Manager) fromRows(rows []*database.ReviewRow) ([]*Review, error) {
	reviews := make([]*Review, 0, len(rows))
	for _, row := range rows {
		r, err := m.FromRow(row)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, nil
}

// FromRow resolves a row to its review, preferring the cached instance.
// Uncached rows go through shape validation but not the employee check:
// the reference may have gone stale since the row was written.
func (m *Manager) FromRow(row *database.ReviewRow) (*Review, error) {
	if r, ok := m.identity.Get(row.ID); ok {
		return r, nil
	}

	f, err := fieldsFromRow(row)
	if err != nil {
		return nil, err
	}

	r := &Review{year: f.Year, summary: f.Summary, employeeID: f.EmployeeID}
	r.attach(row.ID)
	if !m.identity.Add(r) {
		// Lost a race with another lookup of the same key.
		cached, _ := m.identity.Get(row.ID)
		return cached, nil
	}

	log.Trace().Int64("review_id", row.ID).Msg("Review loaded from row")
	return r, nil
}

func fieldsFromRow(row *database.ReviewRow) (Fields, error) {
	if !row.Year.Valid {
		return Fields{}, &ValidationError{Field: fieldYear, Reason: ReasonInvalidType, Message: "Year must be an integer."}
	}
	if !row.Summary.Valid {
		return Fields{}, &ValidationError{Field: fieldSummary, Reason: ReasonInvalidType, Message: "Summary must be a string."}
	}
	if !row.EmployeeID.Valid {
		return Fields{}, &ValidationError{Field: fieldEmployeeID, Reason: ReasonInvalidType, Message: "Employee ID must be an integer."}
	}

	f := Fields{
		Year:       int(row.Year.Int64),
		Summary:    row.Summary.String,
		EmployeeID: row.EmployeeID.Int64,
	}
	return f, f.Validate()
}

// Cached returns the identity-mapped instance for id, if any.
func (m *Manager) Cached(id int64) (*Review, bool) {
	return m.identity.Get(id)
}

// CacheLen returns the number of identity-mapped instances.
func (m *Manager) CacheLen() int {
	return m.identity.Len()
}
