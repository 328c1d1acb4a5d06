package review

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/saltyorg/staffdb/internal/config"
	"github.com/saltyorg/staffdb/internal/database"
)

type ManagerSuite struct {
	suite.Suite
	db       *database.DB
	manager  *Manager
	employee *database.EmployeeRecord
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	// One connection, so per-connection pragmas set by a test stick.
	opts := config.DefaultStoreOptions()
	opts.MaxOpenConns = 1
	opts.MaxIdleConns = 1

	db, err := database.New(filepath.Join(s.T().TempDir(), "test.db"), opts)
	s.Require().NoError(err)
	s.Require().NoError(db.Migrate())
	s.db = db

	dept, err := db.CreateDepartment("Engineering", "Floor 3")
	s.Require().NoError(err)
	s.employee, err = db.CreateEmployee("Ada Lovelace", "Engineer", &dept.ID)
	s.Require().NoError(err)

	s.manager = NewManager(db)
	s.Require().NoError(s.manager.CreateTable())
}

func (s *ManagerSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *ManagerSuite) fields(year int, summary string) Fields {
	return Fields{Year: year, Summary: summary, EmployeeID: s.employee.ID}
}

// TestConcreteScenario walks create, list and update against a fresh table.
func (s *ManagerSuite) TestConcreteScenario() {
	r, err := s.manager.Create(Fields{Year: 2021, Summary: "Exceeds expectations", EmployeeID: 1})
	s.Require().NoError(err)
	s.Equal(int64(1), r.ID())
	s.True(r.HasID())

	all, err := s.manager.GetAll()
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Same(r, all[0])

	s.Require().NoError(r.SetYear(2022))
	s.Require().NoError(s.manager.Update(r))

	found, err := s.manager.FindByID(1)
	s.Require().NoError(err)
	s.Equal(2022, found.Year())
}

func (s *ManagerSuite) TestRoundTripThroughFreshManager() {
	created, err := s.manager.Create(s.fields(2023, "Good work"))
	s.Require().NoError(err)

	// A second manager has an empty identity map, so the row is read back.
	other := NewManager(s.db)
	found, err := other.FindByID(created.ID())
	s.Require().NoError(err)
	s.NotSame(created, found)
	s.Equal(created.Fields(), found.Fields())
	s.Equal(created.ID(), found.ID())
}

func (s *ManagerSuite) TestFindByIDUsesIdentityMap() {
	created, err := s.manager.Create(s.fields(2023, "Good work"))
	s.Require().NoError(err)

	found, err := s.manager.FindByID(created.ID())
	s.Require().NoError(err)
	s.Same(created, found)

	cached, ok := s.manager.Cached(created.ID())
	s.True(ok)
	s.Same(created, cached)
}

func (s *ManagerSuite) TestSaveIsIdempotent() {
	r, err := s.manager.Create(s.fields(2020, "Solid"))
	s.Require().NoError(err)

	s.Require().NoError(s.manager.Save(r))
	s.Require().NoError(s.manager.Save(r))

	row, err := s.db.GetReview(r.ID())
	s.Require().NoError(err)
	s.Require().NotNil(row)
	s.Equal(int64(2020), row.Year.Int64)
	s.Equal("Solid", row.Summary.String)
	s.Equal(s.employee.ID, row.EmployeeID.Int64)

	all, err := s.manager.GetAll()
	s.Require().NoError(err)
	s.Len(all, 1)
}

func (s *ManagerSuite) TestDelete() {
	s.Run("removes row, evicts and clears id", func() {
		r, err := s.manager.Create(s.fields(2024, "Promoted"))
		s.Require().NoError(err)
		id := r.ID()

		s.Require().NoError(s.manager.Delete(r))
		s.False(r.HasID())
		s.Zero(r.ID())

		_, ok := s.manager.Cached(id)
		s.False(ok)

		_, err = s.manager.FindByID(id)
		s.ErrorIs(err, ErrNotFound)
		s.Equal(KindNotFound, KindOf(err))
	})

	s.Run("rejects unsaved review", func() {
		r, err := s.manager.New(s.fields(2024, "Draft"))
		s.Require().NoError(err)
		s.ErrorIs(s.manager.Delete(r), ErrNotPersisted)
	})

	s.Run("second delete reports not persisted", func() {
		r, err := s.manager.Create(s.fields(2024, "Twice"))
		s.Require().NoError(err)
		s.Require().NoError(s.manager.Delete(r))
		s.ErrorIs(s.manager.Delete(r), ErrNotPersisted)
	})

	s.Run("row removed out of band is not an error", func() {
		r, err := s.manager.Create(s.fields(2024, "Gone"))
		s.Require().NoError(err)
		_, err = s.db.DeleteReview(r.ID())
		s.Require().NoError(err)

		s.Require().NoError(s.manager.Delete(r))
		s.False(r.HasID())
	})

	s.Run("saving a deleted review inserts it again", func() {
		r, err := s.manager.Create(s.fields(2024, "Back"))
		s.Require().NoError(err)
		s.Require().NoError(s.manager.Delete(r))

		s.Require().NoError(s.manager.Save(r))
		s.True(r.HasID())
		found, err := s.manager.FindByID(r.ID())
		s.Require().NoError(err)
		s.Same(r, found)
	})
}

func (s *ManagerSuite) TestUpdate() {
	s.Run("rejects unsaved review", func() {
		r, err := s.manager.New(s.fields(2022, "Draft"))
		s.Require().NoError(err)
		err = s.manager.Update(r)
		s.ErrorIs(err, ErrNotPersisted)
		s.Equal(KindNotPersisted, KindOf(err))
	})

	s.Run("reports vanished row as not found", func() {
		r, err := s.manager.Create(s.fields(2022, "Vanishing"))
		s.Require().NoError(err)
		_, err = s.db.DeleteReview(r.ID())
		s.Require().NoError(err)

		s.ErrorIs(s.manager.Update(r), ErrNotFound)
		s.ErrorIs(s.manager.Save(r), ErrNotFound)
	})
}

func (s *ManagerSuite) TestEmployeeReference() {
	s.Run("construction rejects unknown employee", func() {
		_, err := s.manager.New(Fields{Year: 2022, Summary: "Nobody", EmployeeID: 999})
		var verr *ValidationError
		s.Require().ErrorAs(err, &verr)
		s.Equal(ReasonUnknownReference, verr.Reason)
		s.Equal("employee_id", verr.Field)
		s.Equal(0, s.manager.CacheLen())
	})

	s.Run("assign leaves review untouched on failure", func() {
		r, err := s.manager.Create(s.fields(2022, "Stays"))
		s.Require().NoError(err)

		s.ErrorIs(s.manager.AssignEmployee(r, 999), ErrValidation)
		s.ErrorIs(s.manager.AssignEmployee(r, 0), ErrValidation)
		s.Equal(s.employee.ID, r.EmployeeID())
	})

	s.Run("assign to existing employee", func() {
		other, err := s.db.CreateEmployee("Grace Hopper", "Admiral", nil)
		s.Require().NoError(err)

		r, err := s.manager.Create(s.fields(2022, "Moves"))
		s.Require().NoError(err)
		s.Require().NoError(s.manager.AssignEmployee(r, other.ID))
		s.Require().NoError(s.manager.Save(r))

		reviews, err := s.manager.ForEmployee(other.ID)
		s.Require().NoError(err)
		s.Require().Len(reviews, 1)
		s.Same(r, reviews[0])
	})

	s.Run("stale reference still loads", func() {
		temp, err := s.db.CreateEmployee("Temp", "Contractor", nil)
		s.Require().NoError(err)
		r, err := s.manager.Create(Fields{Year: 2021, Summary: "Short stint", EmployeeID: temp.ID})
		s.Require().NoError(err)

		// Bypass the foreign key to simulate an out-of-band removal.
		_, err = s.db.Exec("PRAGMA foreign_keys = OFF")
		s.Require().NoError(err)
		s.Require().NoError(s.db.DeleteEmployee(temp.ID))

		fresh := NewManager(s.db)
		found, err := fresh.FindByID(r.ID())
		s.Require().NoError(err)
		s.Equal(temp.ID, found.EmployeeID())
	})
}

func (s *ManagerSuite) TestFromRowRejectsBadColumns() {
	_, err := s.db.Exec("INSERT INTO reviews (id, year, summary, employee_id) VALUES (50, 'soon', 'text', ?)", s.employee.ID)
	s.Require().NoError(err)
	_, err = s.db.Exec("INSERT INTO reviews (id, year, summary, employee_id) VALUES (51, 1999, 'old', ?)", s.employee.ID)
	s.Require().NoError(err)

	_, err = s.manager.FindByID(50)
	var verr *ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal(ReasonInvalidType, verr.Reason)

	_, err = s.manager.FindByID(51)
	s.Require().ErrorAs(err, &verr)
	s.Equal(ReasonOutOfRange, verr.Reason)

	s.Equal(0, s.manager.CacheLen())
}

func (s *ManagerSuite) TestDropTableResetsCache() {
	_, err := s.manager.Create(s.fields(2022, "Cached"))
	s.Require().NoError(err)
	s.Equal(1, s.manager.CacheLen())

	s.Require().NoError(s.manager.DropTable())
	s.Equal(0, s.manager.CacheLen())
	s.Require().NoError(s.manager.DropTable())

	_, err = s.manager.GetAll()
	s.ErrorIs(err, ErrStore)

	s.Require().NoError(s.manager.CreateTable())
	s.Require().NoError(s.manager.CreateTable())
	all, err := s.manager.GetAll()
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ManagerSuite) TestDropTableDetachesCachedReviews() {
	stale, err := s.manager.Create(s.fields(2021, "Before drop"))
	s.Require().NoError(err)

	s.Require().NoError(s.manager.DropTable())
	s.Require().NoError(s.manager.CreateTable())
	s.False(stale.HasID())

	fresh, err := s.manager.Create(s.fields(2022, "After drop"))
	s.Require().NoError(err)
	s.Equal(int64(1), fresh.ID())

	s.Require().NoError(stale.SetSummary("clobbered"))
	s.ErrorIs(s.manager.Update(stale), ErrNotPersisted)

	row, err := s.db.GetReview(fresh.ID())
	s.Require().NoError(err)
	s.Require().NotNil(row)
	s.Equal("After drop", row.Summary.String)

	// Saving the detached instance inserts it as a new row.
	s.Require().NoError(s.manager.Save(stale))
	s.NotEqual(fresh.ID(), stale.ID())
}

func (s *ManagerSuite) TestSaveDetachesInstanceForReusedKey() {
	_, err := s.manager.Create(s.fields(2020, "First"))
	s.Require().NoError(err)
	old, err := s.manager.Create(s.fields(2021, "Highest key"))
	s.Require().NoError(err)
	oldID := old.ID()

	// SQLite hands the max rowid out again once its row is gone.
	_, err = s.db.DeleteReview(oldID)
	s.Require().NoError(err)

	replacement, err := s.manager.Create(s.fields(2022, "Reused key"))
	s.Require().NoError(err)
	s.Equal(oldID, replacement.ID())

	s.False(old.HasID())
	s.Zero(old.ID())
	cached, ok := s.manager.Cached(oldID)
	s.True(ok)
	s.Same(replacement, cached)
	s.ErrorIs(s.manager.Update(old), ErrNotPersisted)
}

// failingStore returns errStore from every call.
type failingStore struct{}

var errStore = errors.New("disk I/O error")

func (failingStore) EmployeeExists(int64) (bool, error) { return false, errStore }
func (failingStore) CreateReviewsTable() error { return errStore }
func (failingStore) DropReviewsTable() error { return errStore }
func (failingStore) InsertReview(int, string, int64) (int64, error) {
	return 0, errStore
}
func (failingStore) UpdateReview(int64, int, string, int64) (int64, error) {
	return 0, errStore
}
func (failingStore) DeleteReview(int64) (int64, error) { return 0, errStore }
func (failingStore) GetReview(int64) (*database.ReviewRow, error) { return nil, errStore }
func (failingStore) ListReviews() ([]*database.ReviewRow, error) { return nil, errStore }
func (failingStore) ListReviewsByEmployee(int64) ([]*database.ReviewRow, error) {
	return nil, errStore
}

func TestStoreFailuresAreClassified(t *testing.T) {
	m := NewManager(failingStore{})

	_, err := m.Create(Fields{Year: 2022, Summary: "x", EmployeeID: 1})
	require.ErrorIs(t, err, ErrStore)
	require.ErrorIs(t, err, errStore)
	require.Equal(t, KindStore, KindOf(err))

	var serr *StoreError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "check employee", serr.Op)

	_, err = m.FindByID(1)
	require.ErrorIs(t, err, ErrStore)

	_, err = m.GetAll()
	require.ErrorIs(t, err, ErrStore)

	require.ErrorIs(t, m.CreateTable(), ErrStore)
}

func TestDeleteKeepsReviewOnStoreFailure(t *testing.T) {
	m := NewManager(failingStore{})
	r := &Review{year: 2022, summary: "kept", employeeID: 1}
	r.attach(7)
	m.identity.Add(r)

	require.ErrorIs(t, m.Delete(r), ErrStore)
	require.True(t, r.HasID())
	_, ok := m.Cached(7)
	require.True(t, ok)
}

func TestFromRowValidatesShape(t *testing.T) {
	m := NewManager(failingStore{})
	row := &database.ReviewRow{
		ID:         3,
		Year:       sql.NullInt64{Int64: 2021, Valid: true},
		Summary:    sql.NullString{String: "", Valid: true},
		EmployeeID: sql.NullInt64{Int64: 1, Valid: true},
	}

	_, err := m.FromRow(row)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, ReasonEmpty, verr.Reason)

	row.Summary.String = "fine"
	r, err := m.FromRow(row)
	require.NoError(t, err)
	again, err := m.FromRow(row)
	require.NoError(t, err)
	require.Same(t, r, again)
}
