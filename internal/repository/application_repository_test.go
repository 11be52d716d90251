package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/beasiswa-status-api/internal/models"
)

const testAppID = "5f1d7c2e-8a51-4c3e-9d8f-2b7a1e0c4d11"

var applicationRowColumns = []string{"id", "student_id", "email", "full_name", "phone", "address", "gpa", "family_income", "essay",
	"supporting_document", "recommendation", "status", "stage", "note", "created_at", "updated_at"}

func newApplicationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func applicationRow(id, studentID, email string) *sqlmock.Rows {
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(applicationRowColumns).
		AddRow(id, studentID, email, "Ann", "0812", "Bandung", 3.5, int64(4000000), "essay", nil, nil, "Under Review", "Administrative", nil, now, now)
}

func TestApplicationRepositoryList(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2")).
		WithArgs(10, 20).
		WillReturnRows(applicationRow(testAppID, "A1", "a@x.com"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM applications")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	apps, total, err := repo.List(context.Background(), models.ApplicationFilter{Page: 3, Limit: 10})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, 21, total)
	assert.Equal(t, models.StatusUnderReview, apps[0].Status)
	assert.Equal(t, models.StageAdministrative, apps[0].Stage)
	assert.Nil(t, apps[0].Note)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindByIDRejectsMalformedID(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	_, err := repo.FindByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindByBusinessKey(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE student_id = $1 AND email = $2 LIMIT 1")).
		WithArgs("A1", "a@x.com").
		WillReturnRows(applicationRow(testAppID, "A1", "a@x.com"))

	app, err := repo.FindByBusinessKey(context.Background(), "A1", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, testAppID, app.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryExistsByStudentID(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM applications WHERE student_id = $1 LIMIT 1")).
		WithArgs("A1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM applications WHERE student_id = $1 LIMIT 1")).
		WithArgs("B2").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsByStudentID(context.Background(), "A1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByStudentID(context.Background(), "B2")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	args := make([]driver.Value, len(applicationRowColumns))
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	mock.ExpectExec("INSERT INTO applications").
		WithArgs(args...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	app := &models.Application{StudentID: "A1", Email: "a@x.com", FullName: "Ann", Status: models.StatusUnderReview, Stage: models.StageAdministrative}
	require.NoError(t, repo.Create(context.Background(), app))
	assert.NotEmpty(t, app.ID)
	assert.False(t, app.CreatedAt.IsZero())
	assert.Equal(t, app.CreatedAt, app.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "applications_student_id_key"})

	err := repo.Create(context.Background(), &models.Application{StudentID: "A1", Status: models.StatusUnderReview, Stage: models.StageAdministrative})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateLocksAndPersists(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 FOR UPDATE")).
		WithArgs(testAppID).
		WillReturnRows(applicationRow(testAppID, "A1", "a@x.com"))
	mock.ExpectExec("UPDATE applications SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updated, err := repo.Update(context.Background(), testAppID, func(app *models.Application) bool {
		app.Status = models.StatusAccepted
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)
	assert.Equal(t, "Ann", updated.FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateSkipsWriteWhenUnchanged(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE student_id = $1 AND email = $2 FOR UPDATE")).
		WithArgs("A1", "a@x.com").
		WillReturnRows(applicationRow(testAppID, "A1", "a@x.com"))
	mock.ExpectCommit()

	_, err := repo.UpdateByBusinessKey(context.Background(), "A1", "a@x.com", func(app *models.Application) bool { return false })
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 FOR UPDATE")).
		WithArgs(testAppID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), testAppID, func(app *models.Application) bool { return true })
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newApplicationMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM applications WHERE id = $1")).
		WithArgs(testAppID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM applications WHERE id = $1")).
		WithArgs(testAppID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), testAppID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), testAppID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
