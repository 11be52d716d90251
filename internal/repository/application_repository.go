package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/beasiswa-status-api/internal/models"
)

// ErrDuplicateKey is returned when a write violates a unique constraint.
var ErrDuplicateKey = errors.New("duplicate key")

const applicationColumns = `id, student_id, email, full_name, phone, address, gpa, family_income, essay,
        supporting_document, recommendation, status, stage, note, created_at, updated_at`

// MutateFunc edits a locked application in place and reports whether anything changed.
type MutateFunc func(app *models.Application) bool

// ApplicationRepository manages persistence for scholarship applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs an ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// List returns one page of applications in insertion order together with the total count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`, applicationColumns)
	apps := []models.Application{}
	if err := r.db.SelectContext(ctx, &apps, query, filter.Limit, filter.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM applications`); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return apps, total, nil
}

// ListAll returns every application in insertion order.
func (r *ApplicationRepository) ListAll(ctx context.Context) ([]models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications ORDER BY created_at ASC, id ASC`, applicationColumns)
	apps := []models.Application{}
	if err := r.db.SelectContext(ctx, &apps, query); err != nil {
		return nil, fmt.Errorf("list all applications: %w", err)
	}
	return apps, nil
}

// FindByID fetches an application by its generated identifier.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find application: %w", err)
	}
	return &app, nil
}

// FindByBusinessKey fetches the application matching both student ID and email exactly.
func (r *ApplicationRepository) FindByBusinessKey(ctx context.Context, studentID, email string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE student_id = $1 AND email = $2 LIMIT 1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, studentID, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find application by business key: %w", err)
	}
	return &app, nil
}

// ExistsByStudentID checks whether any application uses the student ID.
func (r *ApplicationRepository) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM applications WHERE student_id = $1 LIMIT 1`, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student id: %w", err)
	}
	return true, nil
}

// Create inserts a new application. A student ID collision yields ErrDuplicateKey.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = app.CreatedAt
	}
	const query = `INSERT INTO applications (id, student_id, email, full_name, phone, address, gpa, family_income, essay,
        supporting_document, recommendation, status, stage, note, created_at, updated_at)
        VALUES (:id, :student_id, :email, :full_name, :phone, :address, :gpa, :family_income, :essay,
        :supporting_document, :recommendation, :status, :stage, :note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// Update locks the application with the given id, applies mutate and persists the result.
// It returns sql.ErrNoRows when the application does not exist.
func (r *ApplicationRepository) Update(ctx context.Context, id string, mutate MutateFunc) (*models.Application, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1 FOR UPDATE`, applicationColumns)
	return r.mutate(ctx, query, []interface{}{id}, mutate)
}

// UpdateByBusinessKey is Update keyed on (student ID, email).
func (r *ApplicationRepository) UpdateByBusinessKey(ctx context.Context, studentID, email string, mutate MutateFunc) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE student_id = $1 AND email = $2 FOR UPDATE`, applicationColumns)
	return r.mutate(ctx, query, []interface{}{studentID, email}, mutate)
}

func (r *ApplicationRepository) mutate(ctx context.Context, selectQuery string, args []interface{}, mutate MutateFunc) (*models.Application, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin application update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var app models.Application
	if err := tx.GetContext(ctx, &app, selectQuery, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("lock application: %w", err)
	}

	if mutate(&app) {
		const query = `UPDATE applications SET email = :email, full_name = :full_name, phone = :phone, address = :address,
        gpa = :gpa, family_income = :family_income, essay = :essay, supporting_document = :supporting_document,
        recommendation = :recommendation, status = :status, stage = :stage, note = :note, updated_at = :updated_at
        WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, query, &app); err != nil {
			if isUniqueViolation(err) {
				return nil, ErrDuplicateKey
			}
			return nil, fmt.Errorf("update application: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit application update: %w", err)
	}
	return &app, nil
}

// Delete physically removes an application and reports whether a row existed.
func (r *ApplicationRepository) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete application rows: %w", err)
	}
	return affected > 0, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
