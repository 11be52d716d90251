package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/beasiswa-status-api/internal/dto"
	"github.com/noah-isme/beasiswa-status-api/internal/models"
	"github.com/noah-isme/beasiswa-status-api/internal/repository"
	appErrors "github.com/noah-isme/beasiswa-status-api/pkg/errors"
)

type mockApplicationRepo struct {
	mu        sync.Mutex
	apps      map[string]*models.Application
	order     []string
	err       error
	lookups   int
	createErr error
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{apps: make(map[string]*models.Application)}
}

func (m *mockApplicationRepo) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	all, _ := m.ListAll(ctx)
	start := filter.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if filter.Limit < end-start {
		end = start + filter.Limit
	}
	return all[start:end], len(all), nil
}

func (m *mockApplicationRepo) ListAll(ctx context.Context) ([]models.Application, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Application, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.apps[id])
	}
	return out, nil
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *app
	return &copied, nil
}

func (m *mockApplicationRepo) FindByBusinessKey(ctx context.Context, studentID, email string) (*models.Application, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	for _, app := range m.apps {
		if app.StudentID == studentID && app.Email == email {
			copied := *app
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		if app.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.apps {
		if existing.StudentID == app.StudentID {
			return repository.ErrDuplicateKey
		}
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	copied := *app
	m.apps[app.ID] = &copied
	m.order = append(m.order, app.ID)
	return nil
}

func (m *mockApplicationRepo) Update(ctx context.Context, id string, mutate repository.MutateFunc) (*models.Application, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return m.apply(app, mutate), nil
}

func (m *mockApplicationRepo) UpdateByBusinessKey(ctx context.Context, studentID, email string, mutate repository.MutateFunc) (*models.Application, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		if app.StudentID == studentID && app.Email == email {
			return m.apply(app, mutate), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockApplicationRepo) apply(stored *models.Application, mutate repository.MutateFunc) *models.Application {
	working := *stored
	if mutate(&working) {
		*stored = working
	}
	copied := *stored
	return &copied
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[id]; !ok {
		return false, nil
	}
	delete(m.apps, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	deletes []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]interface{})}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	result, ok := value.(models.StatusCheckResult)
	if !ok {
		return errors.New("unexpected cache value")
	}
	*(dest.(*models.StatusCheckResult)) = result
	return nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes = append(c.deletes, pattern)
	c.entries = make(map[string]interface{})
	return nil
}

func float64Ptr(v float64) *float64 { return &v }
func int64Ptr(v int64) *int64       { return &v }
func stringPtr(v string) *string    { return &v }

func validCreateRequest(studentID string) dto.CreateApplicationRequest {
	return dto.CreateApplicationRequest{
		StudentID:    studentID,
		Email:        studentID + "@x.com",
		FullName:     "Applicant " + studentID,
		Phone:        "0812000",
		Address:      "Jl. Ganesha 10",
		GPA:          float64Ptr(3.5),
		FamilyIncome: int64Ptr(4000000),
		Essay:        "Because I want to learn.",
	}
}

func newTestApplicationService() (*ApplicationService, *mockApplicationRepo, *memoryCache) {
	repo := newMockApplicationRepo()
	cache := newMemoryCache()
	svc := NewApplicationService(repo, NewCacheService(cache, nil, time.Minute, nil, true), NewMetricsService(), nil, zap.NewNop())
	return svc, repo, cache
}

func TestApplicationServiceCreateAppliesDefaults(t *testing.T) {
	svc, _, _ := newTestApplicationService()
	fixed := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	app, err := svc.Create(context.Background(), validCreateRequest("A1"))
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
	assert.Equal(t, models.StatusUnderReview, app.Status)
	assert.Equal(t, models.StageAdministrative, app.Stage)
	assert.Equal(t, fixed, app.CreatedAt)
	assert.Equal(t, fixed, app.UpdatedAt)
}

func TestApplicationServiceCreateRejectsDuplicateStudentID(t *testing.T) {
	svc, repo, _ := newTestApplicationService()

	_, err := svc.Create(context.Background(), validCreateRequest("A1"))
	require.NoError(t, err)

	second := validCreateRequest("A1")
	second.Email = "other@x.com"
	_, err = svc.Create(context.Background(), second)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrDuplicateKey)
	assert.Len(t, repo.apps, 1)
}

func TestApplicationServiceCreateMapsConstraintViolation(t *testing.T) {
	svc, repo, _ := newTestApplicationService()
	repo.createErr = repository.ErrDuplicateKey

	_, err := svc.Create(context.Background(), validCreateRequest("A1"))
	assert.ErrorIs(t, err, appErrors.ErrDuplicateKey)
}

func TestApplicationServiceCreateValidation(t *testing.T) {
	svc, _, _ := newTestApplicationService()

	cases := map[string]func(*dto.CreateApplicationRequest){
		"missing student id": func(r *dto.CreateApplicationRequest) { r.StudentID = "  " },
		"bad email":          func(r *dto.CreateApplicationRequest) { r.Email = "not-an-email" },
		"missing gpa":        func(r *dto.CreateApplicationRequest) { r.GPA = nil },
		"negative income":    func(r *dto.CreateApplicationRequest) { r.FamilyIncome = int64Ptr(-1) },
		"missing essay":      func(r *dto.CreateApplicationRequest) { r.Essay = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validCreateRequest("A1")
			mutate(&req)
			_, err := svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestApplicationServicePartialUpdateKeepsOmittedFields(t *testing.T) {
	svc, _, _ := newTestApplicationService()
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }

	app, err := svc.Create(context.Background(), validCreateRequest("A1"))
	require.NoError(t, err)

	later := created.Add(2 * time.Hour)
	svc.now = func() time.Time { return later }
	accepted := models.StatusAccepted
	updated, err := svc.Update(context.Background(), app.ID, dto.UpdateApplicationRequest{Status: &accepted, Note: stringPtr("Congratulations")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, updated.Status)
	assert.Equal(t, later, updated.UpdatedAt)

	got, err := svc.Get(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.FullName, got.FullName)
	assert.Equal(t, app.Phone, got.Phone)
	assert.Equal(t, app.Address, got.Address)
	assert.Equal(t, app.GPA, got.GPA)
	assert.Equal(t, app.FamilyIncome, got.FamilyIncome)
	assert.Equal(t, app.Essay, got.Essay)
	assert.Equal(t, models.StageAdministrative, got.Stage)
	assert.Equal(t, "Congratulations", *got.Note)
	assert.Equal(t, created, got.CreatedAt)
}

func TestApplicationServiceUpdateWithoutChangesKeepsTimestamp(t *testing.T) {
	svc, _, _ := newTestApplicationService()
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }
	app, err := svc.Create(context.Background(), validCreateRequest("A1"))
	require.NoError(t, err)

	svc.now = func() time.Time { return created.Add(time.Hour) }
	updated, err := svc.Update(context.Background(), app.ID, dto.UpdateApplicationRequest{FullName: stringPtr(app.FullName)})
	require.NoError(t, err)
	assert.Equal(t, created, updated.UpdatedAt)
}

func TestApplicationServiceUpdateErrors(t *testing.T) {
	svc, _, _ := newTestApplicationService()

	_, err := svc.Update(context.Background(), uuid.NewString(), dto.UpdateApplicationRequest{FullName: stringPtr("X")})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	app, err := svc.Create(context.Background(), validCreateRequest("A1"))
	require.NoError(t, err)

	bogus := models.ApplicationStatus("Pending")
	_, err = svc.Update(context.Background(), app.ID, dto.UpdateApplicationRequest{Status: &bogus})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Update(context.Background(), app.ID, dto.UpdateApplicationRequest{Email: stringPtr("broken")})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestApplicationServiceDeleteThenGet(t *testing.T) {
	svc, _, _ := newTestApplicationService()
	app, err := svc.Create(context.Background(), validCreateRequest("A1"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), app.ID))

	_, err = svc.Get(context.Background(), app.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	err = svc.Delete(context.Background(), app.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestApplicationServiceListPagination(t *testing.T) {
	svc, _, _ := newTestApplicationService()
	for i := 0; i < 7; i++ {
		_, err := svc.Create(context.Background(), validCreateRequest(fmt.Sprintf("S%02d", i)))
		require.NoError(t, err)
	}

	apps, page, err := svc.List(context.Background(), models.ApplicationFilter{Page: 1, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, apps, 3)
	assert.Equal(t, "S00", apps[0].StudentID)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.False(t, page.HasPrev)

	apps, page, err = svc.List(context.Background(), models.ApplicationFilter{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, apps, 1)
	assert.Equal(t, "S06", apps[0].StudentID)
	assert.False(t, page.HasNext)
	assert.True(t, page.HasPrev)

	apps, _, err = svc.List(context.Background(), models.ApplicationFilter{Page: 9, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, apps)

	apps, page, err = svc.List(context.Background(), models.ApplicationFilter{Page: math.MaxInt, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, apps)
	assert.Equal(t, math.MaxInt, page.Page)
	assert.False(t, page.HasNext)

	_, page, err = svc.List(context.Background(), models.ApplicationFilter{Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, maxPageSize, page.PageSize)
}

func TestApplicationServiceListStorageFault(t *testing.T) {
	svc, repo, _ := newTestApplicationService()
	repo.err = errors.New("db down")

	_, _, err := svc.List(context.Background(), models.ApplicationFilter{Page: 1, Limit: 10})
	assert.True(t, appErrors.IsInternal(err))
}

func TestApplicationServiceCheckStatus(t *testing.T) {
	svc, _, _ := newTestApplicationService()
	app, err := svc.Create(context.Background(), validCreateRequest("A1"))
	require.NoError(t, err)

	result, _, err := svc.CheckStatus(context.Background(), dto.StatusCheckRequest{StudentID: "A1", Email: app.Email})
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, app.FullName, result.Name)
	assert.Equal(t, models.StatusUnderReview, *result.Status)

	for _, req := range []dto.StatusCheckRequest{
		{StudentID: "A1", Email: "wrong@x.com"},
		{StudentID: "A2", Email: app.Email},
		{StudentID: "a1", Email: app.Email},
		{StudentID: " A1", Email: app.Email},
		{StudentID: "A1 ", Email: app.Email},
		{StudentID: "A1", Email: " " + app.Email},
		{StudentID: "A1", Email: app.Email + "\n"},
		{StudentID: "", Email: ""},
	} {
		result, _, err := svc.CheckStatus(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, result.Found)
		assert.Empty(t, result.Name)
		assert.Nil(t, result.Status)
	}
}

func TestApplicationServiceCheckStatusUsesCacheUntilMutation(t *testing.T) {
	svc, repo, cache := newTestApplicationService()
	app, err := svc.Create(context.Background(), validCreateRequest("A1"))
	require.NoError(t, err)
	req := dto.StatusCheckRequest{StudentID: "A1", Email: app.Email}

	_, hit, err := svc.CheckStatus(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, hit)
	_, hit, err = svc.CheckStatus(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.lookups)

	rejected := models.StatusRejected
	_, err = svc.Update(context.Background(), app.ID, dto.UpdateApplicationRequest{Status: &rejected})
	require.NoError(t, err)
	assert.Contains(t, cache.deletes, statusCachePrefix+"*")

	result, hit, err := svc.CheckStatus(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, models.StatusRejected, *result.Status)
}

func TestApplicationServiceCheckStatusStorageFault(t *testing.T) {
	svc, repo, _ := newTestApplicationService()
	repo.err = errors.New("db down")

	_, _, err := svc.CheckStatus(context.Background(), dto.StatusCheckRequest{StudentID: "A1", Email: "a@x.com"})
	assert.True(t, appErrors.IsInternal(err))
}

func TestClampPage(t *testing.T) {
	page, limit := ClampPage(-1, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, limit)

	_, limit = ClampPage(2, 1000)
	assert.Equal(t, maxPageSize, limit)
}
