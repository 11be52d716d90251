package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/beasiswa-status-api/internal/models"
	appErrors "github.com/noah-isme/beasiswa-status-api/pkg/errors"
)

type mockAdminRepo struct {
	admins    map[string]*models.Admin
	findErr   error
	createErr error
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{admins: make(map[string]*models.Admin)}
}

func (m *mockAdminRepo) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	admin, ok := m.admins[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return admin, nil
}

func (m *mockAdminRepo) Create(ctx context.Context, admin *models.Admin) error {
	if m.createErr != nil {
		return m.createErr
	}
	if admin.ID == "" {
		admin.ID = "admin-" + admin.Username
	}
	m.admins[admin.Username] = admin
	return nil
}

type mockAuditWriter struct {
	mu   sync.Mutex
	logs []*models.AuditLog
}

func (m *mockAuditWriter) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockAuditWriter) entries() []*models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.AuditLog(nil), m.logs...)
}

func newTestAuthService(t *testing.T, ttl time.Duration) (*AuthService, *mockAdminRepo, *mockAuditWriter) {
	t.Helper()
	repo := newMockAdminRepo()
	audit := &mockAuditWriter{}
	svc := NewAuthService(repo, audit, nil, zap.NewNop(), AuthConfig{Secret: "secret", Expiration: ttl, Issuer: "test"})
	_, err := svc.EnsureAdmin(context.Background(), "admin", "password123")
	require.NoError(t, err)
	return svc, repo, audit
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	svc, _, audit := newTestAuthService(t, time.Hour)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "password123", IP: "127.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.TokenTypeBearer, resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionLogin, audit.logs[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username())
	assert.Equal(t, "test", claims.Issuer)
}

func TestAuthServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestAuthService(t, time.Hour)

	_, errUser := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "password123"})
	_, errPass := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "wrong"})

	require.Error(t, errUser)
	require.Error(t, errPass)
	assert.Equal(t, appErrors.FromError(errUser), appErrors.FromError(errPass))
	assert.ErrorIs(t, errUser, appErrors.ErrInvalidCredentials)
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc, _, _ := newTestAuthService(t, time.Hour)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginStorageFault(t *testing.T) {
	svc, repo, _ := newTestAuthService(t, time.Hour)
	repo.findErr = errors.New("connection refused")

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "password123"})
	require.Error(t, err)
	assert.True(t, appErrors.IsInternal(err))
}

func TestAuthServiceTokenExpiry(t *testing.T) {
	ttl := 30 * time.Minute
	svc, _, _ := newTestAuthService(t, ttl)

	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }
	token, expiresAt, err := svc.IssueToken("admin")
	require.NoError(t, err)
	assert.Equal(t, issued.Add(ttl), expiresAt)

	svc.now = func() time.Time { return issued.Add(ttl - time.Second) }
	_, err = svc.ValidateToken(token)
	assert.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(ttl) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	svc.now = func() time.Time { return issued.Add(ttl + time.Second) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAuthServiceValidateTokenRejectsForeignTokens(t *testing.T) {
	svc, _, _ := newTestAuthService(t, time.Hour)

	other := NewAuthService(newMockAdminRepo(), nil, nil, nil, AuthConfig{Secret: "other", Expiration: time.Hour})
	foreign, _, err := other.IssueToken("admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	_, err = svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "admin", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestAuthServiceAuthenticateRequiresExistingAdmin(t *testing.T) {
	svc, repo, _ := newTestAuthService(t, time.Hour)

	token, _, err := svc.IssueToken("admin")
	require.NoError(t, err)

	info, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "admin", info.Username)

	delete(repo.admins, "admin")
	_, err = svc.Authenticate(context.Background(), token)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestAuthServiceEnsureAdminIsIdempotent(t *testing.T) {
	svc, repo, _ := newTestAuthService(t, time.Hour)
	original := repo.admins["admin"].PasswordHash

	created, err := svc.EnsureAdmin(context.Background(), "admin", "another")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, original, repo.admins["admin"].PasswordHash)
	assert.NotEqual(t, "password123", original)
	assert.True(t, VerifyPassword("password123", original))

	_, err = svc.EnsureAdmin(context.Background(), "", "")
	assert.Error(t, err)
}
