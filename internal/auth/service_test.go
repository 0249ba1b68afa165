package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/users"
	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

func errNotFound() error {
	return gorm.ErrRecordNotFound
}

type fakeSession struct {
	userID  uint
	refresh string
	records map[string]string
	revoked []string
	fail    error
}

func newFakeSession() *fakeSession {
	return &fakeSession{records: map[string]string{}}
}

func (f *fakeSession) Generate(_ context.Context, userID uint, accessID string) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.userID = userID
	f.refresh = "refresh-" + accessID
	f.records[accessID] = f.refresh
	return f.refresh, nil
}

func (f *fakeSession) Rotate(_ context.Context, userID uint, oldAccessID, provided string) (string, string, error) {
	if f.records[oldAccessID] != provided || f.userID != userID {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.records, oldAccessID)
	newID := oldAccessID + "-next"
	f.records[newID] = "refresh-" + newID
	return newID, f.records[newID], nil
}

func (f *fakeSession) Revoke(_ context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	delete(f.records, accessID)
	return nil
}

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 60}

func newServiceFixture(t *testing.T, sessions SessionManager) (Service, *users.Repository) {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t).DB())
	hasher := security.NewHasher(fastPasswordConfig)

	reg, err := NewRegisterService(RegisterServiceParams{Users: repo, Hasher: hasher, AllowAdmin: true})
	require.NoError(t, err)
	_, err = reg.Register(context.Background(), RegisterRequest{Email: "admin@example.com", Password: "pw", Roles: []string{"ROLE_ADMIN"}})
	require.NoError(t, err)

	params := ServiceParams{
		UserRepo:  repo,
		Verifier:  hasher,
		JWTConfig: testJWT,
		Now:       func() time.Time { return time.Now() },
	}
	if sessions != nil {
		params.SessionManager = sessions
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return svc, repo
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newServiceFixture(t, nil)
	ctx := context.Background()

	id, err := svc.Authenticate(ctx, "Admin@Example.com", "pw")
	require.NoError(t, err)
	assert.NotZero(t, id.UserID)
	assert.True(t, id.IsAdmin())
	assert.Equal(t, []enums.Role{enums.RoleUser, enums.RoleAdmin}, id.Roles)

	for _, tc := range []struct{ email, password string }{
		{"admin@example.com", "wrong"},
		{"nobody@example.com", "pw"},
		{"", "pw"},
		{"admin@example.com", ""},
	} {
		_, err := svc.Authenticate(ctx, tc.email, tc.password)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
		assert.Equal(t, "Invalid credentials", pkgerrors.As(err).Message())
	}
}

func TestIssueTokensEncodesIdentity(t *testing.T) {
	sessions := newFakeSession()
	svc, _ := newServiceFixture(t, sessions)
	ctx := context.Background()

	id, err := svc.Authenticate(ctx, "admin@example.com", "pw")
	require.NoError(t, err)

	pair, err := svc.IssueTokens(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := pkgauth.ParseAccessToken(testJWT, pair.Token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID, claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.True(t, claims.HasRole(enums.RoleAdmin))
	assert.Equal(t, "refresh-"+claims.ID, pair.RefreshToken)
	assert.Equal(t, id.UserID, sessions.userID)
}

func TestIssueTokensWithoutIdentity(t *testing.T) {
	svc, _ := newServiceFixture(t, nil)
	_, err := svc.IssueTokens(context.Background(), pkgauth.Identity{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestIssueTokensWithoutSessions(t *testing.T) {
	svc, _ := newServiceFixture(t, nil)
	ctx := context.Background()
	id, err := svc.Authenticate(ctx, "admin@example.com", "pw")
	require.NoError(t, err)

	pair, err := svc.IssueTokens(ctx, id)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Token)
	assert.Empty(t, pair.RefreshToken)

	_, err = svc.Refresh(ctx, pair.Token, "anything")
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
	assert.NoError(t, svc.Logout(ctx, pair.Token))
}

func TestIssueTokensSessionFailure(t *testing.T) {
	sessions := newFakeSession()
	sessions.fail = errors.New("redis down")
	svc, _ := newServiceFixture(t, sessions)
	ctx := context.Background()
	id, err := svc.Authenticate(ctx, "admin@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.IssueTokens(ctx, id)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.CodeOf(err))
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	sessions := newFakeSession()
	svc, _ := newServiceFixture(t, sessions)
	ctx := context.Background()

	id, err := svc.Authenticate(ctx, "admin@example.com", "pw")
	require.NoError(t, err)
	pair, err := svc.IssueTokens(ctx, id)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.Token, "bogus")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	next, err := svc.Refresh(ctx, pair.Token, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	claims, err := pkgauth.ParseAccessToken(testJWT, next.Token)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(enums.RoleAdmin))

	// the old refresh token is single use
	_, err = svc.Refresh(ctx, pair.Token, pair.RefreshToken)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	require.NoError(t, svc.Logout(ctx, next.Token))
	assert.Equal(t, []string{claims.ID}, sessions.revoked)

	err = svc.Logout(ctx, "not-a-token")
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}
