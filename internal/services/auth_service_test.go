// internal/services/auth_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sapmusicgroup/sap-backend/internal/models"
)

func newAuthService(t *testing.T) (*AuthService, *MemoryCache) {
	db := newTestDB(t)
	cache := NewMemoryCache()
	return NewAuthService(db, testConfig(), cache), cache
}

func TestSignupAndLogin(t *testing.T) {
	svc, _ := newAuthService(t)

	resp, err := svc.Signup(&SignupRequest{Name: "Ana", Email: "Ana@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.User.Email)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.RefreshToken)

	_, err = svc.Signup(&SignupRequest{Email: "ana@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(&LoginRequest{Email: "ana@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(&LoginRequest{Email: "ANA@example.com", Password: "secret1"})
	require.NoError(t, err)

	actor, err := svc.Authenticate(context.Background(), login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, actor.ID)
	// No profile yet.
	assert.Equal(t, models.RoleUser, actor.Role)
}

func TestAuthenticateReloadsRole(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Signup(&SignupRequest{Name: "Ben", Email: "ben@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.db.Create(&models.User{
		ID: resp.User.ID, Name: "Ben", Role: models.RoleAdmin, Status: models.UserStatusActive,
	}).Error)
	actor, err := svc.Authenticate(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, actor.IsAdmin())

	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", resp.User.ID).
		Update("status", models.UserStatusDeactivated).Error)
	_, err = svc.Authenticate(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrAccountDeactivated)

	_, err = svc.Login(&LoginRequest{Email: "ben@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestRefreshTokenIsSingleUse(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Signup(&SignupRequest{Email: "cy@example.com", Password: "secret1"})
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, next.User.ID)

	_, err = svc.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Access tokens are not refresh tokens.
	_, err = svc.Refresh(ctx, next.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Signup(&SignupRequest{Email: "di@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.AccessToken))
	_, err = svc.Authenticate(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	assert.ErrorIs(t, svc.Logout(ctx, "not-a-token"), ErrInvalidToken)
}

func TestCreateUserByAdminWritesNoProfile(t *testing.T) {
	svc, _ := newAuthService(t)

	user, err := svc.CreateUserByAdmin(&CreateUserRequest{Name: "Eve", Email: "eve@example.com", Password: "secret1"})
	require.NoError(t, err)

	var profiles int64
	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", user.ID).Count(&profiles).Error)
	assert.Zero(t, profiles)

	var acct models.Account
	require.NoError(t, svc.db.First(&acct, "id = ?", user.ID).Error)
	assert.NotNil(t, acct.EmailConfirmedAt)

	session, err := svc.Session(Actor{ID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, "Eve", session.Name)
}
