package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"alfredoptarigan/career-coach/internal/apperrors"
	"alfredoptarigan/career-coach/internal/auth"
	"alfredoptarigan/career-coach/internal/logger"
	"alfredoptarigan/career-coach/internal/repositories"
	"alfredoptarigan/career-coach/internal/testhelpers"
)

func newAuthFixture(t *testing.T) (AuthService, repositories.UserRepository, *auth.TokenManager) {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	userRepo := repositories.NewUserRepository(db)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	svc := NewAuthService(userRepo, tokens, logger.Nop())
	svc.(*authService).bcryptCost = bcrypt.MinCost
	return svc, userRepo, tokens
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, userRepo, tokens := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "  Ada@Example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", registered.User.Email)

	subject, err := tokens.Verify(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, subject)

	stored, err := userRepo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.True(t, stored.HasPassword())
	assert.NotEqual(t, "secret1", *stored.Password)

	loggedIn, err := svc.Login(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ADA@example.com", "another")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_GoogleAccountCannotUsePassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	first, err := svc.LoginWithGoogle(ctx, "Grace@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", first.User.Email)

	again, err := svc.LoginWithGoogle(ctx, "grace@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, again.User.ID)

	_, err = svc.Login(ctx, "grace@example.com", "anything")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_GoogleLoginReusesPasswordAccount(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	viaGoogle, err := svc.LoginWithGoogle(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, viaGoogle.User.ID)

	_, err = svc.Login(ctx, "ada@example.com", "secret1")
	assert.NoError(t, err)
}

func TestAuthService_UserFromToken(t *testing.T) {
	svc, userRepo, tokens := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	user, err := svc.UserFromToken(ctx, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, user.ID)

	_, err = svc.UserFromToken(ctx, "garbage")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	other, err := auth.NewTokenManager("other-secret", time.Hour).Issue(user.ID)
	require.NoError(t, err)
	_, err = svc.UserFromToken(ctx, other)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	// a valid token for a deleted user no longer authenticates
	require.NoError(t, userRepo.Delete(ctx, user.ID))
	stale, err := tokens.Issue(user.ID)
	require.NoError(t, err)
	_, err = svc.UserFromToken(ctx, stale)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
