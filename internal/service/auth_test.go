package service

import (
	"context"
	"testing"
	"time"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

func newAuth(t *testing.T) (*MockUserRepo, AuthService) {
	t.Helper()
	userRepo := new(MockUserRepo)
	tokens := security.NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)
	return userRepo, NewAuthService(userRepo, tokens, security.NewMemoryRevocationStore(), NewSystemClock())
}

func storedUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{ID: 3, Username: "desk", PasswordHash: string(hash), FullName: "Front Desk", Role: domain.UserRoleUser, Active: true}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		userRepo, svc := newAuth(t)
		userRepo.On("GetByUsername", ctx, "desk").Return(storedUser(t, "s3cret-pass"), nil)

		res, err := svc.Login(ctx, " desk ", "s3cret-pass")
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.NotEmpty(t, res.RefreshToken)
		assert.Equal(t, int32(3), res.User.ID)

		op, err := svc.Authenticate(ctx, res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "desk", op.Username)
	})

	t.Run("Wrong Password", func(t *testing.T) {
		userRepo, svc := newAuth(t)
		userRepo.On("GetByUsername", ctx, "desk").Return(storedUser(t, "s3cret-pass"), nil)

		_, err := svc.Login(ctx, "desk", "guess")
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("Unknown User", func(t *testing.T) {
		userRepo, svc := newAuth(t)
		userRepo.On("GetByUsername", ctx, "ghost").Return(nil, domain.NewNotFoundError("user not found"))

		_, err := svc.Login(ctx, "ghost", "whatever")
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("Disabled Account", func(t *testing.T) {
		userRepo, svc := newAuth(t)
		user := storedUser(t, "s3cret-pass")
		user.Active = false
		userRepo.On("GetByUsername", ctx, "desk").Return(user, nil)

		_, err := svc.Login(ctx, "desk", "s3cret-pass")
		assert.Equal(t, ErrAccountDisabled, err)
	})
}

func TestAuthService_Signup(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		userRepo, svc := newAuth(t)
		userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil)

		user, err := svc.Signup(ctx, domain.SignupInput{Username: "newbie", Password: "long-enough", FullName: "New Staff"})
		require.NoError(t, err)
		assert.Equal(t, domain.UserRoleUser, user.Role)
		assert.True(t, user.Active)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("long-enough")))
	})

	t.Run("Username Taken", func(t *testing.T) {
		userRepo, svc := newAuth(t)
		userRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(domain.NewConflictError("user already exists"))

		_, err := svc.Signup(ctx, domain.SignupInput{Username: "desk", Password: "long-enough", FullName: "Dup"})
		assert.Equal(t, ErrUsernameTaken, err)
	})

	t.Run("Short Password", func(t *testing.T) {
		userRepo, svc := newAuth(t)
		_, err := svc.Signup(ctx, domain.SignupInput{Username: "x", Password: "short", FullName: "X"})
		assert.Equal(t, domain.ErrCodeInvalidArgument, domain.CodeOf(err))
		userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	userRepo, svc := newAuth(t)
	user := storedUser(t, "s3cret-pass")
	userRepo.On("GetByUsername", ctx, "desk").Return(user, nil)
	userRepo.On("GetByID", ctx, int32(3)).Return(user, nil)

	login, err := svc.Login(ctx, "desk", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.RefreshToken(ctx, login.AccessToken)
	assert.Equal(t, ErrInvalidToken, err, "access token cannot refresh")

	_, err = svc.Authenticate(ctx, login.RefreshToken)
	assert.Equal(t, ErrInvalidToken, err, "refresh token cannot authenticate")

	rotated, err := svc.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	_, err = svc.RefreshToken(ctx, login.RefreshToken)
	assert.Equal(t, ErrTokenRevoked, err, "rotated refresh token is single use")

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	_, err = svc.ParseRefresh(ctx, rotated.RefreshToken)
	assert.Equal(t, ErrTokenRevoked, err)
}
