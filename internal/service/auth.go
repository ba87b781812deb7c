package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"camera-rental-backend/internal/domain"
	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/repository"
	"camera-rental-backend/internal/security"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = domain.NewUnauthenticatedError("Invalid username or password")
	ErrAccountDisabled    = domain.NewUnauthenticatedError("account is disabled")
	ErrInvalidToken       = domain.NewUnauthenticatedError("invalid token")
	ErrTokenRevoked       = domain.NewUnauthenticatedError("token has been revoked")
	ErrUsernameTaken      = domain.NewConflictError("Username already exists")
)

const minPasswordLength = 8

// AuthResult is a freshly issued token pair.
type AuthResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *domain.User `json:"user,omitempty"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	revoked  security.RevocationStore
	clock    Clock
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, revoked security.RevocationStore, clock Clock) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		revoked:  revoked,
		clock:    clock,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if domain.IsCode(err, domain.ErrCodeNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	result, err := s.issue(user.Operator())
	if err != nil {
		return nil, err
	}
	result.User = user
	logger.Info("Operator logged in", "userID", user.ID, "username", user.Username)
	return result, nil
}

func (s *authService) Signup(ctx context.Context, in domain.SignupInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Username == "" {
		return nil, domain.NewInvalidArgumentError("username is required")
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.NewInvalidArgumentError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if in.FullName == "" {
		return nil, domain.NewInvalidArgumentError("full name is required")
	}
	switch in.Role {
	case "":
		in.Role = domain.UserRoleUser
	case domain.UserRoleAdmin, domain.UserRoleUser:
	default:
		return nil, domain.NewInvalidArgumentError(fmt.Sprintf("unknown role %q", in.Role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		FullName:     in.FullName,
		Email:        strings.TrimSpace(in.Email),
		Role:         in.Role,
		Active:       true,
		JoinDate:     s.clock.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if domain.IsCode(err, domain.ErrCodeConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	logger.Info("Operator registered", "userID", user.ID, "username", user.Username)
	return user, nil
}

// RefreshToken rotates the pair. The presented refresh token is revoked so it
// cannot be replayed.
func (s *authService) RefreshToken(ctx context.Context, refresh string) (*AuthResult, error) {
	claims, err := s.validRefresh(ctx, refresh)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if domain.IsCode(err, domain.ErrCodeNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	result, err := s.issue(user.Operator())
	if err != nil {
		return nil, err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}
	result.User = user
	return result, nil
}

func (s *authService) Logout(ctx context.Context, refresh string) error {
	claims, err := s.validRefresh(ctx, refresh)
	if err != nil {
		return err
	}
	if err := s.revoke(ctx, claims); err != nil {
		return err
	}
	logger.Info("Operator logged out", "userID", claims.UserID)
	return nil
}

func (s *authService) Authenticate(ctx context.Context, access string) (domain.Operator, error) {
	claims, err := s.tokens.ValidateToken(access)
	if err != nil || claims.Type != security.TokenTypeAccess {
		return domain.Operator{}, ErrInvalidToken
	}
	return claims.Operator(), nil
}

func (s *authService) ParseRefresh(ctx context.Context, refresh string) (domain.Operator, error) {
	claims, err := s.validRefresh(ctx, refresh)
	if err != nil {
		return domain.Operator{}, err
	}
	return claims.Operator(), nil
}

func (s *authService) validRefresh(ctx context.Context, refresh string) (*security.OperatorClaims, error) {
	claims, err := s.tokens.ValidateToken(refresh)
	if err != nil || claims.Type != security.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *authService) revoke(ctx context.Context, claims *security.OperatorClaims) error {
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := claims.ExpiresAt.Sub(s.clock.Now()); remaining > 0 {
			ttl = remaining
		}
	}
	return s.revoked.Revoke(ctx, claims.ID, ttl)
}

func (s *authService) issue(op domain.Operator) (*AuthResult, error) {
	access, err := s.tokens.GenerateAccessToken(op)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(op)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh}, nil
}
