// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sapmusicgroup/sap-backend/internal/config"
	"github.com/sapmusicgroup/sap-backend/internal/models"
	"github.com/sapmusicgroup/sap-backend/internal/utils"
)

const revokedPrefix = "revoked:"

type AuthService struct {
	db    *gorm.DB
	cfg   *config.Config
	cache Cache
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	Name     string `json:"name" validate:"max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// CreateUserRequest is the admin provisioning body. All three fields are
// required.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// SessionUser is the identity part of a session.
type SessionUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         SessionUser `json:"user"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, cache Cache) *AuthService {
	return &AuthService{db: db, cfg: cfg, cache: cache}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) createAccount(name, email, password string, confirmed bool) (*models.Account, error) {
	email = normalizeEmail(email)

	var count int64
	if err := s.db.Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	acct := &models.Account{Email: email, Name: strings.TrimSpace(name)}
	if confirmed {
		now := time.Now()
		acct.EmailConfirmedAt = &now
	}
	if err := acct.SetPassword(password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.Create(acct).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return acct, nil
}

func (s *AuthService) Signup(req *SignupRequest) (*AuthResponse, error) {
	acct, err := s.createAccount(req.Name, req.Email, req.Password, false)
	if err != nil {
		return nil, err
	}
	return s.issue(acct)
}

// CreateUserByAdmin provisions a confirmed account. No profile row is
// written; the user appears in the roster without one until they save it.
func (s *AuthService) CreateUserByAdmin(req *CreateUserRequest) (*SessionUser, error) {
	acct, err := s.createAccount(req.Name, req.Email, req.Password, true)
	if err != nil {
		return nil, err
	}
	return &SessionUser{ID: acct.ID, Email: acct.Email, Name: acct.Name}, nil
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	var acct models.Account
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := acct.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.checkActive(acct.ID); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(&acct).Update("last_login_at", &now).Error; err != nil {
		logrus.WithError(err).WithField("account_id", acct.ID).Warn("Failed to record login time")
	}

	return s.issue(&acct)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	subject, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if s.isRevoked(ctx, refreshToken) {
		return nil, ErrTokenRevoked
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	var acct models.Account
	if err := s.db.First(&acct, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if err := s.checkActive(acct.ID); err != nil {
		return nil, err
	}

	// The old refresh token is single use.
	s.revoke(ctx, refreshToken, time.Duration(s.cfg.JWT.RefreshTokenTTL)*time.Hour)
	return s.issue(&acct)
}

// Logout revokes the access token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := utils.ValidateJWT(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, revokedPrefix+claims.ID, "1", ttl)
}

// Authenticate validates an access token and returns its actor.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (Actor, error) {
	claims, err := utils.ValidateJWT(accessToken)
	if err != nil {
		return Actor{}, err
	}
	if _, revoked, err := s.cache.Get(ctx, revokedPrefix+claims.ID); err != nil {
		logrus.WithError(err).Warn("Token revocation lookup failed")
	} else if revoked {
		return Actor{}, ErrTokenRevoked
	}

	actor, err := NewActor(claims.UserID, claims.Email, claims.Name, claims.Role)
	if err != nil {
		return Actor{}, err
	}
	// Role changes take effect without waiting for a new token.
	var profile models.User
	if err := s.db.Select("role", "status").First(&profile, "id = ?", actor.ID).Error; err == nil {
		if profile.Status == models.UserStatusDeactivated {
			return Actor{}, ErrAccountDeactivated
		}
		actor.Role = profile.Role
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		actor.Role = models.RoleUser
	} else {
		return Actor{}, fmt.Errorf("database error: %w", err)
	}
	return actor, nil
}

// Session returns the identity of an actor.
func (s *AuthService) Session(actor Actor) (*SessionUser, error) {
	var acct models.Account
	if err := s.db.First(&acct, "id = ?", actor.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &SessionUser{ID: acct.ID, Email: acct.Email, Name: acct.Name}, nil
}

func (s *AuthService) checkActive(id uuid.UUID) error {
	var profile models.User
	err := s.db.Select("status").First(&profile, "id = ?", id).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("database error: %w", err)
	case profile.Status == models.UserStatusDeactivated:
		return ErrAccountDeactivated
	}
	return nil
}

func (s *AuthService) role(id uuid.UUID) models.Role {
	var profile models.User
	if err := s.db.Select("role").First(&profile, "id = ?", id).Error; err != nil {
		return models.RoleUser
	}
	return profile.Role
}

func (s *AuthService) issue(acct *models.Account) (*AuthResponse, error) {
	accessToken, expiresAt, err := utils.GenerateJWT(
		acct.ID,
		acct.Email,
		acct.Name,
		string(s.role(acct.ID)),
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(acct.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
		User:         SessionUser{ID: acct.ID, Email: acct.Email, Name: acct.Name},
	}, nil
}

func (s *AuthService) revoke(ctx context.Context, token string, ttl time.Duration) {
	if err := s.cache.Set(ctx, revokedPrefix+utils.HashString(token), "1", ttl); err != nil {
		logrus.WithError(err).Warn("Failed to revoke refresh token")
	}
}

func (s *AuthService) isRevoked(ctx context.Context, token string) bool {
	_, ok, err := s.cache.Get(ctx, revokedPrefix+utils.HashString(token))
	if err != nil {
		logrus.WithError(err).Warn("Token revocation lookup failed")
	}
	return ok
}
