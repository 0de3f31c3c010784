// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/apperr"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// Service handles user registration, login and profile management
type Service struct {
	db          *gorm.DB
	jwtManager  *auth.JWTManager
	passwordMgr *auth.PasswordManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, jwtManager *auth.JWTManager, passwordMgr *auth.PasswordManager) *Service {
	return &Service{
		db:          db,
		jwtManager:  jwtManager,
		passwordMgr: passwordMgr,
	}
}

// RegisterRequest represents user registration request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// LoginRequest represents user login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the tokens issued on register/login/refresh.
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new user account and issues tokens.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, apperr.Validation("email %s is already registered", email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashed, err := s.passwordMgr.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	u := User{
		Email:     email,
		Password:  hashed,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     strings.TrimSpace(req.Phone),
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(&u)
}

// Login authenticates a user by email and password.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var u User
	err := s.db.WithContext(ctx).Where("email = ? AND is_active = ?", email, true).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Validation("invalid email or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.passwordMgr.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, apperr.Validation("invalid email or password")
	}

	return s.issueTokens(&u)
}

// RefreshToken exchanges a valid refresh token for a new token pair.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Validation("invalid refresh token")
	}

	u, err := s.GetProfile(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(u)
}

// GetProfile retrieves an active user by id.
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// UpdateProfileRequest represents profile update request
type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UpdateProfile updates the mutable fields of a user profile.
func (s *Service) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*User, error) {
	u, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != "" {
		u.FirstName = strings.TrimSpace(req.FirstName)
	}
	if req.LastName != "" {
		u.LastName = strings.TrimSpace(req.LastName)
	}
	if req.Phone != "" {
		u.Phone = strings.TrimSpace(req.Phone)
	}

	if err := s.db.WithContext(ctx).Save(u).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return u, nil
}

func (s *Service) issueTokens(u *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	u.Password = ""
	return &AuthResponse{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
