// internal/pkg/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/your-org/storefront-backend/internal/config"
)

// tokenKind separates the two tokens this service issues. A refresh token can
// never be presented on an API route and an access token can never mint a new
// pair.
type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

// Claims are the identity facts the API trusts per request.
type Claims struct {
	UserID uint      `json:"user_id"`
	Email  string    `json:"email"`
	Kind   tokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// JWTManager signs and validates the access/refresh token pair.
type JWTManager struct {
	secret        []byte
	issuer        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		secret:        []byte(cfg.JWT.Secret),
		issuer:        cfg.App.Name,
		accessExpiry:  cfg.JWT.AccessTokenExpiry,
		refreshExpiry: cfg.JWT.RefreshTokenExpiry,
	}
}

// GenerateAccessToken issues the short-lived token presented on API routes.
func (j *JWTManager) GenerateAccessToken(userID uint, email string) (string, error) {
	return j.issue(userID, email, kindAccess, j.accessExpiry)
}

// GenerateRefreshToken issues the long-lived token exchanged for a new pair.
func (j *JWTManager) GenerateRefreshToken(userID uint, email string) (string, error) {
	return j.issue(userID, email, kindRefresh, j.refreshExpiry)
}

func (j *JWTManager) issue(userID uint, email string, kind tokenKind, expiry time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// ValidateAccessToken parses a bearer token and checks it is an access token.
func (j *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, kindAccess)
}

// ValidateRefreshToken parses a token and checks it is a refresh token.
func (j *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, kindRefresh)
}

func (j *JWTManager) validate(tokenString string, kind tokenKind) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(*jwt.Token) (interface{}, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("expected %s token, got %s", kind, claims.Kind)
	}
	return claims, nil
}

// ExtractTokenFromHeader pulls the bearer token out of an Authorization header.
func ExtractTokenFromHeader(authHeader string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(authHeader, prefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(prefix):])
}
