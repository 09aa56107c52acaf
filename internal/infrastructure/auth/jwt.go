// Package auth provides JWT issuance and validation for the local
// authentication mode.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token validation errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrWrongPurpose = errors.New("token used for the wrong purpose")
)

// Token purposes embedded in the claims
const (
	purposeAccess  = "access"
	purposeRefresh = "refresh"
)

// Claims carries the authenticated identity inside a JWT
type Claims struct {
	UserID  string `json:"uid"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenPair is an access/refresh token bundle
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// JWTConfig configures the token service
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
}

// JWTService issues and validates token pairs
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a token service
func NewJWTService(config JWTConfig) *JWTService {
	if config.AccessTokenExpiration == 0 {
		config.AccessTokenExpiration = 15 * time.Minute
	}
	if config.RefreshTokenExpiration == 0 {
		config.RefreshTokenExpiration = 168 * time.Hour
	}
	return &JWTService{config: config}
}

// GenerateTokenInput is the identity captured in a token pair
type GenerateTokenInput struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// GenerateTokenPair issues a fresh access/refresh pair
func (s *JWTService) GenerateTokenPair(input GenerateTokenInput) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(s.config.AccessTokenExpiration)
	refreshExpiry := now.Add(s.config.RefreshTokenExpiration)

	accessToken, err := s.sign(input, purposeAccess, now, accessExpiry)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.sign(input, purposeRefresh, now, refreshExpiry)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  accessExpiry,
		RefreshTokenExpiresAt: refreshExpiry,
		TokenType:             "Bearer",
	}, nil
}

// ValidateAccessToken parses and validates an access token
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, purposeAccess)
}

// ValidateRefreshToken parses and validates a refresh token
func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, purposeRefresh)
}

// RefreshTokenPair validates a refresh token and issues a new pair
func (s *JWTService) RefreshTokenPair(refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return s.GenerateTokenPair(GenerateTokenInput{
		UserID: userID,
		Email:  claims.Email,
		Role:   claims.Role,
	})
}

func (s *JWTService) sign(input GenerateTokenInput, purpose string, issuedAt, expiresAt time.Time) (string, error) {
	claims := Claims{
		UserID:  input.UserID.String(),
		Email:   input.Email,
		Role:    input.Role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   input.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.Secret))
}

func (s *JWTService) validate(tokenString, purpose string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}
