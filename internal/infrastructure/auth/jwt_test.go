package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(accessTTL time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		Secret:                 "0123456789abcdef0123456789abcdef",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "crm-backend-test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newService(time.Minute)
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(GenerateTokenInput{
		UserID: userID,
		Email:  "demo@company.com",
		Role:   "admin",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "demo@company.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenPurposes(t *testing.T) {
	svc := newService(time.Minute)
	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Email: "a@b.co", Role: "member"})
	require.NoError(t, err)

	t.Run("refresh token is rejected as access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrWrongPurpose)
	})

	t.Run("access token is rejected as refresh token", func(t *testing.T) {
		_, err := svc.ValidateRefreshToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrWrongPurpose)
	})
}

func TestExpiredToken(t *testing.T) {
	svc := newService(-time.Minute)
	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Email: "a@b.co", Role: "member"})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTamperedToken(t *testing.T) {
	svc := newService(time.Minute)
	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: uuid.New(), Email: "a@b.co", Role: "member"})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{Secret: "another-secret-entirely-32-chars!"})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newService(time.Minute)
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(GenerateTokenInput{UserID: userID, Email: "a@b.co", Role: "manager"})
	require.NoError(t, err)

	renewed, err := svc.RefreshTokenPair(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "manager", claims.Role)
}
