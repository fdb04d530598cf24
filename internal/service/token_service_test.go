package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockingest/internal/config"
	"stockingest/internal/domain"
	"stockingest/internal/service"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-key-for-testing",
		AccessTokenExpiry: 15 * time.Minute,
		Issuer:            "stockingest-test",
	}
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := service.NewTokenService(testJWTConfig())
	input := service.TokenInput{
		EstablishmentID: uuid.New(),
		UserID:          uuid.New(),
		Email:           "caja@club.com.ar",
		Role:            domain.RoleMember,
	}

	token, expiresAt, err := svc.IssueToken(input)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, input.EstablishmentID, claims.EstablishmentID)
	assert.Equal(t, input.UserID, claims.UserID)
	assert.Equal(t, input.Email, claims.Email)
	assert.Equal(t, domain.RoleMember, claims.Role)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := service.NewTokenService(testJWTConfig())
	token, _, err := issuer.IssueToken(service.TokenInput{EstablishmentID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	cfg := testJWTConfig()
	cfg.Secret = "another-secret"
	_, err = service.NewTokenService(cfg).ValidateToken(token)

	assert.Error(t, err)
}

func TestTokenService_RejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenExpiry = -time.Minute
	svc := service.NewTokenService(cfg)
	token, _, err := svc.IssueToken(service.TokenInput{EstablishmentID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)

	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenService_RejectsMissingEstablishment(t *testing.T) {
	svc := service.NewTokenService(testJWTConfig())
	token, _, err := svc.IssueToken(service.TokenInput{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestTokenService_RejectsOtherAudience(t *testing.T) {
	cfg := testJWTConfig()
	claims := &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Audience:  jwt.ClaimStrings{"refresh"},
		},
		EstablishmentID: uuid.New(),
		UserID:          uuid.New(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = service.NewTokenService(cfg).ValidateToken(token)

	assert.Error(t, err)
}
