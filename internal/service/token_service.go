package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"stockingest/internal/config"
	"stockingest/internal/domain"
)

const accessAudience = "access"

// Claims represents the JWT claims with establishment context.
type Claims struct {
	jwt.RegisteredClaims
	EstablishmentID uuid.UUID       `json:"establishment_id"`
	UserID          uuid.UUID       `json:"user_id"`
	Email           string          `json:"email"`
	Role            domain.UserRole `json:"role"`
}

// TokenInput identifies the user an access token is issued for.
type TokenInput struct {
	EstablishmentID uuid.UUID
	UserID          uuid.UUID
	Email           string
	Role            domain.UserRole
}

// TokenService issues and validates access tokens. Users and sessions are
// managed by the identity service in front of this API; tokens are only
// minted here for local development.
type TokenService interface {
	IssueToken(input TokenInput) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type tokenService struct {
	cfg config.JWTConfig
}

// NewTokenService creates a new TokenService implementation.
func NewTokenService(cfg config.JWTConfig) TokenService {
	return &tokenService{cfg: cfg}
}

func (s *tokenService) IssueToken(input TokenInput) (string, time.Time, error) {
	now := time.Now()
	expiry := now.Add(s.cfg.AccessTokenExpiry)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   input.UserID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{accessAudience},
		},
		EstablishmentID: input.EstablishmentID,
		UserID:          input.UserID,
		Email:           input.Email,
		Role:            input.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing access token: %w", err)
	}
	return signed, expiry, nil
}

func (s *tokenService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	},
		jwt.WithAudience(accessAudience),
		jwt.WithIssuer(s.cfg.Issuer),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	if claims.EstablishmentID == uuid.Nil || claims.UserID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
