package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = fmt.Errorf("%w: invalid session token", apperror.ErrAuth)
	ErrExpiredToken = fmt.Errorf("%w: session has expired", apperror.ErrAuth)
)

const issuer = "ec-storefront"

// SessionUser is the identity carried by a session token.
type SessionUser struct {
	UserID    string
	Email     string
	FirstName string
	Role      string
}

// Claims represents JWT claims
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the session belongs to an administrator.
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin"
}

// JWTService signs and validates session tokens
type JWTService struct {
	secretKey  []byte
	sessionTTL time.Duration
	now        func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(secretKey string, sessionTTL time.Duration) *JWTService {
	return &JWTService{
		secretKey:  []byte(secretKey),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

// GenerateSessionToken creates a signed token for u
func (s *JWTService) GenerateSessionToken(u SessionUser) (string, time.Time, error) {
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.sessionTTL)

	claims := Claims{
		UserID:    u.UserID,
		Email:     u.Email,
		FirstName: u.FirstName,
		Role:      u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateSessionToken validates a session token and returns claims
func (s *JWTService) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// SessionTTL returns the lifetime of issued tokens
func (s *JWTService) SessionTTL() time.Duration {
	return s.sessionTTL
}
