package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/socialkit-dev/identity/domain"
)

const (
	// DefaultAccessTokenTTL bounds interactive access tokens.
	DefaultAccessTokenTTL = 2 * time.Hour
	// DefaultRefreshTokenTTL bounds the refresh window of a session.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// AccessClaims is the payload of an access token. ServerAccess marks
// non-expiring machine tokens issued for trusted backend callers.
type AccessClaims struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	SessionID    string `json:"sessionId,omitempty"`
	ServerAccess bool   `json:"serverAccess,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. Refresh tokens are signed
// with a secret distinct from the access token secret so one can never be
// presented in place of the other.
type RefreshClaims struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies the HS256 token pair backing a session.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret string) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     DefaultAccessTokenTTL,
		refreshTTL:    DefaultRefreshTokenTTL,
		now:           time.Now,
	}
}

// RefreshTTL reports how long a newly issued refresh token stays valid.
func (s *TokenService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// IssueAccessToken mints an access token bound to a user and session.
func (s *TokenService) IssueAccessToken(userID, email, sessionID string) (string, error) {
	now := s.now()
	claims := AccessClaims{
		UserID:    userID,
		Email:     email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
}

// IssueServerToken mints a machine token that carries no expiry. Intended for
// trusted internal services only.
func (s *TokenService) IssueServerToken(userID, email string) (string, error) {
	claims := AccessClaims{
		UserID:       userID,
		Email:        email,
		ServerAccess: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
}

// IssueRefreshToken mints a refresh token for the given session. The jti claim
// makes every token unique even when two rotations land on the same second, so
// a rotation always invalidates the token it replaces.
func (s *TokenService) IssueRefreshToken(userID, sessionID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.refreshTTL)
	claims := RefreshClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken validates signature and expiry and returns the claims.
// Any failure maps to domain.ErrUnauthorized.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.accessSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// DecodeRefreshToken validates the refresh token signature and returns its
// claims. Expiry is deliberately NOT enforced here: the rotation flow checks
// the persisted record's expiry so that a stale ledger row and a stale token
// fail the same way.
func (s *TokenService) DecodeRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.refreshSecret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidRefreshToken
	}
	return claims, nil
}
