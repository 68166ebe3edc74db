package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/vehicle-pricing/internal/domain"
)

// ErrNoAccess is returned when asked to issue a pass for a denied decision.
var ErrNoAccess = errors.New("decision does not grant access")

// TokenManager issues and validates access passes.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Claims describes the access pass payload. The subject is the buyer email.
type Claims struct {
	ProductID string `json:"product_id,omitempty"`
	Status    string `json:"status"`
	jwt.RegisteredClaims
}

// Issue signs an access pass for a granted decision.
func (tm *TokenManager) Issue(decision domain.EntitlementDecision, email string) (string, time.Time, error) {
	if !decision.HasAccess {
		return "", time.Time{}, ErrNoAccess
	}
	now := tm.now()
	expiresAt := now.Add(tm.ttl)
	claims := &Claims{
		ProductID: decision.ProductID,
		Status:    string(decision.Status),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// Parse validates a pass and returns its claims.
func (tm *TokenManager) Parse(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	}, jwt.WithTimeFunc(tm.now))
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
