package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes. Session tokens authenticate the realtime connection; upload
// tokens are the short-lived credentials handed to the blob backend.
const (
	ScopeSession = "session"
	ScopeUpload  = "upload"
)

const (
	sessionTTL = 30 * 24 * time.Hour
	uploadTTL  = 10 * time.Minute
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HMAC JWTs.
type TokenManager struct {
	secret []byte
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// IssueSessionToken signs a long-lived session token for a user.
func (m *TokenManager) IssueSessionToken(userID string) (string, error) {
	return m.issue(userID, ScopeSession, sessionTTL)
}

// IssueUploadToken signs a short-lived token accepted by the blob backend.
func (m *TokenManager) IssueUploadToken(userID string) (string, error) {
	return m.issue(userID, ScopeUpload, uploadTTL)
}

func (m *TokenManager) issue(userID, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(m.secret)
}

// ValidateSession verifies a session token and returns the user id.
func (m *TokenManager) ValidateSession(tokenString string) (string, error) {
	return m.validate(tokenString, ScopeSession)
}

func (m *TokenManager) validate(tokenString, scope string) (string, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if c.Scope != scope || c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}
