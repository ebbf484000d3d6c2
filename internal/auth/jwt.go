package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"meterdesk/internal/domain"
)

type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token for the given user.
func IssueToken(secret string, ttl time.Duration, u *domain.User) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		Username: u.Username,
		Role:     string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return tok.SignedString([]byte(secret))
}

// ParseToken validates a session token and returns the acting user.
func ParseToken(secret, tokenStr string) (*domain.Actor, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	var c claims
	tok, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return nil, err
	}
	role := domain.Role(c.Role)
	if c.Subject == "" || c.Username == "" || !role.Valid() {
		return nil, errors.New("invalid claims")
	}
	return &domain.Actor{ID: c.Subject, Username: c.Username, Role: role}, nil
}
