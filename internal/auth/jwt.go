// Package auth issues and validates the bearer token that gates the
// round-pairing-trigger endpoint, and hashes the tournament director's
// long-lived API key the same way the teacher hashes user passwords.
package auth

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies the tournament director who triggered a pairing run.
type Claims struct {
	DirectorID uint64 `json:"director_id"`
	jwt.RegisteredClaims
}

func getJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-in-production"
	}
	return []byte(secret)
}

func getTokenExpiry() time.Duration {
	expiry := os.Getenv("ACCESS_TOKEN_EXPIRY")
	if expiry == "" {
		return time.Hour
	}
	d, err := time.ParseDuration(expiry)
	if err != nil {
		return time.Hour
	}
	return d
}

// IssueToken creates a new bearer token for the director with the given ID.
func IssueToken(directorID uint64) (string, error) {
	claims := &Claims{
		DirectorID: directorID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(directorID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(getTokenExpiry())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getJWTSecret())
}

// ValidateToken parses and validates a bearer token, returning its claims.
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return getJWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("auth: invalid token")
}
