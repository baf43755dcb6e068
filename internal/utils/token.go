package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims binds a session token to the configured password: Fingerprint is
// the SHA-256 of the password, so changing the password invalidates every
// outstanding token.
type Claims struct {
	Fingerprint string `json:"fingerprint"`
	jwt.RegisteredClaims
}

// PasswordFingerprint returns the hex SHA-256 of the shared password.
func PasswordFingerprint(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// IsPasswordValid compares candidate against the configured password in
// constant time.
func IsPasswordValid(candidate, password string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(password)) == 1
}

// IssueToken signs a session token carrying expiry and the password
// fingerprint.
func IssueToken(password, secret string, expiration time.Duration) (string, error) {
	claims := &Claims{
		Fingerprint: PasswordFingerprint(password),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies signature and expiry and checks that the token was
// issued for the current password.
func ValidateToken(tokenString, password, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if subtle.ConstantTimeCompare([]byte(claims.Fingerprint), []byte(PasswordFingerprint(password))) != 1 {
		return nil, errors.New("stale token")
	}

	return claims, nil
}
