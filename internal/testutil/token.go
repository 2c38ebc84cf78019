package testutil

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// SignToken issues an HS256 bearer token for customerID the way the identity
// service does. A negative expiry yields an already expired token.
func SignToken(t *testing.T, secret string, customerID int64, username string, expiry time.Duration) string {
	t.Helper()

	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(customerID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: username,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token for customer %d: %v", customerID, err)
	}
	return signed
}
