package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSubject = errors.New("token subject is not a customer id")

// Claims identifies the customer a bearer token was issued to. Tokens are
// issued by the identity service; this package only needs to verify them.
type Claims struct {
	CustomerID int64
	Username   string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}

	customerID, err := strconv.ParseInt(tc.Subject, 10, 64)
	if err != nil || customerID <= 0 {
		return nil, fmt.Errorf("ValidateToken: %w: %q", ErrInvalidSubject, tc.Subject)
	}

	return &Claims{
		CustomerID: customerID,
		Username:   tc.Username,
	}, nil
}
