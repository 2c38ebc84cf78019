package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deepesh2575/Online-Banking-System/internal/testutil"
)

const testSecret = "test-jwt-secret"

func TestValidateToken_IssuedToken(t *testing.T) {
	token := testutil.SignToken(t, testSecret, 42, "jdoe", time.Hour)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.CustomerID)
	assert.Equal(t, "jdoe", claims.Username)
}

func TestValidateToken(t *testing.T) {
	validToken := testutil.SignToken(t, testSecret, 42, "jdoe", time.Hour)
	expiredToken := testutil.SignToken(t, testSecret, 42, "jdoe", -time.Hour)

	signed := func(claims tokenClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return s
	}
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	tests := []struct {
		name      string
		token     string
		secret    string
		wantErrIs error
	}{
		{
			name:      "expired token",
			token:     expiredToken,
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenExpired,
		},
		{
			name:      "wrong secret",
			token:     validToken,
			secret:    "wrong-secret",
			wantErrIs: jwt.ErrTokenSignatureInvalid,
		},
		{
			name:      "malformed token",
			token:     "not.a.valid.jwt",
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenMalformed,
		},
		{
			name:      "missing expiry",
			token:     signed(tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42"}}),
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenRequiredClaimMissing,
		},
		{
			name:      "non-numeric subject",
			token:     signed(tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "jdoe", ExpiresAt: future}}),
			secret:    testSecret,
			wantErrIs: ErrInvalidSubject,
		},
		{
			name:      "zero subject",
			token:     signed(tokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "0", ExpiresAt: future}}),
			secret:    testSecret,
			wantErrIs: ErrInvalidSubject,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateToken(tc.token, tc.secret)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErrIs)
		})
	}
}

func TestValidateToken_RejectsNonHMAC(t *testing.T) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	require.Error(t, err)
}

func TestCustomerIDContext(t *testing.T) {
	_, ok := CustomerIDFromContext(context.Background())
	assert.False(t, ok)

	id, ok := CustomerIDFromContext(ContextWithCustomerID(context.Background(), 9))
	require.True(t, ok)
	assert.Equal(t, int64(9), id)
}
