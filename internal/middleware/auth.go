package middleware

import (
	"net/http"
	"strings"

	"github.com/Deepesh2575/Online-Banking-System/internal/auth"
	"github.com/Deepesh2575/Online-Banking-System/internal/handler"
	"github.com/Deepesh2575/Online-Banking-System/internal/logging"
)

// Auth verifies the bearer token and stores the customer id in the request
// context. The request logger gains a customer_id attribute.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				logging.FromContext(r.Context()).Debug("token rejected", "error", err)
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithCustomerID(r.Context(), claims.CustomerID)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("customer_id", claims.CustomerID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
