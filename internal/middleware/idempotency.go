package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Deepesh2575/Online-Banking-System/internal/auth"
	"github.com/Deepesh2575/Online-Banking-System/internal/handler"
	"github.com/Deepesh2575/Online-Banking-System/internal/logging"
	"github.com/Deepesh2575/Online-Banking-System/internal/repository"
)

const idempotencyHeader = "Idempotency-Key"

type idempotencyRepository interface {
	Get(ctx context.Context, key string, customerID int64) (*repository.IdempotencyCacheEntry, error)
	Reserve(ctx context.Context, entry *repository.IdempotencyCacheEntry) (bool, error)
	Complete(ctx context.Context, entry *repository.IdempotencyCacheEntry) error
	Release(ctx context.Context, key string, customerID int64) error
}

// Idempotency runs a customer's write at most once per Idempotency-Key. The key
// is reserved before the handler runs, so a concurrent duplicate gets 409
// instead of executing again; a finished request is replayed. Requests without
// the header pass straight through. 5xx responses and panics release the key
// so an aborted operation can be retried under it. Must run after Auth.
func Idempotency(repo idempotencyRepository, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotencyHeader)
			if key == "" || r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			customerID, ok := auth.CustomerIDFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			log := logging.FromContext(r.Context()).With("idempotency_key", key)

			body, err := io.ReadAll(r.Body)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			now := time.Now().UTC()
			entry := &repository.IdempotencyCacheEntry{
				Key:         key,
				CustomerID:  customerID,
				RequestHash: computeHash(r.Method, r.URL.Path, body),
				CreatedAt:   now,
				ExpiresAt:   now.Add(ttl),
			}

			reserved, err := repo.Reserve(r.Context(), entry)
			if err != nil {
				log.Error("idempotency reservation failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}
			if !reserved {
				replay(w, r, repo, entry, log)
				return
			}

			// The reservation outlives a cancelled request context.
			storeCtx := context.WithoutCancel(r.Context())
			settled := false
			defer func() {
				if settled {
					return
				}
				if err := repo.Release(storeCtx, key, customerID); err != nil {
					log.Error("idempotency release failed", "error", err)
				}
			}()

			rec := &responseRecorder{ResponseWriter: w, body: &bytes.Buffer{}, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			if rec.statusCode >= http.StatusInternalServerError {
				return
			}

			// Once the handler has succeeded the key stays reserved even if the
			// response cannot be stored; releasing it would let a retry run twice.
			settled = true
			entry.StatusCode = rec.statusCode
			entry.ResponseBody = rec.body.Bytes()
			if err := repo.Complete(storeCtx, entry); err != nil {
				log.Error("idempotency cache store failed", "error", err)
			}
		})
	}
}

func replay(w http.ResponseWriter, r *http.Request, repo idempotencyRepository, entry *repository.IdempotencyCacheEntry, log *slog.Logger) {
	cached, err := repo.Get(r.Context(), entry.Key, entry.CustomerID)
	if err != nil {
		log.Error("idempotency cache lookup failed", "error", err)
		handler.RespondAppError(w, handler.ErrInternalError, nil)
		return
	}

	switch {
	case cached != nil && cached.RequestHash != entry.RequestHash:
		handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
	case cached == nil || cached.Pending():
		// nil: the holder released the key between our reserve and read.
		handler.RespondAppError(w, handler.ErrIdempotencyInProgress, nil)
	default:
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Idempotent-Replayed", "true")
		w.WriteHeader(cached.StatusCode)
		if _, err := w.Write(cached.ResponseBody); err != nil {
			log.Error("failed to write idempotent replay", "error", err)
		}
	}
}

func computeHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}
