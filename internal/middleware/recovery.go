package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Deepesh2575/Online-Banking-System/internal/handler"
	"github.com/Deepesh2575/Online-Banking-System/internal/logging"
)

// panicGuard remembers whether the handler already started its response.
type panicGuard struct {
	http.ResponseWriter
	started bool
}

func (g *panicGuard) WriteHeader(code int) {
	g.started = true
	g.ResponseWriter.WriteHeader(code)
}

func (g *panicGuard) Write(b []byte) (int, error) {
	g.started = true
	return g.ResponseWriter.Write(b)
}

// Recovery turns a handler panic into a 500. When the handler had already
// started writing, the partial response is left as is. Run it inside Logging
// so the panic is logged with the request id and shows up as a 500 in the
// access log.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guard := &panicGuard{ResponseWriter: w}
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}

			logging.FromContext(r.Context()).Error("panic recovered",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"response_started", guard.started,
				"stack", string(debug.Stack()),
			)
			if !guard.started {
				handler.RespondAppError(w, handler.ErrInternalError, nil)
			}
		}()
		next.ServeHTTP(guard, r)
	})
}
