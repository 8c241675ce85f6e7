// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/comicshelf/internal/app/system/jsonio"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger logs server-side failures and answers with a generic JSON
// message. The cause never reaches the client.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs logMsg with err and the request context, then writes
// a 500 with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())))
	if userMsg == "" {
		userMsg = "An unknown error occurred, please try again."
	}
	jsonio.Message(w, http.StatusInternalServerError, userMsg)
}

// Recoverer turns panics into a logged JSON 500.
func (e *ErrorLogger) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			e.log.Error("panic serving request",
				zap.Any("panic", rec),
				zap.Stack("stack"),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("request_id", middleware.GetReqID(r.Context())))
			jsonio.Message(w, http.StatusInternalServerError, "An unknown error occurred, please try again.")
		}()
		next.ServeHTTP(w, r)
	})
}
