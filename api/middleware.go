package api

import (
	"context"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

type userFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

type authMiddleware struct {
	responder Responder
	logger    zerolog.Logger
	tokens    *auth.TokenService
	users     userFinder
}

func newAuthMiddleware(tokens *auth.TokenService, users userFinder) authMiddleware {
	logger := log.With().Str("handlerName", "authMiddleware").Logger()
	return authMiddleware{
		responder: NewResponder(logger),
		logger:    logger,
		tokens:    tokens,
		users:     users,
	}
}

// authenticate resolves the bearer token to an existing user and stores the
// caller's identity in the request context.
func (m authMiddleware) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			m.responder.WriteError(w, errs.NewMissingTokenError())
			return
		}

		userID, err := m.tokens.ReadIdentity(token)
		if err != nil {
			m.logger.Debug().Err(err).Msg("Rejected access token")
			if errs.IsExpiredTokenError(err) {
				m.responder.WriteError(w, errs.NewExpiredTokenError())
				return
			}
			m.responder.WriteError(w, errs.NewInvalidTokenError())
			return
		}

		ctx := r.Context()
		user, err := m.users.FindByID(ctx, userID)
		if err != nil {
			m.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if user == nil {
			m.responder.WriteError(w, errs.NewUnauthorizedError("User not found"))
			return
		}

		updatedCtx := ctxWithIdentity(ctx, auth.IdentityOf(user))
		updatedReq := r.WithContext(updatedCtx)
		next.ServeHTTP(w, updatedReq)
	})
}

// recordingWriter remembers the status and body size written through it.
type recordingWriter struct {
	http.ResponseWriter
	status  int
	written int
}

func record(w http.ResponseWriter) *recordingWriter {
	return &recordingWriter{ResponseWriter: w}
}

func (w *recordingWriter) WriteHeader(statusCode int) {
	if w.status != 0 {
		return
	}
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// Status is the code sent so far, 200 when the handler wrote nothing.
func (w *recordingWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func requestEvent(e *zerolog.Event, r *http.Request) *zerolog.Event {
	return e.
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("requestID", middleware.GetReqID(r.Context()))
}

// LogInternalServerErrors turns panics into a JSON 500 and logs every 500,
// with the stack for panics.
func LogInternalServerErrors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := record(w)

		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}

			requestEvent(log.Error(), r).
				Interface("panic", recovered).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic")
			if rw.status == 0 {
				NewResponder(log.Logger).WriteError(rw, errs.NewInternalError("Internal Server Error"))
			}
		}()

		next.ServeHTTP(rw, r)

		if rw.Status() == http.StatusInternalServerError {
			requestEvent(log.Error(), r).Msg("500 error response")
		}
	})
}

// CORSCheckMiddleware rejects preflight requests from origins outside the
// allow list with a JSON error instead of a bare response.
func CORSCheckMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}
	_, wildcard := allowed["*"]
	responder := NewResponder(log.With().Str("handlerName", "corsCheck").Logger())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || wildcard || r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowed[origin]; !ok {
				responder.WriteError(w, errs.NewCORSError(origin))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HTTPLoggingMiddleware logs one line per request at a level chosen by the
// status. With pretty set, lines go to a colored console writer.
func HTTPLoggingMiddleware(pretty bool) func(http.Handler) http.Handler {
	logger := log.Logger
	if pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := record(w)

			next.ServeHTTP(rw, r)

			status := rw.Status()
			event := logger.Info()
			switch {
			case status >= http.StatusInternalServerError:
				event = logger.Error()
			case status >= http.StatusBadRequest:
				event = logger.Warn()
			}

			requestEvent(event, r).
				Int("status", status).
				Int("bytes", rw.written).
				Dur("duration", time.Since(start)).
				Str("remoteAddr", r.RemoteAddr).
				Msg("HTTP Request")
		})
	}
}
