package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
	"github.com/Leopold1975/recipebox/pkg/logger"
)

type ctxKey int

const userCtxKey ctxKey = iota

func userFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userCtxKey).(models.User)

	return u, ok
}

// authenticate resolves the bearer token to a user identity and puts
// it on the request context. Every store operation downstream is
// scoped to this identity.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			handleError(w, authservice.ErrBadCredentials)

			return
		}

		u, err := s.authService.Identify(r.Context(), token)
		if err != nil {
			handleError(w, err)

			return
		}

		ctx := context.WithValue(r.Context(), userCtxKey, u)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}

			defer func() {
				latency := time.Since(start).String()

				logg.Infof("METHOD %s URI %s %s	STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					sw.code,
					latency,
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.code = code
	sw.ResponseWriter.WriteHeader(code)
}
