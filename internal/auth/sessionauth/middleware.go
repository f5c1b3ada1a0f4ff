package sessionauth

import (
	"context"
	"net/http"

	"github.com/mzotova/threadline/internal/common/constants"
	commonhttp "github.com/mzotova/threadline/internal/common/http"
	"github.com/mzotova/threadline/internal/common/logger"
	userdomain "github.com/mzotova/threadline/internal/user/domain"
)

// Principal is the authenticated user attached to a request.
type Principal struct {
	UserID   string
	Username string
}

// Resolver maps a raw session token to its owning user. Implemented by the
// auth service.
type Resolver interface {
	CurrentPrincipal(ctx context.Context, rawToken string) (userdomain.User, bool, error)
}

type contextKey string

const principalKey contextKey = "session_principal"

// Middleware resolves the session cookie and, when it maps to a live
// session, stores the principal in the request context. It never rejects;
// protected handlers use Require.
func Middleware(resolver Resolver, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, ok, err := resolver.CurrentPrincipal(r.Context(), cookie.Value)
			if err != nil {
				log.Errorf("session resolve failed path=%s: %v", r.URL.Path, err)
				commonhttp.HandleError(w, r, err, log)
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, Principal{
				UserID:   string(user.ID),
				Username: user.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require rejects requests that carry no resolved principal.
func Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			commonhttp.WriteErrorEnvelope(w, http.StatusUnauthorized, commonhttp.CodeUnauthenticated, "not logged in", nil, "")
			return
		}
		next(w, r)
	}
}

func FromContext(ctx context.Context) (Principal, bool) {
	val := ctx.Value(principalKey)
	principal, ok := val.(Principal)
	return principal, ok
}

// WithPrincipal is used by handler tests to seed an authenticated context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}
