package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/hongminglow/blog-be/internal/apperr"
	"github.com/hongminglow/blog-be/internal/auth"
	"github.com/hongminglow/blog-be/internal/http/respond"
	"github.com/hongminglow/blog-be/internal/models"
	"github.com/hongminglow/blog-be/internal/storage"
)

// TokenCookieName is the cookie carrying the session token.
const TokenCookieName = "token"

type userContextKey struct{}

// UserFromContext returns the identity attached by RequireAuth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(models.User)
	return user, ok
}

// RequireAuth gates a handler behind token verification. The token comes from
// the token cookie or, failing that, an Authorization bearer header. It is
// decoded against the shared secret and its subject resolved to a stored
// user, which downstream handlers read via UserFromContext. Every decode
// failure collapses into the same 401 so clients learn nothing about which
// check failed; a verified token whose subject is gone gets its own message.
func RequireAuth(store storage.UserStore, tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractToken(r)
		if !ok {
			respond.Err(w, apperr.Unauthenticated("You are not logged in, please login and try again"))
			return
		}

		claims, err := tokens.Decode(token, time.Now())
		if err != nil {
			respond.Err(w, apperr.Unauthenticated("Invalid token"))
			return
		}

		user, err := store.FindUserByEmail(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				respond.Err(w, apperr.Unauthenticated("The user belonging to this token no longer exists"))
				return
			}
			respond.Err(w, apperr.Internal("Error fetching user from database", err))
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	const bearer = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearer) {
		return "", false
	}
	token := header[len(bearer):]
	if token == "" {
		return "", false
	}
	return token, true
}
