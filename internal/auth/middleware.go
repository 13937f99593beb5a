package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/actuallystonmai/alt-choice/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type claimsKey struct{}

func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(Claims)
	return c, ok
}

// Verify rejects requests without a valid identity cookie.
func (m *Manager) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			writeMessage(w, http.StatusUnauthorized, "unauthorized access")
			return
		}

		claims, err := m.ValidateToken(cookie.Value)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("[auth] rejected identity cookie")
			writeMessage(w, http.StatusUnauthorized, "unauthorized access")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireEmailMatch must run after Verify. It forbids the request unless the
// token email equals the named chi URL parameter.
func RequireEmailMatch(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "unauthorized access")
				return
			}
			// chi matches on the escaped path, so the parameter may still be
			// percent-encoded.
			email, err := url.PathUnescape(chi.URLParam(r, param))
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "bad request")
				return
			}
			if claims.Email() != email {
				writeMessage(w, http.StatusForbidden, "forbidden access")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
