package auth

import (
	"net/http"
	"time"
)

const CookieName = "token"

// cookie builds the identity cookie. Production deployments serve the web
// client from another origin, so the cookie must be Secure and SameSite=None
// there; everywhere else it is SameSite=Strict.
func (m *Manager) cookie(value string) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.production,
		SameSite: http.SameSiteStrictMode,
	}
	if m.production {
		c.SameSite = http.SameSiteNoneMode
	}
	return c
}

func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, m.cookie(token))
}

func (m *Manager) ClearCookie(w http.ResponseWriter) {
	c := m.cookie("")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}
