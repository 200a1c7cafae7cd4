package auth

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/common"
)

// CookieManager binds session tokens to the session cookie.
type CookieManager struct {
	name   string
	maxAge time.Duration
	secure bool
}

// NewCookieManager returns a manager whose cookies live for maxAge and carry
// the Secure attribute when secure is set.
func NewCookieManager(maxAge time.Duration, secure bool) *CookieManager {
	return &CookieManager{name: common.SessionCookieName, maxAge: maxAge, secure: secure}
}

// Name returns the cookie name.
func (m *CookieManager) Name() string {
	return m.name
}

func (m *CookieManager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Attach writes the session cookie carrying token.
func (m *CookieManager) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, m.cookie(token, int(m.maxAge.Seconds())))
}

// Clear writes an empty session cookie that expires immediately
// ("Max-Age=0" on the wire).
func (m *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1))
}

// Read returns the session token carried by r, or "".
func (m *CookieManager) Read(r *http.Request) string {
	c, err := r.Cookie(m.name)
	if err != nil {
		return ""
	}
	return c.Value
}
