package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieManager_Attach(t *testing.T) {
	m := NewCookieManager(7*24*time.Hour, false)
	rec := httptest.NewRecorder()

	m.Attach(rec, "tok")

	headers := rec.Result().Header.Values("Set-Cookie")
	require.Len(t, headers, 1, "exactly one cookie write")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "mb_token", c.Name)
	assert.Equal(t, "tok", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 604800, c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestCookieManager_SecureInProduction(t *testing.T) {
	m := NewCookieManager(time.Hour, true)
	rec := httptest.NewRecorder()

	m.Attach(rec, "tok")

	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Secure")
}

func TestCookieManager_Clear(t *testing.T) {
	m := NewCookieManager(time.Hour, false)
	rec := httptest.NewRecorder()

	m.Clear(rec)

	headers := rec.Result().Header.Values("Set-Cookie")
	require.Len(t, headers, 1)
	h := headers[0]
	assert.True(t, strings.HasPrefix(h, "mb_token=;"), h)
	assert.Contains(t, h, "Max-Age=0")
	assert.Contains(t, h, "Path=/")
	assert.Empty(t, rec.Body.String(), "no other response state is touched")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCookieManager_Read(t *testing.T) {
	m := NewCookieManager(time.Hour, false)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", m.Read(r))

	r.AddCookie(&http.Cookie{Name: "mb_token", Value: "abc"})
	assert.Equal(t, "abc", m.Read(r))
}
