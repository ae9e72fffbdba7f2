package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func roundTrip(t *testing.T, issuer, reader *Manager, nonce string) (string, error) {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, issuer.Issue(rr, nonce))

	req := httptest.NewRequest(http.MethodPost, "/api/ens/get-invite", nil)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
	return reader.Nonce(req)
}

func TestIssueAndRead(t *testing.T) {
	m := NewManager(secret)
	nonce, err := roundTrip(t, m, m, "abcdef123456")
	require.NoError(t, err)
	assert.Equal(t, "abcdef123456", nonce)
}

func TestCookieAttributes(t *testing.T) {
	m := NewManager(secret, WithSecure(true), WithCookieName("sess"), WithTTL(30*time.Minute))
	rr := httptest.NewRecorder()
	require.NoError(t, m.Issue(rr, "abcdef123456"))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "sess", c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, 1800, c.MaxAge)
}

func TestNonce_Rejections(t *testing.T) {
	t.Run("no cookie", func(t *testing.T) {
		_, err := NewManager(secret).Nonce(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("other secret", func(t *testing.T) {
		_, err := roundTrip(t, NewManager(secret), NewManager("ffffffffffffffffffffffffffffffff"), "abcdef123456")
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("expired", func(t *testing.T) {
		issued := time.Now().Add(-2 * time.Hour)
		issuer := NewManager(secret, WithClock(func() time.Time { return issued }))
		_, err := roundTrip(t, issuer, NewManager(secret), "abcdef123456")
		assert.ErrorIs(t, err, ErrNoSession)
	})

	t.Run("garbage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "not.a.jwt"})
		_, err := NewManager(secret).Nonce(req)
		assert.ErrorIs(t, err, ErrNoSession)
	})
}
