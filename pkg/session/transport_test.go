package session_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/pkg/cookie"
	"github.com/dealerdesk/dealerdesk/pkg/session"
)

func TestCookieTransport(t *testing.T) {
	t.Parallel()

	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	tr := session.NewCookieTransport(cookies, "sessionid", false)

	t.Run("round-trip", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, tr.SetKey(w, "the-key", time.Hour))

		r := httptest.NewRequest("GET", "/", nil)
		for _, c := range w.Result().Cookies() {
			r.AddCookie(c)
		}

		got, err := tr.GetKey(r)
		require.NoError(t, err)
		assert.Equal(t, "the-key", got)
	})

	t.Run("missing cookie", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		_, err := tr.GetKey(r)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})

	t.Run("cookie value is not the raw key", func(t *testing.T) {
		t.Parallel()

		w := httptest.NewRecorder()
		require.NoError(t, tr.SetKey(w, "the-key", time.Hour))

		cs := w.Result().Cookies()
		require.Len(t, cs, 1)
		assert.NotContains(t, cs[0].Value, "the-key")
	})
}

func TestHeaderTransport(t *testing.T) {
	t.Parallel()

	tr := session.NewHeaderTransport("X-Session-ID")

	t.Run("extracts from header", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Session-ID", "the-key")

		got, err := tr.GetKey(r)
		require.NoError(t, err)
		assert.Equal(t, "the-key", got)
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest("GET", "/", nil)
		_, err := tr.GetKey(r)
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}
