package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rvermeulen/roomcast/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware(t *testing.T) {
	s := &RoomcastApp{
		log:        testutil.TestLogger(t),
		signingKey: []byte("0123456789abcdef"),
	}

	t.Run("request without a token cookie is unauthorized", func(t *testing.T) {
		handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		})

		rr := httptest.NewRecorder()
		handler(rr, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("request with a garbage token is unauthorized", func(t *testing.T) {
		handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: "not-a-jwt"})

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token passes the user uuid to the handler", func(t *testing.T) {
		token, err := s.createJwtForSession("user-1", time.Hour)
		require.NoError(t, err)

		var gotUuid string
		handler := s.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			gotUuid, _ = UserUuid(r.Context())
		})

		req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
		req.AddCookie(&http.Cookie{Name: tokenCookieKey, Value: token})

		rr := httptest.NewRecorder()
		handler(rr, req)

		assert.Equal(t, "user-1", gotUuid)
		assert.Contains(t, rr.Header().Get("Cache-Control"), "no-store")
	})
}

func TestErrorHandler(t *testing.T) {
	s := &RoomcastApp{log: testutil.TestLogger(t)}

	handler := s.errorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
