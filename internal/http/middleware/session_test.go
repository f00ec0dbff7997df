package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/prompt-battle/internal/platform/ctxutil"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

func sessionRouter(m *SessionMiddleware) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(m.Attach())
	r.GET("/", func(c *gin.Context) {
		seen = ctxutil.SessionID(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == SessionCookieName {
			return ck
		}
	}
	t.Fatalf("session cookie not set")
	return nil
}

func TestSessionCookieRoundTrip(t *testing.T) {
	m := NewSessionMiddleware(logger.NewNop(), "secret", time.Hour, false)
	r, seen := sessionRouter(m)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	first := *seen
	if first == "" {
		t.Fatalf("session id not attached")
	}
	ck := sessionCookie(t, rec)
	if !ck.HttpOnly {
		t.Fatalf("cookie must be http only")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(ck)
	r.ServeHTTP(httptest.NewRecorder(), req)
	if *seen != first {
		t.Fatalf("session not carried: %q vs %q", *seen, first)
	}
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	other := NewSessionMiddleware(logger.NewNop(), "other-secret", time.Hour, false)
	token, err := other.sign("8b1c1a52-6f0e-4f55-a7c1-0e5b0b4b8f11")
	if err != nil {
		t.Fatal(err)
	}

	m := NewSessionMiddleware(logger.NewNop(), "secret", time.Hour, false)
	r, seen := sessionRouter(m)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	r.ServeHTTP(httptest.NewRecorder(), req)
	if *seen == "" || *seen == "8b1c1a52-6f0e-4f55-a7c1-0e5b0b4b8f11" {
		t.Fatalf("forged cookie must start a new session, got %q", *seen)
	}
}

func TestSessionExpiredCookieStartsFresh(t *testing.T) {
	m := NewSessionMiddleware(logger.NewNop(), "secret", time.Minute, false)
	past := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return past }
	token, err := m.sign("8b1c1a52-6f0e-4f55-a7c1-0e5b0b4b8f11")
	if err != nil {
		t.Fatal(err)
	}
	m.now = time.Now
	if _, err := m.parse(token); err == nil {
		t.Fatalf("expired token should not parse")
	}
}
