package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/prompt-battle/internal/platform/ctxutil"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

const SessionCookieName = "pb_session"

// SessionMiddleware identifies the browser with a signed session cookie and
// attaches the session id to the request context. Unknown or tampered
// cookies start a new session.
type SessionMiddleware struct {
	log    *logger.Logger
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionMiddleware(log *logger.Logger, secret string, ttl time.Duration, secure bool) *SessionMiddleware {
	return &SessionMiddleware{
		log:    log.With("middleware", "Session"),
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

func (m *SessionMiddleware) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		sd := &ctxutil.SessionData{}
		if raw, err := c.Cookie(SessionCookieName); err == nil && raw != "" {
			sid, perr := m.parse(raw)
			if perr == nil {
				sd.SessionID = sid
			} else {
				m.log.Debug("discarding session cookie", "error", perr)
			}
		}
		if sd.SessionID == "" {
			sd.SessionID = uuid.NewString()
			sd.Fresh = true
		}
		// re-sign on every request so the idle expiry slides
		if token, err := m.sign(sd.SessionID); err == nil {
			maxAge := 0
			if m.ttl > 0 {
				maxAge = int(m.ttl.Seconds())
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, token, maxAge, "/", "", m.secure, true)
		} else {
			m.log.Warn("sign session cookie failed", "error", err)
		}
		c.Request = c.Request.WithContext(ctxutil.WithSessionData(c.Request.Context(), sd))
		c.Next()
	}
}

func (m *SessionMiddleware) sign(sid string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:  sid,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *SessionMiddleware) parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", errors.New("invalid session token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errors.New("invalid session id")
	}
	return claims.Subject, nil
}
