package ctxutil

import "context"

type sessionDataKey struct{}

// SessionData identifies the browser session a request belongs to. It is
// attached by the session middleware from the signed session cookie.
type SessionData struct {
	SessionID string
	Fresh     bool
}

func WithSessionData(ctx context.Context, sd *SessionData) context.Context {
	return context.WithValue(ctx, sessionDataKey{}, sd)
}

func GetSessionData(ctx context.Context) *SessionData {
	if sd, ok := ctx.Value(sessionDataKey{}).(*SessionData); ok {
		return sd
	}
	return nil
}

// SessionID returns the request's session id or "" when none is attached.
func SessionID(ctx context.Context) string {
	if sd := GetSessionData(ctx); sd != nil {
		return sd.SessionID
	}
	return ""
}
