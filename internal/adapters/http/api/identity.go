package api

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// Session identity carriers. The header wins over the cookie so scripted
// clients can drive several sessions from one jar.
const (
	CookieName          = "lovequiz_sid"
	SessionHeaderName   = "X-Quiz-Session"
	defaultCookieMaxAge = 30 * time.Minute
)

type contextKey int

const sessionIDKey contextKey = iota

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// SessionIDFromContext extracts the session id resolved by withSession.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

func sessionIDFromRequest(r *http.Request) string {
	sid := strings.TrimSpace(r.Header.Get(SessionHeaderName))
	if sid == "" {
		if c, err := r.Cookie(CookieName); err == nil {
			sid = strings.TrimSpace(c.Value)
		}
	}
	if !sessionIDPattern.MatchString(sid) {
		return ""
	}
	return sid
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cookieMaxAge.Seconds()),
		Expires:  time.Now().Add(s.cookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cookieSecure,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.cookieSecure,
	})
}

// withSession resolves the session id or answers 404 before next runs.
func (s *Server) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := sessionIDFromRequest(r)
		if sid == "" {
			s.writeError(w, r, ErrNoSession, nil)
			return
		}
		ctx := context.WithValue(r.Context(), sessionIDKey, sid)
		next(w, r.WithContext(ctx))
	}
}
