package api

import (
	"time"

	"github.com/okian/lovequiz/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.cookieSecure = secure
	}
}

// WithCookieMaxAge sets the session cookie lifetime.
func WithCookieMaxAge(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.cookieMaxAge = d
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.logger = log
		}
	}
}
