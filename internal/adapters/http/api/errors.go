package api

import (
	"errors"
	"net/http"

	service "github.com/okian/lovequiz/internal/app"
	"github.com/okian/lovequiz/internal/domain/quiz"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNoSession  = errors.New("no session")
)

// Error codes that are not quiz codes.
const (
	codeBadRequest      = "bad_request"
	codeNoSession       = "session_not_found"
	codeTooManySessions = "too_many_sessions"
	codeInternal        = "internal"
)

// statusFor maps err to an HTTP status, a machine code and the text shown
// to the user.
func statusFor(err error) (int, string, string) {
	var verr *quiz.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, quiz.Code(err), verr.Message
	case errors.Is(err, quiz.ErrWrongStep):
		return http.StatusConflict, quiz.CodeWrongStep, err.Error()
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, ErrNoSession):
		return http.StatusNotFound, codeNoSession, err.Error()
	case errors.Is(err, service.ErrTooManySessions):
		return http.StatusServiceUnavailable, codeTooManySessions, err.Error()
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, codeBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, codeInternal, http.StatusText(http.StatusInternalServerError)
	}
}
