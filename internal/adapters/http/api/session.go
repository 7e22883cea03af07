package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/lovequiz/internal/domain/types"
)

type inputRequest struct {
	Input string `json:"input"`
}

type declineRequest struct {
	GestureID string `json:"gesture_id"`
}

type affectionRequest struct {
	Value *int `json:"value"`
}

type musicFailureRequest struct {
	Reason string `json:"reason"`
}

// reply writes snap on success, or the error with snap attached when the
// operation reached a session.
func (s *Server) reply(w http.ResponseWriter, r *http.Request, snap types.Snapshot, err error) { //nolint:gocritic // hugeParam: snapshots travel by value
	if err != nil {
		var state *types.Snapshot
		if snap.SessionID != "" {
			state = &snap
		}
		s.writeError(w, r, err, state)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleCreate handles POST /api/session.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.setSessionCookie(w, snap.SessionID)
	writeJSON(w, http.StatusCreated, snap)
}

// handleSnapshot handles GET /api/session.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Snapshot(r.Context(), SessionIDFromContext(r.Context()))
	s.reply(w, r, snap, err)
}

// handleEnd handles DELETE /api/session.
func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.End(r.Context(), SessionIDFromContext(r.Context())); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleName handles POST /api/session/name.
func (s *Server) handleName(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	snap, err := s.sessions.SubmitName(r.Context(), SessionIDFromContext(r.Context()), req.Input)
	s.reply(w, r, snap, err)
}

// handlePartner handles POST /api/session/partner.
func (s *Server) handlePartner(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	snap, err := s.sessions.SubmitPartner(r.Context(), SessionIDFromContext(r.Context()), req.Input)
	s.reply(w, r, snap, err)
}

// handleInput handles POST /api/session/input.
func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.InputChanged(r.Context(), SessionIDFromContext(r.Context()))
	s.reply(w, r, snap, err)
}

// handleDecline handles POST /api/session/decline. The body is optional.
func (s *Server) handleDecline(w http.ResponseWriter, r *http.Request) {
	var req declineRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	dec, err := s.sessions.Decline(r.Context(), SessionIDFromContext(r.Context()), req.GestureID)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, dec)
}

// handleAccept handles POST /api/session/accept.
func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Accept(r.Context(), SessionIDFromContext(r.Context()))
	s.reply(w, r, snap, err)
}

// handleAffection handles PUT /api/session/affection.
func (s *Server) handleAffection(w http.ResponseWriter, r *http.Request) {
	var req affectionRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	if req.Value == nil {
		s.writeError(w, r, fmt.Errorf("%w: missing value", ErrBadRequest), nil)
		return
	}
	snap, err := s.sessions.SetAffection(r.Context(), SessionIDFromContext(r.Context()), *req.Value)
	s.reply(w, r, snap, err)
}

// handleConfirm handles POST /api/session/confirm.
func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.ConfirmAffection(r.Context(), SessionIDFromContext(r.Context()))
	s.reply(w, r, snap, err)
}

// handleReveal handles POST /api/session/reveal.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Reveal(r.Context(), SessionIDFromContext(r.Context()))
	s.reply(w, r, snap, err)
}

// handleRestart handles POST /api/session/restart.
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Restart(r.Context(), SessionIDFromContext(r.Context()))
	s.reply(w, r, snap, err)
}

// handleMusicToggle handles POST /api/session/music/toggle.
func (s *Server) handleMusicToggle(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.ToggleMusic(r.Context(), SessionIDFromContext(r.Context()))
	s.reply(w, r, snap, err)
}

// handleMusicFailure handles POST /api/session/music/failure.
func (s *Server) handleMusicFailure(w http.ResponseWriter, r *http.Request) {
	var req musicFailureRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	snap, err := s.sessions.ReportMusicFailure(r.Context(), SessionIDFromContext(r.Context()), req.Reason)
	s.reply(w, r, snap, err)
}

// handleShare handles GET /api/session/share.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	share, err := s.sessions.Share(r.Context(), SessionIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

// handleScoreMessage handles GET /api/score-message?score=n.
func (s *Server) handleScoreMessage(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("score")
	score, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: score must be an integer", ErrBadRequest), nil)
		return
	}
	writeJSON(w, http.StatusOK, s.sessions.ScoreMessage(score))
}
