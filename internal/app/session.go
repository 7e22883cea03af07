package service

import (
	"context"
	"errors"
	"sync"
	"time"

	workerpool "github.com/okian/lovequiz/internal/adapters/mq/worker"
	"github.com/okian/lovequiz/internal/domain/dedupe"
	"github.com/okian/lovequiz/internal/domain/media"
	"github.com/okian/lovequiz/internal/domain/model"
	"github.com/okian/lovequiz/internal/domain/quiz"
	"github.com/okian/lovequiz/internal/domain/types"
	"github.com/okian/lovequiz/pkg/logger"
)

// session is one quiz in progress. mu guards every field.
type session struct {
	mu             sync.Mutex
	id             string
	ctrl           *quiz.Controller
	music          *media.Soundtrack
	celebrateUntil time.Time
}

// snapshot must be called with ss.mu held.
func (s *Service) snapshot(ss *session) types.Snapshot {
	st := ss.ctrl.Snapshot()

	var music *media.View
	if ss.music != nil {
		v := ss.music.View()
		music = &v
	}

	return types.NewSnapshot(ss.id, st,
		ss.ctrl.ScoreMessage(st.AffectionScore),
		music,
		s.now().Before(ss.celebrateUntil),
	)
}

// releaseMusic must be called with ss.mu held.
func (s *Service) releaseMusic(ctx context.Context, ss *session) {
	if ss.music == nil {
		return
	}
	if err := ss.music.Release(); err != nil {
		s.logger.Debug(ctx, "soundtrack release failed", logger.String("session", ss.id), logger.Error(err))
	}
	ss.music = nil
}

// apply runs op under the session lock and emits one event describing the
// outcome. kind is emitted on success; op may add a detail to the event.
func (s *Service) apply(ctx context.Context, id string, kind model.Kind, op func(ss *session, e *model.Event) error) (types.Snapshot, error) {
	ss, err := s.lookup(ctx, id)
	if err != nil {
		return types.Snapshot{}, err
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	before := ss.ctrl.Snapshot()
	e := model.Event{SessionID: id, Kind: kind, From: before.Step}

	opErr := op(ss, &e)

	after := ss.ctrl.Snapshot()
	e.To = after.Step
	e.DodgeCount = after.DodgeCount
	e.Score = after.AffectionScore

	var stepErr *quiz.StepError
	switch {
	case errors.As(opErr, &stepErr):
		e.Kind = model.KindWrongStep
		e.Detail = stepErr.Op
	case opErr != nil:
		e.Kind = model.KindRejected
		e.Detail = quiz.Code(opErr)
	}
	s.emit(ctx, e)

	return s.snapshot(ss), opErr
}

// Snapshot returns the current state of a session.
func (s *Service) Snapshot(ctx context.Context, id string) (types.Snapshot, error) {
	ss, err := s.lookup(ctx, id)
	if err != nil {
		return types.Snapshot{}, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return s.snapshot(ss), nil
}

// SubmitName validates the name. Entering the partner step acquires the
// soundtrack.
func (s *Service) SubmitName(ctx context.Context, id, input string) (types.Snapshot, error) {
	return s.apply(ctx, id, model.KindNameAccepted, func(ss *session, _ *model.Event) error {
		if err := ss.ctrl.SubmitName(input); err != nil {
			return err
		}
		if ss.music == nil {
			ss.music = media.Acquire(ctx, s.track, s.newPlayer(), s.logger.Named("media"))
		}
		return nil
	})
}

// SubmitPartner validates the partner name.
func (s *Service) SubmitPartner(ctx context.Context, id, input string) (types.Snapshot, error) {
	return s.apply(ctx, id, model.KindPartnerAccepted, func(ss *session, _ *model.Event) error {
		return ss.ctrl.SubmitPartner(input)
	})
}

// InputChanged clears the pending validation message. It emits nothing.
func (s *Service) InputChanged(ctx context.Context, id string) (types.Snapshot, error) {
	ss, err := s.lookup(ctx, id)
	if err != nil {
		return types.Snapshot{}, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.ctrl.InputChanged()
	return s.snapshot(ss), nil
}

// Decline evades the "no" button. A non-empty gesture already applied to
// this session leaves the state untouched and reports Duplicate.
func (s *Service) Decline(ctx context.Context, id, gesture string) (types.Decline, error) {
	var (
		offset    quiz.Offset
		duplicate bool
	)

	snap, err := s.apply(ctx, id, model.KindDeclined, func(ss *session, e *model.Event) error {
		if gesture != "" && s.deduper.SeenAndRecord(ctx, dedupe.Key(id, gesture)) {
			duplicate = true
			offset = ss.ctrl.Snapshot().DecoyOffset
			e.Detail = workerpool.DetailDuplicate
			return nil
		}
		offset = ss.ctrl.RecordDecline()
		return nil
	})
	if err != nil {
		return types.Decline{}, err
	}

	return types.Decline{Offset: offset, Duplicate: duplicate, State: snap}, nil
}

// Accept answers "yes" to the confirmation question.
func (s *Service) Accept(ctx context.Context, id string) (types.Snapshot, error) {
	return s.apply(ctx, id, model.KindAccepted, func(ss *session, _ *model.Event) error {
		return ss.ctrl.Accept()
	})
}

// SetAffection stores the clamped slider value.
func (s *Service) SetAffection(ctx context.Context, id string, value int) (types.Snapshot, error) {
	return s.apply(ctx, id, model.KindScoreSet, func(ss *session, _ *model.Event) error {
		_, err := ss.ctrl.SetAffectionScore(value)
		return err
	})
}

// ConfirmAffection accepts the score and moves to the final step.
func (s *Service) ConfirmAffection(ctx context.Context, id string) (types.Snapshot, error) {
	return s.apply(ctx, id, model.KindScoreConfirmed, func(ss *session, _ *model.Event) error {
		return ss.ctrl.ConfirmAffection()
	})
}

// Reveal opens the ending screen. The first reveal starts the celebration.
func (s *Service) Reveal(ctx context.Context, id string) (types.Snapshot, error) {
	var celebrate bool

	snap, err := s.apply(ctx, id, model.KindRevealed, func(ss *session, _ *model.Event) error {
		already := ss.ctrl.Snapshot().Revealed
		if err := ss.ctrl.Reveal(); err != nil {
			return err
		}
		if !already {
			ss.celebrateUntil = s.now().Add(s.celebration)
			celebrate = true
		}
		return nil
	})

	if celebrate {
		s.emit(ctx, model.Event{
			SessionID: id,
			Kind:      model.KindCelebrationStart,
			From:      quiz.StepReveal,
			To:        quiz.StepReveal,
			Score:     snap.AffectionScore,
		})
	}
	return snap, err
}

// Restart resets the quiz, releases the soundtrack and ends any celebration.
func (s *Service) Restart(ctx context.Context, id string) (types.Snapshot, error) {
	return s.apply(ctx, id, model.KindRestarted, func(ss *session, _ *model.Event) error {
		ss.ctrl.Restart()
		s.releaseMusic(ctx, ss)
		ss.celebrateUntil = time.Time{}
		return nil
	})
}

// ToggleMusic mutes or resumes the soundtrack. Without a soundtrack it is a no-op.
func (s *Service) ToggleMusic(ctx context.Context, id string) (types.Snapshot, error) {
	return s.apply(ctx, id, model.KindMusicToggled, func(ss *session, e *model.Event) error {
		if ss.music == nil {
			e.Detail = "no_soundtrack"
			return nil
		}
		if ss.music.Toggle(ctx) {
			e.Detail = "playing"
		} else {
			e.Detail = "muted"
		}
		return nil
	})
}

// ReportMusicFailure records a client-side playback failure. It never fails
// the session.
func (s *Service) ReportMusicFailure(ctx context.Context, id, reason string) (types.Snapshot, error) {
	if reason == "" {
		reason = "unknown"
	}
	return s.apply(ctx, id, model.KindMusicFailed, func(ss *session, e *model.Event) error {
		e.Detail = "client"
		if ss.music != nil {
			ss.music.ReportFailure(ctx, reason)
		}
		return nil
	})
}

// Share returns the shareable summary once the quiz reached the final step.
func (s *Service) Share(ctx context.Context, id string) (types.Share, error) {
	ss, err := s.lookup(ctx, id)
	if err != nil {
		return types.Share{}, err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()

	text, err := ss.ctrl.ShareText()
	if err != nil {
		return types.Share{}, err
	}
	return types.Share{Text: text}, nil
}
