// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/lovequiz/internal/domain/quiz"
)

// Kind names what happened to a session.
type Kind string

const (
	KindCreated          Kind = "created"
	KindNameAccepted     Kind = "name_accepted"
	KindPartnerAccepted  Kind = "partner_accepted"
	KindRejected         Kind = "rejected"
	KindWrongStep        Kind = "wrong_step"
	KindDeclined         Kind = "declined"
	KindAccepted         Kind = "accepted"
	KindScoreSet         Kind = "score_set"
	KindScoreConfirmed   Kind = "score_confirmed"
	KindRevealed         Kind = "revealed"
	KindRestarted        Kind = "restarted"
	KindMusicToggled     Kind = "music_toggled"
	KindMusicFailed      Kind = "music_failed"
	KindCelebrationStart Kind = "celebration_started"
	KindExpired          Kind = "expired"
	KindEnded            Kind = "ended"
)

// Event describes one operation applied to a session. Events are emitted
// after the operation completed and never feed back into the quiz.
type Event struct {
	SessionID  string
	Kind       Kind
	Source     string    // front-end that issued the operation: http, telegram
	From       quiz.Step // step before the operation
	To         quiz.Step // step after the operation
	Score      int
	DodgeCount int
	Detail     string // validation kind, failing op or playback reason
	TS         time.Time
}

// Advanced reports whether the operation moved the quiz forward.
func (e Event) Advanced() bool {
	return e.To > e.From
}
