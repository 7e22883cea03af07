// Package types contains the wire types shared by the HTTP and Telegram front-ends.
package types

import (
	"github.com/okian/lovequiz/internal/domain/media"
	"github.com/okian/lovequiz/internal/domain/quiz"
)

// Snapshot is the serialized view of a session.
type Snapshot struct {
	SessionID      string      `json:"session_id"`
	Step           int         `json:"step"`
	StepName       string      `json:"step_name"`
	Name           string      `json:"name"`
	Partner        string      `json:"partner"`
	ErrorMessage   string      `json:"error_message,omitempty"`
	AffectionScore int         `json:"affection_score"`
	DodgeCount     int         `json:"dodge_count"`
	DecoyOffset    quiz.Offset `json:"decoy_offset"`
	Revealed       bool        `json:"revealed"`
	Progress       int         `json:"progress"`
	ScoreMessage   string      `json:"score_message"`
	Music          *media.View `json:"music"`
	Confetti       bool        `json:"confetti"`
}

// NewSnapshot builds the wire view of st. music may be nil before the
// soundtrack is acquired.
func NewSnapshot(id string, st quiz.State, scoreMessage string, music *media.View, confetti bool) Snapshot {
	return Snapshot{
		SessionID:      id,
		Step:           int(st.Step),
		StepName:       st.Step.String(),
		Name:           st.Name,
		Partner:        st.Partner,
		ErrorMessage:   st.ErrorMessage,
		AffectionScore: st.AffectionScore,
		DodgeCount:     st.DodgeCount,
		DecoyOffset:    st.DecoyOffset,
		Revealed:       st.Revealed,
		Progress:       quiz.Progress(st.Step),
		ScoreMessage:   scoreMessage,
		Music:          music,
		Confetti:       confetti,
	}
}

// ErrorBody is the JSON body of a failed request. State is set when the
// failure left a session behind, e.g. a rejected name.
type ErrorBody struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	State   *Snapshot `json:"state,omitempty"`
}

// ScoreMessage is the response of the score message lookup.
type ScoreMessage struct {
	Score   int    `json:"score"`
	Band    string `json:"band"`
	Message string `json:"message"`
}

// Share is the shareable summary of a finished quiz.
type Share struct {
	Text string `json:"text"`
}

// Decline is the response of an evaded decline.
type Decline struct {
	Offset    quiz.Offset `json:"offset"`
	Duplicate bool        `json:"duplicate"`
	State     Snapshot    `json:"state"`
}
