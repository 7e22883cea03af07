// Package telegram plays the quiz in a Telegram chat.
//
// Conversation turns chat input into session operations and replies; it
// knows nothing about the Bot API. Bot adapts it to go-telegram/bot.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	service "github.com/okian/lovequiz/internal/app"
	"github.com/okian/lovequiz/internal/domain/quiz"
	"github.com/okian/lovequiz/internal/domain/types"
)

// Source tags session events issued from Telegram.
const Source = "telegram"

// Commands and callback payloads.
const (
	CommandStart   = "/start"
	CommandRestart = "/restart"

	CallbackYes     = "yes"
	CallbackNo      = "no"
	CallbackConfirm = "confirm"
	CallbackReveal  = "reveal"
)

// Sessions is the session service as seen by the chat.
type Sessions interface {
	Ensure(ctx context.Context, id string) (types.Snapshot, error)
	SubmitName(ctx context.Context, id, input string) (types.Snapshot, error)
	SubmitPartner(ctx context.Context, id, input string) (types.Snapshot, error)
	Decline(ctx context.Context, id, gesture string) (types.Decline, error)
	Accept(ctx context.Context, id string) (types.Snapshot, error)
	SetAffection(ctx context.Context, id string, value int) (types.Snapshot, error)
	ConfirmAffection(ctx context.Context, id string) (types.Snapshot, error)
	Reveal(ctx context.Context, id string) (types.Snapshot, error)
	Restart(ctx context.Context, id string) (types.Snapshot, error)
	Share(ctx context.Context, id string) (types.Share, error)
}

// Button is one inline keyboard button.
type Button struct {
	Text string
	Data string
}

// Reply is one outgoing chat message.
type Reply struct {
	Text    string
	Buttons [][]Button
}

// Input is one incoming update: either a text message or a callback.
type Input struct {
	Text       string
	Callback   string
	CallbackID string
}

// Conversation maps chat input onto a quiz session per chat.
type Conversation struct {
	sessions Sessions
}

// NewConversation creates a Conversation over sessions.
func NewConversation(sessions Sessions) *Conversation {
	return &Conversation{sessions: sessions}
}

// SessionID is the stable session id of a chat.
func SessionID(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}

// Handle applies in to the chat's session and returns the replies to send.
func (c *Conversation) Handle(ctx context.Context, chatID int64, in Input) ([]Reply, error) {
	ctx = service.WithSource(ctx, Source)
	id := SessionID(chatID)

	snap, err := c.sessions.Ensure(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ensure session %s: %w", id, err)
	}

	if in.Callback != "" {
		return c.handleCallback(ctx, id, snap, in)
	}

	text := strings.TrimSpace(in.Text)
	switch text {
	case CommandStart:
		return []Reply{prompt(snap)}, nil
	case CommandRestart:
		snap, err = c.sessions.Restart(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("restart: %w", err)
		}
		return []Reply{prompt(snap)}, nil
	}

	switch quiz.Step(snap.Step) {
	case quiz.StepNameEntry:
		snap, err = c.sessions.SubmitName(ctx, id, text)
	case quiz.StepPartnerEntry:
		snap, err = c.sessions.SubmitPartner(ctx, id, text)
	case quiz.StepScoreSelection:
		v, convErr := strconv.Atoi(strings.TrimSuffix(text, "%"))
		if convErr != nil {
			return []Reply{{Text: "Ketik angka 1 sampai 100 ya 💕"}, prompt(snap)}, nil
		}
		snap, err = c.sessions.SetAffection(ctx, id, v)
	default:
		return []Reply{prompt(snap)}, nil
	}
	return c.after(snap, err)
}

func (c *Conversation) handleCallback(ctx context.Context, id string, snap types.Snapshot, in Input) ([]Reply, error) { //nolint:gocritic // hugeParam: snapshots travel by value
	var err error
	switch in.Callback {
	case CallbackYes:
		snap, err = c.sessions.Accept(ctx, id)
	case CallbackNo:
		var dec types.Decline
		dec, err = c.sessions.Decline(ctx, id, in.CallbackID)
		if err == nil {
			snap = dec.State
		}
	case CallbackConfirm:
		snap, err = c.sessions.ConfirmAffection(ctx, id)
	case CallbackReveal:
		snap, err = c.sessions.Reveal(ctx, id)
		if err == nil {
			return c.ending(ctx, id, snap)
		}
	default:
		return []Reply{prompt(snap)}, nil
	}
	return c.after(snap, err)
}

// after renders the outcome of an operation. Rejections and stale buttons
// are answered in chat; anything else is returned.
func (c *Conversation) after(snap types.Snapshot, err error) ([]Reply, error) { //nolint:gocritic // hugeParam: snapshots travel by value
	var verr *quiz.ValidationError
	switch {
	case err == nil:
		return []Reply{prompt(snap)}, nil
	case errors.As(err, &verr):
		return []Reply{{Text: verr.Message}, prompt(snap)}, nil
	case errors.Is(err, quiz.ErrWrongStep) && snap.SessionID != "":
		return []Reply{prompt(snap)}, nil
	default:
		return nil, err
	}
}

func (c *Conversation) ending(ctx context.Context, id string, snap types.Snapshot) ([]Reply, error) { //nolint:gocritic // hugeParam: snapshots travel by value
	replies := []Reply{{Text: "Happy 10th Month Sayang 🤍\nTerima kasih sudah menjadi bagian terbaik dalam hidupku 💕"}}
	if snap.Confetti {
		replies = append(replies, Reply{Text: "❤ 💖 💕 💘 ✨ 💝 💞"})
	}
	share, err := c.sessions.Share(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("share: %w", err)
	}
	replies = append(replies, Reply{Text: share.Text + "\n\n" + CommandRestart + " untuk mulai lagi"})
	return replies, nil
}

// prompt renders the question of the current step.
func prompt(snap types.Snapshot) Reply { //nolint:gocritic // hugeParam: snapshots travel by value
	switch quiz.Step(snap.Step) {
	case quiz.StepNameEntry:
		return Reply{Text: "Sp nmamu?\nmsukan dngn bnar"}
	case quiz.StepPartnerEntry:
		return Reply{Text: snap.Name + " pacalna siapa nii?\nsebutkan nama si tamvan n pemberani itu ✨"}
	case quiz.StepConfirmation:
		yes := Button{Text: "YA 💖", Data: CallbackYes}
		no := Button{Text: "TIDAK 🙈", Data: CallbackNo}
		row := []Button{yes, no}
		if snap.DodgeCount%2 == 1 {
			row = []Button{no, yes}
		}
		text := snap.Name + " sayang " + snap.Partner + " gak?"
		if snap.DodgeCount > 0 {
			text += "\nHehe… tombol \"Tidak\" suka malu-malu kucing 😆"
		}
		return Reply{Text: text, Buttons: [][]Button{row}}
	case quiz.StepScoreSelection:
		return Reply{
			Text: fmt.Sprintf("Seberapa sayang %s sama %s?\n%d%% %s\nKetik angka 1-100 untuk mengubah.",
				snap.Name, snap.Partner, snap.AffectionScore, snap.ScoreMessage),
			Buttons: [][]Button{{{Text: "Submit ✨", Data: CallbackConfirm}}},
		}
	case quiz.StepReveal:
		if snap.Revealed {
			return Reply{Text: "Happy 10th Month Sayang 🤍\n" + CommandRestart + " untuk mulai lagi"}
		}
		return Reply{
			Text:    "aku lebih sayang kamu disetiap helaan napasku\nKamu adalah segalanya untukku... ✨",
			Buttons: [][]Button{{{Text: "Klik ini sayang ❤", Data: CallbackReveal}}},
		}
	default:
		return Reply{Text: CommandStart}
	}
}
