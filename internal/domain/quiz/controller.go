// Package quiz implements the love quiz step machine: name and partner
// validation, the evasive decline control, the affection score and the reveal.
//
// A Controller is owned by a single session and is not safe for concurrent
// use; callers serialize access.
package quiz

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// Step is a wizard stage.
type Step int

const (
	StepNameEntry Step = iota + 1
	StepPartnerEntry
	StepConfirmation
	StepScoreSelection
	StepReveal
)

// totalSteps is the denominator used for the progress bar; the ending screen
// counts as a sixth stage.
const totalSteps = 6

func (s Step) String() string {
	switch s {
	case StepNameEntry:
		return "name_entry"
	case StepPartnerEntry:
		return "partner_entry"
	case StepConfirmation:
		return "confirmation"
	case StepScoreSelection:
		return "score_selection"
	case StepReveal:
		return "reveal"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// Offset is a pixel displacement.
type Offset struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// State is the full quiz state. It is a plain value; Snapshot returns a copy.
type State struct {
	Step           Step
	Name           string
	Partner        string
	ErrorMessage   string
	AffectionScore int
	DodgeCount     int
	DecoyOffset    Offset
	Revealed       bool
}

// InitialState returns the state of a fresh or restarted quiz.
func InitialState() State {
	return State{
		Step:           StepNameEntry,
		AffectionScore: DefaultScore,
	}
}

// Progress returns the progress bar percentage for step.
func Progress(step Step) int {
	return int(math.Round(float64(step+1) / totalSteps * 100))
}

// Controller owns one QuizState and the transitions over it.
type Controller struct {
	names         *AllowList
	partners      *AllowList
	maxX          int
	maxY          int
	messages      Messages
	scoreMessages ScoreMessages
	rng           *rand.Rand

	state State
}

// NewController creates a controller in the initial state.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		names:         NewAllowList(DefaultNames()...),
		partners:      NewAllowList(DefaultPartners()...),
		maxX:          defaultDecoyMaxX,
		maxY:          defaultDecoyMaxY,
		messages:      DefaultMessages(),
		scoreMessages: DefaultScoreMessages(),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // cosmetic jitter
		state:         InitialState(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	return c.state
}

// Step returns the current step.
func (c *Controller) Step() Step {
	return c.state.Step
}

// SubmitName validates input against the name allow-list and advances to
// the partner step on a match.
func (c *Controller) SubmitName(input string) error {
	if c.state.Step != StepNameEntry {
		return &StepError{Op: "submit name", Want: StepNameEntry, Got: c.state.Step}
	}
	name, err := c.validate("name", input, c.names, c.messages.NameNotRecognized)
	if err != nil {
		return err
	}
	c.state.Name = name
	c.state.ErrorMessage = ""
	c.state.Step = StepPartnerEntry
	return nil
}

// SubmitPartner validates input against the partner allow-list and advances
// to the confirmation step on a match.
func (c *Controller) SubmitPartner(input string) error {
	if c.state.Step != StepPartnerEntry {
		return &StepError{Op: "submit partner", Want: StepPartnerEntry, Got: c.state.Step}
	}
	partner, err := c.validate("partner", input, c.partners, c.messages.PartnerNotRecognized)
	if err != nil {
		return err
	}
	c.state.Partner = partner
	c.state.ErrorMessage = ""
	c.state.Step = StepConfirmation
	return nil
}

func (c *Controller) validate(field, input string, list *AllowList, notRecognized string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		c.state.ErrorMessage = c.messages.EmptyInput
		return "", &ValidationError{Kind: ErrEmptyInput, Field: field, Message: c.messages.EmptyInput}
	}
	if !list.Contains(trimmed) {
		c.state.ErrorMessage = notRecognized
		return "", &ValidationError{Kind: ErrNotRecognized, Field: field, Message: notRecognized}
	}
	return trimmed, nil
}

// InputChanged clears any pending validation message.
func (c *Controller) InputChanged() {
	c.state.ErrorMessage = ""
}

// RecordDecline moves the decline control to a new random offset and counts
// the evasion. It never changes the step.
func (c *Controller) RecordDecline() Offset {
	c.state.DecoyOffset = Offset{
		X: c.jitter(c.maxX),
		Y: c.jitter(c.maxY),
	}
	c.state.DodgeCount++
	return c.state.DecoyOffset
}

// jitter returns a uniform integer in [-limit, limit].
func (c *Controller) jitter(limit int) int {
	if limit <= 0 {
		return 0
	}
	return c.rng.Intn(2*limit+1) - limit
}

// Accept answers the confirmation question and moves to score selection.
func (c *Controller) Accept() error {
	if c.state.Step != StepConfirmation {
		return &StepError{Op: "accept", Want: StepConfirmation, Got: c.state.Step}
	}
	c.state.Step = StepScoreSelection
	return nil
}

// SetAffectionScore stores v clamped into [1,100] and returns the stored value.
func (c *Controller) SetAffectionScore(v int) (int, error) {
	if c.state.Step != StepScoreSelection {
		return c.state.AffectionScore, &StepError{Op: "set affection score", Want: StepScoreSelection, Got: c.state.Step}
	}
	c.state.AffectionScore = ClampScore(v)
	return c.state.AffectionScore, nil
}

// ConfirmAffection accepts the current score and moves to the reveal step.
func (c *Controller) ConfirmAffection() error {
	if c.state.Step != StepScoreSelection {
		return &StepError{Op: "confirm affection", Want: StepScoreSelection, Got: c.state.Step}
	}
	c.state.Step = StepReveal
	return nil
}

// Reveal opens the ending screen. Repeated calls are no-ops.
func (c *Controller) Reveal() error {
	if c.state.Step != StepReveal {
		return &StepError{Op: "reveal", Want: StepReveal, Got: c.state.Step}
	}
	c.state.Revealed = true
	return nil
}

// ScoreMessage maps score to this controller's band text.
func (c *Controller) ScoreMessage(score int) string {
	return c.scoreMessages.For(score)
}

// ShareText builds the text copied by the share action.
func (c *Controller) ShareText() (string, error) {
	if c.state.Step != StepReveal {
		return "", &StepError{Op: "share", Want: StepReveal, Got: c.state.Step}
	}
	return fmt.Sprintf("%s 💞 %s: %d/100. %s",
		c.state.Name, c.state.Partner, c.state.AffectionScore, c.ScoreMessage(c.state.AffectionScore)), nil
}

// Restart resets every field to its initial value.
func (c *Controller) Restart() {
	c.state = InitialState()
}
