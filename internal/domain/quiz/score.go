package quiz

// Affection score bounds.
const (
	MinScore     = 1
	MaxScore     = 100
	DefaultScore = 50
)

// Band boundaries. Bands are half-open: [1,30) [30,60) [60,80) [80,100].
const (
	mediumFloor  = 30
	highFloor    = 60
	maximumFloor = 80
)

// Band is the categorical reading of an affection score.
type Band int

const (
	BandLow Band = iota
	BandMedium
	BandHigh
	BandMaximum
)

func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandMedium:
		return "medium"
	case BandHigh:
		return "high"
	case BandMaximum:
		return "maximum"
	default:
		return "unknown"
	}
}

// ClampScore forces v into [MinScore, MaxScore].
func ClampScore(v int) int {
	switch {
	case v < MinScore:
		return MinScore
	case v > MaxScore:
		return MaxScore
	default:
		return v
	}
}

// BandOf maps a score to its band. Scores outside [1,100] are clamped first,
// so the mapping is total.
func BandOf(score int) Band {
	score = ClampScore(score)
	switch {
	case score < mediumFloor:
		return BandLow
	case score < highFloor:
		return BandMedium
	case score < maximumFloor:
		return BandHigh
	default:
		return BandMaximum
	}
}

// ScoreMessages holds the text shown for each band.
type ScoreMessages struct {
	Low     string `koanf:"low"`
	Medium  string `koanf:"medium"`
	High    string `koanf:"high"`
	Maximum string `koanf:"maximum"`
}

// DefaultScoreMessages returns the built-in band texts.
func DefaultScoreMessages() ScoreMessages {
	return ScoreMessages{
		Low:     "Hmm... bisa lebih sayang lagi 🤔",
		Medium:  "Lumayan sayang nih 😊",
		High:    "Cinta yang mendalam! 💕",
		Maximum: "Cinta sejati! 💖✨",
	}
}

// For returns the message for score using m.
func (m ScoreMessages) For(score int) string {
	switch BandOf(score) {
	case BandLow:
		return m.Low
	case BandMedium:
		return m.Medium
	case BandHigh:
		return m.High
	default:
		return m.Maximum
	}
}

// WithDefaults fills blank entries from the built-in texts.
func (m ScoreMessages) WithDefaults() ScoreMessages {
	d := DefaultScoreMessages()
	if m.Low == "" {
		m.Low = d.Low
	}
	if m.Medium == "" {
		m.Medium = d.Medium
	}
	if m.High == "" {
		m.High = d.High
	}
	if m.Maximum == "" {
		m.Maximum = d.Maximum
	}
	return m
}

// ScoreMessage maps score to the built-in band message.
func ScoreMessage(score int) string {
	return DefaultScoreMessages().For(score)
}
