package quiz

import "math/rand"

// Default decline-control displacement bounds in pixels.
const (
	defaultDecoyMaxX = 80
	defaultDecoyMaxY = 60
)

// Messages holds the validation texts shown to the user.
type Messages struct {
	EmptyInput           string `koanf:"empty_input"`
	NameNotRecognized    string `koanf:"name_not_recognized"`
	PartnerNotRecognized string `koanf:"partner_not_recognized"`
}

// DefaultMessages returns the built-in validation texts.
func DefaultMessages() Messages {
	return Messages{
		EmptyInput:           "JWB!!",
		NameNotRecognized:    "Trverifkasi BKAN LUKH ORGNA!!!",
		PartnerNotRecognized: "SAPA ITU?!! ITU BUKAN PACAL KM😤",
	}
}

func (m Messages) withDefaults() Messages {
	d := DefaultMessages()
	if m.EmptyInput == "" {
		m.EmptyInput = d.EmptyInput
	}
	if m.NameNotRecognized == "" {
		m.NameNotRecognized = d.NameNotRecognized
	}
	if m.PartnerNotRecognized == "" {
		m.PartnerNotRecognized = d.PartnerNotRecognized
	}
	return m
}

// Option applies a configuration option to the Controller.
type Option func(*Controller)

// WithNames sets the accepted names.
func WithNames(names *AllowList) Option {
	return func(c *Controller) {
		if names != nil {
			c.names = names
		}
	}
}

// WithPartners sets the accepted partner names.
func WithPartners(partners *AllowList) Option {
	return func(c *Controller) {
		if partners != nil {
			c.partners = partners
		}
	}
}

// WithDecoyBounds sets the maximum absolute displacement of the decline control.
func WithDecoyBounds(maxX, maxY int) Option {
	return func(c *Controller) {
		if maxX >= 0 && maxY >= 0 {
			c.maxX = maxX
			c.maxY = maxY
		}
	}
}

// WithRandSource sets the source used for decoy offsets.
func WithRandSource(src rand.Source) Option {
	return func(c *Controller) {
		if src != nil {
			c.rng = rand.New(src) //nolint:gosec // cosmetic jitter, not security sensitive
		}
	}
}

// WithMessages overrides validation texts. Blank fields keep the defaults.
func WithMessages(m Messages) Option {
	return func(c *Controller) {
		c.messages = m.withDefaults()
	}
}

// WithScoreMessages overrides band texts. Blank fields keep the defaults.
func WithScoreMessages(m ScoreMessages) Option {
	return func(c *Controller) {
		c.scoreMessages = m.WithDefaults()
	}
}
