package service

import (
	"time"

	workerpool "github.com/okian/lovequiz/internal/adapters/mq/worker"
	"github.com/okian/lovequiz/internal/domain/media"
	"github.com/okian/lovequiz/internal/domain/quiz"
	"github.com/okian/lovequiz/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of event sink workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the decline gesture cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSessionTTL sets how long an idle session lives.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithJanitorInterval sets how often idle sessions are swept.
func WithJanitorInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.janitorInterval = interval
		}
	}
}

// WithMaxSessions caps live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithQuizOptions sets the options every new controller is built with.
func WithQuizOptions(opts ...quiz.Option) Option {
	return func(s *Service) {
		s.quizOpts = opts
	}
}

// WithScoreMessages sets the texts used for score message lookups.
// Blank fields keep the defaults, as in the quiz controller.
func WithScoreMessages(m quiz.ScoreMessages) Option {
	return func(s *Service) {
		s.scoreMessages = m.WithDefaults()
	}
}

// WithTrack sets the soundtrack acquired at the partner step.
func WithTrack(t media.Track) Option {
	return func(s *Service) {
		if t.URL != "" {
			s.track = t
		}
	}
}

// WithPlayerFactory sets how each session's Player is created.
func WithPlayerFactory(fn func() media.Player) Option {
	return func(s *Service) {
		if fn != nil {
			s.newPlayer = fn
		}
	}
}

// WithCelebrationDuration sets how long confetti runs after the reveal.
func WithCelebrationDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.celebration = d
		}
	}
}

// WithSinks adds event sinks next to the default metrics and journal sinks.
func WithSinks(sinks ...workerpool.Sink) Option {
	return func(s *Service) {
		s.extraSinks = append(s.extraSinks, sinks...)
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}
