// Package media owns the background soundtrack of a quiz session.
//
// A Soundtrack is acquired when a session reaches the partner step and
// released on restart or teardown. Playback goes through a Player; player
// failures are logged and swallowed because music never gates the quiz.
package media

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/lovequiz/pkg/logger"
)

// Track describes the audio to play.
type Track struct {
	URL    string  `koanf:"url"`
	Loop   bool    `koanf:"loop"`
	Volume float64 `koanf:"volume"`
}

// DefaultTrack returns the built-in soundtrack.
func DefaultTrack() Track {
	return Track{
		URL:    "https://files.catbox.moe/l3gi5l.m4a",
		Loop:   true,
		Volume: 0.3,
	}
}

// Player is the playback backend.
type Player interface {
	Play(ctx context.Context, t Track) error
	Pause(ctx context.Context) error
	Close() error
}

// View is the serializable playback state.
type View struct {
	URL     string  `json:"url"`
	Loop    bool    `json:"loop"`
	Volume  float64 `json:"volume"`
	Playing bool    `json:"playing"`
	Muted   bool    `json:"muted"`
	Failed  bool    `json:"failed"`
}

// Soundtrack is an owned, releasable audio handle.
type Soundtrack struct {
	mu       sync.Mutex
	track    Track
	player   Player
	playing  bool
	muted    bool
	failed   bool
	released bool
	logger   logger.Logger
}

// Acquire creates a soundtrack for t backed by p and starts playback.
// A failing first Play is recorded and swallowed.
func Acquire(ctx context.Context, t Track, p Player, log logger.Logger) *Soundtrack {
	s := &Soundtrack{
		track:  t,
		player: p,
		logger: log,
	}
	s.Play(ctx)
	return s
}

// Play starts or resumes playback unless muted.
func (s *Soundtrack) Play(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released || s.muted {
		return
	}
	if err := s.player.Play(ctx, s.track); err != nil {
		s.swallow(ctx, "play", err)
		return
	}
	s.playing = true
	s.failed = false
}

// Pause stops playback.
func (s *Soundtrack) Pause(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released || !s.playing {
		return
	}
	if err := s.player.Pause(ctx); err != nil {
		s.swallow(ctx, "pause", err)
	}
	s.playing = false
}

// Toggle flips between muted and playing and reports the new playing state.
func (s *Soundtrack) Toggle(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return false
	}
	s.muted = !s.muted
	if s.muted {
		if s.playing {
			if err := s.player.Pause(ctx); err != nil {
				s.swallow(ctx, "pause", err)
			}
			s.playing = false
		}
		return false
	}
	if err := s.player.Play(ctx, s.track); err != nil {
		s.swallow(ctx, "play", err)
		return false
	}
	s.playing = true
	s.failed = false
	return true
}

// ReportFailure records a playback failure observed by the client (blocked
// autoplay, network error). It never returns an error.
func (s *Soundtrack) ReportFailure(ctx context.Context, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.swallow(ctx, "client", errors.New(reason))
	s.playing = false
}

// swallow must be called with s.mu held.
func (s *Soundtrack) swallow(ctx context.Context, op string, err error) {
	s.failed = true
	if s.logger != nil {
		s.logger.Debug(ctx, "soundtrack playback failed; ignoring",
			logger.String("op", op),
			logger.String("url", s.track.URL),
			logger.Error(err),
		)
	}
}

// View returns the current playback state.
func (s *Soundtrack) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		URL:     s.track.URL,
		Loop:    s.track.Loop,
		Volume:  s.track.Volume,
		Playing: s.playing,
		Muted:   s.muted,
		Failed:  s.failed,
	}
}

// Release stops playback and closes the player. It is safe to call twice.
func (s *Soundtrack) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true
	s.playing = false
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("close player: %w", err)
	}
	return nil
}

// Released reports whether Release has been called.
func (s *Soundtrack) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}
