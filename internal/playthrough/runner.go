// Package playthrough drives complete quiz sessions through the HTTP API.
package playthrough

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/lovequiz/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Run checks the service and plays cfg.Sessions sessions, cfg.Workers at a
// time. It fails on the first session that does not end as expected.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.Sessions <= 0 {
		cfg.Sessions = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	log := logger.Get().Named("playthrough")
	stats := &Stats{Sessions: cfg.Sessions, StartTime: time.Now()}

	log.Info(ctx, "starting quiz play-through",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("name", cfg.Name),
		logger.String("partner", cfg.Partner),
		logger.Int("score", cfg.Score),
		logger.Int("declines", cfg.Declines),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for i := 0; i < cfg.Sessions; i++ {
		g.Go(func() error {
			res, err := play(gctx, client, cfg, log)
			mu.Lock()
			defer mu.Unlock()
			stats.Declines += res.declines
			stats.Duplicates += res.duplicates
			if err != nil {
				stats.Failed++
				return err
			}
			stats.Completed++
			return nil
		})
	}
	err := g.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	log.Info(ctx, "play-through finished",
		logger.Int("completed", stats.Completed),
		logger.Int("failed", stats.Failed),
		logger.Int("declines", stats.Declines),
		logger.Int("duplicates", stats.Duplicates),
		logger.Duration("duration", stats.Duration),
	)
	return stats, err
}

type result struct {
	declines   int
	duplicates int
}

// play runs one session from creation to the shared summary.
func play(ctx context.Context, c *HTTPClient, cfg *Config, log logger.Logger) (res result, err error) {
	var snap Snapshot

	trace := func(op string) {
		if cfg.Verbose {
			log.Info(ctx, "snapshot",
				logger.String("op", op),
				logger.String("session", snap.SessionID),
				logger.String("step", snap.StepName),
				logger.Int("progress", snap.Progress),
				logger.Int("dodges", snap.DodgeCount),
				logger.Int("score", snap.AffectionScore),
			)
		}
	}

	if err := c.do(ctx, http.MethodPost, "/api/session", "", nil, &snap); err != nil {
		return res, err
	}
	sid := snap.SessionID
	trace("create")

	// Every created session is ended, also when a step fails. The group
	// context may be canceled by then.
	defer func() {
		endErr := c.do(context.WithoutCancel(ctx), http.MethodDelete, "/api/session", sid, nil, nil)
		if endErr != nil && err == nil {
			err = fmt.Errorf("end session %s: %w", sid, endErr)
		}
	}()

	steps := []struct {
		op     string
		method string
		path   string
		body   any
	}{
		{"name", http.MethodPost, "/api/session/name", map[string]string{"input": cfg.Name}},
		{"partner", http.MethodPost, "/api/session/partner", map[string]string{"input": cfg.Partner}},
	}
	for _, st := range steps {
		if err := c.do(ctx, st.method, st.path, sid, st.body, &snap); err != nil {
			return res, err
		}
		trace(st.op)
	}

	for i := 0; i < cfg.Declines; i++ {
		gesture := map[string]string{"gesture_id": uuid.NewString()}
		var dec Decline
		if err := c.do(ctx, http.MethodPost, "/api/session/decline", sid, gesture, &dec); err != nil {
			return res, err
		}
		res.declines++
		snap = dec.State
		trace("decline")

		// The same gesture delivered twice must be applied once.
		if err := c.do(ctx, http.MethodPost, "/api/session/decline", sid, gesture, &dec); err != nil {
			return res, err
		}
		if dec.Duplicate {
			res.duplicates++
		}
	}

	final := []struct {
		op     string
		method string
		path   string
		body   any
	}{
		{"accept", http.MethodPost, "/api/session/accept", nil},
		{"affection", http.MethodPut, "/api/session/affection", map[string]int{"value": cfg.Score}},
		{"confirm", http.MethodPost, "/api/session/confirm", nil},
		{"reveal", http.MethodPost, "/api/session/reveal", nil},
	}
	for _, st := range final {
		if err := c.do(ctx, st.method, st.path, sid, st.body, &snap); err != nil {
			return res, err
		}
		trace(st.op)
	}

	if err := verify(&snap, cfg); err != nil {
		return res, fmt.Errorf("session %s: %w", sid, err)
	}

	var share Share
	if err := c.do(ctx, http.MethodGet, "/api/session/share", sid, nil, &share); err != nil {
		return res, err
	}
	log.Info(ctx, "session completed", logger.String("session", sid), logger.String("share", share.Text))
	return res, nil
}

// verify checks the final snapshot against what was played.
func verify(snap *Snapshot, cfg *Config) error {
	want := cfg.Score
	switch {
	case want < minScore:
		want = minScore
	case want > maxScore:
		want = maxScore
	}

	switch {
	case snap.Step != stepReveal:
		return fmt.Errorf("ended on step %d, want %d", snap.Step, stepReveal)
	case !snap.Revealed:
		return errors.New("ending not revealed")
	case snap.DodgeCount != cfg.Declines:
		return fmt.Errorf("dodge count %d, want %d", snap.DodgeCount, cfg.Declines)
	case snap.AffectionScore != want:
		return fmt.Errorf("affection score %d, want %d", snap.AffectionScore, want)
	}
	return nil
}
