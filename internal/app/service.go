// Package service hosts quiz sessions for the HTTP and Telegram front-ends.
//
// Each session owns one quiz controller, an optional soundtrack and a
// celebration deadline. Operations on a session are serialized by the
// session lock; different sessions proceed in parallel. Every operation
// emits an event to the queue, which is dropped when the queue is full.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	eventqueue "github.com/okian/lovequiz/internal/adapters/mq/queue"
	workerpool "github.com/okian/lovequiz/internal/adapters/mq/worker"
	"github.com/okian/lovequiz/internal/adapters/repository"
	"github.com/okian/lovequiz/internal/domain/dedupe"
	"github.com/okian/lovequiz/internal/domain/media"
	"github.com/okian/lovequiz/internal/domain/model"
	"github.com/okian/lovequiz/internal/domain/quiz"
	"github.com/okian/lovequiz/internal/domain/types"
	"github.com/okian/lovequiz/pkg/logger"
)

const (
	defaultWorkerCount     = 2
	defaultQueueSize       = 4096
	defaultDedupeSize      = 50_000
	defaultSessionTTL      = 30 * time.Minute
	defaultJanitorInterval = time.Minute
	defaultMaxSessions     = 10_000
	defaultCelebration     = 6 * time.Second
)

// Service implements the session operations used by the front-ends.
type Service struct {
	mu sync.RWMutex

	sessions   *repository.MemoryStore[*session]
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool

	workerCount     int
	queueSize       int
	dedupeSize      int
	sessionTTL      time.Duration
	janitorInterval time.Duration
	maxSessions     int
	celebration     time.Duration
	quizOpts        []quiz.Option
	scoreMessages   quiz.ScoreMessages
	track           media.Track
	newPlayer       func() media.Player
	extraSinks      []workerpool.Sink
	now             func() time.Time

	started bool

	logger logger.Logger
}

// New constructs a Service. Call Start before use.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     defaultWorkerCount,
		queueSize:       defaultQueueSize,
		dedupeSize:      defaultDedupeSize,
		sessionTTL:      defaultSessionTTL,
		janitorInterval: defaultJanitorInterval,
		maxSessions:     defaultMaxSessions,
		celebration:     defaultCelebration,
		scoreMessages:   quiz.DefaultScoreMessages(),
		track:           media.DefaultTrack(),
		newPlayer:       func() media.Player { return media.NewClientPlayer() },
		now:             time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the session store, the event queue and the worker pool.
// The janitor stops with ctx; the workers run until Stop drains them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.eventQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))

	sinks := append([]workerpool.Sink{workerpool.NewMetricsSink(), workerpool.NewJournalSink(nil)}, s.extraSinks...)
	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, sinks...)
	s.workerPool.Start(context.WithoutCancel(ctx))

	s.sessions = repository.NewMemoryStore[*session](
		repository.WithTTL[*session](s.sessionTTL),
		repository.WithSweepInterval[*session](s.janitorInterval),
		repository.WithMaxEntries[*session](s.maxSessions),
		repository.WithClock[*session](s.now),
		repository.WithOnEvict[*session](s.evicted),
	)
	s.sessions.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "quiz service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxSessions", s.maxSessions),
		logger.Duration("sessionTTL", s.sessionTTL),
	)

	return nil
}

// Stop releases every live session and drains the event queue within ctx.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false

	s.logger.Info(ctx, "stopping quiz service...")

	for _, ss := range s.sessions.Close() {
		ss.mu.Lock()
		s.releaseMusic(ctx, ss)
		ss.mu.Unlock()
	}

	if err := s.workerPool.Shutdown(ctx); err != nil {
		return fmt.Errorf("stop workers: %w", err)
	}

	s.logger.Info(ctx, "quiz service stopped")
	return nil
}

// Sweep evicts idle sessions now and reports how many were removed.
func (s *Service) Sweep(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return 0
	}
	return s.sessions.Sweep(ctx)
}

func (s *Service) evicted(ctx context.Context, id string, ss *session) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	s.releaseMusic(ctx, ss)
	st := ss.ctrl.Snapshot()
	s.logger.Debug(ctx, "session expired", logger.String("session", id))
	s.emit(ctx, model.Event{
		SessionID:  id,
		Kind:       model.KindExpired,
		Source:     "janitor",
		From:       st.Step,
		To:         st.Step,
		DodgeCount: st.DodgeCount,
	})
}

// Create starts a session with a fresh random id.
func (s *Service) Create(ctx context.Context) (types.Snapshot, error) {
	return s.create(ctx, uuid.NewString())
}

// Ensure returns the session id, creating it when it does not exist.
// Front-ends with their own stable identity (a chat id) use it.
func (s *Service) Ensure(ctx context.Context, id string) (types.Snapshot, error) {
	snap, err := s.Snapshot(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		snap, err = s.create(ctx, id)
		if errors.Is(err, repository.ErrExists) {
			return s.Snapshot(ctx, id)
		}
	}
	return snap, err
}

// End tears a session down before its TTL: the soundtrack is released and
// the id becomes unknown.
func (s *Service) End(ctx context.Context, id string) error {
	store, err := s.store()
	if err != nil {
		return err
	}
	ss, ok := store.Delete(ctx, id)
	if !ok {
		return ErrSessionNotFound
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	s.releaseMusic(ctx, ss)
	st := ss.ctrl.Snapshot()
	s.emit(ctx, model.Event{
		SessionID:  id,
		Kind:       model.KindEnded,
		From:       st.Step,
		To:         st.Step,
		DodgeCount: st.DodgeCount,
		Score:      st.AffectionScore,
	})
	return nil
}

func (s *Service) create(ctx context.Context, id string) (types.Snapshot, error) {
	store, err := s.store()
	if err != nil {
		return types.Snapshot{}, err
	}

	ss := &session{id: id, ctrl: quiz.NewController(s.quizOpts...)}
	if err := store.Put(ctx, id, ss); err != nil {
		if errors.Is(err, repository.ErrFull) {
			s.logger.Warn(ctx, "session capacity reached", logger.Int("maxSessions", s.maxSessions))
			return types.Snapshot{}, ErrTooManySessions
		}
		return types.Snapshot{}, fmt.Errorf("create session: %w", err)
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()
	s.emit(ctx, model.Event{
		SessionID: id,
		Kind:      model.KindCreated,
		From:      quiz.StepNameEntry,
		To:        quiz.StepNameEntry,
	})
	return s.snapshot(ss), nil
}

func (s *Service) store() (*repository.MemoryStore[*session], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.sessions, nil
}

func (s *Service) lookup(ctx context.Context, id string) (*session, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	ss, err := store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return ss, err
}

// emit hands e to the workers. A full or closed queue drops the event.
func (s *Service) emit(ctx context.Context, e model.Event) { //nolint:gocritic // hugeParam: events travel by value
	if e.Source == "" {
		e.Source = SourceFrom(ctx)
	}
	if e.TS.IsZero() {
		e.TS = s.now()
	}
	if err := s.eventQueue.Enqueue(ctx, e); err != nil {
		s.logger.Debug(ctx, "session event dropped",
			logger.String("session", e.SessionID),
			logger.String("kind", string(e.Kind)),
			logger.Error(err),
		)
	}
}

// ScoreMessage returns the band text for score without touching a session.
func (s *Service) ScoreMessage(score int) types.ScoreMessage {
	clamped := quiz.ClampScore(score)
	return types.ScoreMessage{
		Score:   clamped,
		Band:    quiz.BandOf(clamped).String(),
		Message: s.scoreMessages.For(clamped),
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"maxSessions": s.maxSessions,
		"sessionTTL":  s.sessionTTL.String(),
	}

	if s.started {
		stats["sessions"] = s.sessions.Count(ctx)
		stats["queueLength"] = s.eventQueue.Len(ctx)
		stats["gestures"] = s.deduper.Size()
		s.workerPool.UpdateMetrics()
	}

	return stats
}

type sourceKey struct{}

// WithSource tags ctx with the front-end issuing session operations.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// SourceFrom returns the front-end tag of ctx, "http" by default.
func SourceFrom(ctx context.Context) string {
	if v, ok := ctx.Value(sourceKey{}).(string); ok && v != "" {
		return v
	}
	return "http"
}
