package worker

import (
	"context"

	"github.com/okian/lovequiz/internal/domain/model"
	"github.com/okian/lovequiz/internal/domain/quiz"
	"github.com/okian/lovequiz/pkg/logger"
	"github.com/okian/lovequiz/pkg/metrics"
)

// DetailDuplicate marks a decline event whose gesture was already applied.
const DetailDuplicate = "duplicate"

// MetricsSink turns session events into Prometheus series.
type MetricsSink struct{}

// NewMetricsSink creates a MetricsSink.
func NewMetricsSink() *MetricsSink { return &MetricsSink{} }

func (*MetricsSink) Name() string { return "metrics" }

func (*MetricsSink) Handle(_ context.Context, e Event) error { //nolint:gocritic // hugeParam: events travel by value
	switch e.Kind {
	case model.KindCreated:
		metrics.RecordSessionCreated()
	case model.KindNameAccepted, model.KindPartnerAccepted, model.KindAccepted:
		metrics.RecordTransition(e.From.String(), e.To.String())
	case model.KindScoreConfirmed:
		metrics.RecordTransition(e.From.String(), e.To.String())
		metrics.RecordAffectionScore(e.Score, quiz.BandOf(e.Score).String())
	case model.KindRejected:
		field := "partner"
		if e.From == quiz.StepNameEntry {
			field = "name"
		}
		metrics.RecordValidationFailure(field, e.Detail)
	case model.KindWrongStep:
		metrics.RecordWrongStep(e.Detail)
	case model.KindDeclined:
		if e.Detail == DetailDuplicate {
			metrics.RecordDeclineDuplicate()
			return nil
		}
		metrics.RecordDecline()
	case model.KindRevealed:
		metrics.RecordReveal()
	case model.KindRestarted:
		metrics.RecordRestart()
	case model.KindMusicToggled:
		metrics.RecordMusicToggle()
	case model.KindMusicFailed:
		metrics.RecordMediaFailure(e.Detail)
	case model.KindCelebrationStart:
		metrics.RecordCelebration()
	case model.KindExpired:
		metrics.RecordSessionsEvicted(1)
	case model.KindEnded:
		metrics.RecordSessionEnded()
	}
	return nil
}

// JournalSink writes one structured log line per event.
type JournalSink struct {
	logger logger.Logger
}

// NewJournalSink creates a JournalSink. A nil log uses the "journal" logger.
func NewJournalSink(log logger.Logger) *JournalSink {
	if log == nil {
		log = logger.Get().Named("journal")
	}
	return &JournalSink{logger: log}
}

func (*JournalSink) Name() string { return "journal" }

func (j *JournalSink) Handle(ctx context.Context, e Event) error { //nolint:gocritic // hugeParam: events travel by value
	fields := []logger.Field{
		logger.String("session", e.SessionID),
		logger.String("kind", string(e.Kind)),
		logger.String("frontend", e.Source),
		logger.String("from", e.From.String()),
		logger.String("to", e.To.String()),
		logger.Int("dodges", e.DodgeCount),
	}
	if e.Kind == model.KindScoreSet || e.Kind == model.KindScoreConfirmed {
		fields = append(fields, logger.Int("score", e.Score))
	}
	if e.Detail != "" {
		fields = append(fields, logger.String("detail", e.Detail))
	}
	j.logger.Info(ctx, "session event", fields...)
	return nil
}
