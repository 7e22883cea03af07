package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then collectors are registered under the quiz namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.sessionsCreated.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "lovequiz_session_created_total")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("quiz"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.declines.Inc()

			Convey("Then names and labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() != "test_quiz_declines_total" {
						continue
					}
					found = true
					So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithConstLabels(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "lovequiz")
				So(manager.subsystem, ShouldEqual, "session")
				So(manager.histogramBuckets, ShouldNotBeEmpty)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording session lifecycle", func() {
			before := testutil.ToFloat64(globalManager.sessionsCreated)
			RecordSessionCreated()
			RecordSessionCreated()
			UpdateSessionsActive(7)
			RecordSessionsEvicted(3)
			RecordSessionRejected()
			RecordRestart()
			ended := testutil.ToFloat64(globalManager.sessionsEnded)
			RecordSessionEnded()

			So(testutil.ToFloat64(globalManager.sessionsCreated), ShouldEqual, before+2)
			So(testutil.ToFloat64(globalManager.sessionsEnded), ShouldEqual, ended+1)
			So(testutil.ToFloat64(globalManager.sessionsActive), ShouldEqual, 7)
		})

		Convey("When recording quiz progression", func() {
			transitions := globalManager.transitions.WithLabelValues("name_entry", "partner_entry")
			before := testutil.ToFloat64(transitions)

			RecordTransition("name_entry", "partner_entry")
			RecordValidationFailure("name", "not_recognized")
			RecordWrongStep("accept")
			RecordDecline()
			RecordDeclineDuplicate()
			RecordAffectionScore(88, "maximum")
			RecordReveal()
			RecordCelebration()

			So(testutil.ToFloat64(transitions), ShouldEqual, before+1)
			So(testutil.ToFloat64(globalManager.scoreBands.WithLabelValues("maximum")), ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("When recording soundtrack and transport metrics", func() {
			So(func() {
				RecordMediaFailure("play")
				RecordMusicToggle()
				RecordHTTPRequest("/api/session", "GET", "200")
				RecordHTTPRequestDuration("/api/session", "GET", "200", 1.5)
				RecordTelegramUpdate("message")
			}, ShouldNotPanic)
		})

		Convey("When recording queue and worker metrics", func() {
			UpdateQueueSize(4)
			UpdateQueueCapacity(16)
			UpdateQueueUtilization(0.25)
			RecordQueueEnqueue()
			RecordQueueDequeue()
			RecordQueueDropped()
			RecordQueueProcessingLatency(2)
			UpdateWorkerActiveCount(1)
			UpdateWorkerIdleCount(3)
			RecordWorkerProcessingLatency(0.4)
			RecordSinkError("journal")
			RecordErrorByComponent("worker", "sink")

			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 16)
			So(testutil.ToFloat64(globalManager.queueUtilization), ShouldEqual, 0.25)
		})

		Convey("When recording system metrics", func() {
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(12)
			RecordSystemGCPauseTime(0.3)

			So(testutil.ToFloat64(globalManager.systemGoroutineCount), ShouldEqual, 12)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		r := GetRegistry()

		Convey("Then it gathers the global collectors", func() {
			RecordSessionCreated()
			families, err := r.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
