package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/lovequiz/internal/adapters/http/api"
	service "github.com/okian/lovequiz/internal/app"
	"github.com/okian/lovequiz/internal/domain/quiz"
	"github.com/okian/lovequiz/internal/domain/types"
	"github.com/okian/lovequiz/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func do(h http.Handler, method, path, body, sid string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if sid != "" {
		req.Header.Set(api.SessionHeaderName, sid)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(w *httptest.ResponseRecorder) types.Snapshot {
	var snap types.Snapshot
	So(json.Unmarshal(w.Body.Bytes(), &snap), ShouldBeNil)
	return snap
}

func decodeError(w *httptest.ResponseRecorder) types.ErrorBody {
	var body types.ErrorBody
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func newHandler(opts ...service.Option) (http.Handler, func()) {
	svc := service.New(opts...)
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		panic(err)
	}
	srv := api.NewServer(svc, svc)
	return srv.Handler(), func() { _ = svc.Stop(ctx) }
}

func TestSessionRoutes(t *testing.T) {
	Convey("Given the quiz API over a running service", t, func() {
		h, stop := newHandler()
		defer stop()

		w := do(h, http.MethodPost, "/api/session", "", "")
		So(w.Code, ShouldEqual, http.StatusCreated)
		created := decodeSnapshot(w)
		sid := created.SessionID
		So(sid, ShouldNotBeEmpty)
		So(created.Step, ShouldEqual, int(quiz.StepNameEntry))

		Convey("Then the session cookie is set", func() {
			cookies := w.Result().Cookies()
			So(len(cookies), ShouldEqual, 1)
			So(cookies[0].Name, ShouldEqual, api.CookieName)
			So(cookies[0].Value, ShouldEqual, sid)
			So(cookies[0].HttpOnly, ShouldBeTrue)

			Convey("And the cookie alone identifies the session", func() {
				req := httptest.NewRequest(http.MethodGet, "/api/session", http.NoBody)
				req.AddCookie(cookies[0])
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, req)
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(decodeSnapshot(rec).SessionID, ShouldEqual, sid)
			})
		})

		Convey("When the quiz is played to the end", func() {
			So(do(h, http.MethodPost, "/api/session/name", `{"input":"Pavita"}`, sid).Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodPost, "/api/session/partner", `{"input":"  HERU "}`, sid).Code, ShouldEqual, http.StatusOK)

			w = do(h, http.MethodPost, "/api/session/decline", "", sid)
			So(w.Code, ShouldEqual, http.StatusOK)
			var dec types.Decline
			So(json.Unmarshal(w.Body.Bytes(), &dec), ShouldBeNil)
			So(dec.State.DodgeCount, ShouldEqual, 1)
			So(dec.Offset.X, ShouldBeBetweenOrEqual, -80, 80)
			So(dec.Offset.Y, ShouldBeBetweenOrEqual, -60, 60)

			So(do(h, http.MethodPost, "/api/session/accept", "", sid).Code, ShouldEqual, http.StatusOK)

			w = do(h, http.MethodPut, "/api/session/affection", `{"value":0}`, sid)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeSnapshot(w).AffectionScore, ShouldEqual, 1)

			w = do(h, http.MethodPut, "/api/session/affection", `{"value":85}`, sid)
			So(decodeSnapshot(w).ScoreMessage, ShouldEqual, quiz.DefaultScoreMessages().For(85))

			So(do(h, http.MethodPost, "/api/session/confirm", "", sid).Code, ShouldEqual, http.StatusOK)

			w = do(h, http.MethodPost, "/api/session/reveal", "", sid)
			So(w.Code, ShouldEqual, http.StatusOK)
			final := decodeSnapshot(w)

			Convey("Then the final snapshot is revealed", func() {
				So(final.Step, ShouldEqual, int(quiz.StepReveal))
				So(final.Revealed, ShouldBeTrue)
				So(final.Confetti, ShouldBeTrue)
				So(final.Music, ShouldNotBeNil)
			})

			Convey("Then the share text is available", func() {
				w = do(h, http.MethodGet, "/api/session/share", "", sid)
				So(w.Code, ShouldEqual, http.StatusOK)
				var share types.Share
				So(json.Unmarshal(w.Body.Bytes(), &share), ShouldBeNil)
				So(share.Text, ShouldContainSubstring, "Pavita 💞 HERU: 85/100")
			})

			Convey("Then restart goes back to the first step", func() {
				w = do(h, http.MethodPost, "/api/session/restart", "", sid)
				So(w.Code, ShouldEqual, http.StatusOK)
				snap := decodeSnapshot(w)
				So(snap.Step, ShouldEqual, int(quiz.StepNameEntry))
				So(snap.Music, ShouldBeNil)
			})
		})

		Convey("When an unknown name is submitted", func() {
			w = do(h, http.MethodPost, "/api/session/name", `{"input":"budi"}`, sid)

			Convey("Then it answers 422 with the state attached", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				body := decodeError(w)
				So(body.Code, ShouldEqual, quiz.CodeNotRecognized)
				So(body.Message, ShouldEqual, quiz.DefaultMessages().NameNotRecognized)
				So(body.State, ShouldNotBeNil)
				So(body.State.ErrorMessage, ShouldEqual, body.Message)
			})

			Convey("And an input change clears the message", func() {
				w = do(h, http.MethodPost, "/api/session/input", "", sid)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decodeSnapshot(w).ErrorMessage, ShouldBeEmpty)
			})
		})

		Convey("When an empty name is submitted", func() {
			w = do(h, http.MethodPost, "/api/session/name", `{"input":"  "}`, sid)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decodeError(w).Code, ShouldEqual, quiz.CodeEmptyInput)
		})

		Convey("When an operation is out of order", func() {
			w = do(h, http.MethodPost, "/api/session/confirm", "", sid)
			So(w.Code, ShouldEqual, http.StatusConflict)
			body := decodeError(w)
			So(body.Code, ShouldEqual, quiz.CodeWrongStep)
			So(body.State.Step, ShouldEqual, int(quiz.StepNameEntry))
		})

		Convey("When the body is malformed", func() {
			So(do(h, http.MethodPost, "/api/session/name", `{"input":`, sid).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPost, "/api/session/name", `{"nope":"x"}`, sid).Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodPut, "/api/session/affection", `{}`, sid).Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(do(h, http.MethodPost, "/api/session/name", "", sid)).Code, ShouldEqual, "bad_request")
		})

		Convey("When a decline gesture is repeated", func() {
			first := do(h, http.MethodPost, "/api/session/decline", `{"gesture_id":"g-1"}`, sid)
			second := do(h, http.MethodPost, "/api/session/decline", `{"gesture_id":"g-1"}`, sid)
			var a, b types.Decline
			So(json.Unmarshal(first.Body.Bytes(), &a), ShouldBeNil)
			So(json.Unmarshal(second.Body.Bytes(), &b), ShouldBeNil)
			So(a.Duplicate, ShouldBeFalse)
			So(b.Duplicate, ShouldBeTrue)
			So(b.State.DodgeCount, ShouldEqual, 1)
		})

		Convey("When music is reported failing before it exists", func() {
			w = do(h, http.MethodPost, "/api/session/music/failure", `{"reason":"NotAllowedError"}`, sid)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(do(h, http.MethodPost, "/api/session/music/toggle", "", sid).Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the session is ended", func() {
			w = do(h, http.MethodDelete, "/api/session", "", sid)
			So(w.Code, ShouldEqual, http.StatusNoContent)

			cookies := w.Result().Cookies()
			So(cookies, ShouldHaveLength, 1)
			So(cookies[0].Name, ShouldEqual, api.CookieName)
			So(cookies[0].MaxAge, ShouldBeLessThan, 0)

			Convey("Then the id no longer resolves", func() {
				So(do(h, http.MethodGet, "/api/session", "", sid).Code, ShouldEqual, http.StatusNotFound)
				So(do(h, http.MethodDelete, "/api/session", "", sid).Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the session is missing or unknown", func() {
			w = do(h, http.MethodGet, "/api/session", "", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decodeError(w).Code, ShouldEqual, "session_not_found")

			So(do(h, http.MethodGet, "/api/session", "", "does-not-exist").Code, ShouldEqual, http.StatusNotFound)
			So(do(h, http.MethodGet, "/api/session", "", "bad id!").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCapacity(t *testing.T) {
	Convey("Given a service capped at one session", t, func() {
		h, stop := newHandler(service.WithMaxSessions(1))
		defer stop()

		So(do(h, http.MethodPost, "/api/session", "", "").Code, ShouldEqual, http.StatusCreated)

		Convey("Then the next create answers 503", func() {
			w := do(h, http.MethodPost, "/api/session", "", "")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decodeError(w).Code, ShouldEqual, "too_many_sessions")
		})
	})
}

func TestScoreMessageRoute(t *testing.T) {
	Convey("Given the quiz API", t, func() {
		h, stop := newHandler()
		defer stop()

		Convey("When asked for a score message", func() {
			w := do(h, http.MethodGet, "/api/score-message?score=150", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var msg types.ScoreMessage
			So(json.Unmarshal(w.Body.Bytes(), &msg), ShouldBeNil)
			So(msg.Score, ShouldEqual, 100)
			So(msg.Band, ShouldEqual, "maximum")
		})

		Convey("When the score is not a number", func() {
			So(do(h, http.MethodGet, "/api/score-message?score=lots", "", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/api/score-message", "", "").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestOperationalRoutes(t *testing.T) {
	Convey("Given the quiz API", t, func() {
		h, stop := newHandler()
		defer stop()
		So(do(h, http.MethodPost, "/api/session", "", "").Code, ShouldEqual, http.StatusCreated)

		Convey("Then /healthz serves the metrics exposition", func() {
			w := do(h, http.MethodGet, "/healthz", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "lovequiz_session_created_total")
			So(w.Body.String(), ShouldContainSubstring, "lovequiz_session_http_requests_total")
		})

		Convey("Then /stats reports the service", func() {
			w := do(h, http.MethodGet, "/stats", "", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var stats map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
			So(stats["sessions"], ShouldEqual, float64(1))
		})

		Convey("Then unknown routes answer 404", func() {
			So(do(h, http.MethodGet, "/nope", "", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
