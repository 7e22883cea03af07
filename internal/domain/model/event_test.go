package model_test

import (
	"testing"
	"time"

	model "github.com/okian/lovequiz/internal/domain/model"
	"github.com/okian/lovequiz/internal/domain/quiz"
	"github.com/smartystreets/goconvey/convey"
)

func TestEvent_Advanced(t *testing.T) {
	convey.Convey("Given events", t, func() {
		convey.Convey("When the step moved forward", func() {
			e := model.Event{Kind: model.KindNameAccepted, From: quiz.StepNameEntry, To: quiz.StepPartnerEntry, TS: time.Now()}

			convey.So(e.Advanced(), convey.ShouldBeTrue)
		})

		convey.Convey("When the step stayed", func() {
			e := model.Event{Kind: model.KindDeclined, From: quiz.StepConfirmation, To: quiz.StepConfirmation}

			convey.So(e.Advanced(), convey.ShouldBeFalse)
		})

		convey.Convey("When the quiz restarted", func() {
			e := model.Event{Kind: model.KindRestarted, From: quiz.StepReveal, To: quiz.StepNameEntry}

			convey.So(e.Advanced(), convey.ShouldBeFalse)
		})
	})
}
