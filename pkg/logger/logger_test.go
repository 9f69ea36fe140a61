package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/okian/loadwatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given an initialized text logger", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithWriter(&buf)), ShouldBeNil)
		defer func() { So(logger.Sync(), ShouldBeNil) }()

		Convey("When an info line is written", func() {
			logger.Get().Info(context.Background(), "computed", logger.String("project", "p1"), logger.Int("resources", 3))

			Convey("Then it carries the fields and the caller", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "msg=computed")
				So(out, ShouldContainSubstring, "project=p1")
				So(out, ShouldContainSubstring, "resources=3")
				So(out, ShouldContainSubstring, "logger_test.go:")
			})
		})

		Convey("When debug is written at info level", func() {
			logger.Get().Debug(context.Background(), "hidden")
			So(buf.String(), ShouldBeEmpty)

			Convey("Then raising verbosity lets it through", func() {
				So(logger.SetLevelString("debug"), ShouldBeNil)
				logger.Get().Debug(context.Background(), "shown")
				So(buf.String(), ShouldContainSubstring, "shown")
			})
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger with a named child", t, func() {
		var buf bytes.Buffer
		So(logger.Init(logger.WithFormat("json"), logger.WithWriter(&buf)), ShouldBeNil)

		logger.Named("worker").Warn(context.Background(), "stale", logger.Bool("skipped", true))

		Convey("Then the record decodes with the fields grouped", func() {
			var rec map[string]any
			So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
			So(rec["level"], ShouldEqual, "WARN")
			So(rec["msg"], ShouldEqual, "stale")
			group, ok := rec["worker"].(map[string]any)
			So(ok, ShouldBeTrue)
			So(group["skipped"], ShouldEqual, true)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level spellings", t, func() {
		for _, lvl := range []string{"debug", "INFO", "warn", "warning", "error", ""} {
			So(logger.SetLevelString(lvl), ShouldBeNil)
		}
		So(logger.SetLevelString("loud"), ShouldNotBeNil)
	})
}
