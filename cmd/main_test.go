package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/loadwatch/internal/config"
	"github.com/okian/loadwatch/internal/domain/workload"
	"github.com/okian/loadwatch/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const snapshot = `
id: hermes
name: Hermes
resources:
  - id: 1
    name: Ana
  - id: 2
    name: Bo
tasks:
  - id: t1
    startDate: "2025-04-07"
    endDate: "2025-04-11"
    resourceAssignments:
      - resourceId: 1
        units: 1
  - id: t2
    startDate: "2025-04-11"
    endDate: "2025-04-15"
    resourceAssignments:
      - resourceId: 1
        units: 1
`

func writeSnapshot(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "hermes.yaml")
	if err := os.WriteFile(path, []byte(snapshot), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	convey.Convey("Given a snapshot file", t, func() {
		path := writeSnapshot(t)

		convey.Convey("When it is reported as a table", func() {
			out, err := execute("report", "-f", path)

			convey.Convey("Then the overloaded resource is listed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Usage of hermes")
				convey.So(out, convey.ShouldContainSubstring, "1 overloaded")
				convey.So(out, convey.ShouldContainSubstring, "2025-04-11..2025-04-11")
			})
		})

		convey.Convey("When it is reported as JSON with the exclusive boundary", func() {
			out, err := execute("report", "-f", path, "--boundary", "exclusive", "--json", "--label", "status_distributed=Spread")

			convey.Convey("Then back-to-back tasks no longer overlap", func() {
				convey.So(err, convey.ShouldBeNil)
				var rep workload.Report
				convey.So(json.Unmarshal([]byte(out), &rep), convey.ShouldBeNil)
				convey.So(rep.Boundary, convey.ShouldEqual, "exclusive")
				convey.So(rep.Resources, convey.ShouldHaveLength, 2)
				convey.So(rep.Resources[0].IsOverloadedInTime, convey.ShouldBeFalse)
				convey.So(rep.Resources[0].StatusKey, convey.ShouldEqual, "status_distributed")
				convey.So(rep.Resources[0].Status, convey.ShouldEqual, "Spread")
				convey.So(rep.Summary.Available, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the boundary is unknown", func() {
			_, err := execute("report", "-f", path, "--boundary", "sideways")

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the file flag is missing", func() {
			_, err := execute("report")

			convey.Convey("Then the command fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestServeWiring(t *testing.T) {
	convey.Convey("Given a configuration with a seed file", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.WorkerCount = 2
		cfg.SeedFile = writeSnapshot(t)
		cfg.Labels = map[string]string{"status_overloaded": "Too much"}

		svc, err := newService(cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		convey.So(seed(ctx, svc, cfg.SeedFile), convey.ShouldBeNil)
		srv := httptest.NewServer(newMux(ctx, svc, cfg))
		defer srv.Close()

		convey.Convey("When the seeded project usage is requested", func() {
			resp, err := http.Get(srv.URL + "/v1/projects/hermes/usage")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then it is served with the configured labels", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				var rep workload.Report
				convey.So(json.NewDecoder(resp.Body).Decode(&rep), convey.ShouldBeNil)
				convey.So(rep.Resources[0].Status, convey.ShouldEqual, "Too much")
			})
		})

		convey.Convey("When the docs are requested", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then the OpenAPI document is served", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When service metrics are refreshed", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			stats := svc.GetStats()

			convey.Convey("Then the stats reflect the seed", func() {
				convey.So(stats["projects"], convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the seed file is missing", func() {
			err := seed(ctx, svc, filepath.Join(t.TempDir(), "missing.yaml"))

			convey.Convey("Then seeding fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})

	convey.Convey("Given a configuration with an unknown boundary", t, func() {
		cfg := config.New()
		cfg.BoundaryMode = "sideways"

		convey.Convey("Then the service is not built", func() {
			_, err := newService(cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"
		cfg.WorkerCount = 1

		convey.Convey("Then serving returns after a clean shutdown", func() {
			convey.So(runServe(ctx, cfg), convey.ShouldBeNil)
		})
	})
}
