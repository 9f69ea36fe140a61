package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/loadwatch/internal/adapters/http/api"
	service "github.com/okian/loadwatch/internal/app"
	"github.com/okian/loadwatch/internal/adapters/repository"
	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/internal/domain/workload"
	"github.com/okian/loadwatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const hermes = `{
  "name": "Hermes",
  "resources": [
    {"id": 1, "name": "Ana"},
    {"id": "2", "name": "Bo", "maxUnits": 150}
  ],
  "tasks": [
    {"id": "t1", "startDate": "2025-04-07", "endDate": "2025-04-11", "resourceAssignments": [{"resourceId": 1, "units": 1}]},
    {"id": "t2", "startDate": "2025-04-11", "endDate": "2025-04-15", "resourceAssignments": [{"resourceId": "1", "units": 0.5}]},
    {"id": "t3", "startDate": "2025-04-07", "endDate": "2025-04-15", "resourceIds": [2]}
  ]
}`

func newMux(deps api.Dependencies, stats api.StatsProvider, limit int64) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stats, limit).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestServer_Operational(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		mux := newMux(svc, svc, 0)

		Convey("When /healthz is requested as JSON", func() {
			w := do(mux, http.MethodGet, "/healthz", "")

			Convey("Then it reports ok", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[map[string]any](w)["status"], ShouldEqual, "ok")
			})
		})

		Convey("When /healthz is requested as text", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("Accept", "text/plain")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it serves the Prometheus exposition", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "loadwatch_workload_")
			})
		})

		Convey("When /metrics is requested", func() {
			w := do(mux, http.MethodGet, "/metrics", "")

			Convey("Then the custom registry is served", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "loadwatch_workload_queue_capacity")
			})
		})

		Convey("When /stats is requested", func() {
			w := do(mux, http.MethodGet, "/stats", "")

			Convey("Then the service statistics are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				stats := decode[map[string]any](w)
				So(stats["boundary"], ShouldEqual, "inclusive")
				So(stats["started"], ShouldEqual, false)
			})
		})

		Convey("When a route is called with the wrong method", func() {
			w := do(mux, http.MethodDelete, "/v1/evaluate", "")

			Convey("Then the mux rejects it", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestServer_Evaluate(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		mux := newMux(svc, svc, 2048)

		Convey("When a snapshot is evaluated", func() {
			w := do(mux, http.MethodPost, "/v1/evaluate", hermes)

			Convey("Then one record per resource is returned in input order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode[struct {
					Resources []model.ResourceUsage `json:"resources"`
				}](w)
				So(body.Resources, ShouldHaveLength, 2)

				ana := body.Resources[0]
				So(ana.ResourceID, ShouldEqual, model.ID("1"))
				So(ana.AssignedPercent, ShouldEqual, 1.5)
				So(ana.AvailablePercent, ShouldEqual, 0)
				So(ana.IsOverloadedInTime, ShouldBeTrue)
				So(ana.StatusKey, ShouldEqual, "status_overloaded")
				So(ana.OverloadWindows, ShouldHaveLength, 1)

				bo := body.Resources[1]
				So(bo.Capacity, ShouldEqual, 1.5)
				So(bo.StatusKey, ShouldEqual, "status_partial")
				So(bo.IsOverloadedInTime, ShouldBeFalse)
			})
		})

		Convey("When unit sums overflow float64", func() {
			w := do(mux, http.MethodPost, "/v1/evaluate",
				`{"resources":[{"id":"r1"}],"tasks":[
					{"id":"t1","resourceAssignments":[{"resourceId":"r1","units":1e308}]},
					{"id":"t2","resourceAssignments":[{"resourceId":"r1","units":1e308}]}]}`)

			Convey("Then the failure is reported instead of a truncated 200", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decode[errorBody](w).Code, ShouldEqual, "encode_failed")
			})
		})

		Convey("When the body is not JSON", func() {
			w := do(mux, http.MethodPost, "/v1/evaluate", "{nope")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Code, ShouldEqual, "bad_request")
			})
		})

		Convey("When the body is empty", func() {
			w := do(mux, http.MethodPost, "/v1/evaluate", "")

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a task date is malformed", func() {
			w := do(mux, http.MethodPost, "/v1/evaluate",
				`{"resources":[{"id":"r1"}],"tasks":[{"id":"t1","startDate":"soon","endDate":"2025-04-07"}]}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decode[errorBody](w).Message, ShouldContainSubstring, "invalid date")
			})
		})

		Convey("When the body exceeds the limit", func() {
			big := `{"resources":[{"id":"r1","name":"` + strings.Repeat("x", 4096) + `"}],"tasks":[]}`
			w := do(mux, http.MethodPost, "/v1/evaluate", big)

			Convey("Then it is rejected as too large", func() {
				So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
				So(decode[errorBody](w).Code, ShouldEqual, "payload_too_large")
			})
		})

		Convey("When the body is empty of resources", func() {
			w := do(mux, http.MethodPost, "/v1/evaluate", `{"resources":[],"tasks":[]}`)

			Convey("Then an empty list is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"resources":[]`)
			})
		})
	})
}

func TestServer_Projects(t *testing.T) {
	Convey("Given a started service behind the API", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()
		mux := newMux(svc, svc, 0)

		w := do(mux, http.MethodPost, "/v1/projects", hermes)
		So(w.Code, ShouldEqual, http.StatusCreated)
		created := decode[model.Project](w)
		So(created.ID, ShouldNotBeEmpty)
		So(created.Revision, ShouldEqual, 1)
		So(w.Header().Get("Location"), ShouldEqual, "/v1/projects/"+created.ID)
		base := "/v1/projects/" + created.ID

		Convey("When it is fetched", func() {
			w := do(mux, http.MethodGet, base, "")

			Convey("Then the snapshot round-trips", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				p := decode[model.Project](w)
				So(p.Name, ShouldEqual, "Hermes")
				So(p.Tasks, ShouldHaveLength, 3)
				So(p.Tasks[0].Start.Format("2006-01-02"), ShouldEqual, "2025-04-07")
			})
		})

		Convey("When the projects are listed", func() {
			w := do(mux, http.MethodGet, "/v1/projects", "")

			Convey("Then the project is listed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				body := decode[struct {
					Projects []repository.Info `json:"projects"`
				}](w)
				So(body.Projects, ShouldHaveLength, 1)
				So(body.Projects[0].Resources, ShouldEqual, 2)
			})
		})

		Convey("When its usage is read", func() {
			w := do(mux, http.MethodGet, base+"/usage", "")

			Convey("Then the report summarises the resources", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				report := decode[workload.Report](w)
				So(report.ProjectID, ShouldEqual, created.ID)
				So(report.Summary.Resources, ShouldEqual, 2)
				So(report.Summary.Overloaded, ShouldEqual, 1)
				So(report.Summary.Partial, ShouldEqual, 1)
			})
		})

		Convey("When a single resource is read by its numeric id", func() {
			w := do(mux, http.MethodGet, base+"/usage/2", "")

			Convey("Then its record is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[model.ResourceUsage](w).ResourceName, ShouldEqual, "Bo")
			})
		})

		Convey("When an unknown resource is read", func() {
			w := do(mux, http.MethodGet, base+"/usage/99", "")

			Convey("Then it is not found", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the project is replaced", func() {
			w := do(mux, http.MethodPut, base, `{"name":"Hermes II","resources":[{"id":"1"}],"tasks":[]}`)

			Convey("Then the revision is bumped and usage follows", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(decode[model.Project](w).Revision, ShouldEqual, 2)

				u := do(mux, http.MethodGet, base+"/usage", "")
				report := decode[workload.Report](u)
				So(report.Revision, ShouldEqual, 2)
				So(report.Summary.Available, ShouldEqual, 1)
			})
		})

		Convey("When the body id disagrees with the path", func() {
			w := do(mux, http.MethodPut, base, `{"id":"other","resources":[],"tasks":[]}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the same id is created twice", func() {
			body := `{"id":"` + created.ID + `","resources":[],"tasks":[]}`
			w := do(mux, http.MethodPost, "/v1/projects", body)

			Convey("Then it conflicts", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(decode[errorBody](w).Code, ShouldEqual, "conflict")
			})
		})

		Convey("When a project repeats a resource id", func() {
			w := do(mux, http.MethodPost, "/v1/projects", `{"resources":[{"id":1},{"id":"1"}],"tasks":[]}`)

			Convey("Then it is invalid", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the project is deleted", func() {
			w := do(mux, http.MethodDelete, base, "")

			Convey("Then it is gone", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(do(mux, http.MethodGet, base, "").Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodGet, base+"/usage", "").Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodDelete, base, "").Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodPut, base, `{"resources":[],"tasks":[]}`).Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

// failingDeps returns an unexpected error from every read.
type failingDeps struct{ *service.Service }

func (failingDeps) GetProject(context.Context, string) (model.Project, error) {
	return model.Project{}, errors.New("disk on fire")
}

func TestServer_InternalError(t *testing.T) {
	Convey("Given dependencies that fail unexpectedly", t, func() {
		svc := service.New()
		mux := newMux(failingDeps{svc}, nil, 0)

		Convey("When a project is fetched", func() {
			w := do(mux, http.MethodGet, "/v1/projects/p1", "")

			Convey("Then it is an internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				body := decode[errorBody](w)
				So(body.Code, ShouldEqual, "internal_error")
				So(body.Message, ShouldContainSubstring, "api.get_project")
			})
		})

		Convey("When stats are requested without a provider", func() {
			w := do(mux, http.MethodGet, "/stats", "")

			Convey("Then an empty object is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(strings.TrimSpace(w.Body.String()), ShouldEqual, "{}")
			})
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given wrapped API errors", t, func() {
		cause := errors.New("boom")

		Convey("Then kinds and causes are both reachable", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")

			So(api.NewKind("api.op", api.ErrPayloadTooLarge).Error(), ShouldEqual, "api.op: payload too large")
			So(api.Wrap("api.op", cause).Error(), ShouldEqual, "api.op: boom")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
