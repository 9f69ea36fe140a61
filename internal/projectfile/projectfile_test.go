package projectfile_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/internal/projectfile"
	. "github.com/smartystreets/goconvey/convey"
)

const hermesYAML = `
id: hermes
name: Hermes
resources:
  - id: 1
    name: Ana
  - id: "2"
    name: Bo
    maxUnits: 150
tasks:
  - id: t1
    startDate: 2025-04-07
    endDate: "2025-04-11"
    resourceAssignments:
      - resourceId: 1
        units: 0.5
  - id: t2
    isSummary: true
    resourceIds: [2]
`

func TestDecode(t *testing.T) {
	Convey("Given a YAML snapshot", t, func() {
		p, err := projectfile.Decode(strings.NewReader(hermesYAML), projectfile.FormatYAML)

		Convey("Then resources and tasks are decoded with canonical ids", func() {
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "hermes")
			So(p.Resources, ShouldHaveLength, 2)
			So(p.Resources[0].ID, ShouldEqual, model.ID("1"))
			So(*p.Resources[1].MaxUnits, ShouldEqual, 150)
			So(p.Tasks[0].Start, ShouldEqual, time.Date(2025, 4, 7, 0, 0, 0, 0, time.UTC))
			So(p.Tasks[0].Assignments[0].ResourceID, ShouldEqual, model.ID("1"))
			So(p.Tasks[1].IsSummary, ShouldBeTrue)
			So(p.Tasks[1].ResourceIDs, ShouldResemble, []model.ID{"2"})
			So(p.Tasks[1].HasDates(), ShouldBeFalse)
		})
	})

	Convey("Given a YAML snapshot with an unknown key", t, func() {
		_, err := projectfile.Decode(strings.NewReader("name: x\nowner: y\n"), projectfile.FormatYAML)

		Convey("Then decoding fails", func() {
			So(errors.Is(err, projectfile.ErrDecode), ShouldBeTrue)
		})
	})

	Convey("Given an empty YAML document", t, func() {
		p, err := projectfile.Decode(strings.NewReader(""), projectfile.FormatYAML)

		Convey("Then an empty project is returned", func() {
			So(err, ShouldBeNil)
			So(p.Resources, ShouldBeEmpty)
		})
	})

	Convey("Given a JSON snapshot with a bad date", t, func() {
		body := `{"resources":[],"tasks":[{"id":"t1","startDate":"tomorrow"}]}`
		_, err := projectfile.Decode(strings.NewReader(body), projectfile.FormatJSON)

		Convey("Then the date error is reported", func() {
			So(errors.Is(err, projectfile.ErrDecode), ShouldBeTrue)
			So(errors.Is(err, model.ErrInvalidDate), ShouldBeTrue)
		})
	})

	Convey("Given an unknown format", t, func() {
		_, err := projectfile.Decode(strings.NewReader("{}"), projectfile.Format("toml"))

		Convey("Then it is unsupported", func() {
			So(errors.Is(err, projectfile.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}

func TestFormatOf(t *testing.T) {
	Convey("Given file names", t, func() {
		cases := map[string]projectfile.Format{
			"a.yaml":     projectfile.FormatYAML,
			"b.YML":      projectfile.FormatYAML,
			"dir/c.json": projectfile.FormatJSON,
		}
		Convey("Then the extension picks the format", func() {
			for name, want := range cases {
				got, err := projectfile.FormatOf(name)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
			_, err := projectfile.FormatOf("plan.xml")
			So(errors.Is(err, projectfile.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}

func TestSaveLoad(t *testing.T) {
	Convey("Given a decoded snapshot", t, func() {
		p, err := projectfile.Decode(strings.NewReader(hermesYAML), projectfile.FormatYAML)
		So(err, ShouldBeNil)
		dir := t.TempDir()

		for _, name := range []string{"hermes.yaml", "hermes.json"} {
			Convey("When it is saved and loaded as "+name, func() {
				path := filepath.Join(dir, name)
				So(projectfile.Save(path, p), ShouldBeNil)
				back, err := projectfile.Load(path)

				Convey("Then the snapshot is unchanged", func() {
					So(err, ShouldBeNil)
					So(back.Name, ShouldEqual, p.Name)
					So(back.Resources, ShouldResemble, p.Resources)
					So(back.Tasks, ShouldHaveLength, 2)
					So(back.Tasks[0].End, ShouldEqual, p.Tasks[0].End)
					So(back.Tasks[0].Assignments, ShouldResemble, p.Tasks[0].Assignments)
				})
			})
		}

		Convey("When a missing file is loaded", func() {
			_, err := projectfile.Load(filepath.Join(dir, "missing.yaml"))

			Convey("Then the open error is returned", func() {
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})

		Convey("When it is encoded as JSON", func() {
			var buf bytes.Buffer
			So(projectfile.Encode(&buf, p, projectfile.FormatJSON), ShouldBeNil)

			Convey("Then dates use the external layout", func() {
				So(buf.String(), ShouldContainSubstring, `"startDate": "2025-04-07T00:00:00Z"`)
				So(buf.String(), ShouldContainSubstring, `"resourceAssignments"`)
			})
		})
	})
}
