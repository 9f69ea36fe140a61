package projectgen

import (
	"fmt"
	"math"

	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/internal/domain/sweep"
	"github.com/okian/loadwatch/internal/domain/workload"
)

// floatTolerance absorbs float64 rendering of exact decimal sums.
const floatTolerance = 1e-9

// Verify recomputes p locally with the boundary reported by the service and
// returns one message per differing resource.
func Verify(p model.Project, got workload.Report) ([]string, error) {
	boundary, err := sweep.ParseBoundary(got.Boundary)
	if err != nil {
		return nil, fmt.Errorf("report boundary: %w", err)
	}
	want := workload.New(workload.WithBoundary(boundary)).Compute(p.Resources, p.Tasks, nil)

	if len(want) != len(got.Resources) {
		return []string{fmt.Sprintf("resource count: want %d, got %d", len(want), len(got.Resources))}, nil
	}

	var diffs []string
	for i := range want {
		if d := diffUsage(want[i], got.Resources[i]); d != "" {
			diffs = append(diffs, d)
		}
	}
	if s := workload.Summarize(want); s != got.Summary {
		diffs = append(diffs, fmt.Sprintf("summary: want %+v, got %+v", s, got.Summary))
	}
	return diffs, nil
}

func diffUsage(want, got model.ResourceUsage) string {
	switch {
	case want.ResourceID != got.ResourceID:
		return fmt.Sprintf("order: want %s, got %s", want.ResourceID, got.ResourceID)
	case want.StatusKey != got.StatusKey:
		return fmt.Sprintf("%s status: want %s, got %s", want.ResourceID, want.StatusKey, got.StatusKey)
	case want.IsOverloadedInTime != got.IsOverloadedInTime:
		return fmt.Sprintf("%s overloaded: want %t, got %t", want.ResourceID, want.IsOverloadedInTime, got.IsOverloadedInTime)
	case !approxEqual(want.AssignedPercent, got.AssignedPercent):
		return fmt.Sprintf("%s assigned: want %v, got %v", want.ResourceID, want.AssignedPercent, got.AssignedPercent)
	case !approxEqual(want.PeakUnits, got.PeakUnits):
		return fmt.Sprintf("%s peak: want %v, got %v", want.ResourceID, want.PeakUnits, got.PeakUnits)
	case len(want.OverloadWindows) != len(got.OverloadWindows):
		return fmt.Sprintf("%s windows: want %d, got %d", want.ResourceID, len(want.OverloadWindows), len(got.OverloadWindows))
	}
	return ""
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}
