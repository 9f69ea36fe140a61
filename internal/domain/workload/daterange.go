package workload

import (
	"github.com/okian/loadwatch/internal/domain/model"
)

// ProjectRange returns [earliest start, latest end] over non-summary tasks
// that have both dates. The second result is false when no such task exists
// or the bounds are inverted.
func ProjectRange(tasks []model.Task) (model.Range, bool) {
	var r model.Range
	found := false
	for i := range tasks {
		t := &tasks[i]
		if t.IsSummary || !t.HasDates() {
			continue
		}
		if !found {
			r = model.Range{Start: t.Start, End: t.End}
			found = true
			continue
		}
		if t.Start.Before(r.Start) {
			r.Start = t.Start
		}
		if t.End.After(r.End) {
			r.End = t.End
		}
	}
	if !found || r.Start.After(r.End) {
		return model.Range{}, false
	}
	return r, true
}
