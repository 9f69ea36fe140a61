package workload

import (
	"math"

	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/internal/domain/sweep"
	"github.com/shopspring/decimal"
)

// Contribution is the load one task puts on one resource.
type Contribution struct {
	TaskID model.ID
	Units  decimal.Decimal
	// Interval is nil when the task lacks a start or end date.
	Interval *model.Range
}

// Resolution is the resolved assignment set of one resource.
type Resolution struct {
	// Total is the sum of all contributions regardless of timing.
	Total         decimal.Decimal
	Contributions []Contribution
}

// Intervals returns the dated contributions in sweep form.
func (r Resolution) Intervals() []sweep.Interval {
	out := make([]sweep.Interval, 0, len(r.Contributions))
	for _, c := range r.Contributions {
		if c.Interval == nil {
			continue
		}
		out = append(out, sweep.Interval{Start: c.Interval.Start, End: c.Interval.End, Units: c.Units})
	}
	return out
}

var fullUnit = decimal.NewFromInt(1)

// units converts a float figure to a decimal. Non-finite values carry no load.
func units(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// Resolve walks tasks for one resource. Summary tasks are skipped. An
// explicit assignment wins over the legacy reference list; a legacy
// reference alone implies full capacity.
func Resolve(resource model.Resource, tasks []model.Task) Resolution {
	res := Resolution{Total: decimal.Zero}
	for i := range tasks {
		if c, ok := contribution(&tasks[i], resource.ID); ok {
			res.add(c)
		}
	}
	return res
}

func (r *Resolution) add(c Contribution) {
	r.Total = r.Total.Add(c.Units)
	r.Contributions = append(r.Contributions, c)
}

func contribution(task *model.Task, id model.ID) (Contribution, bool) {
	if task.IsSummary {
		return Contribution{}, false
	}
	for _, a := range task.Assignments {
		if a.ResourceID == id {
			return newContribution(task, units(a.Units)), true
		}
	}
	for _, rid := range task.ResourceIDs {
		if rid == id {
			return newContribution(task, fullUnit), true
		}
	}
	return Contribution{}, false
}

func newContribution(task *model.Task, units decimal.Decimal) Contribution {
	c := Contribution{TaskID: task.ID, Units: units}
	if task.HasDates() {
		c.Interval = &model.Range{Start: task.Start, End: task.End}
	}
	return c
}

// Index resolves every resource of a task list in a single pass over the
// tasks. For each resource it yields exactly what Resolve would.
type Index struct {
	byResource map[model.ID]*Resolution
}

// NewIndex builds the index.
func NewIndex(tasks []model.Task) *Index {
	idx := &Index{byResource: make(map[model.ID]*Resolution)}
	seen := make(map[model.ID]struct{})
	for i := range tasks {
		task := &tasks[i]
		if task.IsSummary {
			continue
		}
		clear(seen)
		for _, a := range task.Assignments {
			if _, dup := seen[a.ResourceID]; dup {
				continue
			}
			seen[a.ResourceID] = struct{}{}
			idx.resolution(a.ResourceID).add(newContribution(task, units(a.Units)))
		}
		for _, rid := range task.ResourceIDs {
			if _, dup := seen[rid]; dup {
				continue
			}
			seen[rid] = struct{}{}
			idx.resolution(rid).add(newContribution(task, fullUnit))
		}
	}
	return idx
}

func (idx *Index) resolution(id model.ID) *Resolution {
	r, ok := idx.byResource[id]
	if !ok {
		r = &Resolution{Total: decimal.Zero}
		idx.byResource[id] = r
	}
	return r
}

// Resolve returns the resolution of one resource.
func (idx *Index) Resolve(id model.ID) Resolution {
	if r, ok := idx.byResource[id]; ok {
		return *r
	}
	return Resolution{Total: decimal.Zero}
}
