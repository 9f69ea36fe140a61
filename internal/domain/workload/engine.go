package workload

import (
	"github.com/okian/loadwatch/internal/domain/labels"
	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/okian/loadwatch/internal/domain/sweep"
	"github.com/shopspring/decimal"
)

// Engine builds usage records. It holds no state between calls and is safe
// for concurrent use.
type Engine struct {
	boundary sweep.Boundary
}

// Option configures an Engine.
type Option func(*Engine)

// WithBoundary sets the sweep boundary rule for back-to-back tasks.
func WithBoundary(b sweep.Boundary) Option {
	return func(e *Engine) {
		e.boundary = b
	}
}

// New creates an engine. The default boundary is inclusive.
func New(opts ...Option) *Engine {
	e := &Engine{boundary: sweep.BoundaryInclusive}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Boundary returns the configured boundary rule.
func (e *Engine) Boundary() sweep.Boundary { return e.boundary }

var defaultEngine = New()

// Compute runs the default engine.
func Compute(resources []model.Resource, tasks []model.Task, t labels.Translator) []model.ResourceUsage {
	return defaultEngine.Compute(resources, tasks, t)
}

// Compute returns one usage record per resource, in input order. A nil
// translator renders labels with the default catalog.
func (e *Engine) Compute(resources []model.Resource, tasks []model.Task, t labels.Translator) []model.ResourceUsage {
	if t == nil {
		t = labels.Default().Translator()
	}

	idx := NewIndex(tasks)
	var window *model.Range
	if r, ok := ProjectRange(tasks); ok {
		window = &r
	}

	out := make([]model.ResourceUsage, 0, len(resources))
	for _, res := range resources {
		out = append(out, e.usage(res, idx.Resolve(res.ID), window, t))
	}
	return out
}

func (e *Engine) usage(res model.Resource, r Resolution, window *model.Range, t labels.Translator) model.ResourceUsage {
	capacity := EffectiveCapacity(res.MaxUnits)
	capDec := decimal.NewFromFloat(capacity)

	outcome := sweep.Run(r.Intervals(), window, capDec, sweep.WithBoundary(e.boundary))
	c := Classify(r.Total, capDec, outcome)

	return model.ResourceUsage{
		ResourceID:         res.ID,
		ResourceName:       res.Name,
		AssignedPercent:    r.Total.InexactFloat64(),
		AvailablePercent:   headroom(r.Total).InexactFloat64(),
		Status:             t(string(c.Status)),
		Workload:           t(string(c.Workload)),
		StatusKey:          string(c.Status),
		WorkloadKey:        string(c.Workload),
		IsOverloadedInTime: c.OverloadedInTime,
		Capacity:           capacity,
		PeakUnits:          outcome.Peak.InexactFloat64(),
		OverloadWindows:    outcome.Windows,
	}
}

// headroom is max(0, 1 - min(total, 1)).
func headroom(total decimal.Decimal) decimal.Decimal {
	h := fullUnit.Sub(decimal.Min(total, fullUnit))
	if h.IsNegative() {
		return decimal.Zero
	}
	return h
}
