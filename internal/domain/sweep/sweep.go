// Package sweep finds the peak simultaneous load of a set of weighted time
// intervals with a sweep line over their start and end events.
//
// Each interval contributes +units at its start and -units at its end. The
// events are sorted chronologically and folded into a running sum; the
// largest running sum is the peak load. Sorting dominates, so a sweep over n
// intervals costs O(n log n).
//
// Events sharing an instant are applied as one batch per kind, in an order
// fixed by the Boundary mode. Within a batch order does not matter, which
// keeps the outcome independent of input order.
package sweep

import (
	"sort"
	"time"

	"github.com/okian/loadwatch/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Interval is one weighted occupation of the resource, bounds included.
type Interval struct {
	Start time.Time
	End   time.Time
	Units decimal.Decimal
}

// Outcome is the result of a sweep.
type Outcome struct {
	// Determinate is false when no project window was available. All other
	// fields are zero in that case.
	Determinate bool
	Peak        decimal.Decimal
	// PeakAt is the first instant at which Peak was reached.
	PeakAt     time.Time
	Overloaded bool
	// Windows are the merged periods during which the running load was
	// strictly above capacity.
	Windows []model.Range
}

// event ranks order events sharing an instant.
const (
	rankCloseBefore = iota // closings that free the resource before new work starts
	rankOpen
	rankCloseAfter // closings that still occupy the instant
)

type event struct {
	at    time.Time
	rank  int
	delta decimal.Decimal
}

// Run sweeps intervals inside window and compares the peak with capacity.
// A nil window means no project range exists and the outcome is
// indeterminate. Intervals are clipped to the window; inverted intervals and
// intervals entirely outside it are ignored.
func Run(intervals []Interval, window *model.Range, capacity decimal.Decimal, opts ...Option) Outcome {
	if window == nil {
		return Outcome{}
	}
	o := newOptions(opts...)

	events := make([]event, 0, len(intervals)*2)
	for _, iv := range intervals {
		start, end, ok := clip(iv, *window)
		if !ok {
			continue
		}
		closeRank := rankCloseAfter
		if o.boundary == BoundaryExclusive && end.After(start) {
			closeRank = rankCloseBefore
		}
		events = append(events,
			event{at: start, rank: rankOpen, delta: iv.Units},
			event{at: end, rank: closeRank, delta: iv.Units.Neg()},
		)
	}

	sort.Slice(events, func(i, j int) bool {
		if !events[i].at.Equal(events[j].at) {
			return events[i].at.Before(events[j].at)
		}
		return events[i].rank < events[j].rank
	})

	out := Outcome{Determinate: true, Peak: decimal.Zero, PeakAt: window.Start}
	// An idle resource is never over capacity, even a negative one.
	if len(events) == 0 {
		return out
	}
	running := decimal.Zero
	over := false
	var openedAt time.Time

	for i := 0; i < len(events); {
		at, rank := events[i].at, events[i].rank
		for ; i < len(events) && events[i].at.Equal(at) && events[i].rank == rank; i++ {
			running = running.Add(events[i].delta)
		}

		if running.GreaterThan(out.Peak) {
			out.Peak = running
			out.PeakAt = at
		}

		nowOver := running.GreaterThan(capacity)
		switch {
		case nowOver && !over:
			openedAt = at
		case !nowOver && over:
			out.Windows = appendWindow(out.Windows, model.Range{Start: openedAt, End: at})
		}
		over = nowOver
	}
	if over {
		out.Windows = appendWindow(out.Windows, model.Range{Start: openedAt, End: events[len(events)-1].at})
	}

	out.Overloaded = out.Peak.GreaterThan(capacity)
	return out
}

func clip(iv Interval, window model.Range) (time.Time, time.Time, bool) {
	if iv.End.Before(iv.Start) {
		return time.Time{}, time.Time{}, false
	}
	start, end := iv.Start, iv.End
	if start.Before(window.Start) {
		start = window.Start
	}
	if end.After(window.End) {
		end = window.End
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// appendWindow merges w into the previous window when they touch.
func appendWindow(ws []model.Range, w model.Range) []model.Range {
	if n := len(ws); n > 0 && !w.Start.After(ws[n-1].End) {
		if w.End.After(ws[n-1].End) {
			ws[n-1].End = w.End
		}
		return ws
	}
	return append(ws, w)
}
