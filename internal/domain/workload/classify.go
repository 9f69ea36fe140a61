package workload

import (
	"github.com/okian/loadwatch/internal/domain/labels"
	"github.com/okian/loadwatch/internal/domain/sweep"
	"github.com/shopspring/decimal"
)

// Status is the allocation state of a resource. Its value is the label key.
type Status string

// Allocation states.
const (
	StatusAvailable   Status = labels.StatusAvailable
	StatusPartial     Status = labels.StatusPartial
	StatusBusy        Status = labels.StatusBusy
	StatusDistributed Status = labels.StatusDistributed
	StatusOverloaded  Status = labels.StatusOverloaded
)

// Workload is the coarse load band of a resource. Its value is the label key.
type Workload string

// Load bands.
const (
	WorkloadNormal      Workload = labels.WorkloadNormal
	WorkloadDistributed Workload = labels.WorkloadDistributed
	WorkloadOverload    Workload = labels.WorkloadOverload
)

// Classification is the classifier verdict for one resource.
type Classification struct {
	Status   Status
	Workload Workload
	// OverloadedInTime is the sweep verdict, or the total/capacity fallback
	// when the sweep was indeterminate.
	OverloadedInTime bool
}

// Classify combines the timing-blind total with the sweep outcome.
//
// Priority: a time-aware overload wins; otherwise a total above capacity
// means the work is spread over periods that never collide; otherwise the
// total is compared with capacity directly.
func Classify(total, capacity decimal.Decimal, outcome sweep.Outcome) Classification {
	overloaded := outcome.Overloaded
	if !outcome.Determinate {
		overloaded = ratioExceedsOne(total, capacity)
	}

	switch {
	case overloaded:
		return Classification{Status: StatusOverloaded, Workload: WorkloadOverload, OverloadedInTime: true}
	case total.GreaterThan(capacity):
		return Classification{Status: StatusDistributed, Workload: WorkloadDistributed}
	case total.IsZero():
		return Classification{Status: StatusAvailable, Workload: WorkloadNormal}
	case total.LessThan(capacity):
		return Classification{Status: StatusPartial, Workload: WorkloadNormal}
	default:
		return Classification{Status: StatusBusy, Workload: WorkloadNormal}
	}
}

// ratioExceedsOne reports total/capacity > 1 with IEEE semantics for a zero
// capacity: any positive total is infinitely over, zero or less is not.
func ratioExceedsOne(total, capacity decimal.Decimal) bool {
	if capacity.IsZero() {
		return total.IsPositive()
	}
	return total.Div(capacity).GreaterThan(fullUnit)
}
