package model

// ResourceUsage is the per-resource workload record consumed by usage grids
// and overload warnings.
type ResourceUsage struct {
	ResourceID   ID     `json:"resourceId"`
	ResourceName string `json:"resourceName"`

	// AssignedPercent is the plain sum of unit contributions. It ignores
	// time overlap and may exceed 1.0.
	AssignedPercent float64 `json:"assignedPercent"`
	// AvailablePercent is max(0, 1 - min(AssignedPercent, 1)).
	AvailablePercent float64 `json:"availablePercent"`

	Status      string `json:"status"`
	Workload    string `json:"workload"`
	StatusKey   string `json:"statusKey"`
	WorkloadKey string `json:"workloadKey"`

	IsOverloadedInTime bool `json:"isOverloadedInTime"`

	// Capacity is the normalized maxUnits of the resource.
	Capacity float64 `json:"capacity"`
	// PeakUnits is the highest simultaneous load found by the sweep; zero
	// when no project date range exists.
	PeakUnits       float64 `json:"peakUnits"`
	OverloadWindows []Range `json:"overloadWindows,omitempty"`

	// Populated by cost and timesheet collaborators.
	ActualHours  float64 `json:"actualHours"`
	PlannedHours float64 `json:"plannedHours"`
	Variance     float64 `json:"variance"`
}
