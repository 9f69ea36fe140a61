// Package model contains domain models passed between layers.
package model

import (
	"time"
)

// Resource is a person or asset that tasks can be assigned to.
type Resource struct {
	ID   ID     `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	// MaxUnits is the raw capacity figure, either a fraction (1.0 = 100%)
	// or a legacy percentage (150 = 150%). Nil means one full-time equivalent.
	MaxUnits *float64 `json:"maxUnits,omitempty" yaml:"maxUnits,omitempty"`
}

// Assignment binds a resource to a task with a unit fraction (0.5 = 50%).
type Assignment struct {
	ResourceID ID      `json:"resourceId" yaml:"resourceId"`
	Units      float64 `json:"units" yaml:"units"`
}

// Task is a schedulable unit of work. Zero Start/End mean the date is unset.
type Task struct {
	ID          ID
	Name        string
	IsSummary   bool
	Start       time.Time
	End         time.Time
	Assignments []Assignment
	// ResourceIDs is the legacy reference list; entries without an explicit
	// assignment imply full capacity.
	ResourceIDs []ID
}

// HasDates reports whether both the start and end date are set.
func (t *Task) HasDates() bool {
	return !t.Start.IsZero() && !t.End.IsZero()
}

// Range is a closed time window.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether ts falls inside the range, bounds included.
func (r Range) Contains(ts time.Time) bool {
	return !ts.Before(r.Start) && !ts.After(r.End)
}
