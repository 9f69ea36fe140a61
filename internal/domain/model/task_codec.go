package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Accepted date layouts, most specific first.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ErrInvalidDate is returned when a task date matches no accepted layout.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses an RFC3339 timestamp or a calendar date. An empty string
// yields the zero time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(time.RFC3339)
}

// taskWire is the external shape of a Task.
type taskWire struct {
	ID          ID           `json:"id" yaml:"id"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	IsSummary   bool         `json:"isSummary,omitempty" yaml:"isSummary,omitempty"`
	StartDate   string       `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate     string       `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	Assignments []Assignment `json:"resourceAssignments,omitempty" yaml:"resourceAssignments,omitempty"`
	ResourceIDs []ID         `json:"resourceIds,omitempty" yaml:"resourceIds,omitempty"`
}

func (w *taskWire) toTask() (Task, error) {
	start, err := ParseDate(w.StartDate)
	if err != nil {
		return Task{}, fmt.Errorf("task %s startDate: %w", w.ID, err)
	}
	end, err := ParseDate(w.EndDate)
	if err != nil {
		return Task{}, fmt.Errorf("task %s endDate: %w", w.ID, err)
	}
	return Task{
		ID:          w.ID,
		Name:        w.Name,
		IsSummary:   w.IsSummary,
		Start:       start,
		End:         end,
		Assignments: w.Assignments,
		ResourceIDs: w.ResourceIDs,
	}, nil
}

func (t *Task) toWire() taskWire {
	return taskWire{
		ID:          t.ID,
		Name:        t.Name,
		IsSummary:   t.IsSummary,
		StartDate:   formatDate(t.Start),
		EndDate:     formatDate(t.End),
		Assignments: t.Assignments,
		ResourceIDs: t.ResourceIDs,
	}
}

// MarshalJSON encodes dates as RFC3339 strings and omits unset ones.
func (t Task) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toWire())
}

// UnmarshalJSON decodes the external task shape.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w taskWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	decoded, err := w.toTask()
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (t Task) MarshalYAML() (any, error) {
	return t.toWire(), nil
}

// UnmarshalYAML decodes the external task shape.
func (t *Task) UnmarshalYAML(node *yaml.Node) error {
	var w taskWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	decoded, err := w.toTask()
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}
