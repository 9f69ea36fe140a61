package workload

import "github.com/okian/loadwatch/internal/domain/model"

// Summary counts usage records per status.
type Summary struct {
	Resources   int `json:"resources"`
	Available   int `json:"available"`
	Partial     int `json:"partial"`
	Busy        int `json:"busy"`
	Distributed int `json:"distributed"`
	Overloaded  int `json:"overloaded"`
}

// Summarize tallies records by their status key.
func Summarize(usage []model.ResourceUsage) Summary {
	s := Summary{Resources: len(usage)}
	for i := range usage {
		switch Status(usage[i].StatusKey) {
		case StatusAvailable:
			s.Available++
		case StatusPartial:
			s.Partial++
		case StatusBusy:
			s.Busy++
		case StatusDistributed:
			s.Distributed++
		case StatusOverloaded:
			s.Overloaded++
		}
	}
	return s
}

// Report is the usage of one project revision.
type Report struct {
	ProjectID string                `json:"projectId"`
	Revision  uint64                `json:"revision"`
	Boundary  string                `json:"boundary"`
	Summary   Summary               `json:"summary"`
	Resources []model.ResourceUsage `json:"resources"`
}
