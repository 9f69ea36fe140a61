package model

import "time"

// Project is a snapshot of the resources and tasks of one schedule.
type Project struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Revision  uint64     `json:"revision" yaml:"-"`
	UpdatedAt time.Time  `json:"updatedAt" yaml:"-"`
	Resources []Resource `json:"resources" yaml:"resources"`
	Tasks     []Task     `json:"tasks" yaml:"tasks"`
}

// Resource returns the resource with the given id.
func (p *Project) Resource(id ID) (Resource, bool) {
	for _, r := range p.Resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}
