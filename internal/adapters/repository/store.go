// Package repository holds project snapshots for the workload service.
package repository

import (
	"context"
	"time"

	"github.com/okian/loadwatch/internal/domain/model"
)

// Info is the listing row of a stored project.
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Revision  uint64    `json:"revision"`
	Resources int       `json:"resources"`
	Tasks     int       `json:"tasks"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store provides read/write access to project snapshots. Returned projects
// are shared with the store and must not be mutated.
type Store interface {
	// Create stores a new project at revision 1, or one past the last
	// revision of a deleted project with the same id. An empty id is
	// replaced by a generated one. Returns ErrConflict when the id is taken.
	Create(ctx context.Context, p model.Project) (model.Project, error)
	// Put replaces an existing project and bumps its revision.
	// Returns ErrNotFound if the project is unknown.
	Put(ctx context.Context, p model.Project) (model.Project, error)
	// Get returns the current snapshot of a project.
	Get(ctx context.Context, id string) (model.Project, error)
	// Delete removes a project.
	Delete(ctx context.Context, id string) error
	// List returns all projects ordered by id.
	List(ctx context.Context) []Info
	// Count returns the number of stored projects.
	Count(ctx context.Context) int
}
