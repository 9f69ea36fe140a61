package projectgen

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/okian/loadwatch/internal/domain/model"
)

// Generation ranges.
const (
	horizonDays     = 90
	maxTaskDays     = 15
	summaryEvery    = 10 // one in ten tasks is a summary task
	undatedEvery    = 12 // one in twelve tasks has no dates
	legacyEvery     = 5  // one in five tasks uses legacy references
	maxAssignments  = 3
	maxLegacyRefs   = 2
	numericIDsEvery = 4 // one in four projects uses numeric resource ids
)

var (
	epoch        = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	unitChoices  = []float64{0.25, 0.5, 0.5, 0.75, 1, 1}
	capacityPool = []float64{0.5, 1, 1, 1.5, 80, 150}
)

// Generator builds synthetic projects. It is not safe for concurrent use.
type Generator struct {
	src       *rand.ChaCha8
	rnd       *rand.Rand
	resources int
	tasks     int
}

// NewGenerator creates a generator seeded with seed.
func NewGenerator(seed uint64, resources, tasks int) *Generator {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	src := rand.NewChaCha8(key)
	return &Generator{
		src:       src,
		rnd:       rand.New(src),
		resources: resources,
		tasks:     tasks,
	}
}

// Project returns the n-th synthetic project. Project and resource ids are
// uuids drawn from the seeded source, so equal seeds give equal projects.
func (g *Generator) Project(n int) model.Project {
	p := model.Project{
		ID:        g.uuid(),
		Name:      fmt.Sprintf("synthetic-%04d", n),
		Resources: make([]model.Resource, g.resources),
		Tasks:     make([]model.Task, g.tasks),
	}

	numeric := n%numericIDsEvery == numericIDsEvery-1
	for i := range p.Resources {
		id := model.ID(g.uuid())
		if numeric {
			id = model.NormalizeID(i + 1)
		}
		p.Resources[i] = model.Resource{
			ID:       id,
			Name:     fmt.Sprintf("resource-%d", i+1),
			MaxUnits: g.capacity(),
		}
	}
	for i := range p.Tasks {
		p.Tasks[i] = g.task(i, p.Resources)
	}
	return p
}

func (g *Generator) task(i int, resources []model.Resource) model.Task {
	t := model.Task{
		ID:        model.NormalizeID(i + 1),
		Name:      fmt.Sprintf("task-%d", i+1),
		IsSummary: g.rnd.IntN(summaryEvery) == 0,
	}
	if g.rnd.IntN(undatedEvery) != 0 {
		t.Start = epoch.AddDate(0, 0, g.rnd.IntN(horizonDays))
		t.End = t.Start.AddDate(0, 0, g.rnd.IntN(maxTaskDays))
	}

	if g.rnd.IntN(legacyEvery) == 0 {
		for range 1 + g.rnd.IntN(maxLegacyRefs) {
			t.ResourceIDs = append(t.ResourceIDs, g.pick(resources))
		}
		return t
	}
	for range 1 + g.rnd.IntN(maxAssignments) {
		t.Assignments = append(t.Assignments, model.Assignment{
			ResourceID: g.pick(resources),
			Units:      unitChoices[g.rnd.IntN(len(unitChoices))],
		})
	}
	return t
}

// capacity returns nil a third of the time, otherwise a fraction or a
// legacy percentage.
func (g *Generator) capacity() *float64 {
	if g.rnd.IntN(3) == 0 {
		return nil
	}
	v := capacityPool[g.rnd.IntN(len(capacityPool))]
	return &v
}

func (g *Generator) pick(resources []model.Resource) model.ID {
	return resources[g.rnd.IntN(len(resources))].ID
}

func (g *Generator) uuid() string {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// ChaCha8 reads never fail.
		panic(err)
	}
	return id.String()
}
