package engine

import "fmt"

// Allocator distributes task definitions across the cells of a track
type Allocator struct {
	tasks      []TaskDefinition
	pathLength int
	rng        Random
}

// NewAllocator creates an allocator drawing from rng. A nil rng uses the
// production source.
func NewAllocator(tasks []TaskDefinition, pathLength int, rng Random) (*Allocator, error) {
	if err := ValidateTaskDefinitions(tasks); err != nil {
		return nil, err
	}
	if pathLength < MinPathLength {
		return nil, fmt.Errorf("%w: path length must be at least %d, got %d", ErrInvalidConfiguration, MinPathLength, pathLength)
	}
	if rng == nil {
		rng = NewRandom()
	}

	return &Allocator{
		tasks:      tasks,
		pathLength: pathLength,
		rng:        rng,
	}, nil
}

// Allocate produces one cell per track position using the production source
func Allocate(tasks []TaskDefinition, pathLength int) ([]Cell, error) {
	a, err := NewAllocator(tasks, pathLength, nil)
	if err != nil {
		return nil, err
	}
	return a.Allocate(), nil
}

// AllocateWithSeed is Allocate driven by the seeded LCG
func AllocateWithSeed(tasks []TaskDefinition, pathLength int, seed int64) ([]Cell, error) {
	a, err := NewAllocator(tasks, pathLength, NewLCG(seed))
	if err != nil {
		return nil, err
	}
	return a.Allocate(), nil
}

// Allocate builds the task pool, fits it to the track length, shuffles it and
// maps it onto cells. Positions 0 and pathLength-1 become the start and
// terminal markers.
func (a *Allocator) Allocate() []Cell {
	pool := a.buildPool()

	if len(pool) > a.pathLength {
		pool = a.stratify(pool)
	}

	for len(pool) < a.pathLength {
		pool = append(pool, a.randomTaskName())
	}

	a.shuffle(pool)

	// Each cell's quantity is drawn again here; it is not the draw that sized the pool.
	cells := make([]Cell, len(pool))
	for i, name := range pool {
		cells[i] = Cell{
			TaskName: name,
			Count:    a.countFor(name),
		}
	}

	cells[0] = Cell{}
	cells[len(cells)-1] = Cell{}

	return cells
}

// buildPool appends a randomly sized batch of every task name, in configuration order
func (a *Allocator) buildPool() []string {
	var pool []string
	for _, task := range a.tasks {
		n := randomCount(a.rng, task.MinCount, task.MaxCount)
		for i := 0; i < n; i++ {
			pool = append(pool, task.Name)
		}
	}
	return pool
}

// stratify reduces an oversized pool to pathLength while keeping one
// representative of every task type present. When there are more types than
// cells, representatives are kept in configuration order.
func (a *Allocator) stratify(pool []string) []string {
	present := make(map[string]bool, len(a.tasks))
	for _, name := range pool {
		present[name] = true
	}

	sampled := make([]string, 0, a.pathLength)
	for _, task := range a.tasks {
		if len(sampled) == a.pathLength {
			break
		}
		if present[task.Name] {
			sampled = append(sampled, task.Name)
		}
	}

	for len(sampled) < a.pathLength {
		sampled = append(sampled, a.randomTaskName())
	}

	return sampled
}

// shuffle is a Fisher-Yates shuffle from the last index down to 1
func (a *Allocator) shuffle(pool []string) {
	for i := len(pool) - 1; i > 0; i-- {
		j := randomIndex(a.rng, i+1)
		pool[i], pool[j] = pool[j], pool[i]
	}
}

func (a *Allocator) randomTaskName() string {
	return a.tasks[randomIndex(a.rng, len(a.tasks))].Name
}

func (a *Allocator) countFor(name string) int {
	for _, task := range a.tasks {
		if task.Name == name {
			return randomCount(a.rng, task.MinCount, task.MaxCount)
		}
	}
	return 1
}
