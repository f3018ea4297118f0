package scoring

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Constructor builds a fresh scorer instance. Each scoring pass gets its
// own instances so batch scorers never share primed state across runs.
type Constructor func() Scorer

var factory = struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}{ctors: make(map[string]Constructor)}

// Register adds a named constructor to the factory. Concrete scorers
// self-register from their package init; registering the same name twice
// panics, since that is always a wiring bug.
func Register(name string, ctor Constructor) {
	factory.mu.Lock()
	defer factory.mu.Unlock()

	if _, dup := factory.ctors[name]; dup {
		panic(fmt.Sprintf("scoring: duplicate scorer registration %q", name))
	}
	factory.ctors[name] = ctor
}

// Create builds the scorer registered under name. Unknown names fail with
// an error enumerating every registered name, never a silent default.
func Create(name string) (Scorer, error) {
	factory.mu.RLock()
	ctor, ok := factory.ctors[name]
	factory.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %s)",
			ErrUnknownScorer, name, strings.Join(RegisteredScorers(), ", "))
	}
	return ctor(), nil
}

// RegisteredScorers returns the sorted names of all registered scorers.
func RegisteredScorers() []string {
	factory.mu.RLock()
	defer factory.mu.RUnlock()

	names := make([]string, 0, len(factory.ctors))
	for name := range factory.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
