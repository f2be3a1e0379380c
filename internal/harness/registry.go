package harness

import (
	"fmt"
	"sort"
	"sync"
)

// registry tracks which identity owns each artifact name issued by a harness
type registry struct {
	mu     sync.Mutex
	owners map[string]Identity
}

func newRegistry() *registry {
	return &registry{owners: make(map[string]Identity)}
}

// claim records name for id. Re-claiming by the same identity is allowed
// (go test -count=N, repeated calls); a different identity is a collision.
func (r *registry) claim(name string, id Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.owners[name]; ok && owner != id {
		return fmt.Errorf("%w: %q is produced by both %s and %s", ErrArtifactCollision, name, owner, id)
	}
	r.owners[name] = id
	return nil
}

func (r *registry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.owners))
	for name := range r.owners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
