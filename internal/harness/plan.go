package harness

import (
	"errors"

	"github.com/ajramos/snapvariant/internal/variant"
)

// Plan returns the artifact names ids would produce under set, in case then
// variant order, without running anything. Invalid identities and names
// claimed by two identities are reported together.
func Plan(ids []Identity, set variant.Set) ([]string, error) {
	reg := newRegistry()
	var (
		names []string
		errs  []error
	)
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, v := range set.All() {
			name := ArtifactName(id, v)
			if err := reg.claim(name, id); err != nil {
				errs = append(errs, err)
				continue
			}
			names = append(names, name)
		}
	}
	return names, errors.Join(errs...)
}
