package variant

import "fmt"

// Set is an ordered, closed collection of variants with unique IDs
type Set struct {
	variants []Variant
}

// NewSet validates vs and returns them as a Set in declaration order
func NewSet(vs ...Variant) (Set, error) {
	if len(vs) == 0 {
		return Set{}, &ConfigurationError{Err: ErrEmptySet}
	}

	seen := make(map[string]string, len(vs))
	for _, v := range vs {
		if err := v.validate(); err != nil {
			return Set{}, &ConfigurationError{Err: err}
		}
		if prev, ok := seen[v.ID()]; ok {
			return Set{}, &ConfigurationError{
				Err: fmt.Errorf("%w: %q and %q share id %q", ErrDuplicateVariant, prev, v.Name, v.ID()),
			}
		}
		seen[v.ID()] = v.Name
	}

	out := make([]Variant, len(vs))
	copy(out, vs)
	return Set{variants: out}, nil
}

// Len returns the number of variants
func (s Set) Len() int {
	return len(s.variants)
}

// All returns a copy of the variants in declaration order
func (s Set) All() []Variant {
	out := make([]Variant, len(s.variants))
	copy(out, s.variants)
	return out
}

// Lookup finds a variant by ID
func (s Set) Lookup(id string) (Variant, bool) {
	for _, v := range s.variants {
		if v.ID() == id {
			return v, true
		}
	}
	return Variant{}, false
}

// IDs returns the variant IDs in declaration order
func (s Set) IDs() []string {
	ids := make([]string, 0, len(s.variants))
	for _, v := range s.variants {
		ids = append(ids, v.ID())
	}
	return ids
}
