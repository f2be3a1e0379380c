package harness

import (
	"testing"

	"github.com/ajramos/snapvariant/internal/variant"
)

// Invocation is one (case, variant) execution. It carries the active variant
// and, when known, the injected identity; nothing about it is shared with
// other invocations.
type Invocation struct {
	t        *testing.T
	h        *Harness
	identity *Identity
	variant  variant.Variant
	state    State

	executed bool
	resolved Identity
	artifact string
}

// T returns the subtest of this invocation
func (inv *Invocation) T() *testing.T {
	return inv.t
}

// Variant returns the active variant
func (inv *Invocation) Variant() variant.Variant {
	return inv.variant
}

// State returns where the invocation is in its lifecycle
func (inv *Invocation) State() State {
	return inv.state
}

// RunVariantTest applies the active variant to content, derives the artifact
// name and hands the capture to the comparer. Any failure fails the subtest
// with the artifact name in the message. An invocation captures once; a
// second call fails with ErrArtifactCollision.
func (inv *Invocation) RunVariantTest(content Content) {
	inv.t.Helper()
	res := inv.h.Execute(inv, content)
	inv.h.report(inv.t, res)
}

func (inv *Invocation) resolveIdentity() (Identity, error) {
	if inv.identity != nil {
		if err := inv.identity.Validate(); err != nil {
			return Identity{}, err
		}
		return *inv.identity, nil
	}
	id, err := ResolveIdentity()
	if err != nil {
		return Identity{}, err
	}
	return id, nil
}
