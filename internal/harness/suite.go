package harness

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ajramos/snapvariant/internal/variant"
)

// Suite integrates the harness with testify suites. Embed it and set
// Harness, typically in SetupSuite:
//
//	type TypographySuite struct {
//	    harness.Suite
//	}
//
//	func (s *TypographySuite) TestLabel() {
//	    s.RunVariantTest(labelContent)
//	}
//
// produces TypographySuite_TestLabel_light and TypographySuite_TestLabel_dark.
type Suite struct {
	suite.Suite
	Harness *Harness
}

// RunVariantTest runs content under every variant as subtests of the
// current suite method, whose name is resolved from the call stack.
func (s *Suite) RunVariantTest(content Content) {
	t := s.T()
	t.Helper()

	if s.Harness == nil {
		t.Fatal("harness.Suite: Harness is not set")
		return
	}
	h := s.Harness

	set, ok := h.variants(t)
	if !ok {
		return
	}

	// resolved here, on the suite method's goroutine; subtests run on their own
	id, ok := h.resolveCaller(t, set)
	if !ok {
		return
	}

	h.forEachVariant(t, set, func(t *testing.T, v variant.Variant) {
		h.newInvocation(t, &id, v).RunVariantTest(content)
	})
}
