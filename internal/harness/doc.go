// Package harness runs a visual test once per presentation variant and
// names every captured artifact after the test that produced it.
//
// # Usage
//
// Declare cases with an explicit suite name:
//
//	h := harness.New(variant.Defaults(), comparer)
//	h.RunSuite(t, "TypographyTest",
//	    harness.Case{Name: "label", Run: func(inv *harness.Invocation) {
//	        inv.RunVariantTest(labelContent)
//	    }},
//	)
//
// which produces TypographyTest_label_light and TypographyTest_label_dark.
//
// Harness.Run and the testify-based Suite resolve the identity from the call
// stack instead: the walk looks for the nearest TestXxx function (declared in
// a _test.go file) or TestXxx suite method and fails loudly when there is
// none. There is no fallback name.
//
// # Artifact names
//
//	{Suite}_{Case}_{variant}
//
// where variant is the lower-cased variant name. Names are stable across
// runs, which is what baseline comparison relies on. Within a harness, a
// name claimed by two different identities is rejected.
//
// # Invocation states
//
//	NotStarted -> VariantApplied -> IdentityResolved -> Delegated
//	    -> Success | ComparisonFailed | IdentityResolutionFailure
//
// Each invocation is a single attempt; there are no retries.
package harness
