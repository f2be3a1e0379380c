package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/derailed/tview"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ajramos/snapvariant/internal/capture"
	"github.com/ajramos/snapvariant/internal/variant"
)

type mockComparer struct {
	mock.Mock
}

func (m *mockComparer) Compare(_ *testing.T, shot *capture.Snapshot, artifact string) error {
	args := m.Called(shot, artifact)
	return args.Error(0)
}

func textContent(text string) Content {
	return func(v variant.Variant) tview.Primitive {
		tv := tview.NewTextView().SetText(text)
		tv.SetTextColor(v.Palette.Foreground.Color())
		tv.SetBackgroundColor(v.Palette.Background.Color())
		return tv
	}
}

func newTestHarness(t *testing.T, provider variant.Provider, comparer Comparer, opts ...Option) *Harness {
	t.Helper()
	opts = append([]Option{
		WithSurfaceSize(24, 3),
		WithLogger(zerolog.New(zerolog.NewTestWriter(t))),
	}, opts...)
	return New(provider, comparer, opts...)
}

func TestRunSuite_NamesEveryCaseVariantPair(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	rec := NewMemoryRecorder()
	h := newTestHarness(t, variant.Defaults(), cmp, WithRecorder(rec))

	h.RunSuite(t, "ButtonTest",
		Case{Name: "primary", Run: func(inv *Invocation) { inv.RunVariantTest(textContent("OK")) }},
		Case{Name: "secondary", Run: func(inv *Invocation) { inv.RunVariantTest(textContent("Cancel")) }},
		Case{Name: "disabled", Run: func(inv *Invocation) { inv.RunVariantTest(textContent("Nope")) }},
	)

	want := []string{
		"ButtonTest_disabled_dark",
		"ButtonTest_disabled_light",
		"ButtonTest_primary_dark",
		"ButtonTest_primary_light",
		"ButtonTest_secondary_dark",
		"ButtonTest_secondary_light",
	}
	assert.Equal(t, want, h.Artifacts())
	cmp.AssertNumberOfCalls(t, "Compare", 6)
	for _, name := range want {
		cmp.AssertCalled(t, "Compare", mock.Anything, name)
	}

	results := rec.Results()
	require.Len(t, results, 6)
	for _, res := range results {
		assert.Equal(t, Success, res.State, res.Artifact)
		assert.Equal(t, h.RunID(), res.RunID)
		assert.Equal(t, "ButtonTest", res.Identity.Suite)
		assert.NoError(t, res.Err)
	}
}

func TestRunSuite_VariantSubtestNames(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	h := newTestHarness(t, variant.Defaults(), cmp)

	var seen []string
	h.RunSuite(t, "NamingTest", Case{Name: "title", Run: func(inv *Invocation) {
		seen = append(seen, inv.T().Name())
		inv.RunVariantTest(textContent("Title"))
	}})

	assert.Equal(t, []string{
		t.Name() + "/title/light",
		t.Name() + "/title/dark",
	}, seen)
}

func TestRunSuite_FreshStatePerInvocation(t *testing.T) {
	cmp := &mockComparer{}
	var shots []*capture.Snapshot
	cmp.On("Compare", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			shots = append(shots, args.Get(0).(*capture.Snapshot))
		}).
		Return(nil)
	h := newTestHarness(t, variant.Defaults(), cmp)

	var variants []string
	h.RunSuite(t, "IsolationTest", Case{Name: "panel", Run: func(inv *Invocation) {
		assert.Equal(t, NotStarted, inv.State())
		variants = append(variants, inv.Variant().Name)
		inv.RunVariantTest(textContent("Panel"))
		assert.Equal(t, Success, inv.State())
	}})

	assert.Equal(t, []string{"Light", "Dark"}, variants)
	require.Len(t, shots, 2)
	assert.NotSame(t, shots[0], shots[1])
	// blank cells carry each variant's own background
	assert.Contains(t, shots[0].At(23, 2).Style.String(), "bg=#ffffff")
	assert.Contains(t, shots[1].At(23, 2).Style.String(), "bg=#282a36")
}

func TestRun_ResolvesIdentityFromStack(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	h := newTestHarness(t, variant.Defaults(), cmp)

	h.Run(t, func(inv *Invocation) {
		inv.RunVariantTest(textContent("stack"))
	})

	assert.Equal(t, []string{
		"harness_TestRun_ResolvesIdentityFromStack_dark",
		"harness_TestRun_ResolvesIdentityFromStack_light",
	}, h.Artifacts())
}

func captureNamedBody(inv *Invocation) {
	inv.RunVariantTest(textContent("named"))
}

func TestRun_NamedBody(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	h := newTestHarness(t, variant.Defaults(), cmp)

	h.Run(t, captureNamedBody)

	assert.Equal(t, []string{
		"harness_TestRun_NamedBody_dark",
		"harness_TestRun_NamedBody_light",
	}, h.Artifacts())
	cmp.AssertNumberOfCalls(t, "Compare", 2)
}

func TestRun_NamedBodyInParallel(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	rec := NewMemoryRecorder()
	h := newTestHarness(t, variant.Defaults(), cmp, WithParallel(), WithRecorder(rec))

	t.Run("group", func(t *testing.T) {
		h.Run(t, captureNamedBody)
	})

	assert.Equal(t, map[string]State{
		"harness_TestRun_NamedBodyInParallel_light": Success,
		"harness_TestRun_NamedBodyInParallel_dark":  Success,
	}, rec.States())
}

func TestRun_Cardinality(t *testing.T) {
	vs := []variant.Variant{
		variant.Light(),
		variant.Dark(),
		{Name: "HC", Dark: true, Locale: variant.Dark().Locale, Palette: variant.Dark().Palette},
	}
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	rec := NewMemoryRecorder()
	h := newTestHarness(t, variant.Static(vs...), cmp, WithRecorder(rec))

	cases := make([]Case, 0, 4)
	for _, name := range []string{"a", "b", "c", "d"} {
		cases = append(cases, Case{Name: name, Run: func(inv *Invocation) {
			inv.RunVariantTest(textContent(name))
		}})
	}
	h.RunSuite(t, "GridTest", cases...)

	assert.Len(t, rec.Results(), 12)
	assert.Len(t, h.Artifacts(), 12)
	assert.Contains(t, h.Artifacts(), "GridTest_c_hc")
}

func TestRunSuite_Parallel(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	rec := NewMemoryRecorder()
	h := newTestHarness(t, variant.Defaults(), cmp, WithRecorder(rec), WithParallel())

	h.RunSuite(t, "ParallelTest",
		Case{Name: "one", Run: func(inv *Invocation) { inv.RunVariantTest(textContent("1")) }},
		Case{Name: "two", Run: func(inv *Invocation) { inv.RunVariantTest(textContent("2")) }},
	)

	assert.Len(t, rec.States(), 4)
	for name, state := range rec.States() {
		assert.Equal(t, Success, state, name)
	}
}

func TestVariants_EmptySetIsConfigurationError(t *testing.T) {
	cmp := &mockComparer{}
	h := newTestHarness(t, variant.Static(), cmp)

	_, err := h.Variants()
	require.Error(t, err)
	assert.True(t, variant.IsConfigurationError(err))
	assert.ErrorIs(t, err, variant.ErrEmptySet)
	cmp.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
}

func TestExecute_ComparisonFailurePropagates(t *testing.T) {
	mismatch := &capture.MismatchError{Artifact: "Panel_body_dark", Diff: "-a\n+b"}
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, "Panel_body_light").Return(nil)
	cmp.On("Compare", mock.Anything, "Panel_body_dark").Return(mismatch)
	rec := NewMemoryRecorder()
	h := newTestHarness(t, variant.Defaults(), cmp, WithRecorder(rec))
	id := Identity{Suite: "Panel", Case: "body"}

	light := h.Execute(h.newInvocation(t, &id, variant.Light()), textContent("body"))
	dark := h.Execute(h.newInvocation(t, &id, variant.Dark()), textContent("body"))

	assert.Equal(t, Success, light.State)
	assert.Equal(t, ComparisonFailed, dark.State)
	assert.Equal(t, "Panel_body_dark", dark.Artifact)
	assert.True(t, capture.IsMismatch(dark.Err))
	var got *capture.MismatchError
	require.ErrorAs(t, dark.Err, &got)
	assert.Same(t, mismatch, got)

	assert.Equal(t, map[string]State{
		"Panel_body_light": Success,
		"Panel_body_dark":  ComparisonFailed,
	}, rec.States())
}

func TestExecute_SecondCaptureInOneInvocation(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	rec := NewMemoryRecorder()
	h := newTestHarness(t, variant.Defaults(), cmp, WithRecorder(rec))

	inv := h.newInvocation(t, &Identity{Suite: "Panel", Case: "body"}, variant.Light())
	first := h.Execute(inv, textContent("header"))
	second := h.Execute(inv, textContent("footer"))

	assert.Equal(t, Success, first.State)
	assert.Equal(t, IdentityResolutionFailure, second.State)
	assert.ErrorIs(t, second.Err, ErrArtifactCollision)
	assert.Equal(t, "Panel_body_light", second.Artifact)
	assert.Contains(t, second.Err.Error(), "Panel_body_light")
	// the first outcome stands
	assert.Equal(t, Success, inv.State())
	cmp.AssertNumberOfCalls(t, "Compare", 1)
	assert.Len(t, rec.Results(), 2)
}

func TestExecute_RecordsTestName(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	h := newTestHarness(t, variant.Defaults(), cmp)

	res := h.Execute(h.newInvocation(t, &Identity{Suite: "S", Case: "c"}, variant.Dark()), textContent("x"))
	assert.Equal(t, t.Name(), res.Test)
}

func executeDetached(h *Harness, inv *Invocation, ch chan<- Result) {
	ch <- h.Execute(inv, textContent("orphan"))
}

func TestExecute_IdentityResolutionFailure(t *testing.T) {
	cmp := &mockComparer{}
	rec := NewMemoryRecorder()
	h := newTestHarness(t, variant.Defaults(), cmp, WithRecorder(rec))

	inv := h.newInvocation(t, nil, variant.Dark())
	ch := make(chan Result, 1)
	go executeDetached(h, inv, ch)
	res := <-ch

	assert.Equal(t, IdentityResolutionFailure, res.State)
	assert.Equal(t, IdentityResolutionFailure, inv.State())
	assert.ErrorIs(t, res.Err, ErrIdentityUnresolved)
	assert.Equal(t, "<unresolved>_<unresolved>_dark", res.Artifact)
	assert.Equal(t, t.Name(), res.Test)
	assert.Empty(t, h.Artifacts())
	cmp.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
	require.Len(t, rec.Results(), 1)
}

func TestExecute_InvalidExplicitIdentity(t *testing.T) {
	cmp := &mockComparer{}
	h := newTestHarness(t, variant.Defaults(), cmp)

	res := h.Execute(h.newInvocation(t, &Identity{Suite: "Typography", Case: ""}, variant.Light()), textContent("x"))

	assert.Equal(t, IdentityResolutionFailure, res.State)
	assert.ErrorIs(t, res.Err, ErrInvalidIdentity)
	cmp.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
}

func TestExecute_ArtifactCollision(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	h := newTestHarness(t, variant.Defaults(), cmp)

	first := h.Execute(h.newInvocation(t, &Identity{Suite: "A_b", Case: "c"}, variant.Light()), textContent("x"))
	second := h.Execute(h.newInvocation(t, &Identity{Suite: "A", Case: "b_c"}, variant.Light()), textContent("y"))

	assert.Equal(t, Success, first.State)
	assert.Equal(t, IdentityResolutionFailure, second.State)
	assert.ErrorIs(t, second.Err, ErrArtifactCollision)
	cmp.AssertNumberOfCalls(t, "Compare", 1)
}

func TestExecute_NilContentStillCaptures(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, "Blank_frame_light").Return(nil)
	h := newTestHarness(t, variant.Defaults(), cmp)

	res := h.Execute(h.newInvocation(t, &Identity{Suite: "Blank", Case: "frame"}, variant.Light()), nil)
	assert.Equal(t, Success, res.State)
	cmp.AssertExpectations(t)
}

func TestRecorderFailureDoesNotChangeOutcome(t *testing.T) {
	cmp := &mockComparer{}
	cmp.On("Compare", mock.Anything, mock.Anything).Return(nil)
	h := newTestHarness(t, variant.Defaults(), cmp, WithRecorder(failingRecorder{}))

	res := h.Execute(h.newInvocation(t, &Identity{Suite: "S", Case: "c"}, variant.Light()), textContent("x"))
	assert.Equal(t, Success, res.State)
}

type failingRecorder struct{}

func (failingRecorder) Record(_ context.Context, _ Result) error {
	return errors.New("disk full")
}
