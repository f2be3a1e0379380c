package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ajramos/snapvariant/internal/capture"
	"github.com/ajramos/snapvariant/internal/config"
	"github.com/ajramos/snapvariant/internal/ledger"
	"github.com/ajramos/snapvariant/internal/variant"
)

// Comparer is the capture/comparison collaborator: it records the first
// capture of an artifact as its baseline and compares later ones against it.
type Comparer interface {
	Compare(t *testing.T, shot *capture.Snapshot, artifact string) error
}

// Harness expands tests over a variant set and delegates capture
type Harness struct {
	provider variant.Provider
	comparer Comparer
	recorder Recorder
	logger   zerolog.Logger

	width    int
	height   int
	parallel bool
	audit    bool

	runID    string
	registry *registry
	closers  []io.Closer
}

// Option configures a Harness
type Option func(*Harness)

// WithSurfaceSize sets the capture surface size in cells
func WithSurfaceSize(width, height int) Option {
	return func(h *Harness) {
		h.width, h.height = width, height
	}
}

// WithRecorder adds a recorder receiving every invocation result
func WithRecorder(r Recorder) Option {
	return func(h *Harness) {
		if h.recorder == nil {
			h.recorder = r
			return
		}
		h.recorder = multiRecorder{h.recorder, r}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// WithParallel runs the variant subtests of a case in parallel
func WithParallel() Option {
	return func(h *Harness) {
		h.parallel = true
	}
}

// WithAuditMode records comparison failures without failing the test
func WithAuditMode() Option {
	return func(h *Harness) {
		h.audit = true
	}
}

// WithRunID overrides the generated run identifier
func WithRunID(id string) Option {
	return func(h *Harness) {
		h.runID = id
	}
}

// New creates a harness for the variants of provider, delegating capture to
// comparer.
func New(provider variant.Provider, comparer Comparer, opts ...Option) *Harness {
	h := &Harness{
		provider: provider,
		comparer: comparer,
		logger:   zerolog.Nop(),
		width:    config.DefaultConfig().Width,
		height:   config.DefaultConfig().Height,
		runID:    uuid.NewString(),
		registry: newRegistry(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// FromConfig builds a harness with the golden comparer, the configured
// variants and, when ledger_path is set, a results ledger. Close releases
// the ledger.
func FromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var provider variant.Provider = variant.Defaults()
	if cfg.VariantsFile != "" {
		provider = variant.NewFileProvider(cfg.VariantsFile, cfg.ThemesDir)
	}

	opts := []Option{
		WithSurfaceSize(cfg.Width, cfg.Height),
		WithLogger(logger),
	}
	if cfg.Parallel {
		opts = append(opts, WithParallel())
	}
	if cfg.Audit {
		opts = append(opts, WithAuditMode())
	}

	var store *ledger.Store
	if cfg.LedgerPath != "" {
		var err error
		store, err = ledger.Open(ctx, cfg.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("open results ledger: %w", err)
		}
		opts = append(opts, WithRecorder(NewLedgerRecorder(store)))
	}

	comparer := capture.NewGoldenComparer(cfg.FixtureDir, cfg.Format, cfg.Update, logger)
	h := New(provider, comparer, opts...)
	if store != nil {
		h.closers = append(h.closers, store)
	}
	return h, nil
}

// RunID identifies this harness's results in a recorder
func (h *Harness) RunID() string {
	return h.runID
}

// Artifacts returns every artifact name issued so far, sorted
func (h *Harness) Artifacts() []string {
	return h.registry.names()
}

// Close releases resources opened by FromConfig
func (h *Harness) Close() error {
	var errs []error
	for _, c := range h.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	h.closers = nil
	return errors.Join(errs...)
}

// Case is one named test body executed under every variant
type Case struct {
	Name string
	Run  func(inv *Invocation)
}

// RunSuite runs every case once per variant as subtests case/variant. The
// suite and case names are injected into each invocation, so no stack walk
// takes place.
func (h *Harness) RunSuite(t *testing.T, suite string, cases ...Case) {
	t.Helper()

	set, ok := h.variants(t)
	if !ok {
		return
	}
	for _, c := range cases {
		id := Identity{Suite: suite, Case: c.Name}
		t.Run(c.Name, func(t *testing.T) {
			h.forEachVariant(t, set, func(t *testing.T, v variant.Variant) {
				c.Run(h.newInvocation(t, &id, v))
			})
		})
	}
}

// Run executes body once per variant as subtests named after the variant.
// The identity is resolved from the call stack here, on the caller's
// goroutine, so body may be any function.
func (h *Harness) Run(t *testing.T, body func(inv *Invocation)) {
	t.Helper()

	set, ok := h.variants(t)
	if !ok {
		return
	}
	id, ok := h.resolveCaller(t, set)
	if !ok {
		return
	}
	h.forEachVariant(t, set, func(t *testing.T, v variant.Variant) {
		body(h.newInvocation(t, &id, v))
	})
}

// resolveCaller resolves the identity of the test calling into the harness.
// On failure every variant is reported as an IdentityResolutionFailure and
// t is stopped.
func (h *Harness) resolveCaller(t *testing.T, set variant.Set) (Identity, bool) {
	t.Helper()

	id, err := ResolveIdentity()
	if err == nil {
		return id, true
	}
	for _, v := range set.All() {
		inv := h.newInvocation(t, nil, v)
		res := Result{RunID: h.runID, Test: t.Name(), Variant: v.ID(), Artifact: attemptedName(v)}
		h.finish(inv, res, IdentityResolutionFailure, err, time.Now())
		t.Errorf("visual test %s: %v", res.Artifact, err)
	}
	t.FailNow()
	return Identity{}, false
}

// Variants returns the variant set the harness expands tests over. An empty
// set is a ConfigurationError.
func (h *Harness) Variants() (variant.Set, error) {
	set, err := h.provider.Variants()
	if err != nil {
		return variant.Set{}, err
	}
	if set.Len() == 0 {
		return variant.Set{}, &variant.ConfigurationError{Err: variant.ErrEmptySet}
	}
	return set, nil
}

// variants fails t before anything runs when the set is unusable
func (h *Harness) variants(t testing.TB) (variant.Set, bool) {
	t.Helper()

	set, err := h.Variants()
	if err != nil {
		h.logger.Warn().Err(err).Str("test", t.Name()).Msg("no variants to run, skipping all invocations")
		t.Fatalf("visual test %s not run: %v", t.Name(), err)
		return variant.Set{}, false
	}
	return set, true
}

func (h *Harness) forEachVariant(t *testing.T, set variant.Set, fn func(t *testing.T, v variant.Variant)) {
	for _, v := range set.All() {
		t.Run(v.ID(), func(t *testing.T) {
			if h.parallel {
				t.Parallel()
			}
			fn(t, v)
		})
	}
}

func (h *Harness) newInvocation(t *testing.T, id *Identity, v variant.Variant) *Invocation {
	return &Invocation{
		t:        t,
		h:        h,
		identity: id,
		variant:  v,
		state:    NotStarted,
	}
}

// Execute performs one invocation and returns its result without failing
// the test; RunVariantTest reports the result.
func (h *Harness) Execute(inv *Invocation, content Content) Result {
	start := time.Now()
	res := Result{RunID: h.runID, Test: inv.t.Name(), Variant: inv.variant.ID()}

	// one capture per invocation: a second one would reuse the artifact name
	if inv.executed {
		res.Identity = inv.resolved
		res.Artifact = inv.artifact
		prev := inv.state
		err := fmt.Errorf("%w: %s was already captured by this invocation", ErrArtifactCollision, inv.artifact)
		res = h.finish(inv, res, IdentityResolutionFailure, err, start)
		inv.state = prev
		return res
	}
	inv.executed = true

	frame := applyVariant(inv.variant, content)
	inv.state = VariantApplied

	id, err := inv.resolveIdentity()
	if err != nil {
		res.Artifact = attemptedName(inv.variant)
		return h.finish(inv, res, IdentityResolutionFailure, err, start)
	}
	res.Identity = id
	res.Artifact = ArtifactName(id, inv.variant)
	inv.resolved = id

	if err := h.registry.claim(res.Artifact, id); err != nil {
		return h.finish(inv, res, IdentityResolutionFailure, err, start)
	}
	inv.state = IdentityResolved

	surface, err := capture.NewSurface(h.width, h.height)
	if err != nil {
		return h.finish(inv, res, ComparisonFailed, fmt.Errorf("%s: %w", res.Artifact, err), start)
	}
	defer surface.Close()

	shot := surface.Render(frame)
	inv.state = Delegated

	if err := h.comparer.Compare(inv.t, shot, res.Artifact); err != nil {
		return h.finish(inv, res, ComparisonFailed, err, start)
	}
	return h.finish(inv, res, Success, nil, start)
}

func (h *Harness) finish(inv *Invocation, res Result, state State, err error, start time.Time) Result {
	inv.state = state
	if inv.artifact == "" {
		inv.artifact = res.Artifact
	}
	res.State = state
	res.Err = err
	res.Duration = time.Since(start)

	event := h.logger.Debug()
	if state != Success {
		event = h.logger.Error().Err(err)
	}
	event.Str("run", res.RunID).
		Str("test", res.Test).
		Str("artifact", res.Artifact).
		Str("state", state.String()).
		Dur("duration", res.Duration).
		Msg("visual invocation finished")

	if h.recorder != nil {
		if rerr := h.recorder.Record(inv.t.Context(), res); rerr != nil {
			h.logger.Warn().Err(rerr).Str("artifact", res.Artifact).Msg("failed to record result")
		}
	}
	return res
}

// report turns a failed result into a test failure
func (h *Harness) report(t *testing.T, res Result) {
	t.Helper()

	switch res.State {
	case Success:
	case ComparisonFailed:
		if h.audit {
			t.Logf("visual regression %s: %v (audit mode, not failing)", res.Artifact, res.Err)
			return
		}
		t.Fatalf("visual regression %s: %v", res.Artifact, res.Err)
	default:
		t.Fatalf("visual test %s: %v", res.Artifact, res.Err)
	}
}
