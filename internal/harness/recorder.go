package harness

import (
	"context"
	"sync"
	"time"

	"github.com/ajramos/snapvariant/internal/ledger"
)

// Result is the outcome of one invocation
type Result struct {
	RunID    string
	Test     string // full go test name of the subtest
	Identity Identity
	Variant  string
	Artifact string
	State    State
	Err      error
	Duration time.Duration
}

// Recorder receives the result of every invocation
type Recorder interface {
	Record(ctx context.Context, res Result) error
}

// MemoryRecorder keeps results in memory, in completion order
type MemoryRecorder struct {
	mu      sync.Mutex
	results []Result
}

// NewMemoryRecorder creates an empty recorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) Record(_ context.Context, res Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
	return nil
}

// Results returns a copy of everything recorded so far
func (m *MemoryRecorder) Results() []Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Result, len(m.results))
	copy(out, m.results)
	return out
}

// States maps artifact name to the state of its latest result
func (m *MemoryRecorder) States() map[string]State {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]State, len(m.results))
	for _, res := range m.results {
		out[res.Artifact] = res.State
	}
	return out
}

// LedgerRecorder persists results in a ledger store
type LedgerRecorder struct {
	store *ledger.Store
}

// NewLedgerRecorder wraps store as a Recorder
func NewLedgerRecorder(store *ledger.Store) *LedgerRecorder {
	return &LedgerRecorder{store: store}
}

func (l *LedgerRecorder) Record(ctx context.Context, res Result) error {
	rec := ledger.Record{
		RunID:    res.RunID,
		Test:     res.Test,
		Artifact: res.Artifact,
		Suite:    res.Identity.Suite,
		Case:     res.Identity.Case,
		Variant:  res.Variant,
		State:    res.State.String(),
		Duration: res.Duration,
	}
	if res.Err != nil {
		rec.Message = res.Err.Error()
	}
	return l.store.Record(ctx, rec)
}

// multiRecorder fans a result out to several recorders
type multiRecorder []Recorder

func (m multiRecorder) Record(ctx context.Context, res Result) error {
	var first error
	for _, r := range m {
		if err := r.Record(ctx, res); err != nil && first == nil {
			first = err
		}
	}
	return first
}
