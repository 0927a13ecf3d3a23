package router

import (
	"context"
	"fmt"
	"time"

	"intentrouter/internal/logging"
	"intentrouter/internal/metrics"
	"intentrouter/internal/types"
)

// DefaultProbeTimeout bounds a single backend probe.
const DefaultProbeTimeout = 5 * time.Second

// Engine is the decision engine. It is constructed by the caller and holds no
// evaluation state between calls.
type Engine struct {
	native       *Native
	backend      Backend
	probeTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithBackend attaches a rule engine to probe. nil keeps the native strategy alone.
func WithBackend(b Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithProbeTimeout overrides DefaultProbeTimeout.
func WithProbeTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.probeTimeout = d
		}
	}
}

// NewEngine builds a decision engine around the native strategy.
func NewEngine(native *Native, opts ...Option) *Engine {
	if native == nil {
		native = NewNative(nil)
	}
	e := &Engine{native: native, probeTimeout: DefaultProbeTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// BackendName returns the probed backend's name, or "native".
func (e *Engine) BackendName() string {
	if e.backend == nil {
		return "native"
	}
	return e.backend.Name()
}

// Decide returns the routing decision for p. It never fails: backend problems
// downgrade to the native result.
func (e *Engine) Decide(ctx context.Context, p types.IntentPayload) types.Decision {
	d, _ := e.Check(ctx, p)
	return d
}

// Check is Decide plus the probe verdict.
func (e *Engine) Check(ctx context.Context, p types.IntentPayload) (types.Decision, Verdict) {
	p.Entities = p.Entities.Normalize()
	decision := e.native.Decide(p)
	metrics.RecordDecision(string(p.Intent), string(decision.Kind))
	logging.RoutingDebug("native decision for %s: %s", p.Intent, decision)

	if e.backend == nil {
		return decision, Verdict{Kind: VerdictUnavailable, Backend: "native"}
	}

	expected := Expect(p, decision)
	timer := logging.StartTimer(logging.CategoryEngine, e.backend.Name()+" probe")
	got, err := e.probe(ctx, p)
	elapsed := timer.StopWithThreshold(e.probeTimeout / 2)

	var verdict Verdict
	if err != nil {
		verdict = Verdict{Kind: VerdictUnavailable, Backend: e.backend.Name(), Expected: expected, Err: err}
		logging.Get(logging.CategoryEngine).Warn("%s probe failed, using native decision: %v", e.backend.Name(), err)
	} else {
		verdict = Compare(e.backend.Name(), expected, got)
		if verdict.Kind == VerdictDisagrees {
			logging.Get(logging.CategoryEngine).Warn("rule engine disagreement for %s: %s", p.Intent, verdict)
		} else {
			logging.EngineDebug("%s", verdict)
		}
	}
	metrics.RecordProbe(e.backend.Name(), string(verdict.Kind), elapsed)
	return decision, verdict
}

func (e *Engine) probe(ctx context.Context, p types.IntentPayload) (res ProbeResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s probe panicked: %v", e.backend.Name(), r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.probeTimeout)
	defer cancel()
	return e.backend.Probe(ctx, p)
}
