package router

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"intentrouter/internal/logging"
	"intentrouter/internal/types"
)

// ScenarioResult is the outcome of one corpus entry.
type ScenarioResult struct {
	Scenario Scenario
	Decision types.Decision
	Expected ProbeResult // derived from the Native decision
	Verdict  Verdict
	Mismatch string // non-empty when the Native decision contradicts the scenario
}

// Failed reports whether the scenario needs attention. Unavailable verdicts count
// only when a backend was configured.
func (r ScenarioResult) Failed() bool {
	if r.Mismatch != "" {
		return true
	}
	switch r.Verdict.Kind {
	case VerdictDisagrees:
		return true
	case VerdictUnavailable:
		return r.Verdict.Backend != "native"
	}
	return false
}

// Report collects the results of a validation run in corpus order.
type Report struct {
	Backend string
	Results []ScenarioResult
}

// Failures returns the failed results.
func (r Report) Failures() []ScenarioResult {
	var out []ScenarioResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// OK reports whether every scenario passed.
func (r Report) OK() bool {
	return len(r.Failures()) == 0
}

// Validate runs every scenario through the engine with at most limit probes in
// flight. limit <= 0 uses GOMAXPROCS.
func Validate(ctx context.Context, e *Engine, scenarios []Scenario, limit int) (Report, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	timer := logging.StartTimer(logging.CategoryEngine, fmt.Sprintf("validate %d scenarios", len(scenarios)))
	defer timer.Stop()

	results := make([]ScenarioResult, len(scenarios))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, s := range scenarios {
		g.Go(func() error {
			p, err := s.Payload()
			if err != nil {
				return err
			}
			d, v := e.Check(ctx, p)
			res := ScenarioResult{Scenario: s, Decision: d, Expected: Expect(p, d), Verdict: v}
			if s.Expect != "" && res.Expected.String() != s.Expect {
				res.Mismatch = fmt.Sprintf("native yields %s, scenario expects %s", res.Expected, s.Expect)
			} else if s.Tool != "" && d.Tool != s.Tool {
				res.Mismatch = fmt.Sprintf("native routes to %q, scenario expects %q", d.Tool, s.Tool)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return Report{Backend: e.BackendName(), Results: results}, nil
}
