// Package prolog probes the list-syntax routing rules with an embedded ISO Prolog
// interpreter (github.com/ichiban/prolog).
//
// A new interpreter is built for every probe; only the rule source text is reused.
package prolog

import (
	"context"
	"errors"
	"fmt"

	"github.com/ichiban/prolog"

	"intentrouter/internal/encoding"
	"intentrouter/internal/logging"
	"intentrouter/internal/router"
	"intentrouter/internal/router/rules"
	"intentrouter/internal/types"
)

// Backend is the embedded interpreter strategy.
type Backend struct {
	loader    *rules.Loader
	rulesPath string // empty: embedded router_standard.pl
	premium   func() bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithRules loads rules from path instead of the embedded file.
func WithRules(path string) Option {
	return func(b *Backend) { b.rulesPath = path }
}

// WithLoader shares a rule source cache.
func WithLoader(l *rules.Loader) Option {
	return func(b *Backend) { b.loader = l }
}

// WithPremiumWeather asserts premium_weather/0 before probing when fn returns true.
func WithPremiumWeather(fn func() bool) Option {
	return func(b *Backend) { b.premium = fn }
}

// New creates an embedded Prolog backend.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{}
	for _, opt := range opts {
		opt(b)
	}
	if b.loader == nil {
		l, err := rules.NewLoader(0)
		if err != nil {
			return nil, err
		}
		b.loader = l
	}
	return b, nil
}

func (b *Backend) Name() string { return "prolog" }

// Probe consults the rules in a fresh interpreter and runs the catch-wrapped route/5 query.
func (b *Backend) Probe(ctx context.Context, p types.IntentPayload) (router.ProbeResult, error) {
	src, err := b.loader.Load(b.rulesPath, rules.ListFile)
	if err != nil {
		return router.ProbeResult{}, fmt.Errorf("%w: %v", router.ErrUnavailable, err)
	}

	interp := prolog.New(nil, nil)
	if err := interp.ExecContext(ctx, src); err != nil {
		return router.ProbeResult{}, fmt.Errorf("%w: failed to consult rules: %v", router.ErrUnavailable, err)
	}

	query := Query(p, b.premium != nil && b.premium())
	logging.EngineDebug("prolog query: %s", query)

	sol := interp.QuerySolutionContext(ctx, query)
	if err := sol.Err(); err != nil {
		if errors.Is(err, prolog.ErrNoSolutions) {
			return router.ProbeResult{}, fmt.Errorf("probe query has no solutions")
		}
		return router.ProbeResult{}, fmt.Errorf("probe query failed: %w", err)
	}

	var out struct {
		O string
		F string
	}
	if err := sol.Scan(&out); err != nil {
		return router.ProbeResult{}, fmt.Errorf("failed to scan probe result: %w", err)
	}

	switch out.O {
	case "accepted":
		return router.Accepted(), nil
	case "rejected":
		return router.Rejected(), nil
	case "missing":
		return router.Missing(out.F), nil
	}
	return router.ProbeResult{}, fmt.Errorf("unexpected probe outcome %q", out.O)
}

// Query builds the probe query for p. O is bound to accepted, rejected or missing;
// F to the missing field (none otherwise).
func Query(p types.IntentPayload, premium bool) string {
	q := fmt.Sprintf(
		"catch((%s -> O = accepted, F = none ; O = rejected, F = none), error(missing_required(F0), _), (O = missing, F = F0)).",
		encoding.RouteGoal(p, encoding.SyntaxList),
	)
	if premium {
		q = "assertz(premium_weather), " + q
	}
	return q
}
