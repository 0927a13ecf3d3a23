// Package datalog probes the routing rules expressed as a Mangle Datalog program.
//
// The program declares which fields each intent requires and derives
// missing(Field, Rank) and accepted(Intent). Each probe evaluates the analyzed
// program against a fresh in-memory fact store holding only that payload's facts.
package datalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	// Register Mangle built-in functions and packages.
	_ "github.com/google/mangle/builtin"
	_ "github.com/google/mangle/packages"

	"intentrouter/internal/encoding"
	"intentrouter/internal/logging"
	"intentrouter/internal/router"
	"intentrouter/internal/router/rules"
	"intentrouter/internal/types"
)

// Backend is the Datalog strategy.
type Backend struct {
	loader    *rules.Loader
	rulesPath string // empty: embedded router.mg
	premium   func() bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithRules loads the program from path instead of the embedded file.
func WithRules(path string) Option {
	return func(b *Backend) { b.rulesPath = path }
}

// WithLoader shares a rule source cache.
func WithLoader(l *rules.Loader) Option {
	return func(b *Backend) { b.loader = l }
}

// WithPremiumWeather adds premium_weather(/yes) when fn returns true.
func WithPremiumWeather(fn func() bool) Option {
	return func(b *Backend) { b.premium = fn }
}

// New creates a Datalog backend.
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

func (b *Backend) Name() string { return "datalog" }

// Probe evaluates the program over the payload's facts.
func (b *Backend) Probe(ctx context.Context, p types.IntentPayload) (router.ProbeResult, error) {
	if err := ctx.Err(); err != nil {
		return router.ProbeResult{}, err
	}

	src, err := b.loader.Load(b.rulesPath, rules.DatalogFile)
	if err != nil {
		return router.ProbeResult{}, fmt.Errorf("%w: %v", router.ErrUnavailable, err)
	}

	facts := encoding.Facts(p)
	if b.premium != nil && b.premium() {
		facts = append(facts, types.NewFact("premium_weather", types.MangleAtom("/yes")))
	}

	result, err := Evaluate(src, facts)
	if err != nil {
		return router.ProbeResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return router.ProbeResult{}, err
	}

	logging.EngineDebug("datalog probe for %s: missing=%v accepted=%v tool=%q", p.Intent, result.Missing, result.Accepted, result.Tool)
	return result.Probe(), nil
}

// =============================================================================
// EVALUATION
// =============================================================================

// MissingField is a derived missing(Field, Rank) fact.
type MissingField struct {
	Field string
	Rank  int64
}

// Result is what one evaluation derived.
type Result struct {
	Missing  []MissingField // sorted by rank, then field
	Accepted bool
	Tool     string // from route_tool/1, empty when none was derived
}

// Probe reduces the result: the lowest-ranked missing field wins, then accepted, else rejected.
func (r Result) Probe() router.ProbeResult {
	if len(r.Missing) > 0 {
		return router.Missing(r.Missing[0].Field)
	}
	if r.Accepted {
		return router.Accepted()
	}
	return router.Rejected()
}

// Evaluate parses and analyzes src, evaluates it over facts in a fresh store and
// reads back missing/2, accepted/1 and route_tool/1.
func Evaluate(src string, facts []types.Fact) (Result, error) {
	unit, err := parse.Unit(strings.NewReader(src))
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to parse rules: %v", router.ErrUnavailable, err)
	}
	programInfo, err := analysis.AnalyzeOneUnit(unit, nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to analyze rules: %v", router.ErrUnavailable, err)
	}

	store := factstore.NewSimpleInMemoryStore()
	for _, f := range facts {
		atom, err := f.ToAtom()
		if err != nil {
			return Result{}, fmt.Errorf("failed to convert fact %s: %w", f, err)
		}
		store.Add(atom)
	}

	if _, err := mengine.EvalProgramWithStats(programInfo, store); err != nil {
		return Result{}, fmt.Errorf("failed to evaluate rules: %w", err)
	}

	var res Result
	for sym := range programInfo.Decls {
		switch {
		case sym.Symbol == "missing" && sym.Arity == 2:
			err = store.GetFacts(ast.NewQuery(sym), func(a ast.Atom) error {
				res.Missing = append(res.Missing, MissingField{
					Field: nameOf(a.Args[0]),
					Rank:  numberOf(a.Args[1]),
				})
				return nil
			})
		case sym.Symbol == "accepted" && sym.Arity == 1:
			err = store.GetFacts(ast.NewQuery(sym), func(ast.Atom) error {
				res.Accepted = true
				return nil
			})
		case sym.Symbol == "route_tool" && sym.Arity == 1:
			err = store.GetFacts(ast.NewQuery(sym), func(a ast.Atom) error {
				res.Tool = nameOf(a.Args[0])
				return nil
			})
		}
		if err != nil {
			return Result{}, fmt.Errorf("failed to read %s: %w", sym.Symbol, err)
		}
	}

	sort.Slice(res.Missing, func(i, j int) bool {
		if res.Missing[i].Rank != res.Missing[j].Rank {
			return res.Missing[i].Rank < res.Missing[j].Rank
		}
		return res.Missing[i].Field < res.Missing[j].Field
	})
	return res, nil
}

func nameOf(term ast.BaseTerm) string {
	c, ok := term.(ast.Constant)
	if !ok {
		return fmt.Sprint(term)
	}
	return strings.TrimPrefix(c.Symbol, "/")
}

func numberOf(term ast.BaseTerm) int64 {
	c, ok := term.(ast.Constant)
	if !ok || c.Type != ast.NumberType {
		return 0
	}
	return c.NumValue
}
