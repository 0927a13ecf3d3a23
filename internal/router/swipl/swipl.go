// Package swipl probes the dict-syntax routing rules with an external SWI-Prolog process.
//
// Every probe spawns a fresh `swipl` process, so no interpreter state survives
// between calls.
package swipl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"intentrouter/internal/encoding"
	"intentrouter/internal/logging"
	"intentrouter/internal/router"
	"intentrouter/internal/router/rules"
	"intentrouter/internal/types"
)

// DefaultBinary is looked up on PATH when no binary is configured.
const DefaultBinary = "swipl"

// Backend runs `swipl -q -g <goal> -t halt <rulefile>` per probe.
type Backend struct {
	binary    string
	rulesPath string // empty: embedded router.pl
	tempDir   string
	premium   func() bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithBinary sets the swipl executable (name on PATH or absolute path).
func WithBinary(bin string) Option {
	return func(b *Backend) {
		if bin != "" {
			b.binary = bin
		}
	}
}

// WithRules points the backend at a rule file on disk instead of the embedded one.
func WithRules(path string) Option {
	return func(b *Backend) { b.rulesPath = path }
}

// WithTempDir sets where the embedded rule file is written.
func WithTempDir(dir string) Option {
	return func(b *Backend) { b.tempDir = dir }
}

// WithPremiumWeather asserts premium_weather/0 before probing when fn returns true.
func WithPremiumWeather(fn func() bool) Option {
	return func(b *Backend) { b.premium = fn }
}

// New creates a swipl backend.
func New(opts ...Option) *Backend {
	b := &Backend{binary: DefaultBinary}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Backend) Name() string { return "swipl" }

// Available reports whether the configured binary can be found.
func (b *Backend) Available() bool {
	_, err := exec.LookPath(b.binary)
	return err == nil
}

// Probe runs the goal in a new process and parses its single line of output.
func (b *Backend) Probe(ctx context.Context, p types.IntentPayload) (router.ProbeResult, error) {
	bin, err := exec.LookPath(b.binary)
	if err != nil {
		return router.ProbeResult{}, fmt.Errorf("%w: %s not found: %v", router.ErrUnavailable, b.binary, err)
	}

	path, err := b.ruleFile()
	if err != nil {
		return router.ProbeResult{}, fmt.Errorf("%w: %v", router.ErrUnavailable, err)
	}

	goal := Goal(p, b.premium != nil && b.premium())
	logging.EngineDebug("swipl goal: %s", goal)

	cmd := exec.CommandContext(ctx, bin, "-q", "-g", goal, "-t", "halt", path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return router.ProbeResult{}, fmt.Errorf("swipl probe timed out: %w", ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return router.ProbeResult{}, fmt.Errorf("swipl exited with code %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return router.ProbeResult{}, fmt.Errorf("failed to run swipl: %w", err)
	}

	return ParseOutput(stdout.String())
}

func (b *Backend) ruleFile() (string, error) {
	if b.rulesPath != "" {
		return b.rulesPath, nil
	}
	src, err := rules.Embedded(rules.DictFile)
	if err != nil {
		return "", err
	}
	return rules.Materialize(b.tempDir, rules.DictFile, src)
}

// Goal builds the probe goal for p:
//
//	catch((route(I, E, C, Tool, Args) -> write(accepted) ; write(rejected)),
//	      error(missing_required(F), _), (write('missing '), write(F)))
func Goal(p types.IntentPayload, premium bool) string {
	probe := fmt.Sprintf(
		"catch((%s -> write(accepted) ; write(rejected)), error(missing_required(F), _), (write('missing '), write(F)))",
		encoding.RouteGoal(p, encoding.SyntaxDict),
	)
	if premium {
		probe = "assertz(premium_weather), " + probe
	}
	return probe
}

// ParseOutput maps the goal's output to a probe result.
func ParseOutput(out string) (router.ProbeResult, error) {
	out = strings.TrimSpace(out)
	switch {
	case out == "accepted":
		return router.Accepted(), nil
	case out == "rejected":
		return router.Rejected(), nil
	case strings.HasPrefix(out, "missing "):
		field := strings.TrimSpace(strings.TrimPrefix(out, "missing "))
		if field == "" {
			return router.ProbeResult{}, fmt.Errorf("swipl reported a missing field without a name")
		}
		return router.Missing(field), nil
	}
	return router.ProbeResult{}, fmt.Errorf("unexpected swipl output %q", out)
}
