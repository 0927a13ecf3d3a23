package router

import (
	"context"
	"errors"
	"fmt"

	"intentrouter/internal/types"
)

// ErrUnavailable marks a backend that cannot run (missing binary, unreadable rules).
var ErrUnavailable = errors.New("rule engine unavailable")

// Outcome is the observable result class of a probe.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeMissing  Outcome = "missing"
	OutcomeRejected Outcome = "rejected"
)

// ProbeResult is what a rule engine reports for route/5: success, a specific
// missing_required(Field) signal, or failure.
type ProbeResult struct {
	Outcome Outcome
	Field   string // set only for OutcomeMissing
}

func Accepted() ProbeResult             { return ProbeResult{Outcome: OutcomeAccepted} }
func Rejected() ProbeResult             { return ProbeResult{Outcome: OutcomeRejected} }
func Missing(field string) ProbeResult { return ProbeResult{Outcome: OutcomeMissing, Field: field} }

func (r ProbeResult) String() string {
	if r.Outcome == OutcomeMissing {
		return fmt.Sprintf("missing(%s)", r.Field)
	}
	return string(r.Outcome)
}

// Backend is a rule engine that can be probed. Implementations must build a fresh
// evaluation context per call and must not share mutable state between calls.
type Backend interface {
	Name() string
	Probe(ctx context.Context, p types.IntentPayload) (ProbeResult, error)
}

// VerdictKind classifies a probe compared with Native.
type VerdictKind string

const (
	VerdictAgrees      VerdictKind = "agrees"
	VerdictDisagrees   VerdictKind = "disagrees"
	VerdictUnavailable VerdictKind = "unavailable"
)

// Verdict is the typed result of comparing a backend probe with Native.
type Verdict struct {
	Kind     VerdictKind
	Backend  string
	Field    string // for VerdictDisagrees: the field the disagreement is about
	Expected ProbeResult
	Got      ProbeResult
	Err      error // for VerdictUnavailable
}

func (v Verdict) String() string {
	switch v.Kind {
	case VerdictAgrees:
		return fmt.Sprintf("%s agrees: %s", v.Backend, v.Got)
	case VerdictDisagrees:
		return fmt.Sprintf("%s disagrees on %q: native=%s engine=%s", v.Backend, v.Field, v.Expected, v.Got)
	default:
		if v.Err != nil {
			return fmt.Sprintf("%s unavailable: %v", v.Backend, v.Err)
		}
		return fmt.Sprintf("%s unavailable", v.Backend)
	}
}

// Compare turns an expected and an actual probe result into a verdict.
func Compare(backend string, expected, got ProbeResult) Verdict {
	v := Verdict{Backend: backend, Expected: expected, Got: got}
	if expected == got {
		v.Kind = VerdictAgrees
		return v
	}
	v.Kind = VerdictDisagrees
	switch {
	case got.Outcome == OutcomeMissing:
		v.Field = got.Field
	case expected.Outcome == OutcomeMissing:
		v.Field = expected.Field
	}
	return v
}
