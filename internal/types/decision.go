package types

import (
	"encoding/json"
	"fmt"
)

// DecisionKind tags a Decision.
type DecisionKind string

const (
	DecisionRoute    DecisionKind = "route"
	DecisionNeedInfo DecisionKind = "need_info"
	DecisionReject   DecisionKind = "reject"
)

// Decision is the routing result: exactly one of Route, NeedInfo or Reject.
// Construct with RouteTo, AskFor or RejectWith.
type Decision struct {
	Kind     DecisionKind
	Tool     string
	Args     map[string]string
	Question string
	Reason   string
}

// RouteTo builds a Route decision.
func RouteTo(tool string, args map[string]string) Decision {
	if args == nil {
		args = map[string]string{}
	}
	return Decision{Kind: DecisionRoute, Tool: tool, Args: args}
}

// AskFor builds a NeedInfo decision.
func AskFor(question string) Decision {
	return Decision{Kind: DecisionNeedInfo, Question: question}
}

// RejectWith builds a Reject decision.
func RejectWith(reason string) Decision {
	return Decision{Kind: DecisionReject, Reason: reason}
}

func (d Decision) IsRoute() bool    { return d.Kind == DecisionRoute }
func (d Decision) IsNeedInfo() bool { return d.Kind == DecisionNeedInfo }
func (d Decision) IsReject() bool   { return d.Kind == DecisionReject }

// ArgsAny widens Args for the tool executor.
func (d Decision) ArgsAny() map[string]any {
	out := make(map[string]any, len(d.Args))
	for k, v := range d.Args {
		out[k] = v
	}
	return out
}

func (d Decision) String() string {
	switch d.Kind {
	case DecisionRoute:
		return fmt.Sprintf("route(%s, %v)", d.Tool, d.Args)
	case DecisionNeedInfo:
		return fmt.Sprintf("need_info(%q)", d.Question)
	case DecisionReject:
		return fmt.Sprintf("reject(%q)", d.Reason)
	}
	return "decision(?)"
}

type decisionWire struct {
	Type     DecisionKind      `json:"type"`
	Tool     string            `json:"tool,omitempty"`
	Args     map[string]string `json:"args,omitempty"`
	Question string            `json:"question,omitempty"`
	Reason   string            `json:"reason,omitempty"`
}

func (d Decision) MarshalJSON() ([]byte, error) {
	w := decisionWire{Type: d.Kind}
	switch d.Kind {
	case DecisionRoute:
		w.Tool = d.Tool
		w.Args = d.Args
		if w.Args == nil {
			w.Args = map[string]string{}
		}
	case DecisionNeedInfo:
		w.Question = d.Question
	case DecisionReject:
		w.Reason = d.Reason
	default:
		return nil, fmt.Errorf("unknown decision kind %q", d.Kind)
	}
	return json.Marshal(w)
}

func (d *Decision) UnmarshalJSON(data []byte) error {
	var w decisionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case DecisionRoute:
		*d = RouteTo(w.Tool, w.Args)
	case DecisionNeedInfo:
		*d = AskFor(w.Question)
	case DecisionReject:
		*d = RejectWith(w.Reason)
	default:
		return fmt.Errorf("unknown decision type %q", w.Type)
	}
	return nil
}
