// Package encoding renders entities and constraints as rule-engine terms.
//
// Two Prolog syntaxes are produced from the same value: SWI-style dicts
// (_{key:"value"}) and ISO association lists ([key-'value']). A third form,
// Datalog facts, feeds the Mangle backend. For any payload the encodings carry
// exactly the present fields with equal content after un-escaping.
package encoding

import (
	"fmt"
	"strings"

	"intentrouter/internal/types"
)

// EscapeString escapes s for a double-quoted Prolog string.
func EscapeString(s string) string {
	return escapeQuoted(s, '"')
}

// EscapeAtom escapes s for a single-quoted Prolog atom.
func EscapeAtom(s string) string {
	return escapeQuoted(s, '\'')
}

// escapeQuoted backslash-escapes the backslash and the quote character.
// Quoted ISO terms cannot hold raw control characters, so newline, carriage
// return and tab use their letter escapes and the rest use \xHH\.
func escapeQuoted(s string, quote rune) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\\' || r == quote:
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%x\`, r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Dict encodes entities as _{key:"value", ...}.
func Dict(e types.Entities) string {
	fields := e.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf(`%s:"%s"`, f.Name, EscapeString(f.Value)))
	}
	return "_{" + strings.Join(parts, ", ") + "}"
}

// DictConstraints encodes constraints as _{source_preference:"...", safety:"..."}.
func DictConstraints(c types.Constraints) string {
	return fmt.Sprintf(`_{source_preference:"%s", safety:"%s"}`,
		sourceAtom(c.SourcePreference), EscapeString(c.Safety))
}

// List encodes entities as [key-'value', ...]. weather_query is a bare atom.
func List(e types.Entities) string {
	fields := e.Fields()
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Name == "weather_query" {
			parts = append(parts, fmt.Sprintf("%s-%s", f.Name, f.Value))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s-'%s'", f.Name, EscapeAtom(f.Value)))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ListConstraints encodes constraints as [source_preference-x, safety-'...'].
func ListConstraints(c types.Constraints) string {
	return fmt.Sprintf("[source_preference-%s, safety-'%s']",
		sourceAtom(c.SourcePreference), EscapeAtom(c.Safety))
}

// RouteGoal renders route(Intent, Entities, Constraints, Tool, Args) in the given syntax.
func RouteGoal(p types.IntentPayload, s Syntax) string {
	switch s {
	case SyntaxList:
		return fmt.Sprintf("route(%s, %s, %s, Tool, Args)", p.Intent.Atom(), List(p.Entities), ListConstraints(p.Constraints))
	default:
		return fmt.Sprintf("route(%s, %s, %s, Tool, Args)", p.Intent.Atom(), Dict(p.Entities), DictConstraints(p.Constraints))
	}
}

// Syntax selects a Prolog term syntax.
type Syntax int

const (
	SyntaxDict Syntax = iota
	SyntaxList
)

func sourceAtom(p types.SourcePreference) string {
	return string(types.ParseSourcePreference(string(p)))
}

// Facts encodes a payload as Datalog facts:
//
//	intent(/weather).
//	entity(/location, "Seattle").
//	source_preference(/notes).
func Facts(p types.IntentPayload) []types.Fact {
	facts := []types.Fact{
		types.NewFact("intent", types.MangleAtom("/"+p.Intent.Atom())),
		types.NewFact("source_preference", types.MangleAtom("/"+sourceAtom(p.Constraints.SourcePreference))),
	}
	for _, f := range p.Entities.Fields() {
		facts = append(facts, types.NewFact("entity", types.MangleAtom("/"+f.Name), f.Value))
	}
	return facts
}
