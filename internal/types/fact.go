package types

import (
	"fmt"
	"strings"

	"github.com/google/mangle/ast"
)

// =============================================================================
// DATALOG FACTS
// =============================================================================

// MangleAtom is a Mangle name constant such as /weather.
type MangleAtom string

// Fact is one ground atom handed to the Datalog backend.
// Plain strings are always string constants; use MangleAtom for names.
type Fact struct {
	Predicate string
	Args      []interface{}
}

// NewFact is shorthand for Fact{Predicate: p, Args: args}.
func NewFact(predicate string, args ...interface{}) Fact {
	return Fact{Predicate: predicate, Args: args}
}

// String returns the Datalog source form of the fact.
func (f Fact) String() string {
	args := make([]string, 0, len(f.Args))
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case MangleAtom:
			args = append(args, string(v))
		case string:
			args = append(args, fmt.Sprintf("%q", v))
		case int:
			args = append(args, fmt.Sprintf("%d", v))
		case int64:
			args = append(args, fmt.Sprintf("%d", v))
		default:
			args = append(args, fmt.Sprintf("%q", fmt.Sprint(v)))
		}
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(args, ", "))
}

// ToAtom converts the fact to a Mangle atom.
func (f Fact) ToAtom() (ast.Atom, error) {
	terms := make([]ast.BaseTerm, 0, len(f.Args))
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case MangleAtom:
			c, err := ast.Name(string(v))
			if err != nil {
				return ast.Atom{}, fmt.Errorf("invalid name constant %q: %w", v, err)
			}
			terms = append(terms, c)
		case string:
			terms = append(terms, ast.String(v))
		case int:
			terms = append(terms, ast.Number(int64(v)))
		case int64:
			terms = append(terms, ast.Number(v))
		default:
			terms = append(terms, ast.String(fmt.Sprint(v)))
		}
	}
	return ast.NewAtom(f.Predicate, terms...), nil
}
