package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ActionKind tags an Action.
type ActionKind string

const (
	ActionCallTool    ActionKind = "call_tool"
	ActionFinalAnswer ActionKind = "final_answer"
	ActionAskUser     ActionKind = "ask_user"
)

// Action is what the model decided to do this turn. Only the fields of its
// Kind are set.
type Action struct {
	Kind     ActionKind
	Tool     string
	Args     map[string]any
	Answer   string
	Question string
}

func (a Action) String() string {
	switch a.Kind {
	case ActionCallTool:
		return fmt.Sprintf("call_tool(%s)", a.Tool)
	case ActionFinalAnswer:
		return "final_answer"
	case ActionAskUser:
		return fmt.Sprintf("ask_user(%q)", a.Question)
	}
	return "action(?)"
}

// ErrNoValidAction is wrapped by every ParseError.
var ErrNoValidAction = errors.New("no valid action found")

// ParseError is returned when a model response holds no usable action.
type ParseError struct {
	Response string
}

func (e *ParseError) Error() string {
	return "failed to parse agent action: " + ErrNoValidAction.Error()
}

func (e *ParseError) Unwrap() error { return ErrNoValidAction }

// rawAction is the untrusted shape decoded from model output. Pointers
// distinguish absent fields from empty ones.
type rawAction struct {
	Action   *string         `json:"action"`
	Tool     *string         `json:"tool"`
	Args     json.RawMessage `json:"args"`
	Answer   *string         `json:"answer"`
	Question *string         `json:"question"`
}

// decodeAction parses one JSON object into an Action, rejecting anything that
// does not match one of the three schemas.
func decodeAction(text string) (Action, bool) {
	var raw rawAction
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return Action{}, false
	}
	if raw.Action == nil {
		return Action{}, false
	}

	switch ActionKind(*raw.Action) {
	case ActionCallTool:
		if raw.Tool == nil || strings.TrimSpace(*raw.Tool) == "" {
			return Action{}, false
		}
		args := map[string]any{}
		if len(raw.Args) > 0 && !bytes.Equal(bytes.TrimSpace(raw.Args), []byte("null")) {
			if err := json.Unmarshal(raw.Args, &args); err != nil {
				return Action{}, false
			}
		}
		return Action{Kind: ActionCallTool, Tool: *raw.Tool, Args: args}, true
	case ActionFinalAnswer:
		if raw.Answer == nil {
			return Action{}, false
		}
		return Action{Kind: ActionFinalAnswer, Answer: *raw.Answer}, true
	case ActionAskUser:
		if raw.Question == nil {
			return Action{}, false
		}
		return Action{Kind: ActionAskUser, Question: *raw.Question}, true
	}
	return Action{}, false
}

// ParseAction extracts the last valid action from model output. Prose around
// the JSON is ignored, as are objects that do not match an action schema.
func ParseAction(text string) (Action, error) {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		if a, ok := decodeAction(s); ok {
			return a, nil
		}
	}

	var (
		best  Action
		found bool
	)
	for pos := 0; pos < len(s); {
		rel := strings.IndexByte(s[pos:], '{')
		if rel < 0 {
			break
		}
		start := pos + rel
		end := matchBrace(s, start)
		if end < 0 {
			pos = start + 1
			continue
		}
		if a, ok := decodeAction(s[start:end]); ok {
			best, found = a, true
		}
		pos = end
	}

	if !found {
		return Action{}, &ParseError{Response: text}
	}
	return best, nil
}

// matchBrace returns the index just past the '}' closing the '{' at start, or
// -1. Braces inside string literals do not count. Scanning bytes is safe
// because UTF-8 never encodes these ASCII delimiters inside a multi-byte rune.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escape := false

	for i := start; i < len(s); i++ {
		b := s[i]
		if inString {
			switch {
			case escape:
				escape = false
			case b == '\\':
				escape = true
			case b == '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
