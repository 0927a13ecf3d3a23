// Package agent implements the multi-turn agent loop.
//
// Each turn the model sees the system prompt plus the full transcript and
// answers with one JSON action. Tool calls are dispatched and folded back into
// the transcript; a final answer or a question for the user ends the run.
//
// Architecture:
//
//	query → [LLMClient → ParseAction → Executor → ConversationState]* → answer
package agent

import (
	"fmt"
	"strings"
)

// Role is the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// label is the transcript prefix shown to the model.
func (r Role) label() string {
	switch r {
	case RoleUser:
		return "USER"
	case RoleAssistant:
		return "ASSISTANT"
	case RoleTool:
		return "TOOL_RESULT"
	}
	return strings.ToUpper(string(r))
}

// ToolResult is the structured outcome attached to a tool message.
type ToolResult struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
	Output  string `json:"output"`
}

// Message is one transcript entry.
type Message struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// ConversationState is the transcript and turn counter of one Run.
type ConversationState struct {
	Messages  []Message
	TurnCount int
	MaxTurns  int
}

// NewConversationState creates an empty state with a turn budget.
func NewConversationState(maxTurns int) *ConversationState {
	return &ConversationState{MaxTurns: maxTurns}
}

func (s *ConversationState) AddUser(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: content})
}

func (s *ConversationState) AddAssistant(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Content: content})
}

// AddToolResult appends a tool message rendered as "Tool <name> returned: <output>".
func (s *ConversationState) AddToolResult(tool string, success bool, output string) {
	s.Messages = append(s.Messages, Message{
		Role:       RoleTool,
		Content:    fmt.Sprintf("Tool %s returned: %s", tool, output),
		ToolResult: &ToolResult{Tool: tool, Success: success, Output: output},
	})
}

// Exhausted reports whether the turn budget is spent.
func (s *ConversationState) Exhausted() bool {
	return s.TurnCount >= s.MaxTurns
}

// LastContent returns the content of the newest message, or "".
func (s *ConversationState) LastContent() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].Content
}

// Transcript renders the conversation for the model: "ROLE:\ncontent" entries
// joined by blank lines.
func (s *ConversationState) Transcript() string {
	parts := make([]string, 0, len(s.Messages))
	for _, m := range s.Messages {
		parts = append(parts, m.Role.label()+":\n"+m.Content)
	}
	return strings.Join(parts, "\n\n")
}
