package agent

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"intentrouter/internal/logging"
	"intentrouter/internal/tools"
	"intentrouter/internal/types"
)

// SystemPromptFile is read in place of FallbackSystemPrompt when it exists.
const SystemPromptFile = "prompts/agent_system.md"

const toolsHeader = "## Available Tools"

// FallbackSystemPrompt is used when no prompt file is present.
const FallbackSystemPrompt = `You are an intelligent assistant that helps users by calling tools.
Today's date is {{TODAY}}.

## Available Tools
- get_apple_weather: Weather for location/date
- search_notes: Search user's notes
- search_files: Search user's files
- draft_email: Draft an email
- create_todo: Create a reminder

## Response Format
Respond with JSON only:

1. Call a tool:
   {"action": "call_tool", "tool": "get_apple_weather", "args": {"location": "Seattle", "date": "2026-01-27"}}

2. Final answer:
   {"action": "final_answer", "answer": "Based on the weather data..."}

3. Need more info:
   {"action": "ask_user", "question": "Which city?"}

## Rules
- After tool results, synthesize into a helpful answer
- Be concise but informative
`

// LoadSystemPrompt reads path (falling back to the built-in prompt), fills in
// today's date and rewrites the tools section from defs when defs is non-empty.
func LoadSystemPrompt(path string, defs []tools.ToolDef) string {
	prompt := FallbackSystemPrompt
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			prompt = string(data)
			logging.AgentDebug("loaded agent prompt from %s", path)
		case errors.Is(err, fs.ErrNotExist):
			logging.AgentDebug("agent prompt file not found, using fallback")
		default:
			logging.Get(logging.CategoryAgent).Warn("failed to read %s: %v, using fallback", path, err)
		}
	}

	prompt = strings.ReplaceAll(prompt, "{{TODAY}}", types.Today())
	return replaceToolsSection(prompt, defs)
}

// replaceToolsSection swaps the body of "## Available Tools" (up to the next
// "## " heading) for one line per tool. Prompts without the section are
// returned unchanged.
func replaceToolsSection(prompt string, defs []tools.ToolDef) string {
	if len(defs) == 0 {
		return prompt
	}
	start := strings.Index(prompt, toolsHeader)
	if start < 0 {
		return prompt
	}

	lines := make([]string, 0, len(defs))
	for _, d := range defs {
		lines = append(lines, "- "+d.Name+": "+d.Description)
	}
	section := "\n" + toolsHeader + "\n" + strings.Join(lines, "\n") + "\n"

	after := prompt[start+len(toolsHeader):]
	end := strings.Index(after, "\n## ")
	if end < 0 {
		end = len(after)
	}
	return prompt[:start] + section + after[end:]
}

// withMemory appends recalled exchanges to the system prompt.
func withMemory(prompt, recalled string) string {
	if strings.TrimSpace(recalled) == "" {
		return prompt
	}
	return strings.TrimRight(prompt, "\n") + "\n\n## Relevant Past Conversations\n" + recalled + "\n"
}
