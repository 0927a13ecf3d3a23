package agent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentrouter/internal/tools"
	"intentrouter/internal/types"
)

func fixClock(t *testing.T) {
	t.Helper()
	prev := types.Now
	types.Now = func() time.Time { return time.Date(2026, 1, 21, 9, 0, 0, 0, time.Local) }
	t.Cleanup(func() { types.Now = prev })
}

func TestLoadSystemPrompt_Fallback(t *testing.T) {
	fixClock(t)

	p := LoadSystemPrompt("", nil)
	assert.Contains(t, p, "Today's date is 2026-01-21.")
	assert.Contains(t, p, "- get_apple_weather: Weather for location/date")
	assert.NotContains(t, p, "{{TODAY}}")
}

func TestLoadSystemPrompt_MissingFileFallsBack(t *testing.T) {
	fixClock(t)

	p := LoadSystemPrompt(filepath.Join(t.TempDir(), "absent.md"), nil)
	assert.Contains(t, p, "## Response Format")
}

func TestLoadSystemPrompt_FromFile(t *testing.T) {
	fixClock(t)
	path := filepath.Join(t.TempDir(), "agent_system.md")
	require.NoError(t, os.WriteFile(path, []byte("Custom prompt for {{TODAY}}"), 0o644))

	assert.Equal(t, "Custom prompt for 2026-01-21", LoadSystemPrompt(path, nil))
}

func TestReplaceToolsSection(t *testing.T) {
	defs := []tools.ToolDef{
		{Name: "lookup", Description: "Look things up"},
		{Name: "notify", Description: "Send a note"},
	}

	p := replaceToolsSection(FallbackSystemPrompt, defs)
	assert.Contains(t, p, "## Available Tools\n- lookup: Look things up\n- notify: Send a note\n")
	assert.NotContains(t, p, "search_notes")
	assert.Contains(t, p, "\n## Response Format")
	assert.Equal(t, 1, strings.Count(p, "## Available Tools"))

	tail := "Intro\n## Available Tools\n- old: gone"
	assert.Equal(t, "Intro\n\n## Available Tools\n- lookup: Look things up\n- notify: Send a note\n", replaceToolsSection(tail, defs))

	assert.Equal(t, "no section", replaceToolsSection("no section", defs))
	assert.Equal(t, FallbackSystemPrompt, replaceToolsSection(FallbackSystemPrompt, nil))
}

func TestWithMemory(t *testing.T) {
	assert.Equal(t, "base\n", withMemory("base\n", "  "))
	assert.Equal(t, "base\n\n## Relevant Past Conversations\nQ: a\nA: b\n", withMemory("base\n", "Q: a\nA: b"))
}
