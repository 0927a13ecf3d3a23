package perception

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"intentrouter/internal/logging"
	"intentrouter/internal/types"
)

// IntentPromptFile is read in place of FallbackIntentPrompt when it exists.
const IntentPromptFile = "prompts/intent_extractor.md"

// FallbackIntentPrompt instructs the model to emit a single intent JSON object.
const FallbackIntentPrompt = `You are an intent extractor for a tool-routing system.
Extract the user's intent and relevant entities from their message.
Output ONLY a single JSON object. No markdown. No explanation.

Today's date is {{TODAY}}.

Schema:
{
  "intent": "summarize|find|draft|remind|weather|unknown",
  "entities": {
    "topic": string or null,
    "query": string or null,
    "location": string or null,
    "date": "YYYY-MM-DD or null",
    "date_end": "YYYY-MM-DD or null",
    "recipient": string or null,
    "priority": string or null,
    "weather_query": "current|forecast|assessment" or null
  },
  "constraints": {
    "source_preference": "notes|files|either",
    "safety": "normal"
  }
}

Rules:
- Choose intent from: summarize, find, draft, remind, weather, unknown
- Convert ALL dates to YYYY-MM-DD format
- For date ranges, set both date (start) and date_end
- weather_query: "current" (default), "forecast" (multi-day), "assessment" (bad weather check)
`

// LoadPrompt reads path, falling back to fallback when the file does not exist or
// cannot be read, and substitutes {{TODAY}} with the current date.
func LoadPrompt(path, fallback string) string {
	prompt := fallback
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			prompt = string(data)
			logging.PerceptionDebug("loaded prompt from %s", path)
		case errors.Is(err, fs.ErrNotExist):
			logging.PerceptionDebug("prompt file %s not found, using built-in prompt", path)
		default:
			logging.Get(logging.CategoryPerception).Warn("failed to read %s: %v, using built-in prompt", path, err)
		}
	}
	return strings.ReplaceAll(prompt, "{{TODAY}}", types.Today())
}
