package perception

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"intentrouter/internal/logging"
	"intentrouter/internal/types"
)

// ErrNoJSON is returned when model output contains no JSON object.
var ErrNoJSON = errors.New("no JSON object found in LLM output")

// LLMExtractor asks a language model for the intent JSON.
type LLMExtractor struct {
	client     LLMClient
	promptPath string
}

// NewLLMExtractor creates an extractor. promptPath may be empty to use the built-in prompt.
func NewLLMExtractor(client LLMClient, promptPath string) *LLMExtractor {
	return &LLMExtractor{client: client, promptPath: promptPath}
}

func (x *LLMExtractor) Extract(ctx context.Context, text string) (types.IntentPayload, error) {
	prompt := LoadPrompt(x.promptPath, FallbackIntentPrompt)
	resp, err := x.client.Complete(ctx, prompt+"\n\nUSER:\n"+text, "")
	if err != nil {
		return types.IntentPayload{}, fmt.Errorf("failed to call LLM: %w", err)
	}
	logging.PerceptionDebug("LLM raw response: %s", resp.Text)

	raw, err := parseRawPayload(resp.Text)
	if err != nil {
		return types.IntentPayload{}, err
	}
	return raw.normalize(), nil
}

// FallbackExtractor tries Primary and uses Fallback when it fails.
type FallbackExtractor struct {
	Primary  Extractor
	Fallback Extractor
}

func (f FallbackExtractor) Extract(ctx context.Context, text string) (types.IntentPayload, error) {
	p, err := f.Primary.Extract(ctx, text)
	if err == nil {
		return p, nil
	}
	logging.Get(logging.CategoryPerception).Warn("LLM extraction failed, using heuristic extractor: %v", err)
	return f.Fallback.Extract(ctx, text)
}

// =============================================================================
// RAW MODEL OUTPUT
// =============================================================================

// rawIntentPayload is the untrusted shape a model returns. Every field is optional.
type rawIntentPayload struct {
	Intent   *string `json:"intent"`
	Entities *struct {
		Topic        *string `json:"topic"`
		Query        *string `json:"query"`
		Location     *string `json:"location"`
		Date         *string `json:"date"`
		DateEnd      *string `json:"date_end"`
		Recipient    *string `json:"recipient"`
		Priority     *string `json:"priority"`
		WeatherQuery *string `json:"weather_query"`
	} `json:"entities"`
	Constraints *struct {
		SourcePreference *string `json:"source_preference"`
		Safety           *string `json:"safety"`
	} `json:"constraints"`
}

var intentSynonyms = map[string]types.IntentType{
	"summarize":   types.IntentSummarize,
	"summary":     types.IntentSummarize,
	"summarise":   types.IntentSummarize,
	"find":        types.IntentFind,
	"search":      types.IntentFind,
	"lookup":      types.IntentFind,
	"locate":      types.IntentFind,
	"query":       types.IntentFind,
	"draft":       types.IntentDraft,
	"email":       types.IntentDraft,
	"compose":     types.IntentDraft,
	"write_email": types.IntentDraft,
	"remind":      types.IntentRemind,
	"reminder":    types.IntentRemind,
	"todo":        types.IntentRemind,
	"task":        types.IntentRemind,
	"weather":     types.IntentWeather,
	"forecast":    types.IntentWeather,
}

// NormalizeIntent maps a model's intent token, including common synonyms.
func NormalizeIntent(s string) types.IntentType {
	if it, ok := intentSynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return it
	}
	return types.IntentUnknown
}

func (r rawIntentPayload) normalize() types.IntentPayload {
	intent := types.IntentUnknown
	if r.Intent != nil {
		intent = NormalizeIntent(*r.Intent)
	}

	var e types.Entities
	if r.Entities != nil {
		e = types.Entities{
			Topic:     r.Entities.Topic,
			Query:     r.Entities.Query,
			Location:  r.Entities.Location,
			Date:      r.Entities.Date,
			DateEnd:   r.Entities.DateEnd,
			Recipient: r.Entities.Recipient,
			Priority:  r.Entities.Priority,
		}
		if r.Entities.WeatherQuery != nil {
			if wq, ok := types.ParseWeatherQuery(*r.Entities.WeatherQuery); ok {
				e.WeatherQuery = &wq
			}
		}
	}

	p := types.NewPayload(intent, e)
	if r.Constraints != nil {
		if r.Constraints.SourcePreference != nil {
			switch *r.Constraints.SourcePreference {
			case "notes":
				p.Constraints.SourcePreference = types.SourceNotes
			case "files":
				p.Constraints.SourcePreference = types.SourceFiles
			}
		}
		if r.Constraints.Safety != nil {
			p.Constraints.Safety = *r.Constraints.Safety
		}
	}
	return p
}

func parseRawPayload(text string) (rawIntentPayload, error) {
	var raw rawIntentPayload
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "{") && json.Unmarshal([]byte(s), &raw) == nil {
		return raw, nil
	}

	obj, err := FirstJSONObject(s)
	if err != nil {
		return raw, err
	}
	raw = rawIntentPayload{}
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return raw, fmt.Errorf("failed to parse intent JSON: %w", err)
	}
	return raw, nil
}

// FirstJSONObject returns the first brace-balanced object in text. Braces inside
// JSON strings are ignored.
func FirstJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	inString, escaped, depth := false, false, 0
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("no matching '}' in LLM output: %w", ErrNoJSON)
}
