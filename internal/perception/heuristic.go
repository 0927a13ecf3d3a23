package perception

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode"

	"intentrouter/internal/types"
)

// Extractor turns user text into an intent payload.
type Extractor interface {
	Extract(ctx context.Context, text string) (types.IntentPayload, error)
}

// HeuristicExtractor is the keyword-based extractor. It never fails.
type HeuristicExtractor struct {
	// Clock resolves relative weather dates; nil uses types.Now.
	Clock func() time.Time
}

func (h HeuristicExtractor) Extract(_ context.Context, text string) (types.IntentPayload, error) {
	now := types.Now
	if h.Clock != nil {
		now = h.Clock
	}
	return ExtractHeuristicAt(text, now()), nil
}

// ExtractHeuristicAt runs the keyword extractor with an explicit reference date.
func ExtractHeuristicAt(text string, now time.Time) types.IntentPayload {
	t := strings.ToLower(text)
	intent := detectIntent(t)

	var e types.Entities
	e.Topic = extractTopic(text, t, intent)

	if intent == types.IntentWeather {
		e.Location = extractWeatherLocation(text, t)
		wq := detectWeatherQuery(t)
		e.WeatherQuery = &wq
		e.Date, e.DateEnd = extractWeatherDates(t, now)
	} else {
		switch {
		case strings.Contains(t, "tomorrow"):
			e.Date = types.Str("tomorrow")
		case strings.Contains(t, "today"):
			e.Date = types.Str("today")
		}
	}

	if intent == types.IntentDraft {
		e.Recipient = extractRecipient(text, t)
	}

	p := types.NewPayload(intent, e)
	p.Constraints.SourcePreference = detectSource(t)
	return p
}

func detectSource(t string) types.SourcePreference {
	switch {
	case strings.Contains(t, "notes"):
		return types.SourceNotes
	case strings.Contains(t, "files"):
		return types.SourceFiles
	}
	return types.SourceEither
}

func detectIntent(t string) types.IntentType {
	switch {
	case strings.Contains(t, "summarize"):
		return types.IntentSummarize
	case strings.HasPrefix(t, "find"), strings.HasPrefix(t, "search"), strings.Contains(t, "look for"):
		return types.IntentFind
	case strings.Contains(t, "weather"), strings.Contains(t, "forecast"),
		strings.Contains(t, "will it rain"), strings.Contains(t, "will it snow"):
		return types.IntentWeather
	case strings.Contains(t, "email"), strings.HasPrefix(t, "draft"):
		return types.IntentDraft
	case strings.Contains(t, "remind"), strings.Contains(t, "todo"):
		return types.IntentRemind
	}
	return types.IntentUnknown
}

// tail returns the original text from byte offset idx, where idx was found in the
// lowercased copy.
func tail(original, lower string, idx int) string {
	return original[originalOffset(original, idx):]
}

// originalOffset maps a byte offset in strings.ToLower(original) back to
// original. Lowercasing is rune by rune but may change a rune's encoded width
// (İ becomes i̇), so offsets are walked rune by rune.
func originalOffset(original string, lowerIdx int) int {
	n := 0
	for i, r := range original {
		if n >= lowerIdx {
			return i
		}
		n += utf8.RuneLen(unicode.ToLower(r))
	}
	return len(original)
}

func extractTopic(text, t string, intent types.IntentType) *string {
	if idx := strings.Index(t, "about"); idx >= 0 {
		return types.Str(strings.TrimSpace(tail(text, t, idx+len("about"))))
	}
	if intent == types.IntentSummarize || intent == types.IntentFind {
		if _, rest, ok := strings.Cut(text, " "); ok {
			return types.Str(strings.TrimSpace(rest))
		}
	}
	return nil
}

var locationEndMarkers = []string{" today", " tomorrow", " next", " this", "?", "!", "."}

func extractWeatherLocation(text, t string) *string {
	for _, pattern := range []string{" in ", " for "} {
		idx := strings.Index(t, pattern)
		if idx < 0 {
			continue
		}
		start := idx + len(pattern)
		afterLower := t[start:]

		end := len(afterLower)
		for _, marker := range locationEndMarkers {
			if m := strings.Index(afterLower, marker); m >= 0 && m < end {
				end = m
			}
		}
		from, to := originalOffset(text, start), originalOffset(text, start+end)
		if city := strings.TrimSpace(text[from:to]); city != "" {
			return &city
		}
	}
	return nil
}

func detectWeatherQuery(t string) types.WeatherQuery {
	switch {
	case strings.Contains(t, "bad weather"), strings.Contains(t, "expecting"),
		strings.Contains(t, "will it rain"), strings.Contains(t, "will it snow"),
		strings.Contains(t, "expect rain"), strings.Contains(t, "expect snow"):
		return types.WeatherAssessment
	case strings.Contains(t, "forecast"), strings.Contains(t, "next week"),
		strings.Contains(t, "next ") && strings.Contains(t, " days"):
		return types.WeatherForecast
	}
	return types.WeatherCurrent
}

// nextNDays finds "next <N> day(s)" and returns it as "next N days".
func nextNDays(t string) (string, bool) {
	idx := strings.Index(t, "next ")
	if idx < 0 {
		return "", false
	}
	words := strings.Fields(t[idx+len("next "):])
	if len(words) < 2 || !strings.HasPrefix(words[1], "day") {
		return "", false
	}
	if _, err := strconv.ParseUint(words[0], 10, 64); err != nil {
		return "", false
	}
	return "next " + words[0] + " days", true
}

func extractWeatherDates(t string, now time.Time) (date, dateEnd *string) {
	rng := func(phrase string) (*string, *string) {
		start, end := types.ResolveRangeAt(phrase, now)
		return types.Str(start), types.Str(end)
	}

	if strings.Contains(t, "next week") {
		return rng("next week")
	}
	if strings.Contains(t, "this weekend") {
		return rng("this weekend")
	}
	if phrase, ok := nextNDays(t); ok {
		return rng(phrase)
	}
	if strings.Contains(t, "forecast") && !strings.Contains(t, "tomorrow") && !strings.Contains(t, "today") {
		return rng("forecast")
	}
	if strings.Contains(t, "tomorrow") {
		return types.Str(types.ResolveDateAt("tomorrow", now)), nil
	}
	if strings.Contains(t, "today") {
		return types.Str(types.ResolveDateAt("today", now)), nil
	}
	return nil, nil
}

func extractRecipient(text, t string) *string {
	firstWord := func(s string) *string {
		fields := strings.Fields(s)
		if len(fields) == 0 {
			return nil
		}
		word := strings.TrimRightFunc(fields[0], func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		return types.Str(word)
	}

	if idx := strings.Index(t, "email to "); idx >= 0 {
		return firstWord(tail(text, t, idx+len("email to ")))
	}
	if idx := strings.Index(t, "mail to "); idx >= 0 {
		return firstWord(tail(text, t, idx+len("mail to ")))
	}
	if emailIdx := strings.Index(t, "email"); emailIdx >= 0 {
		if toIdx := strings.Index(t[emailIdx:], " to "); toIdx >= 0 {
			return firstWord(tail(text, t, emailIdx+toIdx+len(" to ")))
		}
	}
	return nil
}
