// Package types holds the intent model shared by extraction, routing and the agent loop.
package types

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// INTENT MODEL
// =============================================================================

// IntentType is the user's high-level goal category.
type IntentType string

const (
	IntentSummarize IntentType = "summarize"
	IntentFind      IntentType = "find"
	IntentDraft     IntentType = "draft"
	IntentRemind    IntentType = "remind"
	IntentWeather   IntentType = "weather"
	IntentUnknown   IntentType = "unknown"
)

// ParseIntentType maps a token to an IntentType. Unrecognized tokens resolve to IntentUnknown.
func ParseIntentType(s string) IntentType {
	switch IntentType(strings.ToLower(strings.TrimSpace(s))) {
	case IntentSummarize:
		return IntentSummarize
	case IntentFind:
		return IntentFind
	case IntentDraft:
		return IntentDraft
	case IntentRemind:
		return IntentRemind
	case IntentWeather:
		return IntentWeather
	default:
		return IntentUnknown
	}
}

// Atom returns the token used as a Prolog atom and JSON value.
func (t IntentType) Atom() string {
	return string(ParseIntentType(string(t)))
}

func (t *IntentType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = ParseIntentType(s)
	return nil
}

// SourcePreference restricts which corpus a search intent targets.
type SourcePreference string

const (
	SourceNotes  SourcePreference = "notes"
	SourceFiles  SourcePreference = "files"
	SourceEither SourcePreference = "either"
)

// ParseSourcePreference defaults to SourceEither for anything unrecognized.
func ParseSourcePreference(s string) SourcePreference {
	switch SourcePreference(strings.ToLower(strings.TrimSpace(s))) {
	case SourceNotes:
		return SourceNotes
	case SourceFiles:
		return SourceFiles
	default:
		return SourceEither
	}
}

func (p *SourcePreference) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = ParseSourcePreference(s)
	return nil
}

// WeatherQuery distinguishes current conditions, multi-day forecasts and bad-weather checks.
type WeatherQuery string

const (
	WeatherCurrent    WeatherQuery = "current"
	WeatherForecast   WeatherQuery = "forecast"
	WeatherAssessment WeatherQuery = "assessment"
)

// ParseWeatherQuery returns false for tokens outside the closed set.
func ParseWeatherQuery(s string) (WeatherQuery, bool) {
	switch WeatherQuery(strings.ToLower(strings.TrimSpace(s))) {
	case WeatherCurrent:
		return WeatherCurrent, true
	case WeatherForecast:
		return WeatherForecast, true
	case WeatherAssessment:
		return WeatherAssessment, true
	}
	return "", false
}

// Entities are the slot values extracted from user text. A nil field means "not extracted".
type Entities struct {
	Topic        *string       `json:"topic,omitempty"`
	Query        *string       `json:"query,omitempty"`
	Location     *string       `json:"location,omitempty"`
	Date         *string       `json:"date,omitempty"`
	DateEnd      *string       `json:"date_end,omitempty"` // set only when Date starts a range
	Recipient    *string       `json:"recipient,omitempty"`
	Priority     *string       `json:"priority,omitempty"`
	WeatherQuery *WeatherQuery `json:"weather_query,omitempty"`
}

// Field is one present entity slot in canonical order.
type Field struct {
	Name  string
	Value string
}

// Fields returns the present slots in canonical order: topic, query, location, date, date_end,
// recipient, priority, weather_query.
func (e Entities) Fields() []Field {
	var out []Field
	add := func(name string, v *string) {
		if v != nil {
			out = append(out, Field{Name: name, Value: *v})
		}
	}
	add("topic", e.Topic)
	add("query", e.Query)
	add("location", e.Location)
	add("date", e.Date)
	add("date_end", e.DateEnd)
	add("recipient", e.Recipient)
	add("priority", e.Priority)
	if e.WeatherQuery != nil {
		out = append(out, Field{Name: "weather_query", Value: string(*e.WeatherQuery)})
	}
	return out
}

// Normalize drops empty and whitespace-only strings so absence is always nil.
func (e Entities) Normalize() Entities {
	clean := func(v *string) *string {
		if v == nil || strings.TrimSpace(*v) == "" {
			return nil
		}
		return v
	}
	e.Topic = clean(e.Topic)
	e.Query = clean(e.Query)
	e.Location = clean(e.Location)
	e.Date = clean(e.Date)
	e.DateEnd = clean(e.DateEnd)
	e.Recipient = clean(e.Recipient)
	e.Priority = clean(e.Priority)
	if e.WeatherQuery != nil {
		if _, ok := ParseWeatherQuery(string(*e.WeatherQuery)); !ok {
			e.WeatherQuery = nil
		}
	}
	return e
}

func (e *Entities) UnmarshalJSON(data []byte) error {
	var raw struct {
		Topic        *string `json:"topic"`
		Query        *string `json:"query"`
		Location     *string `json:"location"`
		Date         *string `json:"date"`
		DateEnd      *string `json:"date_end"`
		Recipient    *string `json:"recipient"`
		Priority     *string `json:"priority"`
		WeatherQuery *string `json:"weather_query"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entities{
		Topic:     raw.Topic,
		Query:     raw.Query,
		Location:  raw.Location,
		Date:      raw.Date,
		DateEnd:   raw.DateEnd,
		Recipient: raw.Recipient,
		Priority:  raw.Priority,
	}
	if raw.WeatherQuery != nil {
		if wq, ok := ParseWeatherQuery(*raw.WeatherQuery); ok {
			e.WeatherQuery = &wq
		}
	}
	*e = e.Normalize()
	return nil
}

// Constraints carry routing preferences that are not slot values.
type Constraints struct {
	SourcePreference SourcePreference `json:"source_preference"`
	Safety           string           `json:"safety"`
}

// DefaultConstraints returns Either / "normal".
func DefaultConstraints() Constraints {
	return Constraints{SourcePreference: SourceEither, Safety: "normal"}
}

func (c *Constraints) UnmarshalJSON(data []byte) error {
	var raw struct {
		SourcePreference *SourcePreference `json:"source_preference"`
		Safety           *string           `json:"safety"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = DefaultConstraints()
	if raw.SourcePreference != nil {
		c.SourcePreference = *raw.SourcePreference
	}
	if raw.Safety != nil {
		c.Safety = *raw.Safety
	}
	return nil
}

// IntentPayload is created once per user turn by an extractor.
type IntentPayload struct {
	Intent      IntentType  `json:"intent"`
	Entities    Entities    `json:"entities"`
	Constraints Constraints `json:"constraints"`
}

// NewPayload builds a payload with default constraints.
func NewPayload(intent IntentType, entities Entities) IntentPayload {
	return IntentPayload{
		Intent:      intent,
		Entities:    entities.Normalize(),
		Constraints: DefaultConstraints(),
	}
}

func (p *IntentPayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Intent      IntentType   `json:"intent"`
		Entities    *Entities    `json:"entities"`
		Constraints *Constraints `json:"constraints"`
	}
	raw.Intent = IntentUnknown
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Intent = raw.Intent
	p.Entities = Entities{}
	if raw.Entities != nil {
		p.Entities = *raw.Entities
	}
	p.Constraints = DefaultConstraints()
	if raw.Constraints != nil {
		p.Constraints = *raw.Constraints
	}
	return nil
}

// Str returns a pointer to s, or nil when s is blank.
func Str(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
