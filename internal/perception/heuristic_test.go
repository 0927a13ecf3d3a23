package perception

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentrouter/internal/types"
)

// Wednesday.
var refNow = time.Date(2026, 1, 21, 9, 30, 0, 0, time.Local)

func wqPtr(w types.WeatherQuery) *types.WeatherQuery { return &w }

func TestHeuristicSummarize(t *testing.T) {
	p := ExtractHeuristicAt("summarize my notes about AI", refNow)
	assert.Equal(t, types.IntentSummarize, p.Intent)
	assert.Equal(t, "AI", types.Deref(p.Entities.Topic))
	assert.Equal(t, types.SourceNotes, p.Constraints.SourcePreference)
}

func TestHeuristicFindTopicAfterFirstWord(t *testing.T) {
	p := ExtractHeuristicAt("find the budget spreadsheet in my files", refNow)
	assert.Equal(t, types.IntentFind, p.Intent)
	assert.Equal(t, "the budget spreadsheet in my files", types.Deref(p.Entities.Topic))
	assert.Equal(t, types.SourceFiles, p.Constraints.SourcePreference)
	assert.Nil(t, p.Entities.Location, "locations are only extracted for weather")
}

func TestHeuristicLookFor(t *testing.T) {
	p := ExtractHeuristicAt("please look for receipts", refNow)
	assert.Equal(t, types.IntentFind, p.Intent)
}

func TestHeuristicWeather(t *testing.T) {
	cases := []struct {
		text     string
		location string
		query    types.WeatherQuery
		date     string
		dateEnd  string
	}{
		{"what's the weather tomorrow", "", types.WeatherCurrent, "2026-01-22", ""},
		{"what's the weather in London tomorrow", "London", types.WeatherCurrent, "2026-01-22", ""},
		{"forecast for Seattle next week", "Seattle", types.WeatherForecast, "2026-01-21", "2026-01-27"},
		{"bad weather in Chicago tomorrow", "Chicago", types.WeatherAssessment, "2026-01-22", ""},
		{"will it rain in Boston this weekend", "Boston", types.WeatherAssessment, "2026-01-24", "2026-01-25"},
		{"weather in New York next 3 days", "New York", types.WeatherForecast, "2026-01-21", "2026-01-23"},
		{"weather in Paris today?", "Paris", types.WeatherCurrent, "2026-01-21", ""},
		{"forecast in Denver", "Denver", types.WeatherForecast, "2026-01-21", "2026-01-27"},
		{"weather please", "", types.WeatherCurrent, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			p := ExtractHeuristicAt(tc.text, refNow)
			require.Equal(t, types.IntentWeather, p.Intent)
			assert.Equal(t, tc.location, types.Deref(p.Entities.Location))
			assert.Equal(t, wqPtr(tc.query), p.Entities.WeatherQuery)
			assert.Equal(t, tc.date, types.Deref(p.Entities.Date))
			assert.Equal(t, tc.dateEnd, types.Deref(p.Entities.DateEnd))
		})
	}
}

func TestHeuristicDraftRecipient(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"send an email to Mary", "Mary"},
		{"I want you to send an email to John about the project", "John"},
		{"draft a mail to Sam, thanks", "Sam"},
		{"email the team to Alex!", "Alex"},
		{"draft a note", ""},
	}
	for _, tc := range cases {
		p := ExtractHeuristicAt(tc.text, refNow)
		assert.Equal(t, types.IntentDraft, p.Intent, tc.text)
		assert.Equal(t, tc.want, types.Deref(p.Entities.Recipient), tc.text)
	}

	p := ExtractHeuristicAt("I want you to send an email to John about the project", refNow)
	assert.Equal(t, "the project", types.Deref(p.Entities.Topic))
}

func TestHeuristicRemindKeepsRawDate(t *testing.T) {
	p := ExtractHeuristicAt("remind me about the dentist tomorrow", refNow)
	assert.Equal(t, types.IntentRemind, p.Intent)
	assert.Equal(t, "the dentist tomorrow", types.Deref(p.Entities.Topic))
	assert.Equal(t, "tomorrow", types.Deref(p.Entities.Date))
	assert.Nil(t, p.Entities.WeatherQuery)
}

func TestHeuristicUnknown(t *testing.T) {
	p := ExtractHeuristicAt("hello world", refNow)
	assert.Equal(t, types.IntentUnknown, p.Intent)
	assert.Nil(t, p.Entities.Topic)
	assert.Equal(t, types.DefaultConstraints(), p.Constraints)
}

func TestHeuristicExtractorUsesClock(t *testing.T) {
	h := HeuristicExtractor{Clock: func() time.Time { return refNow }}
	p, err := h.Extract(context.Background(), "weather in Rome tomorrow")
	require.NoError(t, err)
	assert.Equal(t, "2026-01-22", types.Deref(p.Entities.Date))
}

func TestHeuristicKeepsOriginalCaseWhenLoweringChangesWidth(t *testing.T) {
	p := ExtractHeuristicAt("weather in İstanbul today", refNow)
	assert.Equal(t, "İstanbul", types.Deref(p.Entities.Location))
	assert.Equal(t, "2026-01-21", types.Deref(p.Entities.Date))

	p = ExtractHeuristicAt("İzmir trip: draft an email to Özge about the İzmir plan", refNow)
	assert.Equal(t, types.IntentDraft, p.Intent)
	assert.Equal(t, "Özge", types.Deref(p.Entities.Recipient))
	assert.Equal(t, "the İzmir plan", types.Deref(p.Entities.Topic))
}

func TestOriginalOffset(t *testing.T) {
	s := "İa"
	lower := strings.ToLower(s)
	require.Equal(t, 4, len(lower))
	assert.Equal(t, 0, originalOffset(s, 0))
	assert.Equal(t, 2, originalOffset(s, 3))
	assert.Equal(t, len(s), originalOffset(s, len(lower)))
	assert.Equal(t, "a", tail(s, lower, 3))
}
