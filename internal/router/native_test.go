package router

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"intentrouter/internal/types"
)

func wq(w types.WeatherQuery) *types.WeatherQuery { return &w }

func TestNativeDecide(t *testing.T) {
	n := NewNative(nil)

	notes := types.NewPayload(types.IntentSummarize, types.Entities{Topic: types.Str("AI notes")})
	notes.Constraints.SourcePreference = types.SourceNotes

	cases := []struct {
		name    string
		payload types.IntentPayload
		want    types.Decision
	}{
		{
			name:    "summarize from notes",
			payload: notes,
			want:    types.RouteTo(ToolSearchNotes, map[string]string{"query": "AI notes", "scope": "user"}),
		},
		{
			name:    "find falls back to query",
			payload: types.NewPayload(types.IntentFind, types.Entities{Query: types.Str("budget")}),
			want:    types.RouteTo(ToolSearchFiles, map[string]string{"query": "budget", "scope": "user"}),
		},
		{
			name:    "find needs subject",
			payload: types.NewPayload(types.IntentFind, types.Entities{}),
			want:    types.AskFor("What should I find?"),
		},
		{
			name:    "summarize needs subject",
			payload: types.NewPayload(types.IntentSummarize, types.Entities{}),
			want:    types.AskFor("What should I summarize?"),
		},
		{
			name:    "weather needs location",
			payload: types.NewPayload(types.IntentWeather, types.Entities{Date: types.Str("2026-01-22")}),
			want:    types.AskFor(QuestionLocation),
		},
		{
			name: "weather with optional args",
			payload: types.NewPayload(types.IntentWeather, types.Entities{
				Location:     types.Str("Seattle"),
				Date:         types.Str("2026-01-21"),
				DateEnd:      types.Str("2026-01-27"),
				WeatherQuery: wq(types.WeatherForecast),
			}),
			want: types.RouteTo(ToolWeather, map[string]string{
				"location":      "Seattle",
				"date":          "2026-01-21",
				"date_end":      "2026-01-27",
				"weather_query": "forecast",
			}),
		},
		{
			name:    "draft needs recipient",
			payload: types.NewPayload(types.IntentDraft, types.Entities{Topic: types.Str("lunch")}),
			want:    types.AskFor(QuestionRecipient),
		},
		{
			name:    "draft defaults subject",
			payload: types.NewPayload(types.IntentDraft, types.Entities{Recipient: types.Str("bob")}),
			want:    types.RouteTo(ToolDraftEmail, map[string]string{"to": "bob", "subject": "(no subject)", "body": ""}),
		},
		{
			name:    "remind asks topic first",
			payload: types.NewPayload(types.IntentRemind, types.Entities{}),
			want:    types.AskFor(QuestionTopic),
		},
		{
			name:    "remind asks due date",
			payload: types.NewPayload(types.IntentRemind, types.Entities{Topic: types.Str("pay rent")}),
			want:    types.AskFor(QuestionDue),
		},
		{
			name:    "remind defaults priority",
			payload: types.NewPayload(types.IntentRemind, types.Entities{Topic: types.Str("pay rent"), Date: types.Str("2026-02-01")}),
			want:    types.RouteTo(ToolCreateTodo, map[string]string{"title": "pay rent", "due": "2026-02-01", "priority": "normal"}),
		},
		{
			name:    "unknown rejects",
			payload: types.NewPayload(types.IntentUnknown, types.Entities{Topic: types.Str("x")}),
			want:    types.RejectWith(ReasonNoRoute),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Decide(tc.payload)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Decide() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNativePremiumWeather(t *testing.T) {
	p := types.NewPayload(types.IntentWeather, types.Entities{Location: types.Str("Oslo")})

	assert.Equal(t, ToolWeather, NewNative(nil).Decide(p).Tool)
	assert.Equal(t, ToolWeather, (&Native{}).Decide(p).Tool)
	assert.Equal(t, ToolAppleWeather, NewNative(func() bool { return true }).Decide(p).Tool)
}

func TestNativeTreatsBlankAsAbsent(t *testing.T) {
	blank := "  "
	p := types.IntentPayload{
		Intent:      types.IntentWeather,
		Entities:    types.Entities{Location: &blank},
		Constraints: types.DefaultConstraints(),
	}
	assert.Equal(t, types.AskFor(QuestionLocation), NewNative(nil).Decide(p))
}

func TestExpect(t *testing.T) {
	n := NewNative(nil)
	cases := []struct {
		payload types.IntentPayload
		want    ProbeResult
	}{
		{types.NewPayload(types.IntentFind, types.Entities{Query: types.Str("q")}), Accepted()},
		{types.NewPayload(types.IntentFind, types.Entities{}), Missing("topic")},
		{types.NewPayload(types.IntentSummarize, types.Entities{}), Missing("topic")},
		{types.NewPayload(types.IntentWeather, types.Entities{}), Missing("location")},
		{types.NewPayload(types.IntentDraft, types.Entities{}), Missing("recipient")},
		{types.NewPayload(types.IntentRemind, types.Entities{}), Missing("topic")},
		{types.NewPayload(types.IntentRemind, types.Entities{Topic: types.Str("t")}), Missing("date")},
		{types.NewPayload(types.IntentUnknown, types.Entities{}), Rejected()},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Expect(tc.payload, n.Decide(tc.payload)), "%s %+v", tc.payload.Intent, tc.payload.Entities)
	}
}

func TestCompare(t *testing.T) {
	v := Compare("x", Accepted(), Accepted())
	assert.Equal(t, VerdictAgrees, v.Kind)

	v = Compare("x", Missing("location"), Accepted())
	assert.Equal(t, VerdictDisagrees, v.Kind)
	assert.Equal(t, "location", v.Field)

	v = Compare("x", Missing("topic"), Missing("date"))
	assert.Equal(t, "date", v.Field)

	v = Compare("x", Accepted(), Rejected())
	assert.Equal(t, VerdictDisagrees, v.Kind)
	assert.Empty(t, v.Field)
	assert.Contains(t, v.String(), "native=accepted engine=rejected")
}
