package types

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntentType(t *testing.T) {
	cases := map[string]IntentType{
		"summarize": IntentSummarize,
		"FIND":      IntentFind,
		" draft ":   IntentDraft,
		"remind":    IntentRemind,
		"weather":   IntentWeather,
		"unknown":   IntentUnknown,
		"dance":     IntentUnknown,
		"":          IntentUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseIntentType(in), "input %q", in)
	}
}

func TestIntentType_UnmarshalUnknownToken(t *testing.T) {
	var it IntentType
	require.NoError(t, json.Unmarshal([]byte(`"teleport"`), &it))
	assert.Equal(t, IntentUnknown, it)
}

func TestEntities_JSONOmitsAbsentFields(t *testing.T) {
	wq := WeatherForecast
	e := Entities{Location: Str("Seattle"), WeatherQuery: &wq}

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"location":"Seattle","weather_query":"forecast"}`, string(data))
	assert.NotContains(t, string(data), "topic")
}

func TestEntities_NormalizeDropsEmptyStrings(t *testing.T) {
	empty := ""
	blank := "   "
	e := Entities{Topic: &empty, Recipient: &blank, Location: Str("Paris")}.Normalize()

	assert.Nil(t, e.Topic)
	assert.Nil(t, e.Recipient)
	require.NotNil(t, e.Location)
	assert.Equal(t, "Paris", *e.Location)
}

func TestEntities_FieldsCanonicalOrder(t *testing.T) {
	wq := WeatherCurrent
	e := Entities{
		WeatherQuery: &wq,
		Priority:     Str("high"),
		Topic:        Str("AI"),
		Date:         Str("2026-02-01"),
	}
	var names []string
	for _, f := range e.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"topic", "date", "priority", "weather_query"}, names)
}

func TestIntentPayload_RoundTrip(t *testing.T) {
	wq := WeatherAssessment
	original := IntentPayload{
		Intent: IntentWeather,
		Entities: Entities{
			Topic:        Str("storm"),
			Query:        Str("rain"),
			Location:     Str("Boston"),
			Date:         Str("2026-03-07"),
			DateEnd:      Str("2026-03-08"),
			Recipient:    Str("ops@example.com"),
			Priority:     Str("high"),
			WeatherQuery: &wq,
		},
		Constraints: Constraints{SourcePreference: SourceNotes, Safety: "strict"},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded IntentPayload
	require.NoError(t, json.Unmarshal(data, &decoded))

	if diff := cmp.Diff(original, decoded); diff != "" {
		t.Fatalf("payload changed across JSON round trip (-want +got):\n%s", diff)
	}
}

func TestIntentPayload_DefaultsWhenSectionsMissing(t *testing.T) {
	var p IntentPayload
	require.NoError(t, json.Unmarshal([]byte(`{"intent":"find"}`), &p))

	assert.Equal(t, IntentFind, p.Intent)
	assert.Equal(t, DefaultConstraints(), p.Constraints)
	assert.Empty(t, p.Entities.Fields())
}

func TestIntentPayload_SerializesLowercaseIntent(t *testing.T) {
	data, err := json.Marshal(NewPayload(IntentSummarize, Entities{Topic: Str("machine learning")}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"intent":"summarize"`)
	assert.Contains(t, string(data), `"source_preference":"either"`)
	assert.Contains(t, string(data), `"safety":"normal"`)
}

func TestDecision_JSONTags(t *testing.T) {
	cases := []struct {
		decision Decision
		want     string
	}{
		{RouteTo("search_notes", map[string]string{"query": "AI", "scope": "user"}),
			`{"type":"route","tool":"search_notes","args":{"query":"AI","scope":"user"}}`},
		{AskFor("What location should I use?"),
			`{"type":"need_info","question":"What location should I use?"}`},
		{RejectWith("No matching route or follow-up found."),
			`{"type":"reject","reason":"No matching route or follow-up found."}`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.decision)
		require.NoError(t, err)
		assert.JSONEq(t, tc.want, string(data))

		var back Decision
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, tc.decision, back)
	}
}

func TestDecision_UnmarshalRejectsUnknownType(t *testing.T) {
	var d Decision
	assert.Error(t, json.Unmarshal([]byte(`{"type":"maybe"}`), &d))
}

func TestFact_StringAndAtom(t *testing.T) {
	f := NewFact("entity", MangleAtom("/topic"), `say "hi"`)
	assert.Equal(t, `entity(/topic, "say \"hi\"").`, f.String())

	atom, err := f.ToAtom()
	require.NoError(t, err)
	assert.Equal(t, "entity", atom.Predicate.Symbol)
	assert.Len(t, atom.Args, 2)
}
