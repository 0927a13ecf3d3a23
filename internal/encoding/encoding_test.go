package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentrouter/internal/types"
)

func TestDict_TopicOnly(t *testing.T) {
	got := Dict(types.Entities{Topic: types.Str("AI notes")})
	assert.Equal(t, `_{topic:"AI notes"}`, got)
	assert.NotContains(t, got, "location")
}

func TestList_TopicOnly(t *testing.T) {
	got := List(types.Entities{Topic: types.Str("AI notes")})
	assert.Equal(t, `[topic-'AI notes']`, got)
	assert.NotContains(t, got, "location")
}

func TestEmptyEntities(t *testing.T) {
	assert.Equal(t, "_{}", Dict(types.Entities{}))
	assert.Equal(t, "[]", List(types.Entities{}))
}

func TestWeatherQueryIsBareAtomInList(t *testing.T) {
	wq := types.WeatherForecast
	e := types.Entities{Location: types.Str("Seattle"), WeatherQuery: &wq}

	assert.Equal(t, `[location-'Seattle', weather_query-forecast]`, List(e))
	assert.Equal(t, `_{location:"Seattle", weather_query:"forecast"}`, Dict(e))
}

func TestEscaping(t *testing.T) {
	e := types.Entities{Topic: types.Str(`O'Brien said "hi" \o/`)}

	assert.Equal(t, `_{topic:"O'Brien said \"hi\" \\o/"}`, Dict(e))
	assert.Equal(t, `[topic-'O\'Brien said "hi" \\o/']`, List(e))
}

func TestEscaping_ControlCharacters(t *testing.T) {
	e := types.Entities{Topic: types.Str("line one\nline\ttwo\x01")}

	assert.Equal(t, `_{topic:"line one\nline\ttwo\x1\"}`, Dict(e))
	assert.Equal(t, `[topic-'line one\nline\ttwo\x1\']`, List(e))
	assert.NotContains(t, List(e), "\n")
}

func TestConstraints(t *testing.T) {
	c := types.Constraints{SourcePreference: types.SourceNotes, Safety: "normal"}
	assert.Equal(t, `_{source_preference:"notes", safety:"normal"}`, DictConstraints(c))
	assert.Equal(t, `[source_preference-notes, safety-'normal']`, ListConstraints(c))
}

func TestRouteGoal(t *testing.T) {
	p := types.NewPayload(types.IntentFind, types.Entities{Query: types.Str("budget")})

	assert.Equal(t,
		`route(find, _{query:"budget"}, _{source_preference:"either", safety:"normal"}, Tool, Args)`,
		RouteGoal(p, SyntaxDict))
	assert.Equal(t,
		`route(find, [query-'budget'], [source_preference-either, safety-'normal'], Tool, Args)`,
		RouteGoal(p, SyntaxList))
}

// Both encodings must carry exactly the present fields with identical content.
func TestEncodingsAgree(t *testing.T) {
	wq := types.WeatherAssessment
	samples := []types.Entities{
		{},
		{Topic: types.Str("AI notes")},
		{Query: types.Str(`C:\Users\me`), Recipient: types.Str("Mary O'Neil")},
		{Location: types.Str(`New "York"`), Date: types.Str("2026-02-01"), DateEnd: types.Str("2026-02-07"), WeatherQuery: &wq},
		{Topic: types.Str("pay rent"), Date: types.Str("2026-02-01"), Priority: types.Str("high")},
		{Topic: types.Str("budget\nnotes"), Recipient: types.Str("tab\tand\rreturn\x7f")},
	}

	for _, e := range samples {
		want := map[string]string{}
		for _, f := range e.Fields() {
			want[f.Name] = f.Value
		}

		dict, err := DecodeDict(Dict(e))
		require.NoError(t, err)
		list, err := DecodeList(List(e))
		require.NoError(t, err)

		assert.Equal(t, want, dict, "dict encoding %s", Dict(e))
		assert.Equal(t, want, list, "list encoding %s", List(e))
	}
}

func TestFacts(t *testing.T) {
	p := types.NewPayload(types.IntentWeather, types.Entities{Location: types.Str("Seattle")})
	p.Constraints.SourcePreference = types.SourceFiles

	var rendered []string
	for _, f := range Facts(p) {
		rendered = append(rendered, f.String())
	}
	assert.Equal(t, []string{
		`intent(/weather).`,
		`source_preference(/files).`,
		`entity(/location, "Seattle").`,
	}, rendered)
}
