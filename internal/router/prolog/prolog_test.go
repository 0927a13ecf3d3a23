package prolog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentrouter/internal/router"
	"intentrouter/internal/types"
)

func newBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	b, err := New(opts...)
	require.NoError(t, err)
	return b
}

func TestProbeOutcomes(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		payload types.IntentPayload
		want    router.ProbeResult
	}{
		{"find with query", types.NewPayload(types.IntentFind, types.Entities{Query: types.Str("budget")}), router.Accepted()},
		{"summarize without subject", types.NewPayload(types.IntentSummarize, types.Entities{}), router.Missing("topic")},
		{"weather without location", types.NewPayload(types.IntentWeather, types.Entities{Date: types.Str("2026-01-22")}), router.Missing("location")},
		{"weather with range", types.NewPayload(types.IntentWeather, types.Entities{
			Location: types.Str("Seattle"), Date: types.Str("2026-01-21"), DateEnd: types.Str("2026-01-27"),
		}), router.Accepted()},
		{"draft without recipient", types.NewPayload(types.IntentDraft, types.Entities{Topic: types.Str("lunch")}), router.Missing("recipient")},
		{"remind without anything", types.NewPayload(types.IntentRemind, types.Entities{}), router.Missing("topic")},
		{"remind without date", types.NewPayload(types.IntentRemind, types.Entities{Topic: types.Str("pay rent")}), router.Missing("date")},
		{"remind complete", types.NewPayload(types.IntentRemind, types.Entities{Topic: types.Str("pay rent"), Date: types.Str("2026-02-01")}), router.Accepted()},
		{"unknown", types.NewPayload(types.IntentUnknown, types.Entities{Topic: types.Str("x")}), router.Rejected()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := b.Probe(ctx, tc.payload)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestProbeEscapesQuotes(t *testing.T) {
	b := newBackend(t)
	p := types.NewPayload(types.IntentWeather, types.Entities{Location: types.Str(`O'Hare \ "T1"`)})

	got, err := b.Probe(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, router.Accepted(), got)
}

func TestProbeControlCharacters(t *testing.T) {
	b := newBackend(t)
	p := types.NewPayload(types.IntentDraft, types.Entities{
		Recipient: types.Str("alex\nmorgan"),
		Topic:     types.Str("q3\tplan\x02"),
	})

	got, err := b.Probe(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, router.Accepted(), got)
}

func TestProbePremiumWeather(t *testing.T) {
	b := newBackend(t, WithPremiumWeather(func() bool { return true }))
	p := types.NewPayload(types.IntentWeather, types.Entities{Location: types.Str("Oslo")})

	got, err := b.Probe(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, router.Accepted(), got)
}

func TestProbeIsolation(t *testing.T) {
	b := newBackend(t, WithPremiumWeather(func() bool { return true }))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := b.Probe(ctx, types.NewPayload(types.IntentWeather, types.Entities{}))
		require.NoError(t, err)
		assert.Equal(t, router.Missing("location"), got)
	}
}

func TestProbeCustomRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.pl")
	src := "route(_, _, _, _, _) :- throw(error(missing_required(everything), _)).\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	b := newBackend(t, WithRules(path))
	got, err := b.Probe(context.Background(), types.NewPayload(types.IntentFind, types.Entities{Query: types.Str("q")}))
	require.NoError(t, err)
	assert.Equal(t, router.Missing("everything"), got)
}

func TestProbeUnreadableRules(t *testing.T) {
	b := newBackend(t, WithRules(filepath.Join(t.TempDir(), "missing.pl")))

	_, err := b.Probe(context.Background(), types.NewPayload(types.IntentFind, types.Entities{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrUnavailable)
}
