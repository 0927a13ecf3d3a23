package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentrouter/internal/types"
)

// stubBackend returns a fixed result or runs fn.
type stubBackend struct {
	res ProbeResult
	err error
	fn  func(ctx context.Context) (ProbeResult, error)
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Probe(ctx context.Context, _ types.IntentPayload) (ProbeResult, error) {
	if s.fn != nil {
		return s.fn(ctx)
	}
	return s.res, s.err
}

func weatherNoLocation() types.IntentPayload {
	return types.NewPayload(types.IntentWeather, types.Entities{Date: types.Str("2026-01-22")})
}

func TestEngineWithoutBackend(t *testing.T) {
	e := NewEngine(nil)
	assert.Equal(t, "native", e.BackendName())

	d, v := e.Check(context.Background(), weatherNoLocation())
	assert.Equal(t, types.AskFor(QuestionLocation), d)
	assert.Equal(t, VerdictUnavailable, v.Kind)
	assert.NoError(t, v.Err)
}

func TestEngineAgreement(t *testing.T) {
	e := NewEngine(NewNative(nil), WithBackend(&stubBackend{res: Missing("location")}))

	d, v := e.Check(context.Background(), weatherNoLocation())
	assert.Equal(t, types.AskFor(QuestionLocation), d)
	assert.Equal(t, VerdictAgrees, v.Kind)
	assert.Equal(t, "stub", v.Backend)
}

func TestEngineDisagreementKeepsNative(t *testing.T) {
	e := NewEngine(NewNative(nil), WithBackend(&stubBackend{res: Accepted()}))

	d, v := e.Check(context.Background(), weatherNoLocation())
	assert.Equal(t, types.AskFor(QuestionLocation), d)
	assert.Equal(t, VerdictDisagrees, v.Kind)
	assert.Equal(t, "location", v.Field)
}

func TestEngineErrorIsUnavailable(t *testing.T) {
	e := NewEngine(NewNative(nil), WithBackend(&stubBackend{err: ErrUnavailable}))

	d, v := e.Check(context.Background(), weatherNoLocation())
	assert.Equal(t, types.AskFor(QuestionLocation), d)
	assert.Equal(t, VerdictUnavailable, v.Kind)
	assert.True(t, errors.Is(v.Err, ErrUnavailable))
}

func TestEnginePanicIsUnavailable(t *testing.T) {
	e := NewEngine(NewNative(nil), WithBackend(&stubBackend{fn: func(context.Context) (ProbeResult, error) {
		panic("boom")
	}}))

	var (
		d types.Decision
		v Verdict
	)
	require.NotPanics(t, func() { d, v = e.Check(context.Background(), weatherNoLocation()) })
	assert.True(t, d.IsNeedInfo())
	assert.Equal(t, VerdictUnavailable, v.Kind)
	assert.Contains(t, v.Err.Error(), "panicked")
}

func TestEngineProbeTimeout(t *testing.T) {
	slow := &stubBackend{fn: func(ctx context.Context) (ProbeResult, error) {
		<-ctx.Done()
		return ProbeResult{}, ctx.Err()
	}}
	e := NewEngine(NewNative(nil), WithBackend(slow), WithProbeTimeout(20*time.Millisecond))

	start := time.Now()
	d := e.Decide(context.Background(), types.NewPayload(types.IntentFind, types.Entities{Query: types.Str("q")}))
	assert.True(t, d.IsRoute())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestEngineNormalizesEntities(t *testing.T) {
	var seen types.IntentPayload
	spy := &stubBackend{}
	spy.fn = func(context.Context) (ProbeResult, error) { return Missing("topic"), nil }
	e := NewEngine(NewNative(nil), WithBackend(&recordingBackend{inner: spy, seen: &seen}))

	empty := ""
	p := types.IntentPayload{Intent: types.IntentFind, Entities: types.Entities{Topic: &empty}, Constraints: types.DefaultConstraints()}
	_, v := e.Check(context.Background(), p)
	assert.Equal(t, VerdictAgrees, v.Kind)
	assert.Nil(t, seen.Entities.Topic)
}

type recordingBackend struct {
	inner Backend
	seen  *types.IntentPayload
}

func (r *recordingBackend) Name() string { return r.inner.Name() }

func (r *recordingBackend) Probe(ctx context.Context, p types.IntentPayload) (ProbeResult, error) {
	*r.seen = p
	return r.inner.Probe(ctx, p)
}
