package logging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(zap.NewNop()) })
	return logs
}

func TestGet_NamesLoggerByCategory(t *testing.T) {
	logs := observe(t)

	Get(CategoryEngine).Warn("probe %s disagreed", "prolog")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "engine", entries[0].LoggerName)
	assert.Equal(t, "probe prolog disagreed", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestConvenienceFunctions(t *testing.T) {
	logs := observe(t)

	Routing("routed to %s", "search_notes")
	AgentDebug("turn %d", 2)
	Tools("executed %s", "get_weather")

	names := []string{}
	for _, e := range logs.All() {
		names = append(names, e.LoggerName)
	}
	assert.Equal(t, []string{"routing", "agent", "tools"}, names)
}

func TestWith_AddsFields(t *testing.T) {
	logs := observe(t)

	Get(CategoryAgent).With("session", "abc").Info("done")

	entries := logs.FilterField(zap.String("session", "abc")).All()
	assert.Len(t, entries, 1)
}

func TestStopWithThreshold(t *testing.T) {
	logs := observe(t)

	timer := StartTimer(CategoryStore, "append")
	timer.start = time.Now().Add(-2 * time.Second)
	timer.StopWithThreshold(time.Second)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "append took")
}

func TestInitialize_VerboseTogglesDebug(t *testing.T) {
	require.NoError(t, Initialize(Options{Verbose: true}))
	assert.True(t, IsVerbose())
	require.NoError(t, Initialize(Options{}))
	assert.False(t, IsVerbose())
	SetLogger(zap.NewNop())
}

func TestNoopBeforeInitialize(t *testing.T) {
	SetLogger(zap.NewNop())
	assert.NotPanics(t, func() {
		Get(CategoryBoot).Error("nothing listens %d", 1)
	})
}
