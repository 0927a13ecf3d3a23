package router_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentrouter/internal/router"
	"intentrouter/internal/router/datalog"
	"intentrouter/internal/router/prolog"
	"intentrouter/internal/router/swipl"
)

// Every backend must reproduce Native's probe expectation over the shared corpus.
func TestBackendEquivalence(t *testing.T) {
	scenarios, err := router.DefaultScenarios()
	require.NoError(t, err)

	pl, err := prolog.New()
	require.NoError(t, err)
	dl, err := datalog.New()
	require.NoError(t, err)

	backends := []router.Backend{pl, dl}
	if sw := swipl.New(swipl.WithTempDir(t.TempDir())); sw.Available() {
		backends = append(backends, sw)
	} else {
		t.Log("swipl not installed; skipping the subprocess backend")
	}

	for _, b := range backends {
		t.Run(b.Name(), func(t *testing.T) {
			engine := router.NewEngine(router.NewNative(nil), router.WithBackend(b))
			report, err := router.Validate(context.Background(), engine, scenarios, 4)
			require.NoError(t, err)

			for _, res := range report.Results {
				assert.False(t, res.Failed(), "%s: %s %s", res.Scenario.Name, res.Verdict, res.Mismatch)
			}
		})
	}
}
