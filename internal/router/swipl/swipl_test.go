package swipl

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intentrouter/internal/router"
	"intentrouter/internal/types"
)

// fakeSwipl writes a shell script that records its arguments and prints output.
func fakeSwipl(t *testing.T, output string, exitCode int) (bin, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake requires a POSIX shell")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args")
	bin = filepath.Join(dir, "swipl")
	script := "#!/bin/sh\n" +
		"for a in \"$@\"; do printf '%s\\n' \"$a\" >> '" + argsFile + "'; done\n" +
		"printf '" + output + "'\n" +
		"exit " + strconv.Itoa(exitCode) + "\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0755))
	return bin, argsFile
}

func TestParseOutput(t *testing.T) {
	cases := map[string]router.ProbeResult{
		"accepted":         router.Accepted(),
		"rejected\n":       router.Rejected(),
		"missing location": router.Missing("location"),
		"  missing date\n": router.Missing("date"),
	}
	for out, want := range cases {
		got, err := ParseOutput(out)
		require.NoError(t, err, out)
		assert.Equal(t, want, got, out)
	}

	for _, bad := range []string{"", "true", "missing ", "Warning: goal failed"} {
		_, err := ParseOutput(bad)
		assert.Error(t, err, bad)
	}
}

func TestGoal(t *testing.T) {
	p := types.NewPayload(types.IntentWeather, types.Entities{Location: types.Str("Seattle")})

	goal := Goal(p, false)
	assert.True(t, strings.HasPrefix(goal, "catch((route(weather, _{location:\"Seattle\"}"), goal)
	assert.Contains(t, goal, "error(missing_required(F), _)")
	assert.Contains(t, goal, "write('missing ')")

	assert.True(t, strings.HasPrefix(Goal(p, true), "assertz(premium_weather), catch("))
}

func TestProbeWithFakeBinary(t *testing.T) {
	bin, argsFile := fakeSwipl(t, "missing location", 0)
	rulesPath := filepath.Join(t.TempDir(), "router.pl")
	require.NoError(t, os.WriteFile(rulesPath, []byte("% rules"), 0644))

	b := New(WithBinary(bin), WithRules(rulesPath))
	res, err := b.Probe(context.Background(), types.NewPayload(types.IntentWeather, types.Entities{}))
	require.NoError(t, err)
	assert.Equal(t, router.Missing("location"), res)

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	args := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, args, 6)
	assert.Equal(t, "-q", args[0])
	assert.Equal(t, "-g", args[1])
	assert.Contains(t, args[2], "route(weather, _{}")
	assert.Equal(t, []string{"-t", "halt", rulesPath}, args[3:])
}

func TestProbeNonZeroExit(t *testing.T) {
	bin, _ := fakeSwipl(t, "", 1)
	b := New(WithBinary(bin), WithTempDir(t.TempDir()))

	_, err := b.Probe(context.Background(), types.NewPayload(types.IntentFind, types.Entities{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited with code 1")
}

func TestProbeMissingBinary(t *testing.T) {
	b := New(WithBinary(filepath.Join(t.TempDir(), "no-such-swipl")))
	assert.False(t, b.Available())

	_, err := b.Probe(context.Background(), types.NewPayload(types.IntentFind, types.Entities{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, router.ErrUnavailable)
}

func TestProbeRealSwipl(t *testing.T) {
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		t.Skip("swipl not installed")
	}
	b := New(WithTempDir(t.TempDir()))
	native := router.NewNative(nil)

	payloads := []types.IntentPayload{
		types.NewPayload(types.IntentFind, types.Entities{Query: types.Str("budget")}),
		types.NewPayload(types.IntentSummarize, types.Entities{}),
		types.NewPayload(types.IntentWeather, types.Entities{Location: types.Str("O'Hare \"airport\"")}),
		types.NewPayload(types.IntentDraft, types.Entities{Topic: types.Str("lunch")}),
		types.NewPayload(types.IntentRemind, types.Entities{Topic: types.Str("pay rent")}),
		types.NewPayload(types.IntentRemind, types.Entities{Date: types.Str("2026-02-01")}),
		types.NewPayload(types.IntentUnknown, types.Entities{}),
	}
	for _, p := range payloads {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		got, err := b.Probe(ctx, p)
		cancel()
		require.NoError(t, err, p.Intent)
		assert.Equal(t, router.Expect(p, native.Decide(p)), got, p.Intent)
	}
}
