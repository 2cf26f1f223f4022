package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/KOMKZ/go-yogan-event/event"
	"github.com/KOMKZ/go-yogan-event/logger"
	"github.com/KOMKZ/go-yogan-event/scenario"
	"github.com/KOMKZ/go-yogan-event/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
logger:
  enable_console: false

event:
  pool_size: 4

scenario:
  events: [user.created, user.deleted]
  rules:
    - event: user.created
      phase: filter
      action: tag
      tag: audit
    - event: user.created
      phase: handler
      priority: 10
      action: tag
      tag: welcome
    - event: user.deleted
      phase: filter
      action: consume
    - event: user.banned
      phase: handler
      action: fail
      message: banned
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return testutil.ExecuteCommand(context.Background(), newRootCmd(), args...)
}

func TestDispatch_ConfiguredEvents(t *testing.T) {
	dir := testutil.WriteConfig(t, testConfig)

	out, err := execute(t, "dispatch", "--config", dir, "--env", "test")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "OUTCOME")
	assert.Contains(t, lines[1], "user.created")
	assert.Contains(t, lines[1], "audit,welcome")
	assert.Contains(t, lines[2], "consumed_capture")
}

func TestDispatch_JSONArgs(t *testing.T) {
	dir := testutil.WriteConfig(t, testConfig)

	out, err := execute(t, "dispatch", "-c", dir, "--env", "test", "-o", "json", "user.banned", "user.created")
	require.NoError(t, err)

	var reports []scenario.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, event.OutcomeError, reports[0].Outcome)
	assert.Contains(t, reports[0].Error, "banned")
	assert.Equal(t, event.OutcomeCompleted, reports[1].Outcome)
	assert.Equal(t, []string{"audit", "welcome"}, reports[1].Tags)
}

func TestDispatch_Strict(t *testing.T) {
	dir := testutil.WriteConfig(t, testConfig)

	_, err := execute(t, "dispatch", "-c", dir, "--env", "test", "--strict", "user.banned")
	assert.Error(t, err)
}

func TestDispatch_Errors(t *testing.T) {
	t.Run("no events", func(t *testing.T) {
		dir := testutil.WriteConfig(t, "logger:\n  enable_console: false\n")
		_, err := execute(t, "dispatch", "-c", dir, "--env", "test")
		assert.ErrorContains(t, err, "no events")
	})

	t.Run("disabled", func(t *testing.T) {
		dir := testutil.WriteConfig(t, "logger:\n  enable_console: false\nevent:\n  enabled: false\n")
		_, err := execute(t, "dispatch", "-c", dir, "--env", "test", "x")
		assert.ErrorIs(t, err, errEventDisabled)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := execute(t, "dispatch", "-o", "yaml", "x")
		assert.ErrorContains(t, err, "unknown format")
	})

	t.Run("invalid rule", func(t *testing.T) {
		dir := testutil.WriteConfig(t, `
logger:
  enable_console: false
scenario:
  rules:
    - event: e
      phase: sideways
      action: log
`)
		_, err := execute(t, "dispatch", "-c", dir, "--env", "test", "e")
		assert.Error(t, err)
	})
}

func TestBench_Command(t *testing.T) {
	dir := testutil.WriteConfig(t, testConfig)

	out, err := execute(t, "bench", "-c", dir, "--env", "test", "-n", "200", "-l", "3", "--consume-every", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "workers:        4\n")
	assert.Contains(t, out, "consumed:       20\n")
	assert.Contains(t, out, "completed:      180\n")
	assert.Contains(t, out, "listener calls: 540\n")
}

func TestRunBench(t *testing.T) {
	d := event.NewDispatcher(event.WithLogger(logger.NewNop()))

	result, err := runBench(context.Background(), d, benchOptions{
		Workers:      8,
		Events:       1000,
		Listeners:    4,
		ConsumeEvery: 4,
		Name:         "bench.event",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 250, result.Consumed)
	assert.EqualValues(t, 750, result.Completed)
	assert.EqualValues(t, 0, result.Errors)
	assert.EqualValues(t, 3000, result.ListenerCalls)
	assert.Positive(t, result.Throughput())

	// listeners are removed afterwards
	assert.False(t, d.HasFilters("bench.event"))
	assert.False(t, d.HasHandlers("bench.event"))
}

func TestRunBench_InvalidOptions(t *testing.T) {
	d := event.NewDispatcher(event.WithLogger(logger.NewNop()))
	_, err := runBench(context.Background(), d, benchOptions{Workers: 0, Events: 10})
	assert.Error(t, err)
}

func TestRunBench_Cancelled(t *testing.T) {
	d := event.NewDispatcher(event.WithLogger(logger.NewNop()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := runBench(ctx, d, benchOptions{Workers: 2, Events: 100, Name: "e"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Completed)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "eventctl dev (none) go"))
}
