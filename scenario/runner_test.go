package scenario

import (
	"context"
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-event/event"
	"github.com/KOMKZ/go-yogan-event/logger"
	"github.com/KOMKZ/go-yogan-event/testutil"
	"github.com/KOMKZ/go-yogan-event/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var ctx = context.Background()

func newRunner(t *testing.T) (*Runner, event.Dispatcher) {
	t.Helper()
	d := event.NewDispatcher(event.WithLogger(logger.NewNop()))
	r := NewRunner(d, logger.NewNop())
	t.Cleanup(r.Close)
	return r, d
}

func TestRunner_Ordering(t *testing.T) {
	r, _ := newRunner(t)
	require.NoError(t, r.Register([]Rule{
		{Event: "order.placed", Phase: PhaseHandler, Priority: 0, Action: ActionTag, Tag: "notify"},
		{Event: "order.placed", Phase: PhaseHandler, Priority: 10, Action: ActionTag, Tag: "persist"},
		{Event: "order.placed", Phase: PhaseFilter, Priority: 0, Action: ActionTag, Tag: "audit"},
	}))

	report := r.Dispatch(ctx, "order.placed")
	assert.Equal(t, event.OutcomeCompleted, report.Outcome)
	assert.Equal(t, []string{"audit", "persist", "notify"}, report.Tags)
	assert.Equal(t, []string{
		"filter:tag(audit)@0",
		"handler:tag(persist)@10",
		"handler:tag(notify)@0",
	}, report.Invoked)
	assert.NotEmpty(t, report.ID)
	assert.Empty(t, report.Error)
}

func TestRunner_Outcomes(t *testing.T) {
	r, _ := newRunner(t)
	require.NoError(t, r.Register([]Rule{
		{Event: "blocked", Phase: PhaseFilter, Action: ActionConsume},
		{Event: "blocked", Phase: PhaseHandler, Action: ActionTag, Tag: "never"},
		{Event: "halted", Phase: PhaseHandler, Priority: 1, Action: ActionStop},
		{Event: "halted", Phase: PhaseHandler, Action: ActionTag, Tag: "never"},
		{Event: "broken", Phase: PhaseHandler, Action: ActionFail, Message: "disk full"},
	}))

	reports, err := r.Run(ctx, []string{"blocked", "halted", "broken", "unknown"})
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Equal(t, event.OutcomeConsumedCapture, reports[0].Outcome)
	assert.Empty(t, reports[0].Tags)

	assert.Equal(t, event.OutcomeConsumedBubble, reports[1].Outcome)
	assert.Equal(t, []string{"handler:stop@1"}, reports[1].Invoked)

	assert.Equal(t, event.OutcomeError, reports[2].Outcome)
	assert.Contains(t, reports[2].Error, "disk full")

	assert.Equal(t, event.OutcomeCompleted, reports[3].Outcome)
	assert.Empty(t, reports[3].Invoked)

	assert.True(t, Failed(reports))
	assert.Equal(t, map[event.Outcome]int{
		event.OutcomeConsumedCapture: 1,
		event.OutcomeConsumedBubble:  1,
		event.OutcomeError:           1,
		event.OutcomeCompleted:       1,
	}, Summary(reports))
}

func TestRunner_FailErrorIdentity(t *testing.T) {
	r, d := newRunner(t)
	require.NoError(t, r.Register([]Rule{{Event: "e", Phase: PhaseFilter, Action: ActionFail}}))

	_, err := d.Dispatch(ctx, "e", NewEvent("e"))
	assert.True(t, errors.Is(err, ErrRuleFailed))
}

func TestRunner_Once(t *testing.T) {
	r, d := newRunner(t)
	require.NoError(t, r.Register([]Rule{
		{Event: "boot", Phase: PhaseHandler, Once: true, Action: ActionTag, Tag: "first"},
	}))

	assert.Equal(t, []string{"first"}, r.Dispatch(ctx, "boot").Tags)
	assert.Empty(t, r.Dispatch(ctx, "boot").Tags)
	assert.False(t, d.HasHandlers("boot"))
}

func TestRunner_LogAction(t *testing.T) {
	log, logs := testutil.ObservedLogger("scenario", zapcore.InfoLevel)
	d := event.NewDispatcher(event.WithLogger(logger.NewNop()))
	r := NewRunner(d, log)
	defer r.Close()

	require.NoError(t, r.Register([]Rule{{Event: "ping", Phase: PhaseHandler, Action: ActionLog, Message: "pong"}}))
	r.Dispatch(ctx, "ping")

	entries := logs.FilterMessage("pong").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ping", entries[0].ContextMap()["event"])
}

func TestRunner_ForeignEvent(t *testing.T) {
	r, d := newRunner(t)
	require.NoError(t, r.Register([]Rule{{Event: "e", Phase: PhaseHandler, Action: ActionTag, Tag: "x"}}))

	// events of other types pass through untouched
	out, err := d.Dispatch(ctx, "e", nil)
	require.NoError(t, err)
	assert.Equal(t, "e", out.Name())
}

func TestRunner_Close(t *testing.T) {
	r, d := newRunner(t)
	require.NoError(t, r.Register([]Rule{
		{Event: "a", Phase: PhaseFilter, Action: ActionLog},
		{Event: "a", Phase: PhaseHandler, Action: ActionLog},
	}))
	d.AddHandler("a", event.ListenerFunc(func(context.Context, event.Event) error { return nil }))

	r.Close()
	assert.False(t, d.HasFilters("a"))
	assert.Equal(t, 1, len(d.Handlers("a")))
}

func TestRunner_RegisterInvalid(t *testing.T) {
	r, d := newRunner(t)
	err := r.Register([]Rule{
		{Event: "ok", Phase: PhaseHandler, Action: ActionLog},
		{Event: "bad", Phase: "sideways", Action: ActionLog},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, validator.ErrValidationFailed))
	assert.False(t, d.HasHandlers("ok"))
}

func TestRunner_RunCancelled(t *testing.T) {
	r, _ := newRunner(t)
	cctx, cancel := context.WithCancel(ctx)
	cancel()

	reports, err := r.Run(cctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
}
