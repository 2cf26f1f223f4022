package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/KOMKZ/go-yogan-event/event"
	"github.com/KOMKZ/go-yogan-event/logger"
	"go.uber.org/zap"
)

// Report what happened to one dispatched event
type Report struct {
	Event   string        `json:"event"`
	ID      string        `json:"id"`
	Outcome event.Outcome `json:"outcome"`
	Tags    []string      `json:"tags,omitempty"`
	Invoked []string      `json:"invoked,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Runner registers rules on a dispatcher and dispatches scenario events
type Runner struct {
	dispatcher   event.Dispatcher
	logger       *logger.CtxZapLogger
	unsubscribes []event.UnsubscribeFunc
}

// NewRunner creates a runner; a nil logger falls back to the "scenario" module logger
func NewRunner(d event.Dispatcher, log *logger.CtxZapLogger) *Runner {
	if log == nil {
		log = logger.GetLogger("scenario")
	}
	return &Runner{dispatcher: d, logger: log}
}

// Register validates and registers every rule. Nothing is registered when a rule is invalid.
func (r *Runner) Register(rules []Rule) error {
	if err := (Config{Rules: rules}).Validate(); err != nil {
		return err
	}

	for _, rule := range rules {
		opts := []event.SubscribeOption{event.WithPriority(rule.Priority)}
		if rule.Once {
			opts = append(opts, event.WithOnce())
		}

		l := r.listener(rule)
		var unsubscribe event.UnsubscribeFunc
		if rule.Phase == PhaseFilter {
			unsubscribe = r.dispatcher.AddFilter(rule.Event, l, opts...)
		} else {
			unsubscribe = r.dispatcher.AddHandler(rule.Event, l, opts...)
		}
		r.unsubscribes = append(r.unsubscribes, unsubscribe)
	}
	return nil
}

func (r *Runner) listener(rule Rule) event.Listener {
	label := rule.String()
	return event.ListenerFunc(func(ctx context.Context, e event.Event) error {
		se, ok := e.(*Event)
		if ok {
			se.record(label)
		}

		switch rule.Action {
		case ActionLog:
			msg := rule.Message
			if msg == "" {
				msg = "scenario rule matched"
			}
			r.logger.InfoCtx(ctx, msg, zap.String("event", e.Name()), zap.String("rule", label))
		case ActionTag:
			if ok {
				se.addTag(rule.Tag)
			}
		case ActionConsume:
			e.Consume()
		case ActionStop:
			return event.ErrStopPropagation
		case ActionFail:
			if rule.Message != "" {
				return ErrRuleFailed.WithMsg(rule.Message).WithData("rule", label)
			}
			return ErrRuleFailed.WithData("rule", label)
		}
		return nil
	})
}

// Dispatch sends one scenario event and builds its report
func (r *Runner) Dispatch(ctx context.Context, name string) Report {
	e := NewEvent(name)
	_, err := r.dispatcher.Dispatch(ctx, name, e)

	report := Report{
		Event:   name,
		ID:      e.ID(),
		Outcome: outcomeOf(e, err),
		Tags:    e.Tags(),
		Invoked: e.Invoked(),
	}
	if err != nil {
		report.Error = err.Error()
		r.logger.WarnCtx(ctx, "scenario event failed", zap.String("event", name), zap.Error(err))
	}
	return report
}

// Run dispatches names in order. Listener failures land in the reports;
// only context cancellation stops the run.
func (r *Runner) Run(ctx context.Context, names []string) ([]Report, error) {
	reports := make([]Report, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return reports, fmt.Errorf("scenario run interrupted after %d events: %w", len(reports), err)
		}
		reports = append(reports, r.Dispatch(ctx, name))
	}
	return reports, nil
}

// Close unregisters every listener this runner added
func (r *Runner) Close() {
	for _, unsubscribe := range r.unsubscribes {
		unsubscribe()
	}
	r.unsubscribes = nil
}

// outcomeOf the consuming listener is always the last one invoked
func outcomeOf(e *Event, err error) event.Outcome {
	if err != nil {
		return event.OutcomeError
	}
	if !e.IsConsumed() {
		return event.OutcomeCompleted
	}

	invoked := e.Invoked()
	if len(invoked) == 0 {
		return event.OutcomeConsumed
	}
	if phaseOf(invoked[len(invoked)-1]) == PhaseFilter {
		return event.OutcomeConsumedCapture
	}
	return event.OutcomeConsumedBubble
}

func phaseOf(label string) string {
	phase, _, _ := strings.Cut(label, ":")
	return phase
}

// Summary counts reports per outcome
func Summary(reports []Report) map[event.Outcome]int {
	counts := make(map[event.Outcome]int)
	for _, report := range reports {
		counts[report.Outcome]++
	}
	return counts
}

// Failed reports whether any report carries an error
func Failed(reports []Report) bool {
	for _, report := range reports {
		if report.Error != "" {
			return true
		}
	}
	return false
}
