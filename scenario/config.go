// Package scenario turns declarative rules into registered filters and handlers
// and reports what happened to each dispatched event.
package scenario

import (
	"fmt"

	"github.com/KOMKZ/go-yogan-event/component"
	"github.com/KOMKZ/go-yogan-event/validator"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Phases a rule attaches to
const (
	PhaseFilter  = "filter"
	PhaseHandler = "handler"
)

// Rule actions
const (
	ActionLog     = "log"     // log the event
	ActionTag     = "tag"     // append Tag to the event
	ActionConsume = "consume" // consume the event
	ActionStop    = "stop"    // return event.ErrStopPropagation
	ActionFail    = "fail"    // return ErrRuleFailed
)

// Rule one listener to register
type Rule struct {
	Event    string `mapstructure:"event"`
	Phase    string `mapstructure:"phase"`
	Priority int    `mapstructure:"priority"`
	Once     bool   `mapstructure:"once"`
	Action   string `mapstructure:"action"`
	Tag      string `mapstructure:"tag"`
	Message  string `mapstructure:"message"`
}

// Validate implements validator.Validatable
func (r Rule) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Event, validation.Required),
		validation.Field(&r.Phase, validation.Required, validation.In(PhaseFilter, PhaseHandler)),
		validation.Field(&r.Action, validation.Required,
			validation.In(ActionLog, ActionTag, ActionConsume, ActionStop, ActionFail)),
		validation.Field(&r.Tag, validation.When(r.Action == ActionTag, validation.Required)),
	)
}

// String short label used in reports: "filter:tag(audit)@5"
func (r Rule) String() string {
	action := r.Action
	if r.Action == ActionTag {
		action = fmt.Sprintf("tag(%s)", r.Tag)
	}
	return fmt.Sprintf("%s:%s@%d", r.Phase, action, r.Priority)
}

// Config the "scenario" section
type Config struct {
	Rules  []Rule   `mapstructure:"rules"`
	Events []string `mapstructure:"events"`
}

// Validate checks every rule; errors are keyed by rule index
func (c Config) Validate() error {
	errs := validation.Errors{}
	for i, rule := range c.Rules {
		if err := rule.Validate(); err != nil {
			errs[fmt.Sprintf("rules[%d]", i)] = err
		}
	}
	return validator.ValidateRequest(validatable(errs.Filter))
}

// LoadConfig reads and validates the "scenario" section; absent means empty
func LoadConfig(loader component.ConfigLoader) (Config, error) {
	var cfg Config
	if loader == nil || !loader.IsSet(component.ComponentScenario) {
		return cfg, nil
	}
	if err := loader.Unmarshal(component.ComponentScenario, &cfg); err != nil {
		return cfg, fmt.Errorf("load scenario config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

type validatable func() error

func (f validatable) Validate() error {
	return f()
}
