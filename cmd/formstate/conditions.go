package main

import (
	"fmt"
	"regexp"

	"github.com/tailored-agentic-units/formstate/condition"
	"github.com/tailored-agentic-units/formstate/core/config"
)

// builtinConditions registers the small condition set the CLI understands.
// Applications supply their own condition factory.
func builtinConditions() *condition.Registry {
	reg := condition.NewRegistry()
	must(reg.Register("Required", newRequired))
	must(reg.Register("RegExp", newRegExp))
	must(reg.Register("EqualToValueHost", newEqualToValueHost))
	return reg
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("failed to register condition: %v", err))
	}
}

func newRequired(cfg config.ConditionConfig) (condition.Condition, error) {
	return condition.Func{
		ConditionType: cfg.ConditionType,
		Fn: func(source condition.ValueSource, _ condition.Finder) condition.Result {
			switch v := source.Value().(type) {
			case nil:
				return condition.NoMatch
			case string:
				if v == "" {
					return condition.NoMatch
				}
			}
			return condition.Match
		},
	}, nil
}

func newRegExp(cfg config.ConditionConfig) (condition.Condition, error) {
	pattern, _ := cfg.Params["expression"].(string)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid expression: %w", err)
	}

	return condition.Func{
		ConditionType: cfg.ConditionType,
		Fn: func(source condition.ValueSource, _ condition.Finder) condition.Result {
			s, ok := source.Value().(string)
			if !ok {
				return condition.Undetermined
			}
			if re.MatchString(s) {
				return condition.Match
			}
			return condition.NoMatch
		},
	}, nil
}

func newEqualToValueHost(cfg config.ConditionConfig) (condition.Condition, error) {
	return condition.Func{
		ConditionType: cfg.ConditionType,
		Fn: func(source condition.ValueSource, finder condition.Finder) condition.Result {
			peer, ok := finder.Find(cfg.SecondValueHostName)
			if !ok || peer.Value() == nil || source.Value() == nil {
				return condition.Undetermined
			}
			if fmt.Sprint(source.Value()) == fmt.Sprint(peer.Value()) {
				return condition.Match
			}
			return condition.NoMatch
		},
	}, nil
}
