// Package condition is the boundary between value hosts and the condition
// evaluation collaborator. Condition semantics live outside this module;
// validators only need to create a Condition from its configuration and ask
// it to evaluate against a value source.
package condition

import "github.com/tailored-agentic-units/formstate/core/config"

// Result is the outcome of evaluating a condition.
type Result int

const (
	// Undetermined means the condition could not be evaluated (e.g. the
	// value is missing or of an unsupported type).
	Undetermined Result = iota
	// Match means the value satisfies the condition.
	Match
	// NoMatch means the value violates the condition.
	NoMatch
)

func (r Result) String() string {
	switch r {
	case Match:
		return "Match"
	case NoMatch:
		return "NoMatch"
	default:
		return "Undetermined"
	}
}

// ValueSource is the read-only view of a value host a condition evaluates.
type ValueSource interface {
	Name() string
	Value() any
	DataType() string
}

// Finder looks up peer value hosts by name.
type Finder interface {
	Find(name string) (ValueSource, bool)
}

// Condition evaluates one rule against a value source.
type Condition interface {
	// Type returns the condition type tag from its configuration.
	Type() string
	// Evaluate checks source, resolving peers through finder when needed.
	Evaluate(source ValueSource, finder Finder) Result
}

// Factory creates conditions from configuration.
type Factory interface {
	Create(cfg config.ConditionConfig) (Condition, error)
}

// Func adapts a plain function to Condition.
type Func struct {
	ConditionType string
	Fn            func(source ValueSource, finder Finder) Result
}

func (f Func) Type() string {
	return f.ConditionType
}

func (f Func) Evaluate(source ValueSource, finder Finder) Result {
	if f.Fn == nil {
		return Undetermined
	}
	return f.Fn(source, finder)
}
