package condition

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tailored-agentic-units/formstate/core/config"
)

// Constructor builds a Condition from its configuration.
type Constructor func(cfg config.ConditionConfig) (Condition, error)

// Registry is a Factory that dispatches on ConditionConfig.ConditionType.
// Safe for concurrent use.
type Registry struct {
	constructors map[string]Constructor
	mu           sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// Register adds a constructor for a condition type.
// Returns ErrAlreadyExists if the type is already registered; use Replace
// to swap an existing constructor.
func (r *Registry) Register(conditionType string, ctor Constructor) error {
	if conditionType == "" {
		return ErrEmptyType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[conditionType]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, conditionType)
	}

	r.constructors[conditionType] = ctor
	return nil
}

// Replace swaps the constructor of an already registered condition type.
func (r *Registry) Replace(conditionType string, ctor Constructor) error {
	if conditionType == "" {
		return ErrEmptyType
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[conditionType]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, conditionType)
	}

	r.constructors[conditionType] = ctor
	return nil
}

// Types returns the registered condition types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.constructors))
	for t := range r.constructors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Create implements Factory.
func (r *Registry) Create(cfg config.ConditionConfig) (Condition, error) {
	r.mu.RLock()
	ctor, exists := r.constructors[cfg.ConditionType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, cfg.ConditionType)
	}

	c, err := ctor(cfg)
	if err != nil {
		return nil, fmt.Errorf("create condition %s: %w", cfg.ConditionType, err)
	}
	return c, nil
}
