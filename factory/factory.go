// Package factory dispatches value host creation to the generator that
// accepts a configuration.
//
// Generators are consulted in registration order and the first one whose
// CanCreate reports true wins, so a specialized generator registered ahead of
// a standard one overrides it for the configurations it accepts.
package factory

import (
	"fmt"
	"sync"

	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/fault"
	"github.com/tailored-agentic-units/formstate/core/state"
	"github.com/tailored-agentic-units/formstate/valuehost"
)

// Generator builds one kind of value host and owns the shape of its state.
type Generator interface {
	// CanCreate reports whether the generator handles cfg.
	CanCreate(cfg config.ValueHostConfig) bool
	// Create binds a new host to m, cfg and st.
	Create(m valuehost.Manager, cfg config.ValueHostConfig, st state.ValueHostInstanceState) valuehost.ValueHost
	// CreateDefaultState returns the state of a freshly added host.
	CreateDefaultState(cfg config.ValueHostConfig) state.ValueHostInstanceState
	// CleanupState adapts a previously saved state to cfg, dropping anything
	// the configuration no longer supports.
	CleanupState(st state.ValueHostInstanceState, cfg config.ValueHostConfig) state.ValueHostInstanceState
}

// Factory is an ordered generator registry. Safe for concurrent use.
type Factory struct {
	generators []Generator
	mu         sync.RWMutex
}

// New creates an empty Factory.
func New() *Factory {
	return &Factory{}
}

// NewStandard creates a Factory with the standard generators registered.
func NewStandard() *Factory {
	f := New()
	RegisterStandardGenerators(f)
	return f
}

// RegisterStandardGenerators registers the static, input, property and calc
// generators on f.
func RegisterStandardGenerators(f *Factory) {
	for _, g := range []Generator{
		valuehost.StaticGenerator{},
		valuehost.InputGenerator{},
		valuehost.PropertyGenerator{},
		valuehost.CalcGenerator{},
	} {
		_ = f.Register(g)
	}
}

// Register appends g to the generator list.
func (f *Factory) Register(g Generator) error {
	if g == nil {
		return fault.Precondition("factory.Register", ErrNilGenerator)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.generators = append(f.generators, g)
	return nil
}

// Len returns the number of registered generators.
func (f *Factory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.generators)
}

// Resolve returns the first generator accepting cfg.
func (f *Factory) Resolve(cfg *config.ValueHostConfig) (Generator, error) {
	const op = "factory.Resolve"

	if cfg == nil {
		return nil, fault.Precondition(op, ErrNilConfig)
	}
	if cfg.Type == "" {
		return nil, fault.Configuration(op, cfg.Name, ErrMissingType)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, g := range f.generators {
		if g.CanCreate(*cfg) {
			return g, nil
		}
	}
	return nil, fault.Configuration(op, cfg.Name, fmt.Errorf("%w: %s", ErrUnsupportedType, cfg.Type))
}

// IsRegistered reports whether some generator accepts cfg.
func (f *Factory) IsRegistered(cfg *config.ValueHostConfig) bool {
	_, err := f.Resolve(cfg)
	return err == nil
}

// Create resolves the generator for cfg and builds a host bound to m.
func (f *Factory) Create(m valuehost.Manager, cfg *config.ValueHostConfig, st state.ValueHostInstanceState) (valuehost.ValueHost, error) {
	g, err := f.Resolve(cfg)
	if err != nil {
		return nil, err
	}
	return g.Create(m, *cfg, st), nil
}

// CreateDefaultState returns the default state for cfg.
func (f *Factory) CreateDefaultState(cfg *config.ValueHostConfig) (state.ValueHostInstanceState, error) {
	g, err := f.Resolve(cfg)
	if err != nil {
		return state.ValueHostInstanceState{}, err
	}
	return g.CreateDefaultState(*cfg), nil
}

// CleanupState adapts st to cfg using cfg's generator.
func (f *Factory) CleanupState(st state.ValueHostInstanceState, cfg *config.ValueHostConfig) (state.ValueHostInstanceState, error) {
	g, err := f.Resolve(cfg)
	if err != nil {
		return state.ValueHostInstanceState{}, err
	}
	return g.CleanupState(st, *cfg), nil
}
