package manager

import (
	"github.com/tailored-agentic-units/formstate/core/config"
)

// Builder collects value host configurations for a Manager. It performs no
// validation of its own; Apply hands each configuration to UpdateValueHost.
type Builder struct {
	manager *Manager
	configs []config.ValueHostConfig
}

// Add collects cfg as given.
func (b *Builder) Add(cfg config.ValueHostConfig) *Builder {
	b.configs = append(b.configs, cfg.Clone())
	return b
}

func (b *Builder) Static(name, dataType string, initialValue any) *Builder {
	return b.Add(config.ValueHostConfig{
		Name:         name,
		Type:         config.TypeStatic,
		DataType:     dataType,
		InitialValue: initialValue,
	})
}

func (b *Builder) Input(name, dataType string, validators ...config.ValidatorConfig) *Builder {
	return b.Add(config.ValueHostConfig{
		Name:       name,
		Type:       config.TypeInput,
		DataType:   dataType,
		Validators: validators,
	})
}

func (b *Builder) Property(name, dataType string, validators ...config.ValidatorConfig) *Builder {
	return b.Add(config.ValueHostConfig{
		Name:       name,
		Type:       config.TypeProperty,
		DataType:   dataType,
		Validators: validators,
	})
}

func (b *Builder) Calc(name, dataType string, fn config.CalcFunc) *Builder {
	return b.Add(config.ValueHostConfig{
		Name:     name,
		Type:     config.TypeCalc,
		DataType: dataType,
		Calc:     fn,
	})
}

// Configs returns the collected configurations.
func (b *Builder) Configs() []config.ValueHostConfig {
	configs := make([]config.ValueHostConfig, len(b.configs))
	for i, cfg := range b.configs {
		configs[i] = cfg.Clone()
	}
	return configs
}

// Apply updates the manager with every collected configuration in order and
// stops at the first error.
func (b *Builder) Apply() error {
	for i := range b.configs {
		if _, err := b.manager.UpdateValueHost(&b.configs[i], nil); err != nil {
			return err
		}
	}
	return nil
}
