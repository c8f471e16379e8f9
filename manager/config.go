package manager

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/state"
	"gopkg.in/yaml.v3"
)

// Config is the construction payload of a Manager.
type Config struct {
	// ValueHostConfigs declares the initial value hosts. Must not be nil.
	ValueHostConfigs []config.ValueHostConfig `json:"valueHostConfigs" yaml:"valueHostConfigs"`
	// SavedInstanceState restores manager-wide state from a previous session.
	SavedInstanceState *state.ManagerInstanceState `json:"savedInstanceState,omitempty" yaml:"savedInstanceState,omitempty"`
	// SavedValueHostInstanceStates restores value host states from a previous
	// session. Entries without a matching configuration are retained for a
	// later AddValueHost.
	SavedValueHostInstanceStates []state.ValueHostInstanceState `json:"savedValueHostInstanceStates,omitempty" yaml:"savedValueHostInstanceStates,omitempty"`
	// Observer names a registered observability.Observer.
	Observer string `json:"observer,omitempty" yaml:"observer,omitempty"`
}

// DefaultConfig returns a Config with an empty value host list.
func DefaultConfig() Config {
	return Config{
		ValueHostConfigs: []config.ValueHostConfig{},
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.ValueHostConfigs != nil {
		c.ValueHostConfigs = source.ValueHostConfigs
	}
	if source.SavedInstanceState != nil {
		c.SavedInstanceState = source.SavedInstanceState
	}
	if len(source.SavedValueHostInstanceStates) > 0 {
		c.SavedValueHostInstanceStates = source.SavedValueHostInstanceStates
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

// LoadConfig reads a JSON or YAML (.yaml, .yml) config file, merges it with
// defaults, and returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	default:
		err = json.Unmarshal(data, &loaded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
