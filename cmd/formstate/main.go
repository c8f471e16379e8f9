package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/tailored-agentic-units/formstate/core/state"
	"github.com/tailored-agentic-units/formstate/manager"
	"github.com/tailored-agentic-units/formstate/observability"
	"github.com/tailored-agentic-units/formstate/services"
	"github.com/tailored-agentic-units/formstate/valuehost"
	"gopkg.in/yaml.v3"
)

// assignments collects repeated name=value flags in order.
type assignments [][2]string

func (a *assignments) String() string {
	parts := make([]string, len(*a))
	for i, kv := range *a {
		parts[i] = kv[0] + "=" + kv[1]
	}
	return strings.Join(parts, ",")
}

func (a *assignments) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	*a = append(*a, [2]string{name, value})
	return nil
}

// names collects repeated value host names.
type names []string

func (n *names) String() string { return strings.Join(*n, ",") }

func (n *names) Set(s string) error {
	*n = append(*n, s)
	return nil
}

func main() {
	var (
		sets     assignments
		inputs   assignments
		discards names
	)

	var (
		configFile = flag.String("config", "", "Path to manager config JSON or YAML file (required)")
		stateFile  = flag.String("state", "", "Path to a saved snapshot (.json, or .pb for protobuf) to restore")
		validate   = flag.Bool("validate", false, "Validate every value host after applying edits")
		format     = flag.String("format", "json", "Output format: json, yaml or proto")
		metrics    = flag.Bool("metrics", false, "Print manager event counts to stderr")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Var(&sets, "set", "Set a native value as name=value (repeatable; JSON values are decoded)")
	flag.Var(&inputs, "input", "Set a raw input value as name=value (repeatable)")
	flag.Var(&discards, "discard", "Discard a value host by name (repeatable)")
	flag.Parse()

	if *configFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: formstate -config <file> [-set name=value] [-discard name]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := manager.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *stateFile != "" {
		snap, err := loadSnapshot(*stateFile)
		if err != nil {
			log.Fatalf("Failed to load state: %v", err)
		}
		cfg.SavedInstanceState = &snap.Manager
		cfg.SavedValueHostInstanceStates = snap.ValueHosts
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	svc := services.NewDefault()
	if err := svc.SetService(services.Logger, logger); err != nil {
		log.Fatalf("Failed to configure services: %v", err)
	}
	if err := svc.SetConditionFactory(builtinConditions()); err != nil {
		log.Fatalf("Failed to configure services: %v", err)
	}

	observers := []observability.Observer{observability.NewSlogObserver(logger)}
	var counter *observability.MetricsObserver
	if *metrics {
		counter, err = observability.NewMetricsObserver(prom.NewRegistry())
		if err != nil {
			log.Fatalf("Failed to create metrics observer: %v", err)
		}
		observers = append(observers, counter)
	}

	m, err := manager.New(cfg,
		manager.WithServices(svc),
		manager.WithObserver(observability.NewMultiObserver(observers...)),
		manager.WithOnValueChanged(func(vh valuehost.ValueHost, old any) {
			logger.Debug("value changed", "name", vh.Name(), "old", old, "new", vh.Value())
		}),
	)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}
	defer m.Dispose()

	for _, kv := range sets {
		vh := m.GetValueHost(kv[0])
		if vh == nil {
			log.Fatalf("Unknown value host: %s", kv[0])
		}
		vh.SetValue(decodeValue(kv[1]), valuehost.SetValueOptions{Validate: *validate})
	}

	for _, kv := range inputs {
		vh := m.GetInputValueHost(kv[0])
		if vh == nil {
			log.Fatalf("Not an input value host: %s", kv[0])
		}
		vh.SetInputValue(kv[1], valuehost.SetValueOptions{Validate: *validate})
	}

	for _, name := range discards {
		if err := m.DiscardValueHost(name); err != nil {
			log.Fatalf("Failed to discard %s: %v", name, err)
		}
	}

	if *validate && !m.Validate() {
		logger.Warn("validation failed")
	}

	if err := writeSnapshot(os.Stdout, m.Snapshot(), *format); err != nil {
		log.Fatalf("Failed to write state: %v", err)
	}

	if counter != nil {
		printCounts(counter)
	}
}

// decodeValue reads s as JSON when possible so numbers and booleans keep
// their type; anything else is taken as a string.
func decodeValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func loadSnapshot(path string) (state.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return state.Snapshot{}, err
	}

	if strings.EqualFold(filepath.Ext(path), ".pb") {
		return state.DecodeSnapshot(data)
	}

	var snap state.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return state.Snapshot{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return snap, nil
}

func writeSnapshot(w *os.File, snap state.Snapshot, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(snap)
	case "proto":
		data, err := state.EncodeSnapshot(snap)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func printCounts(counter *observability.MetricsObserver) {
	types := []observability.EventType{
		manager.EventValueHostAdd,
		manager.EventValueHostUpdate,
		manager.EventValueHostDiscard,
		manager.EventValueHostStateChange,
		manager.EventStateChange,
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	fmt.Fprintln(os.Stderr, "\nEvents:")
	for _, t := range types {
		total := counter.Count(t, observability.LevelInfo) + counter.Count(t, observability.LevelVerbose)
		fmt.Fprintf(os.Stderr, "  %-32s %v\n", t, total)
	}
}
