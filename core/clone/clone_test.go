package clone_test

import (
	"testing"
	"time"

	"github.com/tailored-agentic-units/formstate/core/clone"
)

type opaque struct {
	hidden string
}

func TestValue_KeepsOpaqueStructs(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tests := []struct {
		name string
		in   any
	}{
		{name: "time", in: when},
		{name: "unexported fields", in: opaque{hidden: "kept"}},
		{name: "pointer", in: &opaque{hidden: "kept"}},
		{name: "int", in: 10},
		{name: "nil", in: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clone.Value(tt.in); got != tt.in {
				t.Errorf("Value(%v) = %v", tt.in, got)
			}
		})
	}
}

func TestValue_RebuildsContainers(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	original := map[string]any{
		"list":   []any{1, map[string]any{"k": "v"}},
		"ints":   []int{1, 2},
		"nested": map[string]any{"when": when},
	}

	got := clone.Map(original)

	original["list"].([]any)[1].(map[string]any)["k"] = "changed"
	original["ints"].([]int)[0] = 99
	original["nested"].(map[string]any)["when"] = time.Time{}

	if got["list"].([]any)[1].(map[string]any)["k"] != "v" {
		t.Error("nested map aliased the original")
	}
	if got["ints"].([]int)[0] != 1 {
		t.Error("typed slice aliased the original")
	}
	if !got["nested"].(map[string]any)["when"].(time.Time).Equal(when) {
		t.Error("time value lost in copy")
	}
	if clone.Map(nil) != nil {
		t.Error("Map(nil) should stay nil")
	}
}
