package store

import (
	"encoding/json"
	"math"
	"testing"
)

func TestIsEmpty(t *testing.T) {
	var nilPtr *int
	zero := 0
	one := 1

	empty := []struct {
		name  string
		value any
	}{
		{"nil", nil},
		{"false", false},
		{"zero int", 0},
		{"zero float", 0.0},
		{"nan", math.NaN()},
		{"empty string", ""},
		{"blank string", " \t\n"},
		{"empty slice", []any{}},
		{"nil slice", []int(nil)},
		{"empty map", map[string]any{}},
		{"empty struct", struct{}{}},
		{"nil pointer", nilPtr},
		{"pointer to zero", &zero},
		{"json zero", json.Number("0")},
	}
	for _, tt := range empty {
		t.Run(tt.name, func(t *testing.T) {
			if !IsEmpty(tt.value) {
				t.Errorf("IsEmpty(%#v): got false, want true", tt.value)
			}
		})
	}

	notEmpty := []struct {
		name  string
		value any
	}{
		{"true", true},
		{"one", 1},
		{"minus one", -1},
		{"float", 0.5},
		{"string", "string"},
		{"slice", []any{1, 2, 3}},
		{"map int key", map[int]int{1: 2}},
		{"map", map[string]any{"k": "v"}},
		{"struct", struct{ A int }{}},
		{"pointer to one", &one},
		{"func", func() {}},
		{"json number", json.Number("1.5")},
	}
	for _, tt := range notEmpty {
		t.Run(tt.name, func(t *testing.T) {
			if IsEmpty(tt.value) {
				t.Errorf("IsEmpty(%#v): got true, want false", tt.value)
			}
		})
	}
}
