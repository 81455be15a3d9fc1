package identity

import "testing"

type pair struct {
	A int
	B string
}

type holder struct {
	V any
}

func TestIdentical(t *testing.T) {
	m := map[string]any{"k": "v"}
	s := []any{1, 2, 3}
	f := func() {}
	p := &pair{A: 1}

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"same int", 1, 1, true},
		{"int and float", 1, 1.0, false},
		{"same string", "a", "a", true},
		{"different string", "a", "b", false},
		{"false and zero", false, 0, false},
		{"same map", m, m, true},
		{"equal maps", map[string]any{"k": "v"}, map[string]any{"k": "v"}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:2], false},
		{"equal slices", []any{1, 2, 3}, []any{1, 2, 3}, false},
		{"same func", f, f, true},
		{"distinct closures", closure(1), closure(1), false},
		{"same pointer", p, p, true},
		{"equal pointees", &pair{A: 1}, &pair{A: 1}, false},
		{"comparable struct", pair{A: 1, B: "x"}, pair{A: 1, B: "x"}, true},
		{"struct holding slice", holder{V: s}, holder{V: s}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Identical(tt.a, tt.b); got != tt.want {
				t.Errorf("Identical(%v, %v): got %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSameDeps(t *testing.T) {
	m := map[string]any{}

	if !SameDeps(nil, nil) {
		t.Error("empty deps should be the same")
	}
	if !SameDeps([]any{"k", m}, []any{"k", m}) {
		t.Error("identical deps should be the same")
	}
	if SameDeps([]any{"k"}, []any{"k", m}) {
		t.Error("different lengths should differ")
	}
	if SameDeps([]any{map[string]any{}}, []any{map[string]any{}}) {
		t.Error("distinct maps should differ")
	}
}

func closure(n int) func() int {
	return func() int { return n }
}
