package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFromAny_Scalars(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		kind ValueKind
	}{
		{"nil", nil, KindNull},
		{"string", "hello", KindString},
		{"bool", true, KindBool},
		{"float64", 3.14, KindNumber},
		{"int", 42, KindNumber},
		{"int64", int64(7), KindNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromAny(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("expected kind %d, got %d", tt.kind, v.Kind())
			}
		})
	}
}

func TestFromAny_Nested(t *testing.T) {
	raw := map[string]any{
		"name":  "lumen",
		"count": float64(3),
		"tags":  []any{"a", "b"},
		"flags": map[string]any{"on": true},
	}

	v, err := FromAny(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, ok := v.AsMap()
	if !ok {
		t.Fatal("expected map variant")
	}

	if s, _ := m["name"].AsString(); s != "lumen" {
		t.Errorf("expected name 'lumen', got %q", s)
	}
	if n, _ := m["count"].AsInt(); n != 3 {
		t.Errorf("expected count 3, got %d", n)
	}
	arr, ok := m["tags"].AsArray()
	if !ok || len(arr) != 2 {
		t.Fatalf("expected 2-element array, got %v", arr)
	}
	flags, ok := m["flags"].AsMap()
	if !ok {
		t.Fatal("expected nested map")
	}
	if b, _ := flags["on"].AsBool(); !b {
		t.Error("expected flags.on = true")
	}
}

func TestFromAny_UnsupportedType(t *testing.T) {
	_, err := FromAny(struct{}{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValue_RoundTrip(t *testing.T) {
	original := map[string]any{
		"str":  "x",
		"num":  1.5,
		"bool": false,
		"arr":  []any{float64(1), "two"},
		"map":  map[string]any{"k": "v"},
	}

	v, err := FromAny(original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	back, ok := v.ToAny().(map[string]any)
	if !ok {
		t.Fatal("expected map[string]any")
	}
	if back["str"] != "x" || back["num"] != 1.5 || back["bool"] != false {
		t.Errorf("scalar round-trip mismatch: %v", back)
	}
}

func TestValue_JSON(t *testing.T) {
	v := Map(map[string]Value{
		"topK":   Number(5),
		"source": String("doc.md"),
	})

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Value
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	m, ok := decoded.AsMap()
	if !ok {
		t.Fatal("expected map variant after decode")
	}
	if n, _ := m["topK"].AsInt(); n != 5 {
		t.Errorf("expected topK 5, got %d", n)
	}
}

func TestValue_Keys(t *testing.T) {
	v := Map(map[string]Value{"b": Null(), "a": Null(), "c": Null()})
	keys := v.Keys()
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("expected sorted keys [a b c], got %v", keys)
	}

	if String("x").Keys() != nil {
		t.Error("expected nil keys for non-map variant")
	}
}
