package casing

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCamelToSnake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"anniversaryDate", "anniversary_date"},
		{"refreshToken", "refresh_token"},
		{"id", "id"},
		{"already_snake", "already_snake"},
		{"", ""},
		{"aBC", "a_b_c"},
	}

	for _, tt := range tests {
		if got := CamelToSnake(tt.in); got != tt.want {
			t.Errorf("CamelToSnake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSnakeToCamel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"anniversary_date", "anniversaryDate"},
		{"refresh_token", "refreshToken"},
		{"id", "id"},
		{"token_type", "tokenType"},
		{"a_b_c", "aBC"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SnakeToCamel(tt.in); got != tt.want {
			t.Errorf("SnakeToCamel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	t.Parallel()

	keys := []string{"anniversaryDate", "partnerId", "expiresIn", "email", "avatarUrl"}
	for _, key := range keys {
		if got := SnakeToCamel(CamelToSnake(key)); got != key {
			t.Errorf("round trip of %q produced %q", key, got)
		}
	}
}

func TestSnakeKeysDeep(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"anniversaryDate": "2024-02-14",
		"partnerProfile": map[string]any{
			"displayName": "Ada",
			"avatarUrl":   nil,
		},
		"sharedEvents": []any{
			map[string]any{"eventTitle": "dinner"},
			map[string]any{"eventTitle": "trip"},
		},
		"count": float64(2),
	}

	got, ok := SnakeKeys(in).(map[string]any)
	if !ok {
		t.Fatal("SnakeKeys did not return a map")
	}
	if got["anniversary_date"] != "2024-02-14" {
		t.Errorf("top-level key not converted: %v", got)
	}
	nested, ok := got["partner_profile"].(map[string]any)
	if !ok {
		t.Fatalf("nested map missing: %v", got)
	}
	if _, exists := nested["display_name"]; !exists {
		t.Errorf("nested key not converted: %v", nested)
	}
	events, ok := got["shared_events"].([]any)
	if !ok || len(events) != 2 {
		t.Fatalf("array shape changed: %v", got["shared_events"])
	}
	first, _ := events[0].(map[string]any)
	if first["event_title"] != "dinner" {
		t.Errorf("array element order or keys changed: %v", events)
	}
}

func TestCamelKeysPassthrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"string", "hello"},
		{"number", float64(42)},
		{"bool", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CamelKeys(tt.in); !reflect.DeepEqual(got, tt.in) {
				t.Errorf("CamelKeys(%v) = %v, want unchanged", tt.in, got)
			}
		})
	}
}

func TestObjectRoundTrip(t *testing.T) {
	t.Parallel()

	original := map[string]any{
		"accessToken": "t1",
		"user": map[string]any{
			"anniversaryDate": "2020-01-02",
			"items":           []any{"a", "b", "c"},
		},
	}
	back, ok := CamelKeys(SnakeKeys(original)).(map[string]any)
	if !ok {
		t.Fatal("round trip did not return a map")
	}
	if !reflect.DeepEqual(back, original) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", back, original)
	}
}

func TestCamelBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"object",
			`{"access_token":"t","token_type":"bearer"}`,
			`{"accessToken":"t","tokenType":"bearer"}`,
		},
		{
			"array of objects",
			`[{"event_title":"x"}]`,
			`[{"eventTitle":"x"}]`,
		},
		{
			"non-json passthrough",
			`not json at all`,
			`not json at all`,
		},
		{
			"scalar passthrough",
			`"just a string"`,
			`"just a string"`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CamelBytes([]byte(tt.in))
			if tt.name == "non-json passthrough" || tt.name == "scalar passthrough" {
				if string(got) != tt.want {
					t.Errorf("CamelBytes(%q) = %q, want %q", tt.in, got, tt.want)
				}
				return
			}
			var gotVal, wantVal any
			if err := json.Unmarshal(got, &gotVal); err != nil {
				t.Fatalf("output not valid JSON: %v", err)
			}
			if err := json.Unmarshal([]byte(tt.want), &wantVal); err != nil {
				t.Fatalf("bad test fixture: %v", err)
			}
			if !reflect.DeepEqual(gotVal, wantVal) {
				t.Errorf("CamelBytes(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
