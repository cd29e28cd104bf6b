package viz

import (
	"context"
	"reflect"
	"testing"
)

func TestParseStringList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"strict json", `["06:00", "07:00"]`, []string{"06:00", "07:00"}},
		{"escaped quotes", `[\"06:00\", \"07:00\"]`, []string{"06:00", "07:00"}},
		{"single quotes", `['a', 'b']`, []string{"a", "b"}},
		{"numbers", `[1, 2.5]`, []string{"1", "2.5"}},
		{"trailing comma", `["a", "b",]`, []string{"a", "b"}},
		{"no brackets", `"a", "b"`, []string{"a", "b"}},
		{"bare words", `[red, green, blue]`, []string{"red", "green", "blue"}},
		{"mixed junk", `[ "kept" , broken`, []string{"kept"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseStringList(context.Background(), tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseStringList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeQuotes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`['a', 'b']`, `["a", "b"]`},
		{`["it's fine"]`, `["it's fine"]`},
		{`['x', "y"]`, `["x", "y"]`},
	}
	for _, tt := range tests {
		if got := normalizeQuotes(tt.in); got != tt.want {
			t.Errorf("normalizeQuotes(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
