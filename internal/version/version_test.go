// ABOUTME: Tests for version constants
// ABOUTME: Ensures version information is properly defined
package version

import (
	"strings"
	"testing"
)

func TestIdentifiersDefined(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Version", Version},
		{"Product", Product},
		{"Manufacturer", Manufacturer},
	}

	placeholders := []string{"TODO", "FIXME", "XXX", "placeholder"}

	for _, tt := range tests {
		if tt.value == "" {
			t.Errorf("%s should not be empty", tt.name)
		}
		if len(tt.value) > 100 {
			t.Errorf("%s is unreasonably long", tt.name)
		}
		for _, p := range placeholders {
			if tt.value == p {
				t.Errorf("%s should not be placeholder value: %s", tt.name, p)
			}
		}
	}
}

func TestString(t *testing.T) {
	s := String()

	if !strings.HasPrefix(s, Product) {
		t.Errorf("expected %q to start with %q", s, Product)
	}
	if !strings.HasSuffix(s, Version) {
		t.Errorf("expected %q to end with %q", s, Version)
	}
}
