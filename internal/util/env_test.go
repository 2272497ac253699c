package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{"unset uses default true", "", true, true},
		{"unset uses default false", "", false, false},
		{"true", "true", false, true},
		{"one", "1", false, true},
		{"yes", "yes", false, true},
		{"on", "on", false, true},
		{"false", "false", true, false},
		{"zero", "0", true, false},
		{"no", "no", true, false},
		{"off", "off", true, false},
		{"mixed case", "TRUE", false, true},
		{"padded", "  true  ", false, true},
		{"invalid uses default", "maybe", true, true},
		{"invalid uses default false", "maybe", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const key = "FITFRIENDS_TEST_BOOL"
			if tt.value != "" {
				t.Setenv(key, tt.value)
			}
			if got := ParseBoolEnv(key, tt.defaultValue); got != tt.want {
				t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
			}
		})
	}
}
