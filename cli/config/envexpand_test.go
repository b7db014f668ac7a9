package config_test

import (
	"testing"

	"github.com/concord-run/concord/cli/config"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("CONCORD_SET_VAR", "value")
	t.Setenv("CONCORD_EMPTY_VAR", "")

	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "${CONCORD_SET_VAR}", "value"},
		{"unset variable", "${CONCORD_NO_SUCH_VAR}", ""},
		{"unset with default", "${CONCORD_NO_SUCH_VAR:-fallback}", "fallback"},
		{"set ignores default", "${CONCORD_SET_VAR:-fallback}", "value"},
		{"empty uses default", "${CONCORD_EMPTY_VAR:-fallback}", "fallback"},
		{"embedded", "prefix-${CONCORD_SET_VAR}-suffix", "prefix-value-suffix"},
		{"no pattern", "plain text $HOME", "plain text $HOME"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := config.ExpandEnv(tc.input); got != tc.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
