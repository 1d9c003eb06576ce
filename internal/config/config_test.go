package config

import "testing"

func TestEnvFallback(t *testing.T) {
	if got := env("ORGANIZER_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("env = %q, want fallback", got)
	}
	t.Setenv("ORGANIZER_TEST_SET", "value")
	if got := env("ORGANIZER_TEST_SET", "fallback"); got != "value" {
		t.Errorf("env = %q, want value", got)
	}
}

func TestEnvIntFallbackOnMissingOrInvalid(t *testing.T) {
	if got := envInt("ORGANIZER_TEST_INT_UNSET", 8080); got != 8080 {
		t.Errorf("envInt = %d, want 8080", got)
	}
	t.Setenv("ORGANIZER_TEST_INT_BAD", "not-a-number")
	if got := envInt("ORGANIZER_TEST_INT_BAD", 8080); got != 8080 {
		t.Errorf("envInt with invalid value = %d, want fallback 8080", got)
	}
	t.Setenv("ORGANIZER_TEST_INT_OK", "9090")
	if got := envInt("ORGANIZER_TEST_INT_OK", 8080); got != 9090 {
		t.Errorf("envInt = %d, want 9090", got)
	}
}

func TestEnvBoolVariants(t *testing.T) {
	cases := []struct {
		set, value string
		want       bool
	}{
		{"ORGANIZER_TEST_BOOL_TRUE", "true", true},
		{"ORGANIZER_TEST_BOOL_TRUE_UPPER", "TRUE", true},
		{"ORGANIZER_TEST_BOOL_ONE", "1", true},
		{"ORGANIZER_TEST_BOOL_FALSE", "false", false},
		{"ORGANIZER_TEST_BOOL_GARBAGE", "nope", false},
	}
	for _, c := range cases {
		t.Setenv(c.set, c.value)
		if got := envBool(c.set, false); got != c.want {
			t.Errorf("envBool(%q) = %v, want %v", c.value, got, c.want)
		}
	}
	if got := envBool("ORGANIZER_TEST_BOOL_UNSET", true); got != true {
		t.Errorf("envBool unset = %v, want fallback true", got)
	}
}

func TestHashCatalogAPIKeyProducesVerifiableHash(t *testing.T) {
	hash, err := HashCatalogAPIKey("secret-key")
	if err != nil {
		t.Fatalf("HashCatalogAPIKey failed: %v", err)
	}
	if hash == "" || hash == "secret-key" {
		t.Errorf("expected a non-trivial bcrypt hash, got %q", hash)
	}
}
