package voclient

import (
	"net/url"
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() failed: %v", err)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
	if cfg.UserAgent != "voclient/1" {
		t.Fatalf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.CapabilityTTL != 6*time.Hour {
		t.Fatalf("CapabilityTTL = %v", cfg.CapabilityTTL)
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("VOCLIENT_TIMEOUT", "90s")
	t.Setenv("VOCLIENT_USER_AGENT", "survey-pipeline/2.1")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() failed: %v", err)
	}
	if cfg.Timeout != 90*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}
	if cfg.UserAgent != "survey-pipeline/2.1" {
		t.Fatalf("UserAgent = %q", cfg.UserAgent)
	}
}

func TestJoinQuery(t *testing.T) {
	cases := []struct {
		base string
		key  string
		want string
	}{
		{"https://x.org/svc", "A", "https://x.org/svc?A=1"},
		{"https://x.org/svc?", "A", "https://x.org/svc?A=1"},
		{"https://x.org/svc?b=2", "A", "https://x.org/svc?b=2&A=1"},
	}
	for _, c := range cases {
		q := url.Values{}
		q.Set(c.key, "1")
		if got := joinQuery(c.base, q); got != c.want {
			t.Fatalf("joinQuery(%q) = %q, want %q", c.base, got, c.want)
		}
	}
}
