package authstate

import (
	"testing"
	"time"
)

func TestLint_DefaultConfigOnlyInfo(t *testing.T) {
	cfg := defaultConfig()
	ws := cfg.Lint()

	if len(ws.BySeverity(LintWarn)) != 0 {
		t.Fatalf("default config should have no WARN/HIGH warnings, got %v", ws.Codes())
	}
	if !containsCode(ws.Codes(), "audit_disabled") {
		t.Error("expected audit_disabled info on default config")
	}
}

func TestLint_Codes(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		code   string
		want   bool
	}{
		{
			name:   "blocking audit",
			mutate: func(c *Config) { c.Audit.Enabled = true; c.Audit.DropIfFull = false },
			code:   "audit_blocking",
			want:   true,
		},
		{
			name: "small audit buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 4
			},
			code: "audit_buffer_small",
			want: true,
		},
		{
			name: "snapshot pii",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.IncludeSnapshot = true
			},
			code: "audit_snapshot_pii",
			want: true,
		},
		{
			name:   "snapshot ignored",
			mutate: func(c *Config) { c.Audit.IncludeSnapshot = true },
			code:   "audit_snapshot_ignored",
			want:   true,
		},
		{
			name:   "metrics disabled",
			mutate: func(c *Config) { c.Metrics.Enabled = false },
			code:   "metrics_disabled",
			want:   true,
		},
		{
			name: "long token ttl",
			mutate: func(c *Config) {
				c.Token.Enabled = true
				c.Token.TTL = 2 * time.Hour
			},
			code: "token_ttl_long",
			want: true,
		},
		{
			name: "large leeway",
			mutate: func(c *Config) {
				c.Token.Enabled = true
				c.Token.Leeway = time.Minute
			},
			code: "token_leeway_large",
			want: true,
		},
		{
			name: "hs256",
			mutate: func(c *Config) {
				c.Token.Enabled = true
				c.Token.SigningMethod = "hs256"
				c.Token.PrivateKey = make([]byte, 32)
			},
			code: "signing_hs256",
			want: true,
		},
		{
			name: "hs256 long key is not short",
			mutate: func(c *Config) {
				c.Token.Enabled = true
				c.Token.SigningMethod = "hs256"
				c.Token.PrivateKey = make([]byte, 32)
			},
			code: "hs256_key_short",
			want: false,
		},
		{
			name: "token disabled ignores ttl",
			mutate: func(c *Config) {
				c.Token.TTL = 48 * time.Hour
			},
			code: "token_ttl_long",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			got := containsCode(cfg.Lint().Codes(), tt.code)
			if got != tt.want {
				t.Fatalf("code %s present=%v, want %v (codes %v)", tt.code, got, tt.want, cfg.Lint().Codes())
			}
		})
	}
}

func TestLint_AsError(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Lint().AsError(LintHigh); err != nil {
		t.Errorf("default config should not fail AsError(LintHigh): %v", err)
	}

	cfg.Token.Enabled = true
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = []byte("short")
	if err := cfg.Lint().AsError(LintHigh); err == nil {
		t.Error("expected AsError(LintHigh) to fail for a short hs256 secret")
	}
}

func TestLint_BySeverity(t *testing.T) {
	cfg := defaultConfig()
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false
	cfg.Token.Enabled = true
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = []byte("short")
	ws := cfg.Lint()

	high := ws.BySeverity(LintHigh)
	if len(high) != 1 || high[0].Code != "hs256_key_short" {
		t.Fatalf("expected only hs256_key_short at HIGH, got %v", high.Codes())
	}
	for _, w := range ws.BySeverity(LintWarn) {
		if w.Severity < LintWarn {
			t.Errorf("BySeverity(LintWarn) returned warning with severity %s", w.Severity)
		}
	}
}

// helpers

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
