package authstate

import (
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks a configuration warning.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return fmt.Sprintf("LintSeverity(%d)", int(s))
	}
}

// LintWarning is a configuration that is valid but probably unintended.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the list of warnings returned by [Config.Lint].
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError returns an error listing every warning at or above min, or nil.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	parts := make([]string, 0, len(hits))
	for _, w := range hits {
		parts = append(parts, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return fmt.Errorf("config lint: %s", strings.Join(parts, "; "))
}

const minHS256KeyLen = 32

// Lint reports settings that pass [Config.Validate] but are likely mistakes.
// Lint never changes c.
func (c *Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	// Audit
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "transitions are not audited")
		if c.Audit.IncludeSnapshot {
			add("audit_snapshot_ignored", LintInfo, "IncludeSnapshot has no effect while audit is disabled")
		}
	} else {
		if !c.Audit.DropIfFull {
			add("audit_blocking", LintWarn, "a slow audit sink blocks Dispatch once the buffer fills")
		} else if c.Audit.BufferSize < 16 {
			add("audit_buffer_small", LintWarn, "small audit buffer drops events under bursts")
		}
		if c.Audit.IncludeSnapshot {
			add("audit_snapshot_pii", LintWarn, "audit snapshots carry display names and contact addresses")
		}
	}

	// Metrics
	if !c.Metrics.Enabled {
		add("metrics_disabled", LintInfo, "container metrics are disabled")
	}

	// Token
	if c.Token.Enabled {
		if c.Token.TTL > time.Hour {
			add("token_ttl_long", LintWarn, "identity tokens live longer than 1h")
		}
		if c.Token.Leeway > 30*time.Second {
			add("token_leeway_large", LintWarn, "token leeway above 30s widens the replay window")
		}
		if strings.TrimSpace(c.Token.Issuer) == "" {
			add("token_issuer_missing", LintInfo, "tokens carry no issuer claim")
		}
		switch c.Token.SigningMethod {
		case "hs256":
			add("signing_hs256", LintInfo, "hs256 shares one secret between issuers and verifiers")
			if len(c.Token.PrivateKey) < minHS256KeyLen {
				add("hs256_key_short", LintHigh, "hs256 secret is shorter than 32 bytes")
			}
		case "ed25519":
			if len(c.Token.PrivateKey) == 0 {
				add("token_verify_only", LintInfo, "no private key: IssueToken is unavailable")
			}
		}
	}

	return ws
}
