package authstate

import (
	"errors"
	"strings"
	"time"
)

// Config groups container settings. Build clones it; later changes to the
// caller's copy do not reach the container.
type Config struct {
	Audit    AuditConfig
	Metrics  MetricsConfig
	Token    TokenConfig
	Observer ObserverConfig
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// IncludeSnapshot attaches the binary-encoded committed session to each
	// committed event.
	IncludeSnapshot bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig enables establishing sessions from signed identity tokens.
type TokenConfig struct {
	Enabled       bool
	SigningMethod string // "ed25519" (default) or "hs256"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	TTL           time.Duration
	Leeway        time.Duration
}

/*
====================================
OBSERVER CONFIG
====================================
*/

// ObserverConfig labels observability and audit events.
type ObserverConfig struct {
	Source string
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used by [New].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		Token: TokenConfig{
			Enabled:       false,
			SigningMethod: "ed25519",
			TTL:           15 * time.Minute,
		},
		Observer: ObserverConfig{
			Source: "authstate",
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	// Token
	if c.Token.Enabled {
		switch c.Token.SigningMethod {
		case "ed25519":
			if len(c.Token.PublicKey) == 0 {
				return errors.New("ed25519 requires PublicKey")
			}
		case "hs256":
			if len(c.Token.PrivateKey) == 0 {
				return errors.New("hs256 requires PrivateKey")
			}
		default:
			return errors.New("unsupported token signing method")
		}
		if c.Token.TTL <= 0 {
			return errors.New("Token TTL must be > 0")
		}
		if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
			return errors.New("Token Leeway must be between 0 and 2m")
		}
		if c.Token.Audience != "" && strings.TrimSpace(c.Token.Audience) == "" {
			return errors.New("Token Audience must not be blank")
		}
	}

	// Observer
	if strings.TrimSpace(c.Observer.Source) == "" {
		return errors.New("Observer Source must not be empty")
	}

	return nil
}
