package authstate

import (
	"errors"

	internalaudit "github.com/MrEthical07/authstate/internal/audit"
	"github.com/MrEthical07/authstate/jwt"
	"github.com/MrEthical07/authstate/observability"
	"github.com/MrEthical07/authstate/session"
)

// Builder assembles a [Container]. A Builder is single use: the second Build
// call fails.
type Builder struct {
	config    Config
	auditSink AuditSink
	observer  observability.Observer

	built bool
}

// New returns a Builder holding [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration with a copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithAuditSink sets the sink behind the audit dispatcher. Audit must also be
// enabled in the config for events to flow.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithObserver sets the observer receiving dispatch, subscribe and close
// events. Nil disables observation.
func (b *Builder) WithObserver(o observability.Observer) *Builder {
	b.observer = o
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a container in the
// Anonymous state.
func (b *Builder) Build() (*Container, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		config:   cfg,
		metrics:  NewMetrics(cfg.Metrics),
		observer: b.observer,
	}
	if c.observer == nil {
		c.observer = observability.NoOpObserver{}
	}
	initial := session.Initial()
	c.state.Store(&initial)

	// -------- TOKEN MANAGER --------
	if cfg.Token.Enabled {
		jm, err := jwt.NewManager(jwt.Config{
			TTL:           cfg.Token.TTL,
			SigningMethod: jwt.SigningMethod(cfg.Token.SigningMethod),
			PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
			PublicKey:     cloneBytes(cfg.Token.PublicKey),
			Issuer:        cfg.Token.Issuer,
			Audience:      cfg.Token.Audience,
			Leeway:        cfg.Token.Leeway,
		})
		if err != nil {
			return nil, err
		}
		c.tokens = jm
	}

	// -------- AUDIT --------
	c.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true

	return c, nil
}
