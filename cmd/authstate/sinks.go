package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/MrEthical07/authstate"
	"github.com/MrEthical07/authstate/metrics/export/prometheus"
	"github.com/MrEthical07/authstate/observability"
	"github.com/alicebob/miniredis/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// buildAuditSink opens the sink selected by flags. The returned cleanup must
// run after the container is closed so queued events still reach the sink.
func buildAuditSink(flags auditFlags, logger *slog.Logger) (authstate.AuditSink, func(), error) {
	noop := func() {}

	switch flags.Audit {
	case "", "none":
		return nil, noop, nil
	case "json":
		return authstate.NewJSONWriterSink(os.Stderr), noop, nil
	case "redis":
		client, closeClient, err := openRedis(flags.RedisAddr, logger)
		if err != nil {
			return nil, noop, err
		}
		sink := authstate.NewRedisStreamSink(client, authstate.RedisStreamConfig{Stream: flags.RedisStream})
		return sink, func() {
			if n := sink.Failures(); n > 0 {
				logger.Warn("Audit stream writes failed", "failures", n)
			}
			closeClient()
		}, nil
	case "nats":
		conn, err := nats.Connect(flags.NATSURL, nats.Name("authstate"))
		if err != nil {
			return nil, noop, fmt.Errorf("nats connect %s: %w", flags.NATSURL, err)
		}
		sink := authstate.NewNATSSink(conn, flags.NATSSubject)
		return sink, func() {
			if n := sink.Failures(); n > 0 {
				logger.Warn("Audit publishes failed", "failures", n)
			}
			_ = conn.Drain()
		}, nil
	default:
		return nil, noop, fmt.Errorf("unknown audit sink %q", flags.Audit)
	}
}

// openRedis connects to addr, or to an in-process miniredis when addr is
// empty, and pings it.
func openRedis(addr string, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	var stopLocal func()
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		addr = mr.Addr()
		stopLocal = mr.Close
		logger.Info("Using in-process miniredis", "addr", addr)
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	closeAll := func() {
		_ = client.Close()
		if stopLocal != nil {
			stopLocal()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return client, closeAll, nil
}

// buildContainer wires the CLI stack around a container: slog observer, the
// selected audit sink and latency metrics.
func buildContainer(cfg authstate.Config, flags auditFlags, logger *slog.Logger) (*authstate.Container, func(), error) {
	sink, closeSink, err := buildAuditSink(flags, logger)
	if err != nil {
		return nil, nil, err
	}

	cfg.Observer.Source = CLI.Source
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	if sink != nil {
		cfg.Audit.Enabled = true
		cfg.Audit.DropIfFull = false
		cfg.Audit.IncludeSnapshot = flags.Snapshot
	}

	for _, w := range cfg.Lint().BySeverity(authstate.LintWarn) {
		logger.Warn("Config lint", "code", w.Code, "severity", w.Severity.String(), "message", w.Message)
	}

	c, err := authstate.New().
		WithConfig(cfg).
		WithAuditSink(sink).
		WithObserver(observability.NewSlogObserver(logger)).
		Build()
	if err != nil {
		closeSink()
		return nil, nil, err
	}

	return c, func() {
		c.Close()
		closeSink()
	}, nil
}

// serveMetrics exposes the container on addr until the returned stop runs.
func serveMetrics(addr string, c *authstate.Container, logger *slog.Logger) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", prometheus.NewPrometheusExporter(c).Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	logger.Info("Serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
