package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/authstate"
	"github.com/MrEthical07/authstate/metrics/export/prometheus"
	"github.com/MrEthical07/authstate/middleware"
)

func newServeMux(c *authstate.Container, loginOpts ...middleware.LoginOption) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/login", middleware.LoginHandler(c, loginOpts...))
	mux.Handle("/logout", middleware.LogoutHandler(c))
	mux.Handle("/state", middleware.StateHandler(c))
	mux.Handle("/me", middleware.Guard(c)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := middleware.SessionFromContext(r.Context())
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(s.Identity.DisplayName + "\n"))
	})))
	mux.Handle("/metrics", prometheus.NewPrometheusExporter(c).Handler())
	return mux
}

func runServeCommand(logger *slog.Logger) error {
	cfg := authstate.DefaultConfig()
	if CLI.Serve.Secret != "" {
		cfg.Token.Enabled = true
		cfg.Token.SigningMethod = "hs256"
		cfg.Token.PrivateKey = []byte(CLI.Serve.Secret)
	} else {
		logger.Warn("No token secret configured; /login will answer 503")
	}

	c, cleanup, err := buildContainer(cfg, CLI.Serve.Sinks, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	var loginOpts []middleware.LoginOption
	if CLI.Serve.LoginFailures < 0 {
		return errors.New("--login-failures must be >= 0")
	}
	if CLI.Serve.LoginFailures > 0 {
		if CLI.Serve.LoginWindow <= 0 {
			return errors.New("--login-window must be > 0")
		}
		client, closeClient, err := openRedis(CLI.Serve.Sinks.RedisAddr, logger)
		if err != nil {
			return err
		}
		defer closeClient()
		loginOpts = append(loginOpts, middleware.WithFailureThrottle(client, CLI.Serve.LoginFailures, CLI.Serve.LoginWindow))
		logger.Info("Login throttle enabled", "max_failures", CLI.Serve.LoginFailures, "window", CLI.Serve.LoginWindow)
	}

	srv := &http.Server{
		Addr:              CLI.Serve.Listen,
		Handler:           newServeMux(c, loginOpts...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
