package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var CLI struct {
	EnvFile string `help:"Dotenv file loaded before flags are resolved" default:".env" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`
	Source  string `help:"Source label attached to events" default:"authstate-cli" env:"AUTHSTATE_SOURCE"`

	Replay struct {
		Script      string     `arg:"" help:"YAML script of transition requests" type:"existingfile"`
		StopOnError bool       `help:"Stop at the first rejected request"`
		Sinks       auditFlags `embed:""`
	} `cmd:"" help:"Replay a transition script against a fresh container"`

	Token struct {
		ID     string        `required:"" help:"Identity ID"`
		Name   string        `required:"" help:"Display name"`
		Email  string        `help:"Contact address"`
		Secret string        `required:"" help:"HS256 signing secret" env:"AUTHSTATE_TOKEN_SECRET"`
		TTL    time.Duration `help:"Token lifetime" default:"15m"`
		Issuer string        `help:"Issuer claim" env:"AUTHSTATE_TOKEN_ISSUER"`
	} `cmd:"" help:"Issue a signed identity token"`

	Serve struct {
		Listen        string        `help:"HTTP listen address" default:":8080" env:"AUTHSTATE_LISTEN"`
		Secret        string        `help:"HS256 secret for login tokens" env:"AUTHSTATE_TOKEN_SECRET"`
		LoginFailures int           `help:"Rejected logins per client address before 429; 0 disables" default:"0"`
		LoginWindow   time.Duration `help:"Window for the login failure budget" default:"15m"`
		Sinks         auditFlags    `embed:""`
	} `cmd:"" help:"Serve a container over HTTP with login, logout, state and metrics routes"`

	Loadtest struct {
		Concurrency int `help:"Concurrent workers" default:"64"`
		Ops         int `help:"Operations per phase" default:"200000"`
		Listeners   int `help:"Listeners registered on the container" default:"4"`
	} `cmd:"" help:"Measure dispatch and read latency under concurrency"`
}

type auditFlags struct {
	Audit         string `help:"Audit sink: none, json, redis or nats" enum:"none,json,redis,nats" default:"none" env:"AUTHSTATE_AUDIT"`
	RedisAddr     string `help:"Redis address for the audit stream and login throttle; empty starts an in-process miniredis" env:"REDIS_ADDR"`
	RedisStream   string `help:"Redis stream key" default:"authstate:audit"`
	NATSURL       string `name:"nats-url" help:"NATS server URL" default:"nats://127.0.0.1:4222" env:"NATS_URL"`
	NATSSubject   string `name:"nats-subject" help:"NATS subject prefix" default:"authstate.audit"`
	Snapshot      bool   `help:"Attach encoded session snapshots to audit events"`
	MetricsListen string `help:"Serve Prometheus metrics on this address while running"`
}

func main() {
	preloadEnv(os.Args[1:])

	ctx := kong.Parse(&CLI,
		kong.Name("authstate"),
		kong.Description("Authentication state container tooling."),
		kong.UsageOnError(),
	)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	var err error
	switch ctx.Command() {
	case "replay <script>":
		err = runReplayCommand(logger)
	case "token":
		err = runTokenCommand(os.Stdout)
	case "serve":
		err = runServeCommand(logger)
	case "loadtest":
		err = runLoadtestCommand(os.Stdout)
	default:
		err = fmt.Errorf("unknown command %q", ctx.Command())
	}
	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

// preloadEnv loads the dotenv file before kong resolves env-backed flags.
// A missing default file is ignored.
func preloadEnv(args []string) {
	path := ".env"
	explicit := false
	for i, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--env-file="):
			path = strings.TrimPrefix(arg, "--env-file=")
			explicit = true
		case arg == "--env-file" && i+1 < len(args):
			path = args[i+1]
			explicit = true
		}
	}

	if err := godotenv.Load(path); err != nil && explicit {
		fmt.Fprintf(os.Stderr, "failed to load env file %s: %v\n", path, err)
		os.Exit(2)
	}
}
