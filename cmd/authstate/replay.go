package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/MrEthical07/authstate"
	"gopkg.in/yaml.v3"
)

// script is the YAML replay format:
//
//	source: demo
//	steps:
//	  - kind: establish
//	    detail: {id: "1", displayName: Guest, contactAddress: guest@example.com}
//	  - kind: clear
type script struct {
	Source string               `yaml:"source"`
	Steps  []authstate.Envelope `yaml:"steps"`
}

type replayResult struct {
	Applied  int               `json:"applied"`
	Rejected int               `json:"rejected"`
	Final    authstate.Session `json:"final"`
	Revision uint64            `json:"revision"`
}

type transitionLine struct {
	Revision uint64            `json:"revision"`
	Session  authstate.Session `json:"session"`
}

func loadScript(r io.Reader) (*script, error) {
	var sc script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return &sc, nil
		}
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &sc, nil
}

// runReplay dispatches every step of sc in order and writes one JSON line per
// committed transition, followed by the result.
func runReplay(ctx context.Context, c *authstate.Container, sc *script, out io.Writer, stopOnError bool, logger *slog.Logger) (replayResult, error) {
	enc := json.NewEncoder(out)
	unsub := c.Subscribe(func(_ context.Context, s authstate.Session) {
		_ = enc.Encode(transitionLine{Revision: c.Revision(), Session: s})
	})
	defer unsub()

	if sc.Source != "" {
		ctx = authstate.WithSource(ctx, sc.Source)
	}

	var res replayResult
	var firstErr error
	for i, step := range sc.Steps {
		if err := c.DispatchEnvelope(ctx, step); err != nil {
			res.Rejected++
			logger.Warn("Step rejected", "step", i, "kind", step.Kind, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("step %d: %w", i, err)
			}
			if stopOnError {
				break
			}
			continue
		}
		res.Applied++
	}

	res.Final = c.GetState()
	res.Revision = c.Revision()
	if err := enc.Encode(res); err != nil {
		return res, err
	}
	return res, firstErr
}

func runReplayCommand(logger *slog.Logger) error {
	f, err := os.Open(CLI.Replay.Script)
	if err != nil {
		return err
	}
	defer f.Close()

	sc, err := loadScript(f)
	if err != nil {
		return err
	}

	c, cleanup, err := buildContainer(authstate.DefaultConfig(), CLI.Replay.Sinks, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	stopMetrics := serveMetrics(CLI.Replay.Sinks.MetricsListen, c, logger)
	defer stopMetrics()

	_, err = runReplay(context.Background(), c, sc, os.Stdout, CLI.Replay.StopOnError, logger)
	return err
}
