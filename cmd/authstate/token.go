package main

import (
	"fmt"
	"io"

	"github.com/MrEthical07/authstate"
)

func issueToken(id authstate.Identity, secret string, cfg authstate.TokenConfig) (string, error) {
	cfg.Enabled = true
	cfg.SigningMethod = "hs256"
	cfg.PrivateKey = []byte(secret)

	full := authstate.DefaultConfig()
	full.Token = cfg
	c, err := authstate.New().WithConfig(full).WithMetricsEnabled(false).Build()
	if err != nil {
		return "", err
	}
	defer c.Close()

	return c.IssueToken(id)
}

func runTokenCommand(out io.Writer) error {
	token, err := issueToken(authstate.Identity{
		ID:             CLI.Token.ID,
		DisplayName:    CLI.Token.Name,
		ContactAddress: CLI.Token.Email,
	}, CLI.Token.Secret, authstate.TokenConfig{
		TTL:    CLI.Token.TTL,
		Issuer: CLI.Token.Issuer,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
