package authstate

import (
	"context"
	"fmt"
)

// EstablishFromToken verifies an identity token and dispatches an establish
// request for the identity it carries. Token failures return an error
// wrapping [ErrTokenInvalid] and leave the session unchanged.
func (c *Container) EstablishFromToken(ctx context.Context, token string) error {
	if c == nil {
		return ErrContainerNotReady
	}
	if c.tokens == nil {
		return ErrTokenEstablishDisabled
	}

	claims, err := c.tokens.Parse(token)
	if err != nil {
		c.metrics.Inc(MetricTokenRejected)
		err = fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		c.rejectedKind(ctx, "establish", err)
		return err
	}

	if err := c.Establish(ctx, claims.Identity()); err != nil {
		return err
	}
	c.metrics.Inc(MetricTokenEstablish)
	return nil
}

// IssueToken signs an identity token for id. It needs a private key in the
// token config.
func (c *Container) IssueToken(id Identity) (string, error) {
	if c == nil {
		return "", ErrContainerNotReady
	}
	if c.tokens == nil {
		return "", ErrTokenEstablishDisabled
	}
	return c.tokens.Issue(id)
}
