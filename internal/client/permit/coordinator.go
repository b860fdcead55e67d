// Package permit coordinates verification tokens and send permits on
// the client. A permit is what actually authorizes a media send; the
// coordinator keeps the token handshake out of the send path's way.
package permit

import (
	"context"

	"github.com/9r89uf8/mediagate/internal/client/api"
	"github.com/9r89uf8/mediagate/internal/common"
	"github.com/9r89uf8/mediagate/internal/logging"
)

// TokenSource produces one verification token per call. Tokens are
// single-use; the coordinator never caches them.
type TokenSource interface {
	GetToken(ctx context.Context, action string) (string, error)
}

// Coordinator exchanges verification tokens for send permits. It holds
// no permit state: every call is a fresh token fetch plus a server-side
// exchange, and the returned permit's remaining-uses count is
// informational only. A caller batching sends under one permit keeps
// the permit itself rather than calling EnsurePermit again.
type Coordinator struct {
	tokens TokenSource
	client api.Client
	action string
	logger logging.Logger
}

func NewCoordinator(tokens TokenSource, client api.Client, logger logging.Logger) *Coordinator {
	return &Coordinator{
		tokens: tokens,
		client: client,
		action: common.DefaultChatSendAction,
		logger: logger.With("module", "permit_coordinator"),
	}
}

// EnsurePermit fetches a fresh verification token and exchanges it for
// a send permit. Tokens are single-use, so there is nothing to reuse;
// broker and exchange failures propagate uninterpreted so the caller
// can map them to user-facing handling.
func (c *Coordinator) EnsurePermit(ctx context.Context) (*api.Permit, error) {
	token, err := c.tokens.GetToken(ctx, c.action)
	if err != nil {
		return nil, err
	}

	permit, err := c.client.ExchangePermit(ctx, token, c.action)
	if err != nil {
		return nil, err
	}

	c.logger.Debug(ctx, "permit acquired", "permit_id", permit.ID, "uses", permit.UsesLeft)
	return permit, nil
}
