// Package cli is the interactive operator shell for the media pipeline:
// uploading media, sending permit-gated chat media, status lines and
// signed view resolution.
package cli

import (
	"bufio"
	"io"
	"log/slog"
	"os"

	"github.com/9r89uf8/mediagate/internal/client/api"
	"github.com/9r89uf8/mediagate/internal/client/config"
	"github.com/9r89uf8/mediagate/internal/client/engagement"
	"github.com/9r89uf8/mediagate/internal/client/permit"
	"github.com/9r89uf8/mediagate/internal/client/signedview"
	"github.com/9r89uf8/mediagate/internal/client/upload"
	"github.com/9r89uf8/mediagate/internal/client/verification"
	"github.com/9r89uf8/mediagate/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger

	client  api.Client
	verify  *verification.Broker
	permits *permit.Coordinator
	uploads *upload.Broker
	views   *signedview.Resolver
	likes   *engagement.Likes

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	client := api.NewRestyClient(c.ServerEndpointAddr, c.AccessToken)
	provider := verification.NewHTTPProvider(c.VerifyEndpointAddr, c.SiteKey)
	broker := verification.NewBroker(provider, logger)

	return newApp(c, logger, client, broker, os.Stdin, os.Stdout), nil
}

// newApp wires the brokers over the given transport; tests inject stub
// clients and scripted input here.
func newApp(c *config.Config, logger logging.Logger, client api.Client, broker *verification.Broker, in io.Reader, out io.Writer) *App {
	return &App{
		config:  c,
		logger:  logger,
		client:  client,
		verify:  broker,
		permits: permit.NewCoordinator(broker, client, logger),
		uploads: upload.NewBroker(client, logger),
		views:   signedview.NewResolver(client, c.SignedViewTTL, logger),
		likes:   engagement.NewLikes(client, logger),
		reader:  bufio.NewReader(in),
		out:     out,
	}
}
