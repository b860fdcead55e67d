package config

import (
	"flag"
	"os"
	"time"

	"github.com/9r89uf8/mediagate/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the pipeline API server
//	-t string   bearer token for the operator session
//	-v string   base URL of the challenge provider
//	-k string   site key registered with the challenge provider
//	-g int      signed view cache TTL in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-v", "-k", "-g"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the API server")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "bearer token")
	fs.StringVar(&cfg.VerifyEndpointAddr, "v", cfg.VerifyEndpointAddr, "challenge provider base URL")
	fs.StringVar(&cfg.SiteKey, "k", cfg.SiteKey, "challenge provider site key")
	signedViewTTL := fs.Int("g", int(cfg.SignedViewTTL.Seconds()), "signed view cache TTL (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SignedViewTTL = time.Duration(*signedViewTTL) * time.Second
}
