package main

import (
	"context"
	"log"
	"os"

	"github.com/9r89uf8/mediagate/internal/buildinfo"
	"github.com/9r89uf8/mediagate/internal/client/cli"
	"github.com/9r89uf8/mediagate/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
