package main

import (
	"context"
	"log"

	"github.com/9r89uf8/mediagate/internal/server"
	"github.com/9r89uf8/mediagate/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
