package main

import (
	"context"
	"log"

	"github.com/mlevkov/pagekeeper/internal/cli"
	"github.com/mlevkov/pagekeeper/internal/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())
}
