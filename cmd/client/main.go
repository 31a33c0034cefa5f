package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/shoplist/internal/buildinfo"
	"github.com/dmitrijs2005/shoplist/internal/client/cli"
	"github.com/dmitrijs2005/shoplist/internal/client/config"
	"github.com/dmitrijs2005/shoplist/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	log := logging.Setup(logging.LevelFromEnv("info"))

	cfg, err := loadConfig()
	if err != nil {
		log.Error(ctx, "invalid configuration", "error", err)
		os.Exit(1)
	}
	log = logging.Setup(logging.ParseLevel(cfg.LogLevel))

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to start", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	app.Run(ctx)
}

// loadConfig turns the loader's panics on bad files or flags into an error.
func loadConfig() (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return config.LoadConfig(), nil
}
