package main

import (
	"fmt"
	"os"

	"github.com/DRSN-tech/catalog-backend/internal/app"
	config "github.com/DRSN-tech/catalog-backend/internal/cfg"
	"github.com/DRSN-tech/catalog-backend/pkg/logger"
)

//	@title			Catalog Categories API
//	@version		1.0
//	@description	Управление категориями каталога видео
//	@BasePath		/api/v1
func main() {
	log, err := logger.NewZapLogger(config.LoadLogCfg().Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(log))
}

func run(log logger.Logger) int {
	defer log.Sync()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		return 1
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		return 1
	}

	if err := application.Run(); err != nil {
		return 1
	}

	return 0
}
