package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-task-sync/internal/client"
	"github.com/MKhiriev/go-task-sync/internal/config"
	"github.com/MKhiriev/go-task-sync/internal/logger"
	"github.com/MKhiriev/go-task-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Println(buildInfo)

	cfg, err := config.GetClientConfig()
	if err != nil {
		logger.NewLogger("go-task-sync").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewClientLogger("go-task-sync", cfg.App.LogFile, cfg.App.LogLevel)
	log.Debug().Str("server", cfg.Adapter.HTTPAddress).Str("control_api", cfg.Server.HTTPAddress).Msg("received configs")

	app, err := client.NewApp(context.Background(), cfg, buildInfo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init sync daemon error")
	}

	if err = app.Run(); err != nil {
		log.Fatal().Err(err).Msg("sync daemon run error")
	}
}
