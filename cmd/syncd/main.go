package main

import (
	"fmt"

	"github.com/MRudenko/go-budget-sync/internal/app"
	"github.com/MRudenko/go-budget-sync/internal/config"
	"github.com/MRudenko/go-budget-sync/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("budget-syncd").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewDaemonLogger("budget-syncd", logger.FileConfig{
		Path:       cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})

	daemon, err := app.NewApp(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init daemon error")
	}

	if err = daemon.Run(); err != nil {
		log.Fatal().Err(err).Msg("daemon run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
