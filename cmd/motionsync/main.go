package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	_ "time/tzdata"

	"github.com/chrissnell/motionsync/internal/app"
	"github.com/chrissnell/motionsync/internal/constants"
	"github.com/chrissnell/motionsync/internal/log"
	"github.com/chrissnell/motionsync/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to a YAML configuration file (optional)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("motionsync %s\n", constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	cfgData, err := loadConfig(*cfgFile)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	application := app.New(cfgData, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(cfgFile string) (*config.ConfigData, error) {
	if cfgFile == "" {
		return config.DefaultConfig(), nil
	}
	filename, _ := filepath.Abs(cfgFile)

	var provider config.ConfigProvider = config.NewYAMLProvider(filename)
	defer provider.Close()

	cfgData, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}
	return cfgData, nil
}
