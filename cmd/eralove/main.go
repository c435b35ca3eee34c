// Package main provides the entry point for the eralove CLI.
// The CLI is a thin shell over the EraLove client pipeline: it signs in,
// inspects the persisted session, and performs one-off authenticated
// requests against an EraLove backend.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eralove/eralove-go/internal/cmd"
	"github.com/eralove/eralove-go/internal/logging"
	"github.com/eralove/eralove-go/internal/util"
	"github.com/eralove/eralove-go/sdk/config"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Overridden via ldflags during release builds.
var (
	Version           = "dev"
	Commit            = "none"
	BuildDate         = "unknown"
	DefaultConfigPath = ""
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
}

// main parses command-line flags, loads configuration, and dispatches to the
// selected command mode (login, register, logout, profile, events, or fetch).
func main() {
	fmt.Printf("EraLove CLI Version: %s, Commit: %s, BuiltAt: %s\n", Version, Commit, BuildDate)

	// Command-line flags to control the application's behavior.
	var login bool
	var register bool
	var logout bool
	var profile bool
	var events bool
	var fetchURL string
	var outputPath string
	var configPath string

	flag.BoolVar(&login, "login", false, "Sign in to an EraLove account")
	flag.BoolVar(&register, "register", false, "Create a new EraLove account")
	flag.BoolVar(&logout, "logout", false, "Revoke the persisted session")
	flag.BoolVar(&profile, "profile", false, "Print the signed-in profile")
	flag.BoolVar(&events, "events", false, "List the couple's events")
	flag.StringVar(&fetchURL, "fetch", "", "Resolve an image URL through the authenticated fetcher")
	flag.StringVar(&outputPath, "o", "", "Output path for -fetch (print a summary when omitted)")
	flag.StringVar(&configPath, "config", DefaultConfigPath, "Configure File Path")

	flag.Parse()

	wd, err := os.Getwd()
	if err != nil {
		log.Errorf("failed to get working directory: %v", err)
		return
	}

	// Load environment variables from .env if present.
	if errLoad := godotenv.Load(filepath.Join(wd, ".env")); errLoad != nil {
		if !errors.Is(errLoad, os.ErrNotExist) {
			log.WithError(errLoad).Warn("failed to load .env file")
		}
	}

	if configPath == "" {
		configPath = filepath.Join(wd, "config.yaml")
		// The implicit default is optional; ERALOVE_* env vars can stand alone.
		if _, errStat := os.Stat(configPath); errStat != nil {
			configPath = ""
		}
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return
	}

	if err = logging.ConfigureLogOutput(cfg); err != nil {
		log.Errorf("failed to configure log output: %v", err)
		return
	}

	// Set the log level based on the configuration.
	util.SetLogLevel(cfg)

	switch {
	case login:
		cmd.DoLogin(cfg)
	case register:
		cmd.DoRegister(cfg)
	case logout:
		cmd.DoLogout(cfg)
	case profile:
		cmd.DoProfile(cfg)
	case events:
		cmd.DoEvents(cfg)
	case fetchURL != "":
		cmd.DoFetch(cfg, fetchURL, outputPath)
	default:
		flag.Usage()
	}
}
