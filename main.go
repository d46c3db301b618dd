// Command adchub runs the ADC Hub scoring and lookup server.
//
// Subcommands:
//  1. "serve" (default) runs the HTTP server exposing the REST API, WebSocket live views,
//     Prometheus metrics and an /mcp HTTP endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "score", "team", "events", "skills" and "seasons" answer one question and exit
//
// Configuration comes from adchub.yaml, ADCHUB_* environment variables (a .env file is
// loaded first) and the flags below, in increasing precedence.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/adc-hub/internal/appconfig"
	"github.com/wricardo/adc-hub/internal/logging"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "adchub"
)

const (
	configFlag   = "config"
	logLevelFlag = "log-level"
	debugFlag    = "debug"
	outputFlag   = "output"
)

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:    AppName,
		Usage:   "Aerial Drone Competition scoring calculators, team lookup and world skills",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file (default: ./adchub.yaml when present)",
				Sources: cli.EnvVars("ADCHUB_CONFIG"),
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "Override log.level (trace, debug, info, warn, error, off)",
			},
			&cli.BoolFlag{
				Name:  debugFlag,
				Usage: "Shortcut for --log-level debug",
			},
			&cli.StringFlag{
				Name:    outputFlag,
				Aliases: []string{"o"},
				Value:   formatText,
				Usage:   "Output format of one-shot commands: text, json or yaml",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			scoreCommand(),
			teamCommand(),
			eventsCommand(),
			skillsCommand(),
			seasonsCommand(),
		},
		DefaultCommand: "serve",
	}
}

// main loads .env, then runs the selected subcommand until SIGINT or SIGTERM
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and builds the root logger.
// Logs go to stderr so stdout stays clean for MCP stdio and command output.
func loadConfig(cmd *cli.Command) (*appconfig.Config, zerolog.Logger, error) {
	cfg, err := appconfig.Load(cmd.String(configFlag))
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	if level := cmd.String(logLevelFlag); level != "" {
		cfg.Log.Level = level
	}
	if cmd.Bool(debugFlag) {
		cfg.Log.Level = "debug"
	}

	log := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, log, nil
}

// setup is the common prologue of every subcommand
func setup(cmd *cli.Command) (*services, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return initializeServices(cfg, log)
}
