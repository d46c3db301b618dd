// Command replay plays a recorded run into a live scoresheet through the REST API,
// so WebSocket viewers watch the score build up action by action.
//
//	replay --url http://localhost:8080 --delay 500ms match.yaml
//
// The sheet id is saved to .sheet; --continue resumes a sheet by id instead of
// creating one. The sheet is cleared before the script starts.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

const sheetFile = ".sheet"

func main() {
	cmd := &cli.Command{
		Name:      "replay",
		Usage:     "Play a YAML script of scoresheet actions against a running server",
		ArgsUsage: "<script.yaml>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "ADC Hub server URL"},
			&cli.StringFlag{Name: "continue", Usage: "Resume an existing sheet by ID"},
			&cli.DurationFlag{Name: "delay", Usage: "Delay between actions (0 = no delay)"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	level := zerolog.InfoLevel
	if cmd.Bool("v") {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("script path is required")
	}
	script, err := LoadScript(path)
	if err != nil {
		return err
	}

	log.Info().Str("url", cmd.String("url")).Msg("Connecting to ADC Hub")
	client := NewClient(cmd.String("url"))

	sheetID := cmd.String("continue")
	if sheetID == "" {
		if data, err := os.ReadFile(sheetFile); err == nil {
			sheetID = string(bytes.TrimSpace(data))
		}
	}

	if sheetID != "" {
		sheet, err := client.UseSheet(ctx, sheetID)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Failed to resume sheet (may be expired), creating a new one")
			sheetID = ""
		case string(sheet.Discipline) != script.Discipline:
			log.Warn().Str("sheet", string(sheet.Discipline)).Msg("Saved sheet has another discipline, creating a new one")
			sheetID = ""
		default:
			log.Info().Str("sheet", sheetID).Msg("Sheet resumed")
		}
	}

	if sheetID == "" {
		sheet, err := client.CreateSheet(ctx, script.Discipline, script.Label)
		if err != nil {
			return err
		}
		log.Info().Str("sheet", sheet.ID).Msg("Sheet created")
		if err := os.WriteFile(sheetFile, []byte(sheet.ID), 0644); err != nil {
			log.Warn().Err(err).Msg("Failed to save sheet ID")
		}
	}

	if _, err := client.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}

	summary, err := NewPlayer(client, cmd.Duration("delay"), log).Play(ctx, script)
	if err != nil {
		return err
	}

	score := 0
	if summary.Sheet != nil && summary.Sheet.State != nil {
		score = summary.Sheet.State.Score
	}
	log.Info().
		Str("sheet", client.SheetID()).
		Int("actions", summary.Actions).
		Int("changed", summary.Changed).
		Int("rejected", summary.Rejected).
		Int("score", score).
		Msg("Replay finished")
	return nil
}
