package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/service"
	"github.com/wricardo/adc-hub/game/session"
	"github.com/wricardo/adc-hub/internal/logging"
	"github.com/wricardo/adc-hub/internal/report"
)

// Output formats
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

const defaultSkillsLimit = 25

// writeOutput prints v in the requested format; text is the pre-rendered report
func writeOutput(cmd *cli.Command, v interface{}, text string) error {
	w := cmd.Root().Writer
	switch format := strings.ToLower(cmd.String(outputFlag)); format {
	case formatText, "":
		_, err := io.WriteString(w, text)
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q (use text, json or yaml)", format)
	}
}

// flagName turns a task or slot key into a flag name: figure_8 becomes --figure-8
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func scoreCommand() *cli.Command {
	cmd := &cli.Command{
		Name:  "score",
		Usage: "Calculate the score of a finished run from its counts",
	}
	for _, d := range scoring.Disciplines {
		rules, err := scoring.RulesFor(d)
		if err != nil {
			continue
		}
		cmd.Commands = append(cmd.Commands, disciplineCommand(rules))
	}
	return cmd
}

// disciplineCommand exposes one flag per task and landing slot of a calculator
func disciplineCommand(rules *scoring.Rules) *cli.Command {
	var flags []cli.Flag
	for _, t := range rules.Tasks {
		flags = append(flags, &cli.IntFlag{
			Name:  flagName(t.Key),
			Usage: fmt.Sprintf("%s (0-%d)", t.Label, t.Max),
		})
	}
	keys := make([]string, 0, len(scoring.Landings))
	for _, l := range scoring.Landings {
		keys = append(keys, l.Key())
	}
	for _, slot := range rules.Slots {
		flags = append(flags, &cli.StringFlag{
			Name:  flagName(slot),
			Value: scoring.None.Key(),
			Usage: "Landing: " + strings.Join(keys, ", "),
		})
	}

	return &cli.Command{
		Name:  string(rules.Discipline),
		Usage: "Score a " + rules.Title + " run",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			req, err := calculateRequest(rules, cmd)
			if err != nil {
				return err
			}

			scores := service.NewScoreService(session.NewManager(), nil, logging.Component(log, "scores"), service.Observer{})
			result, err := scores.Calculate(ctx, req)
			if err != nil {
				return err
			}
			return writeOutput(cmd, result, report.Calculation(result))
		},
	}
}

// calculateRequest collects the flag values into the same JSON shape the REST API accepts
func calculateRequest(rules *scoring.Rules, cmd *cli.Command) (service.CalculateRequest, error) {
	inputs := make(map[string]interface{}, len(rules.Tasks)+len(rules.Slots))
	for _, t := range rules.Tasks {
		inputs[t.Key] = cmd.Int(flagName(t.Key))
	}
	for _, slot := range rules.Slots {
		inputs[slot] = cmd.String(flagName(slot))
	}

	var req service.CalculateRequest
	body, err := json.Marshal(map[string]interface{}{
		"discipline":             rules.Discipline,
		string(rules.Discipline): inputs,
	})
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("invalid %s inputs: %w", rules.Discipline, err)
	}
	return req, nil
}

func teamCommand() *cli.Command {
	return &cli.Command{
		Name:      "team",
		Usage:     "Look up a team's awards, rankings and world-skills standing",
		ArgsUsage: "<number>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			number := strings.TrimSpace(cmd.Args().First())
			if number == "" {
				return fmt.Errorf("team number is required")
			}

			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			teamReport, err := svc.lookup.FetchTeam(ctx, number)
			if err != nil {
				return err
			}
			return writeOutput(cmd, teamReport, report.TeamReport(teamReport))
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Search competitions of a season",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Event name contains"},
			&cli.IntFlag{Name: "season", Usage: "Season id (default: selected season)"},
			&cli.IntFlag{Name: "level", Usage: "Level class id"},
			&cli.IntFlag{Name: "region", Usage: "Region id"},
			&cli.BoolFlag{Name: "no-leagues", Usage: "Exclude league events"},
			&cli.IntFlag{Name: "page", Value: 1, Usage: "Search results page"},
			&cli.BoolFlag{Name: "past", Usage: "Include events that already ended"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			filter := service.EventFilter{
				Name:         cmd.String("name"),
				SeasonID:     int(cmd.Int("season")),
				LevelClassID: int(cmd.Int("level")),
				RegionID:     int(cmd.Int("region")),
				NoLeagues:    cmd.Bool("no-leagues"),
				Page:         int(cmd.Int("page")),
			}
			if cmd.IsSet("past") {
				active := !cmd.Bool("past")
				filter.DateFilterActive = &active
			}

			events, err := svc.lookup.FetchEvents(ctx, filter)
			if err != nil {
				return err
			}
			return writeOutput(cmd, events, report.Events(events)+"\n")
		},
	}
}

func skillsCommand() *cli.Command {
	return &cli.Command{
		Name:  "skills",
		Usage: "Show the world-skills leaderboard",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "season", Usage: "Season id (default: selected season)"},
			&cli.StringFlag{Name: "grade", Usage: "High School or Middle School (default: stored setting)"},
			&cli.BoolFlag{Name: "favorites", Usage: "Only favorite teams"},
			&cli.StringFlag{Name: "letter", Usage: "Only team numbers ending with this letter"},
			&cli.IntFlag{Name: "region", Usage: "Only teams from this region id"},
			&cli.IntFlag{Name: "limit", Value: defaultSkillsLimit, Usage: "Rows to print in text output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			page, err := svc.lookup.WorldSkills(ctx, service.SkillsQuery{
				SeasonID:  int(cmd.Int("season")),
				Grade:     cmd.String("grade"),
				Favorites: cmd.Bool("favorites"),
				Letter:    cmd.String("letter"),
				RegionID:  int(cmd.Int("region")),
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd, page, report.SkillsPage(page, int(cmd.Int("limit"))))
		},
	}
}

func seasonsCommand() *cli.Command {
	return &cli.Command{
		Name:  "seasons",
		Usage: "List the seasons in the catalog",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := setup(cmd)
			if err != nil {
				return err
			}
			defer svc.Close()

			seasons, err := svc.scores.ListSeasons(ctx)
			if err != nil {
				return err
			}
			return writeOutput(cmd, seasons, report.Seasons(seasons))
		},
	}
}
