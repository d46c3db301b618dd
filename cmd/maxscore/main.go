// Command maxscore prints the highest score each calculator can produce.
//
// Autonomous Flight and Piloting are filled systematically through a scoresheet:
// every counter is incremented until it refuses, then every landing slot takes
// its most valuable option. Teamwork is searched exhaustively because color
// matches make the best split of bean bags and balls non-obvious; only matches
// that raise no warning are considered.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/service"
	"github.com/wricardo/adc-hub/internal/report"
)

// Plan is the best set of inputs found for one discipline
type Plan struct {
	Discipline scoring.Discipline `json:"discipline" yaml:"discipline"`
	Score      int                `json:"score" yaml:"score"`
	Inputs     scoring.Scorer     `json:"inputs" yaml:"inputs"`
	Breakdown  scoring.Breakdown  `json:"breakdown" yaml:"breakdown"`
}

func main() {
	cmd := &cli.Command{
		Name:  "maxscore",
		Usage: "Print the maximum score of every discipline",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "text", Usage: "text, json or yaml"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			plans, err := bestPlans()
			if err != nil {
				return err
			}
			return printPlans(cmd.Root().Writer, cmd.String("output"), plans)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func bestPlans() ([]Plan, error) {
	plans := make([]Plan, 0, len(scoring.Disciplines))
	for _, d := range scoring.Disciplines {
		var (
			inputs scoring.Scorer
			err    error
		)
		if d == scoring.Teamwork {
			inputs = bestTeamwork()
		} else {
			inputs, err = fillScoresheet(d)
			if err != nil {
				return nil, err
			}
		}
		plans = append(plans, Plan{
			Discipline: d,
			Score:      inputs.Score(),
			Inputs:     inputs,
			Breakdown:  inputs.Breakdown(),
		})
	}
	return plans, nil
}

// fillScoresheet maxes out every counter and lands on the most valuable free option
func fillScoresheet(d scoring.Discipline) (scoring.Scorer, error) {
	sheet, err := scoring.NewScoresheet(d)
	if err != nil {
		return nil, err
	}
	rules := sheet.Rules()

	for _, t := range rules.Tasks {
		for {
			changed, err := sheet.Increment(t.Key)
			if err != nil {
				return nil, err
			}
			if !changed {
				break
			}
		}
	}

	options := append([]scoring.Landing(nil), scoring.Landings...)
	sort.SliceStable(options, func(i, j int) bool {
		return rules.Landings.Points(options[i]) > rules.Landings.Points(options[j])
	})
	for _, slot := range rules.Slots {
		for _, option := range options {
			if err := sheet.Select(slot, option); err == nil {
				break
			}
		}
	}
	return sheet.Result(), nil
}

// bestTeamwork searches every warning-free Teamwork match for the highest score.
// Landings do not interact with the counters, so the drone pair is chosen first.
func bestTeamwork() scoring.TeamworkMatch {
	var best scoring.TeamworkMatch
	bestLanding := -1
	for _, red := range scoring.Landings {
		for _, blue := range scoring.Landings {
			m := scoring.TeamworkMatch{RedDrone: red, BlueDrone: blue}
			if len(m.Warnings()) > 0 {
				continue
			}
			if score := m.Score(); score > bestLanding {
				bestLanding = score
				best = m
			}
		}
	}

	bestScore := -1
	var counters scoring.TeamworkMatch
	for tops := 0; tops <= scoring.MaxTopsCleared; tops++ {
		for green := 0; green <= scoring.MaxBeanBags && green <= tops; green++ {
			for blue := 0; green+blue <= scoring.MaxBeanBags && green+blue <= tops; blue++ {
				for greenBalls := 0; greenBalls <= scoring.MaxBalls; greenBalls++ {
					for blueBalls := 0; greenBalls+blueBalls <= scoring.MaxBalls; blueBalls++ {
						m := scoring.TeamworkMatch{
							TopsCleared:   tops,
							GreenBeanBags: green,
							BlueBeanBags:  blue,
							NeutralBalls:  scoring.MaxBalls - greenBalls - blueBalls,
							GreenBalls:    greenBalls,
							BlueBalls:     blueBalls,
						}
						if score := m.Score(); score > bestScore {
							bestScore = score
							counters = m
						}
					}
				}
			}
		}
	}

	counters.RedDrone = best.RedDrone
	counters.BlueDrone = best.BlueDrone
	return counters
}

func printPlans(w io.Writer, format string, plans []Plan) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(plans)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(plans)
	case "text", "":
		for _, p := range plans {
			fmt.Fprintf(w, "\n=== %s ===\n", p.Discipline.Title())
			fmt.Fprint(w, report.Calculation(&service.CalculateResult{
				Discipline: p.Discipline,
				Score:      p.Score,
				Breakdown:  p.Breakdown,
			}))
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}
