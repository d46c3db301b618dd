package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/service"
)

// Script is a recorded run: the sheet to create and the actions to play on it
type Script struct {
	Discipline string `yaml:"discipline"`
	Label      string `yaml:"label"`
	Steps      []Step `yaml:"steps"`
}

// Step is one scoresheet action. Repeat plays it several times.
type Step struct {
	Action  string `yaml:"action"`
	Task    string `yaml:"task,omitempty"`
	Slot    string `yaml:"slot,omitempty"`
	Landing string `yaml:"landing,omitempty"`
	Repeat  int    `yaml:"repeat,omitempty"`
}

// LoadScript reads and checks a YAML script
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// Validate checks every step against the discipline's rules before anything is sent
func (s *Script) Validate() error {
	d, err := scoring.ParseDiscipline(s.Discipline)
	if err != nil {
		return err
	}
	rules, err := scoring.RulesFor(d)
	if err != nil {
		return err
	}

	for i, step := range s.Steps {
		switch step.Action {
		case "increment", "decrement":
			if _, ok := rules.Task(step.Task); !ok {
				return fmt.Errorf("step %d: %w: %q", i+1, scoring.ErrUnknownTask, step.Task)
			}
		case "landing":
			slot := step.Slot
			if slot == "" {
				slot = scoring.SlotLanding
			}
			if !rules.HasSlot(slot) {
				return fmt.Errorf("step %d: %w: %q", i+1, scoring.ErrUnknownSlot, slot)
			}
			if _, err := scoring.ParseLanding(step.Landing); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		case "clear":
		default:
			return fmt.Errorf("step %d: unknown action %q", i+1, step.Action)
		}
		if step.Repeat < 0 {
			return fmt.Errorf("step %d: repeat must not be negative", i+1)
		}
	}
	return nil
}

// Summary reports how a replay went
type Summary struct {
	Actions  int
	Changed  int
	Rejected int
	Sheet    *service.SheetInfo
}

// Player plays scripts against a sheet
type Player struct {
	client *Client
	delay  time.Duration
	log    zerolog.Logger
}

func NewPlayer(client *Client, delay time.Duration, log zerolog.Logger) *Player {
	return &Player{client: client, delay: delay, log: log}
}

// Play runs every step in order. Rejected landings are logged and skipped;
// any other failure stops the replay.
func (p *Player) Play(ctx context.Context, script *Script) (*Summary, error) {
	summary := &Summary{}

	for i, step := range script.Steps {
		times := step.Repeat
		if times == 0 {
			times = 1
		}
		for n := 0; n < times; n++ {
			result, err := p.apply(ctx, step)
			summary.Actions++
			if result != nil && result.Sheet != nil {
				summary.Sheet = result.Sheet
			}

			switch {
			case errors.Is(err, ErrRejected):
				summary.Rejected++
				p.log.Warn().Int("step", i+1).Str("action", step.Action).Msg(err.Error())
			case err != nil:
				return summary, fmt.Errorf("step %d: %w", i+1, err)
			case result.Changed:
				summary.Changed++
			}

			if result != nil && result.Sheet != nil && result.Sheet.State != nil {
				p.log.Debug().
					Int("step", i+1).
					Str("action", step.Action).
					Bool("changed", result.Changed).
					Int("score", result.Sheet.State.Score).
					Msg(result.Message)
			}

			if p.delay > 0 {
				select {
				case <-ctx.Done():
					return summary, ctx.Err()
				case <-time.After(p.delay):
				}
			}
		}
	}
	return summary, nil
}

func (p *Player) apply(ctx context.Context, step Step) (*service.ActionResult, error) {
	switch step.Action {
	case "increment":
		return p.client.Increment(ctx, step.Task)
	case "decrement":
		return p.client.Decrement(ctx, step.Task)
	case "landing":
		slot := step.Slot
		if slot == "" {
			slot = scoring.SlotLanding
		}
		return p.client.Landing(ctx, slot, step.Landing)
	case "clear":
		return p.client.Clear(ctx)
	}
	return nil, fmt.Errorf("unknown action %q", step.Action)
}
