package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Discipline identifies one of the three scored competition disciplines
type Discipline string

const (
	Autonomous Discipline = "autonomous"
	Piloting   Discipline = "piloting"
	Teamwork   Discipline = "teamwork"
)

// Landing slots
const (
	SlotLanding   = "landing"
	SlotRedDrone  = "red_drone"
	SlotBlueDrone = "blue_drone"
)

// Teamwork soft caps shared by counter groups
const (
	GroupBeanBags = "bean_bags"
	GroupBalls    = "balls"

	MaxBeanBags    = 7
	MaxBalls       = 10
	MaxTopsCleared = 7
)

var (
	ErrUnknownDiscipline  = errors.New("unknown discipline")
	ErrUnknownTask        = errors.New("unknown task")
	ErrUnknownSlot        = errors.New("unknown landing slot")
	ErrUnknownLanding     = errors.New("unknown landing option")
	ErrLandingUnavailable = errors.New("landing option unavailable")
)

// Disciplines lists every supported discipline in display order
var Disciplines = []Discipline{Autonomous, Piloting, Teamwork}

// ParseDiscipline resolves a discipline name (case-insensitive)
func ParseDiscipline(name string) (Discipline, error) {
	d := Discipline(strings.ToLower(strings.TrimSpace(name)))
	switch d {
	case Autonomous, Piloting, Teamwork:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDiscipline, name)
}

// Title returns the human readable discipline name
func (d Discipline) Title() string {
	switch d {
	case Autonomous:
		return "Autonomous Flight"
	case Piloting:
		return "Piloting"
	case Teamwork:
		return "Teamwork"
	}
	return string(d)
}

// Task describes one counter on a calculator.
// Points is zero for teamwork tasks, whose value is not linear.
type Task struct {
	Key    string `json:"key" yaml:"key"`
	Label  string `json:"label" yaml:"label"`
	Points int    `json:"points,omitempty" yaml:"points,omitempty"`
	Max    int    `json:"max" yaml:"max"`
	Group  string `json:"group,omitempty" yaml:"group,omitempty"`
}

// LineItem is one contribution to a total score
type LineItem struct {
	Key    string `json:"key" yaml:"key"`
	Label  string `json:"label" yaml:"label"`
	Count  int    `json:"count" yaml:"count"`
	Points int    `json:"points" yaml:"points"`
}

// Breakdown lists the line items of a score. Total always equals their sum.
type Breakdown struct {
	Items []LineItem `json:"items" yaml:"items"`
	Total int        `json:"total" yaml:"total"`
}

func (b *Breakdown) add(key, label string, count, points int) {
	b.Items = append(b.Items, LineItem{Key: key, Label: label, Count: count, Points: points})
	b.Total += points
}

// WarningCode identifies an advisory teamwork warning
type WarningCode string

const (
	WarnBeanBagsExceedTops     WarningCode = "bean_bags_exceed_tops"
	WarnSameLandingObject      WarningCode = "same_landing_object"
	WarnPadBullseyeCombination WarningCode = "pad_bullseye_combination"
)

// Warning is an advisory signal. It never blocks score computation.
type Warning struct {
	Code    WarningCode `json:"code" yaml:"code"`
	Message string      `json:"message" yaml:"message"`
}

// Rules describes the static shape of a discipline's calculator
type Rules struct {
	Discipline Discipline     `json:"discipline" yaml:"discipline"`
	Title      string         `json:"title" yaml:"title"`
	Tasks      []Task         `json:"tasks" yaml:"tasks"`
	Slots      []string       `json:"slots" yaml:"slots"`
	Landings   LandingTable   `json:"landings" yaml:"landings"`
	GroupCaps  map[string]int `json:"group_caps,omitempty" yaml:"group_caps,omitempty"`
}

// RulesFor returns the calculator rules of a discipline
func RulesFor(d Discipline) (*Rules, error) {
	switch d {
	case Autonomous:
		return &Rules{
			Discipline: d,
			Title:      d.Title(),
			Tasks:      AutonomousTasks,
			Slots:      []string{SlotLanding},
			Landings:   AutonomousLandings,
		}, nil
	case Piloting:
		return &Rules{
			Discipline: d,
			Title:      d.Title(),
			Tasks:      PilotingTasks,
			Slots:      []string{SlotLanding},
			Landings:   PilotingLandings,
		}, nil
	case Teamwork:
		return &Rules{
			Discipline: d,
			Title:      d.Title(),
			Tasks:      TeamworkTasks,
			Slots:      []string{SlotRedDrone, SlotBlueDrone},
			Landings:   TeamworkLandings,
			GroupCaps:  map[string]int{GroupBeanBags: MaxBeanBags, GroupBalls: MaxBalls},
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDiscipline, d)
}

// Task returns the task with the given key
func (r *Rules) Task(key string) (Task, bool) {
	for _, t := range r.Tasks {
		if t.Key == key {
			return t, true
		}
	}
	return Task{}, false
}

// HasSlot reports whether the discipline has the given landing slot
func (r *Rules) HasSlot(slot string) bool {
	for _, s := range r.Slots {
		if s == slot {
			return true
		}
	}
	return false
}
