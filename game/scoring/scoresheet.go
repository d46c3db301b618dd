package scoring

import (
	"fmt"
	"time"
)

// Scorer is implemented by every discipline's result type
type Scorer interface {
	Score() int
	Breakdown() Breakdown
}

// Sheet actions recorded in history
const (
	ActionIncrement = "increment"
	ActionDecrement = "decrement"
	ActionSelect    = "select"
	ActionClear     = "clear"
)

// ActionEntry records a single action applied to a scoresheet
type ActionEntry struct {
	Action       string `json:"action"`
	Target       string `json:"target,omitempty"`
	Landing      string `json:"landing,omitempty"`
	Success      bool   `json:"success"`
	Score        int    `json:"score"`
	Timestamp    int64  `json:"timestamp"`
	ActionNumber int    `json:"action_number"`
}

// SheetState is a point-in-time view of a scoresheet
type SheetState struct {
	Discipline Discipline          `json:"discipline"`
	Counts     map[string]int      `json:"counts"`
	Ceilings   map[string]int      `json:"ceilings"`
	Landings   map[string]Landing  `json:"landings"`
	Disabled   map[string][]string `json:"disabled,omitempty"`
	Score      int                 `json:"score"`
	Breakdown  Breakdown           `json:"breakdown"`
	Warnings   []Warning           `json:"warnings"`
	Message    string              `json:"message,omitempty"`

	// History is cumulative across Clear; CurrentActions only covers the segment since the last Clear.
	History        []ActionEntry `json:"history"`
	TotalActions   int           `json:"total_actions"`
	CurrentActions []ActionEntry `json:"current_actions"`
}

// Scoresheet is the stateful calculator for one discipline. It is not safe for
// concurrent use; callers serialize access per sheet.
type Scoresheet struct {
	rules    *Rules
	counts   map[string]*Counter
	landings map[string]Landing
	message  string

	history []ActionEntry
	current []ActionEntry
}

// NewScoresheet creates an empty scoresheet for the discipline
func NewScoresheet(d Discipline) (*Scoresheet, error) {
	rules, err := RulesFor(d)
	if err != nil {
		return nil, err
	}
	s := &Scoresheet{
		rules:    rules,
		counts:   make(map[string]*Counter, len(rules.Tasks)),
		landings: make(map[string]Landing, len(rules.Slots)),
		history:  []ActionEntry{},
		current:  []ActionEntry{},
	}
	s.reset()
	return s, nil
}

func (s *Scoresheet) reset() {
	for _, t := range s.rules.Tasks {
		s.counts[t.Key] = NewCounter(t.Max)
	}
	for _, slot := range s.rules.Slots {
		s.landings[slot] = None
	}
}

// Discipline returns the sheet's discipline
func (s *Scoresheet) Discipline() Discipline {
	return s.rules.Discipline
}

// Rules returns the static rules of the sheet's discipline
func (s *Scoresheet) Rules() *Rules {
	return s.rules
}

// Count returns the current value of a task counter
func (s *Scoresheet) Count(task string) (int, error) {
	c, ok := s.counts[task]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	return c.Value, nil
}

// Landing returns the current selection of a landing slot
func (s *Scoresheet) Landing(slot string) (Landing, error) {
	l, ok := s.landings[slot]
	if !ok {
		return None, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	return l, nil
}

// Ceiling returns the highest value the task counter can currently reach.
// Grouped counters share a cap: a counter may grow by whatever the group has left.
func (s *Scoresheet) Ceiling(task string) (int, error) {
	t, ok := s.rules.Task(task)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	return s.ceiling(t), nil
}

func (s *Scoresheet) ceiling(t Task) int {
	limit, grouped := s.rules.GroupCaps[t.Group]
	if t.Group == "" || !grouped {
		return t.Max
	}
	used := 0
	for _, other := range s.rules.Tasks {
		if other.Group == t.Group {
			used += s.counts[other.Key].Value
		}
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	ceiling := s.counts[t.Key].Value + remaining
	if ceiling > t.Max {
		ceiling = t.Max
	}
	return ceiling
}

// Increment adds one to a task counter. It reports false when the counter is at its ceiling.
func (s *Scoresheet) Increment(task string) (bool, error) {
	t, ok := s.rules.Task(task)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	changed := s.counts[task].IncrementTo(s.ceiling(t))
	if changed {
		s.message = fmt.Sprintf("%s: %d", t.Label, s.counts[task].Value)
	} else {
		s.message = fmt.Sprintf("%s is at its maximum", t.Label)
	}
	s.record(ActionIncrement, task, "", changed)
	return changed, nil
}

// Decrement subtracts one from a task counter. It reports false when the counter is at zero.
func (s *Scoresheet) Decrement(task string) (bool, error) {
	t, ok := s.rules.Task(task)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}
	changed := s.counts[task].Decrement()
	if changed {
		s.message = fmt.Sprintf("%s: %d", t.Label, s.counts[task].Value)
	} else {
		s.message = fmt.Sprintf("%s is already zero", t.Label)
	}
	s.record(ActionDecrement, task, "", changed)
	return changed, nil
}

// Select chooses the landing option of a slot. On teamwork sheets an option held
// by the other drone, or blocked by the pad/bullseye pairing, is rejected.
func (s *Scoresheet) Select(slot string, option Landing) error {
	if !s.rules.HasSlot(slot) {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	if !option.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownLanding, int(option))
	}
	if other, ok := s.otherSlot(slot); ok {
		if OptionDisabled(option, s.landings[slot], s.landings[other]) {
			s.message = fmt.Sprintf("%s is unavailable", option)
			s.record(ActionSelect, slot, option.Key(), false)
			return fmt.Errorf("%w: %s for %s", ErrLandingUnavailable, option, slot)
		}
	}
	s.landings[slot] = option
	s.message = fmt.Sprintf("Landing: %s", option)
	s.record(ActionSelect, slot, option.Key(), true)
	return nil
}

// otherSlot returns the partner slot on two-drone sheets
func (s *Scoresheet) otherSlot(slot string) (string, bool) {
	if len(s.rules.Slots) != 2 {
		return "", false
	}
	if s.rules.Slots[0] == slot {
		return s.rules.Slots[1], true
	}
	return s.rules.Slots[0], true
}

// Disabled returns the landing options currently unavailable to a slot
func (s *Scoresheet) Disabled(slot string) ([]Landing, error) {
	if !s.rules.HasSlot(slot) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	other, ok := s.otherSlot(slot)
	if !ok {
		return nil, nil
	}
	var disabled []Landing
	for _, l := range Landings {
		if OptionDisabled(l, s.landings[slot], s.landings[other]) {
			disabled = append(disabled, l)
		}
	}
	return disabled, nil
}

// Clear resets every counter to zero and every slot to None in one step.
// Cumulative history is kept; only the current segment is emptied.
func (s *Scoresheet) Clear() {
	s.reset()
	s.current = []ActionEntry{}
	s.message = "Cleared"
	s.record(ActionClear, "", "", true)
}

// Result returns the discipline's typed result for the current inputs
func (s *Scoresheet) Result() Scorer {
	switch s.rules.Discipline {
	case Autonomous:
		var r AutonomousRun
		for key, c := range s.counts {
			*r.field(key) = c.Value
		}
		r.Landing = s.landings[SlotLanding]
		return r
	case Piloting:
		var r PilotingRun
		for key, c := range s.counts {
			*r.field(key) = c.Value
		}
		r.Landing = s.landings[SlotLanding]
		return r
	default:
		var m TeamworkMatch
		for key, c := range s.counts {
			*m.field(key) = c.Value
		}
		m.RedDrone = s.landings[SlotRedDrone]
		m.BlueDrone = s.landings[SlotBlueDrone]
		return m
	}
}

// Score returns the current total
func (s *Scoresheet) Score() int {
	return s.Result().Score()
}

// Warnings returns the advisory warnings. Only teamwork sheets raise warnings.
func (s *Scoresheet) Warnings() []Warning {
	if m, ok := s.Result().(TeamworkMatch); ok {
		return m.Warnings()
	}
	return nil
}

// History returns the cumulative action history
func (s *Scoresheet) History() []ActionEntry {
	return s.history
}

// Snapshot returns a copy of the sheet state safe to hand to other goroutines
func (s *Scoresheet) Snapshot() *SheetState {
	result := s.Result()
	state := &SheetState{
		Discipline:     s.rules.Discipline,
		Counts:         make(map[string]int, len(s.counts)),
		Ceilings:       make(map[string]int, len(s.counts)),
		Landings:       make(map[string]Landing, len(s.landings)),
		Score:          result.Score(),
		Breakdown:      result.Breakdown(),
		Warnings:       s.Warnings(),
		Message:        s.message,
		History:        append([]ActionEntry(nil), s.history...),
		TotalActions:   len(s.history),
		CurrentActions: append([]ActionEntry(nil), s.current...),
	}
	if state.Warnings == nil {
		state.Warnings = []Warning{}
	}
	for _, t := range s.rules.Tasks {
		state.Counts[t.Key] = s.counts[t.Key].Value
		state.Ceilings[t.Key] = s.ceiling(t)
	}
	for slot, l := range s.landings {
		state.Landings[slot] = l
		if disabled, _ := s.Disabled(slot); len(disabled) > 0 {
			if state.Disabled == nil {
				state.Disabled = make(map[string][]string)
			}
			for _, d := range disabled {
				state.Disabled[slot] = append(state.Disabled[slot], d.Key())
			}
		}
	}
	return state
}

func (s *Scoresheet) record(action, target, landing string, success bool) {
	entry := ActionEntry{
		Action:       action,
		Target:       target,
		Landing:      landing,
		Success:      success,
		Score:        s.Score(),
		Timestamp:    time.Now().Unix(),
		ActionNumber: len(s.history) + 1,
	}
	s.history = append(s.history, entry)
	s.current = append(s.current, entry)
}
