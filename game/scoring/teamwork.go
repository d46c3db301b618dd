package scoring

// Teamwork task keys
const (
	TaskTopsCleared   = "tops_cleared"
	TaskGreenBeanBags = "green_bean_bags"
	TaskBlueBeanBags  = "blue_bean_bags"
	TaskNeutralBalls  = "neutral_balls"
	TaskGreenBalls    = "green_balls"
	TaskBlueBalls     = "blue_balls"
)

// TeamworkTasks is the Teamwork counter table. Bean bags and balls share group caps.
var TeamworkTasks = []Task{
	{Key: TaskTopsCleared, Label: "Drop Zone Tops Cleared", Max: MaxTopsCleared},
	{Key: TaskGreenBeanBags, Label: "Green Bean Bags", Max: MaxBeanBags, Group: GroupBeanBags},
	{Key: TaskBlueBeanBags, Label: "Blue Bean Bags", Max: MaxBeanBags, Group: GroupBeanBags},
	{Key: TaskNeutralBalls, Label: "Neutral Balls", Max: MaxBalls, Group: GroupBalls},
	{Key: TaskGreenBalls, Label: "Green Balls", Max: MaxBalls, Group: GroupBalls},
	{Key: TaskBlueBalls, Label: "Blue Balls", Max: MaxBalls, Group: GroupBalls},
}

// TeamworkMatch holds the field state at the end of a Teamwork match
type TeamworkMatch struct {
	TopsCleared   int     `json:"tops_cleared" yaml:"tops_cleared"`
	GreenBeanBags int     `json:"green_bean_bags" yaml:"green_bean_bags"`
	BlueBeanBags  int     `json:"blue_bean_bags" yaml:"blue_bean_bags"`
	NeutralBalls  int     `json:"neutral_balls" yaml:"neutral_balls"`
	GreenBalls    int     `json:"green_balls" yaml:"green_balls"`
	BlueBalls     int     `json:"blue_balls" yaml:"blue_balls"`
	RedDrone      Landing `json:"red_drone" yaml:"red_drone"`
	BlueDrone     Landing `json:"blue_drone" yaml:"blue_drone"`
}

// Score returns the match total
func (m TeamworkMatch) Score() int {
	return m.Breakdown().Total
}

// Breakdown returns the contributions of the match.
// A color match is worth balls × bean bags × 2 and only counts when the zone holds bean bags.
func (m TeamworkMatch) Breakdown() Breakdown {
	var b Breakdown
	b.add(TaskTopsCleared, "Drop Zone Tops Cleared", m.TopsCleared, m.TopsCleared)
	b.add(TaskNeutralBalls, "Neutral Balls", m.NeutralBalls, m.NeutralBalls)
	b.add(TaskGreenBeanBags, "Green Bean Bags", m.GreenBeanBags, m.GreenBeanBags)
	b.add(TaskBlueBeanBags, "Blue Bean Bags", m.BlueBeanBags, m.BlueBeanBags)
	b.add(TaskGreenBalls, "Green Balls", m.GreenBalls, m.GreenBalls)
	b.add(TaskBlueBalls, "Blue Balls", m.BlueBalls, m.BlueBalls)

	greenMatch := 0
	if m.GreenBeanBags > 0 {
		greenMatch = m.GreenBalls * m.GreenBeanBags * 2
	}
	blueMatch := 0
	if m.BlueBeanBags > 0 {
		blueMatch = m.BlueBalls * m.BlueBeanBags * 2
	}
	b.add("green_color_match", "Green Color Match", m.GreenBalls, greenMatch)
	b.add("blue_color_match", "Blue Color Match", m.BlueBalls, blueMatch)

	b.add(SlotRedDrone, "Red Drone: "+m.RedDrone.String(), 1, TeamworkLandings.Points(m.RedDrone))
	b.add(SlotBlueDrone, "Blue Drone: "+m.BlueDrone.String(), 1, TeamworkLandings.Points(m.BlueDrone))
	return b
}

// Warnings returns the advisory validation warnings for the match, in display order
func (m TeamworkMatch) Warnings() []Warning {
	var warnings []Warning
	if m.GreenBeanBags+m.BlueBeanBags > m.TopsCleared {
		warnings = append(warnings, Warning{
			Code:    WarnBeanBagsExceedTops,
			Message: "Bean bags exceed tops cleared.",
		})
	}
	if m.RedDrone != None && m.RedDrone == m.BlueDrone {
		warnings = append(warnings, Warning{
			Code:    WarnSameLandingObject,
			Message: "Both drones cannot land on the same object.",
		})
	}
	if (m.RedDrone == LandingPad && m.BlueDrone == Bullseye) ||
		(m.RedDrone == Bullseye && m.BlueDrone == LandingPad) {
		warnings = append(warnings, Warning{
			Code:    WarnPadBullseyeCombination,
			Message: "Drones cannot occupy landing pad/bullseye combination.",
		})
	}
	return warnings
}

// HasWarning reports whether the match raises the given warning
func (m TeamworkMatch) HasWarning(code WarningCode) bool {
	for _, w := range m.Warnings() {
		if w.Code == code {
			return true
		}
	}
	return false
}

// Clamped returns a copy with every counter bounded to its own maximum.
// Group caps are not applied here; they only bound increments.
func (m TeamworkMatch) Clamped() TeamworkMatch {
	out := m
	for _, t := range TeamworkTasks {
		p := out.field(t.Key)
		*p = Clamp(*p, t.Max)
	}
	if !out.RedDrone.Valid() {
		out.RedDrone = None
	}
	if !out.BlueDrone.Valid() {
		out.BlueDrone = None
	}
	return out
}

func (m *TeamworkMatch) field(key string) *int {
	switch key {
	case TaskTopsCleared:
		return &m.TopsCleared
	case TaskGreenBeanBags:
		return &m.GreenBeanBags
	case TaskBlueBeanBags:
		return &m.BlueBeanBags
	case TaskNeutralBalls:
		return &m.NeutralBalls
	case TaskGreenBalls:
		return &m.GreenBalls
	case TaskBlueBalls:
		return &m.BlueBalls
	}
	return nil
}
