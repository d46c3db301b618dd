package scoring

// Autonomous task keys
const (
	TaskTakeOff       = "take_off"
	TaskIdentifyColor = "identify_color"
	TaskFigure8       = "figure_8"
	TaskSmallHole     = "small_hole"
	TaskLargeHole     = "large_hole"
	TaskArchGate      = "arch_gate"
	TaskKeyhole       = "keyhole"
)

// AutonomousTasks is the Autonomous Flight task table
var AutonomousTasks = []Task{
	{Key: TaskTakeOff, Label: "Take Off", Points: 10, Max: 2},
	{Key: TaskIdentifyColor, Label: "Identify Color", Points: 15, Max: 2},
	{Key: TaskFigure8, Label: "Complete a Figure 8", Points: 40, Max: 2},
	{Key: TaskSmallHole, Label: "Fly Through Small Hole", Points: 40, Max: 2},
	{Key: TaskLargeHole, Label: "Fly Through Large Hole", Points: 20, Max: 2},
	{Key: TaskArchGate, Label: "Fly Under Arch Gate", Points: 5, Max: 4},
	{Key: TaskKeyhole, Label: "Fly Through Keyhole", Points: 15, Max: 4},
}

// AutonomousRun holds the task counts of one Autonomous Flight run
type AutonomousRun struct {
	TakeOff       int     `json:"take_off" yaml:"take_off"`
	IdentifyColor int     `json:"identify_color" yaml:"identify_color"`
	Figure8       int     `json:"figure_8" yaml:"figure_8"`
	SmallHole     int     `json:"small_hole" yaml:"small_hole"`
	LargeHole     int     `json:"large_hole" yaml:"large_hole"`
	ArchGate      int     `json:"arch_gate" yaml:"arch_gate"`
	Keyhole       int     `json:"keyhole" yaml:"keyhole"`
	Landing       Landing `json:"landing" yaml:"landing"`
}

// Score returns the run total
func (r AutonomousRun) Score() int {
	return r.Breakdown().Total
}

// Breakdown returns the per-task contributions of the run
func (r AutonomousRun) Breakdown() Breakdown {
	var b Breakdown
	for _, t := range AutonomousTasks {
		n := *r.field(t.Key)
		b.add(t.Key, t.Label, n, n*t.Points)
	}
	b.add(SlotLanding, r.Landing.String(), 1, AutonomousLandings.Points(r.Landing))
	return b
}

// Clamped returns a copy with every count bounded to its task maximum
func (r AutonomousRun) Clamped() AutonomousRun {
	out := r
	for _, t := range AutonomousTasks {
		p := out.field(t.Key)
		*p = Clamp(*p, t.Max)
	}
	if !out.Landing.Valid() {
		out.Landing = None
	}
	return out
}

func (r *AutonomousRun) field(key string) *int {
	switch key {
	case TaskTakeOff:
		return &r.TakeOff
	case TaskIdentifyColor:
		return &r.IdentifyColor
	case TaskFigure8:
		return &r.Figure8
	case TaskSmallHole:
		return &r.SmallHole
	case TaskLargeHole:
		return &r.LargeHole
	case TaskArchGate:
		return &r.ArchGate
	case TaskKeyhole:
		return &r.Keyhole
	}
	return nil
}
