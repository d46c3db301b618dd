package scoring

// Piloting task keys
const (
	TaskBarrelRoll     = "barrel_roll"
	TaskHighJump       = "high_jump"
	TaskObstacleCourse = "obstacle_course"
	TaskHover          = "hover"
)

// PilotingTasks is the Piloting task table
var PilotingTasks = []Task{
	{Key: TaskBarrelRoll, Label: "Barrel Roll", Points: 20, Max: 3},
	{Key: TaskHighJump, Label: "High Jump", Points: 25, Max: 2},
	{Key: TaskObstacleCourse, Label: "Obstacle Course", Points: 50, Max: 1},
	{Key: TaskHover, Label: "Hover for 10 Seconds", Points: 10, Max: 4},
}

// PilotingRun holds the task counts of one Piloting run
type PilotingRun struct {
	BarrelRoll     int     `json:"barrel_roll" yaml:"barrel_roll"`
	HighJump       int     `json:"high_jump" yaml:"high_jump"`
	ObstacleCourse int     `json:"obstacle_course" yaml:"obstacle_course"`
	Hover          int     `json:"hover" yaml:"hover"`
	Landing        Landing `json:"landing" yaml:"landing"`
}

// Score returns the run total
func (r PilotingRun) Score() int {
	return r.Breakdown().Total
}

// Breakdown returns the per-task contributions of the run
func (r PilotingRun) Breakdown() Breakdown {
	var b Breakdown
	for _, t := range PilotingTasks {
		n := *r.field(t.Key)
		b.add(t.Key, t.Label, n, n*t.Points)
	}
	b.add(SlotLanding, r.Landing.String(), 1, PilotingLandings.Points(r.Landing))
	return b
}

// Clamped returns a copy with every count bounded to its task maximum
func (r PilotingRun) Clamped() PilotingRun {
	out := r
	for _, t := range PilotingTasks {
		p := out.field(t.Key)
		*p = Clamp(*p, t.Max)
	}
	if !out.Landing.Valid() {
		out.Landing = None
	}
	return out
}

func (r *PilotingRun) field(key string) *int {
	switch key {
	case TaskBarrelRoll:
		return &r.BarrelRoll
	case TaskHighJump:
		return &r.HighJump
	case TaskObstacleCourse:
		return &r.ObstacleCourse
	case TaskHover:
		return &r.Hover
	}
	return nil
}
