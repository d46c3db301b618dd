package scoring

import (
	"fmt"
	"strings"
)

// Landing is the object a flight vehicle lands on at the end of a run
type Landing int

const (
	None Landing = iota
	SmallCube
	LargeCube
	LandingPad
	Bullseye
)

// Landings lists every landing option in display order
var Landings = []Landing{None, SmallCube, LargeCube, LandingPad, Bullseye}

var landingNames = [...]string{"None", "Small Cube", "Large Cube", "Landing Pad", "Bullseye"}
var landingKeys = [...]string{"none", "small_cube", "large_cube", "landing_pad", "bullseye"}

// String returns the display name
func (l Landing) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Landing(%d)", int(l))
	}
	return landingNames[l]
}

// Key returns the snake_case identifier used on the wire
func (l Landing) Key() string {
	if !l.Valid() {
		return ""
	}
	return landingKeys[l]
}

// Valid reports whether l is one of the closed set of options
func (l Landing) Valid() bool {
	return l >= None && l <= Bullseye
}

// IsPadOrBullseye reports whether l is one of the two stacked landing targets
func (l Landing) IsPadOrBullseye() bool {
	return l == LandingPad || l == Bullseye
}

// ParseLanding accepts display names ("Small Cube") and keys ("small_cube"), case-insensitive.
// An empty string is None.
func ParseLanding(s string) (Landing, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" {
		return None, nil
	}
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for i, key := range landingKeys {
		if key == norm {
			return Landing(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownLanding, s)
}

// MarshalText implements encoding.TextMarshaler
func (l Landing) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLanding, int(l))
	}
	return []byte(l.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Landing) UnmarshalText(text []byte) error {
	parsed, err := ParseLanding(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// LandingTable maps every landing option to its point value for one discipline
type LandingTable map[Landing]int

// Points returns the value of l. Options missing from the table are worth nothing.
func (t LandingTable) Points(l Landing) int {
	return t[l]
}

// Per-discipline landing tables. They currently share values but are kept
// separate so one discipline's game manual can change independently.
var (
	AutonomousLandings = LandingTable{
		None:       0,
		SmallCube:  25,
		LargeCube:  15,
		LandingPad: 15,
		Bullseye:   25,
	}

	PilotingLandings = LandingTable{
		None:       0,
		SmallCube:  25,
		LargeCube:  15,
		LandingPad: 15,
		Bullseye:   25,
	}

	TeamworkLandings = LandingTable{
		None:       0,
		SmallCube:  25,
		LargeCube:  15,
		LandingPad: 15,
		Bullseye:   25,
	}
)

// OptionDisabled reports whether option should be unavailable to a drone whose current
// selection is selected while the other drone has chosen other.
// None is always selectable, and a drone's own selection is never disabled.
func OptionDisabled(option, selected, other Landing) bool {
	if option == None {
		return false
	}
	if option == selected {
		return false
	}
	if option == other {
		return true
	}
	return other.IsPadOrBullseye() && option.IsPadOrBullseye()
}
