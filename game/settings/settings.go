package settings

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Grade levels used by the world-skills standings
const (
	GradeHighSchool   = "High School"
	GradeMiddleSchool = "Middle School"
)

var (
	ErrInvalidSettings = errors.New("invalid settings")
	ErrNotFound        = errors.New("settings not found")
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Settings holds the user preferences of the app.
// Empty colors mean "use the theme default".
type Settings struct {
	SelectedSeasonID   int      `json:"selected_season_id" yaml:"selected_season_id"`
	GradeLevel         string   `json:"grade_level" yaml:"grade_level"`
	FavoriteTeams      []string `json:"favorite_teams" yaml:"favorite_teams"`
	TopBarColor        string   `json:"top_bar_color,omitempty" yaml:"top_bar_color,omitempty"`
	TopBarContentColor string   `json:"top_bar_content_color,omitempty" yaml:"top_bar_content_color,omitempty"`
	ButtonColor        string   `json:"button_color,omitempty" yaml:"button_color,omitempty"`
	Minimalistic       bool     `json:"minimalistic" yaml:"minimalistic"`
	Vibration          bool     `json:"vibration" yaml:"vibration"`
	DateFilterActive   bool     `json:"date_filter_active" yaml:"date_filter_active"`
}

// Defaults returns the factory settings. SelectedSeasonID 0 means the catalog's default season.
func Defaults() *Settings {
	return &Settings{
		GradeLevel:    GradeHighSchool,
		FavoriteTeams: []string{},
		Minimalistic:  true,
	}
}

// Validate checks the settings for values the app cannot display
func (s *Settings) Validate() error {
	if s.SelectedSeasonID < 0 {
		return fmt.Errorf("%w: selected season must not be negative", ErrInvalidSettings)
	}
	switch s.GradeLevel {
	case GradeHighSchool, GradeMiddleSchool:
	default:
		return fmt.Errorf("%w: unknown grade level %q", ErrInvalidSettings, s.GradeLevel)
	}
	colors := map[string]string{
		"top_bar_color":         s.TopBarColor,
		"top_bar_content_color": s.TopBarContentColor,
		"button_color":          s.ButtonColor,
	}
	for name, c := range colors {
		if c != "" && !hexColor.MatchString(c) {
			return fmt.Errorf("%w: %s must be #RRGGBB, got %q", ErrInvalidSettings, name, c)
		}
	}
	for _, team := range s.FavoriteTeams {
		if NormalizeTeam(team) == "" {
			return fmt.Errorf("%w: empty favorite team", ErrInvalidSettings)
		}
	}
	return nil
}

// Normalize upper-cases and de-duplicates favorites and fills an empty grade level
func (s *Settings) Normalize() {
	if s.GradeLevel == "" {
		s.GradeLevel = GradeHighSchool
	}
	seen := make(map[string]bool, len(s.FavoriteTeams))
	favorites := make([]string, 0, len(s.FavoriteTeams))
	for _, team := range s.FavoriteTeams {
		team = NormalizeTeam(team)
		if team == "" || seen[team] {
			continue
		}
		seen[team] = true
		favorites = append(favorites, team)
	}
	sort.Strings(favorites)
	s.FavoriteTeams = favorites
	s.TopBarColor = strings.ToUpper(s.TopBarColor)
	s.TopBarContentColor = strings.ToUpper(s.TopBarContentColor)
	s.ButtonColor = strings.ToUpper(s.ButtonColor)
}

// AddFavorite adds a team to the favorites. It reports false if the team was already there.
func (s *Settings) AddFavorite(team string) bool {
	team = NormalizeTeam(team)
	if team == "" || s.IsFavorite(team) {
		return false
	}
	s.FavoriteTeams = append(s.FavoriteTeams, team)
	sort.Strings(s.FavoriteTeams)
	return true
}

// RemoveFavorite removes a team from the favorites. It reports false if the team was not there.
func (s *Settings) RemoveFavorite(team string) bool {
	team = NormalizeTeam(team)
	for i, fav := range s.FavoriteTeams {
		if fav == team {
			s.FavoriteTeams = append(s.FavoriteTeams[:i], s.FavoriteTeams[i+1:]...)
			return true
		}
	}
	return false
}

// IsFavorite reports whether team is in the favorites
func (s *Settings) IsFavorite(team string) bool {
	team = NormalizeTeam(team)
	for _, fav := range s.FavoriteTeams {
		if fav == team {
			return true
		}
	}
	return false
}

// NormalizeTeam trims and upper-cases a team number ("1234a" becomes "1234A")
func NormalizeTeam(team string) string {
	return strings.ToUpper(strings.TrimSpace(team))
}

// Store persists settings. Load returns Defaults when nothing has been saved yet.
type Store interface {
	Load() (*Settings, error)
	Save(s *Settings) error
	Reset() (*Settings, error)
}
