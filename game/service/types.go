package service

import (
	"time"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/worldskills"
	"github.com/wricardo/adc-hub/robotevents"
)

// Sheet is a live scoresheet held by the session manager
type Sheet struct {
	ID             string
	Label          string
	Scoresheet     *scoring.Scoresheet
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// SheetInfo describes a scoresheet and its current state
type SheetInfo struct {
	ID             string              `json:"id"`
	Label          string              `json:"label,omitempty"`
	Discipline     scoring.Discipline  `json:"discipline"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	State          *scoring.SheetState `json:"state"`
}

// CalculateRequest carries the inputs of a stateless calculation.
// Only the block matching Discipline is read; a missing block scores zero.
type CalculateRequest struct {
	Discipline scoring.Discipline     `json:"discipline"`
	Autonomous *scoring.AutonomousRun `json:"autonomous,omitempty"`
	Piloting   *scoring.PilotingRun   `json:"piloting,omitempty"`
	Teamwork   *scoring.TeamworkMatch `json:"teamwork,omitempty"`
}

// CalculateResult is the outcome of a stateless calculation
type CalculateResult struct {
	Discipline scoring.Discipline `json:"discipline" yaml:"discipline"`
	Score      int                `json:"score" yaml:"score"`
	Breakdown  scoring.Breakdown  `json:"breakdown" yaml:"breakdown"`
	Warnings   []scoring.Warning  `json:"warnings" yaml:"warnings"`
	// Adjusted is set when an input was outside its task range and got clamped
	Adjusted bool `json:"adjusted,omitempty" yaml:"adjusted,omitempty"`
}

// ActionResult contains the outcome of a scoresheet action
type ActionResult struct {
	Changed bool       `json:"changed"`
	Message string     `json:"message,omitempty"`
	Sheet   *SheetInfo `json:"sheet"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Actions      []scoring.ActionEntry `json:"actions"`
	TotalActions int                   `json:"total_actions"`
	Page         int                   `json:"page"`
	PageSize     int                   `json:"page_size"`
	TotalPages   int                   `json:"total_pages"`
	HasNext      bool                  `json:"has_next"`
	HasPrevious  bool                  `json:"has_previous"`
}

// Season is one competition season known to the app
type Season struct {
	ID        int    `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	ShortName string `json:"short_name" yaml:"short_name"`
	Program   string `json:"program" yaml:"program"`
	StartYear int    `json:"start_year" yaml:"start_year"`
	EndYear   int    `json:"end_year" yaml:"end_year"`
	Active    bool   `json:"active" yaml:"active"`
}

// AwardCount is the number of times a team won an award title
type AwardCount struct {
	Title string `json:"title" yaml:"title"`
	Count int    `json:"count" yaml:"count"`
}

// TeamReport aggregates everything the lookup screen shows for a team
type TeamReport struct {
	Team                 robotevents.Team      `json:"team" yaml:"team"`
	Awards               []AwardCount          `json:"awards" yaml:"awards"`
	AverageQualifierRank float64               `json:"average_qualifier_rank" yaml:"average_qualifier_rank"`
	WorldSkills          *worldskills.Entry    `json:"world_skills,omitempty" yaml:"world_skills,omitempty"`
	WorldSkillsTotal     int                   `json:"world_skills_total" yaml:"world_skills_total"`
	Rankings             []robotevents.Ranking `json:"rankings,omitempty" yaml:"rankings,omitempty"`
	Favorite             bool                  `json:"favorite" yaml:"favorite"`
}

// EventFilter selects events from the competition search.
// A zero SeasonID means the selected season.
type EventFilter struct {
	Name         string `json:"name,omitempty"`
	SeasonID     int    `json:"season_id,omitempty"`
	LevelClassID int    `json:"level_class_id,omitempty"`
	RegionID     int    `json:"region_id,omitempty"`
	NoLeagues    bool   `json:"no_leagues,omitempty"`
	Page         int    `json:"page,omitempty"`
	// DateFilterActive overrides the stored setting when non-nil
	DateFilterActive *bool `json:"date_filter_active,omitempty"`
}

// SkillsQuery selects and filters a world-skills leaderboard.
// Zero values fall back to the stored settings.
type SkillsQuery struct {
	SeasonID   int    `json:"season_id,omitempty"`
	Grade      string `json:"grade,omitempty"`
	Favorites  bool   `json:"favorites,omitempty"`
	Letter     string `json:"letter,omitempty"`
	RegionID   int    `json:"region_id,omitempty"`
	RegionName string `json:"region_name,omitempty"`
}

// SkillsRow is a leaderboard entry with its position in the filtered list
type SkillsRow struct {
	Position          int `json:"position" yaml:"position"`
	worldskills.Entry `yaml:",inline"`
}

// SkillsPage is a filtered world-skills leaderboard
type SkillsPage struct {
	Title     string         `json:"title" yaml:"title"`
	SeasonID  int            `json:"season_id" yaml:"season_id"`
	Grade     string         `json:"grade" yaml:"grade"`
	Filtered  bool           `json:"filtered" yaml:"filtered"`
	Rows      []SkillsRow    `json:"rows" yaml:"rows"`
	Total     int            `json:"total" yaml:"total"`
	Regions   map[int]string `json:"regions,omitempty" yaml:"regions,omitempty"`
	UpdatedAt time.Time      `json:"updated_at" yaml:"updated_at"`
}
