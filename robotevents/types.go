package robotevents

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrTeamNotFound = errors.New("team not found")
	ErrNoToken      = errors.New("robotevents API token not configured")
)

// APIError is returned for any response with a status code of 400 or above
type APIError struct {
	Status   int
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("robotevents %s: HTTP %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("robotevents %s: HTTP %d", e.Endpoint, e.Status)
}

// IDInfo is the {id, name, code} reference RobotEvents embeds in most objects
type IDInfo struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Code string `json:"code,omitempty" yaml:"code,omitempty"`
}

type Location struct {
	Venue    string `json:"venue,omitempty" yaml:"venue,omitempty"`
	Address1 string `json:"address_1,omitempty" yaml:"address_1,omitempty"`
	City     string `json:"city" yaml:"city"`
	Region   string `json:"region" yaml:"region"`
	Postcode string `json:"postcode,omitempty" yaml:"postcode,omitempty"`
	Country  string `json:"country" yaml:"country"`
}

// String renders "City, Region, Country" skipping empty parts
func (l Location) String() string {
	out := ""
	for _, part := range []string{l.City, l.Region, l.Country} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}

type Team struct {
	ID           int      `json:"id" yaml:"id"`
	Number       string   `json:"number" yaml:"number"`
	TeamName     string   `json:"team_name" yaml:"team_name"`
	RobotName    string   `json:"robot_name,omitempty" yaml:"robot_name,omitempty"`
	Organization string   `json:"organization" yaml:"organization"`
	Location     Location `json:"location" yaml:"location"`
	Registered   bool     `json:"registered" yaml:"registered"`
	Program      IDInfo   `json:"program" yaml:"program"`
	Grade        string   `json:"grade" yaml:"grade"`
}

type Award struct {
	ID             int      `json:"id" yaml:"id"`
	Event          IDInfo   `json:"event" yaml:"event"`
	Order          int      `json:"order" yaml:"order"`
	Title          string   `json:"title" yaml:"title"`
	Qualifications []string `json:"qualifications,omitempty" yaml:"qualifications,omitempty"`
}

type Ranking struct {
	ID           int     `json:"id" yaml:"id"`
	Event        IDInfo  `json:"event" yaml:"event"`
	Division     IDInfo  `json:"division" yaml:"division"`
	Rank         int     `json:"rank" yaml:"rank"`
	Wins         int     `json:"wins" yaml:"wins"`
	Losses       int     `json:"losses" yaml:"losses"`
	Ties         int     `json:"ties" yaml:"ties"`
	WP           int     `json:"wp" yaml:"wp"`
	AP           int     `json:"ap" yaml:"ap"`
	SP           int     `json:"sp" yaml:"sp"`
	HighScore    int     `json:"high_score" yaml:"high_score"`
	AveragePoint float64 `json:"average_points" yaml:"average_points"`
	TotalPoints  int     `json:"total_points" yaml:"total_points"`
}

type Event struct {
	ID        int       `json:"id" yaml:"id"`
	SKU       string    `json:"sku" yaml:"sku"`
	Name      string    `json:"name" yaml:"name"`
	Start     time.Time `json:"start" yaml:"start"`
	End       time.Time `json:"end" yaml:"end"`
	Season    IDInfo    `json:"season" yaml:"season"`
	Program   IDInfo    `json:"program" yaml:"program"`
	Location  Location  `json:"location" yaml:"location"`
	Level     string    `json:"level" yaml:"level"`
	Ongoing   bool      `json:"ongoing" yaml:"ongoing"`
	EventType string    `json:"event_type" yaml:"event_type"`
}

// AverageQualifierRank returns the mean qualification rank over the rankings, or 0 with none
func AverageQualifierRank(rankings []Ranking) float64 {
	if len(rankings) == 0 {
		return 0
	}
	total := 0
	for _, r := range rankings {
		total += r.Rank
	}
	return float64(total) / float64(len(rankings))
}

// pageMeta is the pagination block of every list endpoint
type pageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type page[T any] struct {
	Meta pageMeta `json:"meta"`
	Data []T      `json:"data"`
}

// SkillsTeam is the team block of a world-skills standing
type SkillsTeam struct {
	ID            int    `json:"id" yaml:"id"`
	Program       string `json:"program" yaml:"program"`
	Team          string `json:"team" yaml:"team"`
	TeamName      string `json:"teamName" yaml:"team_name"`
	Organization  string `json:"organization" yaml:"organization"`
	City          string `json:"city" yaml:"city"`
	Region        string `json:"region" yaml:"region"`
	Country       string `json:"country" yaml:"country"`
	EventRegion   string `json:"eventRegion" yaml:"event_region"`
	EventRegionID int    `json:"eventRegionId" yaml:"event_region_id"`
	GradeLevel    string `json:"gradeLevel" yaml:"grade_level"`
}

type SkillsScores struct {
	Score          int `json:"score" yaml:"score"`
	Programming    int `json:"programming" yaml:"programming"`
	Driver         int `json:"driver" yaml:"driver"`
	MaxProgramming int `json:"maxProgramming" yaml:"max_programming"`
	MaxDriver      int `json:"maxDriver" yaml:"max_driver"`
}

type SkillsEvent struct {
	SKU string `json:"sku" yaml:"sku"`
}

// SkillsStanding is one row of the public world-skills standings
type SkillsStanding struct {
	Rank   int          `json:"rank" yaml:"rank"`
	Team   SkillsTeam   `json:"team" yaml:"team"`
	Event  SkillsEvent  `json:"event" yaml:"event"`
	Scores SkillsScores `json:"scores" yaml:"scores"`
}
