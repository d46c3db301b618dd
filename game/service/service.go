package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/robotevents"
)

var (
	ErrSheetNotFound  = errors.New("scoresheet not found")
	ErrSeasonNotFound = errors.New("season not found")
	ErrInvalidInput   = errors.New("invalid input")
)

// ScoreService defines the calculator operations
type ScoreService interface {
	// Stateless scoring
	Calculate(ctx context.Context, req CalculateRequest) (*CalculateResult, error)
	Disciplines(ctx context.Context) ([]*scoring.Rules, error)

	// Scoresheet management
	CreateSheet(ctx context.Context, discipline scoring.Discipline, label string) (*SheetInfo, error)
	GetSheet(ctx context.Context, sheetID string) (*SheetInfo, error)
	ListSheets(ctx context.Context) ([]*SheetInfo, error)
	DeleteSheet(ctx context.Context, sheetID string) error

	// Scoresheet actions
	Increment(ctx context.Context, sheetID, task string) (*ActionResult, error)
	Decrement(ctx context.Context, sheetID, task string) (*ActionResult, error)
	SelectLanding(ctx context.Context, sheetID, slot string, landing scoring.Landing) (*ActionResult, error)
	Clear(ctx context.Context, sheetID string) (*ActionResult, error)
	GetHistory(ctx context.Context, sheetID string, opts HistoryOptions) (*HistoryResponse, error)

	// Seasons
	ListSeasons(ctx context.Context) ([]*Season, error)
	GetSeason(ctx context.Context, seasonID int) (*Season, error)
}

// LookupService defines the RobotEvents-backed lookups
type LookupService interface {
	FetchTeam(ctx context.Context, number string) (*TeamReport, error)
	FetchEvents(ctx context.Context, filter EventFilter) ([]robotevents.Event, error)
	WorldSkills(ctx context.Context, query SkillsQuery) (*SkillsPage, error)
	RefreshWorldSkills(ctx context.Context, seasonID int) error
}

// SheetManager defines scoresheet storage operations
type SheetManager interface {
	Create(id string, discipline scoring.Discipline, label string) (*Sheet, error)
	Get(id string) (*Sheet, error)
	List() []*Sheet
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// SeasonCatalog handles season definitions
type SeasonCatalog interface {
	LoadSeason(id int) (*Season, error)
	ListSeasons() ([]*Season, error)
	GetDefault() *Season
	SaveSeason(season *Season) error
}

// RobotEvents is the upstream the lookup service reads from
type RobotEvents interface {
	Team(ctx context.Context, number string) (*robotevents.Team, error)
	TeamAwards(ctx context.Context, teamID int) ([]robotevents.Award, error)
	TeamRankings(ctx context.Context, teamID int) ([]robotevents.Ranking, error)
	SeasonEvents(ctx context.Context, seasonID int, skus []string) ([]robotevents.Event, error)
	ScrapeEventSKUs(ctx context.Context, params robotevents.ScraperParams) ([]string, error)
	WorldSkills(ctx context.Context, seasonID int, grade string) ([]robotevents.SkillsStanding, error)
}

// Observer receives counters for metrics; the zero value ignores everything
type Observer struct {
	Score       func(discipline string)
	SheetAction func(discipline, action string)
}

func (o Observer) score(d scoring.Discipline) {
	if o.Score != nil {
		o.Score(string(d))
	}
}

func (o Observer) sheetAction(d scoring.Discipline, action string) {
	if o.SheetAction != nil {
		o.SheetAction(string(d), action)
	}
}

func sheetInfo(sheet *Sheet) *SheetInfo {
	return &SheetInfo{
		ID:             sheet.ID,
		Label:          sheet.Label,
		Discipline:     sheet.Scoresheet.Discipline(),
		CreatedAt:      sheet.CreatedAt,
		LastAccessedAt: sheet.LastAccessedAt,
		State:          sheet.Scoresheet.Snapshot(),
	}
}

// now is replaced in tests
var now = time.Now
