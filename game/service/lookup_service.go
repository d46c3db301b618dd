package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/wricardo/adc-hub/game/settings"
	"github.com/wricardo/adc-hub/game/worldskills"
	"github.com/wricardo/adc-hub/robotevents"
)

// lookupServiceImpl implements the LookupService interface
type lookupServiceImpl struct {
	upstream RobotEvents
	seasons  SeasonCatalog
	settings settings.Store
	skills   *worldskills.Cache
	maxAge   time.Duration
	log      zerolog.Logger

	// refreshMu serializes world-skills downloads
	refreshMu sync.Mutex
}

// LookupOptions configures a lookup service
type LookupOptions struct {
	// SkillsMaxAge is how long a downloaded leaderboard is served before it is fetched again.
	// Zero keeps it until RefreshWorldSkills is called.
	SkillsMaxAge time.Duration
	Logger       zerolog.Logger
}

// NewLookupService creates a lookup service reading from RobotEvents
func NewLookupService(upstream RobotEvents, seasons SeasonCatalog, store settings.Store, skills *worldskills.Cache, opts LookupOptions) LookupService {
	return &lookupServiceImpl{
		upstream: upstream,
		seasons:  seasons,
		settings: store,
		skills:   skills,
		maxAge:   opts.SkillsMaxAge,
		log:      opts.Logger,
	}
}

// FetchTeam looks a team up and aggregates its awards, rankings and world-skills standing
func (s *lookupServiceImpl) FetchTeam(ctx context.Context, number string) (*TeamReport, error) {
	number = settings.NormalizeTeam(number)
	if number == "" {
		return nil, fmt.Errorf("%w: team number is required", ErrInvalidInput)
	}

	prefs, err := s.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	team, err := s.upstream.Team(ctx, number)
	if err != nil {
		return nil, err
	}

	awards, err := s.upstream.TeamAwards(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	rankings, err := s.upstream.TeamRankings(ctx, team.ID)
	if err != nil {
		return nil, err
	}

	report := &TeamReport{
		Team:                 *team,
		Awards:               countAwards(awards),
		AverageQualifierRank: robotevents.AverageQualifierRank(rankings),
		Rankings:             rankings,
		Favorite:             prefs.IsFavorite(team.Number),
	}

	grade := team.Grade
	if grade == "" {
		grade = prefs.GradeLevel
	}
	seasonID := s.seasonID(0, prefs)
	if err := s.ensureSkills(ctx, seasonID, grade); err != nil {
		// The team card is still useful without a world-skills standing
		s.log.Warn().Err(err).Str("grade", grade).Msg("world skills unavailable")
	}
	entry, size, ok := s.skills.For(team.Number, grade)
	report.WorldSkillsTotal = size
	if ok {
		report.WorldSkills = &entry
	}
	return report, nil
}

// FetchEvents runs the competition search and resolves the matching events
func (s *lookupServiceImpl) FetchEvents(ctx context.Context, filter EventFilter) ([]robotevents.Event, error) {
	prefs, err := s.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	dateFilter := prefs.DateFilterActive
	if filter.DateFilterActive != nil {
		dateFilter = *filter.DateFilterActive
	}
	params := robotevents.ScraperParams{
		Name:             filter.Name,
		SeasonID:         s.seasonID(filter.SeasonID, prefs),
		NoLeagues:        filter.NoLeagues,
		LevelClassID:     filter.LevelClassID,
		RegionID:         filter.RegionID,
		Page:             filter.Page,
		DateFilterActive: dateFilter,
	}

	skus, err := s.upstream.ScrapeEventSKUs(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(skus) == 0 {
		return []robotevents.Event{}, nil
	}
	return s.upstream.SeasonEvents(ctx, params.SeasonID, skus)
}

// WorldSkills returns the filtered leaderboard, downloading it when stale
func (s *lookupServiceImpl) WorldSkills(ctx context.Context, query SkillsQuery) (*SkillsPage, error) {
	prefs, err := s.settings.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	grade := query.Grade
	if grade == "" {
		grade = prefs.GradeLevel
	}
	if grade != worldskills.GradeHighSchool && grade != worldskills.GradeMiddleSchool {
		return nil, fmt.Errorf("%w: unknown grade level %q", ErrInvalidInput, grade)
	}

	filter := worldskills.Filter{
		ByFavorite: query.Favorites,
		Favorites:  prefs.FavoriteTeams,
		RegionID:   query.RegionID,
		RegionName: query.RegionName,
	}
	if query.Letter != "" {
		r, size := utf8.DecodeRuneInString(strings.ToUpper(query.Letter))
		if size != len(query.Letter) || r < 'A' || r > 'Z' {
			return nil, fmt.Errorf("%w: letter must be a single A-Z character", ErrInvalidInput)
		}
		filter.Letter = r
	}

	seasonID := s.seasonID(query.SeasonID, prefs)
	if err := s.ensureSkills(ctx, seasonID, grade); err != nil {
		return nil, err
	}

	entries := s.skills.Entries(grade)
	if filter.RegionID != 0 && filter.RegionName == "" {
		filter.RegionName = worldskills.RegionName(entries, filter.RegionID)
	}
	filtered := filter.Apply(entries)

	page := &SkillsPage{
		Title:    filter.Title(),
		SeasonID: seasonID,
		Grade:    grade,
		Filtered: filter.Active(),
		Rows:     make([]SkillsRow, 0, len(filtered)),
		Total:    len(entries),
		Regions:  worldskills.Regions(entries),
	}
	for i, e := range filtered {
		page.Rows = append(page.Rows, SkillsRow{Position: i + 1, Entry: e})
	}
	_, page.UpdatedAt, _ = s.skills.UpdatedAt(grade)
	return page, nil
}

// RefreshWorldSkills downloads both grade levels of a season
func (s *lookupServiceImpl) RefreshWorldSkills(ctx context.Context, seasonID int) error {
	if seasonID == 0 {
		prefs, err := s.settings.Load()
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		seasonID = s.seasonID(0, prefs)
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	for _, grade := range worldskills.Grades {
		if err := s.refresh(ctx, seasonID, grade); err != nil {
			return err
		}
	}
	return nil
}

func (s *lookupServiceImpl) ensureSkills(ctx context.Context, seasonID int, grade string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if !s.skills.Stale(seasonID, grade, s.maxAge, now()) {
		return nil
	}
	return s.refresh(ctx, seasonID, grade)
}

// refresh must be called with refreshMu held
func (s *lookupServiceImpl) refresh(ctx context.Context, seasonID int, grade string) error {
	standings, err := s.upstream.WorldSkills(ctx, seasonID, grade)
	if err != nil {
		return fmt.Errorf("failed to fetch %s world skills: %w", grade, err)
	}
	s.skills.Replace(seasonID, grade, standings, now())
	s.log.Info().Int("season", seasonID).Str("grade", grade).Int("teams", len(standings)).Msg("world skills refreshed")
	return nil
}

// seasonID picks the explicit season, else the selected one, else the catalog default
func (s *lookupServiceImpl) seasonID(explicit int, prefs *settings.Settings) int {
	if explicit > 0 {
		return explicit
	}
	if prefs.SelectedSeasonID > 0 {
		return prefs.SelectedSeasonID
	}
	return s.seasons.GetDefault().ID
}

// countAwards groups awards by title in order of first appearance
func countAwards(awards []robotevents.Award) []AwardCount {
	out := []AwardCount{}
	index := make(map[string]int)
	for _, a := range awards {
		if i, ok := index[a.Title]; ok {
			out[i].Count++
			continue
		}
		index[a.Title] = len(out)
		out = append(out, AwardCount{Title: a.Title, Count: 1})
	}
	return out
}
