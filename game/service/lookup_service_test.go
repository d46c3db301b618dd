package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/adc-hub/game/service"
	"github.com/wricardo/adc-hub/game/settings"
	"github.com/wricardo/adc-hub/game/worldskills"
	"github.com/wricardo/adc-hub/robotevents"
)

// fakeRobotEvents serves canned upstream data and records the calls made
type fakeRobotEvents struct {
	teams      map[string]*robotevents.Team
	awards     []robotevents.Award
	rankings   []robotevents.Ranking
	skus       []string
	events     []robotevents.Event
	standings  map[string][]robotevents.SkillsStanding
	params     robotevents.ScraperParams
	eventCalls int
	skillCalls int
}

func (f *fakeRobotEvents) Team(ctx context.Context, number string) (*robotevents.Team, error) {
	team, ok := f.teams[number]
	if !ok {
		return nil, robotevents.ErrTeamNotFound
	}
	return team, nil
}

func (f *fakeRobotEvents) TeamAwards(ctx context.Context, teamID int) ([]robotevents.Award, error) {
	return f.awards, nil
}

func (f *fakeRobotEvents) TeamRankings(ctx context.Context, teamID int) ([]robotevents.Ranking, error) {
	return f.rankings, nil
}

func (f *fakeRobotEvents) SeasonEvents(ctx context.Context, seasonID int, skus []string) ([]robotevents.Event, error) {
	f.eventCalls++
	return f.events, nil
}

func (f *fakeRobotEvents) ScrapeEventSKUs(ctx context.Context, params robotevents.ScraperParams) ([]string, error) {
	f.params = params
	return f.skus, nil
}

func (f *fakeRobotEvents) WorldSkills(ctx context.Context, seasonID int, grade string) ([]robotevents.SkillsStanding, error) {
	f.skillCalls++
	return f.standings[grade], nil
}

func standing(rank int, team string, region int, regionName string) robotevents.SkillsStanding {
	s := robotevents.SkillsStanding{Rank: rank}
	s.Team.Team = team
	s.Team.EventRegionID = region
	s.Team.EventRegion = regionName
	return s
}

func newLookup(t *testing.T, upstream *fakeRobotEvents) (service.LookupService, settings.Store) {
	t.Helper()
	store, err := settings.NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	svc := service.NewLookupService(upstream, NewMockSeasonCatalog(), store, worldskills.NewCache(), service.LookupOptions{
		SkillsMaxAge: time.Hour,
		Logger:       zerolog.Nop(),
	})
	return svc, store
}

func TestLookup_FetchTeam(t *testing.T) {
	upstream := &fakeRobotEvents{
		teams: map[string]*robotevents.Team{
			"1234A": {ID: 77, Number: "1234A", TeamName: "Flyers", Grade: worldskills.GradeHighSchool},
		},
		awards: []robotevents.Award{
			{Title: "Excellence Award"},
			{Title: "Tournament Champions"},
			{Title: "Excellence Award"},
		},
		rankings: []robotevents.Ranking{{Rank: 2}, {Rank: 5}},
		standings: map[string][]robotevents.SkillsStanding{
			worldskills.GradeHighSchool: {standing(1, "999Z", 1, "Ohio"), standing(2, "1234A", 2, "Texas")},
		},
	}
	svc, store := newLookup(t, upstream)

	prefs, err := store.Load()
	require.NoError(t, err)
	prefs.AddFavorite("1234a")
	require.NoError(t, store.Save(prefs))

	report, err := svc.FetchTeam(context.Background(), " 1234a ")
	require.NoError(t, err)

	assert.Equal(t, "Flyers", report.Team.TeamName)
	assert.Equal(t, []service.AwardCount{
		{Title: "Excellence Award", Count: 2},
		{Title: "Tournament Champions", Count: 1},
	}, report.Awards)
	assert.Equal(t, 3.5, report.AverageQualifierRank)
	require.NotNil(t, report.WorldSkills)
	assert.Equal(t, 2, report.WorldSkills.Rank)
	assert.Equal(t, 2, report.WorldSkillsTotal)
	assert.True(t, report.Favorite)

	// second lookup is served from the cache
	_, err = svc.FetchTeam(context.Background(), "1234A")
	require.NoError(t, err)
	assert.Equal(t, 1, upstream.skillCalls)
}

func TestLookup_FetchTeamErrors(t *testing.T) {
	svc, _ := newLookup(t, &fakeRobotEvents{})

	_, err := svc.FetchTeam(context.Background(), "  ")
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = svc.FetchTeam(context.Background(), "404A")
	assert.ErrorIs(t, err, robotevents.ErrTeamNotFound)
}

func TestLookup_FetchEvents(t *testing.T) {
	t.Run("no skus means no events", func(t *testing.T) {
		upstream := &fakeRobotEvents{}
		svc, _ := newLookup(t, upstream)

		events, err := svc.FetchEvents(context.Background(), service.EventFilter{Name: "Spring"})
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Equal(t, 0, upstream.eventCalls)
		// falls back to the catalog's default season
		assert.Equal(t, 190, upstream.params.SeasonID)
	})

	t.Run("uses stored selection and date filter", func(t *testing.T) {
		upstream := &fakeRobotEvents{
			skus:   []string{"RE-ADC-23-0001"},
			events: []robotevents.Event{{SKU: "RE-ADC-23-0001", Name: "Winter Cup"}},
		}
		svc, store := newLookup(t, upstream)

		prefs, err := store.Load()
		require.NoError(t, err)
		prefs.SelectedSeasonID = 181
		prefs.DateFilterActive = true
		require.NoError(t, store.Save(prefs))

		events, err := svc.FetchEvents(context.Background(), service.EventFilter{RegionID: 12, Page: 2})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Winter Cup", events[0].Name)
		assert.Equal(t, 181, upstream.params.SeasonID)
		assert.True(t, upstream.params.DateFilterActive)
		assert.Equal(t, 12, upstream.params.RegionID)
		assert.Equal(t, 2, upstream.params.Page)

		off := false
		_, err = svc.FetchEvents(context.Background(), service.EventFilter{DateFilterActive: &off})
		require.NoError(t, err)
		assert.False(t, upstream.params.DateFilterActive)
	})
}

func TestLookup_WorldSkills(t *testing.T) {
	upstream := &fakeRobotEvents{
		standings: map[string][]robotevents.SkillsStanding{
			worldskills.GradeHighSchool: {
				standing(1, "1A", 44, "Texas"),
				standing(2, "2B", 12, "Ohio"),
				standing(3, "3A", 12, "Ohio"),
			},
			worldskills.GradeMiddleSchool: {standing(1, "10M", 44, "Texas")},
		},
	}
	svc, store := newLookup(t, upstream)
	ctx := context.Background()

	page, err := svc.WorldSkills(ctx, service.SkillsQuery{})
	require.NoError(t, err)
	assert.Equal(t, "World Skills", page.Title)
	assert.Equal(t, worldskills.GradeHighSchool, page.Grade)
	assert.False(t, page.Filtered)
	assert.Len(t, page.Rows, 3)
	assert.Equal(t, 3, page.Total)

	page, err = svc.WorldSkills(ctx, service.SkillsQuery{RegionID: 12})
	require.NoError(t, err)
	assert.Equal(t, "Ohio Skills", page.Title)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, 1, page.Rows[0].Position)
	assert.Equal(t, 2, page.Rows[0].Rank)

	page, err = svc.WorldSkills(ctx, service.SkillsQuery{Letter: "a"})
	require.NoError(t, err)
	assert.Equal(t, "A Skills", page.Title)
	assert.Len(t, page.Rows, 2)

	prefs, err := store.Load()
	require.NoError(t, err)
	prefs.AddFavorite("3A")
	require.NoError(t, store.Save(prefs))

	page, err = svc.WorldSkills(ctx, service.SkillsQuery{Favorites: true, Letter: "B"})
	require.NoError(t, err)
	assert.Equal(t, "Favorites Skills", page.Title)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "3A", page.Rows[0].Team.Team)

	page, err = svc.WorldSkills(ctx, service.SkillsQuery{Grade: worldskills.GradeMiddleSchool})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 1)

	_, err = svc.WorldSkills(ctx, service.SkillsQuery{Letter: "ab"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = svc.WorldSkills(ctx, service.SkillsQuery{Grade: "College"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	assert.Equal(t, 2, upstream.skillCalls)
	require.NoError(t, svc.RefreshWorldSkills(ctx, 0))
	assert.Equal(t, 4, upstream.skillCalls)
}
