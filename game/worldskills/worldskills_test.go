package worldskills

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(rank int, team string, regionID int, region string, score int) Entry {
	e := Entry{Rank: rank}
	e.Team.Team = team
	e.Team.EventRegionID = regionID
	e.Team.EventRegion = region
	e.Scores.Score = score
	return e
}

func sample() []Entry {
	return []Entry{
		entry(1, "1234A", 44, "Texas", 300),
		entry(2, "777B", 12, "Ohio", 280),
		entry(3, "55A", 12, "Ohio", 250),
		entry(4, "9C", 44, "Texas", 100),
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	_, _, ok := c.For("1234A", GradeHighSchool)
	assert.False(t, ok)
	assert.Nil(t, c.Entries(GradeHighSchool))

	c.Replace(190, GradeHighSchool, sample(), now)

	e, size, ok := c.For("55a", GradeHighSchool)
	require.True(t, ok)
	assert.Equal(t, 3, e.Rank)
	assert.Equal(t, 4, size)

	_, size, ok = c.For("0000Z", GradeHighSchool)
	assert.False(t, ok)
	assert.Equal(t, 4, size)

	_, _, ok = c.For("55A", GradeMiddleSchool)
	assert.False(t, ok)

	entries := c.Entries(GradeHighSchool)
	entries[0].Rank = 99
	assert.Equal(t, 1, c.Entries(GradeHighSchool)[0].Rank, "Entries must return a copy")

	season, at, ok := c.UpdatedAt(GradeHighSchool)
	require.True(t, ok)
	assert.Equal(t, 190, season)
	assert.Equal(t, now, at)
}

func TestCacheStale(t *testing.T) {
	c := NewCache()
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, c.Stale(190, GradeHighSchool, time.Hour, now))

	c.Replace(190, GradeHighSchool, sample(), now)
	assert.False(t, c.Stale(190, GradeHighSchool, time.Hour, now.Add(30*time.Minute)))
	assert.True(t, c.Stale(190, GradeHighSchool, time.Hour, now.Add(2*time.Hour)))
	assert.True(t, c.Stale(181, GradeHighSchool, time.Hour, now))
	assert.False(t, c.Stale(190, GradeHighSchool, 0, now.Add(48*time.Hour)))
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
		title  string
	}{
		{"none", Filter{}, []string{"1234A", "777B", "55A", "9C"}, "World Skills"},
		{"favorites", Filter{ByFavorite: true, Favorites: []string{"9c", "1234A"}}, []string{"1234A", "9C"}, "Favorites Skills"},
		{"letter", Filter{Letter: 'a'}, []string{"1234A", "55A"}, "A Skills"},
		{"region", Filter{RegionID: 12, RegionName: "Ohio"}, []string{"777B", "55A"}, "Ohio Skills"},
		{"favorites win over letter", Filter{ByFavorite: true, Favorites: []string{"777B"}, Letter: 'A'}, []string{"777B"}, "Favorites Skills"},
		{"letter wins over region", Filter{Letter: 'C', RegionID: 12}, []string{"9C"}, "C Skills"},
		{"favorites with empty list", Filter{ByFavorite: true}, []string{}, "Favorites Skills"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(sample())
			teams := []string{}
			for _, e := range got {
				teams = append(teams, e.Team.Team)
			}
			assert.Equal(t, tt.want, teams)
			assert.Equal(t, tt.title, tt.filter.Title())
		})
	}
}

func TestRegions(t *testing.T) {
	entries := sample()
	assert.Equal(t, map[int]string{44: "Texas", 12: "Ohio"}, Regions(entries))
	assert.Equal(t, "Ohio", RegionName(entries, 12))
	assert.Equal(t, "", RegionName(entries, 1))
	assert.Equal(t, "Region 7 Skills", Filter{RegionID: 7}.Title())
}
