package worldskills

import (
	"fmt"
	"strings"
)

const defaultTitle = "World Skills"

// Filter narrows a leaderboard. Only one criterion applies, in the order
// favorites, letter, region.
type Filter struct {
	Favorites  []string
	ByFavorite bool
	Letter     rune
	RegionID   int
	RegionName string
}

// Active reports whether any criterion is set
func (f Filter) Active() bool {
	return f.ByFavorite || f.Letter != 0 || f.RegionID != 0
}

// Apply returns the entries matching the filter, keeping their rank order
func (f Filter) Apply(entries []Entry) []Entry {
	out := []Entry{}
	switch {
	case f.ByFavorite:
		favs := make(map[string]bool, len(f.Favorites))
		for _, team := range f.Favorites {
			favs[normalize(team)] = true
		}
		for _, e := range entries {
			if favs[normalize(e.Team.Team)] {
				out = append(out, e)
			}
		}
	case f.Letter != 0:
		letter := strings.ToUpper(string(f.Letter))
		for _, e := range entries {
			if strings.HasSuffix(normalize(e.Team.Team), letter) {
				out = append(out, e)
			}
		}
	case f.RegionID != 0:
		for _, e := range entries {
			if e.Team.EventRegionID == f.RegionID {
				out = append(out, e)
			}
		}
	default:
		out = append(out, entries...)
	}
	return out
}

// Title names the filtered leaderboard
func (f Filter) Title() string {
	switch {
	case f.ByFavorite:
		return "Favorites Skills"
	case f.Letter != 0:
		return fmt.Sprintf("%s Skills", strings.ToUpper(string(f.Letter)))
	case f.RegionID != 0:
		if f.RegionName == "" {
			return fmt.Sprintf("Region %d Skills", f.RegionID)
		}
		return fmt.Sprintf("%s Skills", f.RegionName)
	default:
		return defaultTitle
	}
}

// RegionName finds a region's display name among the entries
func RegionName(entries []Entry, regionID int) string {
	for _, e := range entries {
		if e.Team.EventRegionID == regionID && e.Team.EventRegion != "" {
			return e.Team.EventRegion
		}
	}
	return ""
}

// Regions returns the distinct regions present in the entries, keyed by id
func Regions(entries []Entry) map[int]string {
	out := make(map[int]string)
	for _, e := range entries {
		if e.Team.EventRegionID != 0 && e.Team.EventRegion != "" {
			out[e.Team.EventRegionID] = e.Team.EventRegion
		}
	}
	return out
}
