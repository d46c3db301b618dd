package worldskills

import (
	"strings"
	"sync"
	"time"

	"github.com/wricardo/adc-hub/robotevents"
)

const (
	GradeHighSchool   = "High School"
	GradeMiddleSchool = "Middle School"
)

// Grades lists the grade levels the leaderboard is kept for
var Grades = []string{GradeHighSchool, GradeMiddleSchool}

// Entry is one leaderboard row
type Entry = robotevents.SkillsStanding

type gradeBoard struct {
	seasonID  int
	entries   []Entry
	byTeam    map[string]int
	updatedAt time.Time
}

// Cache holds the latest standings per grade level.
// It is safe for concurrent use.
type Cache struct {
	mu     sync.RWMutex
	boards map[string]*gradeBoard
}

func NewCache() *Cache {
	return &Cache{boards: make(map[string]*gradeBoard)}
}

// Replace swaps the standings of one grade. Entries are kept in the given order.
func (c *Cache) Replace(seasonID int, grade string, entries []Entry, at time.Time) {
	board := &gradeBoard{
		seasonID:  seasonID,
		entries:   append([]Entry(nil), entries...),
		byTeam:    make(map[string]int, len(entries)),
		updatedAt: at,
	}
	for i, e := range board.entries {
		key := normalize(e.Team.Team)
		if _, dup := board.byTeam[key]; !dup {
			board.byTeam[key] = i
		}
	}

	c.mu.Lock()
	c.boards[grade] = board
	c.mu.Unlock()
}

// Entries returns a copy of the standings for a grade, or nil if none were loaded
func (c *Cache) Entries(grade string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	board, ok := c.boards[grade]
	if !ok {
		return nil
	}
	return append([]Entry(nil), board.entries...)
}

// For returns the team's entry and the size of its grade's leaderboard
func (c *Cache) For(teamNumber, grade string) (Entry, int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	board, ok := c.boards[grade]
	if !ok {
		return Entry{}, 0, false
	}
	i, ok := board.byTeam[normalize(teamNumber)]
	if !ok {
		return Entry{}, len(board.entries), false
	}
	return board.entries[i], len(board.entries), true
}

// UpdatedAt reports when a grade was last replaced and for which season
func (c *Cache) UpdatedAt(grade string) (seasonID int, at time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	board, ok := c.boards[grade]
	if !ok {
		return 0, time.Time{}, false
	}
	return board.seasonID, board.updatedAt, true
}

// Stale reports whether a grade is missing, loaded for another season or older than maxAge
func (c *Cache) Stale(seasonID int, grade string, maxAge time.Duration, now time.Time) bool {
	season, at, ok := c.UpdatedAt(grade)
	if !ok || season != seasonID {
		return true
	}
	return maxAge > 0 && now.Sub(at) > maxAge
}

func normalize(team string) string {
	return strings.ToUpper(strings.TrimSpace(team))
}
