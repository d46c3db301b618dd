package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/adc-hub/game/service"
)

var (
	ErrSeasonNotFound = errors.New("season not found")
	ErrInvalidSeason  = errors.New("invalid season")
)

// Manager handles season definition loading and caching.
// Seasons are read from *.json, *.yaml and *.yml files in one directory.
type Manager struct {
	seasonDir     string
	defaultSeason *service.Season
	seasons       map[int]*service.Season
	files         map[int]string
	mu            sync.RWMutex
}

// NewManager creates a new season catalog over a directory
func NewManager(seasonDir string) (*Manager, error) {
	// Ensure season directory exists
	if _, err := os.Stat(seasonDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("season directory does not exist: %s", seasonDir)
	}

	m := &Manager{seasonDir: seasonDir}
	if err := m.RefreshCache(); err != nil {
		return nil, fmt.Errorf("failed to load seasons: %w", err)
	}
	return m, nil
}

// LoadSeason returns a season by its RobotEvents id
func (m *Manager) LoadSeason(id int) (*service.Season, error) {
	m.mu.RLock()
	season, exists := m.seasons[id]
	m.mu.RUnlock()
	if exists {
		return season, nil
	}

	// The built-in season is always available
	if d := m.GetDefault(); d != nil && d.ID == id {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrSeasonNotFound, id)
}

// ListSeasons returns every season, newest first
func (m *Manager) ListSeasons() ([]*service.Season, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seasons := make([]*service.Season, 0, len(m.seasons)+1)
	for _, s := range m.seasons {
		seasons = append(seasons, s)
	}
	if len(seasons) == 0 && m.defaultSeason != nil {
		seasons = append(seasons, m.defaultSeason)
	}
	sortSeasons(seasons)
	return seasons, nil
}

// GetDefault returns the default season
func (m *Manager) GetDefault() *service.Season {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultSeason
}

// SetDefault makes a loaded season the default
func (m *Manager) SetDefault(id int) error {
	season, err := m.LoadSeason(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultSeason = season
	return nil
}

// RefreshCache rereads every season file from disk.
// Invalid files are skipped; duplicate ids keep the first file in name order.
func (m *Manager) RefreshCache() error {
	entries, err := os.ReadDir(m.seasonDir)
	if err != nil {
		return fmt.Errorf("failed to read season directory: %w", err)
	}

	seasons := make(map[int]*service.Season)
	files := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() || !IsSeasonFile(entry.Name()) {
			continue
		}
		path := filepath.Join(m.seasonDir, entry.Name())
		season, err := ReadSeasonFile(path)
		if err != nil {
			continue
		}
		if _, dup := seasons[season.ID]; dup {
			continue
		}
		seasons[season.ID] = season
		files[season.ID] = path
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seasons = seasons
	m.files = files
	m.defaultSeason = pickDefault(seasons)
	return nil
}

// SaveSeason validates a season and writes it to <id>.json
func (m *Manager) SaveSeason(season *service.Season) error {
	if err := ValidateSeason(season); err != nil {
		return err
	}

	data, err := json.MarshalIndent(season, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal season: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	path, exists := m.files[season.ID]
	if !exists || filepath.Ext(path) != ".json" {
		path = filepath.Join(m.seasonDir, fmt.Sprintf("%d.json", season.ID))
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write season file: %w", err)
	}

	m.seasons[season.ID] = season
	m.files[season.ID] = path
	m.defaultSeason = pickDefault(m.seasons)
	return nil
}

// ReadSeasonFile parses and validates one season file
func ReadSeasonFile(path string) (*service.Season, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read season file: %w", err)
	}

	var season service.Season
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &season)
	default:
		err = json.Unmarshal(data, &season)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse season: %w", err)
	}

	if err := ValidateSeason(&season); err != nil {
		return nil, err
	}
	return &season, nil
}

// IsSeasonFile reports whether a file name has a season file extension
func IsSeasonFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// ValidateSeason checks the fields a season needs to be selectable
func ValidateSeason(s *service.Season) error {
	if s == nil {
		return fmt.Errorf("%w: season is nil", ErrInvalidSeason)
	}
	if s.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidSeason)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSeason)
	}
	if strings.TrimSpace(s.ShortName) == "" {
		return fmt.Errorf("%w: short_name is required", ErrInvalidSeason)
	}
	if s.StartYear <= 0 || s.EndYear < s.StartYear {
		return fmt.Errorf("%w: years must satisfy 0 < start_year <= end_year", ErrInvalidSeason)
	}
	return nil
}

// pickDefault chooses the newest active season, else the newest season, else the built-in one
func pickDefault(seasons map[int]*service.Season) *service.Season {
	list := make([]*service.Season, 0, len(seasons))
	for _, s := range seasons {
		list = append(list, s)
	}
	if len(list) == 0 {
		return builtinSeason()
	}
	sortSeasons(list)
	for _, s := range list {
		if s.Active {
			return s
		}
	}
	return list[0]
}

func sortSeasons(list []*service.Season) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].StartYear != list[j].StartYear {
			return list[i].StartYear > list[j].StartYear
		}
		return list[i].ID > list[j].ID
	})
}

// builtinSeason is used when the directory holds no valid season
func builtinSeason() *service.Season {
	return &service.Season{
		ID:        190,
		Name:      "ADC 2024-2025: Aerial Drone Competition",
		ShortName: "2024-2025",
		Program:   "ADC",
		StartYear: 2024,
		EndYear:   2025,
		Active:    true,
	}
}
