package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/wricardo/adc-hub/game/service"
)

func createValidSeason(id, start int, active bool) *service.Season {
	return &service.Season{
		ID:        id,
		Name:      "ADC Test Season",
		ShortName: "test",
		Program:   "ADC",
		StartYear: start,
		EndYear:   start + 1,
		Active:    active,
	}
}

func writeSeasonFile(t *testing.T, dir, name string, season *service.Season) {
	t.Helper()
	data, err := json.MarshalIndent(season, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal season: %v", err)
	}

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0644); err != nil {
		t.Fatalf("Failed to write season file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeSeasonFile(t, dir, "190", createValidSeason(190, 2024, true))

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().ID != 190 {
			t.Errorf("Expected default season 190, got %d", manager.GetDefault().ID)
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("empty directory uses built-in season", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		if err != nil {
			t.Fatalf("NewManager should succeed without season files, got error: %v", err)
		}
		def := manager.GetDefault()
		if def == nil || def.ID <= 0 {
			t.Fatalf("Expected built-in default season, got %+v", def)
		}
		if _, err := manager.LoadSeason(def.ID); err != nil {
			t.Errorf("Built-in season should be loadable: %v", err)
		}
		seasons, _ := manager.ListSeasons()
		if len(seasons) != 1 {
			t.Errorf("Expected the built-in season to be listed, got %d", len(seasons))
		}
	})
}

func TestDefaultSelection(t *testing.T) {
	tests := []struct {
		name    string
		seasons []*service.Season
		want    int
	}{
		{
			name:    "newest active wins",
			seasons: []*service.Season{createValidSeason(181, 2023, true), createValidSeason(173, 2022, true), createValidSeason(190, 2024, false)},
			want:    181,
		},
		{
			name:    "newest when none active",
			seasons: []*service.Season{createValidSeason(181, 2023, false), createValidSeason(190, 2024, false)},
			want:    190,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, s := range tt.seasons {
				writeSeasonFile(t, dir, strconv.Itoa(s.ID), s)
			}
			manager, err := NewManager(dir)
			if err != nil {
				t.Fatalf("Failed to create manager: %v", err)
			}
			if got := manager.GetDefault().ID; got != tt.want {
				t.Errorf("GetDefault() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoadSeason(t *testing.T) {
	dir := t.TempDir()
	writeSeasonFile(t, dir, "190", createValidSeason(190, 2024, true))
	yamlSeason := "id: 181\nname: ADC 2023-2024\nshort_name: 2023-2024\nprogram: ADC\nstart_year: 2023\nend_year: 2024\n"
	if err := os.WriteFile(filepath.Join(dir, "181.yaml"), []byte(yamlSeason), 0644); err != nil {
		t.Fatal(err)
	}
	// invalid files are skipped
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	writeSeasonFile(t, dir, "bad", &service.Season{ID: 5})

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	s, err := manager.LoadSeason(181)
	if err != nil {
		t.Fatalf("LoadSeason(181) error: %v", err)
	}
	if s.ShortName != "2023-2024" {
		t.Errorf("Expected YAML season to load, got %+v", s)
	}

	if _, err := manager.LoadSeason(5); !errors.Is(err, ErrSeasonNotFound) {
		t.Errorf("Expected ErrSeasonNotFound for invalid file, got %v", err)
	}

	seasons, err := manager.ListSeasons()
	if err != nil {
		t.Fatal(err)
	}
	if len(seasons) != 2 || seasons[0].ID != 190 || seasons[1].ID != 181 {
		t.Errorf("Expected seasons newest first [190 181], got %+v", seasons)
	}
}

func TestSaveSeason(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if err := manager.SaveSeason(&service.Season{ID: 1}); !errors.Is(err, ErrInvalidSeason) {
		t.Errorf("Expected ErrInvalidSeason, got %v", err)
	}

	season := createValidSeason(200, 2025, true)
	if err := manager.SaveSeason(season); err != nil {
		t.Fatalf("SaveSeason error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "200.json")); err != nil {
		t.Errorf("Expected 200.json on disk: %v", err)
	}
	if manager.GetDefault().ID != 200 {
		t.Errorf("Saved active season should become default, got %d", manager.GetDefault().ID)
	}

	// A fresh manager sees the saved file
	reloaded, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := reloaded.LoadSeason(200); err != nil {
		t.Errorf("Saved season not reloaded: %v", err)
	}
}

func TestSetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	writeSeasonFile(t, dir, "190", createValidSeason(190, 2024, true))
	writeSeasonFile(t, dir, "181", createValidSeason(181, 2023, false))

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := manager.SetDefault(181); err != nil {
		t.Fatalf("SetDefault error: %v", err)
	}
	if manager.GetDefault().ID != 181 {
		t.Errorf("Expected 181 as default")
	}
	if err := manager.SetDefault(999); err == nil {
		t.Error("Expected error for unknown season")
	}

	writeSeasonFile(t, dir, "173", createValidSeason(173, 2022, false))
	if err := manager.RefreshCache(); err != nil {
		t.Fatalf("RefreshCache error: %v", err)
	}
	if _, err := manager.LoadSeason(173); err != nil {
		t.Errorf("Expected refreshed cache to include 173: %v", err)
	}
	if manager.GetDefault().ID != 190 {
		t.Errorf("Refresh should recompute the default, got %d", manager.GetDefault().ID)
	}
}

func TestValidateSeason(t *testing.T) {
	tests := []struct {
		name    string
		season  *service.Season
		wantErr bool
	}{
		{"valid", createValidSeason(190, 2024, true), false},
		{"nil", nil, true},
		{"zero id", &service.Season{Name: "x", ShortName: "x", StartYear: 2024, EndYear: 2025}, true},
		{"missing name", &service.Season{ID: 1, ShortName: "x", StartYear: 2024, EndYear: 2025}, true},
		{"missing short name", &service.Season{ID: 1, Name: "x", StartYear: 2024, EndYear: 2025}, true},
		{"years reversed", &service.Season{ID: 1, Name: "x", ShortName: "x", StartYear: 2025, EndYear: 2024}, true},
		{"single year", &service.Season{ID: 1, Name: "x", ShortName: "x", StartYear: 2025, EndYear: 2025}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeason(tt.season)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSeason() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	writeSeasonFile(t, dir, "190", createValidSeason(190, 2024, true))
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadSeason(190); err != nil {
				t.Errorf("LoadSeason error: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := manager.RefreshCache(); err != nil {
				t.Errorf("RefreshCache error: %v", err)
			}
		}()
	}
	wg.Wait()
}
