package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validSeason = `{
	"id": 190,
	"name": "ADC 2024-2025: Aerial Drone Competition",
	"short_name": "2024-2025",
	"program": "ADC",
	"start_year": 2024,
	"end_year": 2025,
	"active": true
}`

// writeFile creates name in dir with content and returns its path
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func hasError(result ValidationResult, substr string) bool {
	for _, err := range result.Errors {
		if strings.Contains(err, substr) {
			return true
		}
	}
	return false
}

func TestValidateSeason_ValidJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "190.json", validSeason)

	result := validateSeason(path)
	if !result.Valid {
		t.Fatalf("Expected valid season, but got errors: %v", result.Errors)
	}
	if result.File != "190.json" {
		t.Errorf("Expected file name 190.json, got %s", result.File)
	}
	if result.Season == nil || result.Season.ID != 190 {
		t.Errorf("Expected parsed season 190, got %+v", result.Season)
	}
	if !hasError(result, "✓ Active") {
		t.Errorf("Expected active marker in %v", result.Errors)
	}
}

func TestValidateSeason_ValidYAML(t *testing.T) {
	content := `id: 173
name: "ADC 2022-2023: Aerial Drone Competition"
short_name: "2022-2023"
program: ADC
start_year: 2022
end_year: 2023
`
	path := writeFile(t, t.TempDir(), "173.yaml", content)

	result := validateSeason(path)
	if !result.Valid {
		t.Fatalf("Expected valid season, but got errors: %v", result.Errors)
	}
}

func TestValidateSeason_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"bad json", "190.json", `{"id": 190, invalid}`, "failed to parse season"},
		{"missing name", "190.json", `{"id": 190, "short_name": "x", "program": "ADC", "start_year": 2024, "end_year": 2025}`, "name is required"},
		{"years reversed", "190.json", `{"id": 190, "name": "n", "short_name": "x", "program": "ADC", "start_year": 2025, "end_year": 2024}`, "start_year"},
		{"file name mismatch", "181.json", validSeason, "does not match season id 190"},
		{"wrong program", "190.json", strings.Replace(validSeason, `"ADC"`, `"VRC"`, 1), "program must be ADC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			result := validateSeason(path)
			if result.Valid {
				t.Fatal("Expected invalid season")
			}
			if !hasError(result, tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, result.Errors)
			}
		})
	}
}

func TestValidateSeason_MissingFile(t *testing.T) {
	result := validateSeason("/non/existent/190.json")
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasError(result, "failed to read season file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateCatalog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "190.json", validSeason)
	writeFile(t, dir, "190.yaml", "id: 190\nname: Copy\nshort_name: copy\nprogram: ADC\nstart_year: 2024\nend_year: 2025\nactive: true\n")
	writeFile(t, dir, "README.md", "not a season")

	files, err := seasonFiles(dir)
	if err != nil {
		t.Fatalf("seasonFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("Expected 2 season files, got %v", files)
	}

	var results []ValidationResult
	for _, f := range files {
		results = append(results, validateSeason(f))
	}

	problems := validateCatalog(results)
	if len(problems) != 2 {
		t.Fatalf("Expected duplicate and active problems, got %v", problems)
	}
	if !strings.Contains(problems[0], "Season 190 is defined in 2 files") {
		t.Errorf("Unexpected duplicate message: %s", problems[0])
	}
	if !strings.Contains(problems[1], "2 seasons are marked active") {
		t.Errorf("Unexpected active message: %s", problems[1])
	}
}

func TestBundledSeasons(t *testing.T) {
	files, err := seasonFiles("../seasons")
	if err != nil {
		t.Skip("Skipping test - seasons directory not found")
	}

	var results []ValidationResult
	for _, f := range files {
		result := validateSeason(f)
		if !result.Valid {
			t.Errorf("%s: %v", result.File, result.Errors)
		}
		results = append(results, result)
	}
	if problems := validateCatalog(results); len(problems) > 0 {
		t.Errorf("Catalog problems: %v", problems)
	}
}
