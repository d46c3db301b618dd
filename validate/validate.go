// Command validate checks the season catalog files in ../seasons (or the directory
// given as the first argument). It checks:
//   - JSON/YAML structure and required fields of every season
//   - The file name matches the season id (190.json holds season 190)
//   - Season ids are unique across files
//   - At most one season is marked active
//   - The program is ADC
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wricardo/adc-hub/game/config"
	"github.com/wricardo/adc-hub/game/service"
)

const program = "ADC"

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Season *service.Season
}

// validateSeason loads and validates a single season file
func validateSeason(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	season, err := config.ReadSeasonFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Season = season

	stem := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if id, err := strconv.Atoi(stem); err != nil || id != season.ID {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("File name %q does not match season id %d", result.File, season.ID))
	}

	if !strings.EqualFold(season.Program, program) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("program must be %s, got %q", program, season.Program))
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", season.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Years: %d-%d", season.StartYear, season.EndYear))
		if season.Active {
			result.Errors = append(result.Errors, "✓ Active")
		}
	}
	return result
}

// validateCatalog applies the cross-file rules to already validated files and
// returns the problems it found
func validateCatalog(results []ValidationResult) []string {
	var problems []string

	byID := make(map[int][]string)
	var active []string
	for _, r := range results {
		if r.Season == nil {
			continue
		}
		byID[r.Season.ID] = append(byID[r.Season.ID], r.File)
		if r.Season.Active {
			active = append(active, r.File)
		}
	}

	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if files := byID[id]; len(files) > 1 {
			problems = append(problems, fmt.Sprintf("Season %d is defined in %d files: %s", id, len(files), strings.Join(files, ", ")))
		}
	}

	if len(active) > 1 {
		problems = append(problems, fmt.Sprintf("%d seasons are marked active: %s", len(active), strings.Join(active, ", ")))
	}
	return problems
}

// seasonFiles lists the season files of dir in name order
func seasonFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !config.IsSeasonFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// main validates every season file, printing a concise report and exiting
// with non-zero status if any are invalid
func main() {
	seasonDir := "../seasons"
	if len(os.Args) > 1 {
		seasonDir = os.Args[1]
	}

	files, err := seasonFiles(seasonDir)
	if err != nil {
		fmt.Printf("Error finding season files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		result := validateSeason(file)
		results = append(results, result)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	for _, problem := range validateCatalog(results) {
		allValid = false
		fmt.Println("❌ " + problem)
	}
	if allValid {
		fmt.Printf("✅ All %d season files are valid!\n", len(files))
	} else {
		fmt.Println("❌ Some season files have errors")
		os.Exit(1)
	}
}
