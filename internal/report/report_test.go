package report

import (
	"strings"
	"testing"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/service"
	"github.com/wricardo/adc-hub/robotevents"
)

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}

func TestHistory(t *testing.T) {
	history := &service.HistoryResponse{
		Actions: []scoring.ActionEntry{
			{Action: "select", Target: "red_drone", Landing: "bullseye", Success: false, Score: 4, ActionNumber: 2},
			{Action: "increment", Target: "tops_cleared", Success: true, Score: 1, ActionNumber: 1},
		},
		TotalActions: 2,
		Page:         1,
		TotalPages:   1,
	}

	assertContains(t, History(history),
		"Action History (Page 1/1)",
		"2. select red_drone → bullseye ✗ [Score: 4]",
		"1. increment tops_cleared ✓ [Score: 1]",
	)
}

func TestCalculation(t *testing.T) {
	match := scoring.TeamworkMatch{TopsCleared: 2, GreenBeanBags: 3, GreenBalls: 2}
	result := &service.CalculateResult{
		Discipline: scoring.Teamwork,
		Score:      match.Score(),
		Breakdown:  match.Breakdown(),
		Warnings:   match.Warnings(),
		Adjusted:   true,
	}

	out := Calculation(result)
	assertContains(t, out, "Teamwork Score: ", "clamped", "⚠️")
}

func TestRules(t *testing.T) {
	var rules []scoring.Rules
	for _, d := range scoring.Disciplines {
		r, err := scoring.RulesFor(d)
		if err != nil {
			t.Fatalf("RulesFor(%s): %v", d, err)
		}
		rules = append(rules, *r)
	}

	assertContains(t, Rules(rules),
		"Autonomous Flight (autonomous)",
		"Piloting (piloting)",
		"Teamwork (teamwork)",
		"small_cube",
		"color match",
	)
}

func TestSkillsPage(t *testing.T) {
	page := &service.SkillsPage{Title: "World Skills", Grade: "High School", Total: 3}
	for i := 1; i <= 3; i++ {
		row := service.SkillsRow{Position: i}
		row.Rank = i * 10
		row.Team.Team = strings.Repeat("1", i) + "A"
		page.Rows = append(page.Rows, row)
	}

	out := SkillsPage(page, 2)
	assertContains(t, out, "(3 of 3 teams)", "1. 1A", "... 1 more")
	if strings.Contains(out, "111A") {
		t.Errorf("Expected the third row to be truncated, got:\n%s", out)
	}

	empty := SkillsPage(&service.SkillsPage{Title: "World Skills", Grade: "Middle School"}, 10)
	assertContains(t, empty, "No teams match the filter.")
}

func TestEvents(t *testing.T) {
	if got := Events(nil); got != "No events found." {
		t.Errorf("Expected empty message, got %q", got)
	}

	out := Events([]robotevents.Event{{Name: "State Championship", SKU: "RE-ADC-25-0001"}})
	assertContains(t, out, "Events (1):", "• State Championship (RE-ADC-25-0001)")
}

func TestSeasons(t *testing.T) {
	out := Seasons([]*service.Season{
		{ID: 190, Name: "ADC 2024-2025", StartYear: 2024, EndYear: 2025, Active: true},
		{ID: 181, Name: "ADC 2023-2024", StartYear: 2023, EndYear: 2024},
	})
	assertContains(t, out, "*  190  ADC 2024-2025", "   181  ADC 2023-2024")

	if got := Seasons(nil); got != "No seasons configured.\n" {
		t.Errorf("Expected empty message, got %q", got)
	}
}
