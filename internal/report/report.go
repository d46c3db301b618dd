// Package report renders scoring and lookup results as plain text for terminals and agents.
package report

import (
	"fmt"
	"strings"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/service"
	"github.com/wricardo/adc-hub/robotevents"
)

// Rules lists the task tables, landing values and caps of every discipline
func Rules(rules []scoring.Rules) string {
	var b strings.Builder
	for _, r := range rules {
		fmt.Fprintf(&b, "%s (%s)\n", r.Title, r.Discipline)
		for _, t := range r.Tasks {
			if t.Points > 0 {
				fmt.Fprintf(&b, "  %-18s %-28s %3d pts  max %d\n", t.Key, t.Label, t.Points, t.Max)
			} else {
				fmt.Fprintf(&b, "  %-18s %-28s          max %d\n", t.Key, t.Label, t.Max)
			}
		}
		fmt.Fprintf(&b, "  Landing slots: %s\n", strings.Join(r.Slots, ", "))
		for _, l := range scoring.Landings {
			fmt.Fprintf(&b, "    %-12s %3d pts\n", l.Key(), r.Landings.Points(l))
		}
		for group, max := range r.GroupCaps {
			fmt.Fprintf(&b, "  Combined cap %s: %d\n", group, max)
		}
		b.WriteString("\n")
	}
	if findRules(rules, scoring.Teamwork) != nil {
		b.WriteString("Teamwork color match: balls × bean bags × 2 per color, only when the zone holds bean bags.\n")
	}
	return b.String()
}

func findRules(rules []scoring.Rules, d scoring.Discipline) *scoring.Rules {
	for i := range rules {
		if rules[i].Discipline == d {
			return &rules[i]
		}
	}
	return nil
}

func writeBreakdown(b *strings.Builder, breakdown scoring.Breakdown) {
	for _, item := range breakdown.Items {
		if item.Points == 0 {
			continue
		}
		fmt.Fprintf(b, "  %-28s ×%-3d %4d\n", item.Label, item.Count, item.Points)
	}
}

func writeWarnings(b *strings.Builder, warnings []scoring.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(b, "⚠️  %s\n", w.Message)
	}
}

// Calculation renders a stateless score with its breakdown
func Calculation(result *service.CalculateResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Score: %d\n\n", result.Discipline.Title(), result.Score)
	writeBreakdown(&b, result.Breakdown)
	if result.Adjusted {
		b.WriteString("\nSome counts were above their maximum and were clamped.\n")
	}
	if len(result.Warnings) > 0 {
		b.WriteString("\n")
		writeWarnings(&b, result.Warnings)
	}
	return b.String()
}

// Sheet renders the counters, landing slots and warnings of a live scoresheet
func Sheet(sheet *service.SheetInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scoresheet %s - %s", sheet.ID, sheet.Discipline.Title())
	if sheet.Label != "" {
		fmt.Fprintf(&b, " [%s]", sheet.Label)
	}
	b.WriteString("\n")

	state := sheet.State
	if state == nil {
		return b.String()
	}
	fmt.Fprintf(&b, "Score: %d\n\n", state.Score)

	if rules, err := scoring.RulesFor(sheet.Discipline); err == nil {
		for _, t := range rules.Tasks {
			fmt.Fprintf(&b, "  %-18s %d/%d\n", t.Key, state.Counts[t.Key], state.Ceilings[t.Key])
		}
		for _, slot := range rules.Slots {
			fmt.Fprintf(&b, "  %-18s %s", slot, state.Landings[slot])
			if disabled := state.Disabled[slot]; len(disabled) > 0 {
				fmt.Fprintf(&b, " (unavailable: %s)", strings.Join(disabled, ", "))
			}
			b.WriteString("\n")
		}
	}

	if len(state.Warnings) > 0 {
		b.WriteString("\n")
		writeWarnings(&b, state.Warnings)
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", state.Message)
	}
	return b.String()
}

func ActionResult(result *service.ActionResult) string {
	status := "✓ Changed"
	if !result.Changed {
		status = "• No change"
	}
	out := status
	if result.Message != "" {
		out += ": " + result.Message
	}
	out += "\n\n"
	if result.Sheet != nil {
		out += Sheet(result.Sheet)
	}
	return out
}

// History renders one page of a scoresheet action history
func History(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Action History (Page %d/%d) - Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalActions)

	for _, entry := range history.Actions {
		status := "✓"
		if !entry.Success {
			status = "✗"
		}
		target := entry.Target
		if entry.Landing != "" {
			target += " → " + entry.Landing
		}
		result += fmt.Sprintf("%d. %s %s %s [Score: %d]\n",
			entry.ActionNumber, entry.Action, strings.TrimSpace(target), status, entry.Score)
	}

	return result
}

// TeamReport renders a team lookup
func TeamReport(report *service.TeamReport) string {
	var b strings.Builder
	t := report.Team
	fmt.Fprintf(&b, "Team %s - %s\n", t.Number, t.TeamName)
	if t.Organization != "" {
		fmt.Fprintf(&b, "Organization: %s\n", t.Organization)
	}
	if loc := t.Location.String(); loc != "" {
		fmt.Fprintf(&b, "Location: %s\n", loc)
	}
	if t.Grade != "" {
		fmt.Fprintf(&b, "Grade: %s\n", t.Grade)
	}
	if report.Favorite {
		b.WriteString("★ Favorite\n")
	}

	b.WriteString("\nAwards:\n")
	if len(report.Awards) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, a := range report.Awards {
		fmt.Fprintf(&b, "  %dx %s\n", a.Count, a.Title)
	}

	if report.AverageQualifierRank > 0 {
		fmt.Fprintf(&b, "\nAverage qualifier rank: %.1f over %d events\n",
			report.AverageQualifierRank, len(report.Rankings))
	}

	if ws := report.WorldSkills; ws != nil {
		fmt.Fprintf(&b, "World skills: #%d of %d (score %d, autonomous %d, piloting %d)\n",
			ws.Rank, report.WorldSkillsTotal, ws.Scores.Score, ws.Scores.Programming, ws.Scores.Driver)
	} else {
		b.WriteString("World skills: not ranked\n")
	}
	return b.String()
}

func Events(events []robotevents.Event) string {
	if len(events) == 0 {
		return "No events found."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Events (%d):\n\n", len(events))
	for _, e := range events {
		fmt.Fprintf(&b, "• %s (%s)\n", e.Name, e.SKU)
		if !e.Start.IsZero() {
			fmt.Fprintf(&b, "  %s", e.Start.Format("Jan 2, 2006"))
			if loc := e.Location.String(); loc != "" {
				fmt.Fprintf(&b, " - %s", loc)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SkillsPage renders at most limit rows of a filtered leaderboard
func SkillsPage(page *service.SkillsPage, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s (%d of %d teams)\n\n", page.Title, page.Grade, len(page.Rows), page.Total)
	for i, row := range page.Rows {
		if i >= limit {
			fmt.Fprintf(&b, "... %d more\n", len(page.Rows)-limit)
			break
		}
		fmt.Fprintf(&b, "%3d. %-8s %-28s %4d (world #%d)\n",
			row.Position, row.Team.Team, row.Team.TeamName, row.Scores.Score, row.Rank)
	}
	if len(page.Rows) == 0 {
		b.WriteString("No teams match the filter.\n")
	}
	return b.String()
}

// Seasons lists the known seasons, marking the active one
func Seasons(seasons []*service.Season) string {
	var b strings.Builder
	for _, s := range seasons {
		marker := " "
		if s.Active {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %4d  %-40s %d-%d\n", marker, s.ID, s.Name, s.StartYear, s.EndYear)
	}
	if len(seasons) == 0 {
		b.WriteString("No seasons configured.\n")
	}
	return b.String()
}
