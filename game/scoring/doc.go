// Package scoring provides the scoring rules for the ADC Hub competition calculators.
//
// The scoring package implements:
//   - Autonomous Flight, Piloting and Teamwork score functions
//   - Per-discipline landing point tables
//   - Bounded task counters with clamped increment/decrement
//   - Teamwork validation warnings and drone landing exclusivity
//   - Scoresheets that hold calculator state between user actions
//
// Core Types:
//
// AutonomousRun, PilotingRun and TeamworkMatch are plain input records whose
// Score methods are pure and total: every input is bounded before it reaches
// them, so they never fail. Scoresheet wraps one discipline's counters and
// landing selections and recomputes the score after every action.
//
// Usage:
//
//	run := scoring.AutonomousRun{TakeOff: 2, Figure8: 1, Landing: scoring.Bullseye}
//	total := run.Score()
//
//	sheet, err := scoring.NewScoresheet(scoring.Teamwork)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sheet.Increment("tops_cleared")
//	sheet.Select(scoring.SlotRedDrone, scoring.LandingPad)
//	warnings := sheet.Warnings()
//
// Piloting:
//
// Only the counters-only Piloting rule set (barrel roll, high jump, obstacle
// course, hover) is implemented.
package scoring
