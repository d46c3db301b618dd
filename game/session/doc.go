// Package session keeps the live scoresheets of the ADC Hub server.
//
// The session package implements:
//   - Thread-safe scoresheet storage and retrieval
//   - Short, case-insensitive scoresheet IDs
//   - Expiry of scoresheets nobody has touched for a while
//
// Core Types:
//
// Manager stores service.Sheet values keyed by ID. Each sheet wraps one
// scoring.Scoresheet together with its label and access times.
//
// Identifiers:
//
// Sheets use 4-character hex IDs generated from crypto/rand so a judge can
// read one aloud to a second screen. Callers may also pick their own ID.
//
// Lifecycle:
//
// Scoresheets live in memory only. A restart starts with an empty manager,
// and CleanupExpiredSessions is run periodically by the server to drop sheets
// that have been idle longer than the configured maximum age.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sheet, err := manager.Create("", scoring.Teamwork, "Match 12")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sheet, err = manager.Get(sheet.ID)
package session
