// Package service provides the business logic layer of ADC Hub.
//
// ScoreService covers the calculators: stateless scoring of the Autonomous Flight,
// Piloting and Teamwork disciplines, and live scoresheets with increment, decrement,
// landing selection, clear and a paginated action history.
//
// LookupService covers RobotEvents: team cards with award counts and world-skills
// standing, the competition search and the filtered world-skills leaderboard.
//
// Usage:
//
//	sheets := session.NewManager()
//	seasons := config.NewManager("seasons")
//	scores := service.NewScoreService(sheets, seasons, log, service.Observer{})
//
//	info, err := scores.CreateSheet(ctx, scoring.Teamwork, "Match 12")
//	if err != nil {
//		return err
//	}
//	res, err := scores.Increment(ctx, info.ID, scoring.TaskTopsCleared)
//
// Scoresheets live only in memory and are identified by 4-character IDs.
package service
