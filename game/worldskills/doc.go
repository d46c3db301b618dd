// Package worldskills keeps the world-skills leaderboard in memory and filters it
// by favorite teams, team letter or region.
package worldskills
