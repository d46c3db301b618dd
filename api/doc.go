// Package api provides the HTTP REST API of the ADC Hub server.
//
// Endpoints:
//
// Scoring:
//   - GET /api/disciplines - Task tables, landing tables and caps of every discipline
//   - POST /api/score/{discipline} - Stateless calculation; the body holds the run inputs
//
// Scoresheets:
//   - POST /api/sheets - Create a sheet ({"discipline": "teamwork", "label": "Match 4"})
//   - GET /api/sheets - List sheets (?discipline=&sort=created|accessed&order=asc|desc&limit=)
//   - GET /api/sheets/{id} - Current sheet state
//   - DELETE /api/sheets/{id} - Delete a sheet
//   - POST /api/sheets/{id}/increment - {"task": "hover"}
//   - POST /api/sheets/{id}/decrement - {"task": "hover"}
//   - POST /api/sheets/{id}/landing - {"slot": "red_drone", "landing": "landing_pad"}
//   - POST /api/sheets/{id}/clear - Reset counters and landings
//   - GET /api/sheets/{id}/history - Paginated action history (?page=&limit=&order=)
//
// Lookups (RobotEvents):
//   - GET /api/teams/{number} - Team report with award counts and world-skills standing
//   - GET /api/events - Competition search (?name=&season=&level=&region=&no_leagues=&page=&date_filter=)
//   - GET /api/worldskills - Leaderboard (?season=&grade=&favorites=&letter=&region=&region_name=)
//   - POST /api/worldskills/refresh - Download the leaderboard again (?season=)
//
// Settings:
//   - GET /api/settings, PUT /api/settings, POST /api/settings/reset
//   - POST /api/settings/favorites/{team}, DELETE /api/settings/favorites/{team}
//
// Seasons:
//   - GET /api/seasons, GET /api/seasons/{id}
//
// Other:
//   - GET /healthz - Liveness
//   - GET /metrics - Prometheus metrics, when enabled
//   - GET /ws?sheet={id} - WebSocket live view of a sheet
//
// Every mutation of a sheet is pushed to its WebSocket viewers.
//
// Errors are returned as JSON with an HTTP status derived from the error:
//
//	{"error": "unknown task: \"loop\""}
//
// A rejected teamwork landing answers 409 and also carries the sheet, since the
// attempt is recorded on its history:
//
//	{"error": "landing option unavailable: ...", "sheet": {...}}
package api
