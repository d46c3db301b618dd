// Package mcp exposes the ADC Hub REST API as Model Context Protocol tools.
//
// The client is a thin proxy: every tool call becomes one or two REST calls
// and the JSON answer is rendered as plain text for the agent.
//
// MCP Tools:
//   - scoring_rules: Task tables, landing values and caps
//   - calculate_score: Stateless score of a finished run
//   - create_sheet, get_sheet, list_sheets: Live scoresheets
//   - sheet_action: increment, decrement, landing or clear
//   - sheet_history: Paginated action history
//   - lookup_team: RobotEvents team report
//   - list_events: Competition search
//   - world_skills: Filtered world-skills leaderboard
//   - list_seasons: Known seasons
//
// Transport Modes:
//   - Stdio: `adchub mcp` for local MCP clients
//   - HTTP: the /mcp endpoint of `adchub serve`
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
