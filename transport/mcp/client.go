package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/service"
	"github.com/wricardo/adc-hub/internal/report"
	"github.com/wricardo/adc-hub/robotevents"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"ADC Hub",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`ADC Hub - MCP Interface

Scoring and lookup companion for the Aerial Drone Competition.
This is a thin client that proxies all requests to the REST API server.

DISCIPLINES:
- autonomous: Autonomous Flight run (task counters plus one landing)
- piloting: Piloting run (task counters plus one landing)
- teamwork: Teamwork match (field counters plus a landing for each drone)

AVAILABLE TOOLS:
- scoring_rules: Task tables, point values and maximums
- calculate_score: Score a finished run in one call
- create_sheet / get_sheet / list_sheets: Live scoresheets that judges fill in step by step
- sheet_action: increment, decrement, landing or clear on a scoresheet
- sheet_history: Action history of a scoresheet
- lookup_team: Team awards, qualifier rank and world-skills standing
- list_events: Competition search
- world_skills: World-skills leaderboard with favorites, letter and region filters
- list_seasons: Known seasons

Teamwork warnings are advisory; scores are still computed.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	disciplineProp := map[string]interface{}{
		"type":        "string",
		"enum":        []string{string(scoring.Autonomous), string(scoring.Piloting), string(scoring.Teamwork)},
		"description": "Scored discipline",
	}
	sheetProp := map[string]interface{}{
		"type":        "string",
		"description": "Scoresheet ID",
	}

	// Scoring
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "scoring_rules",
		Description: "List the tasks, point values, maximums and landing options of every discipline",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleScoringRules)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "calculate_score",
		Description: "Calculate the score of a run from its task counts. Out of range counts are clamped.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"discipline": disciplineProp,
				"inputs": map[string]interface{}{
					"type":        "object",
					"description": "Task counts keyed by task key (see scoring_rules) plus landing, or red_drone/blue_drone for teamwork. Landings: none, small_cube, large_cube, landing_pad, bullseye",
				},
			},
			Required: []string{"discipline"},
		},
	}, c.handleCalculateScore)

	// Scoresheets
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_sheet",
		Description: "Create a live scoresheet for a discipline",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"discipline": disciplineProp,
				"label": map[string]interface{}{
					"type":        "string",
					"description": "Free text label such as a team or match number (optional)",
				},
			},
			Required: []string{"discipline"},
		},
	}, c.handleCreateSheet)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sheets",
		Description: "List all live scoresheets",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"discipline": disciplineProp,
			},
		},
	}, c.handleListSheets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_sheet",
		Description: "Get the current counters, landings, score and warnings of a scoresheet",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sheet_id": sheetProp,
			},
			Required: []string{"sheet_id"},
		},
	}, c.handleGetSheet)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "sheet_action",
		Description: "Apply one action to a scoresheet",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sheet_id": sheetProp,
				"action": map[string]interface{}{
					"type":        "string",
					"enum":        []string{scoring.ActionIncrement, scoring.ActionDecrement, "landing", scoring.ActionClear},
					"description": "Action to apply",
				},
				"task": map[string]interface{}{
					"type":        "string",
					"description": "Task key for increment and decrement",
				},
				"slot": map[string]interface{}{
					"type":        "string",
					"enum":        []string{scoring.SlotLanding, scoring.SlotRedDrone, scoring.SlotBlueDrone},
					"description": "Landing slot (default: landing)",
				},
				"landing": map[string]interface{}{
					"type":        "string",
					"description": "Landing option for the landing action",
				},
			},
			Required: []string{"sheet_id", "action"},
		},
	}, c.handleSheetAction)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "sheet_history",
		Description: "Get the action history of a scoresheet with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sheet_id": sheetProp,
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Page number (default: 1)",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Items per page (default: 20, max: 100)",
				},
			},
			Required: []string{"sheet_id"},
		},
	}, c.handleSheetHistory)

	// Lookups
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "lookup_team",
		Description: "Look a team up on RobotEvents: awards, average qualifier rank and world-skills standing",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"team": map[string]interface{}{
					"type":        "string",
					"description": "Team number, for example 1234A",
				},
			},
			Required: []string{"team"},
		},
	}, c.handleLookupTeam)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_events",
		Description: "Search competitions of the selected season",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Event name filter (optional)",
				},
				"season": map[string]interface{}{
					"type":        "number",
					"description": "Season ID (default: selected season)",
				},
				"no_leagues": map[string]interface{}{
					"type":        "boolean",
					"description": "Exclude league events",
				},
				"page": map[string]interface{}{
					"type":        "number",
					"description": "Result page",
				},
			},
		},
	}, c.handleListEvents)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "world_skills",
		Description: "Get the world-skills leaderboard. Filters apply in order: favorites, letter, region.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"season": map[string]interface{}{
					"type":        "number",
					"description": "Season ID (default: selected season)",
				},
				"grade": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"High School", "Middle School"},
					"description": "Grade level (default: from settings)",
				},
				"favorites": map[string]interface{}{
					"type":        "boolean",
					"description": "Only favorite teams",
				},
				"letter": map[string]interface{}{
					"type":        "string",
					"description": "Only teams whose number ends with this letter",
				},
				"region": map[string]interface{}{
					"type":        "number",
					"description": "Only teams of this region ID",
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Rows to show (default: 25)",
				},
			},
		},
	}, c.handleWorldSkills)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_seasons",
		Description: "List the known competition seasons",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSeasons)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"].(string); ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func intArg(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// Tool handlers

func (c *Client) handleScoringRules(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Disciplines []scoring.Rules `json:"disciplines"`
	}
	if err := c.apiCall(ctx, "GET", "/api/disciplines", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Rules(response.Disciplines)), nil
}

func (c *Client) handleCalculateScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	discipline, _ := args["discipline"].(string)
	inputs, _ := args["inputs"].(map[string]interface{})

	var result service.CalculateResult
	err := c.apiCall(ctx, "POST", "/api/score/"+url.PathEscape(discipline), inputs, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Calculation(&result)), nil
}

func (c *Client) handleCreateSheet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	discipline, _ := args["discipline"].(string)
	label, _ := args["label"].(string)

	body := map[string]string{"discipline": discipline}
	if label != "" {
		body["label"] = label
	}

	var sheet service.SheetInfo
	if err := c.apiCall(ctx, "POST", "/api/sheets", body, &sheet); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created scoresheet: %s\nDiscipline: %s\n", sheet.ID, sheet.Discipline.Title())
	if sheet.Label != "" {
		result += fmt.Sprintf("Label: %s\n", sheet.Label)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSheets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/sheets"
	if d, _ := arguments(request)["discipline"].(string); d != "" {
		path += "?discipline=" + url.QueryEscape(d)
	}

	var response struct {
		Count  int                 `json:"count"`
		Sheets []service.SheetInfo `json:"sheets"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Live Scoresheets (%d):\n\n", response.Count)
	for _, s := range response.Sheets {
		score := 0
		if s.State != nil {
			score = s.State.Score
		}
		fmt.Fprintf(&b, "- %s %s", s.ID, s.Discipline.Title())
		if s.Label != "" {
			fmt.Fprintf(&b, " [%s]", s.Label)
		}
		fmt.Fprintf(&b, " score=%d (Created: %s)\n", score, s.CreatedAt.Format("15:04:05"))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSheet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sheetID, _ := arguments(request)["sheet_id"].(string)

	var sheet service.SheetInfo
	if err := c.apiCall(ctx, "GET", "/api/sheets/"+url.PathEscape(sheetID), nil, &sheet); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Sheet(&sheet)), nil
}

func (c *Client) handleSheetAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sheetID, _ := args["sheet_id"].(string)
	action, _ := args["action"].(string)
	base := "/api/sheets/" + url.PathEscape(sheetID)

	var (
		path string
		body interface{}
	)
	switch action {
	case scoring.ActionIncrement, scoring.ActionDecrement:
		task, _ := args["task"].(string)
		if task == "" {
			return mcp.NewToolResultError("task is required for " + action), nil
		}
		path, body = base+"/"+action, map[string]string{"task": task}
	case "landing", scoring.ActionSelect:
		slot, _ := args["slot"].(string)
		landing, _ := args["landing"].(string)
		path, body = base+"/landing", map[string]string{"slot": slot, "landing": landing}
	case scoring.ActionClear:
		path = base + "/clear"
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
	}

	var result service.ActionResult
	if err := c.apiCall(ctx, "POST", path, body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.ActionResult(&result)), nil
}

func (c *Client) handleSheetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sheetID, _ := args["sheet_id"].(string)

	params := url.Values{}
	if page := intArg(args, "page"); page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit := intArg(args, "limit"); limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := "/api/sheets/" + url.PathEscape(sheetID) + "/history"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.History(&history)), nil
}

func (c *Client) handleLookupTeam(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	team, _ := arguments(request)["team"].(string)
	if strings.TrimSpace(team) == "" {
		return mcp.NewToolResultError("team is required"), nil
	}

	var teamReport service.TeamReport
	if err := c.apiCall(ctx, "GET", "/api/teams/"+url.PathEscape(strings.TrimSpace(team)), nil, &teamReport); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.TeamReport(&teamReport)), nil
}

func (c *Client) handleListEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	params := url.Values{}
	if name, _ := args["name"].(string); name != "" {
		params.Set("name", name)
	}
	if season := intArg(args, "season"); season > 0 {
		params.Set("season", strconv.Itoa(season))
	}
	if noLeagues, _ := args["no_leagues"].(bool); noLeagues {
		params.Set("no_leagues", "true")
	}
	if page := intArg(args, "page"); page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	path := "/api/events"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var response struct {
		Count  int                 `json:"count"`
		Events []robotevents.Event `json:"events"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Events(response.Events)), nil
}

func (c *Client) handleWorldSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	params := url.Values{}
	if season := intArg(args, "season"); season > 0 {
		params.Set("season", strconv.Itoa(season))
	}
	if grade, _ := args["grade"].(string); grade != "" {
		params.Set("grade", grade)
	}
	if favorites, _ := args["favorites"].(bool); favorites {
		params.Set("favorites", "true")
	}
	if letter, _ := args["letter"].(string); letter != "" {
		params.Set("letter", letter)
	}
	if region := intArg(args, "region"); region > 0 {
		params.Set("region", strconv.Itoa(region))
	}

	path := "/api/worldskills"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var page service.SkillsPage
	if err := c.apiCall(ctx, "GET", path, nil, &page); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	limit := intArg(args, "limit")
	if limit <= 0 {
		limit = 25
	}
	return mcp.NewToolResultText(report.SkillsPage(&page, limit)), nil
}

func (c *Client) handleListSeasons(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Seasons []service.Season `json:"seasons"`
	}
	if err := c.apiCall(ctx, "GET", "/api/seasons", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Seasons:\n\n")
	for _, s := range response.Seasons {
		active := ""
		if s.Active {
			active = " (active)"
		}
		fmt.Fprintf(&b, "• %d %s%s\n", s.ID, s.Name, active)
	}
	return mcp.NewToolResultText(b.String()), nil
}
