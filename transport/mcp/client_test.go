package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/wricardo/adc-hub/api"
	"github.com/wricardo/adc-hub/game/config"
	"github.com/wricardo/adc-hub/game/scoring"
	"github.com/wricardo/adc-hub/game/service"
	"github.com/wricardo/adc-hub/game/session"
	"github.com/wricardo/adc-hub/game/settings"
	"github.com/wricardo/adc-hub/game/worldskills"
	"github.com/wricardo/adc-hub/robotevents"
)

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

// newBackend runs the real REST API over an in-memory sheet store
func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	catalog, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store, err := settings.NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	server := api.NewServer(api.Options{
		Scores:   service.NewScoreService(session.NewManager(), catalog, zerolog.Nop(), service.Observer{}),
		Settings: store,
		Logger:   zerolog.Nop(),
	})
	ts := httptest.NewServer(server)
	t.Cleanup(ts.Close)
	return ts
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080/"
	client := NewClient(baseURL)

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"id": "ab12", "score": 5})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall(context.Background(), "GET", "/api", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != "ab12" {
		t.Errorf("Expected id ab12, got %v", response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{"plain error", http.StatusInternalServerError, "Internal Server Error", "API error: 500"},
		{"json error", http.StatusNotFound, `{"error":"scoresheet not found: zz"}`, "scoresheet not found: zz"},
		{"conflict with sheet", http.StatusConflict, `{"error":"landing option unavailable","sheet":{"id":"ab12"}}`, "landing option unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			err := NewClient(server.URL).apiCall(context.Background(), "GET", "/api", nil, nil)
			if err == nil {
				t.Fatal("Expected error")
			}
			if err.Error() != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, err.Error())
			}
		})
	}
}

func TestClient_handleCalculateScore(t *testing.T) {
	client := NewClient(newBackend(t).URL)

	result, err := client.handleCalculateScore(context.Background(), toolRequest("calculate_score", map[string]interface{}{
		"discipline": "teamwork",
		"inputs": map[string]interface{}{
			"tops_cleared":    float64(2),
			"green_bean_bags": float64(2),
			"green_balls":     float64(3),
			"red_drone":       "small_cube",
		},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("Unexpected tool error: %s", resultText(t, result))
	}

	// 2 tops + 2 bags + 3 balls + 12 color match + 25 small cube
	text := resultText(t, result)
	if !strings.Contains(text, "Teamwork Score: 44") {
		t.Errorf("Expected score 44, got: %s", text)
	}

	result, _ = client.handleCalculateScore(context.Background(), toolRequest("calculate_score", map[string]interface{}{
		"discipline": "juggling",
	}))
	if !result.IsError {
		t.Error("Expected tool error for unknown discipline")
	}
}

func TestClient_SheetWorkflow(t *testing.T) {
	client := NewClient(newBackend(t).URL)
	ctx := context.Background()

	var sheetID string
	{
		var list struct {
			Sheets []service.SheetInfo `json:"sheets"`
		}
		result, err := client.handleCreateSheet(ctx, toolRequest("create_sheet", map[string]interface{}{
			"discipline": "autonomous",
			"label":      "Team 1234A",
		}))
		if err != nil {
			t.Fatal(err)
		}
		text := resultText(t, result)
		if !strings.Contains(text, "Created scoresheet:") || !strings.Contains(text, "Autonomous Flight") {
			t.Fatalf("Unexpected create output: %s", text)
		}
		if err := client.apiCall(ctx, "GET", "/api/sheets", nil, &list); err != nil || len(list.Sheets) != 1 {
			t.Fatalf("Expected one sheet, got %v (%v)", list.Sheets, err)
		}
		sheetID = list.Sheets[0].ID
	}

	steps := []struct {
		args     map[string]interface{}
		contains string
		isError  bool
	}{
		{map[string]interface{}{"action": "increment", "task": scoring.TaskFigure8}, "Score: 40", false},
		{map[string]interface{}{"action": "landing", "landing": "bullseye"}, "Score: 65", false},
		{map[string]interface{}{"action": "decrement", "task": scoring.TaskKeyhole}, "No change", false},
		{map[string]interface{}{"action": "increment"}, "task is required", true},
		{map[string]interface{}{"action": "spin"}, "unknown action", true},
		{map[string]interface{}{"action": "clear"}, "Score: 0", false},
	}

	for _, step := range steps {
		step.args["sheet_id"] = sheetID
		result, err := client.handleSheetAction(ctx, toolRequest("sheet_action", step.args))
		if err != nil {
			t.Fatal(err)
		}
		text := resultText(t, result)
		if result.IsError != step.isError {
			t.Errorf("%v: expected isError=%v, got %v (%s)", step.args, step.isError, result.IsError, text)
		}
		if !strings.Contains(text, step.contains) {
			t.Errorf("%v: expected %q in output, got: %s", step.args, step.contains, text)
		}
	}

	result, _ := client.handleSheetHistory(ctx, toolRequest("sheet_history", map[string]interface{}{
		"sheet_id": sheetID,
		"limit":    float64(2),
	}))
	text := resultText(t, result)
	if !strings.Contains(text, "Total (cumulative): 4") {
		t.Errorf("Expected 4 recorded actions, got: %s", text)
	}
	if !strings.Contains(text, "4. clear") {
		t.Errorf("Expected newest action first, got: %s", text)
	}

	result, _ = client.handleGetSheet(ctx, toolRequest("get_sheet", map[string]interface{}{"sheet_id": "nope"}))
	if !result.IsError {
		t.Error("Expected error for unknown sheet")
	}
}

func TestClient_TeamworkLandingRejected(t *testing.T) {
	client := NewClient(newBackend(t).URL)
	ctx := context.Background()

	var sheet service.SheetInfo
	if err := client.apiCall(ctx, "POST", "/api/sheets", map[string]string{"discipline": "teamwork"}, &sheet); err != nil {
		t.Fatal(err)
	}

	client.handleSheetAction(ctx, toolRequest("sheet_action", map[string]interface{}{
		"sheet_id": sheet.ID, "action": "landing", "slot": "red_drone", "landing": "small_cube",
	}))
	result, _ := client.handleSheetAction(ctx, toolRequest("sheet_action", map[string]interface{}{
		"sheet_id": sheet.ID, "action": "landing", "slot": "blue_drone", "landing": "small_cube",
	}))
	if !result.IsError {
		t.Fatal("Expected the second drone to be refused the same object")
	}
	if text := resultText(t, result); !strings.Contains(text, "unavailable") {
		t.Errorf("Expected unavailable message, got: %s", text)
	}
}

func TestClient_handleScoringRules(t *testing.T) {
	client := NewClient(newBackend(t).URL)

	result, err := client.handleScoringRules(context.Background(), toolRequest("scoring_rules", nil))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, result)
	for _, want := range []string{"Autonomous Flight", "Piloting", "Teamwork", "obstacle_course", "bullseye", "color match"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in rules, got: %s", want, text)
		}
	}
}

func TestClient_handleLookupTeam(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/teams/1234A" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "team not found"})
			return
		}
		json.NewEncoder(w).Encode(service.TeamReport{
			Team: robotevents.Team{Number: "1234A", TeamName: "Sky Pilots", Organization: "Central High",
				Location: robotevents.Location{City: "Austin", Region: "Texas", Country: "United States"}},
			Awards:               []service.AwardCount{{Title: "Excellence Award", Count: 2}, {Title: "Design Award", Count: 1}},
			AverageQualifierRank: 3.5,
			Rankings:             []robotevents.Ranking{{Rank: 3}, {Rank: 4}},
			WorldSkills:          &worldskills.Entry{Rank: 7, Scores: robotevents.SkillsScores{Score: 210}},
			WorldSkillsTotal:     150,
			Favorite:             true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleLookupTeam(context.Background(), toolRequest("lookup_team", map[string]interface{}{"team": " 1234A "}))
	if err != nil {
		t.Fatal(err)
	}

	text := resultText(t, result)
	for _, want := range []string{
		"Team 1234A - Sky Pilots",
		"Austin, Texas, United States",
		"2x Excellence Award",
		"Average qualifier rank: 3.5 over 2 events",
		"World skills: #7 of 150",
		"★ Favorite",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output, got: %s", want, text)
		}
	}

	result, _ = client.handleLookupTeam(context.Background(), toolRequest("lookup_team", map[string]interface{}{"team": "9"}))
	if !result.IsError {
		t.Error("Expected error for unknown team")
	}
	result, _ = client.handleLookupTeam(context.Background(), toolRequest("lookup_team", map[string]interface{}{}))
	if !result.IsError {
		t.Error("Expected error for missing team")
	}
}

func TestClient_handleWorldSkills(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		rows := make([]service.SkillsRow, 3)
		for i := range rows {
			rows[i] = service.SkillsRow{Position: i + 1, Entry: worldskills.Entry{
				Rank: 10 * (i + 1),
				Team: robotevents.SkillsTeam{Team: "10" + string(rune('0'+i)) + "B", TeamName: "Team"},
			}}
		}
		json.NewEncoder(w).Encode(service.SkillsPage{Title: "B Skills", Grade: "High School", Rows: rows, Total: 40})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleWorldSkills(context.Background(), toolRequest("world_skills", map[string]interface{}{
		"letter": "B",
		"region": float64(4),
		"limit":  float64(2),
	}))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(gotQuery, "letter=B") || !strings.Contains(gotQuery, "region=4") {
		t.Errorf("Unexpected query %q", gotQuery)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "B Skills - High School (3 of 40 teams)") {
		t.Errorf("Unexpected header: %s", text)
	}
	if !strings.Contains(text, "... 1 more") {
		t.Errorf("Expected truncation, got: %s", text)
	}
}

func TestClient_handleListEvents(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":  1,
			"events": []robotevents.Event{{SKU: "RE-ADC-24-0001", Name: "Drone Day"}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, _ := client.handleListEvents(context.Background(), toolRequest("list_events", map[string]interface{}{
		"name":       "drone",
		"no_leagues": true,
	}))

	if !strings.Contains(gotQuery, "name=drone") || !strings.Contains(gotQuery, "no_leagues=true") {
		t.Errorf("Unexpected query %q", gotQuery)
	}
	if text := resultText(t, result); !strings.Contains(text, "Drone Day (RE-ADC-24-0001)") {
		t.Errorf("Unexpected output: %s", text)
	}
}

func TestClient_handleListSeasons(t *testing.T) {
	client := NewClient(newBackend(t).URL)

	result, _ := client.handleListSeasons(context.Background(), toolRequest("list_seasons", nil))
	text := resultText(t, result)
	if !strings.Contains(text, "190") || !strings.Contains(text, "(active)") {
		t.Errorf("Expected the built-in season, got: %s", text)
	}
}
