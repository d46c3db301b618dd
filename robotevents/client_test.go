package robotevents

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:     srv.URL + "/api/v2",
		WebURL:      srv.URL,
		Token:       "test-token",
		ProgramID:   44,
		ProgramSlug: "adc",
	})
}

func TestTeam(t *testing.T) {
	var gotAuth, gotNumber, gotProgram string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/teams", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotNumber = r.URL.Query().Get("number[]")
		gotProgram = r.URL.Query().Get("program[]")
		fmt.Fprint(w, `{"meta":{"current_page":1,"last_page":1},"data":[{"id":77,"number":"1234A","team_name":"Flyers","location":{"city":"Austin","region":"Texas","country":"United States"}}]}`)
	})

	team, err := c.Team(context.Background(), " 1234a ")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "1234A", gotNumber)
	assert.Equal(t, "44", gotProgram)
	assert.Equal(t, 77, team.ID)
	assert.Equal(t, "Flyers", team.TeamName)
	assert.Equal(t, "Austin, Texas, United States", team.Location.String())
}

func TestTeam_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"meta":{"current_page":1,"last_page":1},"data":[]}`)
	})

	_, err := c.Team(context.Background(), "0000Z")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestTeamAwards_Paginates(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v2/teams/77/awards", r.URL.Path)
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{"meta":{"current_page":1,"last_page":2},"data":[{"id":1,"title":"Excellence Award"}]}`)
		default:
			fmt.Fprint(w, `{"meta":{"current_page":2,"last_page":2},"data":[{"id":2,"title":"Tournament Champions"}]}`)
		}
	})

	awards, err := c.TeamAwards(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, awards, 2)
	assert.Equal(t, "Tournament Champions", awards[1].Title)
}

func TestSeasonEvents(t *testing.T) {
	t.Run("empty sku list skips the request", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("unexpected request")
		})
		events, err := c.SeasonEvents(context.Background(), 190, nil)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("passes skus", func(t *testing.T) {
		var skus []string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/seasons/190/events", r.URL.Path)
			skus = r.URL.Query()["sku[]"]
			fmt.Fprint(w, `{"meta":{"current_page":1,"last_page":1},"data":[{"id":5,"sku":"RE-ADC-24-1234","name":"Spring Fling","start":"2025-03-01T00:00:00-05:00"}]}`)
		})
		events, err := c.SeasonEvents(context.Background(), 190, []string{"RE-ADC-24-1234", "RE-ADC-24-5678"})
		require.NoError(t, err)
		assert.Equal(t, []string{"RE-ADC-24-1234", "RE-ADC-24-5678"}, skus)
		require.Len(t, events, 1)
		assert.Equal(t, 2025, events[0].Start.Year())
	})
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Unauthenticated."}`)
	})

	_, err := c.TeamRankings(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthenticated.", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "HTTP 401")
}

func TestNoToken(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := c.Team(context.Background(), "1A")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestWorldSkills(t *testing.T) {
	var observed []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/seasons/190/skills", r.URL.Path)
		assert.Equal(t, "High School", r.URL.Query().Get("grade_level"))
		assert.Equal(t, "0", r.URL.Query().Get("post_season"))
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `[{"rank":1,"team":{"team":"1234A","teamName":"Flyers","eventRegion":"Texas","eventRegionId":44,"gradeLevel":"High School"},"scores":{"score":310,"programming":150,"driver":160}}]`)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{WebURL: srv.URL}, WithObserver(func(op string, err error) {
		observed = append(observed, op)
	}))

	standings, err := c.WorldSkills(context.Background(), 190, "High School")
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, "1234A", standings[0].Team.Team)
	assert.Equal(t, 44, standings[0].Team.EventRegionID)
	assert.Equal(t, 310, standings[0].Scores.Score)
	assert.Equal(t, []string{"world_skills"}, observed)
}

func TestAverageQualifierRank(t *testing.T) {
	assert.Equal(t, 0.0, AverageQualifierRank(nil))
	assert.Equal(t, 2.5, AverageQualifierRank([]Ranking{{Rank: 1}, {Rank: 4}}))
}
