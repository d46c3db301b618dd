package robotevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxPages bounds pagination so a misbehaving upstream cannot loop forever
const maxPages = 50

// maxBodySize caps every response body read from RobotEvents
const maxBodySize = 16 << 20

// Config configures a Client
type Config struct {
	BaseURL     string
	WebURL      string
	Token       string
	ProgramID   int
	ProgramSlug string
	Timeout     time.Duration
	UserAgent   string
}

// Client talks to the RobotEvents v2 API and the public robotevents.com pages.
// Requests are not retried; cancel them through the context.
type Client struct {
	baseURL     string
	webURL      string
	token       string
	programID   int
	programSlug string
	userAgent   string
	httpClient  *http.Client
	log         zerolog.Logger
	observe     func(operation string, err error)
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request tracing
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithObserver registers a callback invoked after every operation
func WithObserver(fn func(operation string, err error)) Option {
	return func(c *Client) { c.observe = fn }
}

// NewClient creates a RobotEvents client
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "adchub"
	}
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		webURL:      strings.TrimRight(cfg.WebURL, "/"),
		token:       cfg.Token,
		programID:   cfg.ProgramID,
		programSlug: cfg.ProgramSlug,
		userAgent:   cfg.UserAgent,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProgramID returns the RobotEvents program the client is scoped to
func (c *Client) ProgramID() int {
	return c.programID
}

// Team looks a team up by number within the client's program
func (c *Client) Team(ctx context.Context, number string) (team *Team, err error) {
	defer c.done("team", &err)

	q := url.Values{}
	q.Add("number[]", strings.ToUpper(strings.TrimSpace(number)))
	q.Add("program[]", strconv.Itoa(c.programID))

	teams, err := fetchAll[Team](ctx, c, "/teams", q)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, number)
	}
	return &teams[0], nil
}

// TeamAwards returns every award the team has won
func (c *Client) TeamAwards(ctx context.Context, teamID int) (awards []Award, err error) {
	defer c.done("team_awards", &err)
	return fetchAll[Award](ctx, c, fmt.Sprintf("/teams/%d/awards", teamID), nil)
}

// TeamRankings returns the team's qualification rankings
func (c *Client) TeamRankings(ctx context.Context, teamID int) (rankings []Ranking, err error) {
	defer c.done("team_rankings", &err)
	return fetchAll[Ranking](ctx, c, fmt.Sprintf("/teams/%d/rankings", teamID), nil)
}

// SeasonEvents returns the season's events restricted to the given SKUs.
// An empty SKU list returns no events without calling the API.
func (c *Client) SeasonEvents(ctx context.Context, seasonID int, skus []string) (events []Event, err error) {
	if len(skus) == 0 {
		return []Event{}, nil
	}
	defer c.done("season_events", &err)

	q := url.Values{}
	for _, sku := range skus {
		q.Add("sku[]", sku)
	}
	return fetchAll[Event](ctx, c, fmt.Sprintf("/seasons/%d/events", seasonID), q)
}

// WorldSkills downloads the public world-skills standings of a season for one grade level.
// This endpoint does not need an API token.
func (c *Client) WorldSkills(ctx context.Context, seasonID int, grade string) (standings []SkillsStanding, err error) {
	defer c.done("world_skills", &err)

	q := url.Values{}
	q.Set("post_season", "0")
	q.Set("grade_level", grade)
	endpoint := fmt.Sprintf("%s/api/seasons/%d/skills?%s", c.webURL, seasonID, q.Encode())

	body, err := c.get(ctx, endpoint, false, "application/json")
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &standings); err != nil {
		return nil, fmt.Errorf("decode world skills: %w", err)
	}
	return standings, nil
}

// fetchAll follows the {meta, data} pagination of a list endpoint to the last page
func fetchAll[T any](ctx context.Context, c *Client, path string, q url.Values) ([]T, error) {
	if q == nil {
		q = url.Values{}
	}
	q.Set("per_page", "250")

	var all []T
	for p := 1; p <= maxPages; p++ {
		q.Set("page", strconv.Itoa(p))
		body, err := c.get(ctx, c.baseURL+path+"?"+q.Encode(), true, "application/json")
		if err != nil {
			return nil, err
		}

		var pg page[T]
		if err := json.Unmarshal(body, &pg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		all = append(all, pg.Data...)

		if pg.Meta.LastPage <= pg.Meta.CurrentPage || len(pg.Data) == 0 {
			break
		}
	}
	if all == nil {
		all = []T{}
	}
	return all, nil
}

func (c *Client) get(ctx context.Context, endpoint string, auth bool, accept string) ([]byte, error) {
	if auth && c.token == "" {
		return nil, ErrNoToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("url", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("robotevents request")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Endpoint: req.URL.Path}
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &msg) == nil {
			apiErr.Message = msg.Message
		}
		return nil, apiErr
	}
	return body, nil
}

func (c *Client) done(operation string, err *error) {
	if c.observe != nil {
		c.observe(operation, *err)
	}
	if *err != nil {
		c.log.Warn().Err(*err).Str("operation", operation).Msg("robotevents call failed")
	}
}
