package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/adc-hub/game/service"
)

// ErrRejected is returned when the server refused a landing; the sheet is still returned
var ErrRejected = errors.New("action rejected")

// Client drives one scoresheet through the REST API
type Client struct {
	baseURL string
	sheetID string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SheetID returns the sheet the client is driving
func (c *Client) SheetID() string {
	return c.sheetID
}

func (c *Client) CreateSheet(ctx context.Context, discipline, label string) (*service.SheetInfo, error) {
	var sheet service.SheetInfo
	body := map[string]string{"discipline": discipline, "label": label}
	if err := c.do(ctx, http.MethodPost, "/api/sheets", body, &sheet); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	c.sheetID = sheet.ID
	return &sheet, nil
}

// UseSheet resumes an existing sheet
func (c *Client) UseSheet(ctx context.Context, id string) (*service.SheetInfo, error) {
	c.sheetID = id
	var sheet service.SheetInfo
	if err := c.do(ctx, http.MethodGet, c.sheetPath(""), nil, &sheet); err != nil {
		return nil, fmt.Errorf("get sheet: %w", err)
	}
	return &sheet, nil
}

func (c *Client) Increment(ctx context.Context, task string) (*service.ActionResult, error) {
	return c.action(ctx, "increment", map[string]string{"task": task})
}

func (c *Client) Decrement(ctx context.Context, task string) (*service.ActionResult, error) {
	return c.action(ctx, "decrement", map[string]string{"task": task})
}

func (c *Client) Landing(ctx context.Context, slot, landing string) (*service.ActionResult, error) {
	return c.action(ctx, "landing", map[string]string{"slot": slot, "landing": landing})
}

func (c *Client) Clear(ctx context.Context) (*service.ActionResult, error) {
	return c.action(ctx, "clear", nil)
}

// conflictResponse is the body of a rejected landing
type conflictResponse struct {
	Error string             `json:"error"`
	Sheet *service.SheetInfo `json:"sheet"`
}

func (c *Client) action(ctx context.Context, name string, body interface{}) (*service.ActionResult, error) {
	var result service.ActionResult
	err := c.do(ctx, http.MethodPost, c.sheetPath("/"+name), body, &result)

	// A rejected landing still reports the sheet state
	var conflict *conflictError
	if errors.As(err, &conflict) {
		return &service.ActionResult{Message: conflict.body.Error, Sheet: conflict.body.Sheet}, fmt.Errorf("%w: %s", ErrRejected, conflict.body.Error)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &result, nil
}

func (c *Client) sheetPath(suffix string) string {
	return "/api/sheets/" + url.PathEscape(c.sheetID) + suffix
}

type conflictError struct {
	body conflictResponse
}

func (e *conflictError) Error() string {
	return e.body.Error
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusConflict:
		var conflict conflictResponse
		if err := json.Unmarshal(data, &conflict); err != nil {
			return fmt.Errorf("parse conflict response: %w", err)
		}
		return &conflictError{body: conflict}
	case resp.StatusCode >= 400:
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, apiErr.Error)
		}
		return fmt.Errorf("%s - %s", resp.Status, string(data))
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
