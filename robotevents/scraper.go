package robotevents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// FromDateLayout is the dd-MMM-yyyy date format the competition search expects
const FromDateLayout = "02-Jan-2006"

// AllDates is the from_date sent when the date filter is off
const AllDates = "01-Jan-1970"

var skuPattern = regexp.MustCompile(`RE-[A-Z0-9]+-\d{2}-\d{4}`)

// ScraperParams are the filters of the public competition search page
type ScraperParams struct {
	Name             string
	SeasonID         int
	NoLeagues        bool
	LevelClassID     int
	RegionID         int
	Page             int
	DateFilterActive bool
}

// FromDate returns the from_date filter: two weeks before now when the date filter is active
func FromDate(active bool, now time.Time) string {
	if !active {
		return AllDates
	}
	return now.AddDate(0, 0, -14).Format(FromDateLayout)
}

// Values renders the params as a query string. Zero level and region are omitted.
func (p ScraperParams) Values(now time.Time) url.Values {
	q := url.Values{}
	name := strings.TrimSpace(p.Name)
	if name != "" {
		q.Set("name", name)
	}
	q.Set("seasonId", strconv.Itoa(p.SeasonID))
	if p.NoLeagues || name == "" {
		q.Set("eventType", "1")
	}
	if p.LevelClassID != 0 {
		q.Set("level_class_id", strconv.Itoa(p.LevelClassID))
	}
	if p.RegionID != 0 {
		q.Set("event_region", strconv.Itoa(p.RegionID))
	}
	pg := p.Page
	if pg < 1 {
		pg = 1
	}
	q.Set("page", strconv.Itoa(pg))
	q.Set("from_date", FromDate(p.DateFilterActive, now))
	return q
}

// ScrapeEventSKUs loads the competition search page and returns the event SKUs it links to,
// in page order without duplicates
func (c *Client) ScrapeEventSKUs(ctx context.Context, params ScraperParams) (skus []string, err error) {
	defer c.done("scrape_events", &err)

	endpoint := fmt.Sprintf("%s/robot-competitions/%s?%s", c.webURL, c.programSlug, params.Values(time.Now()).Encode())
	body, err := c.get(ctx, endpoint, false, "text/html")
	if err != nil {
		return nil, err
	}
	return ParseEventSKUs(strings.NewReader(string(body)))
}

// ParseEventSKUs extracts event SKUs from the anchors of a competition listing page
func ParseEventSKUs(r io.Reader) ([]string, error) {
	z := html.NewTokenizer(r)
	seen := make(map[string]bool)
	skus := []string{}

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return skus, nil
			}
			return nil, fmt.Errorf("parse competition page: %w", z.Err())
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			if t.Data != "a" {
				continue
			}
			for _, attr := range t.Attr {
				if attr.Key != "href" {
					continue
				}
				sku := skuPattern.FindString(attr.Val)
				if sku != "" && !seen[sku] {
					seen[sku] = true
					skus = append(skus, sku)
				}
			}
		}
	}
}
