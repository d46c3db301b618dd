package robotevents

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScraperParamsValues(t *testing.T) {
	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)

	t.Run("no name sets event type", func(t *testing.T) {
		q := ScraperParams{SeasonID: 190}.Values(now)
		assert.Equal(t, "1", q.Get("eventType"))
		assert.Equal(t, "190", q.Get("seasonId"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, AllDates, q.Get("from_date"))
		assert.False(t, q.Has("name"))
		assert.False(t, q.Has("level_class_id"))
		assert.False(t, q.Has("event_region"))
	})

	t.Run("name without no-leagues omits event type", func(t *testing.T) {
		q := ScraperParams{Name: "Spring", SeasonID: 190, Page: 3}.Values(now)
		assert.Equal(t, "Spring", q.Get("name"))
		assert.False(t, q.Has("eventType"))
		assert.Equal(t, "3", q.Get("page"))
	})

	t.Run("filters", func(t *testing.T) {
		q := ScraperParams{Name: "Spring", NoLeagues: true, LevelClassID: 2, RegionID: 44, DateFilterActive: true}.Values(now)
		assert.Equal(t, "1", q.Get("eventType"))
		assert.Equal(t, "2", q.Get("level_class_id"))
		assert.Equal(t, "44", q.Get("event_region"))
		assert.Equal(t, "06-Mar-2025", q.Get("from_date"))
	})
}

func TestParseEventSKUs(t *testing.T) {
	page := `<html><body>
<a href="https://www.robotevents.com/robot-competitions/adc/RE-ADC-24-1234.html">Spring Fling</a>
<a href="/robot-competitions/adc/RE-ADC-24-5678.html#general-info">Summer</a>
<a href="https://www.robotevents.com/robot-competitions/adc/RE-ADC-24-1234.html">Spring Fling again</a>
<a href="/about">About</a>
<img src="RE-ADC-24-9999.png">
</body></html>`

	skus, err := ParseEventSKUs(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, []string{"RE-ADC-24-1234", "RE-ADC-24-5678"}, skus)
}

func TestScrapeEventSKUs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/robot-competitions/adc", r.URL.Path)
		assert.Equal(t, "181", r.URL.Query().Get("seasonId"))
		fmt.Fprint(w, `<a href="/robot-competitions/adc/RE-ADC-23-0001.html">x</a>`)
	})

	skus, err := c.ScrapeEventSKUs(context.Background(), ScraperParams{SeasonID: 181})
	require.NoError(t, err)
	assert.Equal(t, []string{"RE-ADC-23-0001"}, skus)
}
