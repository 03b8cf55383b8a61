package calendar

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	TradingViewBaseURL = "https://economic-calendar.tradingview.com"

	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxBackoff = 5 * time.Second
)

type EventsResponse struct {
	Status string    `json:"status"`
	Result []TVEvent `json:"result"`
}

// TVEvent is one entry of the TradingView economic calendar.
type TVEvent struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Country    string   `json:"country"`
	Indicator  string   `json:"indicator"`
	Category   string   `json:"category"`
	Period     string   `json:"period"`
	Actual     *float64 `json:"actual"`
	Previous   *float64 `json:"previous"`
	Forecast   *float64 `json:"forecast"`
	Currency   string   `json:"currency"`
	Unit       string   `json:"unit"`
	Importance int      `json:"importance"`
	Date       TVTime   `json:"date"`
}

// TVTime handles TradingView timestamps like "2025-12-08T16:00:00.000Z".
type TVTime struct {
	time.Time
}

func (t *TVTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		t.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("TVTime: invalid json string: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	layouts := []string{
		"2006-01-02T15:04:05.000Z",
		time.RFC3339,
		"2006-01-02T15:04:05Z",
	}
	var lastErr error
	for _, layout := range layouts {
		tt, e := time.Parse(layout, s)
		if e == nil {
			t.Time = tt
			return nil
		}
		lastErr = e
	}
	return fmt.Errorf("TVTime: parse %q: %w", s, lastErr)
}

// Impact maps TradingView importance (-1, 0, 1) onto a label.
func (e TVEvent) Impact() string {
	switch {
	case e.Importance >= 1:
		return "High"
	case e.Importance == 0:
		return "Medium"
	default:
		return "Low"
	}
}

func (e TVEvent) Row() Row {
	return Row{
		Date:     e.Date.Time.UTC().Format(RowTimeLayout),
		Event:    e.Title,
		Currency: strings.ToUpper(e.Currency),
		Impact:   e.Impact(),
	}
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code == 408 || code == 429 || (code >= 500 && code <= 599)
}

type TradingViewClient struct {
	http *resty.Client
}

func NewTradingViewClient(baseURL string) *TradingViewClient {
	if baseURL == "" {
		baseURL = TradingViewBaseURL
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15*time.Second).
		SetRetryCount(defaultRetryAttempts-1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxBackoff).
		AddRetryCondition(isRetryableResp).
		SetHeader("accept", "application/json").
		SetHeader("origin", "https://www.tradingview.com").
		SetHeader("referer", "https://www.tradingview.com/")
	return &TradingViewClient{http: httpClient}
}

// FetchEvents returns calendar entries in [from, to] at or above minImportance.
func (c *TradingViewClient) FetchEvents(ctx context.Context, from, to time.Time, countries []string, minImportance int) ([]TVEvent, error) {
	var decoded EventsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"from":      from.UTC().Format("2006-01-02T15:04:05.000Z"),
			"to":        to.UTC().Format("2006-01-02T15:04:05.000Z"),
			"countries": strings.Join(countries, ","),
		}).
		SetResult(&decoded).
		Get("/events")
	if err != nil {
		return nil, fmt.Errorf("fetch calendar: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("unexpected status %d. body: %s", resp.StatusCode(), resp.String())
	}
	if decoded.Status != "ok" && decoded.Status != "" {
		return nil, fmt.Errorf("unexpected status field: %q", decoded.Status)
	}

	logger.WithFields(map[string]interface{}{
		"fetched":   len(decoded.Result),
		"countries": countries,
	}).Info("Fetched calendar events")

	out := make([]TVEvent, 0, len(decoded.Result))
	for _, ev := range decoded.Result {
		if ev.Importance >= minImportance {
			out = append(out, ev)
		}
	}
	return out, nil
}

// TradingViewSource adapts the TradingView calendar to a Source over a fixed
// window relative to the first call.
type TradingViewSource struct {
	Client        *TradingViewClient
	Countries     []string
	Lookback      time.Duration
	Horizon       time.Duration
	MinImportance int
	Now           func() time.Time
}

func (s *TradingViewSource) Rows(ctx context.Context) ([]Row, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	at := now()
	evs, err := s.Client.FetchEvents(ctx, at.Add(-s.Lookback), at.Add(s.Horizon), s.Countries, s.MinImportance)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(evs))
	for _, ev := range evs {
		rows = append(rows, ev.Row())
	}
	return rows, nil
}
