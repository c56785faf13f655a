package nascar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/racefan-dev/fantasy-chase/models"
)

// ErrNotAvailable marks a race whose results the public feed does not (yet)
// serve. Callers treat it as retry-later, not as a failure.
var ErrNotAvailable = errors.New("race data not available from feed")

// Client fetches official race data from the public results feed.
type Client interface {
	RaceList(ctx context.Context, season int, series models.SeriesType) ([]RaceListEntry, error)
	WeekendFeed(ctx context.Context, season int, series models.SeriesType, raceID int) (*WeekendFeed, error)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *HTTPClient) RaceList(ctx context.Context, season int, series models.SeriesType) ([]RaceListEntry, error) {
	url := fmt.Sprintf("%s/%d/%d/race_list_basic.json", c.baseURL, season, series.SeriesID())

	var races []RaceListEntry
	if err := c.getJSON(ctx, url, &races); err != nil {
		return nil, err
	}
	return races, nil
}

func (c *HTTPClient) WeekendFeed(ctx context.Context, season int, series models.SeriesType, raceID int) (*WeekendFeed, error) {
	url := fmt.Sprintf("%s/%d/%d/%d/weekend-feed.json", c.baseURL, season, series.SeriesID(), raceID)

	var feed WeekendFeed
	if err := c.getJSON(ctx, url, &feed); err != nil {
		return nil, err
	}
	if feed.Race() == nil {
		return nil, fmt.Errorf("weekend feed for race %d: %w", raceID, ErrNotAvailable)
	}
	return &feed, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, url string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "fantasy-chase/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("feed request", "url", url, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%s: %w", url, ErrNotAvailable)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read feed response: %w", err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to decode feed response: %w", err)
	}
	return nil
}
