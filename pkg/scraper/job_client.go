package scraper

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
)

// Run states reported by the crawling service.
const (
	RunReady     = "READY"
	RunRunning   = "RUNNING"
	RunSucceeded = "SUCCEEDED"
	RunFailed    = "FAILED"
	RunAborted   = "ABORTED"
	RunTimedOut  = "TIMED-OUT"
)

var (
	// ErrRunFailed is returned when the crawl finishes in a non-success state.
	ErrRunFailed = errors.New("scraper: run did not succeed")
	// ErrPollBudget is returned when the run is still going after the last poll.
	ErrPollBudget = errors.New("scraper: poll attempts exhausted")
	// ErrNoAPIKey disables the job path.
	ErrNoAPIKey = errors.New("scraper: no api key")
)

// JobConfig configures the crawling-service client.
type JobConfig struct {
	APIKey       string
	BaseURL      string
	Actor        string
	PollInterval time.Duration
	MaxAttempts  int
	HTTPTimeout  time.Duration
}

// Run is the subset of a crawl run the client reads.
type Run struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type runEnvelope struct {
	Data Run `json:"data"`
}

type datasetItem struct {
	URL      string `json:"url"`
	Text     string `json:"text"`
	Markdown string `json:"markdown"`
}

// JobClient submits a crawl run, polls it to a terminal state and reads the dataset.
type JobClient struct {
	cfg        JobConfig
	baseURL    string
	httpClient *http.Client
}

// NewJobClient builds a JobClient.
func NewJobClient(cfg JobConfig) *JobClient {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 12
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	return &JobClient{
		cfg:        cfg,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

// Enabled reports whether the job path can be used.
func (c *JobClient) Enabled() bool {
	return c != nil && c.cfg.APIKey != "" && c.baseURL != ""
}

// Extract runs the whole submit, poll, fetch sequence for one page.
func (c *JobClient) Extract(ctx context.Context, pageURL string) (string, error) {
	if !c.Enabled() {
		return "", ErrNoAPIKey
	}
	run, err := c.Submit(ctx, pageURL)
	if err != nil {
		return "", err
	}
	run, err = c.Wait(ctx, run)
	if err != nil {
		return "", err
	}
	return c.DatasetText(ctx, run.DefaultDatasetID)
}

// Submit starts a single-page crawl.
func (c *JobClient) Submit(ctx context.Context, pageURL string) (*Run, error) {
	payload := map[string]interface{}{
		"startUrls":     []map[string]string{{"url": pageURL}},
		"maxCrawlPages": 1,
		"maxCrawlDepth": 0,
	}
	var env runEnvelope
	endpoint := c.baseURL + "/acts/" + url.PathEscape(c.cfg.Actor) + "/runs"
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &env); err != nil {
		return nil, fmt.Errorf("submit run: %w", err)
	}
	if env.Data.ID == "" {
		return nil, fmt.Errorf("submit run: empty run id")
	}
	return &env.Data, nil
}

// Wait polls the run every PollInterval until it reaches a terminal state or the
// attempt budget is spent.
func (c *JobClient) Wait(ctx context.Context, run *Run) (*Run, error) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	current := run
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if done, err := settled(current); done {
			if err != nil {
				return nil, err
			}
			return current, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		var env runEnvelope
		if err := c.do(ctx, http.MethodGet, c.baseURL+"/actor-runs/"+url.PathEscape(run.ID), nil, &env); err != nil {
			return nil, fmt.Errorf("poll run: %w", err)
		}
		current = &env.Data
	}
	if done, err := settled(current); done {
		if err != nil {
			return nil, err
		}
		return current, nil
	}
	return nil, ErrPollBudget
}

// settled reports whether run has reached a terminal state, and the error for an
// unsuccessful one.
func settled(run *Run) (bool, error) {
	switch run.Status {
	case RunSucceeded:
		return true, nil
	case RunFailed, RunAborted, RunTimedOut:
		return true, fmt.Errorf("%w: %s", ErrRunFailed, run.Status)
	}
	return false, nil
}

// DatasetText joins the text of every item in the run's dataset.
func (c *JobClient) DatasetText(ctx context.Context, datasetID string) (string, error) {
	if datasetID == "" {
		return "", fmt.Errorf("fetch dataset: missing dataset id")
	}
	var items []datasetItem
	endpoint := c.baseURL + "/datasets/" + url.PathEscape(datasetID) + "/items?clean=true&format=json"
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &items); err != nil {
		return "", fmt.Errorf("fetch dataset: %w", err)
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		text := item.Text
		if text == "" {
			text = item.Markdown
		}
		if text = strings.TrimSpace(text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

func (c *JobClient) do(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
