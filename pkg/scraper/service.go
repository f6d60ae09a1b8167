// Package scraper extracts readable text from web pages, first through a hosted
// crawling service and then by fetching the page directly.
package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Source names which path produced the text.
const (
	SourceJob    = "job"
	SourceDirect = "direct"
)

// Config wires both scraping paths.
type Config struct {
	Job          JobConfig
	FetchTimeout time.Duration
	MaxChars     int
}

// Result is the outcome of one scrape.
type Result struct {
	URL    string
	Text   string
	Source string
}

type extractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
	Enabled() bool
}

type pageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// Service tries the crawling job first and falls back to a direct fetch on any failure.
type Service struct {
	job      extractor
	fetcher  pageFetcher
	maxChars int
	logger   *zap.Logger
}

// NewService builds a scraper from config.
func NewService(cfg Config, logger *zap.Logger) *Service {
	return newService(NewJobClient(cfg.Job), NewFetcher(cfg.FetchTimeout), cfg.MaxChars, logger)
}

func newService(job extractor, fetcher pageFetcher, maxChars int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxChars <= 0 {
		maxChars = 8000
	}
	return &Service{job: job, fetcher: fetcher, maxChars: maxChars, logger: logger}
}

// Scrape returns the page text capped at the configured length. An error means both
// paths failed.
func (s *Service) Scrape(ctx context.Context, pageURL string) (*Result, error) {
	if s.job != nil && s.job.Enabled() {
		text, err := s.job.Extract(ctx, pageURL)
		if err == nil && text != "" {
			return &Result{URL: pageURL, Text: Truncate(text, s.maxChars), Source: SourceJob}, nil
		}
		if err != nil {
			s.logger.Warn("scrape job failed, falling back to direct fetch", zap.String("url", pageURL), zap.Error(err))
		}
	}

	text, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return &Result{URL: pageURL, Text: Truncate(text, s.maxChars), Source: SourceDirect}, nil
}

// Truncate caps text at max runes.
func Truncate(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
