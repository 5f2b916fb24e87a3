// Package discovery runs the selected source adapters for one date range and
// joins their records into a single sequence.
package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pevans/festa/dates"
	"github.com/pevans/festa/fetcher"
	"github.com/pevans/festa/logger"
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/scraper"
	"github.com/pevans/festa/sources"
)

// DefaultKeyword is the search term used when none is configured.
const DefaultKeyword = "berau"

// Config holds configuration for the discovery service.
type Config struct {
	// Keyword is the search term for sources that take one.
	Keyword string
	// DayWorkers bounds how many Berau Terkini days are crawled at once.
	DayWorkers int
	// Fetch configures each adapter's fetcher.
	Fetch fetcher.Config
	// Sites overrides the built-in layout of individual sources. Only
	// non-zero fields are applied.
	Sites map[record.SourceName]scraper.SiteConfig
}

// DefaultConfig returns the keyword "berau", 4 day workers and the default
// fetch settings.
func DefaultConfig() Config {
	return Config{
		Keyword:    DefaultKeyword,
		DayWorkers: 4,
		Fetch:      fetcher.DefaultConfig(),
	}
}

// FetcherFactory builds the fetcher one adapter will own for one crawl.
type FetcherFactory func(config fetcher.Config, log logger.Interface) fetcher.Fetcher

func newHTTPFetcher(config fetcher.Config, log logger.Interface) fetcher.Fetcher {
	return fetcher.New(config, log)
}

// Service is the aggregator. It keeps no state between calls.
type Service struct {
	config     Config
	sites      map[record.SourceName]scraper.SiteConfig
	log        logger.Interface
	newFetcher FetcherFactory
}

// Option customizes a Service.
type Option func(*Service)

// WithFetcherFactory replaces the HTTP fetcher, mainly for tests.
func WithFetcherFactory(factory FetcherFactory) Option {
	return func(s *Service) {
		s.newFetcher = factory
	}
}

// NewService creates a discovery service.
func NewService(config Config, log logger.Interface, opts ...Option) *Service {
	defaults := DefaultConfig()
	if config.Keyword == "" {
		config.Keyword = defaults.Keyword
	}
	if config.DayWorkers <= 0 {
		config.DayWorkers = defaults.DayWorkers
	}
	if log == nil {
		log = logger.NewNoOp()
	}

	sites := sources.DefaultSites()
	for name, override := range config.Sites {
		if base, ok := sites[name]; ok {
			sites[name] = base.Merge(override)
		}
	}

	s := &Service{
		config:     config,
		sites:      sites,
		log:        log,
		newFetcher: newHTTPFetcher,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sites returns the effective layout of every source.
func (s *Service) Sites() map[record.SourceName]scraper.SiteConfig {
	out := make(map[record.SourceName]scraper.SiteConfig, len(s.sites))
	for name, site := range s.sites {
		out[name] = site
	}
	return out
}

// Keyword returns the configured search term.
func (s *Service) Keyword() string {
	return s.config.Keyword
}

// ScrapeResult is one crawl's records plus a per-source report.
type ScrapeResult struct {
	CrawlID   uuid.UUID        `json:"crawl_id"`
	Range     dates.DateRange  `json:"-"`
	Records   []record.Record  `json:"records"`
	Outcomes  []record.Outcome `json:"outcomes"`
	Ignored   []string         `json:"ignored,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	Duration  time.Duration    `json:"duration"`
}

// Message is the one-line summary shown to users.
func (r *ScrapeResult) Message() string {
	if len(r.Records) == 0 {
		return "No news found."
	}
	return fmt.Sprintf("Scraped %d news successfully!", len(r.Records))
}

// Unreachable lists the sources that produced nothing because every page
// they tried failed.
func (r *ScrapeResult) Unreachable() []record.SourceName {
	var names []record.SourceName
	for _, o := range r.Outcomes {
		if o.Unreachable() {
			names = append(names, o.Source)
		}
	}
	return names
}

// Select normalizes a selection to canonical order with duplicates removed.
// Names that are not known sources are returned separately.
func Select(selected []record.SourceName) (known []record.SourceName, ignored []string) {
	want := make(map[record.SourceName]bool, len(selected))
	for _, name := range selected {
		if name.Valid() {
			want[name] = true
		} else {
			ignored = append(ignored, string(name))
		}
	}
	for _, name := range record.AllSources {
		if want[name] {
			known = append(known, name)
		}
	}
	return known, ignored
}

// Scrape returns every record the selected sources hold for the inclusive
// range start..end, grouped by source in canonical order. It never fails:
// unreachable sources simply contribute nothing.
func (s *Service) Scrape(ctx context.Context, start, end time.Time, selected []record.SourceName) []record.Record {
	return s.ScrapeWithReport(ctx, start, end, selected).Records
}

// ScrapeWithReport is Scrape plus the per-source outcomes.
func (s *Service) ScrapeWithReport(ctx context.Context, start, end time.Time, selected []record.SourceName) *ScrapeResult {
	result := &ScrapeResult{
		CrawlID:   uuid.New(),
		Range:     dates.NewDateRange(start, end),
		Records:   []record.Record{},
		Outcomes:  []record.Outcome{},
		StartedAt: time.Now(),
	}
	log := s.log.With("crawl_id", result.CrawlID.String())

	names, ignored := Select(selected)
	result.Ignored = ignored
	for _, name := range ignored {
		log.Warn("Ignoring unknown source", "source", name)
	}

	if err := result.Range.Validate(); err != nil {
		log.Warn("Invalid date range, nothing to scrape", "error", err)
		return result
	}
	if len(names) == 0 {
		return result
	}

	adapters := make([]sources.Adapter, len(names))
	for i, name := range names {
		adapters[i] = s.buildAdapter(name, result.Range)
	}

	log.Info("Scrape starting",
		"range", result.Range.String(),
		"sources", len(adapters),
		"keyword", s.config.Keyword,
	)

	outcomes := make([]record.Outcome, len(adapters))
	var wg sync.WaitGroup
	for i, adapter := range adapters {
		wg.Add(1)
		go func(i int, a sources.Adapter) {
			defer wg.Done()

			alog := log.With("source", a.Name().String())
			outcomes[i] = a.Crawl(ctx, s.newFetcher(s.config.Fetch, alog), alog)
			outcomes[i].Source = a.Name()
		}(i, adapter)
	}
	wg.Wait()

	for _, o := range outcomes {
		result.Records = append(result.Records, o.Records...)
		result.Outcomes = append(result.Outcomes, o)
		s.logOutcome(log, o)
	}

	result.Duration = time.Since(result.StartedAt)
	log.Info("Scrape finished",
		"records", len(result.Records),
		"duration", result.Duration.String(),
	)
	return result
}

// buildAdapter hands each source its dates in the shape it consumes: a list
// of day keys, a pair of calendar dates, or pre-formatted query strings.
func (s *Service) buildAdapter(name record.SourceName, r dates.DateRange) sources.Adapter {
	site := s.sites[name]
	switch name {
	case record.BerauTerkini:
		days := dates.ExpandDaily(r.Start, r.End, dates.DailyLayout)
		return sources.NewBerauTerkini(site, days, s.config.DayWorkers)
	case record.KaltimPost:
		return sources.NewKaltimPost(site, s.config.Keyword, r.Start, r.End)
	case record.Detik:
		return sources.NewDetik(site, s.config.Keyword,
			r.Start.Format(dates.QueryLayout), r.End.Format(dates.QueryLayout))
	case record.TribunKaltim:
		return sources.NewTribunKaltim(site, s.config.Keyword, r.Start, r.End)
	}
	panic(fmt.Sprintf("discovery: no adapter for %q", name))
}

func (s *Service) logOutcome(log logger.Interface, o record.Outcome) {
	fields := []any{
		"source", o.Source.String(),
		"records", len(o.Records),
		"pages_fetched", o.PagesFetched,
		"pages_failed", o.PagesFailed,
		"items_skipped", o.ItemsSkipped,
		"duration", o.Duration.String(),
	}

	switch {
	case o.Err != nil:
		log.Warn("Source interrupted", append(fields, "error", o.Err)...)
	case o.Unreachable():
		log.Warn("Source may have been unreachable", fields...)
	default:
		log.Info("Source finished", fields...)
	}
}
