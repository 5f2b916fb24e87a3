package sources

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/festa/fetcher"
	"github.com/pevans/festa/logger"
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/scraper"
)

// BerauTerkiniSite is the default layout of berauterkini.co.id's daily index.
func BerauTerkiniSite() scraper.SiteConfig {
	return scraper.SiteConfig{
		BaseURL: "https://berauterkini.co.id",
		List: scraper.ListConfig{
			ArticleSelector: ".indeks-item.media",
		},
		Article: scraper.ArticleConfig{
			TitleSelector:    "a.media-title",
			CategorySelector: "div.indeks-category",
			DateSelector:     "div.indeks-date",
		},
	}
}

// BerauTerkini crawls the daily index, one pagination loop per calendar day.
// The server filters by the date in the URL, so records keep the date text
// the site displays.
type BerauTerkini struct {
	site    scraper.SiteConfig
	days    []string
	workers int
}

// NewBerauTerkini builds the adapter for a list of days already formatted
// with dates.DailyLayout. Up to workers days are crawled at once.
func NewBerauTerkini(site scraper.SiteConfig, days []string, workers int) *BerauTerkini {
	if workers <= 0 {
		workers = 1
	}
	return &BerauTerkini{site: site, days: days, workers: workers}
}

// Name implements Adapter.
func (a *BerauTerkini) Name() record.SourceName {
	return record.BerauTerkini
}

// Days returns the day keys this adapter will crawl.
func (a *BerauTerkini) Days() []string {
	return a.days
}

// Crawl runs each day's pagination independently and concatenates the
// results in day order.
func (a *BerauTerkini) Crawl(ctx context.Context, f fetcher.Fetcher, log logger.Interface) record.Outcome {
	start := time.Now()
	results := make([]record.Outcome, len(a.days))
	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup

dispatch:
	for i, day := range a.days {
		select {
		case <-ctx.Done():
			break dispatch
		case sem <- struct{}{}:
			wg.Add(1)
			go func(i int, day string) {
				defer wg.Done()
				defer func() { <-sem }()

				pager := &berauTerkiniDay{site: a.site, day: day}
				results[i] = Paginate(ctx, f, pager, log.With("day", day))
			}(i, day)
		}
	}
	wg.Wait()

	out := record.Outcome{Source: record.BerauTerkini}
	for _, r := range results {
		out.Merge(r)
	}
	if out.Err == nil {
		out.Err = ctx.Err()
	}
	out.Duration = time.Since(start)
	return out
}

// berauTerkiniDay pages through a single day of the index.
type berauTerkiniDay struct {
	site scraper.SiteConfig
	day  string
}

func (p *berauTerkiniDay) PageURL(cursor int) string {
	return fmt.Sprintf("%s/indeks/page/%d/?category=all&date=%s", trimBase(p.site.BaseURL), cursor, p.day)
}

func (p *berauTerkiniDay) Extract(doc *goquery.Document) Page {
	return collect(doc, p.site, record.BerauTerkini, keepDisplayedDate)
}

// HasNext is true unless a pagination selector is configured; by default
// the index ends with an empty page.
func (p *berauTerkiniDay) HasNext(doc *goquery.Document) bool {
	return scraper.HasNext(doc, p.site.List)
}

func (p *berauTerkiniDay) MaxPages() int {
	return p.site.MaxPagesOrUnlimited()
}
