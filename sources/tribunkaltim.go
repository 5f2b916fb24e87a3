package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/festa/dates"
	"github.com/pevans/festa/fetcher"
	"github.com/pevans/festa/logger"
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/scraper"
)

// TribunKaltimSite is the default layout of Tribun Kaltim's tag pages.
func TribunKaltimSite() scraper.SiteConfig {
	return scraper.SiteConfig{
		BaseURL:  "https://kaltim.tribunnews.com",
		MaxPages: 10,
		List: scraper.ListConfig{
			ArticleSelector: "li.art-list",
		},
		Article: scraper.ArticleConfig{
			TitleSelector:    "h3",
			CategorySelector: "h4",
			DateSelector:     "time",
			LinkSelector:     "h3 a[href]",
		},
	}
}

// TribunKaltim parses Indonesian dates such as "Senin, 15 Januari 2024
// 10:30 WITA" and filters client-side. An unparseable date drops only that
// article.
type TribunKaltim struct {
	site    scraper.SiteConfig
	keyword string
	start   time.Time
	end     time.Time
}

// NewTribunKaltim builds the adapter for an inclusive date range.
func NewTribunKaltim(site scraper.SiteConfig, keyword string, start, end time.Time) *TribunKaltim {
	return &TribunKaltim{site: site, keyword: keyword, start: start, end: end}
}

// Name implements Adapter.
func (a *TribunKaltim) Name() record.SourceName {
	return record.TribunKaltim
}

// Crawl implements Adapter.
func (a *TribunKaltim) Crawl(ctx context.Context, f fetcher.Fetcher, log logger.Interface) record.Outcome {
	out := Paginate(ctx, f, a, log)
	out.Source = record.TribunKaltim
	return out
}

func (a *TribunKaltim) PageURL(cursor int) string {
	return fmt.Sprintf("%s/tag/%s?page=%d", trimBase(a.site.BaseURL), url.PathEscape(a.keyword), cursor)
}

func (a *TribunKaltim) Extract(doc *goquery.Document) Page {
	return collect(doc, a.site, record.TribunKaltim, func(raw scraper.RawArticle) (string, bool, error) {
		published, err := dates.ParseLocaleDate(raw.DateText)
		if err != nil {
			return "", false, err
		}
		if !dates.InRange(published, a.start, a.end) {
			return "", false, nil
		}
		return published.Format(dates.ISODate), true, nil
	})
}

func (a *TribunKaltim) HasNext(doc *goquery.Document) bool {
	return scraper.HasNext(doc, a.site.List)
}

func (a *TribunKaltim) MaxPages() int {
	return a.site.MaxPagesOrUnlimited()
}
