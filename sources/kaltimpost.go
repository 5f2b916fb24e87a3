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

// KaltimPostSite is the default layout of Kaltim Post's search results. The
// site has no reliable last-page signal, so it is capped.
func KaltimPostSite() scraper.SiteConfig {
	return scraper.SiteConfig{
		BaseURL:  "https://kaltimpost.jawapos.com",
		MaxPages: 10,
		List: scraper.ListConfig{
			ArticleSelector: "article.post-item",
		},
		Article: scraper.ArticleConfig{
			TitleSelector:    ".post-title",
			CategorySelector: ".post-category",
			DateSelector:     "time[datetime]",
			DateAttr:         "datetime",
			LinkSelector:     ".post-title a[href]",
		},
	}
}

// KaltimPost filters search results client-side by each article's
// timestamp. Results are not strictly chronological, so an out-of-range
// article never ends pagination.
type KaltimPost struct {
	site    scraper.SiteConfig
	keyword string
	start   time.Time
	end     time.Time
}

// NewKaltimPost builds the adapter for an inclusive date range.
func NewKaltimPost(site scraper.SiteConfig, keyword string, start, end time.Time) *KaltimPost {
	return &KaltimPost{site: site, keyword: keyword, start: start, end: end}
}

// Name implements Adapter.
func (a *KaltimPost) Name() record.SourceName {
	return record.KaltimPost
}

// Crawl implements Adapter.
func (a *KaltimPost) Crawl(ctx context.Context, f fetcher.Fetcher, log logger.Interface) record.Outcome {
	out := Paginate(ctx, f, a, log)
	out.Source = record.KaltimPost
	return out
}

func (a *KaltimPost) PageURL(cursor int) string {
	return fmt.Sprintf("%s/search?q=%s&page=%d", trimBase(a.site.BaseURL), url.QueryEscape(a.keyword), cursor)
}

func (a *KaltimPost) Extract(doc *goquery.Document) Page {
	return collect(doc, a.site, record.KaltimPost, func(raw scraper.RawArticle) (string, bool, error) {
		published, err := dates.ParseTimestamp(raw.DateText)
		if err != nil {
			return "", false, err
		}
		if !dates.InRange(published, a.start, a.end) {
			return "", false, nil
		}
		return published.Format(dates.ISODate), true, nil
	})
}

func (a *KaltimPost) HasNext(doc *goquery.Document) bool {
	return scraper.HasNext(doc, a.site.List)
}

func (a *KaltimPost) MaxPages() int {
	return a.site.MaxPagesOrUnlimited()
}
