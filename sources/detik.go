package sources

import (
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/festa/fetcher"
	"github.com/pevans/festa/logger"
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/scraper"
)

// DetikSite is the default layout of detik.com's search page.
func DetikSite() scraper.SiteConfig {
	return scraper.SiteConfig{
		BaseURL: "https://www.detik.com",
		List: scraper.ListConfig{
			ArticleSelector:    "article.list-content__item",
			PaginationSelector: "a.pagination__next",
		},
		Article: scraper.ArticleConfig{
			TitleSelector:    "h3.media__title",
			CategorySelector: "h2.media__subtitle",
			DateSelector:     "div.media__date",
		},
	}
}

// Detik trusts the server to filter by the query dates and pages until the
// "next" link disappears. Records keep the date text the site displays.
type Detik struct {
	site    scraper.SiteConfig
	keyword string
	from    string
	to      string
}

// NewDetik builds the adapter. from and to are already formatted with
// dates.QueryLayout.
func NewDetik(site scraper.SiteConfig, keyword, from, to string) *Detik {
	return &Detik{site: site, keyword: keyword, from: from, to: to}
}

// Name implements Adapter.
func (a *Detik) Name() record.SourceName {
	return record.Detik
}

// Crawl implements Adapter.
func (a *Detik) Crawl(ctx context.Context, f fetcher.Fetcher, log logger.Interface) record.Outcome {
	out := Paginate(ctx, f, a, log)
	out.Source = record.Detik
	return out
}

func (a *Detik) PageURL(cursor int) string {
	return fmt.Sprintf("%s/search/searchall?query=%s&page=%d&result_type=latest&fromdatex=%s&todatex=%s",
		trimBase(a.site.BaseURL), url.QueryEscape(a.keyword), cursor, a.from, a.to)
}

func (a *Detik) Extract(doc *goquery.Document) Page {
	return collect(doc, a.site, record.Detik, keepDisplayedDate)
}

func (a *Detik) HasNext(doc *goquery.Document) bool {
	return scraper.HasNext(doc, a.site.List)
}

func (a *Detik) MaxPages() int {
	return a.site.MaxPagesOrUnlimited()
}
