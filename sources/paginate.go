// Package sources holds one adapter per news site and the pagination driver
// they share.
package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/festa/fetcher"
	"github.com/pevans/festa/logger"
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/scraper"
)

// Adapter crawls one site for the arguments it was built with.
type Adapter interface {
	Name() record.SourceName
	Crawl(ctx context.Context, f fetcher.Fetcher, log logger.Interface) record.Outcome
}

// Pager is the per-site capability set Paginate drives: where page N lives,
// how to turn a page into records, and whether the site says there is more.
type Pager interface {
	PageURL(cursor int) string
	Extract(doc *goquery.Document) Page
	HasNext(doc *goquery.Document) bool
	// MaxPages caps the loop; 0 means no cap.
	MaxPages() int
}

// Page is what one listing page produced.
type Page struct {
	Records []record.Record
	// Elements counts article elements found, whether or not they produced a
	// record. A page with none ends pagination.
	Elements int
	// Filtered counts well-formed articles dropped for being out of range.
	Filtered int
	// Skipped holds one error per malformed article.
	Skipped []error
}

// Paginate runs the fetch/extract loop for one pager starting at page 1. It
// stops when a fetch fails after its retries, a page has no article
// elements, the pager reports no next page, or MaxPages is reached, in that
// order. Cancellation stops the loop between pages and is reported in the
// outcome's Err.
func Paginate(ctx context.Context, f fetcher.Fetcher, p Pager, log logger.Interface) record.Outcome {
	var out record.Outcome
	start := time.Now()

	for cursor := 1; ; cursor++ {
		if err := ctx.Err(); err != nil {
			out.Err = err
			break
		}

		pageURL := p.PageURL(cursor)
		doc, err := f.Fetch(ctx, pageURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				out.Err = ctxErr
				break
			}
			out.PagesFailed++
			log.Warn("Stopping pagination after failed fetch", "url", pageURL, "page", cursor, "error", err)
			break
		}
		out.PagesFetched++

		page := p.Extract(doc)
		out.Records = append(out.Records, page.Records...)
		out.ItemsSkipped += len(page.Skipped)
		for _, skipErr := range page.Skipped {
			log.Debug("Skipped article", "url", pageURL, "error", skipErr)
		}
		log.Debug("Page extracted",
			"url", pageURL,
			"page", cursor,
			"elements", page.Elements,
			"records", len(page.Records),
			"filtered", page.Filtered,
		)

		if page.Elements == 0 {
			break
		}
		if !p.HasNext(doc) {
			break
		}
		if limit := p.MaxPages(); limit > 0 && cursor >= limit {
			log.Debug("Page cap reached", "max_pages", limit)
			break
		}
	}

	out.Duration = time.Since(start)
	return out
}

// datePolicy decides what goes in a record's date field, or whether the
// article is dropped. keep=false drops silently; an error counts as a
// malformed article.
type datePolicy func(raw scraper.RawArticle) (date string, keep bool, err error)

// keepDisplayedDate passes the site's own date text through untouched.
func keepDisplayedDate(raw scraper.RawArticle) (string, bool, error) {
	return raw.DateText, true, nil
}

// collect extracts every article element on the page with the site's
// selectors and applies the date policy.
func collect(doc *goquery.Document, site scraper.SiteConfig, source record.SourceName, policy datePolicy) Page {
	base := doc.Url
	if base == nil {
		base, _ = url.Parse(site.BaseURL)
	}

	var page Page
	doc.Find(site.List.ArticleSelector).Each(func(i int, s *goquery.Selection) {
		page.Elements++

		raw, err := scraper.ExtractArticle(s, site.Article, base)
		if err != nil {
			page.Skipped = append(page.Skipped, fmt.Errorf("article %d: %w", i+1, err))
			return
		}

		date, keep, err := policy(raw)
		if err != nil {
			page.Skipped = append(page.Skipped, fmt.Errorf("article %d (%s): %w", i+1, raw.URL, err))
			return
		}
		if !keep {
			page.Filtered++
			return
		}

		page.Records = append(page.Records, record.Record{
			Title:    raw.Title,
			Category: raw.Category,
			Date:     date,
			URL:      raw.URL,
			Source:   source,
		})
	})

	return page
}

// trimBase drops a trailing slash so URL templates can add their own.
func trimBase(base string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base
}
