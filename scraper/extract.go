package scraper

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Errors for a single article element that is missing a required field.
var (
	ErrMissingTitle = errors.New("title is missing")
	ErrMissingLink  = errors.New("link is missing")
	ErrMissingDate  = errors.New("date is missing")
)

// RawArticle holds the fields pulled from one article element before any
// source-specific date handling.
type RawArticle struct {
	Title    string
	Category string
	DateText string
	URL      string
}

// NormalizeWhitespace collapses runs of whitespace into single spaces and
// trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ExtractArticle pulls title, category, date text and link from an article
// element. Title, link and date are required; category is optional free
// text. Relative links are resolved against base.
func ExtractArticle(sel *goquery.Selection, config ArticleConfig, base *url.URL) (RawArticle, error) {
	var article RawArticle

	article.Title = NormalizeWhitespace(sel.Find(config.TitleSelector).First().Text())
	if article.Title == "" {
		return article, ErrMissingTitle
	}

	if config.CategorySelector != "" {
		article.Category = NormalizeWhitespace(sel.Find(config.CategorySelector).First().Text())
	}

	dateSel := sel.Find(config.DateSelector).First()
	if config.DateAttr != "" {
		article.DateText, _ = dateSel.Attr(config.DateAttr)
		article.DateText = strings.TrimSpace(article.DateText)
	} else {
		article.DateText = NormalizeWhitespace(dateSel.Text())
	}
	if article.DateText == "" {
		return article, ErrMissingDate
	}

	linkSelector := config.LinkSelector
	if linkSelector == "" {
		linkSelector = "a[href]"
	}
	href, ok := sel.Find(linkSelector).First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return article, ErrMissingLink
	}

	resolved, err := ResolveURL(base, href)
	if err != nil {
		return article, err
	}
	article.URL = resolved

	return article, nil
}

// ResolveURL turns href into an absolute http(s) URL relative to base.
func ResolveURL(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("invalid article URL: %w", err)
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", fmt.Errorf("article URL must use http or https scheme: %q", href)
	}
	return ref.String(), nil
}

// HasNext reports whether the page carries the "next page" element named by
// config. A config without a pagination selector always reports true; such
// sites rely on an empty page or a page cap to stop.
func HasNext(doc *goquery.Document, config ListConfig) bool {
	if config.PaginationSelector == "" {
		return true
	}
	return doc.Find(config.PaginationSelector).Length() > 0
}
