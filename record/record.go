package record

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownSource is returned when a source name is not one of the known
// adapters.
var ErrUnknownSource = errors.New("unknown source")

// SourceName identifies one of the news sites the crawler knows about.
type SourceName string

const (
	// BerauTerkini publishes a daily index; the date lives in the page URL.
	BerauTerkini SourceName = "Berau Terkini"
	// KaltimPost lists search results carrying machine-readable timestamps.
	KaltimPost SourceName = "Kaltim Post"
	// Detik filters by query date on the server and links to the next page.
	Detik SourceName = "Detik"
	// TribunKaltim prints Indonesian-language dates that must be parsed.
	TribunKaltim SourceName = "Tribun Kaltim"
)

// AllSources lists every known source in canonical crawl order.
var AllSources = []SourceName{BerauTerkini, KaltimPost, Detik, TribunKaltim}

// String implements fmt.Stringer.
func (s SourceName) String() string {
	return string(s)
}

// Valid reports whether s is one of the known sources.
func (s SourceName) Valid() bool {
	for _, known := range AllSources {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSourceName matches a source name case-insensitively. Both the display
// name ("Berau Terkini") and its slug ("berau-terkini") are accepted.
func ParseSourceName(name string) (SourceName, error) {
	name = strings.TrimSpace(name)
	for _, known := range AllSources {
		if strings.EqualFold(name, string(known)) || strings.EqualFold(name, known.Slug()) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, name)
}

// Slug returns a lowercase, hyphenated form of the name suitable for flags and
// config keys.
func (s SourceName) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(s)), " ", "-")
}

// Record is one news article normalized from any source. Field order and
// JSON names match the export format and must not change.
type Record struct {
	Title    string     `json:"title"`
	Category string     `json:"category"`
	Date     string     `json:"date"`
	URL      string     `json:"URL"`
	Source   SourceName `json:"source"`
}

// Validate checks the invariants every emitted record must satisfy.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is empty")
	}
	if strings.TrimSpace(r.URL) == "" {
		return fmt.Errorf("URL is empty")
	}
	if r.Date == "" {
		return fmt.Errorf("date is empty")
	}
	if !r.Source.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSource, r.Source)
	}
	return nil
}

// Outcome summarizes one source's contribution to a crawl. PagesFailed counts
// pages whose fetch exhausted its retries, which lets callers tell "no
// matching articles" apart from "source was unreachable".
type Outcome struct {
	Source       SourceName    `json:"source"`
	Records      []Record      `json:"-"`
	PagesFetched int           `json:"pages_fetched"`
	PagesFailed  int           `json:"pages_failed"`
	ItemsSkipped int           `json:"items_skipped"`
	Duration     time.Duration `json:"duration"`
	Err          error         `json:"-"`
}

// Unreachable reports whether the source produced nothing and every attempt
// to reach it failed.
func (o Outcome) Unreachable() bool {
	return len(o.Records) == 0 && o.PagesFailed > 0 && o.PagesFetched == 0
}

// Merge folds another outcome for the same source into o. It is used when a
// source runs several independent pagination loops.
func (o *Outcome) Merge(other Outcome) {
	o.Records = append(o.Records, other.Records...)
	o.PagesFetched += other.PagesFetched
	o.PagesFailed += other.PagesFailed
	o.ItemsSkipped += other.ItemsSkipped
	if o.Err == nil {
		o.Err = other.Err
	}
}
