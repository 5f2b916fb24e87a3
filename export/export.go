// Package export writes crawl results in the formats users download: CSV,
// JSON and a standalone SQLite file.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pevans/festa/record"
)

// ErrUnknownFormat is returned for a format name that has no writer.
var ErrUnknownFormat = errors.New("unknown export format")

// Format names an export encoding.
type Format string

const (
	CSV    Format = "csv"
	JSON   Format = "json"
	SQLite Format = "sqlite"
)

// Columns is the export header, in order.
var Columns = []string{"title", "category", "date", "URL", "source"}

// ParseFormat accepts a format name case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case CSV, JSON, SQLite:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Filename is the suggested download name.
func (f Format) Filename() string {
	switch f {
	case SQLite:
		return "news_articles.db"
	default:
		return "news_articles." + string(f)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case CSV:
		return "text/csv; charset=utf-8"
	case JSON:
		return "application/json; charset=utf-8"
	default:
		return "application/vnd.sqlite3"
	}
}

// Write encodes records to w. SQLite needs a file path, not a stream, and
// is rejected here; use WriteSQLite.
func Write(w io.Writer, format Format, records []record.Record) error {
	switch format {
	case CSV:
		return WriteCSV(w, records)
	case JSON:
		return WriteJSON(w, records)
	case SQLite:
		return fmt.Errorf("%w: sqlite export needs a file path", ErrUnknownFormat)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func row(r record.Record) []string {
	return []string{r.Title, r.Category, r.Date, r.URL, string(r.Source)}
}
