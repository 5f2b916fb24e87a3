package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/sources"
)

// printRecordsTable prints records in human-readable table format
func printRecordsTable(w io.Writer, records []record.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"#", "Title", "Category", "Date", "Source", "URL"})
	for i, r := range records {
		t.AppendRow(table.Row{
			i + 1,
			truncate(r.Title, 70),
			r.Category,
			r.Date,
			r.Source,
			r.URL,
		})
	}
	t.AppendFooter(table.Row{"", "Total", len(records)})

	t.Render()
}

// printSourcesTable prints the source listing
func printSourcesTable(w io.Writer, infos []sources.Info) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Name", "Slug", "Base URL", "Strategy", "Max Pages"})
	for _, info := range infos {
		maxPages := any(info.MaxPages)
		if info.MaxPages == 0 {
			maxPages = "-"
		}
		t.AppendRow(table.Row{info.Name, info.Slug, info.BaseURL, info.Strategy, maxPages})
	}

	t.Render()
}

// truncate shortens s to at most n runes, marking the cut with "..."
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
