package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pevans/festa/config"
	"github.com/pevans/festa/dates"
	"github.com/pevans/festa/export"
	"github.com/pevans/festa/record"
	"github.com/spf13/cobra"
)

const defaultStart = "2022-01-01"

type scrapeOptions struct {
	start   string
	end     string
	sources []string
	all     bool
	keyword string
	format  string
	out     string
}

func newScrapeCommand() *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Collect news for a date range",
		Long: `Collect news for an inclusive date range from the selected sources.

Sources may be given by name or slug: "Berau Terkini" or berau-terkini,
kaltim-post, detik, tribun-kaltim. Unknown names are ignored with a warning.`,
		Example: `  festa scrape --start 2024-01-01 --end 2024-01-31 --source detik --source kaltim-post
  festa scrape --all --format csv --out news_articles.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, opts)
		},
	}

	today := time.Now().Format(dates.ISODate)
	cmd.Flags().StringVar(&opts.start, "start", defaultStart, "first day to collect (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", today, "last day to collect (YYYY-MM-DD)")
	cmd.Flags().StringSliceVarP(&opts.sources, "source", "s", []string{string(record.BerauTerkini)}, "news site to collect from (repeatable)")
	cmd.Flags().BoolVar(&opts.all, "all", false, "collect from every known source")
	cmd.Flags().StringVar(&opts.keyword, "keyword", "", "override the configured search keyword")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format: table, csv, json or sqlite")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write output to this file instead of stdout (required for sqlite)")

	return cmd
}

func runScrape(cmd *cobra.Command, opts *scrapeOptions) error {
	start, err := parseDay("start", opts.start)
	if err != nil {
		return err
	}
	end, err := parseDay("end", opts.end)
	if err != nil {
		return err
	}

	var format export.Format
	if opts.format != "table" {
		if format, err = export.ParseFormat(opts.format); err != nil {
			return err
		}
		if format == export.SQLite && opts.out == "" {
			return errors.New("--out is required for sqlite output")
		}
	}

	d, err := loadDeps(func(cfg *config.FileConfig) {
		if opts.keyword != "" {
			cfg.Keyword = opts.keyword
		}
	})
	if err != nil {
		return err
	}
	defer d.log.Sync()

	stderr := cmd.ErrOrStderr()
	if err := dates.NewDateRange(start, end).Validate(); err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}

	selected := resolveSources(opts.sources)
	if opts.all {
		selected = record.AllSources
	}

	result := d.service.ScrapeWithReport(cmd.Context(), start, end, selected)

	for _, name := range result.Ignored {
		fmt.Fprintf(stderr, "Warning: unknown source %q ignored\n", name)
	}
	for _, name := range result.Unreachable() {
		fmt.Fprintf(stderr, "Warning: %s may have been unreachable\n", name)
	}
	fmt.Fprintln(stderr, result.Message())

	if len(result.Records) == 0 && format == "" {
		return nil
	}
	return writeOutput(cmd.OutOrStdout(), format, opts.out, result.Records)
}

func parseDay(flag, value string) (time.Time, error) {
	t, err := time.Parse(dates.ISODate, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", flag, value)
	}
	return t, nil
}

// resolveSources accepts display names and slugs. Unknown names pass
// through so the aggregator can report them.
func resolveSources(raw []string) []record.SourceName {
	names := make([]record.SourceName, 0, len(raw))
	for _, s := range raw {
		if name, err := record.ParseSourceName(s); err == nil {
			names = append(names, name)
		} else {
			names = append(names, record.SourceName(s))
		}
	}
	return names
}

// createFile opens an output file for writing.
var createFile = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

func writeOutput(stdout io.Writer, format export.Format, out string, records []record.Record) (err error) {
	if format == export.SQLite {
		if err := export.WriteSQLite(out, records); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		return nil
	}

	w := stdout
	if out != "" {
		f, err := createFile(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close %s: %w", out, cerr)
			}
		}()
		w = f
	}

	if format == "" {
		printRecordsTable(w, records)
		return nil
	}
	return export.Write(w, format, records)
}
