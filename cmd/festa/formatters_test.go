package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pevans/festa/config"
	"github.com/pevans/festa/export"
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/sources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []record.Record {
	return []record.Record{
		{Title: "Festival Derawan dibuka", Category: "Wisata", Date: "2024-01-15", URL: "https://k.test/1", Source: record.KaltimPost},
		{Title: strings.Repeat("panjang ", 20), Date: "Senin, 15 Jan 2024 10:00 WIB", URL: "https://d.test/2", Source: record.Detik},
	}
}

// TestTruncate verifies rune-safe truncation
func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "Jum’at ...", truncate("Jum’at pagi sekali", 10))
}

// TestPrintRecordsTable verifies the table lists every record
func TestPrintRecordsTable(t *testing.T) {
	var buf bytes.Buffer
	printRecordsTable(&buf, sampleRecords())

	out := buf.String()
	assert.Contains(t, out, "Festival Derawan dibuka")
	assert.Contains(t, out, "Kaltim Post")
	assert.Contains(t, out, "https://d.test/2")
	assert.Contains(t, out, "...")
}

// TestPrintSourcesTable verifies the source listing
func TestPrintSourcesTable(t *testing.T) {
	var buf bytes.Buffer
	printSourcesTable(&buf, sources.Describe(sources.DefaultSites()))

	out := buf.String()
	for _, name := range record.AllSources {
		assert.Contains(t, out, string(name))
	}
	assert.Contains(t, out, "daily-index")
}

// TestResolveSources verifies slugs resolve and unknown names pass through
func TestResolveSources(t *testing.T) {
	got := resolveSources([]string{"detik", "Tribun Kaltim", "kompas"})
	assert.Equal(t, []record.SourceName{record.Detik, record.TribunKaltim, "kompas"}, got)
}

// TestParseDay verifies flag date parsing
func TestParseDay(t *testing.T) {
	d, err := parseDay("start", "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, 29, d.Day())

	_, err = parseDay("end", "29/02/2024")
	assert.ErrorContains(t, err, "--end")
}

// TestWriteOutput verifies each output format
func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, export.CSV, "", sampleRecords()))
	assert.True(t, strings.HasPrefix(buf.String(), "title,category,date,URL,source\n"))

	path := filepath.Join(t.TempDir(), "news_articles.json")
	require.NoError(t, writeOutput(&buf, export.JSON, path, sampleRecords()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `    {`)

	dbPath := filepath.Join(t.TempDir(), "news.db")
	require.NoError(t, writeOutput(&buf, export.SQLite, dbPath, sampleRecords()))
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

// TestRootCommand_Subcommands verifies the command tree
func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()

	for _, name := range []string{"scrape", "sources", "serve"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	scrape, _, _ := root.Find([]string{"scrape"})
	assert.Equal(t, "2022-01-01", scrape.Flag("start").DefValue)
	assert.Equal(t, "[Berau Terkini]", scrape.Flag("source").DefValue)
	assert.Contains(t, root.Long, "How to use")
}

// failingCloser accepts writes but fails on Close
type failingCloser struct {
	bytes.Buffer
}

func (f *failingCloser) Close() error {
	return errors.New("disk full")
}

// TestWriteOutput_CloseError verifies a failed close of the output file is
// reported
func TestWriteOutput_CloseError(t *testing.T) {
	orig := createFile
	t.Cleanup(func() { createFile = orig })

	fc := &failingCloser{}
	createFile = func(string) (io.WriteCloser, error) { return fc, nil }

	err := writeOutput(io.Discard, export.CSV, "news_articles.csv", sampleRecords())
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to close news_articles.csv")
	assert.Contains(t, fc.String(), "title,category,date,URL,source")
}

// TestResolveConfig_KeywordOverride verifies flag overrides land in the
// config without touching the process environment
func TestResolveConfig_KeywordOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keyword: sambaliung\n"), 0o600))

	origFile, origLevel := cfgFile, logLevel
	t.Cleanup(func() { cfgFile, logLevel = origFile, origLevel })
	cfgFile, logLevel = path, "debug"
	t.Setenv("FESTA_KEYWORD", "")
	t.Setenv(config.EnvConfigPath, "")

	cfg, err := resolveConfig(func(c *config.FileConfig) { c.Keyword = "derawan" })
	require.NoError(t, err)

	assert.Equal(t, "derawan", cfg.Keyword)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Empty(t, os.Getenv("FESTA_KEYWORD"))
	assert.Empty(t, os.Getenv(config.EnvConfigPath))
}
