package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pevans/festa/fetcher"
	"github.com/pevans/festa/logger"
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/scraper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newsServer serves two articles on page 1 of every source's listing and an
// empty page everywhere else. Sources named in broken answer 500.
func newsServer(t *testing.T, broken ...string) (*httptest.Server, *int64) {
	t.Helper()
	var hits int64

	isBroken := func(path string) bool {
		for _, b := range broken {
			if strings.HasPrefix(path, b) {
				return true
			}
		}
		return false
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		if isBroken(r.URL.Path) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		firstPage := r.URL.Query().Get("page") == "1"
		var body string
		switch {
		case r.URL.Path == "/indeks/page/1/":
			body = `<div class="indeks-item media"><a class="media-title" href="/bt/1">BT one</a>
				<div class="indeks-category">Daerah</div><div class="indeks-date">Senin, 15 Januari 2024</div></div>
				<div class="indeks-item media"><a class="media-title" href="/bt/2">BT two</a>
				<div class="indeks-category">Daerah</div><div class="indeks-date">Senin, 15 Januari 2024</div></div>`
		case r.URL.Path == "/search" && firstPage:
			body = `<article class="post-item"><h2 class="post-title"><a href="/kp/1">KP one</a></h2>
				<time datetime="2024-01-15T09:00:00+08:00">pagi</time></article>
				<article class="post-item"><h2 class="post-title"><a href="/kp/2">KP two</a></h2>
				<time datetime="2024-01-15T21:00:00+08:00">malam</time></article>`
		case r.URL.Path == "/search/searchall" && firstPage:
			body = `<article class="list-content__item"><a href="/dt/1"><h3 class="media__title">DT one</h3>
				<div class="media__date">Senin, 15 Jan 2024 08:00 WIB</div></a></article>
				<article class="list-content__item"><a href="/dt/2"><h3 class="media__title">DT two</h3>
				<div class="media__date">Senin, 15 Jan 2024 09:00 WIB</div></a></article>`
		case strings.HasPrefix(r.URL.Path, "/tag/") && firstPage:
			body = `<li class="art-list"><h3><a href="/tk/1">TK one</a></h3>
				<time>Senin, 15 Januari 2024 10:00 WITA</time></li>
				<li class="art-list"><h3><a href="/tk/2">TK two</a></h3>
				<time>Senin, 15 Januari 2024 11:00 WITA</time></li>`
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><body>%s</body></html>", body)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func testService(baseURL string) *Service {
	sites := map[record.SourceName]scraper.SiteConfig{}
	for _, name := range record.AllSources {
		sites[name] = scraper.SiteConfig{BaseURL: baseURL}
	}
	return NewService(Config{
		Keyword: "berau",
		Fetch: fetcher.Config{
			Timeout:    2 * time.Second,
			Attempts:   2,
			RetryDelay: time.Millisecond,
		},
		Sites: sites,
	}, logger.NewNoOp())
}

// TestScrape_AllSourcesCanonicalOrder verifies 2/2/2/2 records concatenated
// in canonical order
func TestScrape_AllSourcesCanonicalOrder(t *testing.T) {
	server, _ := newsServer(t)
	svc := testService(server.URL)

	// selection order must not matter
	selected := []record.SourceName{record.TribunKaltim, record.Detik, record.BerauTerkini, record.KaltimPost}
	records := svc.Scrape(context.Background(), day(2024, 1, 15), day(2024, 1, 15), selected)

	require.Len(t, records, 8)
	for i, want := range record.AllSources {
		assert.Equal(t, want, records[2*i].Source)
		assert.Equal(t, want, records[2*i+1].Source)
	}
	for _, r := range records {
		assert.NoError(t, r.Validate())
		assert.True(t, strings.HasPrefix(r.URL, server.URL), "URL should be absolute: %s", r.URL)
	}

	assert.Equal(t, "BT one", records[0].Title)
	assert.Equal(t, "Senin, 15 Januari 2024", records[0].Date)
	assert.Equal(t, "2024-01-15", records[2].Date)
	assert.Equal(t, "Senin, 15 Jan 2024 08:00 WIB", records[4].Date)
	assert.Equal(t, "2024-01-15", records[6].Date)
}

// TestScrape_EmptySelection verifies no network calls are made
func TestScrape_EmptySelection(t *testing.T) {
	server, hits := newsServer(t)
	svc := testService(server.URL)

	result := svc.ScrapeWithReport(context.Background(), day(2024, 1, 1), day(2024, 1, 31), nil)

	assert.Empty(t, result.Records)
	assert.NotNil(t, result.Records)
	assert.Zero(t, atomic.LoadInt64(hits))
	assert.Equal(t, "No news found.", result.Message())
}

// TestScrape_InvalidRange verifies a reversed range yields nothing
func TestScrape_InvalidRange(t *testing.T) {
	server, hits := newsServer(t)
	svc := testService(server.URL)

	records := svc.Scrape(context.Background(), day(2024, 2, 1), day(2024, 1, 1), record.AllSources)

	assert.Empty(t, records)
	assert.Zero(t, atomic.LoadInt64(hits))
}

// TestScrape_UnknownAndDuplicateNames verifies unknown names are ignored and
// duplicates collapse
func TestScrape_UnknownAndDuplicateNames(t *testing.T) {
	server, _ := newsServer(t)
	svc := testService(server.URL)

	selected := []record.SourceName{record.Detik, "Kompas", record.Detik}
	result := svc.ScrapeWithReport(context.Background(), day(2024, 1, 15), day(2024, 1, 15), selected)

	require.Len(t, result.Records, 2)
	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, record.Detik, result.Outcomes[0].Source)
	assert.Equal(t, []string{"Kompas"}, result.Ignored)
	assert.Equal(t, "Scraped 2 news successfully!", result.Message())
}

// TestScrapeWithReport_Unreachable verifies a failing source is reported and
// does not affect the others
func TestScrapeWithReport_Unreachable(t *testing.T) {
	server, _ := newsServer(t, "/tag/")
	svc := testService(server.URL)

	result := svc.ScrapeWithReport(context.Background(), day(2024, 1, 15), day(2024, 1, 15),
		[]record.SourceName{record.Detik, record.TribunKaltim})

	assert.Len(t, result.Records, 2)
	assert.Equal(t, []record.SourceName{record.TribunKaltim}, result.Unreachable())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", result.CrawlID.String())

	tk := result.Outcomes[1]
	assert.Equal(t, record.TribunKaltim, tk.Source)
	assert.Equal(t, 1, tk.PagesFailed)
	assert.Zero(t, tk.PagesFetched)
}

// TestScrape_BerauTerkiniDays verifies one daily loop per day in the range
func TestScrape_BerauTerkiniDays(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Query().Get("date"))
		mu.Unlock()
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer server.Close()

	svc := testService(server.URL)
	records := svc.Scrape(context.Background(), day(2024, 2, 28), day(2024, 3, 1), []record.SourceName{record.BerauTerkini})

	assert.Empty(t, records)
	assert.ElementsMatch(t, []string{"2024/02/28", "2024/02/29", "2024/03/01"}, paths)
}

// TestScrape_Cancelled verifies a cancelled context returns promptly with
// no records
func TestScrape_Cancelled(t *testing.T) {
	server, _ := newsServer(t)
	svc := testService(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := svc.ScrapeWithReport(ctx, day(2024, 1, 15), day(2024, 1, 15), record.AllSources)
	assert.Empty(t, result.Records)
	for _, o := range result.Outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}

// TestNewService_SiteOverrides verifies config overrides merge onto the
// built-in layouts
func TestNewService_SiteOverrides(t *testing.T) {
	svc := NewService(Config{
		Sites: map[record.SourceName]scraper.SiteConfig{
			record.KaltimPost: {MaxPages: 3},
		},
	}, nil)

	sites := svc.Sites()
	assert.Equal(t, 3, sites[record.KaltimPost].MaxPages)
	assert.Equal(t, "https://kaltimpost.jawapos.com", sites[record.KaltimPost].BaseURL)
	assert.Equal(t, "article.post-item", sites[record.KaltimPost].List.ArticleSelector)
	assert.Equal(t, DefaultKeyword, svc.Keyword())
}

// TestSelect verifies canonical ordering of a selection
func TestSelect(t *testing.T) {
	known, ignored := Select([]record.SourceName{record.Detik, record.BerauTerkini, "nope", record.Detik})
	assert.Equal(t, []record.SourceName{record.BerauTerkini, record.Detik}, known)
	assert.Equal(t, []string{"nope"}, ignored)
}

// TestNewService_ZeroConfigKeepsRetryDelay verifies an empty config still
// builds fetchers that pause between attempts
func TestNewService_ZeroConfigKeepsRetryDelay(t *testing.T) {
	svc := NewService(Config{}, nil)

	f, ok := svc.newFetcher(svc.config.Fetch, logger.NewNoOp()).(*fetcher.HTTPFetcher)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, f.Config().RetryDelay)
	assert.Equal(t, 3, f.Config().Attempts)
}
