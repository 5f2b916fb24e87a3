package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/pevans/festa/fetcher"
)

// stubFetcher serves canned HTML by exact URL. Unknown URLs get an empty
// page; URLs in fail report an exhausted fetch.
type stubFetcher struct {
	mu      sync.Mutex
	pages   map[string]string
	fail    map[string]bool
	fetched []string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{pages: map[string]string{}, fail: map[string]bool{}}
}

func (s *stubFetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.fetched = append(s.fetched, rawURL)
	html, ok := s.pages[rawURL]
	failed := s.fail[rawURL]
	s.mu.Unlock()

	if failed {
		return nil, fmt.Errorf("%w: stub", fetcher.ErrExhausted)
	}
	if !ok {
		html = "<html><body><p>Tidak ada berita.</p></body></html>"
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	doc.Url, _ = url.Parse(rawURL)
	return doc, nil
}

func (s *stubFetcher) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fetched...)
}

func berauItem(title, href string) string {
	return fmt.Sprintf(`<div class="indeks-item media">
		<a href="%s"><img src="x.jpg"></a>
		<a class="media-title" href="%s">%s</a>
		<div class="indeks-category">Daerah</div>
		<div class="indeks-date">Senin, 15 Januari 2024</div>
	</div>`, href, href, title)
}

func kaltimItem(title, href, ts string) string {
	return fmt.Sprintf(`<article class="post-item">
		<h2 class="post-title"><a href="%s">%s</a></h2>
		<span class="post-category">Berau</span>
		<time datetime="%s">beberapa jam lalu</time>
	</article>`, href, title, ts)
}

func detikItem(title, href string) string {
	return fmt.Sprintf(`<article class="list-content__item">
		<a href="%s">
			<h3 class="media__title">%s</h3>
			<h2 class="media__subtitle">detikNews</h2>
			<div class="media__date"><span title="Senin, 15 Jan 2024 10:00 WIB">Senin, 15 Jan 2024 10:00 WIB</span></div>
		</a>
	</article>`, href, title)
}

func tribunItem(title, href, date string) string {
	return fmt.Sprintf(`<li class="art-list">
		<h3><a href="%s">%s</a></h3>
		<h4>Kaltim</h4>
		<time>%s</time>
	</li>`, href, title, date)
}

func page(items ...string) string {
	return "<html><body>" + strings.Join(items, "\n") + "</body></html>"
}
