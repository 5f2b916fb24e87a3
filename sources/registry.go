package sources

import (
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/scraper"
)

// Info describes a source for listings.
type Info struct {
	Name     record.SourceName `json:"name"`
	Slug     string            `json:"slug"`
	BaseURL  string            `json:"base_url"`
	Strategy string            `json:"strategy"`
	MaxPages int               `json:"max_pages"`
}

// Date-handling strategies, one per adapter.
const (
	StrategyDailyIndex   = "daily-index"
	StrategyTimestamp    = "timestamp-filter"
	StrategyServerQuery  = "server-query"
	StrategyLocaleFilter = "locale-date-filter"
)

var strategies = map[record.SourceName]string{
	record.BerauTerkini: StrategyDailyIndex,
	record.KaltimPost:   StrategyTimestamp,
	record.Detik:        StrategyServerQuery,
	record.TribunKaltim: StrategyLocaleFilter,
}

// DefaultSites returns the built-in layout of every source.
func DefaultSites() map[record.SourceName]scraper.SiteConfig {
	return map[record.SourceName]scraper.SiteConfig{
		record.BerauTerkini: BerauTerkiniSite(),
		record.KaltimPost:   KaltimPostSite(),
		record.Detik:        DetikSite(),
		record.TribunKaltim: TribunKaltimSite(),
	}
}

// Describe lists every source in canonical order using the given site
// configuration.
func Describe(sites map[record.SourceName]scraper.SiteConfig) []Info {
	infos := make([]Info, 0, len(record.AllSources))
	for _, name := range record.AllSources {
		site := sites[name]
		infos = append(infos, Info{
			Name:     name,
			Slug:     name.Slug(),
			BaseURL:  site.BaseURL,
			Strategy: strategies[name],
			MaxPages: site.MaxPagesOrUnlimited(),
		})
	}
	return infos
}
