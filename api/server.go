// Package api exposes the collector over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pevans/festa/dates"
	"github.com/pevans/festa/discovery"
	"github.com/pevans/festa/export"
	"github.com/pevans/festa/logger"
	"github.com/pevans/festa/record"
	"github.com/pevans/festa/scraper"
	"github.com/pevans/festa/sources"
)

// DefaultStart is the first day scraped when a request names none.
const DefaultStart = "2022-01-01"

// Scraper is the part of discovery.Service the API needs.
type Scraper interface {
	ScrapeWithReport(ctx context.Context, start, end time.Time, selected []record.SourceName) *discovery.ScrapeResult
	Sites() map[record.SourceName]scraper.SiteConfig
}

// Server represents the HTTP API server.
type Server struct {
	scraper Scraper
	log     logger.Interface
	now     func() time.Time
}

// NewServer creates a new API server.
func NewServer(s Scraper, log logger.Interface) *Server {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Server{scraper: s, log: log, now: time.Now}
}

// SetupRouter configures the Gin router with all API routes.
func (s *Server) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	api.GET("/sources", s.HandleListSources)
	api.GET("/sources/:name", s.HandleGetSource)
	api.GET("/scrape", s.HandleScrape)
	api.POST("/scrape", s.HandleScrape)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("API server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.log.Info("API server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// handleError maps domain errors to HTTP responses.
func (s *Server) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, record.ErrUnknownSource):
		c.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	case errors.Is(err, dates.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, errorResponse("invalid_range", err.Error()))
	case errors.Is(err, export.ErrUnknownFormat), errors.Is(err, errBadRequest):
		c.JSON(http.StatusBadRequest, errorResponse("validation_error", err.Error()))
	default:
		s.log.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request"))
	}
}

var errBadRequest = errors.New("bad request")

// ListSourcesResponse represents the response for GET /api/v1/sources.
type ListSourcesResponse struct {
	Sources []sources.Info `json:"sources"`
	Total   int            `json:"total"`
}

// HandleListSources handles GET /api/v1/sources.
func (s *Server) HandleListSources(c *gin.Context) {
	infos := sources.Describe(s.scraper.Sites())
	c.JSON(http.StatusOK, ListSourcesResponse{Sources: infos, Total: len(infos)})
}

// SourceResponse represents the response for GET /api/v1/sources/{name}.
type SourceResponse struct {
	sources.Info
	Site scraper.SiteConfig `json:"site"`
}

// HandleGetSource handles GET /api/v1/sources/{name}. The name may be the
// display name or its slug.
func (s *Server) HandleGetSource(c *gin.Context) {
	name, err := record.ParseSourceName(c.Param("name"))
	if err != nil {
		s.handleError(c, err)
		return
	}

	sites := s.scraper.Sites()
	for _, info := range sources.Describe(sites) {
		if info.Name == name {
			c.JSON(http.StatusOK, SourceResponse{Info: info, Site: sites[name]})
			return
		}
	}
	s.handleError(c, fmt.Errorf("%w: %q", record.ErrUnknownSource, name))
}

// ScrapeRequest represents the parameters of /api/v1/scrape. GET reads them
// from the query string (source may repeat or be comma-separated); POST
// reads a JSON body.
type ScrapeRequest struct {
	Start   string   `form:"start" json:"start"`
	End     string   `form:"end" json:"end"`
	Sources []string `form:"source" json:"sources"`
	Format  string   `form:"format" json:"format"`
}

// OutcomeReport is one source's line in a scrape report.
type OutcomeReport struct {
	Source       record.SourceName `json:"source"`
	Records      int               `json:"records"`
	PagesFetched int               `json:"pages_fetched"`
	PagesFailed  int               `json:"pages_failed"`
	ItemsSkipped int               `json:"items_skipped"`
	DurationMS   int64             `json:"duration_ms"`
	Unreachable  bool              `json:"unreachable"`
	Error        string            `json:"error,omitempty"`
}

// ScrapeResponse represents the default response for /api/v1/scrape.
type ScrapeResponse struct {
	CrawlID  string          `json:"crawl_id"`
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Message  string          `json:"message"`
	Total    int             `json:"total"`
	Records  []record.Record `json:"records"`
	Sources  []OutcomeReport `json:"sources"`
	Warnings []string        `json:"warnings,omitempty"`
}

// HandleScrape handles GET and POST /api/v1/scrape. Without a format it
// answers with a report; format=csv or format=json returns the records as a
// download named news_articles.csv or news_articles.json. Omitting the
// sources selects Berau Terkini; an explicit empty list scrapes nothing.
func (s *Server) HandleScrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		s.handleError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var format export.Format
	if req.Format != "" {
		f, err := export.ParseFormat(req.Format)
		if err != nil {
			s.handleError(c, err)
			return
		}
		if f == export.SQLite {
			s.handleError(c, fmt.Errorf("%w: sqlite is only available from the CLI", export.ErrUnknownFormat))
			return
		}
		format = f
	}

	r, err := s.dateRange(req)
	if err != nil {
		s.handleError(c, err)
		return
	}

	result := s.scraper.ScrapeWithReport(c.Request.Context(), r.Start, r.End, selection(req.Sources))

	if format != "" {
		c.Header("Content-Type", format.ContentType())
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.Filename()))
		c.Status(http.StatusOK)
		if err := export.Write(c.Writer, format, result.Records); err != nil {
			s.log.Error("Export failed", "format", string(format), "error", err)
		}
		return
	}

	c.JSON(http.StatusOK, newScrapeResponse(r, result))
}

func (s *Server) dateRange(req ScrapeRequest) (dates.DateRange, error) {
	start, end := req.Start, req.End
	if start == "" {
		start = DefaultStart
	}
	if end == "" {
		end = s.now().Format(dates.ISODate)
	}

	r, err := dates.ParseDateRange(start, end)
	if err != nil && !errors.Is(err, dates.ErrInvalidRange) {
		return r, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return r, err
}

// selection splits comma-separated names and resolves slugs. Names that
// match nothing are passed through so the aggregator reports them. Only an
// absent list (nil) selects Berau Terkini; an explicit empty list stays
// empty.
func selection(raw []string) []record.SourceName {
	var names []record.SourceName
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if name, err := record.ParseSourceName(part); err == nil {
				names = append(names, name)
			} else {
				names = append(names, record.SourceName(part))
			}
		}
	}
	if raw == nil {
		return []record.SourceName{record.BerauTerkini}
	}
	if names == nil {
		names = []record.SourceName{}
	}
	return names
}

func newScrapeResponse(r dates.DateRange, result *discovery.ScrapeResult) ScrapeResponse {
	resp := ScrapeResponse{
		CrawlID: result.CrawlID.String(),
		Start:   r.Start.Format(dates.ISODate),
		End:     r.End.Format(dates.ISODate),
		Message: result.Message(),
		Total:   len(result.Records),
		Records: result.Records,
		Sources: make([]OutcomeReport, 0, len(result.Outcomes)),
	}

	for _, name := range result.Ignored {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("unknown source %q ignored", name))
	}
	for _, o := range result.Outcomes {
		rep := OutcomeReport{
			Source:       o.Source,
			Records:      len(o.Records),
			PagesFetched: o.PagesFetched,
			PagesFailed:  o.PagesFailed,
			ItemsSkipped: o.ItemsSkipped,
			DurationMS:   o.Duration.Milliseconds(),
			Unreachable:  o.Unreachable(),
		}
		if o.Err != nil {
			rep.Error = o.Err.Error()
		}
		if rep.Unreachable {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s may have been unreachable", o.Source))
		}
		resp.Sources = append(resp.Sources, rep)
	}
	return resp
}
