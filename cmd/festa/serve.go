package main

import (
	"github.com/pevans/festa/api"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collector over HTTP",
		Long: `Serve the collector over HTTP.

  GET  /api/v1/sources
  GET  /api/v1/sources/{name}
  GET  /api/v1/scrape?start=YYYY-MM-DD&end=YYYY-MM-DD&source=...&format=csv|json
  POST /api/v1/scrape   {"start": ..., "end": ..., "sources": [...], "format": ...}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer d.log.Sync()

			if addr == "" {
				addr = d.config.Server.Addr
			}
			return api.NewServer(d.service, d.log).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
