package main

import (
	"encoding/json"
	"fmt"

	"github.com/pevans/festa/sources"
	"github.com/spf13/cobra"
)

func newSourcesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the news sites festa can collect from",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDeps()
			if err != nil {
				return err
			}
			defer d.log.Sync()

			infos := sources.Describe(d.service.Sites())
			if asJSON {
				data, err := json.MarshalIndent(infos, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode sources: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			printSourcesTable(cmd.OutOrStdout(), infos)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
