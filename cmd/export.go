package cmd

import (
	"encoding/json"
	"fmt"

	"splitters/internal/core/container"
	"splitters/internal/search"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the current snapshot as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			defer log.Sync()

			s, db, err := container.NewStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}
			if err := s.Refresh(cmd.Context()); err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s.Snapshot())
		},
	}
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Filter locations by name, or by splitter model or port",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawMode, _ := cmd.Flags().GetString("mode")
			mode, err := search.ParseMode(rawMode)
			if err != nil {
				return err
			}
			query := ""
			if len(args) == 1 {
				query = search.FormatQuery(args[0], mode)
			}

			cfg, log, err := loadEnv()
			if err != nil {
				return err
			}
			defer log.Sync()

			s, db, err := container.NewStore(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
			}
			if err := s.Refresh(cmd.Context()); err != nil {
				return err
			}

			matches := search.Filter(s.Locations(), query, mode)
			out := cmd.OutOrStdout()
			for _, loc := range matches {
				fmt.Fprintf(out, "%s\t%s\n", loc.ID, loc.Name)
				for _, sp := range loc.Splitters {
					fmt.Fprintf(out, "\t%s\t%s\t%s\n", sp.Model, sp.Port, sp.Notes)
				}
			}
			summary := search.Summarize(matches)
			fmt.Fprintf(out, "%d locations, %d splitters\n", summary.TotalLocations, summary.TotalSplitters)

			return nil
		},
	}
	cmd.Flags().String("mode", string(search.ModeLocation), "Search mode: location or splitter")

	return cmd
}
