package ui

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aideroster/aideroster/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.DefaultConfigPath()
			w := cmd.OutOrStdout()

			if create {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file already exists at %s", path)
				}
				if err := config.Default().SaveTo(path); err != nil {
					return fmt.Errorf("writing config: %w", err)
				}
				fmt.Fprintf(w, "wrote default config to %s\n", path)
				return nil
			}

			if _, err := os.Stat(path); err != nil {
				colorMuted.Fprintf(w, "no config file at %s (using defaults)\n", path)
			} else {
				colorHeader.Fprintf(w, "config: %s\n", path)
			}

			cfg := a.cfg
			fmt.Fprintf(w, "  workdays:             %v\n", cfg.Schedule.Workdays)
			fmt.Fprintf(w, "  day:                  %s to %s\n", cfg.Schedule.DayStart, cfg.Schedule.DayEnd)
			fmt.Fprintf(w, "  slot minutes:         %d\n", cfg.Schedule.SlotMinutes)
			fmt.Fprintf(w, "  max flexible minutes: %d\n", cfg.Schedule.MaxFlexibleMinutes)
			fmt.Fprintf(w, "  database:             %s\n", cfg.Storage.DBPath)
			fmt.Fprintf(w, "  server address:       %s\n", cfg.Server.Addr)
			fmt.Fprintf(w, "  client base URL:      %s\n", cfg.Client.BaseURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&create, "create", false, "write a default config file if none exists")
	return cmd
}
