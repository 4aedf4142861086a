package ui

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) aidesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "aides",
		Short: "List teacher aides",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := a.newClient()
			ctx := cmd.Context()

			aides, err := client.ListAides(ctx)
			if err != nil {
				return fmt.Errorf("fetching aides: %w", err)
			}
			absences, err := client.ListAbsences(ctx)
			if err != nil {
				return fmt.Errorf("fetching absences: %w", err)
			}

			w := cmd.OutOrStdout()
			if len(aides) == 0 {
				colorMuted.Fprintln(w, "no teacher aides recorded")
				return nil
			}

			for _, aide := range aides {
				colorAide.Fprintf(w, "%3d  %s", aide.ID, aide.Name)
				if aide.Qualifications != "" {
					colorMuted.Fprintf(w, "  (%s)", aide.Qualifications)
				}
				fmt.Fprintln(w)
				for _, ab := range absences {
					if ab.AideID != aide.ID {
						continue
					}
					colorConflict.Fprintf(w, "     away %s to %s", ab.StartDate, ab.EndDate)
					if ab.Reason != "" {
						fmt.Fprintf(w, ": %s", ab.Reason)
					}
					fmt.Fprintln(w)
				}
			}
			return nil
		},
	}
}
