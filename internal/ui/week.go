package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aideroster/aideroster/internal/api"
	"github.com/aideroster/aideroster/internal/roster"
)

func (a *App) weekCmd() *cobra.Command {
	var weekOf string

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the weekly assignment grid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, err := resolveWeekStart(weekOf)
			if err != nil {
				return err
			}

			client := a.newClient()
			ctx := cmd.Context()

			first, _ := roster.DateForWeekday(start, roster.Weekdays[0])
			last, _ := roster.DateForWeekday(start, roster.Weekdays[len(roster.Weekdays)-1])

			assignments, err := client.ListAssignments(ctx, first, last)
			if err != nil {
				return fmt.Errorf("fetching assignments: %w", err)
			}
			aides, err := client.ListAides(ctx)
			if err != nil {
				return fmt.Errorf("fetching aides: %w", err)
			}
			absences, err := client.ListAbsences(ctx)
			if err != nil {
				return fmt.Errorf("fetching absences: %w", err)
			}

			printWeek(cmd.OutOrStdout(), start, assignments, aides, absences)
			return nil
		},
	}

	cmd.Flags().StringVar(&weekOf, "week-of", "", "show the week containing this date (YYYY-MM-DD, default today)")
	return cmd
}

func (a *App) newClient() *api.Client {
	return api.New(api.Config{
		BaseURL:      a.cfg.Client.BaseURL,
		Timeout:      time.Duration(a.cfg.Client.TimeoutSeconds) * time.Second,
		CheckRetries: a.cfg.Client.CheckRetries,
	})
}

func resolveWeekStart(weekOf string) (time.Time, error) {
	if weekOf == "" {
		return roster.WeekStart(time.Now()), nil
	}
	t, err := time.Parse("2006-01-02", weekOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --week-of: %w", err)
	}
	return roster.WeekStart(t), nil
}

func printWeek(w io.Writer, start time.Time, assignments []*roster.Assignment, aides []*roster.TeacherAide, absences []*roster.Absence) {
	names := make(map[int64]string, len(aides))
	for _, aide := range aides {
		names[aide.ID] = aide.Name
	}

	byDate := make(map[string][]*roster.Assignment)
	var pool []*roster.Assignment
	for _, as := range assignments {
		if as.Status == roster.StatusUnassigned {
			pool = append(pool, as)
			continue
		}
		byDate[as.Date] = append(byDate[as.Date], as)
	}

	width := termWidth()
	if width > 74 {
		width = 74
	}
	sep := strings.Repeat("─", width)

	colorHeader.Fprintf(w, "Week of %s\n", start.Format("January 2, 2006"))
	fmt.Fprintln(w, sep)

	for _, day := range roster.Weekdays {
		date, err := roster.DateForWeekday(start, day)
		if err != nil {
			continue
		}
		colorHeader.Fprintf(w, "%s  %s\n", day, date)

		entries := byDate[date]
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].StartTime != entries[j].StartTime {
				return entries[i].StartTime < entries[j].StartTime
			}
			return entries[i].ID < entries[j].ID
		})

		if len(entries) == 0 {
			colorMuted.Fprintln(w, "  (no assignments)")
		}
		for _, as := range entries {
			printAssignment(w, as, names, date, absences)
		}
		fmt.Fprintln(w, sep)
	}

	colorPool.Fprintf(w, "Pool (%d unassigned)\n", len(pool))
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	for _, as := range pool {
		fmt.Fprintf(w, "  %s", as.TaskTitle)
		if as.IsFlexible {
			colorMuted.Fprint(w, "  flexible")
		}
		fmt.Fprintln(w)
	}
}

func printAssignment(w io.Writer, as *roster.Assignment, names map[int64]string, date string, absences []*roster.Absence) {
	name := "?"
	absent := false
	if as.AideID != nil {
		if n, ok := names[*as.AideID]; ok {
			name = n
		}
		for _, ab := range absences {
			if ab.AideID == *as.AideID && ab.Covers(date) {
				absent = true
				break
			}
		}
	}

	fmt.Fprintf(w, "  %s–%s  ", as.StartTime, as.EndTime)
	if as.IsFlexible {
		colorAide.Fprintf(w, "%-16s", name)
	} else {
		colorFixed.Fprintf(w, "%-16s", name)
	}
	fmt.Fprintf(w, "  %s", as.TaskTitle)
	if absent {
		colorConflict.Fprint(w, "  [absent]")
	}
	fmt.Fprintln(w)
}
