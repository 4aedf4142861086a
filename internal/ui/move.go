package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/aideroster/aideroster/internal/engine"
	"github.com/aideroster/aideroster/internal/roster"
)

func (a *App) moveCmd() *cobra.Command {
	var (
		weekOf     string
		duration   float64
		onConflict string
	)

	cmd := &cobra.Command{
		Use:   "move <assignment-id> <source-slot> <dest-slot>",
		Short: "Move an assignment between slots",
		Long: `Move an assignment from one slot to another, running the same
conflict-checked pipeline the grid uses.

Slots are written "<aide-id>-<day>-<HH:MM>" or "unassigned", e.g.:

  aideroster move 12 unassigned 3-tuesday-09:00 --duration 1.5
  aideroster move 12 3-tuesday-09:00 unassigned`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parsing assignment id %q: %w", args[0], err)
			}
			if onConflict != "replace" && onConflict != "cancel" {
				return fmt.Errorf("--on-conflict must be replace or cancel, got %q", onConflict)
			}
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

			store := engine.NewStore()
			store.LoadAssignments(assignments)
			eng := engine.New(store, client, engine.Config{
				Week:               start,
				MaxFlexibleMinutes: a.cfg.Schedule.MaxFlexibleMinutes,
			})

			res, err := eng.Move(ctx, engine.MoveRequest{
				SourceToken: args[1],
				DestToken:   args[2],
				DraggedID:   id,
			})
			if err != nil {
				return err
			}
			return finishMove(ctx, cmd.OutOrStdout(), eng, res, duration, onConflict)
		},
	}

	cmd.Flags().StringVar(&weekOf, "week-of", "", "operate on the week containing this date (YYYY-MM-DD, default today)")
	cmd.Flags().Float64Var(&duration, "duration", 0, "duration in hours for flexible tasks (e.g. 1.25)")
	cmd.Flags().StringVar(&onConflict, "on-conflict", "cancel", "what to do when the slot is occupied: replace or cancel")
	return cmd
}

func finishMove(ctx context.Context, w io.Writer, eng *engine.Engine, res *engine.MoveResult, duration float64, onConflict string) error {
	if res.NoOp {
		colorMuted.Fprintln(w, "nothing to do")
		return nil
	}

	if res.Pending != nil {
		if duration == 0 {
			res.Pending.Cancel()
			listDurations(w, eng)
			return errors.New("flexible task needs --duration")
		}
		confirmed, err := res.Pending.Confirm(ctx, duration)
		if err != nil {
			if errors.Is(err, engine.ErrInvalidDuration) {
				listDurations(w, eng)
			}
			return err
		}
		res = confirmed
	}

	if res.Conflict != nil {
		c := res.Conflict
		colorConflict.Fprintf(w, "slot occupied by #%d %s (%s–%s)\n",
			c.Conflicting.ID, c.Conflicting.TaskTitle, c.Conflicting.StartTime, c.Conflicting.EndTime)

		if onConflict == "cancel" {
			if _, err := eng.Resolve(ctx, engine.DecisionCancel); err != nil {
				return err
			}
			colorMuted.Fprintln(w, "move cancelled")
			return nil
		}
		resolution, err := eng.Resolve(ctx, engine.DecisionReplace)
		if err != nil {
			return err
		}
		printCommitted(w, resolution.Assigned)
		colorPool.Fprintf(w, "#%d %s returned to the pool\n", resolution.Unassigned.ID, resolution.Unassigned.TaskTitle)
		return nil
	}

	printCommitted(w, res.Assignment)
	return nil
}

func printCommitted(w io.Writer, a *roster.Assignment) {
	if a.Unassigned() {
		colorPool.Fprintf(w, "#%d %s moved to the pool\n", a.ID, a.TaskTitle)
		return
	}
	colorAide.Fprintf(w, "#%d %s scheduled %s %s–%s (aide %d)\n",
		a.ID, a.TaskTitle, a.Date, a.StartTime, a.EndTime, *a.AideID)
}

func listDurations(w io.Writer, eng *engine.Engine) {
	fmt.Fprint(w, "durations: ")
	for i, opt := range eng.DurationOptions() {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%g", opt.Hours)
	}
	fmt.Fprintln(w)
}
