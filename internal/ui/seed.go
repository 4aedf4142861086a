package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aideroster/aideroster/internal/db"
	"github.com/aideroster/aideroster/internal/roster"
)

func (a *App) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate the local database with sample data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo := a.repo
			if repo == nil {
				var err error
				repo, err = db.New(a.cfg.Storage.DBPath)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer repo.Close()
			}

			ctx := cmd.Context()
			if err := seed(ctx, repo, roster.WeekStart(time.Now())); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded sample data into %s\n", a.cfg.Storage.DBPath)
			return nil
		},
	}
}

func seed(ctx context.Context, repo roster.Repository, weekStart time.Time) error {
	aides := []*roster.TeacherAide{
		{Name: "Dana Whitfield", Qualifications: "First aid", ColourHex: "#4C9F70"},
		{Name: "Marcus Obi", ColourHex: "#7067CF"},
		{Name: "Priya Nair", Qualifications: "EAL support", ColourHex: "#C97B4A"},
	}
	for _, aide := range aides {
		if err := repo.CreateAide(ctx, aide); err != nil {
			return fmt.Errorf("seeding aide %q: %w", aide.Name, err)
		}
	}

	monday, err := roster.DateForWeekday(weekStart, "Monday")
	if err != nil {
		return err
	}
	wednesday, err := roster.DateForWeekday(weekStart, "Wednesday")
	if err != nil {
		return err
	}

	assignments := []*roster.Assignment{
		{
			TaskID: 1, TaskTitle: "Morning bus duty", TaskCategory: "Supervision",
			AideID: &aides[0].ID, Date: monday, StartTime: "08:30", EndTime: "09:00",
			Status: roster.StatusAssigned,
		},
		{
			TaskID: 2, TaskTitle: "Reading group", TaskCategory: "Classroom",
			AideID: &aides[1].ID, Date: wednesday, StartTime: "10:00", EndTime: "11:00",
			Status: roster.StatusAssigned, IsFlexible: true,
		},
		{
			TaskID: 3, TaskTitle: "Library shelving", TaskCategory: "Admin",
			Status: roster.StatusUnassigned, IsFlexible: true,
		},
		{
			TaskID: 4, TaskTitle: "Lunch yard duty", TaskCategory: "Supervision",
			Status: roster.StatusUnassigned,
		},
	}
	for _, as := range assignments {
		if err := repo.CreateAssignment(ctx, as); err != nil {
			return fmt.Errorf("seeding assignment %q: %w", as.TaskTitle, err)
		}
	}

	absence := &roster.Absence{
		AideID:    aides[2].ID,
		StartDate: monday,
		EndDate:   monday,
		Reason:    "Training day",
	}
	if err := repo.CreateAbsence(ctx, absence); err != nil {
		return fmt.Errorf("seeding absence: %w", err)
	}
	return nil
}
