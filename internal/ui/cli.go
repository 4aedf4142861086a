// Package ui implements the aideroster command line interface.
package ui

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aideroster/aideroster/internal/config"
	"github.com/aideroster/aideroster/internal/roster"
)

// Build information, set via -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
)

// App wires the cobra command tree to configuration and storage.
type App struct {
	repo roster.Repository
	cfg  *config.Config
	root *cobra.Command
}

// NewApp builds the command tree. repo may be nil; commands that need
// local storage open it lazily from cfg.Storage.DBPath.
func NewApp(repo roster.Repository, cfg *config.Config) *App {
	app := &App{repo: repo, cfg: cfg}

	root := &cobra.Command{
		Use:           "aideroster",
		Short:         "Weekly teacher-aide assignment scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("no-color", false, "disable colored output")
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if ok, _ := cmd.Flags().GetBool("no-color"); ok {
			DisableColor()
		}
	}

	root.AddCommand(app.serveCmd())
	root.AddCommand(app.weekCmd())
	root.AddCommand(app.moveCmd())
	root.AddCommand(app.aidesCmd())
	root.AddCommand(app.seedCmd())
	root.AddCommand(app.configCmd())
	root.AddCommand(versionCmd())

	app.root = root
	return app
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the repository if one was attached.
func (a *App) Close() error {
	if a.repo != nil {
		return a.repo.Close()
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aideroster %s (commit: %s)\n", Version, Commit)
		},
	}
}
