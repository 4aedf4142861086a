package ui

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/aideroster/aideroster/internal/db"
	"github.com/aideroster/aideroster/internal/server"
)

func (a *App) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduling API server",
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

			mux := http.NewServeMux()
			server.New(repo).Routes(mux)

			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s (db: %s)\n", addr, a.cfg.Storage.DBPath)
			return http.ListenAndServe(addr, mux)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", a.cfg.Server.Addr, "listen address")
	return cmd
}
