package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/sadopc/timesheet/internal/config"
	"github.com/sadopc/timesheet/internal/service"
)

// App holds what the commands need. RunTUI starts the interactive UI; it
// is nil in tests.
type App struct {
	Service *service.Service
	RunTUI  func(ctx context.Context) error
}

// NewRootCmd creates the top-level "timesheet" command. Without a
// subcommand it opens the TUI.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "timesheet",
		Short:         "Rebuild daily timesheets from time tracker reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.RunTUI == nil {
				return cmd.Help()
			}
			return app.RunTUI(cmd.Context())
		},
	}

	root.AddCommand(
		newImportCmd(app),
		newListCmd(app),
		newStatsCmd(app),
		newOverlapsCmd(app),
		newMarkersCmd(app),
		newAddCmd(app),
		newEditCmd(app),
		newDeleteCmd(app),
		newClearCmd(app),
		newExportCmd(app),
		newSettingsCmd(app),
		newTUICmd(app),
		newEnvCmd(),
	)

	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context, app *App, args []string) error {
	root := NewRootCmd(app)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.RunTUI == nil {
				return cmd.Help()
			}
			return app.RunTUI(cmd.Context())
		},
	}
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the TIMESHEET_* environment variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Usage(cmd.OutOrStdout())
		},
	}
}
