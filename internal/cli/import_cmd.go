package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timesheet/internal/cli/formatter"
)

func newImportCmd(app *App) *cobra.Command {
	var collaborator string

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import CSV, XLSX or PDF reports as one batch",
		Long: "Import parses every file in order and stores the result only when all of them succeed.\n" +
			"CSV and XLSX reports carry day markers in the Etiquetas column; PDF reports start each day at 8:00.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Service.ImportPaths(cmd.Context(), args, collaborator)
			out := cmd.OutOrStdout()
			if err != nil {
				return err
			}
			if !res.Success {
				fmt.Fprintln(out, formatter.StyleYellow.Render(res.Message))
				return nil
			}
			fmt.Fprintln(out, formatter.StyleGreen.Render(res.Message))
			if res.WithWarnings > 0 {
				fmt.Fprintf(out, "%s %d atividades com avisos (timesheet list --warnings)\n",
					formatter.WarningMark(res.WithWarnings), res.WithWarnings)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&collaborator, "collaborator", "c", "", "Collaborator name (defaults to the collaborator setting)")
	return cmd
}
