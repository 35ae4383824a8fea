package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timesheet/internal/cli/formatter"
	"github.com/sadopc/timesheet/internal/service"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		req    service.ExportRequest
		format string
		rate   float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export activities to XLSX, CSV or JSON",
		Long: "The XLSX workbook has three sheets: the activity list, the timesheet built from the\n" +
			"day markers, and a financial summary using the hourly_rate setting.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := service.ParseExportFormat(format)
			if err != nil {
				return err
			}
			req.Format = f
			if cmd.Flags().Changed("rate") {
				req.HourlyRate = &rate
			}
			path, err := app.Service.Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("Exportado:"), path)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&format, "format", "f", "xlsx", "Output format: xlsx, csv, json")
	f.StringVarP(&req.Path, "output", "o", "", "Output file (default lancamento-<mês>-<ano>.<ext>)")
	f.StringVar(&req.Dir, "dir", "", "Output directory (defaults to the export_dir setting)")
	f.StringVar(&req.Filters.Date, "date", "", "Date substring filter, e.g. 2025-09")
	f.StringVar(&req.Filters.Collaborator, "collaborator", "", "Collaborator filter (exact)")
	f.StringVar(&req.Company, "company", "", "Company name (defaults to the company setting)")
	f.Float64Var(&rate, "rate", 0, "Hourly rate (defaults to the hourly_rate setting)")
	return cmd
}
