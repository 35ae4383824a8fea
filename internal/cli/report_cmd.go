package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/cli/formatter"
)

func newStatsCmd(app *App) *cobra.Command {
	var f activity.Filters

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals for the stored activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Service.Statistics(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.RenderPairs([][2]string{
				{"Atividades", fmt.Sprintf("%d", st.TotalActivities)},
				{"Total", st.TotalHoursFormatted},
				{"Horas", fmt.Sprintf("%.2f", st.TotalHours)},
				{"Dias", fmt.Sprintf("%d", st.UniqueDates)},
				{"Média/dia", fmt.Sprintf("%.2f h", st.AverageHoursPerDay)},
				{"Com avisos", fmt.Sprintf("%d", st.WithWarnings)},
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&f.Date, "date", "", "Date substring filter, e.g. 2025-09")
	cmd.Flags().StringVar(&f.Collaborator, "collaborator", "", "Collaborator filter (exact)")
	return cmd
}

func newOverlapsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overlaps",
		Short: "List same-day activities that overlap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			overlaps, err := app.Service.Overlaps(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(overlaps) == 0 {
				fmt.Fprintln(out, formatter.StyleGreen.Render("Nenhuma sobreposição."))
				return nil
			}
			rows := make([][]string, 0, len(overlaps))
			for _, o := range overlaps {
				rows = append(rows, []string{
					o.First.DateString(),
					fmt.Sprintf("%s-%s", o.First.StartTime(), o.First.EndTime()),
					formatter.Truncate(o.First.Task(), 40),
					fmt.Sprintf("%s-%s", o.Second.StartTime(), o.Second.EndTime()),
					formatter.Truncate(o.Second.Task(), 40),
				})
			}
			fmt.Fprint(out, formatter.RenderTable([]string{"Data", "Primeira", "Tarefa", "Segunda", "Tarefa"}, rows))
			return nil
		},
	}
}

func newMarkersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "markers",
		Short: "Show the day markers found in imported reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := app.Service.Markers(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(book) == 0 {
				fmt.Fprintln(out, formatter.StyleDim.Render("Nenhum marcador registrado."))
				return nil
			}
			dash := func(s string, ok bool) string {
				if !ok || s == "" {
					return "-"
				}
				return s
			}
			var rows [][]string
			for _, d := range book.Dates() {
				m := book[d]
				morning, okM := m.Morning()
				afternoon, okA := m.Afternoon()
				total, okT := m.Total()
				rows = append(rows, []string{
					d,
					m.StartOrDefault(),
					dash(m.Lunch, true),
					dash(m.Return, true),
					dash(m.End, true),
					dash(morning, okM),
					dash(afternoon, okA),
					dash(total, okT),
				})
			}
			fmt.Fprint(out, formatter.RenderTable(
				[]string{"Data", "Início", "Almoço", "Retorno", "Fim", "Manhã", "Tarde", "Total"}, rows))
			return nil
		},
	}
}
