package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/cli/formatter"
	"github.com/sadopc/timesheet/internal/service"
	"github.com/sadopc/timesheet/internal/timecalc"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func activityRows(list []*activity.Activity, verbose bool) [][]string {
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		task := a.Task()
		if !verbose {
			task = formatter.Truncate(task, 60)
		}
		rows = append(rows, []string{
			shortID(a.ID()),
			a.DateString(),
			a.StartTime(),
			a.EndTime(),
			a.Duration(),
			task,
			formatter.WarningMark(len(a.Warnings())),
		})
	}
	return rows
}

func newListCmd(app *App) *cobra.Command {
	var (
		opts     service.ListOptions
		sortBy   string
		desc     bool
		verbose  bool
		warnings bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored activities",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := activity.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			opts.SortBy = key
			if desc {
				opts.Order = activity.Desc
			}
			opts.Filters.WithWarnings = warnings

			list, err := app.Service.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, formatter.StyleDim.Render("Nenhuma atividade."))
				return nil
			}

			fmt.Fprint(out, formatter.RenderTable(
				[]string{"ID", "Data", "Início", "Fim", "Duração", "Tarefa", ""},
				activityRows(list, verbose),
			))
			if verbose {
				for _, a := range list {
					for _, w := range a.Warnings() {
						fmt.Fprintf(out, "%s %s\n", formatter.StyleDim.Render(shortID(a.ID())), formatter.StyleYellow.Render(w))
					}
				}
			}
			fmt.Fprintf(out, "\n%d atividades, total %s\n", len(list), timecalc.FromMinutes(activity.TotalMinutes(list)))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.From, "from", "", "First date (YYYY-MM-DD)")
	f.StringVar(&opts.To, "to", "", "Last date (YYYY-MM-DD)")
	f.StringVar(&opts.Filters.Date, "date", "", "Date substring filter, e.g. 2025-09")
	f.StringVar(&opts.Filters.Task, "task", "", "Task substring filter (case-insensitive)")
	f.StringVar(&opts.Filters.Collaborator, "collaborator", "", "Collaborator filter (exact)")
	f.StringVar(&sortBy, "sort", "date", "Sort key: date, start, duration, task")
	f.BoolVar(&desc, "desc", false, "Descending order")
	f.BoolVar(&warnings, "warnings", false, "Only activities with warnings")
	f.BoolVarP(&verbose, "verbose", "v", false, "Full task text and warning details")
	return cmd
}

func newAddCmd(app *App) *cobra.Command {
	var p activity.Params

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an activity by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Service.Add(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Atividade %s criada: %s %s-%s %s\n",
				shortID(a.ID()), a.DateString(), a.StartTime(), a.EndTime(), a.Task())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.Date, "date", "", "Date (YYYY-MM-DD)")
	f.StringVar(&p.StartTime, "start", "", "Start time (H:MM)")
	f.StringVar(&p.Duration, "duration", "", "Duration (H:MM, 1.5, 1,5 or 2)")
	f.StringVar(&p.Task, "task", "", "Task description")
	f.StringVar(&p.Collaborator, "collaborator", "", "Collaborator (defaults to the collaborator setting)")
	for _, name := range []string{"date", "start", "duration", "task"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var task, duration string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the task text or duration of an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if task == "" && duration == "" {
				return fmt.Errorf("nothing to change: pass --task or --duration")
			}
			ctx := cmd.Context()
			var (
				a   *activity.Activity
				err error
			)
			if task != "" {
				if a, err = app.Service.UpdateTask(ctx, args[0], task); err != nil {
					return err
				}
			}
			if duration != "" {
				if a, err = app.Service.UpdateDuration(ctx, args[0], duration); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Atividade %s atualizada: %s %s\n", shortID(a.ID()), a.Duration(), a.Task())
			return nil
		},
	}

	cmd.Flags().StringVar(&task, "task", "", "New task description")
	cmd.Flags().StringVar(&duration, "duration", "", "New duration")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete one activity",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Service.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Atividade %s removida\n", args[0])
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every activity and day marker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear without --yes")
			}
			if err := app.Service.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Todas as atividades foram removidas")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}
