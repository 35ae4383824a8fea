package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/sadopc/timesheet/internal/activity"
)

var csvHeader = []string{"ID", "Data", "Inicio", "Fim", "Duracao", "Minutos", "Tarefa", "Colaborador", "Avisos"}

func ToCSV(activities []*activity.Activity, path string) error {
	if len(activities) == 0 {
		return ErrNoActivities
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, a := range activity.SortChronologically(activities) {
		row := []string{
			a.ID(),
			a.DateString(),
			a.StartTime(),
			a.EndTime(),
			a.Duration(),
			fmt.Sprintf("%d", a.DurationMinutes()),
			a.Task(),
			a.Collaborator(),
			strings.Join(a.Warnings(), " | "),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
