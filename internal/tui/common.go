package tui

import (
	"fmt"

	"github.com/sadopc/timesheet/internal/timecalc"
)

// viewState represents the currently active view.
type viewState int

const (
	viewOverview viewState = iota
	viewActivities
	viewReports
	viewSettings
)

var viewNames = []string{"Resumo", "Atividades", "Relatórios", "Configurações"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// activitiesChangedMsg tells every view to reload after a write.
type activitiesChangedMsg struct {
	status string
}

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
}

// --- Helpers ---

func formatMinutes(total int) string {
	return timecalc.FromMinutes(total)
}

func formatHours(total int) string {
	return fmt.Sprintf("%.1fh", float64(total)/60)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
