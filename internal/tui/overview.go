package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/service"
)

const overviewRecentDays = 5

type overviewModel struct {
	ctx    context.Context
	svc    *service.Service
	width  int
	height int

	stats    activity.Statistics
	markers  activity.MarkerBook
	overlaps []activity.Overlap
	err      error
}

func newOverviewModel(ctx context.Context, svc *service.Service) overviewModel {
	return overviewModel{ctx: ctx, svc: svc}
}

func (o *overviewModel) setSize(w, h int) {
	o.width = w
	o.height = h
}

type overviewDataMsg struct {
	stats    activity.Statistics
	markers  activity.MarkerBook
	overlaps []activity.Overlap
	err      error
}

func (o overviewModel) loadData() tea.Cmd {
	return func() tea.Msg {
		stats, err := o.svc.Statistics(o.ctx, activity.Filters{})
		if err != nil {
			return overviewDataMsg{err: err}
		}
		markers, err := o.svc.Markers(o.ctx)
		if err != nil {
			return overviewDataMsg{err: err}
		}
		overlaps, err := o.svc.Overlaps(o.ctx)
		return overviewDataMsg{stats: stats, markers: markers, overlaps: overlaps, err: err}
	}
}

func (o overviewModel) update(msg tea.Msg) (overviewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewDataMsg:
		o.err = msg.err
		if msg.err == nil {
			o.stats = msg.stats
			o.markers = msg.markers
			o.overlaps = msg.overlaps
		}
	case activitiesChangedMsg:
		return o, o.loadData()
	}
	return o, nil
}

func (o overviewModel) view() string {
	if o.width < 20 {
		return "Terminal too small"
	}
	w := o.width - 4

	if o.err != nil {
		return panelStyle.Width(w).Render(errorStyle.Render("Erro: " + o.err.Error()))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		o.renderTotals(w),
		o.renderMarkers(w),
		o.renderOverlaps(w),
	)
}

func (o overviewModel) renderTotals(w int) string {
	if o.stats.TotalActivities == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Resumo"),
			mutedStyle.Render("Nenhuma atividade. Pressione 2 e depois i para importar relatórios."),
		)
		return panelStyle.Width(w).Render(content)
	}

	total := totalStyle.Render(o.stats.TotalHoursFormatted)
	line := fmt.Sprintf("%s  %d atividades em %d dias, média %.2fh/dia",
		total, o.stats.TotalActivities, o.stats.UniqueDates, o.stats.AverageHoursPerDay)

	rows := []string{titleStyle.Render("Resumo"), line}
	if o.stats.WithWarnings > 0 {
		rows = append(rows, warningStyle.Render(fmt.Sprintf("⚠ %d atividades com avisos", o.stats.WithWarnings)))
	} else {
		rows = append(rows, successStyle.Render("✓ nenhum aviso"))
	}
	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// renderMarkers shows the most recent days that carry markers.
func (o overviewModel) renderMarkers(w int) string {
	title := titleStyle.Render("Marcadores do dia")
	dates := o.markers.Dates()
	if len(dates) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nenhum marcador registrado"),
		))
	}
	if len(dates) > overviewRecentDays {
		dates = dates[len(dates)-overviewRecentDays:]
	}

	rows := []string{title}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-7s %-7s %-7s %-7s %s",
		"Data", "Início", "Almoço", "Retorno", "Fim", "Total")))
	for _, d := range dates {
		m := o.markers[d]
		total, ok := m.Total()
		if !ok {
			total = "-"
		}
		rows = append(rows, fmt.Sprintf("  %-12s %-7s %-7s %-7s %-7s %s",
			d, m.StartOrDefault(), orDash(m.Lunch), orDash(m.Return), orDash(m.End), highlightStyle.Render(total)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (o overviewModel) renderOverlaps(w int) string {
	title := titleStyle.Render("Sobreposições")
	if len(o.overlaps) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			successStyle.Render("Nenhuma sobreposição"),
		))
	}

	rows := []string{title}
	for _, ov := range o.overlaps {
		rows = append(rows, warningStyle.Render(fmt.Sprintf("  %s  %s-%s %s  ×  %s-%s %s",
			ov.First.DateString(),
			ov.First.StartTime(), ov.First.EndTime(), truncate(ov.First.Task(), 24),
			ov.Second.StartTime(), ov.Second.EndTime(), truncate(ov.Second.Task(), 24),
		)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
