package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/service"
	"github.com/sadopc/timesheet/internal/store"
)

var weekdayAbbr = [...]string{"dom", "seg", "ter", "qua", "qui", "sex", "sáb"}

type reportsModel struct {
	ctx    context.Context
	svc    *service.Service
	width  int
	height int

	summaries []store.DailySummary
	byDate    map[string]store.DailySummary
	offset    int // weeks back from the latest logged week
	err       error

	chart barchart.Model
}

func newReportsModel(ctx context.Context, svc *service.Service) reportsModel {
	return reportsModel{
		ctx:    ctx,
		svc:    svc,
		byDate: map[string]store.DailySummary{},
		chart:  barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	summaries []store.DailySummary
	err       error
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		summaries, err := r.svc.DailySummaries(r.ctx, "", "")
		return reportsDataMsg{summaries: summaries, err: err}
	}
}

// anchor is the Monday of the latest week with activities, or of the
// current week when nothing is logged.
func (r reportsModel) anchor() time.Time {
	day := time.Now()
	if n := len(r.summaries); n > 0 {
		if t, err := time.Parse(activity.DateLayout, r.summaries[n-1].Date); err == nil {
			day = t
		}
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, 1-weekday)
}

func (r reportsModel) dateRange() (time.Time, time.Time) {
	start := r.anchor().AddDate(0, 0, -7*r.offset)
	return start, start.AddDate(0, 0, 7)
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.err = msg.err
		if msg.err == nil {
			r.summaries = msg.summaries
			r.byDate = make(map[string]store.DailySummary, len(msg.summaries))
			for _, s := range msg.summaries {
				r.byDate[s.Date] = s
			}
		}
		r.buildChart()
		return r, nil

	case activitiesChangedMsg:
		return r, r.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			r.buildChart()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			r.buildChart()
		}
	}
	return r, nil
}

func (r reportsModel) weekTotal() int {
	from, to := r.dateRange()
	total := 0
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		total += r.byDate[d.Format(activity.DateLayout)].TotalMinutes
	}
	return total
}

func (r *reportsModel) buildChart() {
	chartWidth := max(r.width-8, 20)
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	from, to := r.dateRange()
	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		s := r.byDate[d.Format(activity.DateLayout)]
		color := colorPrimary
		switch {
		case s.TotalMinutes == 0:
			color = colorSubtle
		case s.WarningCount > 0:
			color = colorWarning
		}
		bars = append(bars, barchart.BarData{
			Label: fmt.Sprintf("%s %02d", weekdayAbbr[d.Weekday()], d.Day()),
			Values: []barchart.BarValue{{
				Name:  "horas",
				Value: float64(s.TotalMinutes) / 60,
				Style: lipgloss.NewStyle().Foreground(color),
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	if r.err != nil {
		return panelStyle.Width(w).Render(errorStyle.Render("Erro: " + r.err.Error()))
	}

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s a %s",
		from.Format("02/01"), to.AddDate(0, 0, -1).Format("02/01/2006")))
	total := highlightStyle.Render(formatMinutes(r.weekTotal()))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Horas por dia"), "  ", dateLabel, "  ", total,
	)

	nav := mutedStyle.Render("  ←/→: semana anterior/seguinte")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderSummaryTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderSummaryTable(w int) string {
	from, to := r.dateRange()
	var rows []string
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		s, ok := r.byDate[d.Format(activity.DateLayout)]
		if !ok {
			continue
		}
		warn := ""
		if s.WarningCount > 0 {
			warn = warningStyle.Render(fmt.Sprintf("  ⚠ %d", s.WarningCount))
		}
		rows = append(rows, fmt.Sprintf("  %-12s %8s %6s %10d", s.Date, formatMinutes(s.TotalMinutes), formatHours(s.TotalMinutes), s.ActivityCount)+warn)
	}
	if len(rows) == 0 {
		return mutedStyle.Render("  Nenhuma atividade nesta semana")
	}

	head := []string{
		mutedStyle.Render(fmt.Sprintf("  %-12s %8s %6s %10s", "Data", "Duração", "Horas", "Atividades")),
		mutedStyle.Render("  " + strings.Repeat("─", min(w-6, 40))),
	}
	return strings.Join(append(head, rows...), "\n")
}
