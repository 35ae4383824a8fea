package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/service"
	"github.com/sadopc/timesheet/internal/timecalc"
)

type formKind string

const (
	formNew    formKind = "new"
	formEdit   formKind = "edit"
	formImport formKind = "import"
)

type activitiesModel struct {
	ctx    context.Context
	svc    *service.Service
	width  int
	height int

	activities   []*activity.Activity
	cursor       int
	offset       int
	onlyWarnings bool

	formActive bool
	form       *huh.Form
	formKind   formKind

	// Form field pointers (survive value copies)
	formDate     *string
	formStart    *string
	formDuration *string
	formTask     *string
	formPaths    *string

	editingID string
}

func newActivitiesModel(ctx context.Context, svc *service.Service) activitiesModel {
	date, start, dur, task, paths := "", "", "", "", ""
	return activitiesModel{
		ctx:          ctx,
		svc:          svc,
		formDate:     &date,
		formStart:    &start,
		formDuration: &dur,
		formTask:     &task,
		formPaths:    &paths,
	}
}

func (m *activitiesModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type activitiesDataMsg struct {
	activities []*activity.Activity
	err        error
}

func (m activitiesModel) refresh() tea.Cmd {
	opts := service.ListOptions{Filters: activity.Filters{WithWarnings: m.onlyWarnings}}
	return func() tea.Msg {
		list, err := m.svc.List(m.ctx, opts)
		return activitiesDataMsg{activities: list, err: err}
	}
}

func (m activitiesModel) selected() *activity.Activity {
	if m.cursor < 0 || m.cursor >= len(m.activities) {
		return nil
	}
	return m.activities[m.cursor]
}

func (m activitiesModel) update(msg tea.Msg) (activitiesModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case activitiesDataMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return errStatus("Erro ao carregar", msg.err) }
		}
		m.activities = msg.activities
		if m.cursor >= len(m.activities) {
			m.cursor = max(0, len(m.activities)-1)
		}
		m.clampOffset()
		return m, nil

	case activitiesChangedMsg:
		return m, m.refresh()

	case tea.KeyMsg:
		return m.updateList(msg)
	}
	return m, nil
}

func (m activitiesModel) updateList(msg tea.KeyMsg) (activitiesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.clampOffset()
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.activities)-1 {
			m.cursor++
		}
		m.clampOffset()
	case key.Matches(msg, keys.Warnings):
		m.onlyWarnings = !m.onlyWarnings
		m.cursor, m.offset = 0, 0
		return m, m.refresh()
	case key.Matches(msg, keys.New):
		return m.showNewForm()
	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
		if m.selected() != nil {
			return m.showEditForm()
		}
	case key.Matches(msg, keys.Import):
		return m.showImportForm()
	case key.Matches(msg, keys.Delete):
		if a := m.selected(); a != nil {
			return m, m.deleteCmd(a.ID())
		}
	}
	return m, nil
}

// visibleRows is how many list rows fit in the panel.
func (m activitiesModel) visibleRows() int {
	return max(m.height-12, 3)
}

func (m *activitiesModel) clampOffset() {
	n := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+n {
		m.offset = m.cursor - n + 1
	}
	m.offset = max(m.offset, 0)
}

func validTime(s string) error {
	if !timecalc.IsValid(strings.TrimSpace(s)) {
		return fmt.Errorf("use H:MM, e.g. 9:00")
	}
	return nil
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func (m activitiesModel) showNewForm() (activitiesModel, tea.Cmd) {
	*m.formDate = ""
	if a := m.selected(); a != nil {
		*m.formDate = a.DateString()
	}
	*m.formStart = "8:00"
	*m.formDuration = "1:00"
	*m.formTask = ""
	m.formKind = formNew

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Data (AAAA-MM-DD)").Value(m.formDate).Validate(notEmpty),
			huh.NewInput().Title("Início (H:MM)").Value(m.formStart).Validate(validTime),
			huh.NewInput().Title("Duração (H:MM, 1.5 ou 1,5)").Value(m.formDuration).Validate(notEmpty),
			huh.NewInput().Title("Tarefa").Value(m.formTask).Validate(notEmpty),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m activitiesModel) showEditForm() (activitiesModel, tea.Cmd) {
	a := m.selected()
	*m.formTask = a.Task()
	*m.formDuration = a.Duration()
	m.formKind = formEdit
	m.editingID = a.ID()

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Tarefa").Value(m.formTask).Validate(notEmpty),
			huh.NewInput().Title("Duração").Value(m.formDuration).Validate(notEmpty),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m activitiesModel) showImportForm() (activitiesModel, tea.Cmd) {
	*m.formPaths = ""
	m.formKind = formImport

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Arquivos (CSV, XLSX ou PDF), um por linha").
				Value(m.formPaths).
				Validate(notEmpty),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m activitiesModel) updateForm(msg tea.Msg) (activitiesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		switch m.formKind {
		case formNew:
			return m, m.addCmd(activity.Params{
				Date:      strings.TrimSpace(*m.formDate),
				StartTime: strings.TrimSpace(*m.formStart),
				Duration:  *m.formDuration,
				Task:      *m.formTask,
			})
		case formEdit:
			return m, m.editCmd(m.editingID, *m.formTask, *m.formDuration)
		case formImport:
			return m, m.importCmd(splitPaths(*m.formPaths))
		}
	}

	return m, cmd
}

func (m activitiesModel) addCmd(p activity.Params) tea.Cmd {
	return func() tea.Msg {
		a, err := m.svc.Add(m.ctx, p)
		if err != nil {
			return errStatus("Erro ao criar", err)
		}
		return activitiesChangedMsg{status: fmt.Sprintf("Atividade criada: %s %s-%s", a.DateString(), a.StartTime(), a.EndTime())}
	}
}

func (m activitiesModel) editCmd(id, task, duration string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.svc.UpdateTask(m.ctx, id, task); err != nil {
			return errStatus("Erro ao editar", err)
		}
		a, err := m.svc.UpdateDuration(m.ctx, id, duration)
		if err != nil {
			return errStatus("Erro ao editar", err)
		}
		return activitiesChangedMsg{status: fmt.Sprintf("Atividade atualizada: %s %s", a.Duration(), truncate(a.Task(), 40))}
	}
}

func (m activitiesModel) deleteCmd(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.svc.Delete(m.ctx, id); err != nil {
			return errStatus("Erro ao remover", err)
		}
		return activitiesChangedMsg{status: "Atividade removida"}
	}
}

func (m activitiesModel) importCmd(paths []string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.ImportPaths(m.ctx, paths, "")
		if err != nil {
			return errStatus("Erro na importação", err)
		}
		if !res.Success {
			return statusMsg{text: res.Message}
		}
		status := res.Message
		if res.WithWarnings > 0 {
			status += fmt.Sprintf(" (%d com avisos)", res.WithWarnings)
		}
		return activitiesChangedMsg{status: status}
	}
}

// splitPaths accepts one path per line or a comma separated list.
func splitPaths(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (m activitiesModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := "Nova atividade"
		switch m.formKind {
		case formEdit:
			title = "Editar atividade"
		case formImport:
			title = "Importar relatórios"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	return m.renderList(w)
}

func (m activitiesModel) renderList(w int) string {
	title := titleStyle.Render("Atividades")
	if m.onlyWarnings {
		title += warningStyle.Render("  (somente com avisos)")
	}

	if len(m.activities) == 0 {
		hint := "Nenhuma atividade. Pressione i para importar ou n para criar."
		if m.onlyWarnings {
			hint = "Nenhuma atividade com avisos."
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render(hint)))
	}

	taskWidth := max(w-48, 10)
	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-10s %-6s %-6s %-7s %s",
		"Data", "Início", "Fim", "Duração", "Tarefa")))

	end := min(m.offset+m.visibleRows(), len(m.activities))
	for i := m.offset; i < end; i++ {
		a := m.activities[i]
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		row := style.Render(fmt.Sprintf("%s%-10s %-6s %-6s %-7s %s",
			cursor, a.DateString(), a.StartTime(), a.EndTime(), a.Duration(), truncate(a.Task(), taskWidth)))
		if a.HasValidationIssues() {
			row += warningStyle.Render(" ⚠")
		}
		rows = append(rows, row)
	}

	rows = append(rows, "", mutedStyle.Render(fmt.Sprintf("  %d de %d, total %s",
		m.cursor+1, len(m.activities), formatMinutes(activity.TotalMinutes(m.activities)))))

	if a := m.selected(); a != nil {
		for _, warn := range a.Warnings() {
			rows = append(rows, warningStyle.Render("  ⚠ "+warn))
		}
	}

	rows = append(rows, "", mutedStyle.Render("  i: import  n: new  e: edit  d: delete  w: warnings"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
