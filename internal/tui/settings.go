package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/timesheet/internal/service"
	"github.com/sadopc/timesheet/internal/store"
)

var settingLabels = map[string]string{
	store.SettingCollaborator: "Colaborador",
	store.SettingCompany:      "Empresa",
	store.SettingHourlyRate:   "Valor da hora",
	store.SettingExportDir:    "Pasta de exportação",
}

type settingsModel struct {
	ctx    context.Context
	svc    *service.Service
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	collaborator *string
	company      *string
	hourlyRate   *string
	exportDir    *string
}

func newSettingsModel(ctx context.Context, svc *service.Service) settingsModel {
	c, co, hr, ed := "", "", "", ""
	return settingsModel{
		ctx:          ctx,
		svc:          svc,
		collaborator: &c,
		company:      &co,
		hourlyRate:   &hr,
		exportDir:    &ed,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.svc.Settings(s.ctx)
		if err != nil {
			return errStatus("Erro ao carregar configurações", err)
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func validRate(v string) error {
	v = strings.Replace(strings.TrimSpace(v), ",", ".", 1)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("informe um número não negativo")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.collaborator = s.getVal(store.SettingCollaborator)
	*s.company = s.getVal(store.SettingCompany)
	*s.hourlyRate = s.getVal(store.SettingHourlyRate)
	*s.exportDir = s.getVal(store.SettingExportDir)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Colaborador").Value(s.collaborator),
			huh.NewInput().Title("Empresa").Value(s.company),
		).Title("Identificação"),
		huh.NewGroup(
			huh.NewInput().Title("Valor da hora (R$)").Value(s.hourlyRate).Validate(validRate),
			huh.NewInput().Title("Pasta de exportação").Value(s.exportDir),
		).Title("Exportação"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveSettings()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() tea.Cmd {
	values := map[string]string{
		store.SettingCollaborator: *s.collaborator,
		store.SettingCompany:      *s.company,
		store.SettingHourlyRate:   *s.hourlyRate,
		store.SettingExportDir:    *s.exportDir,
	}
	return func() tea.Msg {
		for k, v := range values {
			if err := s.svc.SetSetting(s.ctx, k, v); err != nil {
				return errStatus("Erro ao salvar", err)
			}
		}
		settings, err := s.svc.Settings(s.ctx)
		if err != nil {
			return errStatus("Erro ao carregar configurações", err)
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) getVal(k string) string {
	for _, setting := range s.settings {
		if setting.Key == k {
			return setting.Value
		}
	}
	return ""
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Configurações")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title, "")
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Pressione enter para editar"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingLabel(k string) string {
	if l, ok := settingLabels[k]; ok {
		return l
	}
	return k
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingHourlyRate:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return fmt.Sprintf("R$ %.2f", f)
		}
	case store.SettingExportDir:
		if v == "" {
			return "(diretório atual)"
		}
	}
	if v == "" {
		return "-"
	}
	return v
}
