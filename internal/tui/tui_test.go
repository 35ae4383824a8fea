package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/parser"
	"github.com/sadopc/timesheet/internal/service"
	"github.com/sadopc/timesheet/internal/store"
)

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	log := zerolog.Nop()
	return service.New(s,
		parser.NewTableParser(log),
		parser.NewPDFParser(parser.Period{Year: 2025, Month: time.September}, log),
		log,
		service.WithCollaborator("Ana"),
	)
}

func mustAdd(t *testing.T, svc *service.Service, date, start, dur, task string) *activity.Activity {
	t.Helper()
	a, err := svc.Add(context.Background(), activity.Params{Date: date, StartTime: start, Duration: dur, Task: task})
	if err != nil {
		t.Fatalf("add %s %s: %v", date, start, err)
	}
	return a
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0:00"},
		{90, "1:30"},
		{605, "10:05"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.in); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatHours(t *testing.T) {
	if got := formatHours(90); got != "1.5h" {
		t.Fatalf("formatHours(90) = %q", got)
	}
	if got := formatHours(0); got != "0.0h" {
		t.Fatalf("formatHours(0) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Desenvolvimento", 5); got != "Dese…" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("curto", 10); got != "curto" {
		t.Fatalf("got %q", got)
	}
	if got := truncate("ação", 4); got != "ação" {
		t.Fatalf("multibyte text within width was cut: %q", got)
	}
}

func TestSplitPaths(t *testing.T) {
	got := splitPaths(" a.csv\nb.xlsx, c.pdf \n\n")
	want := []string{"a.csv", "b.xlsx", "c.pdf"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if len(splitPaths("  ")) != 0 {
		t.Fatal("blank input should yield no paths")
	}
}

func TestValidTime(t *testing.T) {
	if validTime("9:00") != nil {
		t.Fatal("9:00 should be valid")
	}
	if validTime("9h") == nil {
		t.Fatal("9h should be rejected")
	}
}

// ============================================================
// Activities model
// ============================================================

func loadActivities(t *testing.T, m activitiesModel) activitiesModel {
	t.Helper()
	m, _ = m.update(m.refresh()())
	return m
}

func TestActivitiesRefreshAndCursor(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, "2025-09-01", "8:00", "1:00", "a")
	mustAdd(t, svc, "2025-09-01", "9:00", "1:00", "b")
	mustAdd(t, svc, "2025-09-02", "8:00", "2:00", "c")

	m := loadActivities(t, newActivitiesModel(context.Background(), svc))
	if len(m.activities) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(m.activities))
	}
	if m.selected().Task() != "a" {
		t.Fatalf("first selected should be a, got %q", m.selected().Task())
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Fatalf("cursor should stop at the last row, got %d", m.cursor)
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyUp})
	if m.selected().Task() != "b" {
		t.Fatalf("expected b, got %q", m.selected().Task())
	}
}

func TestActivitiesWarningsToggle(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, "2025-09-01", "8:00", "1:00", "a")

	m := loadActivities(t, newActivitiesModel(context.Background(), svc))
	m, cmd := m.update(keyRune('w'))
	if !m.onlyWarnings {
		t.Fatal("w should enable the warnings filter")
	}
	if cmd == nil {
		t.Fatal("toggling the filter should reload")
	}
	m, _ = m.update(cmd())
	if len(m.activities) != 0 {
		t.Fatalf("no activity has warnings, got %d", len(m.activities))
	}
	if !containsString(m.view(), "Nenhuma atividade com avisos.") {
		t.Fatal("empty filtered view should say so")
	}
}

func TestActivitiesForms(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, "2025-09-01", "8:00", "1:00", "a")
	m := loadActivities(t, newActivitiesModel(context.Background(), svc))

	m, _ = m.update(keyRune('n'))
	if !m.formActive || m.formKind != formNew {
		t.Fatal("n should open the new activity form")
	}
	if *m.formDate != "2025-09-01" {
		t.Fatalf("new form should default to the selected date, got %q", *m.formDate)
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.formActive {
		t.Fatal("esc should close the form")
	}

	m, _ = m.update(keyRune('e'))
	if m.formKind != formEdit || *m.formTask != "a" || *m.formDuration != "1:00" {
		t.Fatal("edit form should be filled from the selected activity")
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})

	m, _ = m.update(keyRune('i'))
	if m.formKind != formImport {
		t.Fatal("i should open the import form")
	}
}

func TestActivitiesAddEditDeleteCmds(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m := newActivitiesModel(ctx, svc)

	msg := m.addCmd(activity.Params{Date: "2025-09-03", StartTime: "9:00", Duration: "1,5", Task: "manual"})()
	changed, ok := msg.(activitiesChangedMsg)
	if !ok {
		t.Fatalf("expected activitiesChangedMsg, got %T", msg)
	}
	if !containsString(changed.status, "9:00-10:30") {
		t.Fatalf("status = %q", changed.status)
	}

	list, _ := svc.List(ctx, service.ListOptions{})
	id := list[0].ID()

	msg = m.editCmd(id, "editada", "2")()
	if _, ok := msg.(activitiesChangedMsg); !ok {
		t.Fatalf("edit: expected activitiesChangedMsg, got %#v", msg)
	}
	a, _ := svc.Get(ctx, id)
	if a.Task() != "editada" || a.Duration() != "2:00" {
		t.Fatalf("edit not stored: %s %s", a.Task(), a.Duration())
	}

	msg = m.deleteCmd(id)()
	if _, ok := msg.(activitiesChangedMsg); !ok {
		t.Fatalf("delete: expected activitiesChangedMsg, got %#v", msg)
	}
	msg = m.deleteCmd(id)()
	if st, ok := msg.(statusMsg); !ok || !st.isError {
		t.Fatalf("second delete should report an error, got %#v", msg)
	}

	msg = m.addCmd(activity.Params{Date: "ontem", StartTime: "9:00", Duration: "1:00", Task: "x"})()
	if st, ok := msg.(statusMsg); !ok || !st.isError {
		t.Fatalf("bad date should report an error, got %#v", msg)
	}
}

func TestActivitiesImportCmd(t *testing.T) {
	svc := newTestService(t)
	m := newActivitiesModel(context.Background(), svc)

	dir := t.TempDir()
	path := filepath.Join(dir, "semana.csv")
	data := "Entrada de tempo,Etiquetas,2025-09-01\n" +
		"01 - 01 - Planejamento,inicio 8:00,3:00\n" +
		"01 - 02 - Revisão,,1:00\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	msg := m.importCmd([]string{path})()
	changed, ok := msg.(activitiesChangedMsg)
	if !ok {
		t.Fatalf("expected activitiesChangedMsg, got %#v", msg)
	}
	if !containsString(changed.status, "2 atividades") {
		t.Fatalf("status = %q", changed.status)
	}

	msg = m.importCmd([]string{filepath.Join(dir, "nao-existe.csv")})()
	if st, ok := msg.(statusMsg); !ok || !st.isError {
		t.Fatalf("missing file should report an error, got %#v", msg)
	}
}

// ============================================================
// Reports model
// ============================================================

func TestReportsWeekAnchor(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, "2025-09-01", "8:00", "2:00", "a")
	mustAdd(t, svc, "2025-09-03", "8:00", "1:30", "b")
	mustAdd(t, svc, "2025-08-27", "8:00", "4:00", "c")

	r := newReportsModel(context.Background(), svc)
	r.setSize(120, 40)
	r, _ = r.update(r.refresh()())

	from, to := r.dateRange()
	if got := from.Format(activity.DateLayout); got != "2025-09-01" {
		t.Fatalf("week should start on Monday 2025-09-01, got %s", got)
	}
	if got := to.Format(activity.DateLayout); got != "2025-09-08" {
		t.Fatalf("week should end before 2025-09-08, got %s", got)
	}
	if r.weekTotal() != 210 {
		t.Fatalf("week total = %d, want 210", r.weekTotal())
	}

	r, _ = r.update(tea.KeyMsg{Type: tea.KeyLeft})
	if r.offset != 1 || r.weekTotal() != 240 {
		t.Fatalf("previous week: offset %d total %d", r.offset, r.weekTotal())
	}
	r, _ = r.update(tea.KeyMsg{Type: tea.KeyRight})
	r, _ = r.update(tea.KeyMsg{Type: tea.KeyRight})
	if r.offset != 0 {
		t.Fatalf("offset should not go below 0, got %d", r.offset)
	}

	out := r.view()
	if !containsString(out, "2025-09-03") || !containsString(out, "3:30") {
		t.Fatal("report should list the week's days and total")
	}
}

func TestReportsEmpty(t *testing.T) {
	r := newReportsModel(context.Background(), newTestService(t))
	r.setSize(120, 40)
	r, _ = r.update(r.refresh()())
	if r.weekTotal() != 0 {
		t.Fatal("empty store should have a zero week")
	}
	if !containsString(r.view(), "Nenhuma atividade nesta semana") {
		t.Fatal("empty week should say so")
	}
}

// ============================================================
// Overview model
// ============================================================

func TestOverviewLoadData(t *testing.T) {
	svc := newTestService(t)
	mustAdd(t, svc, "2025-09-01", "10:00", "2:00", "a")
	mustAdd(t, svc, "2025-09-01", "11:00", "1:00", "b")

	o := newOverviewModel(context.Background(), svc)
	o.setSize(120, 40)
	o, _ = o.update(o.loadData()())

	if o.stats.TotalActivities != 2 || o.stats.TotalHoursFormatted != "3:00" {
		t.Fatalf("stats = %+v", o.stats)
	}
	if len(o.overlaps) != 1 {
		t.Fatalf("expected 1 overlap, got %d", len(o.overlaps))
	}
	if !containsString(o.view(), "Sobreposições") {
		t.Fatal("overview should render the overlaps panel")
	}
}

func TestOverviewEmpty(t *testing.T) {
	o := newOverviewModel(context.Background(), newTestService(t))
	o.setSize(120, 40)
	o, _ = o.update(o.loadData()())
	out := o.view()
	if !containsString(out, "Nenhuma atividade") || !containsString(out, "Nenhum marcador registrado") {
		t.Fatal("empty overview should show hints")
	}
}

// ============================================================
// Settings model
// ============================================================

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		k, v, want string
	}{
		{store.SettingHourlyRate, "85.5", "R$ 85.50"},
		{store.SettingExportDir, "", "(diretório atual)"},
		{store.SettingCompany, "", "-"},
		{store.SettingCollaborator, "Ana", "Ana"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.k, tt.v); got != tt.want {
			t.Errorf("formatSettingValue(%q, %q) = %q, want %q", tt.k, tt.v, got, tt.want)
		}
	}
}

func TestValidRate(t *testing.T) {
	for _, ok := range []string{"", "80", "85,5", " 10.25 "} {
		if validRate(ok) != nil {
			t.Errorf("%q should be accepted", ok)
		}
	}
	for _, bad := range []string{"-1", "muito"} {
		if validRate(bad) == nil {
			t.Errorf("%q should be rejected", bad)
		}
	}
}

func TestSettingsSave(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	s := newSettingsModel(ctx, svc)
	s, _ = s.update(s.refresh()())
	if len(s.settings) != 4 {
		t.Fatalf("expected 4 settings, got %d", len(s.settings))
	}

	*s.collaborator = "Bia"
	*s.company = "ACME"
	*s.hourlyRate = "85,5"
	*s.exportDir = ""
	s, _ = s.update(s.saveSettings()())

	if s.getVal(store.SettingHourlyRate) != "85.5" {
		t.Fatalf("hourly_rate = %q", s.getVal(store.SettingHourlyRate))
	}
	if v, _ := svc.Setting(ctx, store.SettingCompany); v != "ACME" {
		t.Fatalf("company = %q", v)
	}
	if svc.Collaborator(ctx) != "Bia" {
		t.Fatalf("collaborator = %q", svc.Collaborator(ctx))
	}

	*s.hourlyRate = "-3"
	msg := s.saveSettings()()
	if st, ok := msg.(statusMsg); !ok || !st.isError {
		t.Fatalf("negative rate should report an error, got %#v", msg)
	}
}

// ============================================================
// App model
// ============================================================

func newTestApp(t *testing.T) App {
	t.Helper()
	app := NewApp(context.Background(), newTestService(t))
	app.width = 120
	app.height = 40
	return app
}

func TestNewApp(t *testing.T) {
	app := NewApp(context.Background(), newTestService(t))

	if app.activeView != viewOverview {
		t.Fatal("default view should be overview")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	app := newTestApp(t)

	for i := range viewNames {
		app.activeView = viewState(i)
		if app.View() == "" {
			t.Fatalf("view %d rendered empty", i)
		}
	}
}

func TestAppTabCycles(t *testing.T) {
	app := newTestApp(t)
	for range viewNames {
		m, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
		app = m.(App)
	}
	if app.activeView != viewOverview {
		t.Fatalf("tab should wrap around, got %d", app.activeView)
	}

	m, _ := app.Update(keyRune('3'))
	if m.(App).activeView != viewReports {
		t.Fatal("3 should open reports")
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	header := newTestApp(t).renderHeader()
	for _, name := range viewNames {
		if !containsString(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	app := NewApp(context.Background(), newTestService(t))
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppStatusMessage(t *testing.T) {
	app := newTestApp(t)
	m, _ := app.Update(statusMsg{text: "test status", isError: true})
	app = m.(App)
	if !app.statusIsError {
		t.Fatal("error flag should be kept")
	}
	if !containsString(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppExportPicker(t *testing.T) {
	app := newTestApp(t)

	m, _ := app.Update(keyRune('x'))
	app = m.(App)
	if !app.exportPicking {
		t.Fatal("x should open the export picker")
	}
	if !containsString(app.View(), "xlsx") {
		t.Fatal("picker should list xlsx")
	}
	for i := 0; i < 5; i++ {
		m, _ = app.Update(tea.KeyMsg{Type: tea.KeyDown})
		app = m.(App)
	}
	if app.exportCursor != len(exportFormats)-1 {
		t.Fatalf("cursor should stop at the last format, got %d", app.exportCursor)
	}
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(App).exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestAppExportEmptyReportsError(t *testing.T) {
	app := newTestApp(t)
	msg := app.doExport(service.FormatXLSX)()
	st, ok := msg.(statusMsg)
	if !ok || !st.isError {
		t.Fatalf("exporting nothing should fail, got %#v", msg)
	}
	if !containsString(st.text, "Não há atividades para exportar") {
		t.Fatalf("status = %q", st.text)
	}
}

func TestAppExportWritesFile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	dir := t.TempDir()
	if err := svc.SetSetting(ctx, store.SettingExportDir, dir); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, svc, "2025-09-01", "8:00", "1:00", "a")

	app := NewApp(ctx, svc)
	msg := app.doExport(service.FormatCSV)()
	done, ok := msg.(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %#v", msg)
	}
	if done.path != filepath.Join(dir, "lancamento-setembro-2025.csv") {
		t.Fatalf("path = %q", done.path)
	}
	if _, err := os.Stat(done.path); err != nil {
		t.Fatal(err)
	}
}

func TestAppActivitiesChangedReloads(t *testing.T) {
	app := newTestApp(t)
	m, cmd := app.Update(activitiesChangedMsg{status: "Atividade removida"})
	app = m.(App)
	if app.status != "Atividade removida" {
		t.Fatalf("status = %q", app.status)
	}
	if cmd == nil {
		t.Fatal("a change should trigger reloads")
	}
}

// containsString reports whether s contains substr.
func containsString(s, substr string) bool {
	return len(s) > 0 && len(substr) > 0 && strings.Contains(s, substr)
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test: they must not panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"total", func() string { return totalStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
