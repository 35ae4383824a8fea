package export

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/timecalc"
)

var ErrNoActivities = errors.New("Não há atividades para exportar")

const (
	sheetActivities = "Atividades"
	sheetTimesheet  = "Lancto Horas"
	sheetFinancial  = "Resumo Financeiro"

	timesheetFirstRow = 8

	colorHeader = "3B505A"
	colorZebra  = "FEF9E7"
	colorTotal  = "F4B942"
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// WorkbookOptions fills the header cells of the timesheet and the
// financial summary.
type WorkbookOptions struct {
	Collaborator string
	Company      string
	HourlyRate   float64
}

// FileName is lancamento-<month>-<year>.<ext> for the earliest activity.
func FileName(activities []*activity.Activity, ext string) string {
	d := time.Now()
	if len(activities) > 0 {
		d = activity.SortChronologically(activities)[0].Date()
	}
	return fmt.Sprintf("lancamento-%s-%d.%s", monthNames[d.Month()-1], d.Year(), ext)
}

// ToXLSX renders the workbook and saves it at path.
func ToXLSX(activities []*activity.Activity, markers activity.MarkerBook, opts WorkbookOptions, path string) error {
	f, err := BuildWorkbook(activities, markers, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("write xlsx file: %w", err)
	}
	return nil
}

// BuildWorkbook renders the activity list, the per-day timesheet and the
// financial summary. Markers are read, never modified.
func BuildWorkbook(activities []*activity.Activity, markers activity.MarkerBook, opts WorkbookOptions) (*excelize.File, error) {
	if len(activities) == 0 {
		return nil, ErrNoActivities
	}

	sorted := activity.SortChronologically(activities)
	if opts.Collaborator == "" {
		opts.Collaborator = sorted[0].Collaborator()
	}
	if opts.Company == "" {
		opts.Company = opts.Collaborator
	}

	w := &workbook{f: excelize.NewFile(), markers: markers}
	if err := w.styles(); err != nil {
		w.f.Close()
		return nil, err
	}

	first := sorted[0].Date()
	period := fmt.Sprintf("%d/%d", int(first.Month()), first.Year())

	steps := []func() error{
		func() error { return w.activitiesSheet(sorted) },
		func() error { return w.timesheetSheet(sorted, period, opts) },
		func() error { return w.financialSheet(period, opts) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			w.f.Close()
			return nil, err
		}
	}

	// NewFile starts with Sheet1.
	if err := w.f.DeleteSheet("Sheet1"); err != nil {
		w.f.Close()
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	if idx, err := w.f.GetSheetIndex(sheetActivities); err == nil {
		w.f.SetActiveSheet(idx)
	}
	return w.f, nil
}

type workbook struct {
	f       *excelize.File
	markers activity.MarkerBook

	lastTimesheetRow int

	title, bold, header, zebra, date, weekday, clock, money, number, total int
}

func (w *workbook) styles() error {
	defs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&w.title, &excelize.Style{Font: &excelize.Font{Bold: true, Size: 14, Color: colorHeader}}},
		{&w.bold, &excelize.Style{Font: &excelize.Font{Bold: true}}},
		{&w.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorHeader}},
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
			Border:    thinBorder("000000"),
		}},
		{&w.zebra, &excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorZebra}},
			Border: thinBorder("D3D3D3"),
		}},
		{&w.date, &excelize.Style{CustomNumFmt: lo.ToPtr("dd/mm/yyyy"), Border: thinBorder("D3D3D3")}},
		{&w.weekday, &excelize.Style{CustomNumFmt: lo.ToPtr("dd/mm/yy, ddd")}},
		{&w.clock, &excelize.Style{CustomNumFmt: lo.ToPtr("h:mm")}},
		{&w.money, &excelize.Style{
			CustomNumFmt: lo.ToPtr("R$ #,##0.00"),
			Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorZebra}},
		}},
		{&w.number, &excelize.Style{
			CustomNumFmt: lo.ToPtr("#,##0.00"),
			Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorZebra}},
		}},
		{&w.total, &excelize.Style{
			Font:         &excelize.Font{Bold: true},
			CustomNumFmt: lo.ToPtr("R$ #,##0.00"),
			Fill:         excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{colorTotal}},
		}},
	}
	for _, d := range defs {
		id, err := w.f.NewStyle(d.style)
		if err != nil {
			return fmt.Errorf("create style: %w", err)
		}
		*d.dst = id
	}
	return nil
}

func thinBorder(color string) []excelize.Border {
	return lo.Map([]string{"left", "top", "right", "bottom"}, func(side string, _ int) excelize.Border {
		return excelize.Border{Type: side, Color: color, Style: 1}
	})
}

func cell(col string, row int) string {
	return col + strconv.Itoa(row)
}

// clockValue is the Excel day fraction of an H:MM string.
func clockValue(hm string) (float64, error) {
	m, err := timecalc.ToMinutes(hm)
	if err != nil {
		return 0, err
	}
	return float64(m) / 1440, nil
}

func (w *workbook) setCells(sheet string, values map[string]any) error {
	for ref, v := range values {
		if err := w.f.SetCellValue(sheet, ref, v); err != nil {
			return fmt.Errorf("%s!%s: %w", sheet, ref, err)
		}
	}
	return nil
}

func (w *workbook) setWidths(sheet string, widths map[string]float64) error {
	for col, width := range widths {
		if err := w.f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func (w *workbook) activitiesSheet(list []*activity.Activity) error {
	const sheet = sheetActivities
	if _, err := w.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	if err := w.f.SetCellValue(sheet, "A1", "Lista de Atividades Completas"); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", "A1", w.title); err != nil {
		return err
	}
	if err := w.f.MergeCell(sheet, "A1", "F1"); err != nil {
		return err
	}

	header := []any{"Colaborador", "Data Início", "Hora inicio", "Hora fim", "Tempo", "Tarefa"}
	if err := w.f.SetSheetRow(sheet, "A3", &header); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A3", "F3", w.header); err != nil {
		return err
	}

	for i, a := range list {
		r := 4 + i
		row := []any{a.Collaborator(), a.Date(), a.StartTime(), a.EndTime(), a.Duration(), a.Task()}
		if err := w.f.SetSheetRow(sheet, cell("A", r), &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, r, err)
		}
		if i%2 == 0 {
			if err := w.f.SetCellStyle(sheet, cell("A", r), cell("F", r), w.zebra); err != nil {
				return err
			}
		}
		if err := w.f.SetCellStyle(sheet, cell("B", r), cell("B", r), w.date); err != nil {
			return err
		}
	}

	return w.setWidths(sheet, map[string]float64{"A": 20, "B": 15, "C": 12, "D": 12, "E": 10, "F": 60})
}

func (w *workbook) infoHeader(sheet, title, period string, opts WorkbookOptions) error {
	if err := w.setCells(sheet, map[string]any{
		"A1": title,
		"A2": "Periodo:", "B2": period,
		"A3": "Profissional:", "B3": opts.Collaborator,
		"A4": "Empresa:", "B4": opts.Company,
	}); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A1", "A1", w.title); err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, "A2", "A4", w.bold)
}

func (w *workbook) timesheetSheet(list []*activity.Activity, period string, opts WorkbookOptions) error {
	const sheet = sheetTimesheet
	if _, err := w.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := w.infoHeader(sheet, "Lançamento de Horas de Serviços", period, opts); err != nil {
		return err
	}

	header := []any{"", "Data", "Inicio", "Fim", "Total Horas", "Local", "", "Descrição Atividades", "Abonar Reembolso", "Final de Semana", "Reembolso Km"}
	if err := w.f.SetSheetRow(sheet, "A6", &header); err != nil {
		return err
	}
	sub := []any{"", "", "", "", "", "#ID", "Nome", "", "", "", ""}
	if err := w.f.SetSheetRow(sheet, "A7", &sub); err != nil {
		return err
	}
	if err := w.f.SetCellStyle(sheet, "A6", "K7", w.header); err != nil {
		return err
	}
	for _, m := range [][2]string{
		{"B6", "B7"}, {"C6", "C7"}, {"D6", "D7"}, {"E6", "E7"}, {"F6", "G6"},
		{"H6", "H7"}, {"I6", "I7"}, {"J6", "J7"}, {"K6", "K7"},
	} {
		if err := w.f.MergeCell(sheet, m[0], m[1]); err != nil {
			return err
		}
	}

	byDate := activity.GroupByDate(list)
	first, last := list[0].Date(), list[len(list)-1].Date()
	r := timesheetFirstRow
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		written, err := w.timesheetDay(sheet, r, d, byDate[d.Format(activity.DateLayout)])
		if err != nil {
			return err
		}
		r += written
	}
	w.lastTimesheetRow = r - 1

	return w.setWidths(sheet, map[string]float64{
		"B": 18, "C": 10, "D": 10, "E": 12, "F": 8, "G": 20, "H": 30, "I": 18, "J": 16, "K": 15,
	})
}

// timesheetDay writes the rows of one calendar day starting at r and
// returns how many rows it used.
func (w *workbook) timesheetDay(sheet string, r int, d time.Time, day []*activity.Activity) (int, error) {
	weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
	if weekend || len(day) == 0 {
		return 1, w.placeholderRow(sheet, r, d, weekend)
	}

	startsIn := func(from, to int) bool {
		return lo.SomeBy(day, func(a *activity.Activity) bool {
			h := a.StartMinutes() / 60
			return h >= from && h < to
		})
	}

	m, fromTable := w.markers[d.Format(activity.DateLayout)]
	start := m.Start
	if fromTable {
		// Days read from a table always have a start, 8:00 when untagged.
		start = m.StartOrDefault()
	}
	var halves [][2]string
	if startsIn(6, 12) {
		halves = append(halves, [2]string{start, m.Lunch})
	}
	if startsIn(12, 18) {
		halves = append(halves, [2]string{m.Return, m.End})
	}
	if len(halves) == 0 {
		return 1, w.placeholderRow(sheet, r, d, false)
	}

	for i, h := range halves {
		if err := w.shiftRow(sheet, r+i, d, h[0], h[1]); err != nil {
			return 0, err
		}
	}
	return len(halves), nil
}

func (w *workbook) dayRow(sheet string, r int, d time.Time, total any, weekend bool) error {
	row := []any{"", d, "", "", total, "", "", "", "Não", lo.Ternary(weekend, "Sim", "Não"), 0}
	if err := w.f.SetSheetRow(sheet, cell("A", r), &row); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, r, err)
	}
	return w.f.SetCellStyle(sheet, cell("B", r), cell("B", r), w.weekday)
}

func (w *workbook) placeholderRow(sheet string, r int, d time.Time, weekend bool) error {
	return w.dayRow(sheet, r, d, "0:00", weekend)
}

// shiftRow writes one half-day. Total Horas is a formula only when both
// clock cells are filled.
func (w *workbook) shiftRow(sheet string, r int, d time.Time, from, to string) error {
	if err := w.dayRow(sheet, r, d, "", false); err != nil {
		return err
	}
	filled := 0
	for col, hm := range map[string]string{"C": from, "D": to} {
		if hm == "" {
			continue
		}
		v, err := clockValue(hm)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, r, err)
		}
		if err := w.f.SetCellValue(sheet, cell(col, r), v); err != nil {
			return err
		}
		if err := w.f.SetCellStyle(sheet, cell(col, r), cell(col, r), w.clock); err != nil {
			return err
		}
		filled++
	}
	if filled < 2 {
		return w.f.SetCellValue(sheet, cell("E", r), "0:00")
	}
	ref := cell("E", r)
	if err := w.f.SetCellFormula(sheet, ref, fmt.Sprintf("D%d-C%d", r, r)); err != nil {
		return err
	}
	return w.f.SetCellStyle(sheet, ref, ref, w.clock)
}

func (w *workbook) financialSheet(period string, opts WorkbookOptions) error {
	const sheet = sheetFinancial
	if _, err := w.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	if err := w.infoHeader(sheet, "Resumo Financeiro Pagamento Serviços", period, opts); err != nil {
		return err
	}

	if err := w.setCells(sheet, map[string]any{
		"B9":  "Pagamento Horas Serviço",
		"B10": "Valor/Hora do Contrato",
		"C10": opts.HourlyRate,
		"B11": "Qtd Total Horas/Homem",
		"B12": "Vlr Total Horas/Homem",
	}); err != nil {
		return err
	}
	last := max(w.lastTimesheetRow, timesheetFirstRow)
	if err := w.f.SetCellFormula(sheet, "C11", fmt.Sprintf("ROUND(SUM('%s'!E%d:E%d)*24,2)", sheetTimesheet, timesheetFirstRow, last)); err != nil {
		return err
	}
	if err := w.f.SetCellFormula(sheet, "C12", "C11*C10"); err != nil {
		return err
	}

	for _, s := range []struct {
		ref   string
		style int
	}{
		{"B9", w.bold}, {"B10", w.bold}, {"B11", w.bold}, {"B12", w.bold},
		{"C10", w.money}, {"C11", w.number}, {"C12", w.total},
	} {
		if err := w.f.SetCellStyle(sheet, s.ref, s.ref, s.style); err != nil {
			return err
		}
	}
	return w.setWidths(sheet, map[string]float64{"B": 30, "C": 20})
}
