package parser

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/timecalc"
)

// Accepted gap between lunch and return, in minutes.
const (
	minLunchBreak = 45
	maxLunchBreak = 90
	lunchFallback = 60
)

// dayEngine walks one date column of a table, keeping a running clock.
type dayEngine struct {
	date string
	day  string
	log  zerolog.Logger

	lunch     int
	hasLunch  bool
	ret       int
	hasReturn bool

	clock     int
	pastLunch bool

	out []RawActivity
}

// ReconstructDay assigns start times to the rows of one date column.
//
// Rows are taken in order. An activity starts at the running clock unless its
// labels carry a marker: a start or return marker moves the clock; a lunch or
// end marker makes the activity end exactly at that time, sliding its start
// backward or shrinking its duration. An activity reaching the day's lunch
// marker is cut there and the clock jumps to the return marker. Every
// adjustment to a recorded duration produces a warning on the activity.
func ReconstructDay(date string, rows []Row, markers activity.DayMarkers, log zerolog.Logger) ([]RawActivity, error) {
	e := &dayEngine{
		date: date,
		day:  dayOfMonth(date),
		log:  log.With().Str("date", date).Logger(),
	}
	e.clock, _ = timecalc.ToMinutes(markers.StartOrDefault())
	if m, err := timecalc.ToMinutes(markers.Lunch); err == nil {
		e.lunch, e.hasLunch = m, true
	}
	if m, err := timecalc.ToMinutes(markers.Return); err == nil {
		e.ret, e.hasReturn = m, true
	}

	for i, row := range rows {
		if err := e.step(row); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", date, i+1, err)
		}
	}
	return e.out, nil
}

func (e *dayEngine) step(row Row) error {
	cell := strings.TrimSpace(row.Cells[e.date])
	if cell == "" || cell == "-" {
		return nil
	}

	label := strings.ToLower(row.Labels)
	day, isDayTask := taskDay(row.Task)
	if !isDayTask && hasMarkerKeyword(label) {
		e.log.Debug().Str("task", row.Task).Str("labels", row.Labels).Msg("skipping marker row")
		return nil
	}
	if isDayTask && day != e.day {
		return nil
	}

	dur, err := timecalc.ToMinutes(timecalc.NormalizeDuration(cell))
	if err != nil {
		return err
	}

	var warnings []string
	start := e.clock

	if t, ok := findMarker(startPattern, label); ok {
		start, e.clock = t, t
	} else if t, ok := findMarker(returnPattern, label); ok {
		if e.hasLunch {
			gap := t - e.lunch
			if gap < minLunchBreak || gap > maxLunchBreak {
				warnings = append(warnings, fmt.Sprintf(
					"Horário de retorno (%s) está %d minutos após o almoço (%s). Esperado: ~60 minutos",
					timecalc.FromMinutes(t), gap, timecalc.FromMinutes(e.lunch)))
			}
		}
		start, e.clock = t, t
		e.pastLunch = true
	} else if t, ok := findMarker(lunchPattern, label); ok {
		start, dur, warnings = e.endAt(t, dur, "para terminar no horário de almoço", warnings)
	} else if t, ok := findMarker(endPattern, label); ok {
		start, dur, warnings = e.endAt(t, dur, "para terminar no horário final", warnings)
	}

	end := start + dur

	if e.hasLunch && !e.pastLunch && end >= e.lunch {
		if span := e.lunch - start; span > 0 {
			if span != dur {
				warnings = append(warnings, fmt.Sprintf(
					"Duração ajustada de %s para %s devido ao horário de almoço (%s)",
					timecalc.FromMinutes(dur), timecalc.FromMinutes(span), timecalc.FromMinutes(e.lunch)))
			}
			e.emit(row.Task, start, span, warnings)
		} else {
			e.log.Debug().Str("task", row.Task).Msg("dropping activity at or past lunch")
		}
		e.clock = e.lunch + lunchFallback
		if e.hasReturn {
			e.clock = e.ret
		}
		e.pastLunch = true
		return nil
	}

	e.emit(row.Task, start, dur, warnings)
	e.clock = end
	return nil
}

// endAt makes an activity end exactly at target. The start slides back when
// that keeps it at or after the clock; otherwise the duration shrinks.
func (e *dayEngine) endAt(target, dur int, reason string, warnings []string) (int, int, []string) {
	if slid := target - dur; slid >= e.clock {
		e.clock = slid
		return slid, dur, warnings
	}

	shrunk := target - e.clock
	if shrunk > 0 {
		warnings = append(warnings, fmt.Sprintf("Duração ajustada de %s para %s %s (%s)",
			timecalc.FromMinutes(dur), timecalc.FromMinutes(shrunk), reason, timecalc.FromMinutes(target)))
		return e.clock, shrunk, warnings
	}

	warnings = append(warnings, fmt.Sprintf("ERRO: Não é possível terminar às %s - hora atual já passou (%s)",
		timecalc.FromMinutes(target), timecalc.FromMinutes(e.clock)))
	return e.clock, dur, warnings
}

func (e *dayEngine) emit(task string, start, dur int, warnings []string) {
	raw := RawActivity{
		Date:      e.date,
		StartTime: timecalc.FromMinutes(start),
		Duration:  timecalc.FromMinutes(dur),
		Task:      strings.TrimSpace(task),
		Warnings:  warnings,
	}
	if raw.Task == "" {
		raw.Task = activity.DefaultTask
	}
	if len(warnings) > 0 {
		e.log.Debug().Str("task", raw.Task).Strs("warnings", warnings).Msg("activity adjusted")
	}
	e.out = append(e.out, raw)
}
