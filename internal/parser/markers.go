package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/timecalc"
)

// Marker patterns run against lowercased label text. Hour and minute may be
// separated by ':', spaces or 'h'.
var (
	startPattern  = regexp.MustCompile(`in[ií]cio[:\s]*(\d{1,2})[:\sh]*(\d{2})`)
	lunchPattern  = regexp.MustCompile(`almo[cç]o[:\s]*(\d{1,2})[:\sh]*(\d{2})`)
	returnPattern = regexp.MustCompile(`(?:retorno|volta)(?:\s+(?:do\s+)?almo[cç]o)?\s*[:\s]*(\d{1,2})[:\sh]*(\d{2})`)
	endPattern    = regexp.MustCompile(`(?:final|fim|saida|sa[ií]da)(?:\s+(?:de\s+)?expediente)?\s*[:\s]*(\d{1,2})[:\sh]*(\d{2})`)

	// dayTaskPattern matches the "DD - NN - description" task convention.
	dayTaskPattern = regexp.MustCompile(`^(\d{1,2})\s*-\s*(\d{1,2})\s*-`)
)

var markerKeywords = []string{
	"inicio", "início", "almoço", "almoco", "retorno", "volta", "final", "fim", "saida", "saída",
}

// findMarker returns the minutes of the first match of re in label.
func findMarker(re *regexp.Regexp, label string) (int, bool) {
	m := re.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return h*60 + min, true
}

// findLunch ignores "retorno do almoço" phrases so a return tag is not read
// as a lunch tag.
func findLunch(label string) (int, bool) {
	return findMarker(lunchPattern, returnPattern.ReplaceAllString(label, " "))
}

func hasMarkerKeyword(label string) bool {
	for _, k := range markerKeywords {
		if strings.Contains(label, k) {
			return true
		}
	}
	return false
}

// taskDay returns the zero-padded leading day of a "DD - NN - ..." task.
func taskDay(task string) (string, bool) {
	m := dayTaskPattern.FindStringSubmatch(strings.TrimSpace(task))
	if m == nil {
		return "", false
	}
	return pad2(m[1]), true
}

// ExtractDayMarkers scans every row's labels for the day's start, lunch,
// return and end times. Rows whose task names another day of the month are
// ignored. When several rows carry the same marker the last one wins. The
// start marker is left empty when absent; see DayMarkers.StartOrDefault.
func ExtractDayMarkers(date string, rows []Row) activity.DayMarkers {
	markers := activity.DayMarkers{Date: date}
	day := dayOfMonth(date)

	for _, row := range rows {
		label := strings.ToLower(strings.TrimSpace(row.Labels))
		if label == "" {
			continue
		}
		if d, ok := taskDay(row.Task); ok && d != day {
			continue
		}
		if t, ok := findMarker(startPattern, label); ok {
			markers.Start = timecalc.FromMinutes(t)
		}
		if t, ok := findLunch(label); ok {
			markers.Lunch = timecalc.FromMinutes(t)
		}
		if t, ok := findMarker(returnPattern, label); ok {
			markers.Return = timecalc.FromMinutes(t)
		}
		if t, ok := findMarker(endPattern, label); ok {
			markers.End = timecalc.FromMinutes(t)
		}
	}
	return markers
}

func dayOfMonth(date string) string {
	if len(date) >= 10 {
		return date[8:10]
	}
	return ""
}
