package activity

import (
	"sort"

	"github.com/sadopc/timesheet/internal/timecalc"
)

// DayMarkers are the four reference times of one day. An empty field means
// the marker was not found.
type DayMarkers struct {
	Date   string
	Start  string
	Lunch  string
	Return string
	End    string
}

// StartOrDefault returns the start marker or 8:00.
func (m DayMarkers) StartOrDefault() string {
	if m.Start == "" {
		return timecalc.DefaultDayStart
	}
	return m.Start
}

func (m DayMarkers) IsEmpty() bool {
	return m.Start == "" && m.Lunch == "" && m.Return == "" && m.End == ""
}

// Morning is lunch minus start.
func (m DayMarkers) Morning() (string, bool) {
	return span(m.StartOrDefault(), m.Lunch)
}

// Afternoon is end minus return.
func (m DayMarkers) Afternoon() (string, bool) {
	if m.Return == "" {
		return "", false
	}
	return span(m.Return, m.End)
}

// Total is morning plus afternoon, or whichever of them exists.
func (m DayMarkers) Total() (string, bool) {
	morning, okM := m.Morning()
	afternoon, okA := m.Afternoon()
	switch {
	case okM && okA:
		a, _ := timecalc.ToMinutes(morning)
		b, _ := timecalc.ToMinutes(afternoon)
		return timecalc.FromMinutes(a + b), true
	case okM:
		return morning, true
	case okA:
		return afternoon, true
	}
	return "", false
}

func span(from, to string) (string, bool) {
	if from == "" || to == "" {
		return "", false
	}
	f, err := timecalc.ToMinutes(from)
	if err != nil {
		return "", false
	}
	t, err := timecalc.ToMinutes(to)
	if err != nil {
		return "", false
	}
	return timecalc.FromMinutes(t - f), true
}

// MarkerBook accumulates DayMarkers by ISO date across imports.
type MarkerBook map[string]DayMarkers

// Merge records the markers found in m. Fields absent from m never erase
// fields already in the book.
func (b MarkerBook) Merge(m DayMarkers) {
	cur := b[m.Date]
	cur.Date = m.Date
	if m.Start != "" {
		cur.Start = m.Start
	}
	if m.Lunch != "" {
		cur.Lunch = m.Lunch
	}
	if m.Return != "" {
		cur.Return = m.Return
	}
	if m.End != "" {
		cur.End = m.End
	}
	b[m.Date] = cur
}

// MergeAll merges every entry of other into b.
func (b MarkerBook) MergeAll(other MarkerBook) {
	for _, m := range other {
		b.Merge(m)
	}
}

// Get returns the markers for date, or an empty value carrying the date.
func (b MarkerBook) Get(date string) DayMarkers {
	if m, ok := b[date]; ok {
		return m
	}
	return DayMarkers{Date: date}
}

func (b MarkerBook) Dates() []string {
	dates := make([]string, 0, len(b))
	for d := range b {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
