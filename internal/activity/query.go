package activity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sadopc/timesheet/internal/timecalc"
)

type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByStart    SortKey = "startTime"
	SortByDuration SortKey = "duration"
	SortByTask     SortKey = "task"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// ParseSortKey accepts the key names used by the CLI and TUI.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "date":
		return SortByDate, nil
	case "start", "starttime", "start_time":
		return SortByStart, nil
	case "duration":
		return SortByDuration, nil
	case "task":
		return SortByTask, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// GroupByDate buckets activities by YYYY-MM-DD.
func GroupByDate(list []*Activity) map[string][]*Activity {
	return lo.GroupBy(list, func(a *Activity) string { return a.DateString() })
}

// SortedDates returns the distinct dates of list in ascending order.
func SortedDates(list []*Activity) []string {
	dates := lo.Uniq(lo.Map(list, func(a *Activity, _ int) string { return a.DateString() }))
	sort.Strings(dates)
	return dates
}

func TotalMinutes(list []*Activity) int {
	return lo.SumBy(list, func(a *Activity) int { return a.DurationMinutes() })
}

// Sort returns a sorted copy of list. Descending order is the exact reverse
// of ascending order, ties included.
func Sort(list []*Activity, key SortKey, order Order) []*Activity {
	out := make([]*Activity, len(list))
	copy(out, list)

	var less func(a, b *Activity) bool
	switch key {
	case SortByStart:
		less = func(a, b *Activity) bool { return a.StartTime() < b.StartTime() }
	case SortByDuration:
		less = func(a, b *Activity) bool { return a.DurationMinutes() < b.DurationMinutes() }
	case SortByTask:
		c := collate.New(language.BrazilianPortuguese)
		less = func(a, b *Activity) bool { return c.CompareString(a.Task(), b.Task()) < 0 }
	default:
		less = func(a, b *Activity) bool {
			if a.DateString() != b.DateString() {
				return a.DateString() < b.DateString()
			}
			return a.StartMinutes() < b.StartMinutes()
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if order == Desc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// SortChronologically orders by date string, then start minutes.
func SortChronologically(list []*Activity) []*Activity {
	return Sort(list, SortByDate, Asc)
}

// Filters narrows an activity list. Zero values match everything.
type Filters struct {
	Date         string // substring of YYYY-MM-DD
	Task         string // case-insensitive substring
	Collaborator string // exact
	WithWarnings bool
}

func Filter(list []*Activity, f Filters) []*Activity {
	task := strings.ToLower(f.Task)
	return lo.Filter(list, func(a *Activity, _ int) bool {
		if f.Date != "" && !strings.Contains(a.DateString(), f.Date) {
			return false
		}
		if task != "" && !strings.Contains(strings.ToLower(a.Task()), task) {
			return false
		}
		if f.Collaborator != "" && a.Collaborator() != f.Collaborator {
			return false
		}
		if f.WithWarnings && !a.HasValidationIssues() {
			return false
		}
		return true
	})
}

type Statistics struct {
	TotalActivities     int
	TotalMinutes        int
	TotalHours          float64
	TotalHoursFormatted string
	UniqueDates         int
	AverageHoursPerDay  float64
	WithWarnings        int
}

func ComputeStatistics(list []*Activity) Statistics {
	total := TotalMinutes(list)
	days := len(SortedDates(list))
	st := Statistics{
		TotalActivities:     len(list),
		TotalMinutes:        total,
		TotalHours:          float64(total) / 60,
		TotalHoursFormatted: timecalc.FromMinutes(total),
		UniqueDates:         days,
		WithWarnings:        lo.CountBy(list, func(a *Activity) bool { return a.HasValidationIssues() }),
	}
	if days > 0 {
		st.AverageHoursPerDay = st.TotalHours / float64(days)
	}
	return st
}

// IsWithinWorkingHours reports whether a starts at 6h or later and ends by 22h.
func IsWithinWorkingHours(a *Activity) bool {
	return a.StartMinutes()/60 >= 6 && a.EndMinutes()/60 <= 22
}

// Overlap is a pair of same-day activities where First ends after Second starts.
type Overlap struct {
	First  *Activity
	Second *Activity
}

// DetectOverlaps orders each day's activities by start time text and flags
// consecutive pairs whose end time text is greater than the next start time
// text. Comparison is lexical, so "10:00" sorts before "9:00".
func DetectOverlaps(list []*Activity) []Overlap {
	var out []Overlap
	groups := GroupByDate(list)
	for _, date := range SortedDates(list) {
		day := make([]*Activity, len(groups[date]))
		copy(day, groups[date])
		sort.SliceStable(day, func(i, j int) bool { return day[i].StartTime() < day[j].StartTime() })
		for i := 0; i+1 < len(day); i++ {
			if day[i].EndTime() > day[i+1].StartTime() {
				out = append(out, Overlap{First: day[i], Second: day[i+1]})
			}
		}
	}
	return out
}
