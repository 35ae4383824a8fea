package parser

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/timecalc"
)

var (
	periodPattern = regexp.MustCompile(`Período:\s*(\d+)\s+(\w+)\.\s+(\d+)`)

	// DD - NN - description Não|Sim project H:MM
	pdfActivityPattern = regexp.MustCompile(`(\d{2})\s*-\s*(\d{2})\s*-\s*(.+?)\s+(Não|Sim)\s+(.+?)\s+(\d+:\d+)`)

	pdfLinePattern     = regexp.MustCompile(`^(\d{1,2})\s*-\s*(\d{1,2})\s*-\s*(.+)`)
	pdfLineTimePattern = regexp.MustCompile(`(\d+:\d+)(?:\s|$)`)
	pdfLineTailPattern = regexp.MustCompile(`\s+(Não|Sim)\s+.+?\s+\d+:\d+.*$`)

	trailingDashPattern = regexp.MustCompile(`\s*-\s*$`)
)

var monthAbbrev = map[string]time.Month{
	"jan": time.January, "fev": time.February, "mar": time.March, "abr": time.April,
	"mai": time.May, "jun": time.June, "jul": time.July, "ago": time.August,
	"set": time.September, "out": time.October, "nov": time.November, "dez": time.December,
}

// Period is the month a PDF report covers.
type Period struct {
	Year  int
	Month time.Month
}

// DetectPeriod reads the "Período: D mmm. YYYY" header. Parts that cannot be
// read come from fallback.
func DetectPeriod(text string, fallback Period) Period {
	m := periodPattern.FindStringSubmatch(text)
	if m == nil {
		return fallback
	}
	p := fallback
	name := strings.ToLower(m[2])
	if len(name) > 3 {
		name = name[:3]
	}
	if month, ok := monthAbbrev[name]; ok {
		p.Month = month
	}
	if y, err := strconv.Atoi(m[3]); err == nil {
		p.Year = y
	}
	return p
}

// ExtractFromText recovers activities from PDF report text. A global
// pattern is tried first; when it finds nothing each line is matched on its
// own. Every day starts at 8:00 and activities follow each other in the
// order found.
func ExtractFromText(text string, fallback Period) ([]RawActivity, error) {
	period := DetectPeriod(text, fallback)
	clocks := map[string]int{}

	var raws []RawActivity
	add := func(day, seq, desc, dur string) error {
		minutes, err := timecalc.ToMinutes(timecalc.NormalizeDuration(dur))
		if err != nil {
			return err
		}
		day = pad2(day)
		date := fmt.Sprintf("%04d-%02d-%s", period.Year, int(period.Month), day)
		start, ok := clocks[date]
		if !ok {
			start, _ = timecalc.ToMinutes(timecalc.DefaultDayStart)
		}
		raws = append(raws, RawActivity{
			Date:      date,
			StartTime: timecalc.FromMinutes(start),
			Duration:  timecalc.FromMinutes(minutes),
			Task:      fmt.Sprintf("%s - %s - %s", day, pad2(seq), desc),
		})
		clocks[date] = start + minutes
		return nil
	}

	for _, m := range pdfActivityPattern.FindAllStringSubmatch(text, -1) {
		if err := add(m[1], m[2], cleanDescription(m[3]), m[6]); err != nil {
			return nil, err
		}
	}

	if len(raws) == 0 {
		for _, line := range strings.Split(text, "\n") {
			m := pdfLinePattern.FindStringSubmatch(strings.TrimSpace(line))
			if m == nil {
				continue
			}
			tm := pdfLineTimePattern.FindStringSubmatch(m[3])
			if tm == nil {
				continue
			}
			desc := cleanDescription(pdfLineTailPattern.ReplaceAllString(m[3], ""))
			if err := add(m[1], m[2], desc, tm[1]); err != nil {
				return nil, err
			}
		}
	}

	sortRaw(raws)
	return raws, nil
}

func cleanDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(trailingDashPattern.ReplaceAllString(s, ""))
}

// PDFParser reads the PDF version of the detailed report.
type PDFParser struct {
	fallback Period
	log      zerolog.Logger
}

func NewPDFParser(fallback Period, log zerolog.Logger) *PDFParser {
	return &PDFParser{
		fallback: fallback,
		log:      log.With().Str("parser", "pdf").Logger(),
	}
}

func (p *PDFParser) Parse(ctx context.Context, f File, collaborator string) ([]*activity.Activity, error) {
	text, err := ExtractText(ctx, bytes.NewReader(f.Data), int64(len(f.Data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	raws, err := ExtractFromText(text, p.fallback)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	p.log.Debug().Str("file", f.Name).Int("chars", len(text)).Int("activities", len(raws)).Msg("pdf parsed")
	return toActivities(raws, collaborator)
}
