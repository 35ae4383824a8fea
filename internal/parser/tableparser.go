package parser

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sadopc/timesheet/internal/activity"
)

// TableParser reads CSV and XLSX reports. The day markers found in every
// parsed file accumulate in the parser's MarkerBook.
type TableParser struct {
	markers activity.MarkerBook
	log     zerolog.Logger
}

func NewTableParser(log zerolog.Logger) *TableParser {
	return &TableParser{
		markers: activity.MarkerBook{},
		log:     log.With().Str("parser", "table").Logger(),
	}
}

func (p *TableParser) Parse(ctx context.Context, f File, collaborator string) ([]*activity.Activity, error) {
	table, err := readTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	var raws []RawActivity
	for _, date := range table.Dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		markers := ExtractDayMarkers(date, table.Rows)
		day, err := ReconstructDay(date, table.Rows, markers, p.log)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		p.markers.Merge(markers)
		raws = append(raws, day...)
	}

	sortRaw(raws)
	p.log.Debug().
		Str("file", f.Name).
		Int("dates", len(table.Dates)).
		Int("activities", len(raws)).
		Msg("table parsed")
	return toActivities(raws, collaborator)
}

// Markers returns a copy of the markers accumulated so far.
func (p *TableParser) Markers() activity.MarkerBook {
	out := make(activity.MarkerBook, len(p.markers))
	out.MergeAll(p.markers)
	return out
}

// ResetMarkers forgets every accumulated marker.
func (p *TableParser) ResetMarkers() {
	p.markers = activity.MarkerBook{}
}
