package export

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/timecalc"
)

type jsonExport struct {
	ExportedAt   string         `json:"exported_at"`
	Count        int            `json:"count"`
	TotalMinutes int            `json:"total_minutes"`
	Total        string         `json:"total"`
	Activities   []jsonActivity `json:"activities"`
	Markers      []jsonMarkers  `json:"markers,omitempty"`
}

type jsonActivity struct {
	ID           string   `json:"id"`
	Date         string   `json:"date"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	Duration     string   `json:"duration"`
	Minutes      int      `json:"duration_minutes"`
	Task         string   `json:"task"`
	Collaborator string   `json:"collaborator,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}

type jsonMarkers struct {
	Date   string `json:"date"`
	Start  string `json:"start,omitempty"`
	Lunch  string `json:"lunch,omitempty"`
	Return string `json:"return,omitempty"`
	End    string `json:"end,omitempty"`
}

func ToJSON(activities []*activity.Activity, markers activity.MarkerBook, path string) error {
	if len(activities) == 0 {
		return ErrNoActivities
	}

	sorted := activity.SortChronologically(activities)
	total := activity.TotalMinutes(sorted)
	export := jsonExport{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		Count:        len(sorted),
		TotalMinutes: total,
		Total:        timecalc.FromMinutes(total),
		Activities: lo.Map(sorted, func(a *activity.Activity, _ int) jsonActivity {
			w := a.Warnings()
			if len(w) == 0 {
				w = nil
			}
			return jsonActivity{
				ID:           a.ID(),
				Date:         a.DateString(),
				StartTime:    a.StartTime(),
				EndTime:      a.EndTime(),
				Duration:     a.Duration(),
				Minutes:      a.DurationMinutes(),
				Task:         a.Task(),
				Collaborator: a.Collaborator(),
				Warnings:     w,
			}
		}),
	}

	for _, d := range markers.Dates() {
		m := markers[d]
		if m.IsEmpty() {
			continue
		}
		export.Markers = append(export.Markers, jsonMarkers{
			Date: d, Start: m.Start, Lunch: m.Lunch, Return: m.Return, End: m.End,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
