// Package parser turns time tracker exports into activities.
//
// Two implementations share the Parser interface: TableParser reads the
// tagged CSV/XLSX report and runs marker extraction plus the reconstruction
// engine per date column; PDFParser reads the PDF report text and
// accumulates activities sequentially from 8:00 with no markers.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/timecalc"
)

// File is one input document.
type File struct {
	Name string
	Data []byte
}

// Ext returns the lowercased extension of the file name.
func (f File) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Parser extracts activities for collaborator from one file.
type Parser interface {
	Parse(ctx context.Context, f File, collaborator string) ([]*activity.Activity, error)
}

// RawActivity is an extracted activity before it becomes an entity.
type RawActivity struct {
	Date      string
	StartTime string
	Duration  string
	Task      string
	Warnings  []string
}

// sortRaw orders by date string, then start minutes.
func sortRaw(raws []RawActivity) {
	sort.SliceStable(raws, func(i, j int) bool {
		if raws[i].Date != raws[j].Date {
			return raws[i].Date < raws[j].Date
		}
		a, _ := timecalc.ToMinutes(raws[i].StartTime)
		b, _ := timecalc.ToMinutes(raws[j].StartTime)
		return a < b
	})
}

func toActivities(raws []RawActivity, collaborator string) ([]*activity.Activity, error) {
	out := make([]*activity.Activity, 0, len(raws))
	for _, r := range raws {
		task := strings.TrimSpace(r.Task)
		if task == "" {
			task = activity.DefaultTask
		}
		a, err := activity.New(activity.Params{
			Date:         r.Date,
			StartTime:    r.StartTime,
			Duration:     r.Duration,
			Task:         task,
			Collaborator: collaborator,
			Warnings:     r.Warnings,
		})
		if err != nil {
			return nil, fmt.Errorf("activity %q on %s: %w", task, r.Date, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
