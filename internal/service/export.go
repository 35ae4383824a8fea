package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/export"
	"github.com/sadopc/timesheet/internal/store"
)

type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (xlsx, csv, json)", s)
}

// ExportRequest selects what to export and where. Path wins over Dir;
// an empty Dir falls back to the export_dir setting, then ".".
// HourlyRate and Company override the settings table when set.
type ExportRequest struct {
	Format     ExportFormat
	Path       string
	Dir        string
	Filters    activity.Filters
	HourlyRate *float64
	Company    string
}

// Export writes the matching activities and returns the file path.
func (s *Service) Export(ctx context.Context, req ExportRequest) (string, error) {
	format, err := ParseExportFormat(string(req.Format))
	if err != nil {
		return "", err
	}

	list, err := s.List(ctx, ListOptions{Filters: req.Filters})
	if err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", export.ErrNoActivities
	}

	markers, err := s.store.MarkerBook(ctx)
	if err != nil {
		return "", err
	}

	path := req.Path
	if path == "" {
		dir := req.Dir
		if dir == "" {
			dir, _ = s.store.GetSetting(ctx, store.SettingExportDir)
		}
		if dir == "" {
			dir = "."
		}
		path = filepath.Join(dir, export.FileName(list, string(format)))
	}

	switch format {
	case FormatCSV:
		err = export.ToCSV(list, path)
	case FormatJSON:
		err = export.ToJSON(list, markers, path)
	default:
		var opts export.WorkbookOptions
		opts, err = s.workbookOptions(ctx, req)
		if err == nil {
			err = export.ToXLSX(list, markers, opts, path)
		}
	}
	if err != nil {
		return "", err
	}

	s.log.Info().Str("format", string(format)).Str("path", path).Int("activities", len(list)).Msg("export written")
	return path, nil
}

func (s *Service) workbookOptions(ctx context.Context, req ExportRequest) (export.WorkbookOptions, error) {
	opts := export.WorkbookOptions{Company: req.Company}
	if opts.Company == "" {
		opts.Company, _ = s.store.GetSetting(ctx, store.SettingCompany)
	}
	if v, err := s.store.GetSetting(ctx, store.SettingCollaborator); err == nil {
		opts.Collaborator = v
	}

	if req.HourlyRate != nil {
		opts.HourlyRate = *req.HourlyRate
		return opts, nil
	}
	raw, _ := s.store.GetSetting(ctx, store.SettingHourlyRate)
	rate, err := parseRate(raw)
	if err != nil {
		return opts, fmt.Errorf("%w: hourly_rate %q", ErrBadSetting, raw)
	}
	opts.HourlyRate = rate
	return opts, nil
}
