// Package service holds the use cases shared by the CLI and the TUI:
// importing report files, querying and editing the stored activities,
// exporting them and managing user settings.
package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sadopc/timesheet/internal/activity"
	"github.com/sadopc/timesheet/internal/parser"
	"github.com/sadopc/timesheet/internal/store"
	"github.com/sadopc/timesheet/internal/timecalc"
)

var (
	ErrAmbiguousID = errors.New("id prefix matches more than one activity")
	ErrBadSetting  = errors.New("invalid setting value")
)

type Service struct {
	store        *store.Store
	table        *parser.TableParser
	pdf          parser.Parser
	log          zerolog.Logger
	collaborator string
}

type Option func(*Service)

// WithCollaborator sets the name used when neither the caller nor the
// settings table provide one.
func WithCollaborator(name string) Option {
	return func(s *Service) { s.collaborator = strings.TrimSpace(name) }
}

func New(st *store.Store, table *parser.TableParser, pdf parser.Parser, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: st,
		table: table,
		pdf:   pdf,
		log:   log.With().Str("component", "service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collaborator resolves the default collaborator: the settings table first,
// then the configured fallback.
func (s *Service) Collaborator(ctx context.Context) string {
	if v, err := s.store.GetSetting(ctx, store.SettingCollaborator); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return s.collaborator
}

// ListOptions narrows and orders List. An empty SortBy means chronological.
type ListOptions struct {
	From    string
	To      string
	Filters activity.Filters
	SortBy  activity.SortKey
	Order   activity.Order
}

func (s *Service) List(ctx context.Context, opts ListOptions) ([]*activity.Activity, error) {
	list, err := s.store.ListActivities(ctx, store.ActivityFilter{From: opts.From, To: opts.To})
	if err != nil {
		return nil, err
	}
	list = activity.Filter(list, opts.Filters)

	key := opts.SortBy
	if key == "" {
		key = activity.SortByDate
	}
	order := opts.Order
	if order == "" {
		order = activity.Asc
	}
	return activity.Sort(list, key, order), nil
}

func (s *Service) Statistics(ctx context.Context, f activity.Filters) (activity.Statistics, error) {
	list, err := s.List(ctx, ListOptions{Filters: f})
	if err != nil {
		return activity.Statistics{}, err
	}
	return activity.ComputeStatistics(list), nil
}

func (s *Service) Overlaps(ctx context.Context) ([]activity.Overlap, error) {
	list, err := s.List(ctx, ListOptions{})
	if err != nil {
		return nil, err
	}
	return activity.DetectOverlaps(list), nil
}

func (s *Service) Markers(ctx context.Context) (activity.MarkerBook, error) {
	return s.store.MarkerBook(ctx)
}

func (s *Service) DailySummaries(ctx context.Context, from, to string) ([]store.DailySummary, error) {
	return s.store.DailySummaries(ctx, from, to)
}

// Get finds an activity by id or by a unique id prefix.
func (s *Service) Get(ctx context.Context, id string) (*activity.Activity, error) {
	id = strings.TrimSpace(id)
	a, err := s.store.GetActivity(ctx, id)
	if err == nil || !errors.Is(err, store.ErrNotFound) || id == "" {
		return a, err
	}

	list, lerr := s.store.ListActivities(ctx, store.ActivityFilter{})
	if lerr != nil {
		return nil, lerr
	}
	var match *activity.Activity
	for _, cand := range list {
		if !strings.HasPrefix(cand.ID(), id) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%q: %w", id, ErrAmbiguousID)
		}
		match = cand
	}
	if match == nil {
		return nil, err
	}
	return match, nil
}

// Add stores a manually entered activity. The duration accepts every
// dialect NormalizeDuration understands.
func (s *Service) Add(ctx context.Context, p activity.Params) (*activity.Activity, error) {
	p.Duration = timecalc.NormalizeDuration(p.Duration)
	if strings.TrimSpace(p.Collaborator) == "" {
		p.Collaborator = s.Collaborator(ctx)
	}
	a, err := activity.New(p)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveActivity(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Str("id", a.ID()).Str("date", a.DateString()).Msg("activity added")
	return a, nil
}

func (s *Service) UpdateTask(ctx context.Context, id, task string) (*activity.Activity, error) {
	return s.update(ctx, id, func(a *activity.Activity) error { return a.UpdateTask(task) })
}

func (s *Service) UpdateDuration(ctx context.Context, id, duration string) (*activity.Activity, error) {
	return s.update(ctx, id, func(a *activity.Activity) error {
		return a.UpdateDuration(timecalc.NormalizeDuration(duration))
	})
}

func (s *Service) update(ctx context.Context, id string, fn func(*activity.Activity) error) (*activity.Activity, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	if err := s.store.SaveActivity(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Str("id", a.ID()).Msg("activity updated")
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteActivity(ctx, a.ID()); err != nil {
		return err
	}
	s.log.Info().Str("id", a.ID()).Msg("activity deleted")
	return nil
}

// Clear removes every activity and day marker, including the markers the
// table parser accumulated in memory.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.ClearActivities(ctx); err != nil {
		return err
	}
	s.table.ResetMarkers()
	s.log.Info().Msg("all activities cleared")
	return nil
}

func (s *Service) Settings(ctx context.Context) ([]store.Setting, error) {
	return s.store.GetAllSettings(ctx)
}

func (s *Service) Setting(ctx context.Context, key string) (string, error) {
	return s.store.GetSetting(ctx, key)
}

// SetSetting validates known keys before storing them.
func (s *Service) SetSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == store.SettingHourlyRate {
		rate, err := parseRate(value)
		if err != nil || rate < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %q", ErrBadSetting, key, value)
		}
		value = strconv.FormatFloat(rate, 'f', -1, 64)
	}
	return s.store.SetSetting(ctx, key, value)
}

// parseRate accepts both 85.5 and 85,5.
func parseRate(v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
}
