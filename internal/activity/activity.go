// Package activity holds the timesheet domain: the Activity entity, the
// per-day marker value object and the pure query functions over activity
// lists.
package activity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/timesheet/internal/timecalc"
)

// DateLayout is the ISO calendar date used for keys, columns and storage.
const DateLayout = "2006-01-02"

// DefaultTask labels activities recovered without task text.
const DefaultTask = "Sem descrição"

var (
	ErrEmptyTask   = errors.New("task cannot be empty")
	ErrInvalidDate = errors.New("invalid date")
	ErrMissingID   = errors.New("activity id is required")
)

// Activity is one dated unit of work. Identity is fixed at construction;
// task and duration change only through UpdateTask and UpdateDuration.
type Activity struct {
	id           string
	date         time.Time
	startTime    string
	duration     string
	task         string
	collaborator string
	warnings     []string
}

// Params carries the fields needed to build an Activity.
type Params struct {
	ID           string
	Date         string
	StartTime    string
	Duration     string
	Task         string
	Collaborator string
	Warnings     []string
}

// New validates p and returns an Activity with a fresh identifier.
func New(p Params) (*Activity, error) {
	p.ID = uuid.NewString()
	return build(p)
}

// Restore rebuilds a previously stored Activity, keeping its identifier.
func Restore(p Params) (*Activity, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, ErrMissingID
	}
	return build(p)
}

func build(p Params) (*Activity, error) {
	date, err := time.Parse(DateLayout, strings.TrimSpace(p.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, p.Date)
	}
	if _, err := timecalc.ToMinutes(p.StartTime); err != nil {
		return nil, err
	}
	if _, err := timecalc.ToMinutes(p.Duration); err != nil {
		return nil, err
	}
	task := strings.TrimSpace(p.Task)
	if task == "" {
		return nil, ErrEmptyTask
	}

	a := &Activity{
		id:           p.ID,
		date:         date,
		startTime:    strings.TrimSpace(p.StartTime),
		duration:     strings.TrimSpace(p.Duration),
		task:         task,
		collaborator: strings.TrimSpace(p.Collaborator),
	}
	for _, w := range p.Warnings {
		a.AddWarning(w)
	}
	return a, nil
}

func (a *Activity) ID() string           { return a.id }
func (a *Activity) Date() time.Time      { return a.date }
func (a *Activity) DateString() string   { return a.date.Format(DateLayout) }
func (a *Activity) StartTime() string    { return a.startTime }
func (a *Activity) Duration() string     { return a.duration }
func (a *Activity) Task() string         { return a.task }
func (a *Activity) Collaborator() string { return a.collaborator }

// Warnings returns a copy of the reconciliation warnings.
func (a *Activity) Warnings() []string {
	out := make([]string, len(a.warnings))
	copy(out, a.warnings)
	return out
}

func (a *Activity) HasValidationIssues() bool { return len(a.warnings) > 0 }

func (a *Activity) StartMinutes() int {
	m, _ := timecalc.ToMinutes(a.startTime)
	return m
}

func (a *Activity) DurationMinutes() int {
	m, _ := timecalc.ToMinutes(a.duration)
	return m
}

func (a *Activity) EndMinutes() int { return a.StartMinutes() + a.DurationMinutes() }

// EndTime is start + duration. It is never stored.
func (a *Activity) EndTime() string { return timecalc.FromMinutes(a.EndMinutes()) }

// UpdateTask replaces the task text.
func (a *Activity) UpdateTask(task string) error {
	task = strings.TrimSpace(task)
	if task == "" {
		return ErrEmptyTask
	}
	a.task = task
	return nil
}

// UpdateDuration replaces the duration; it must be H:MM.
func (a *Activity) UpdateDuration(duration string) error {
	duration = strings.TrimSpace(duration)
	if _, err := timecalc.ToMinutes(duration); err != nil {
		return err
	}
	a.duration = duration
	return nil
}

func (a *Activity) AddWarning(w string) {
	if w = strings.TrimSpace(w); w != "" {
		a.warnings = append(a.warnings, w)
	}
}
