package store

import (
	"context"
	"errors"
	"testing"

	"github.com/sadopc/timesheet/internal/activity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newActivity is a test helper that builds a valid activity for collaborator Ana.
func newActivity(t *testing.T, date, start, duration, task string, warnings ...string) *activity.Activity {
	t.Helper()
	a, err := activity.New(activity.Params{
		Date:         date,
		StartTime:    start,
		Duration:     duration,
		Task:         task,
		Collaborator: "Ana",
		Warnings:     warnings,
	})
	if err != nil {
		t.Fatalf("new activity: %v", err)
	}
	return a
}

func mustSave(t *testing.T, s *Store, a *activity.Activity) {
	t.Helper()
	if err := s.SaveActivity(context.Background(), a); err != nil {
		t.Fatalf("save activity: %v", err)
	}
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/timesheet.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	mustSave(t, s, newActivity(t, "2025-09-01", "8:00", "1:00", "01 - 01 - Persistida"))
	s.Close()

	// Reopen: data survives and migration does not rerun.
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	n, err := s2.CountActivities(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 activity after reopen, got %d", n)
	}
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Activities
// ============================================================

func TestSaveAndGetActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newActivity(t, "2025-09-01", "9:30", "1:15", "01 - 01 - Reunião", "⚠️ Retorno do almoço 13:00 fora da janela")
	mustSave(t, s, a)

	got, err := s.GetActivity(ctx, a.ID())
	if err != nil {
		t.Fatal(err)
	}
	if got.DateString() != "2025-09-01" || got.StartTime() != "9:30" || got.Duration() != "1:15" {
		t.Fatalf("unexpected activity: %s %s %s", got.DateString(), got.StartTime(), got.Duration())
	}
	if got.Task() != "01 - 01 - Reunião" || got.Collaborator() != "Ana" {
		t.Fatalf("unexpected task/collaborator: %q %q", got.Task(), got.Collaborator())
	}
	w := got.Warnings()
	if len(w) != 1 || w[0] != "⚠️ Retorno do almoço 13:00 fora da janela" {
		t.Fatalf("warnings not round-tripped: %v", w)
	}
}

func TestGetActivityNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetActivity(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSaveActivityReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newActivity(t, "2025-09-01", "8:00", "1:00", "01 - 01 - A")
	mustSave(t, s, a)

	if err := a.UpdateDuration("2:30"); err != nil {
		t.Fatal(err)
	}
	if err := a.UpdateTask("01 - 01 - Renomeada"); err != nil {
		t.Fatal(err)
	}
	mustSave(t, s, a)

	n, _ := s.CountActivities(ctx)
	if n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
	got, err := s.GetActivity(ctx, a.ID())
	if err != nil {
		t.Fatal(err)
	}
	if got.Duration() != "2:30" || got.Task() != "01 - 01 - Renomeada" {
		t.Fatalf("update not stored: %s %q", got.Duration(), got.Task())
	}
}

func TestListActivities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustSave(t, s, newActivity(t, "2025-09-02", "8:00", "1:00", "02 - 01 - B"))
	mustSave(t, s, newActivity(t, "2025-09-01", "8:00", "1:00", "01 - 01 - A"))
	mustSave(t, s, newActivity(t, "2025-09-01", "9:00", "1:00", "01 - 02 - C"))

	list, err := s.ListActivities(ctx, ActivityFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3, got %d", len(list))
	}
	if list[0].Task() != "01 - 01 - A" || list[1].Task() != "01 - 02 - C" || list[2].Task() != "02 - 01 - B" {
		t.Fatalf("unexpected order: %q %q %q", list[0].Task(), list[1].Task(), list[2].Task())
	}
}

func TestListActivitiesWithDateFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, d := range []string{"2025-09-01", "2025-09-02", "2025-09-03"} {
		mustSave(t, s, newActivity(t, d, "8:00", "1:00", "tarefa"))
	}

	list, err := s.ListActivities(ctx, ActivityFilter{From: "2025-09-02", To: "2025-09-02"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].DateString() != "2025-09-02" {
		t.Fatalf("unexpected filter result: %d", len(list))
	}
}

func TestListActivitiesWithCollaboratorAndLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustSave(t, s, newActivity(t, "2025-09-01", "8:00", "1:00", "a"))
	mustSave(t, s, newActivity(t, "2025-09-02", "8:00", "1:00", "b"))
	other, err := activity.New(activity.Params{
		Date: "2025-09-01", StartTime: "8:00", Duration: "1:00", Task: "c", Collaborator: "Bruno",
	})
	if err != nil {
		t.Fatal(err)
	}
	mustSave(t, s, other)

	list, err := s.ListActivities(ctx, ActivityFilter{Collaborator: "Ana", Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Collaborator() != "Ana" {
		t.Fatalf("unexpected result: %d", len(list))
	}
}

func TestDeleteActivity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	a := newActivity(t, "2025-09-01", "8:00", "1:00", "a")
	mustSave(t, s, a)

	if err := s.DeleteActivity(ctx, a.ID()); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteActivity(ctx, a.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestClearActivities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustSave(t, s, newActivity(t, "2025-09-01", "8:00", "1:00", "a"))
	if err := s.SaveMarkers(ctx, activity.DayMarkers{Date: "2025-09-01", Lunch: "12:00"}); err != nil {
		t.Fatal(err)
	}

	if err := s.ClearActivities(ctx); err != nil {
		t.Fatal(err)
	}
	n, _ := s.CountActivities(ctx)
	if n != 0 {
		t.Fatalf("expected 0 activities, got %d", n)
	}
	book, err := s.MarkerBook(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(book) != 0 {
		t.Fatalf("expected markers cleared, got %d", len(book))
	}
}

func TestDailySummaries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustSave(t, s, newActivity(t, "2025-09-01", "8:00", "1:30", "a"))
	mustSave(t, s, newActivity(t, "2025-09-01", "9:30", "2:00", "b", "aviso"))
	mustSave(t, s, newActivity(t, "2025-09-03", "8:00", "0:45", "c"))

	sums, err := s.DailySummaries(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 2 {
		t.Fatalf("expected 2 days, got %d", len(sums))
	}
	if sums[0].Date != "2025-09-01" || sums[0].TotalMinutes != 210 || sums[0].ActivityCount != 2 || sums[0].WarningCount != 1 {
		t.Fatalf("unexpected first summary: %+v", sums[0])
	}
	if sums[1].TotalMinutes != 45 {
		t.Fatalf("unexpected second summary: %+v", sums[1])
	}
}

func TestDailySummariesEmpty(t *testing.T) {
	s := newTestStore(t)
	sums, err := s.DailySummaries(context.Background(), "2025-01-01", "2025-12-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 0 {
		t.Fatalf("expected no summaries, got %d", len(sums))
	}
}

// ============================================================
// Transactions
// ============================================================

func TestWithinTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	err := s.WithinTx(ctx, func(tx *Store) error {
		if err := tx.SaveActivity(ctx, newActivity(t, "2025-09-01", "8:00", "1:00", "a")); err != nil {
			return err
		}
		return tx.SaveMarkers(ctx, activity.DayMarkers{Date: "2025-09-01", End: "17:00"})
	})
	if err != nil {
		t.Fatal(err)
	}
	n, _ := s.CountActivities(ctx)
	if n != 1 {
		t.Fatalf("expected 1 committed activity, got %d", n)
	}
}

func TestWithinTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx *Store) error {
		if err := tx.SaveActivity(ctx, newActivity(t, "2025-09-01", "8:00", "1:00", "a")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	n, _ := s.CountActivities(ctx)
	if n != 0 {
		t.Fatalf("expected rollback, got %d rows", n)
	}
}

func TestWithinTxNested(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	err := s.WithinTx(ctx, func(tx *Store) error {
		return tx.SaveActivities(ctx, []*activity.Activity{
			newActivity(t, "2025-09-01", "8:00", "1:00", "a"),
			newActivity(t, "2025-09-01", "9:00", "1:00", "b"),
		})
	})
	if err != nil {
		t.Fatal(err)
	}
	n, _ := s.CountActivities(ctx)
	if n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}

// ============================================================
// Day markers
// ============================================================

func TestSaveMarkersMerges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.SaveMarkers(ctx, activity.DayMarkers{Date: "2025-09-01", Start: "8:00", Lunch: "12:00"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveMarkers(ctx, activity.DayMarkers{Date: "2025-09-01", Lunch: "12:30", End: "17:00"}); err != nil {
		t.Fatal(err)
	}

	book, err := s.MarkerBook(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got := book.Get("2025-09-01")
	want := activity.DayMarkers{Date: "2025-09-01", Start: "8:00", Lunch: "12:30", End: "17:00"}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestSaveMarkersEmptyDate(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveMarkers(context.Background(), activity.DayMarkers{Lunch: "12:00"}); err == nil {
		t.Fatal("expected error for empty date")
	}
}

func TestSaveMarkerBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	book := activity.MarkerBook{}
	book.Merge(activity.DayMarkers{Date: "2025-09-02", Return: "13:00"})
	book.Merge(activity.DayMarkers{Date: "2025-09-01", Start: "7:30"})
	if err := s.SaveMarkerBook(ctx, book); err != nil {
		t.Fatal(err)
	}

	loaded, err := s.MarkerBook(ctx)
	if err != nil {
		t.Fatal(err)
	}
	dates := loaded.Dates()
	if len(dates) != 2 || dates[0] != "2025-09-01" {
		t.Fatalf("unexpected dates: %v", dates)
	}
	if loaded["2025-09-02"].Return != "13:00" {
		t.Fatalf("return marker lost: %+v", loaded["2025-09-02"])
	}
}

func TestSaveMarkersWithoutTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.SaveMarkers(ctx, activity.DayMarkers{Date: "2025-09-04"}); err != nil {
		t.Fatal(err)
	}

	book, err := s.MarkerBook(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := book["2025-09-04"]
	if !ok {
		t.Fatal("date without tags was not stored")
	}
	if !got.IsEmpty() {
		t.Fatalf("expected no markers, got %+v", got)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	defaults := map[string]string{
		SettingCollaborator: "",
		SettingCompany:      "",
		SettingHourlyRate:   "0",
		SettingExportDir:    "",
	}
	for key, want := range defaults {
		got, err := s.GetSetting(ctx, key)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", key, err)
		}
		if got != want {
			t.Fatalf("setting %q: expected %q, got %q", key, want, got)
		}
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.SetSetting(ctx, SettingHourlyRate, "85.5"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting(ctx, SettingHourlyRate, "90"); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetSetting(ctx, SettingHourlyRate)
	if got != "90" {
		t.Fatalf("expected 90, got %q", got)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	settings, err := s.GetAllSettings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(settings) != 4 {
		t.Fatalf("expected 4 default settings, got %d", len(settings))
	}
	if settings[0].Key != SettingCollaborator {
		t.Fatalf("expected sorted keys, first was %q", settings[0].Key)
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
